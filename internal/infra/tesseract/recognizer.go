// Package tesseract adapts the Tesseract OCR engine to the Recognizer
// interface. A fresh client is created per call; gosseract clients are not
// safe for concurrent use and are cheap to construct.
package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

type Recognizer struct {
	languages []string
}

// NewRecognizer verifies the requested languages are installed before
// returning; a missing language pack fails fast at startup instead of on the
// first document.
func NewRecognizer(languages []string) (*Recognizer, error) {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	available, err := gosseract.GetAvailableLanguages()
	if err != nil {
		return nil, fmt.Errorf("tesseract is not available: %w", err)
	}
	installed := make(map[string]bool, len(available))
	for _, lang := range available {
		installed[lang] = true
	}
	for _, lang := range languages {
		if !installed[lang] {
			return nil, fmt.Errorf("tesseract language %q is not installed (available: %s)",
				lang, strings.Join(available, ", "))
		}
	}
	return &Recognizer{languages: languages}, nil
}

func (r *Recognizer) Name() string {
	return "tesseract"
}

func (r *Recognizer) Recognize(ctx context.Context, img image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode page for OCR: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(r.languages...); err != nil {
		return "", fmt.Errorf("failed to set OCR languages: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		return "", fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to load page into OCR engine: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR recognition failed: %w", err)
	}
	return strings.TrimSpace(text), nil
}
