// Package vertex adapts a Vertex AI multimodal model to the Recognizer
// interface, used as the fallback capability when classical OCR yields too
// little text.
package vertex

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"

	"cloud.google.com/go/vertexai/genai"
)

const transcriptionPrompt = "Transcribe all text visible in this page image. " +
	"Return only the transcribed text, preserving line breaks. " +
	"Do not describe the image or add commentary."

type Recognizer struct {
	client *genai.Client
	model  string
}

func NewRecognizer(ctx context.Context, projectID, location, model string) (*Recognizer, error) {
	client, err := genai.NewClient(ctx, projectID, location)
	if err != nil {
		return nil, fmt.Errorf("failed to create vertex ai client: %w", err)
	}
	return &Recognizer{client: client, model: model}, nil
}

func (r *Recognizer) Name() string {
	return "vertex"
}

func (r *Recognizer) Recognize(ctx context.Context, img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode page for recognition: %w", err)
	}

	model := r.client.GenerativeModel(r.model)
	model.SetTemperature(0)

	resp, err := model.GenerateContent(ctx,
		genai.ImageData("png", buf.Bytes()),
		genai.Text(transcriptionPrompt),
	)
	if err != nil {
		return "", fmt.Errorf("gemini call failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return strings.TrimSpace(sb.String()), nil
}

func (r *Recognizer) Close() error {
	return r.client.Close()
}
