package service

import (
	"context"
	"fmt"
	"image"
	"strings"
	"sync"

	"document-insight/internal/domain"
)

// FusionMode selects how multiple recognition outputs combine into one
// canonical text.
type FusionMode string

const (
	// FusionFallback prefers the first capability whose output clears the
	// minimum-length gate and otherwise falls through the priority order.
	FusionFallback FusionMode = "fallback"
	// FusionConcat concatenates every capability's output and relies on
	// downstream deduplication to remove repeats.
	FusionConcat FusionMode = "concat"
)

// ParseFusionMode maps a config string onto a FusionMode, defaulting to
// fallback.
func ParseFusionMode(s string) FusionMode {
	if strings.EqualFold(s, string(FusionConcat)) {
		return FusionConcat
	}
	return FusionFallback
}

// Capability pairs a recognizer with the page variant it consumes.
type Capability struct {
	Recognizer domain.Recognizer
	Variant    domain.VariantKind
}

// FusionEngine runs the registered recognition capabilities over a page's
// variants and fuses their outputs into one canonical text. Capabilities are
// tried in a fixed priority order with a bounded number of attempts; one
// capability's failure never aborts the page.
type FusionEngine struct {
	caps       []Capability
	minTextLen int
	mode       FusionMode
	logger     domain.Logger
}

func NewFusionEngine(caps []Capability, minTextLen int, mode FusionMode, logger domain.Logger) *FusionEngine {
	if len(caps) < 2 {
		logger.Warn("fusion engine running without a fallback capability",
			"capabilities", len(caps))
	}
	return &FusionEngine{
		caps:       caps,
		minTextLen: minTextLen,
		mode:       mode,
		logger:     logger,
	}
}

// Mode reports the configured fusion mode.
func (e *FusionEngine) Mode() FusionMode {
	return e.mode
}

// CanonicalText produces the page's fused, whitespace-normalized text. If
// every capability fails the result is the empty string, which downstream
// stages treat as valid input.
func (e *FusionEngine) CanonicalText(ctx context.Context, page *domain.Page) string {
	var concatenated []string
	var last string

	for _, c := range e.caps {
		img := page.Variant(c.Variant)
		if img == nil {
			img = page.Image
		}
		if img == nil {
			continue
		}

		text, err := e.recognize(ctx, c, img)
		if err != nil {
			// A dead context is not a capability failure; stop trying
			// engines and let the caller observe the cancellation.
			if ctx.Err() != nil {
				e.logger.Warn("recognition aborted, context done",
					"engine", c.Recognizer.Name(), "page", page.Index, "error", err)
				break
			}
			e.logger.Warn("recognition capability failed, trying next",
				"engine", c.Recognizer.Name(), "page", page.Index, "error", err)
			continue
		}
		text = NormalizeText(text)

		if e.mode == FusionConcat {
			if text != "" {
				concatenated = append(concatenated, text)
			}
			continue
		}

		if nonWhitespaceLen(text) >= e.minTextLen {
			return text
		}
		if text != "" {
			e.logger.Debug("recognition result below length gate, falling back",
				"engine", c.Recognizer.Name(), "page", page.Index, "len", nonWhitespaceLen(text))
			last = text
		}
	}

	if e.mode == FusionConcat {
		return NormalizeText(strings.Join(concatenated, "\n"))
	}
	return last
}

// ColumnTexts recognizes the left/right half variants with the primary
// capability, for multi-column layout consumers.
func (e *FusionEngine) ColumnTexts(ctx context.Context, page *domain.Page) (string, string) {
	if len(e.caps) == 0 {
		return "", ""
	}
	primary := e.caps[0]
	return e.columnText(ctx, primary, page, domain.VariantLeft),
		e.columnText(ctx, primary, page, domain.VariantRight)
}

func (e *FusionEngine) columnText(ctx context.Context, c Capability, page *domain.Page, kind domain.VariantKind) string {
	img := page.Variant(kind)
	if img == nil {
		return ""
	}
	text, err := e.recognize(ctx, Capability{Recognizer: c.Recognizer, Variant: kind}, img)
	if err != nil {
		e.logger.Warn("column recognition failed", "engine", c.Recognizer.Name(), "page", page.Index, "column", kind, "error", err)
		return ""
	}
	return NormalizeText(text)
}

// recognize isolates one capability invocation so a panicking provider
// degrades into an error instead of taking the page down.
func (e *FusionEngine) recognize(ctx context.Context, c Capability, img image.Image) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: recognizer %s panicked: %v", domain.ErrRecognitionDegraded, c.Recognizer.Name(), r)
		}
	}()
	return c.Recognizer.Recognize(ctx, img)
}

// SerialRecognizer gates a recognizer that is not safe for concurrent
// invocation behind a single-slot mutual-exclusion lock, so the shared
// capability can still be used from concurrent page workers.
type SerialRecognizer struct {
	mu    sync.Mutex
	inner domain.Recognizer
}

func NewSerialRecognizer(inner domain.Recognizer) *SerialRecognizer {
	return &SerialRecognizer{inner: inner}
}

func (s *SerialRecognizer) Name() string {
	return s.inner.Name()
}

func (s *SerialRecognizer) Recognize(ctx context.Context, img image.Image) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Recognize(ctx, img)
}
