package service

import (
	"context"
	"errors"
	"image"
	"sync"

	"document-insight/internal/domain"
)

// Mock logger used by service package tests.
type mockLogger struct{}

func (l *mockLogger) Info(msg string, fields ...interface{})             {}
func (l *mockLogger) Error(msg string, err error, fields ...interface{}) {}
func (l *mockLogger) Debug(msg string, fields ...interface{})            {}
func (l *mockLogger) Warn(msg string, fields ...interface{})             {}

// stubRecognizer returns a fixed text, a fixed error, or panics, depending
// on which field is set. Safe for concurrent use, like the real recognizers.
type stubRecognizer struct {
	name   string
	text   string
	err    error
	panics bool

	mu    sync.Mutex
	calls int
}

func (s *stubRecognizer) Name() string { return s.name }

func (s *stubRecognizer) Recognize(ctx context.Context, img image.Image) (string, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.panics {
		panic("recognizer blew up")
	}
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

var errStubRecognition = errors.New("stub recognition failure")

// recordingLogger captures warning messages so tests can assert on them.
type recordingLogger struct {
	mockLogger
	warns []string
}

func (l *recordingLogger) Warn(msg string, fields ...interface{}) {
	l.warns = append(l.warns, msg)
}

func testPage(index int) *domain.Page {
	img := image.NewGray(image.Rect(0, 0, 10, 10))
	return &domain.Page{
		Index: index,
		Image: img,
		Variants: map[domain.VariantKind]image.Image{
			domain.VariantGray:   img,
			domain.VariantBinary: img,
			domain.VariantLeft:   img,
			domain.VariantRight:  img,
		},
	}
}
