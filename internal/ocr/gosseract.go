//go:build gosseract

package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Gosseract recognizes text in-process through the tesseract C API. Enabled
// with `go build -tags gosseract`; requires libtesseract and libleptonica at
// build time. One client per call keeps the engine stateless across images.
type Gosseract struct{}

// NewGosseract returns the in-process engine.
func NewGosseract() (*Gosseract, error) {
	return &Gosseract{}, nil
}

func (g *Gosseract) Name() string { return EngineGosseract }

// Version reports the linked tesseract library version.
func (g *Gosseract) Version() string {
	client := gosseract.NewClient()
	defer client.Close()
	return client.Version()
}

func (g *Gosseract) Recognize(ctx context.Context, imagePath, language string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(language); err != nil {
		return "", fmt.Errorf("failed to set OCR language %q: %w", language, err)
	}
	if err := client.SetImage(imagePath); err != nil {
		return "", fmt.Errorf("failed to load image for OCR: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return strings.TrimSpace(text), nil
}
