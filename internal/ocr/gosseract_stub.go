//go:build !gosseract

package ocr

import (
	"context"
	"errors"
)

// ErrGosseractDisabled is returned when the in-process engine is requested
// from a binary built without the gosseract tag.
var ErrGosseractDisabled = errors.New("gosseract engine not compiled in; rebuild with -tags gosseract")

// Gosseract is the stub used in builds without the gosseract tag, which
// keeps the default build free of cgo.
type Gosseract struct{}

// NewGosseract reports that the engine was not compiled in.
func NewGosseract() (*Gosseract, error) {
	return nil, ErrGosseractDisabled
}

func (g *Gosseract) Name() string { return EngineGosseract }

func (g *Gosseract) Recognize(ctx context.Context, imagePath, language string) (string, error) {
	return "", ErrGosseractDisabled
}
