// Package ocr defines the text-recognition capability the extractor feeds
// images through, plus the engines implementing it: the tesseract binary
// (default), in-process gosseract bindings, and vision-model services
// (ollama, OpenAI, Gemini).
//
// Engines are interchangeable: one image path and a language code in,
// recognized text out. Platform-specific discovery stays inside the engine
// constructors so the extraction pipeline never cares where the engine
// came from.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Engine names accepted by New.
const (
	EngineTesseract = "tesseract"
	EngineGosseract = "gosseract"
	EngineOllama    = "ollama"
	EngineOpenAI    = "openai"
	EngineGemini    = "gemini"
)

// ErrEngineNotFound is returned when the requested engine is not installed,
// not compiled in, or missing required configuration.
var ErrEngineNotFound = errors.New("OCR engine not found")

// Engine recognizes the text in a single image file.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, imagePath, language string) (string, error)
}

// Config carries the engine knobs taken from flags and the environment.
type Config struct {
	// TesseractCmd is the command or path for the tesseract binary. Empty
	// falls back to TESSERACT_CMD, then plain "tesseract".
	TesseractCmd string
	// Model is the model name for LLM-backed engines. Empty falls back to the
	// engine's environment variable, then its built-in default.
	Model string
}

// New builds the named engine. An empty name falls back to PNGTEXT_ENGINE,
// then tesseract. Construction fails when the engine cannot possibly run
// (binary missing, API key unset, support not compiled in) so a batch never
// starts against a dead engine.
func New(name string, cfg Config) (Engine, error) {
	if name == "" {
		name = os.Getenv("PNGTEXT_ENGINE")
	}
	if name == "" {
		name = EngineTesseract
	}

	switch strings.ToLower(name) {
	case EngineTesseract:
		return NewTesseract(cfg.TesseractCmd)
	case EngineGosseract:
		return NewGosseract()
	case EngineOllama:
		return NewOllama(cfg.Model), nil
	case EngineOpenAI:
		return NewOpenAI(cfg.Model)
	case EngineGemini:
		return NewGemini(cfg.Model)
	default:
		return nil, fmt.Errorf("unsupported OCR engine: %s", name)
	}
}

// Names lists the engine names New accepts, in display order.
func Names() []string {
	return []string{EngineTesseract, EngineGosseract, EngineOllama, EngineOpenAI, EngineGemini}
}
