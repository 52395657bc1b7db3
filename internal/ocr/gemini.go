package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini transcribes images with Google's Gemini vision models.
type Gemini struct {
	model string
}

// NewGemini configures the Gemini engine. Fails when GEMINI_API_KEY is
// unset. Model falls back to GEMINI_MODEL, then gemini-1.5-flash.
func NewGemini(model string) (*Gemini, error) {
	if os.Getenv("GEMINI_API_KEY") == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY environment variable not set", ErrEngineNotFound)
	}

	if model == "" {
		model = os.Getenv("GEMINI_MODEL")
	}
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &Gemini{model: model}, nil
}

func (g *Gemini) Name() string { return EngineGemini }

func (g *Gemini) Recognize(ctx context.Context, imagePath, language string) (string, error) {
	imageData, err := os.ReadFile(imagePath)
	if err != nil {
		return "", fmt.Errorf("failed to read image for OCR: %w", err)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(os.Getenv("GEMINI_API_KEY")))
	if err != nil {
		return "", fmt.Errorf("failed to create gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(g.model)
	model.SetTemperature(0) // exact transcription, no creativity

	resp, err := model.GenerateContent(ctx,
		genai.Text(transcriptionPrompt(language)),
		genai.ImageData("png", imageData),
	)
	if err != nil {
		return "", fmt.Errorf("failed to call gemini API for OCR: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no OCR response from gemini")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("empty OCR response from gemini")
	}
	text, ok := candidate.Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response format from gemini")
	}

	slog.Debug("vision OCR response", "engine", EngineGemini, "model", g.model,
		"image", filepath.Base(imagePath), "chars", len(text))
	return strings.TrimSpace(string(text)), nil
}
