package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// visionTimeout bounds one recognition round-trip. Vision models chew on a
// dense screenshot for a while, so this is generous.
const visionTimeout = 2 * time.Minute

// Ollama sends images to a local ollama server's generate API.
type Ollama struct {
	host   string
	model  string
	client *http.Client
}

// NewOllama configures the ollama engine. Host comes from OLLAMA_URL, then
// OLLAMA_HOST, then the standard localhost port. Model falls back to
// OLLAMA_MODEL, then a vision-capable default.
func NewOllama(model string) *Ollama {
	host := os.Getenv("OLLAMA_URL")
	if host == "" {
		host = os.Getenv("OLLAMA_HOST")
	}
	if host == "" {
		host = "http://localhost:11434"
	}

	if model == "" {
		model = os.Getenv("OLLAMA_MODEL")
	}
	if model == "" {
		model = "mistral-small3.2:24b"
	}

	return &Ollama{
		host:   strings.TrimRight(host, "/"),
		model:  model,
		client: &http.Client{Timeout: visionTimeout},
	}
}

func (o *Ollama) Name() string { return EngineOllama }

func (o *Ollama) Recognize(ctx context.Context, imagePath, language string) (string, error) {
	imageData, err := os.ReadFile(imagePath)
	if err != nil {
		return "", fmt.Errorf("failed to read image for OCR: %w", err)
	}

	requestBody := map[string]interface{}{
		"model":  o.model,
		"prompt": transcriptionPrompt(language),
		"images": []string{base64.StdEncoding.EncodeToString(imageData)},
		"stream": false,
		"options": map[string]interface{}{
			"temperature": 0.0, // exact transcription, no creativity
		},
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal OCR request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.host+"/api/generate", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create OCR request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call ollama API for OCR: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama OCR API returned status %d: %s", resp.StatusCode, string(body))
	}

	var ollamaResp struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ollamaResp); err != nil {
		return "", fmt.Errorf("failed to decode ollama OCR response: %w", err)
	}

	slog.Debug("vision OCR response", "engine", EngineOllama, "model", o.model,
		"image", filepath.Base(imagePath), "chars", len(ollamaResp.Response))
	return strings.TrimSpace(ollamaResp.Response), nil
}

// Ping checks that the ollama server answers at all. Recognition does not
// call this; it is for availability reporting before any image is sent.
func (o *Ollama) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.host+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("failed to create ollama ping request: %w", err)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama server unreachable at %s: %w", o.host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama server at %s returned status %d", o.host, resp.StatusCode)
	}
	return nil
}

// OpenAI sends images to the chat completions API, or any compatible server
// via OPENAI_BASE_URL.
type OpenAI struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewOpenAI configures the OpenAI engine. Fails when OPENAI_API_KEY is
// unset: there is no point starting a batch that cannot authenticate.
func NewOpenAI(model string) (*OpenAI, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("%w: OPENAI_API_KEY environment variable not set", ErrEngineNotFound)
	}

	baseURL := os.Getenv("OPENAI_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}

	if model == "" {
		model = os.Getenv("OPENAI_MODEL")
	}
	if model == "" {
		model = "gpt-4o"
	}

	return &OpenAI{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: visionTimeout},
	}, nil
}

func (o *OpenAI) Name() string { return EngineOpenAI }

func (o *OpenAI) Recognize(ctx context.Context, imagePath, language string) (string, error) {
	imageData, err := os.ReadFile(imagePath)
	if err != nil {
		return "", fmt.Errorf("failed to read image for OCR: %w", err)
	}

	requestBody := map[string]interface{}{
		"model": o.model,
		"messages": []map[string]interface{}{
			{
				"role": "user",
				"content": []map[string]interface{}{
					{
						"type": "text",
						"text": transcriptionPrompt(language),
					},
					{
						"type": "image_url",
						"image_url": map[string]string{
							"url": "data:image/png;base64," + base64.StdEncoding.EncodeToString(imageData),
						},
					},
				},
			},
		},
		"max_tokens":  4000,
		"temperature": 0.0,
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal OCR request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/v1/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create OCR request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call openai API for OCR: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("openai OCR API returned status %d: %s", resp.StatusCode, string(body))
	}

	var openaiResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&openaiResp); err != nil {
		return "", fmt.Errorf("failed to decode openai OCR response: %w", err)
	}
	if len(openaiResp.Choices) == 0 {
		return "", fmt.Errorf("no OCR response from openai")
	}

	slog.Debug("vision OCR response", "engine", EngineOpenAI, "model", o.model,
		"image", filepath.Base(imagePath), "chars", len(openaiResp.Choices[0].Message.Content))
	return strings.TrimSpace(openaiResp.Choices[0].Message.Content), nil
}
