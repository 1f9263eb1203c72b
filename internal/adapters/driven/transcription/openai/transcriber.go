// Package openai provides a speech-to-text adapter using the OpenAI
// audio transcriptions API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/custodia-labs/weldsafe/internal/adapters/driven/ai/apierr"
	"github.com/custodia-labs/weldsafe/internal/core/ports/driven"
)

// Ensure Transcriber implements the interface.
var _ driven.Transcriber = (*Transcriber)(nil)

// Default configuration values.
const (
	DefaultBaseURL  = "https://api.openai.com/v1"
	DefaultModel    = "whisper-1"
	DefaultTimeout  = 120 * time.Second
	DefaultLanguage = "uk"
)

// MaxAudioBytes is the upload limit of the transcriptions endpoint.
const MaxAudioBytes = 25 << 20

// Config holds configuration for the OpenAI transcriber.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	BaseURL string

	// Model is the transcription model (default: whisper-1).
	Model string

	// Language is an ISO-639-1 hint (default: uk).
	Language string

	// Timeout is the HTTP client timeout (default: 120s).
	Timeout time.Duration
}

// Transcriber converts voice messages to text.
type Transcriber struct {
	client   *http.Client
	baseURL  string
	apiKey   string
	model    string
	language string
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

// NewTranscriber creates a new OpenAI transcriber.
func NewTranscriber(cfg Config) (*Transcriber, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Transcriber{
		client:   &http.Client{Timeout: cfg.Timeout},
		baseURL:  cfg.BaseURL,
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		language: cfg.Language,
	}, nil
}

// Transcribe uploads the audio as multipart form data and returns the text.
// The audio is buffered so the request can be replayed on retry.
func (t *Transcriber) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(audio, MaxAudioBytes+1))
	if err != nil {
		return "", fmt.Errorf("read audio: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("openai: empty audio")
	}
	if len(data) > MaxAudioBytes {
		return "", fmt.Errorf("openai: audio exceeds %d bytes", MaxAudioBytes)
	}
	if filename == "" {
		filename = "voice.ogg"
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("write form file: %w", err)
	}
	for k, v := range map[string]string{"model": t.model, "language": t.language, "response_format": "json"} {
		if err := form.WriteField(k, v); err != nil {
			return "", fmt.Errorf("write form field: %w", err)
		}
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/audio/transcriptions", &body)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if err := apierr.Check("openai", resp, respBody); err != nil {
		return "", err
	}

	var out transcriptionResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return strings.TrimSpace(out.Text), nil
}
