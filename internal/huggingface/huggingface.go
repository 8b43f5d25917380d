package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/lehigh-university-libraries/artify/internal/config"
	"github.com/lehigh-university-libraries/artify/internal/providers"
)

// HuggingFace is a provider for the Hugging Face Inference API
type HuggingFace struct {
	apiKey     string
	endpoint   string
	params     providers.Parameters
	httpClient *http.Client
}

// New returns a new Hugging Face provider. A nil httpClient uses a client
// with no timeout of its own.
func New(cfg config.HuggingFace, httpClient *http.Client) *HuggingFace {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &HuggingFace{
		apiKey:     cfg.APIKey,
		endpoint:   strings.TrimRight(cfg.Endpoint, "/") + "/models/" + cfg.Model,
		params:     cfg.Parameters,
		httpClient: httpClient,
	}
}

// Endpoint returns the model URL requests are posted to
func (h *HuggingFace) Endpoint() string {
	return h.endpoint
}

type textToImageRequest struct {
	Inputs     string               `json:"inputs"`
	Parameters providers.Parameters `json:"parameters"`
}

// GenerateImage posts prompt to the model endpoint and returns the image bytes
func (h *HuggingFace) GenerateImage(ctx context.Context, prompt string) (*providers.Image, error) {
	slog.Debug("Hugging Face API key check", "exists", h.apiKey != "", "length", len(h.apiKey))
	if h.apiKey == "" {
		return nil, providers.ErrMissingCredential
	}

	requestBody, err := json.Marshal(textToImageRequest{
		Inputs:     prompt,
		Parameters: h.params,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "image/*")
	req.Header.Set("Authorization", "Bearer "+h.apiKey)

	slog.Debug("Making request to Hugging Face API", "endpoint", h.endpoint)
	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	slog.Debug("Hugging Face API response", "status", resp.StatusCode, "content_type", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &providers.StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return &providers.Image{
		Data:        body,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}
