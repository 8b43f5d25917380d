package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/lehigh-university-libraries/artify/internal/generation"
)

const maxRequestBytes = 1 << 20

type generateRequest struct {
	Prompt json.RawMessage `json:"prompt"`
}

type generateResponse struct {
	Success bool   `json:"success"`
	Image   string `json:"image"`
	Prompt  string `json:"prompt"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	prompt, genErr := decodePrompt(io.LimitReader(r.Body, maxRequestBytes))
	if genErr != nil {
		h.writeGenerationError(w, genErr)
		return
	}

	payload, err := h.generator.Generate(r.Context(), prompt)
	if err != nil {
		var genErr *generation.Error
		if !errors.As(err, &genErr) {
			genErr = generation.NewError(generation.InternalFailure, "", err)
		}
		h.writeGenerationError(w, genErr)
		return
	}

	h.writeJSON(w, generateResponse{
		Success: true,
		Image:   payload.Image,
		Prompt:  payload.Prompt,
	})
}

// decodePrompt reads the prompt field of the request body. A body that is not
// JSON, or is JSON null, is an internal failure; any other body without a
// string prompt is invalid input.
func decodePrompt(body io.Reader) (string, *generation.Error) {
	var raw json.RawMessage
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		return "", generation.NewError(generation.InternalFailure, "", fmt.Errorf("failed to decode request body: %w", err))
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return "", generation.NewError(generation.InternalFailure, "", errors.New("request body is null"))
	}

	var req generateRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return "", generation.NewError(generation.InvalidInput, "", nil)
	}
	var prompt string
	if err := json.Unmarshal(req.Prompt, &prompt); err != nil {
		return "", generation.NewError(generation.InvalidInput, "", nil)
	}
	return prompt, nil
}

func (h *Handler) writeGenerationError(w http.ResponseWriter, err *generation.Error) {
	slog.Error("Generation request failed", "kind", err.Kind, "details", err.Details, "err", err.Err)
	h.writeJSONStatus(w, errorResponse{
		Error:   err.Message,
		Details: err.Details,
	}, err.StatusCode())
}
