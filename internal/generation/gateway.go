// Package generation turns a prompt into an embeddable image by calling an
// inference provider and classifying the outcome.
package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/lehigh-university-libraries/artify/internal/datauri"
	"github.com/lehigh-university-libraries/artify/internal/providers"
)

// Payload is a successful generation
type Payload struct {
	Image       string // data URI
	ContentType string
	Prompt      string
}

// Gateway is stateless and safe for concurrent use
type Gateway struct {
	provider providers.Provider
}

func NewGateway(provider providers.Provider) *Gateway {
	return &Gateway{provider: provider}
}

// Generate sends prompt to the provider exactly once. Every returned error is a *Error.
func (g *Gateway) Generate(ctx context.Context, prompt string) (payload *Payload, err error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, NewError(InvalidInput, "", nil)
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("Provider panicked", "panic", r)
			payload = nil
			err = NewError(InternalFailure, "", fmt.Errorf("provider panic: %v", r))
		}
	}()

	img, err := g.provider.GenerateImage(ctx, prompt)
	if err != nil {
		genErr := classify(err)
		slog.Error("Image generation failed", "kind", genErr.Kind, "err", err)
		return nil, genErr
	}

	mediaType := datauri.MediaType(img.ContentType)
	uri := datauri.Encode(img.Data, mediaType)
	if mediaType == "" {
		_, mediaType, _ = datauri.Decode(uri)
	}

	slog.Info("Successfully generated image", "bytes", len(img.Data), "content_type", mediaType)
	return &Payload{
		Image:       uri,
		ContentType: mediaType,
		Prompt:      prompt,
	}, nil
}

func classify(err error) *Error {
	if errors.Is(err, providers.ErrMissingCredential) {
		return NewError(MisconfiguredService, "", err)
	}

	var statusErr *providers.StatusError
	if !errors.As(err, &statusErr) {
		return NewError(InternalFailure, "", err)
	}

	switch statusErr.StatusCode {
	case http.StatusUnauthorized:
		return NewError(AuthenticationFailed, upstreamDetails(statusErr.Body), err)
	case http.StatusServiceUnavailable:
		return NewError(ServiceWarmingUp, "", err)
	case http.StatusTooManyRequests:
		return NewError(RateLimited, "", err)
	default:
		return NewError(UpstreamError, upstreamDetails(statusErr.Body), err)
	}
}
