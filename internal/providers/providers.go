package providers

import (
	"context"
	"errors"
	"fmt"
)

// ErrMissingCredential is returned before any network call when the provider has no API key
var ErrMissingCredential = errors.New("provider credential not configured")

// Parameters are the operator-fixed generation settings sent with every request
type Parameters struct {
	GuidanceScale     float64 `json:"guidance_scale" yaml:"guidance_scale"`
	NumInferenceSteps int     `json:"num_inference_steps" yaml:"num_inference_steps"`
	Width             int     `json:"width" yaml:"width"`
	Height            int     `json:"height" yaml:"height"`
}

// DefaultParameters returns the settings used when the operator configures none:
// guidance scale 7.5, 20 inference steps, 1024x1024 output.
func DefaultParameters() Parameters {
	return Parameters{
		GuidanceScale:     7.5,
		NumInferenceSteps: 20,
		Width:             1024,
		Height:            1024,
	}
}

// Validate reports the first non-positive parameter
func (p Parameters) Validate() error {
	switch {
	case p.GuidanceScale <= 0:
		return fmt.Errorf("guidance_scale must be positive, got %v", p.GuidanceScale)
	case p.NumInferenceSteps <= 0:
		return fmt.Errorf("num_inference_steps must be positive, got %d", p.NumInferenceSteps)
	case p.Width <= 0:
		return fmt.Errorf("width must be positive, got %d", p.Width)
	case p.Height <= 0:
		return fmt.Errorf("height must be positive, got %d", p.Height)
	}
	return nil
}

// Image is the raw result of a successful generation
type Image struct {
	Data        []byte
	ContentType string
}

// StatusError carries a non-2xx upstream response
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("received non-2xx status code: %d - %s", e.StatusCode, e.Body)
}

// Provider defines the interface for a text-to-image backend
type Provider interface {
	GenerateImage(ctx context.Context, prompt string) (*Image, error)
}
