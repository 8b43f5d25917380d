package models

import (
	"time"

	"github.com/google/uuid"
)

// NewGeneratedImage stamps a fresh id and creation time onto a generation result
func NewGeneratedImage(prompt, imageData string) GeneratedImage {
	return GeneratedImage{
		ID:        uuid.NewString(),
		ImageData: imageData,
		Prompt:    prompt,
		CreatedAt: time.Now().UTC(),
	}
}
