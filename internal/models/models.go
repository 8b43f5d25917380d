package models

import "time"

// GeneratedImage is one gallery entry produced by a successful generation
type GeneratedImage struct {
	ID        string    `json:"id" yaml:"id"`
	ImageData string    `json:"imageData" yaml:"imagedata"` // data:<mime>;base64,<bytes>
	Prompt    string    `json:"prompt" yaml:"prompt"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdat"`
}
