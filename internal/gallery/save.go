package gallery

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lehigh-university-libraries/artify/internal/datauri"
)

// Save decodes the image with id and writes it into dir as ai-artify-<id><ext>
func (s *Store) Save(id, dir string) (string, error) {
	img, err := s.Get(id)
	if err != nil {
		return "", err
	}

	data, mediaType, err := datauri.Decode(img.ImageData)
	if err != nil {
		return "", fmt.Errorf("image %s: %w", id, err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, "ai-artify-"+id+datauri.Extension(mediaType))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}
	return path, nil
}
