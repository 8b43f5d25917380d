// Package gallery keeps generated images ordered newest-first and mirrors
// them to a key-value store after every change.
package gallery

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/lehigh-university-libraries/artify/internal/models"
	"github.com/lehigh-university-libraries/artify/internal/storage"
)

// ErrNotFound is returned by lookups for an id the gallery does not hold
var ErrNotFound = errors.New("image not found in gallery")

// PersistenceError reports a failed mirror write. The in-memory gallery has
// already been updated when it is returned.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("gallery %s not persisted: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Store owns the in-memory gallery. The KV is only a mirror.
type Store struct {
	kv     storage.KV
	key    string
	images []models.GeneratedImage
	mu     sync.RWMutex
}

// Open builds a store over kv and loads whatever is persisted under key
func Open(kv storage.KV, key string) *Store {
	s := &Store{kv: kv, key: key}
	s.Load()
	return s
}

// Load replaces the in-memory gallery with the persisted one. Absent or
// unreadable data yields an empty gallery.
func (s *Store) Load() []models.GeneratedImage {
	images := s.read()

	s.mu.Lock()
	s.images = images
	s.mu.Unlock()

	return s.List()
}

func (s *Store) read() []models.GeneratedImage {
	data, ok, err := s.kv.Get(s.key)
	if err != nil {
		slog.Warn("Unable to read persisted gallery", "key", s.key, "err", err)
		return nil
	}
	if !ok {
		return nil
	}

	var images []models.GeneratedImage
	if err := json.Unmarshal(data, &images); err != nil {
		slog.Warn("Discarding corrupt persisted gallery", "key", s.key, "err", err)
		return nil
	}
	return images
}

// List returns a copy of the gallery, newest first
func (s *Store) List() []models.GeneratedImage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.GeneratedImage{}, s.images...)
}

// Len returns the number of images held
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.images)
}

// Get looks up an image by id
func (s *Store) Get(id string) (models.GeneratedImage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, img := range s.images {
		if img.ID == id {
			return img, nil
		}
	}
	return models.GeneratedImage{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Add puts img at the head of the gallery. Duplicate ids are not checked.
func (s *Store) Add(img models.GeneratedImage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	images := make([]models.GeneratedImage, 0, len(s.images)+1)
	images = append(images, img)
	s.images = append(images, s.images...)

	return s.persist("add")
}

// Remove drops the image with id if present
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	images := make([]models.GeneratedImage, 0, len(s.images))
	for _, img := range s.images {
		if img.ID != id {
			images = append(images, img)
		}
	}
	s.images = images

	return s.persist("remove")
}

// Clear empties the gallery and deletes the persisted entry
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.images = nil
	return s.persist("clear")
}

// persist mirrors s.images to the KV. Callers hold s.mu.
func (s *Store) persist(op string) error {
	var err error
	if len(s.images) == 0 {
		err = s.kv.Delete(s.key)
	} else {
		var data []byte
		data, err = json.Marshal(s.images)
		if err == nil {
			err = s.kv.Set(s.key, data)
		}
	}
	if err != nil {
		slog.Error("Failed to persist gallery", "op", op, "key", s.key, "images", len(s.images), "err", err)
		return &PersistenceError{Op: op, Err: err}
	}
	return nil
}
