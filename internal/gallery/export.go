package gallery

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/artify/internal/models"
	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"
)

// yamlDocument is the layout of a YAML export
type yamlDocument struct {
	ExportedAt string                  `yaml:"exportedat"`
	Images     []models.GeneratedImage `yaml:"images"`
}

// parquetRecord is the row layout of a Parquet export
type parquetRecord struct {
	ID            string `parquet:"id"`
	ImageData     string `parquet:"image_data"`
	Prompt        string `parquet:"prompt"`
	CreatedAtUnix int64  `parquet:"created_at_ms"`
}

// Export writes the gallery to path. The format follows the extension:
// .json, .yaml/.yml or .parquet.
func (s *Store) Export(path string) (int, error) {
	images := s.List()

	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = exportJSON(path, images)
	case ".yaml", ".yml":
		err = exportYAML(path, images)
	case ".parquet":
		err = exportParquet(path, images)
	default:
		return 0, fmt.Errorf("unsupported file format: %s (supported: .json, .yaml, .parquet)", ext)
	}
	if err != nil {
		return 0, err
	}

	slog.Info("Gallery exported", "path", path, "images", len(images))
	return len(images), nil
}

// Import reads an export and merges every image whose id the gallery does not
// already hold into the gallery by CreatedAt, in a single persist.
func (s *Store) Import(path string) (int, error) {
	var images []models.GeneratedImage
	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		images, err = importJSON(path)
	case ".yaml", ".yml":
		images, err = importYAML(path)
	case ".parquet":
		images, err = importParquet(path)
	default:
		return 0, fmt.Errorf("unsupported file format: %s (supported: .json, .yaml, .parquet)", ext)
	}
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool, len(s.images)+len(images))
	for _, img := range s.images {
		seen[img.ID] = true
	}

	fresh := make([]models.GeneratedImage, 0, len(images))
	for _, img := range images {
		if img.ID == "" || seen[img.ID] {
			continue
		}
		seen[img.ID] = true
		fresh = append(fresh, img)
	}
	if len(fresh) == 0 {
		return 0, nil
	}

	sort.SliceStable(fresh, func(i, j int) bool {
		return fresh[i].CreatedAt.After(fresh[j].CreatedAt)
	})
	s.images = mergeNewestFirst(fresh, s.images)

	slog.Info("Gallery imported", "path", path, "read", len(images), "added", len(fresh))
	return len(fresh), s.persist("import")
}

// mergeNewestFirst interleaves two newest-first slices by CreatedAt. Ties keep
// the existing image ahead of the imported one.
func mergeNewestFirst(imported, existing []models.GeneratedImage) []models.GeneratedImage {
	merged := make([]models.GeneratedImage, 0, len(imported)+len(existing))
	i, j := 0, 0
	for i < len(imported) && j < len(existing) {
		if imported[i].CreatedAt.After(existing[j].CreatedAt) {
			merged = append(merged, imported[i])
			i++
		} else {
			merged = append(merged, existing[j])
			j++
		}
	}
	merged = append(merged, imported[i:]...)
	return append(merged, existing[j:]...)
}

func exportJSON(path string, images []models.GeneratedImage) error {
	data, err := json.MarshalIndent(images, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}
	return nil
}

func importJSON(path string) ([]models.GeneratedImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON file: %w", err)
	}
	var images []models.GeneratedImage
	if err := json.Unmarshal(data, &images); err != nil {
		return nil, fmt.Errorf("failed to parse JSON file: %w", err)
	}
	return images, nil
}

func exportYAML(path string, images []models.GeneratedImage) error {
	doc := yamlDocument{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Images:     images,
	}
	data, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write YAML file: %w", err)
	}
	return nil
}

func importYAML(path string) ([]models.GeneratedImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read YAML file: %w", err)
	}
	var doc yamlDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML file: %w", err)
	}
	return doc.Images, nil
}

func exportParquet(path string, images []models.GeneratedImage) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create parquet file: %w", err)
	}
	defer file.Close()

	rows := make([]parquetRecord, 0, len(images))
	for _, img := range images {
		rows = append(rows, parquetRecord{
			ID:            img.ID,
			ImageData:     img.ImageData,
			Prompt:        img.Prompt,
			CreatedAtUnix: img.CreatedAt.UnixMilli(),
		})
	}

	writer := parquet.NewGenericWriter[parquetRecord](file)
	if _, err := writer.Write(rows); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return file.Close()
}

func importParquet(path string) ([]models.GeneratedImage, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	slog.Debug("Parquet file opened", "path", path, "num_rows", pf.NumRows())

	reader := parquet.NewGenericReader[parquetRecord](pf)
	defer reader.Close()

	var images []models.GeneratedImage
	rows := make([]parquetRecord, 128)
	for {
		n, err := reader.Read(rows)
		for _, row := range rows[:n] {
			images = append(images, models.GeneratedImage{
				ID:        row.ID,
				ImageData: row.ImageData,
				Prompt:    row.Prompt,
				CreatedAt: time.UnixMilli(row.CreatedAtUnix).UTC(),
			})
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}

	return images, nil
}
