package documents

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/JaimeStill/auditor/internal/timeline"
)

// FileSource reads documents from the local filesystem. A location is a
// directory, listed non-recursively, or a single file.
type FileSource struct {
	cfg    Config
	logger *slog.Logger
}

// NewFileSource creates a FileSource from a finalized Config.
func NewFileSource(cfg *Config, logger *slog.Logger) *FileSource {
	return &FileSource{cfg: *cfg, logger: logger.With("system", "documents", "source", KindFile)}
}

func (s *FileSource) List(ctx context.Context, location string) ([]string, error) {
	info, err := os.Stat(location)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, location)
		}
		return nil, fmt.Errorf("stat %s: %w", location, err)
	}

	if !info.IsDir() {
		if !accepted(s.cfg.Extensions, location) {
			return nil, fmt.Errorf("%w: %s", ErrUnsupported, location)
		}
		return []string{location}, nil
	}

	entries, err := os.ReadDir(location)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", location, err)
	}

	var ids []string
	for _, e := range entries {
		if e.IsDir() || !accepted(s.cfg.Extensions, e.Name()) {
			continue
		}
		ids = append(ids, filepath.Join(location, e.Name()))
	}
	slices.Sort(ids)

	if len(ids) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoDocuments, location)
	}

	s.logger.InfoContext(ctx, "documents listed", "location", location, "count", len(ids))
	return ids, nil
}

func (s *FileSource) Read(ctx context.Context, id string) (timeline.RawDocument, error) {
	info, err := os.Stat(id)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = ErrNotFound
		}
		return timeline.RawDocument{}, timeline.Unreadable(id, err)
	}
	if info.Size() > s.cfg.MaxDocumentSizeBytes() {
		return timeline.RawDocument{}, timeline.Unreadable(id, fmt.Errorf("%w: %d bytes", ErrFileTooLarge, info.Size()))
	}

	data, err := os.ReadFile(id)
	if err != nil {
		return timeline.RawDocument{}, timeline.Unreadable(id, err)
	}

	pages, err := ExtractPages(id, data)
	if err != nil {
		return timeline.RawDocument{}, timeline.Unreadable(id, err)
	}

	return timeline.RawDocument{ID: id, Pages: pages}, nil
}
