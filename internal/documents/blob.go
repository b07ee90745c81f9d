package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/JaimeStill/auditor/internal/timeline"
	"github.com/JaimeStill/auditor/pkg/storage"
)

// BlobSource reads documents from blob storage. A location is a key
// prefix; an empty location falls back to the configured prefix.
type BlobSource struct {
	cfg     Config
	storage storage.System
	logger  *slog.Logger
}

// NewBlobSource creates a BlobSource over store.
func NewBlobSource(cfg *Config, store storage.System, logger *slog.Logger) *BlobSource {
	return &BlobSource{cfg: *cfg, storage: store, logger: logger.With("system", "documents", "source", KindBlob)}
}

func (s *BlobSource) List(ctx context.Context, location string) ([]string, error) {
	if location == "" {
		location = s.cfg.Prefix
	}

	keys, err := s.storage.List(ctx, location)
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, k := range keys {
		if accepted(s.cfg.Extensions, k) {
			ids = append(ids, k)
		}
	}
	slices.Sort(ids)

	if len(ids) == 0 {
		return nil, fmt.Errorf("%w under prefix %q", ErrNoDocuments, location)
	}

	s.logger.InfoContext(ctx, "documents listed", "prefix", location, "count", len(ids))
	return ids, nil
}

func (s *BlobSource) Read(ctx context.Context, id string) (timeline.RawDocument, error) {
	body, err := s.storage.Download(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			err = ErrNotFound
		}
		return timeline.RawDocument{}, timeline.Unreadable(id, err)
	}
	defer body.Close()

	limit := s.cfg.MaxDocumentSizeBytes()
	data, err := io.ReadAll(io.LimitReader(body, limit+1))
	if err != nil {
		return timeline.RawDocument{}, timeline.Unreadable(id, fmt.Errorf("read blob: %w", err))
	}
	if int64(len(data)) > limit {
		return timeline.RawDocument{}, timeline.Unreadable(id, fmt.Errorf("%w: over %d bytes", ErrFileTooLarge, limit))
	}

	pages, err := ExtractPages(id, data)
	if err != nil {
		return timeline.RawDocument{}, timeline.Unreadable(id, err)
	}

	return timeline.RawDocument{ID: id, Pages: pages}, nil
}
