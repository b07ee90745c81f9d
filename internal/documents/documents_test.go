package documents_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/JaimeStill/auditor/internal/documents"
	"github.com/JaimeStill/auditor/internal/timeline"
	"github.com/JaimeStill/auditor/pkg/lifecycle"
	"github.com/JaimeStill/auditor/pkg/storage"
)

func finalized(t *testing.T, cfg documents.Config) *documents.Config {
	t.Helper()
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	return &cfg
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestConfigDefaults(t *testing.T) {
	cfg := finalized(t, documents.Config{})

	if cfg.Kind != documents.KindFile {
		t.Errorf("Kind = %q, want %q", cfg.Kind, documents.KindFile)
	}
	if got := cfg.MaxDocumentSizeBytes(); got != 50*1024*1024 {
		t.Errorf("MaxDocumentSizeBytes() = %d, want %d", got, 50*1024*1024)
	}
	if diff := cmp.Diff([]string{".pdf", ".txt", ".md"}, cfg.Extensions); diff != "" {
		t.Errorf("Extensions mismatch (-want +got):\n%s", diff)
	}
}

func TestConfigEnv(t *testing.T) {
	t.Setenv("TEST_DOCS_KIND", "BLOB")
	t.Setenv("TEST_DOCS_PREFIX", "cases/2024/")

	cfg := documents.Config{}
	env := &documents.Env{Kind: "TEST_DOCS_KIND", Prefix: "TEST_DOCS_PREFIX"}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if cfg.Kind != documents.KindBlob {
		t.Errorf("Kind = %q, want %q", cfg.Kind, documents.KindBlob)
	}
	if cfg.Prefix != "cases/2024/" {
		t.Errorf("Prefix = %q", cfg.Prefix)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  documents.Config
	}{
		{"unknown kind", documents.Config{Kind: "ftp"}},
		{"bad size", documents.Config{MaxDocumentSize: "lots"}},
		{"zero size", documents.Config{MaxDocumentSize: "0"}},
		{"empty extension", documents.Config{Extensions: []string{" "}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Finalize(nil); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestConfigNormalizesExtensions(t *testing.T) {
	cfg := finalized(t, documents.Config{Extensions: []string{"PDF", ".Txt"}})
	if diff := cmp.Diff([]string{".pdf", ".txt"}, cfg.Extensions); diff != "" {
		t.Errorf("Extensions mismatch (-want +got):\n%s", diff)
	}
}

func TestConfigMerge(t *testing.T) {
	base := documents.Config{Kind: "file", MaxDocumentSize: "50MB"}
	base.Merge(&documents.Config{Kind: "blob", Extensions: []string{".pdf"}})

	want := documents.Config{Kind: "blob", MaxDocumentSize: "50MB", Extensions: []string{".pdf"}}
	if diff := cmp.Diff(want, base); diff != "" {
		t.Errorf("Merge mismatch (-want +got):\n%s", diff)
	}
}

func TestFileSourceListDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b-case.txt", "b")
	writeFile(t, dir, "a-case.md", "a")
	writeFile(t, dir, "notes.docx", "skip")
	writeFile(t, dir, ".hidden.txt", "skip")
	if err := os.Mkdir(filepath.Join(dir, "nested.txt"), 0o755); err != nil {
		t.Fatal(err)
	}

	src := documents.NewFileSource(finalized(t, documents.Config{}), slog.Default())
	ids, err := src.List(context.Background(), dir)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	want := []string{filepath.Join(dir, "a-case.md"), filepath.Join(dir, "b-case.txt")}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}
}

func TestFileSourceListSingleFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "case.txt", "x")

	src := documents.NewFileSource(finalized(t, documents.Config{}), slog.Default())
	ids, err := src.List(context.Background(), path)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if diff := cmp.Diff([]string{path}, ids); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}
}

func TestFileSourceListErrors(t *testing.T) {
	dir := t.TempDir()
	docx := writeFile(t, dir, "case.docx", "x")
	empty := t.TempDir()

	tests := []struct {
		name     string
		location string
		want     error
	}{
		{"missing", filepath.Join(dir, "absent"), documents.ErrNotFound},
		{"unsupported file", docx, documents.ErrUnsupported},
		{"empty directory", empty, documents.ErrNoDocuments},
	}

	src := documents.NewFileSource(finalized(t, documents.Config{}), slog.Default())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := src.List(context.Background(), tt.location)
			if !errors.Is(err, tt.want) {
				t.Errorf("List() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestFileSourceReadText(t *testing.T) {
	content := "Case #: 2024-001\nClient: Acme LLC\n"
	path := writeFile(t, t.TempDir(), "case.txt", content)

	src := documents.NewFileSource(finalized(t, documents.Config{}), slog.Default())
	doc, err := src.Read(context.Background(), path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	want := timeline.RawDocument{ID: path, Pages: []string{content}}
	if diff := cmp.Diff(want, doc); diff != "" {
		t.Errorf("Read() mismatch (-want +got):\n%s", diff)
	}
}

func TestFileSourceReadErrors(t *testing.T) {
	dir := t.TempDir()
	big := writeFile(t, dir, "big.txt", strings.Repeat("x", 2048))
	badPDF := writeFile(t, dir, "broken.pdf", "not a pdf at all")

	tests := []struct {
		name string
		id   string
		want error
	}{
		{"missing", filepath.Join(dir, "absent.txt"), documents.ErrNotFound},
		{"too large", big, documents.ErrFileTooLarge},
		{"corrupt pdf", badPDF, documents.ErrInvalidFile},
	}

	src := documents.NewFileSource(finalized(t, documents.Config{MaxDocumentSize: "1KB"}), slog.Default())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := src.Read(context.Background(), tt.id)
			if !errors.Is(err, tt.want) {
				t.Errorf("Read() error = %v, want %v", err, tt.want)
			}
			if !errors.Is(err, timeline.ErrUnreadable) {
				t.Errorf("Read() error = %v, want ErrUnreadable", err)
			}

			var extErr *timeline.ExtractionError
			if !errors.As(err, &extErr) {
				t.Fatalf("Read() error type = %T, want *timeline.ExtractionError", err)
			}
			if extErr.DocumentID != tt.id {
				t.Errorf("DocumentID = %q, want %q", extErr.DocumentID, tt.id)
			}
		})
	}
}

func TestExtractPagesUnsupported(t *testing.T) {
	_, err := documents.ExtractPages("case.docx", []byte("x"))
	if !errors.Is(err, documents.ErrUnsupported) {
		t.Errorf("ExtractPages() error = %v, want ErrUnsupported", err)
	}
}

type fakeStorage struct {
	blobs map[string]string
}

func (f *fakeStorage) Start(*lifecycle.Coordinator) error { return nil }

func (f *fakeStorage) List(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	for k := range f.blobs {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (f *fakeStorage) Upload(_ context.Context, key string, r io.Reader, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.blobs[key] = string(data)
	return nil
}

func (f *fakeStorage) Download(_ context.Context, key string) (io.ReadCloser, error) {
	data, ok := f.blobs[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewBufferString(data)), nil
}

func (f *fakeStorage) Exists(_ context.Context, key string) (bool, error) {
	_, ok := f.blobs[key]
	return ok, nil
}

func TestBlobSourceList(t *testing.T) {
	store := &fakeStorage{blobs: map[string]string{
		"cases/z.txt":      "z",
		"cases/a.pdf":      "a",
		"cases/readme.csv": "skip",
		"other/b.txt":      "skip",
	}}

	src := documents.NewBlobSource(finalized(t, documents.Config{Kind: "blob", Prefix: "cases/"}), store, slog.Default())
	ids, err := src.List(context.Background(), "")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if diff := cmp.Diff([]string{"cases/a.pdf", "cases/z.txt"}, ids); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}

	if _, err := src.List(context.Background(), "missing/"); !errors.Is(err, documents.ErrNoDocuments) {
		t.Errorf("List(missing/) error = %v, want ErrNoDocuments", err)
	}
}

func TestBlobSourceRead(t *testing.T) {
	store := &fakeStorage{blobs: map[string]string{
		"cases/a.txt":   "Timeline\n01/02/2024 Intake call",
		"cases/big.txt": strings.Repeat("y", 4096),
	}}
	src := documents.NewBlobSource(finalized(t, documents.Config{Kind: "blob", MaxDocumentSize: "1KB"}), store, slog.Default())

	doc, err := src.Read(context.Background(), "cases/a.txt")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	want := timeline.RawDocument{ID: "cases/a.txt", Pages: []string{"Timeline\n01/02/2024 Intake call"}}
	if diff := cmp.Diff(want, doc); diff != "" {
		t.Errorf("Read() mismatch (-want +got):\n%s", diff)
	}

	if _, err := src.Read(context.Background(), "cases/none.txt"); !errors.Is(err, documents.ErrNotFound) {
		t.Errorf("Read(missing) error = %v, want ErrNotFound", err)
	}
	if _, err := src.Read(context.Background(), "cases/big.txt"); !errors.Is(err, documents.ErrFileTooLarge) {
		t.Errorf("Read(big) error = %v, want ErrFileTooLarge", err)
	}
}
