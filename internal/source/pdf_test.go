package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mindwell-ai/mindwell/internal/domain"
)

func TestPDFFetch_MissingDirectory(t *testing.T) {
	src := NewPDFSource("/nonexistent/pdfs", nil)

	if _, err := src.Fetch(context.Background()); err == nil {
		t.Fatal("Fetch() error = nil, want walk failure")
	}
}

func TestPDFFetch_EmptyDirectory(t *testing.T) {
	src := NewPDFSource(t.TempDir(), nil)

	docs, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("documents = %d, want 0", len(docs))
	}
}

func TestPDFFetch_SkipsCorruptFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.pdf"), []byte("not a pdf"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatal(err)
	}

	src := NewPDFSource(dir, nil)

	docs, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("documents = %d, want 0 with the corrupt file skipped", len(docs))
	}
}

func TestPDFSourceType(t *testing.T) {
	if got := NewPDFSource(".", nil).Type(); got != domain.SourcePDF {
		t.Errorf("Type() = %q, want pdf", got)
	}
}
