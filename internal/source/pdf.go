package source

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"github.com/mindwell-ai/mindwell/internal/domain"
)

// PDFSource reads every .pdf under a directory tree, one document per file.
type PDFSource struct {
	dir    string
	logger *zap.Logger
}

// NewPDFSource creates an adapter over a PDF directory.
func NewPDFSource(dir string, logger *zap.Logger) *PDFSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PDFSource{dir: dir, logger: logger}
}

func (s *PDFSource) Type() domain.SourceType { return domain.SourcePDF }

// Fetch walks the directory and extracts plain text from each PDF. Files
// that fail to parse or hold no extractable text are skipped.
func (s *PDFSource) Fetch(ctx context.Context) ([]domain.Document, error) {
	var paths []string
	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".pdf") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk pdf directory %s: %w", s.dir, err)
	}

	var docs []domain.Document
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text, err := extractPDFText(path)
		if err != nil {
			skip(s.logger, s.Type(), path, err)
			continue
		}
		if strings.TrimSpace(text) == "" {
			skip(s.logger, s.Type(), path, fmt.Errorf("no extractable text"))
			continue
		}

		title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		docs = append(docs, domain.Document{
			Text: text,
			Metadata: domain.Metadata{
				Source: path,
				Type:   domain.SourcePDF,
				Title:  title,
			},
		})
	}

	s.logger.Info("pdf fetch complete",
		zap.String("dir", s.dir),
		zap.Int("files", len(paths)),
		zap.Int("documents", len(docs)),
	)
	return docs, nil
}

func extractPDFText(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	body, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract text: %w", err)
	}

	raw, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("read text: %w", err)
	}
	return string(raw), nil
}
