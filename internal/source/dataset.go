package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/mindwell-ai/mindwell/internal/domain"
)

// Dataset describes one CSV snapshot: which columns form the document text
// and, optionally, which column provides a title.
type Dataset struct {
	Path        string   `yaml:"path"`
	TextColumns []string `yaml:"text_columns"`
	TitleColumn string   `yaml:"title_column"`
}

// DatasetSource loads counselling-dialogue style CSV snapshots, one document
// per row. Text columns are concatenated with newlines; rows whose text
// columns are all empty are skipped.
type DatasetSource struct {
	datasets []Dataset
	logger   *zap.Logger
}

// NewDatasetSource creates an adapter over CSV dataset snapshots.
func NewDatasetSource(datasets []Dataset, logger *zap.Logger) *DatasetSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DatasetSource{datasets: datasets, logger: logger}
}

func (s *DatasetSource) Type() domain.SourceType { return domain.SourceDataset }

// Fetch loads every configured dataset. A dataset file that cannot be opened
// or parsed is skipped whole; within a readable file, only empty rows are
// dropped. Row identity goes into the document source as "path#row<N>" so
// re-ingesting a snapshot overwrites rather than duplicates.
func (s *DatasetSource) Fetch(ctx context.Context) ([]domain.Document, error) {
	var docs []domain.Document
	for _, ds := range s.datasets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		loaded, err := s.loadDataset(ds)
		if err != nil {
			skip(s.logger, s.Type(), ds.Path, err)
			continue
		}
		docs = append(docs, loaded...)

		s.logger.Info("dataset loaded",
			zap.String("path", ds.Path),
			zap.Int("documents", len(loaded)),
		)
	}
	return docs, nil
}

func (s *DatasetSource) loadDataset(ds Dataset) ([]domain.Document, error) {
	if len(ds.TextColumns) == 0 {
		return nil, fmt.Errorf("no text columns configured")
	}

	f, err := os.Open(ds.Path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	for _, col := range ds.TextColumns {
		if _, ok := columns[col]; !ok {
			return nil, fmt.Errorf("text column %q not in header", col)
		}
	}

	name := strings.TrimSuffix(filepath.Base(ds.Path), filepath.Ext(ds.Path))

	var docs []domain.Document
	for row := 0; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A malformed row is an item failure, not a dataset failure.
			skip(s.logger, s.Type(), fmt.Sprintf("%s#row%d", ds.Path, row), err)
			continue
		}

		text := joinColumns(record, columns, ds.TextColumns)
		if text == "" {
			continue
		}

		var title string
		if idx, ok := columns[ds.TitleColumn]; ok && idx < len(record) {
			title = strings.TrimSpace(record[idx])
		}
		if title == "" {
			title = name
		}

		docs = append(docs, domain.Document{
			Text: text,
			Metadata: domain.Metadata{
				Source: fmt.Sprintf("%s#row%d", ds.Path, row),
				Type:   domain.SourceDataset,
				Title:  title,
			},
		})
	}
	return docs, nil
}

func joinColumns(record []string, columns map[string]int, names []string) string {
	var parts []string
	for _, name := range names {
		idx := columns[name]
		if idx >= len(record) {
			continue
		}
		if v := strings.TrimSpace(record[idx]); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, "\n")
}
