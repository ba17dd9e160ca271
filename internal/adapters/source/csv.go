// Package source provides tabular record source adapters.
// Clean Architecture: Adapter implementing ports.RecordSource.
package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"

	"spendchat/internal/domain/entities"
)

// CSVSource reads procurement rows from a CSV file on disk.
type CSVSource struct {
	path string
}

// NewCSVSource creates a record source for the given file path.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

// Load reads the full file: the first row is the header, the rest are data.
// Ragged rows are tolerated here; validation is the normalizer's job.
func (s *CSVSource) Load(ctx context.Context) (*entities.Table, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", entities.ErrData, s.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", entities.ErrData, s.path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s has no header row", entities.ErrData, s.path)
	}

	return &entities.Table{
		Columns: rows[0],
		Rows:    rows[1:],
	}, nil
}
