package studentimport

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"go-headhunter-backend/internal/domain"
)

// CSVSource parses a comma separated student list with a header row
type CSVSource struct {
	data []byte
}

func NewCSVSource(data []byte) *CSVSource {
	return &CSVSource{data: data}
}

func (s *CSVSource) Records(ctx context.Context) ([]domain.ImportedStudentData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r := csv.NewReader(bytes.NewReader(s.data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("csv: empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("csv: read header: %w", err)
	}

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv: %w", err)
	}
	return parseRows(header, rows)
}
