package studentimport

import (
	"bytes"
	"context"
	"fmt"

	"go-headhunter-backend/internal/domain"

	"github.com/xuri/excelize/v2"
)

// XLSXSource parses the first sheet of an Excel workbook with a header row
type XLSXSource struct {
	data []byte
}

func NewXLSXSource(data []byte) *XLSXSource {
	return &XLSXSource{data: data}
}

func (s *XLSXSource) Records(ctx context.Context) ([]domain.ImportedStudentData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenReader(bytes.NewReader(s.data))
	if err != nil {
		return nil, fmt.Errorf("xlsx: open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx: workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("xlsx: read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("xlsx: empty sheet")
	}
	return parseRows(rows[0], rows[1:])
}
