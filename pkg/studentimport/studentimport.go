// Package studentimport reads bootcamp student lists into domain.ImportedStudentData records.
package studentimport

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"go-headhunter-backend/internal/domain"
)

var ErrUnsupportedFormat = errors.New("unsupported import file format: expected .csv or .xlsx")

// Column names, compared after lowercasing and removing "_", "-" and spaces
const (
	colEmail             = "email"
	colCourseCompletion  = "coursecompletion"
	colCourseEngagement  = "courseengagement"
	colProjectDegree     = "projectdegree"
	colTeamProjectDegree = "teamprojectdegree"
	colBonusProjectUrls  = "bonusprojecturls"
)

// FromUpload picks a source by file extension
func FromUpload(filename string, data []byte) (domain.StudentImportSource, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return NewCSVSource(data), nil
	case ".xlsx":
		return NewXLSXSource(data), nil
	default:
		return nil, ErrUnsupportedFormat
	}
}

// StaticSource serves a fixed list of records
type StaticSource []domain.ImportedStudentData

func (s StaticSource) Records(ctx context.Context) ([]domain.ImportedStudentData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]domain.ImportedStudentData, len(s))
	copy(out, s)
	return out, nil
}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(h)) {
		if r == '_' || r == '-' || unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// parseRows converts a header and data rows into records. Blank rows are skipped.
func parseRows(header []string, rows [][]string) ([]domain.ImportedStudentData, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[normalizeHeader(h)] = i
	}
	if _, ok := index[colEmail]; !ok {
		return nil, fmt.Errorf("missing required column %q", colEmail)
	}

	cell := func(row []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	records := make([]domain.ImportedStudentData, 0, len(rows))
	for n, row := range rows {
		if isBlank(row) {
			continue
		}
		lineNo := n + 2 // header is line 1

		rec := domain.ImportedStudentData{
			Email:            cell(row, colEmail),
			BonusProjectUrls: splitURLs(cell(row, colBonusProjectUrls)),
			Line:             lineNo,
		}
		grades := []struct {
			col string
			dst *float64
		}{
			{colCourseCompletion, &rec.CourseCompletion},
			{colCourseEngagement, &rec.CourseEngagement},
			{colProjectDegree, &rec.ProjectDegree},
			{colTeamProjectDegree, &rec.TeamProjectDegree},
		}
		for _, g := range grades {
			v, err := parseGrade(cell(row, g.col))
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid %s: %w", lineNo, g.col, err)
			}
			*g.dst = v
		}
		records = append(records, rec)
	}
	return records, nil
}

// parseGrade accepts "4.5" and "4,5"; an empty cell is 0
func parseGrade(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
}

func splitURLs(s string) []string {
	if s == "" {
		return nil
	}
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ';' || r == ',' || unicode.IsSpace(r)
	})
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
