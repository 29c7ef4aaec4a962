// Package table reads decision tables from delimited files and renders
// ranked tables as text, CSV or JSON.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/ahrav/go-topsis/internal/domain"
)

// ReadOptions controls how a delimited file is parsed.
type ReadOptions struct {
	// Delimiter separates fields. Zero means ','.
	Delimiter rune
	// Comment starts a comment line when it is the first character.
	// Zero disables comments.
	Comment rune
}

// ReadResult is a parsed table together with the rows dropped on the way.
type ReadResult struct {
	Table    domain.Table
	Warnings []domain.RowWarning
	// Rows is the number of data records seen, kept or dropped.
	Rows int
}

// ReadFile reads a decision table from path. See Read.
func ReadFile(path string, opts ReadOptions) (*ReadResult, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("csv: failed to open file: %w", err)
	}
	defer f.Close()

	return Read(f, opts)
}

// Read parses a decision table. The first record is the header; its first
// column names the labels and the remaining columns are the criteria.
// Every later record is an alternative.
//
// A record with the wrong number of fields, a stray quote in an unquoted
// field, an empty cell, or a criterion value that is not a finite number is
// dropped and reported as a
// domain.RowWarning instead of failing the whole read. Read fails with a
// *domain.InputShapeError when the header has fewer than two columns or
// repeats a name, and with a *domain.EmptyInputError when no alternative
// survives.
func Read(r io.Reader, opts ReadOptions) (*ReadResult, error) {
	cr := csv.NewReader(r)
	cr.Comma = ','
	if opts.Delimiter != 0 {
		cr.Comma = opts.Delimiter
	}
	cr.Comment = opts.Comment
	cr.FieldsPerRecord = -1 // Field counts are checked per row so bad rows can be dropped.
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &domain.EmptyInputError{}
	}
	if err != nil {
		return nil, fmt.Errorf("csv: failed to read header: %w", err)
	}
	header = trimCells(header)
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	res := &ReadResult{
		Table: domain.Table{
			LabelName:    header[0],
			Criteria:     header[1:],
			Alternatives: make([]domain.Alternative, 0),
		},
	}

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if warn, ok := recoverableParseError(err); ok {
			res.Rows++
			res.Warnings = append(res.Warnings, warn)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("csv: %w", err)
		}
		res.Rows++

		line, _ := cr.FieldPos(0)
		alt, warn, ok := parseRow(header, trimCells(record), line)
		if !ok {
			res.Warnings = append(res.Warnings, warn)
			continue
		}
		res.Table.Alternatives = append(res.Table.Alternatives, alt)
	}

	if len(res.Table.Alternatives) == 0 {
		return nil, &domain.EmptyInputError{Dropped: len(res.Warnings)}
	}
	return res, nil
}

// recoverableParseError reports whether err is a record-level syntax error
// that leaves the reader positioned at the next record. An unterminated
// quoted field is not recoverable because it consumes every later line.
func recoverableParseError(err error) (domain.RowWarning, bool) {
	var pe *csv.ParseError
	if !errors.As(err, &pe) {
		return domain.RowWarning{}, false
	}
	if !errors.Is(pe.Err, csv.ErrBareQuote) && !errors.Is(pe.Err, csv.ErrFieldCount) {
		return domain.RowWarning{}, false
	}
	return domain.RowWarning{Line: pe.StartLine, Reason: pe.Err.Error()}, true
}

// checkHeader requires a label column, at least one criterion and
// distinct names. Names are compared case-insensitively.
func checkHeader(header []string) error {
	if len(header) < 2 {
		return &domain.InputShapeError{
			Field:    "header",
			Index:    -1,
			Expected: 2,
			Got:      len(header),
			Reason:   "need a label column and at least one criterion",
		}
	}
	fold := cases.Fold()
	seen := make(map[string]int, len(header))
	for i, name := range header {
		if name == "" {
			return domain.NewElementError("header", i, "empty column name")
		}
		key := fold.String(name)
		if first, dup := seen[key]; dup {
			return domain.NewElementError("header", i,
				fmt.Sprintf("column %q repeats column %d (%q)", name, first, header[first]))
		}
		seen[key] = i
	}
	return nil
}

// parseRow converts one record. It returns false and the reason when the
// record must be dropped.
func parseRow(header, record []string, line int) (domain.Alternative, domain.RowWarning, bool) {
	if len(record) != len(header) {
		return domain.Alternative{}, domain.RowWarning{
			Line:   line,
			Reason: fmt.Sprintf("expected %d fields, got %d", len(header), len(record)),
		}, false
	}
	if record[0] == "" {
		return domain.Alternative{}, domain.RowWarning{Line: line, Column: header[0], Reason: "missing label"}, false
	}

	values := make([]float64, len(record)-1)
	for j, cell := range record[1:] {
		column := header[j+1]
		if cell == "" {
			return domain.Alternative{}, domain.RowWarning{Line: line, Column: column, Reason: "missing value"}, false
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			var numErr *strconv.NumError
			if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
				return domain.Alternative{}, domain.RowWarning{Line: line, Column: column, Reason: fmt.Sprintf("value %q is out of range", cell)}, false
			}
			return domain.Alternative{}, domain.RowWarning{Line: line, Column: column, Reason: fmt.Sprintf("value %q is not a number", cell)}, false
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return domain.Alternative{}, domain.RowWarning{Line: line, Column: column, Reason: fmt.Sprintf("value %q is not finite", cell)}, false
		}
		values[j] = v
	}

	return domain.Alternative{Label: record[0], Values: values}, domain.RowWarning{}, true
}

func trimCells(cells []string) []string {
	for i, c := range cells {
		cells[i] = strings.TrimSpace(c)
	}
	return cells
}
