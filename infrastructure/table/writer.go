package table

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/ahrav/go-topsis/internal/domain"
	"github.com/ahrav/go-topsis/internal/ports"
)

// Output format names accepted by WriterFor.
const (
	FormatText = "text"
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// DefaultPrecision is the number of decimal places printed for scores.
const DefaultPrecision = 4

// Verify interface compliance at compile time.
var (
	_ ports.TableWriter = (*TextWriter)(nil)
	_ ports.TableWriter = (*CSVWriter)(nil)
	_ ports.TableWriter = (*JSONWriter)(nil)
)

// WriterFor returns the writer for format with scores rounded to precision
// decimal places. It returns an error wrapping ports.ErrUnknownFormat for
// any other format name.
func WriterFor(format string, precision int) (ports.TableWriter, error) {
	switch strings.ToLower(format) {
	case FormatText, "":
		return &TextWriter{Precision: precision}, nil
	case FormatCSV:
		return &CSVWriter{Precision: precision}, nil
	case FormatJSON:
		return &JSONWriter{Precision: precision, Indent: true}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ports.ErrUnknownFormat, format)
	}
}

// formatValue prints criterion values in their shortest round-tripping
// form so the output reproduces the input.
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatScore(v float64, precision int) string {
	return strconv.FormatFloat(v, 'f', precision, 64)
}

// cells renders one row in header order.
func cells(row domain.ResultRow, precision int) []string {
	out := make([]string, 0, len(row.Values)+3)
	out = append(out, row.Label)
	for _, v := range row.Values {
		out = append(out, formatValue(v))
	}
	return append(out, formatScore(row.Score, precision), strconv.Itoa(row.Rank))
}

// TextWriter renders an aligned, human-readable table. Column widths are
// measured in terminal cells so labels with wide or combining characters
// still line up.
type TextWriter struct {
	// Precision is the number of decimal places printed for scores.
	Precision int
}

// Format returns "text".
func (tw *TextWriter) Format() string { return FormatText }

// Write renders table to w. The label column is left aligned and all
// numeric columns are right aligned.
func (tw *TextWriter) Write(w io.Writer, table *domain.RankedTable) error {
	header := table.Header()
	rows := make([][]string, len(table.Rows))
	for i, row := range table.Rows {
		rows[i] = cells(row, tw.Precision)
	}

	widths := make([]int, len(header))
	for j, h := range header {
		widths[j] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for j, c := range row {
			if j < len(widths) {
				widths[j] = max(widths[j], runewidth.StringWidth(c))
			}
		}
	}

	bw := bufio.NewWriter(w)
	writeLine := func(line []string) {
		for j, c := range line {
			if j > 0 {
				bw.WriteString("  ")
			}
			if j == 0 {
				bw.WriteString(runewidth.FillRight(c, widths[j]))
			} else {
				bw.WriteString(runewidth.FillLeft(c, widths[j]))
			}
		}
		bw.WriteByte('\n')
	}

	writeLine(header)
	rule := make([]string, len(widths))
	for j, width := range widths {
		rule[j] = strings.Repeat("-", width)
	}
	writeLine(rule)
	for _, row := range rows {
		writeLine(row)
	}
	return bw.Flush()
}

// CSVWriter renders the ranked table as delimited text with the input
// header followed by score and rank.
type CSVWriter struct {
	// Precision is the number of decimal places printed for scores.
	Precision int
	// Delimiter separates fields. Zero means ','.
	Delimiter rune
}

// Format returns "csv".
func (cw *CSVWriter) Format() string { return FormatCSV }

// Write renders table to w.
func (cw *CSVWriter) Write(w io.Writer, table *domain.RankedTable) error {
	out := csv.NewWriter(w)
	if cw.Delimiter != 0 {
		out.Comma = cw.Delimiter
	}
	if err := out.Write(table.Header()); err != nil {
		return fmt.Errorf("csv: failed to write header: %w", err)
	}
	for _, row := range table.Rows {
		if err := out.Write(cells(row, cw.Precision)); err != nil {
			return fmt.Errorf("csv: failed to write row %q: %w", row.Label, err)
		}
	}
	out.Flush()
	return out.Error()
}

// JSONWriter renders the ranked table as a JSON document.
type JSONWriter struct {
	// Precision is the number of decimal places kept for scores.
	Precision int
	// Indent pretty-prints the document.
	Indent bool
}

// Format returns "json".
func (jw *JSONWriter) Format() string { return FormatJSON }

type jsonRow struct {
	Label  string      `json:"label"`
	Values []float64   `json:"values"`
	Score  json.Number `json:"score"`
	Rank   int         `json:"rank"`
}

type jsonTable struct {
	LabelName string    `json:"label_name"`
	Criteria  []string  `json:"criteria"`
	Rows      []jsonRow `json:"rows"`
}

// Write renders table to w. Scores are emitted as numbers rounded to
// Precision decimals.
func (jw *JSONWriter) Write(w io.Writer, table *domain.RankedTable) error {
	doc := jsonTable{
		LabelName: table.LabelName,
		Criteria:  table.Criteria,
		Rows:      make([]jsonRow, len(table.Rows)),
	}
	for i, row := range table.Rows {
		doc.Rows[i] = jsonRow{
			Label:  row.Label,
			Values: row.Values,
			Score:  json.Number(formatScore(row.Score, jw.Precision)),
			Rank:   row.Rank,
		}
	}

	enc := json.NewEncoder(w)
	if jw.Indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("json: failed to encode table: %w", err)
	}
	return nil
}

// WriteDecisionTable writes an unranked table in the layout Read accepts.
func WriteDecisionTable(w io.Writer, t domain.Table, delimiter rune) error {
	out := csv.NewWriter(w)
	if delimiter != 0 {
		out.Comma = delimiter
	}
	header := append([]string{t.LabelName}, t.Criteria...)
	if err := out.Write(header); err != nil {
		return fmt.Errorf("csv: failed to write header: %w", err)
	}
	for _, alt := range t.Alternatives {
		record := make([]string, 0, len(alt.Values)+1)
		record = append(record, alt.Label)
		for _, v := range alt.Values {
			record = append(record, formatValue(v))
		}
		if err := out.Write(record); err != nil {
			return fmt.Errorf("csv: failed to write row %q: %w", alt.Label, err)
		}
	}
	out.Flush()
	return out.Error()
}
