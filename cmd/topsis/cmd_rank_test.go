package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/ahrav/go-topsis/internal/domain"
	"github.com/ahrav/go-topsis/internal/ports"
)

const phonesCSV = `model,price,battery
A,250,8
B,200,7
C,300,9
`

const phonesText = `model  price  battery   score  rank
-----  -----  -------  ------  ----
A        250        8  0.5000     2
B        200        7  0.6135     1
C        300        9  0.3865     3
`

// runCLI executes the root command with args and returns what it wrote to
// stdout.
func runCLI(t *testing.T, stdin io.Reader, args ...string) (string, error) {
	t.Helper()

	rootCmd := newRootCommand()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	if stdin != nil {
		rootCmd.SetIn(stdin)
	}
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRankCommand_Text(t *testing.T) {
	input := writeFile(t, "phones.csv", phonesCSV)

	out, err := runCLI(t, nil, "rank", "--input", input, "--weights", "0.5,0.5", "--impacts", "cost,benefit")
	require.NoError(t, err)
	assert.Equal(t, phonesText, out)
}

func TestRankCommand_Stdin(t *testing.T) {
	out, err := runCLI(t, strings.NewReader(phonesCSV), "rank", "-i", "-", "--impacts", "-,+")
	require.NoError(t, err)
	assert.Equal(t, phonesText, out, "missing weights default to equal")
}

func TestRankCommand_RankSpanNestsUnderRead(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	input := writeFile(t, "phones.csv", phonesCSV)
	_, err := runCLI(t, nil, "rank", "--input", input, "--weights", "0.5,0.5", "--impacts", "cost,benefit")
	require.NoError(t, err)

	byName := make(map[string]sdktrace.ReadOnlySpan)
	for _, s := range recorder.Ended() {
		byName[s.Name()] = s
	}
	read, ok := byName["Table.Read"]
	require.True(t, ok, "ingest span recorded")
	rank, ok := byName["Ranker.Rank"]
	require.True(t, ok, "rank span recorded")

	assert.Equal(t, read.SpanContext().TraceID(), rank.SpanContext().TraceID())
	assert.Equal(t, read.SpanContext().SpanID(), rank.Parent().SpanID())
}

func TestRankCommand_CSVPrecision(t *testing.T) {
	input := writeFile(t, "phones.csv", phonesCSV)

	out, err := runCLI(t, nil, "rank", "--input", input, "--impacts", "cost,benefit",
		"--format", "csv", "--precision", "3")
	require.NoError(t, err)

	want := "model,price,battery,score,rank\n" +
		"A,250,8,0.500,2\n" +
		"B,200,7,0.613,1\n" +
		"C,300,9,0.387,3\n"
	assert.Equal(t, want, out)
}

func TestRankCommand_Delimiter(t *testing.T) {
	input := writeFile(t, "phones.tsv", strings.ReplaceAll(phonesCSV, ",", "\t"))

	out, err := runCLI(t, nil, "rank", "--input", input, "--impacts", "cost,benefit",
		"--delimiter", "tab", "--format", "csv", "--precision", "2")
	require.NoError(t, err)
	assert.Equal(t, "model\tprice\tbattery\tscore\trank\nA\t250\t8\t0.50\t2\nB\t200\t7\t0.61\t1\nC\t300\t9\t0.39\t3\n", out)
}

func TestRankCommand_ProfileMatchesColumnsByName(t *testing.T) {
	input := writeFile(t, "phones.csv", phonesCSV)
	profile := writeFile(t, "profile.yaml", `version: 1.0.0
name: phones
criteria: [Battery, Price]
weights: [1, 1]
impacts: [benefit, cost]
output:
  format: csv
  precision: 4
`)

	out, err := runCLI(t, nil, "rank", "--input", input, "--config", profile)
	require.NoError(t, err)
	assert.Contains(t, out, "B,200,7,0.6135,1\n")
	assert.Contains(t, out, "C,300,9,0.3865,3\n")
}

func TestRankCommand_FlagsOverrideProfile(t *testing.T) {
	input := writeFile(t, "phones.csv", phonesCSV)
	profile := writeFile(t, "profile.yaml", `impacts: [benefit, benefit]
output:
  format: json
`)

	out, err := runCLI(t, nil, "rank", "--input", input, "--config", profile,
		"--impacts", "cost,benefit", "--format", "text")
	require.NoError(t, err)
	assert.Equal(t, phonesText, out)
}

func TestRankCommand_JSONToFile(t *testing.T) {
	input := writeFile(t, "phones.csv", phonesCSV)
	output := filepath.Join(t.TempDir(), "ranked.json")

	out, err := runCLI(t, nil, "rank", "--input", input, "--impacts", "cost,benefit",
		"--format", "json", "--output", output)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(output)
	require.NoError(t, err)

	var doc struct {
		LabelName string   `json:"label_name"`
		Criteria  []string `json:"criteria"`
		Rows      []struct {
			Label string  `json:"label"`
			Score float64 `json:"score"`
			Rank  int     `json:"rank"`
		} `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "model", doc.LabelName)
	assert.Equal(t, []string{"price", "battery"}, doc.Criteria)
	require.Len(t, doc.Rows, 3)
	assert.Equal(t, "B", doc.Rows[1].Label)
	assert.Equal(t, 1, doc.Rows[1].Rank)
	assert.InDelta(t, 0.6135, doc.Rows[1].Score, 1e-9)
}

func TestRankCommand_DropsMalformedRows(t *testing.T) {
	input := writeFile(t, "phones.csv", phonesCSV+"D,abc,9\nE,,4\n")

	out, err := runCLI(t, nil, "rank", "--input", input, "--impacts", "cost,benefit")
	require.NoError(t, err)
	assert.Equal(t, phonesText, out)
}

func TestRankCommand_MetricsFile(t *testing.T) {
	input := writeFile(t, "phones.csv", phonesCSV+"D,abc,9\n")
	metricsFile := filepath.Join(t.TempDir(), "topsis.prom")

	_, err := runCLI(t, nil, "rank", "--input", input, "--impacts", "cost,benefit",
		"--metrics-file", metricsFile)
	require.NoError(t, err)

	data, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `topsis_rank_total{status="success"} 1`)
	assert.Contains(t, text, "topsis_rows_dropped_total 1")
	assert.Contains(t, text, "topsis_alternatives 3")
	assert.Contains(t, text, `topsis_stage_duration_seconds_count{stage="normalize"} 1`)
}

func TestRankCommand_MetricsFileWrittenOnFailure(t *testing.T) {
	input := writeFile(t, "flat.csv", "model,price,battery\nA,0,8\nB,0,7\n")
	metricsFile := filepath.Join(t.TempDir(), "topsis.prom")

	_, err := runCLI(t, nil, "rank", "--input", input, "--impacts", "cost,benefit",
		"--metrics-file", metricsFile)
	require.Error(t, err)

	data, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `topsis_rank_total{status="degenerate"} 1`)
}

func TestRankCommand_MetricsFileUnwritable(t *testing.T) {
	input := writeFile(t, "phones.csv", phonesCSV)
	metricsFile := filepath.Join(t.TempDir(), "missing", "topsis.prom")

	out, err := runCLI(t, nil, "rank", "--input", input, "--impacts", "cost,benefit",
		"--metrics-file", metricsFile)
	var metricsErr *ports.MetricsError
	require.ErrorAs(t, err, &metricsErr)
	assert.Equal(t, "write", metricsErr.Operation)
	assert.Equal(t, ExitFailure, exitCode(err))
	assert.Equal(t, phonesText, out, "the ranking is written before metrics are exported")
}

func TestRankCommand_ZeroNormPolicy(t *testing.T) {
	input := writeFile(t, "flat.csv", "model,price,battery\nA,0,8\nB,0,7\n")

	_, err := runCLI(t, nil, "rank", "--input", input, "--impacts", "cost,benefit")
	require.ErrorIs(t, err, domain.ErrDegenerateColumn)
	assert.Equal(t, ExitInputError, exitCode(err))

	out, err := runCLI(t, nil, "rank", "--input", input, "--impacts", "cost,benefit",
		"--zero-norm", "zero", "--format", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "A,0,8,1.0000,1\n")
	assert.Contains(t, out, "B,0,7,0.0000,2\n")
}

func TestRankCommand_Errors(t *testing.T) {
	input := writeFile(t, "phones.csv", phonesCSV)

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantMsg  string
	}{
		{
			name:     "missing input flag",
			args:     []string{"rank", "--impacts", "cost,benefit"},
			wantCode: ExitInputError,
			wantMsg:  `"input"`,
		},
		{
			name:     "input file does not exist",
			args:     []string{"rank", "--input", filepath.Join(t.TempDir(), "nope.csv"), "--impacts", "cost,benefit"},
			wantCode: ExitInputError,
			wantMsg:  "failed to open file",
		},
		{
			name:     "impacts missing",
			args:     []string{"rank", "--input", input},
			wantCode: ExitInputError,
			wantMsg:  "impacts",
		},
		{
			name:     "impact count mismatch",
			args:     []string{"rank", "--input", input, "--impacts", "cost"},
			wantCode: ExitInputError,
			wantMsg:  "impacts",
		},
		{
			name:     "weight count mismatch",
			args:     []string{"rank", "--input", input, "--impacts", "cost,benefit", "--weights", "1,2,3"},
			wantCode: ExitInputError,
			wantMsg:  "weights",
		},
		{
			name:     "misspelled impact",
			args:     []string{"rank", "--input", input, "--impacts", "cost,benfit"},
			wantCode: ExitInputError,
			wantMsg:  `did you mean "benefit"`,
		},
		{
			name:     "negative weight",
			args:     []string{"rank", "--input", input, "--impacts", "cost,benefit", "--weights", "1,-1"},
			wantCode: ExitInputError,
			wantMsg:  "weights[1]",
		},
		{
			name:     "unparsable weight",
			args:     []string{"rank", "--input", input, "--impacts", "cost,benefit", "--weights", "1,heavy"},
			wantCode: ExitInputError,
			wantMsg:  "weights",
		},
		{
			name:     "unknown tie policy",
			args:     []string{"rank", "--input", input, "--impacts", "cost,benefit", "--ties", "dens"},
			wantCode: ExitInputError,
			wantMsg:  `did you mean "dense"`,
		},
		{
			name:     "unknown format",
			args:     []string{"rank", "--input", input, "--impacts", "cost,benefit", "--format", "xml"},
			wantCode: ExitInputError,
			wantMsg:  "output.format",
		},
		{
			name:     "multi-character delimiter",
			args:     []string{"rank", "--input", input, "--impacts", "cost,benefit", "--delimiter", ";;"},
			wantCode: ExitInputError,
			wantMsg:  "--delimiter",
		},
		{
			name:     "profile not found",
			args:     []string{"rank", "--input", input, "--config", filepath.Join(t.TempDir(), "missing.yaml")},
			wantCode: ExitInputError,
			wantMsg:  "configuration not found",
		},
		{
			name:     "unknown flag",
			args:     []string{"rank", "--input", input, "--wat"},
			wantCode: ExitInputError,
			wantMsg:  "unknown flag",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCLI(t, nil, tt.args...)
			require.Error(t, err)
			assert.Empty(t, out, "no partial output on error")
			assert.Equal(t, tt.wantCode, exitCode(err))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestRankCommand_EmptyTable(t *testing.T) {
	input := writeFile(t, "bad.csv", "model,price\nA,x\nB,\n")

	_, err := runCLI(t, nil, "rank", "--input", input, "--impacts", "cost")
	require.ErrorIs(t, err, domain.ErrEmptyInput)
	assert.Equal(t, ExitInputError, exitCode(err))
}

func TestParseRune(t *testing.T) {
	tests := []struct {
		value   string
		want    rune
		wantErr bool
	}{
		{value: "", want: 0},
		{value: ",", want: ','},
		{value: ";", want: ';'},
		{value: "tab", want: '\t'},
		{value: `\t`, want: '\t'},
		{value: "§", want: '§'},
		{value: "ab", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := parseRune("delimiter", tt.value)
			if tt.wantErr {
				var usageErr *UsageError
				require.ErrorAs(t, err, &usageErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
