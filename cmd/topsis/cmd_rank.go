package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/ahrav/go-topsis/infrastructure/middleware"
	"github.com/ahrav/go-topsis/infrastructure/table"
	"github.com/ahrav/go-topsis/infrastructure/units"
	"github.com/ahrav/go-topsis/internal/application"
	"github.com/ahrav/go-topsis/internal/domain"
	"github.com/ahrav/go-topsis/internal/ports"
)

type rankOptions struct {
	input        string
	config       string
	weights      []float64
	impacts      []string
	format       string
	output       string
	precision    int
	ties         string
	zeroNorm     string
	zeroDistance string
	delimiter    string
	comment      string
	metricsFile  string
}

func newRankCommand() *cobra.Command {
	opts := &rankOptions{}

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Score and rank the alternatives of a decision table",
		Long: `Score and rank the alternatives of a delimited decision table.

The first column of the input holds the alternative labels and every
other column a numeric criterion. Weights and impacts come from a
profile (--config), from flags, or both; flags win. Rows with missing
or non-numeric values are dropped with a warning.`,
		Example: `  topsis rank --input phones.csv --weights 0.5,0.5 --impacts cost,benefit
  topsis rank --input phones.csv --config profile.yaml --format json
  cat phones.csv | topsis rank --input - --impacts -,+ --ties dense`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRank(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.input, "input", "i", "", "Decision table to rank, or - for stdin")
	f.StringVarP(&opts.config, "config", "c", "", "Ranking profile (YAML)")
	f.Float64SliceVarP(&opts.weights, "weights", "w", nil, "Comma-separated criterion weights")
	f.StringSliceVar(&opts.impacts, "impacts", nil, "Comma-separated impacts (benefit|cost, +|-, max|min)")
	f.StringVarP(&opts.format, "format", "f", table.FormatText, "Output format: text, csv or json")
	f.StringVarP(&opts.output, "output", "o", "", "Write the ranked table to a file instead of stdout")
	f.IntVar(&opts.precision, "precision", table.DefaultPrecision, "Decimal places printed for scores")
	f.StringVar(&opts.ties, "ties", string(units.TieCompetition), "Tie policy: competition, dense or ordinal")
	f.StringVar(&opts.zeroNorm, "zero-norm", string(units.ZeroNormError), "Zero-norm column policy: error or zero")
	f.StringVar(&opts.zeroDistance, "zero-distance", string(units.ZeroDistanceHalf), "Zero-distance row policy: half or error")
	f.StringVar(&opts.delimiter, "delimiter", ",", `Field delimiter of the input and CSV output ("tab" for \t)`)
	f.StringVar(&opts.comment, "comment", "", "Lines starting with this character are ignored")
	f.StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus metrics in text format to this file")

	return cmd
}

func runRank(cmd *cobra.Command, opts *rankOptions) (err error) {
	if opts.input == "" {
		return &UsageError{Err: errors.New("required flag \"input\" not set")}
	}

	cfg, err := loadProfile(opts.config)
	if err != nil {
		return err
	}
	applyRankFlags(cmd, &cfg, opts)
	if err := cfg.Validate(); err != nil {
		return err
	}

	delimiter, err := parseRune("delimiter", opts.delimiter)
	if err != nil {
		return err
	}
	comment, err := parseRune("comment", opts.comment)
	if err != nil {
		return err
	}

	var (
		reg     *prometheus.Registry
		metrics ports.MetricsCollector
	)
	if opts.metricsFile != "" {
		reg = prometheus.NewRegistry()
		metrics = middleware.NewPrometheusMetrics(reg)
		defer func() {
			if werr := prometheus.WriteToTextfile(opts.metricsFile, reg); werr != nil && err == nil {
				err = ports.NewMetricsError(opts.metricsFile, "write", werr)
			}
		}()
	}

	ctx, res, err := readInput(cmd, opts.input, table.ReadOptions{Delimiter: delimiter, Comment: comment}, metrics)
	if err != nil {
		return err
	}
	for _, w := range res.Warnings {
		slog.Warn("dropped row", "line", w.Line, "column", w.Column, "reason", w.Reason)
	}
	slog.Debug("read decision table",
		"source", opts.input,
		"rows", res.Rows,
		"alternatives", res.Table.NumAlternatives(),
		"criteria", res.Table.NumCriteria(),
	)

	weights, impacts, err := cfg.Resolve(res.Table.Criteria)
	if err != nil {
		return err
	}

	var rankerOpts []application.Option
	if metrics != nil {
		rankerOpts = append(rankerOpts, application.WithMetrics(metrics))
	}
	ranker, err := application.NewRanker(cfg.Policies, rankerOpts...)
	if err != nil {
		return err
	}
	ranked, err := ranker.Rank(ctx, res.Table, weights, impacts)
	if err != nil {
		return err
	}

	writer, err := table.WriterFor(cfg.Output.Format, cfg.Output.Precision)
	if err != nil {
		return err
	}
	if csvWriter, ok := writer.(*table.CSVWriter); ok {
		csvWriter.Delimiter = delimiter
	}
	if err := writeOutput(cmd, opts.output, writer, ranked); err != nil {
		return err
	}

	if best, ok := ranked.Best(); ok {
		slog.Info("ranking complete",
			"alternatives", len(ranked.Rows),
			"dropped", len(res.Warnings),
			"best", best.Label,
			"score", best.Score,
		)
	}
	return nil
}

// loadProfile returns the profile at path, or the defaults when no path
// is given.
func loadProfile(path string) (application.RankConfig, error) {
	if path == "" {
		return application.DefaultRankConfig(), nil
	}
	cfg, err := application.LoadConfig(path)
	if err != nil {
		return application.RankConfig{}, err
	}
	slog.Debug("loaded profile", "path", path, "name", cfg.Name, "version", cfg.Version)
	return cfg, nil
}

// applyRankFlags overrides profile values with the flags set on the
// command line.
func applyRankFlags(cmd *cobra.Command, cfg *application.RankConfig, opts *rankOptions) {
	f := cmd.Flags()
	if f.Changed("weights") {
		cfg.Weights = opts.weights
	}
	if f.Changed("impacts") {
		cfg.Impacts = opts.impacts
	}
	if f.Changed("format") {
		cfg.Output.Format = opts.format
	}
	if f.Changed("precision") {
		cfg.Output.Precision = opts.precision
	}
	if f.Changed("ties") {
		cfg.Policies.Ties = units.TiePolicy(opts.ties)
	}
	if f.Changed("zero-norm") {
		cfg.Policies.ZeroNorm = units.ZeroNormPolicy(opts.zeroNorm)
	}
	if f.Changed("zero-distance") {
		cfg.Policies.ZeroDistance = units.ZeroDistancePolicy(opts.zeroDistance)
	}
}

// parseRune accepts a single character, "tab" or `\t`. An empty value
// yields zero.
func parseRune(flag, value string) (rune, error) {
	switch value {
	case "":
		return 0, nil
	case "tab", `\t`:
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(value)
	if r == utf8.RuneError || size != len(value) {
		return 0, &UsageError{Err: fmt.Errorf("--%s must be a single character, got %q", flag, value)}
	}
	return r, nil
}

// readInput reads the decision table from path or stdin inside an
// ingestion span. The returned context carries that span so later work is
// traced beneath it.
func readInput(
	cmd *cobra.Command,
	path string,
	opts table.ReadOptions,
	metrics ports.MetricsCollector,
) (context.Context, *table.ReadResult, error) {
	observer := middleware.NewOTelIngestObserver(metrics, path)
	ctx := observer.Start(cmd.Context())

	start := time.Now()
	var (
		res *table.ReadResult
		err error
	)
	if path == "-" {
		res, err = table.Read(cmd.InOrStdin(), opts)
	} else {
		res, err = table.ReadFile(path, opts)
	}

	var (
		rows     int
		warnings []domain.RowWarning
	)
	if res != nil {
		rows, warnings = res.Rows, res.Warnings
	}
	observer.Finish(rows, warnings, time.Since(start), err)

	if err != nil {
		return ctx, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ctx, res, nil
}

func writeOutput(cmd *cobra.Command, path string, writer ports.TableWriter, ranked *domain.RankedTable) error {
	if path == "" {
		return writer.Write(cmd.OutOrStdout(), ranked)
	}

	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := writer.Write(f, ranked); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s output: %w", writer.Format(), err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	return nil
}
