package application

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/go-topsis/infrastructure/units"
	"github.com/ahrav/go-topsis/internal/domain"
	"github.com/ahrav/go-topsis/internal/ports"
)

// tracerName is the instrumentation scope of the ranker spans.
const tracerName = "github.com/ahrav/go-topsis/internal/application"

// stageOrder is the canonical stage sequence. Each stage consumes the
// output of the one before it.
var stageOrder = []string{
	units.TypeNormalize,
	units.TypeWeight,
	units.TypeIdeal,
	units.TypeDistance,
	units.TypeCloseness,
	units.TypeRank,
}

// Verify interface compliance at compile time.
var _ domain.Ranker = (*Ranker)(nil)

// Ranker scores and ranks alternatives with TOPSIS. It is built once from
// a PolicyConfig and is safe for concurrent use: every call owns its own
// State and the pipeline holds no per-call data.
type Ranker struct {
	policies    PolicyConfig
	pipeline    *Pipeline
	registry    ports.UnitRegistry
	metrics     ports.MetricsCollector
	tracer      trace.Tracer
	concurrency int
	newID       func() string
}

// Option configures a Ranker.
type Option func(*Ranker)

// WithMetrics reports ranking and stage metrics to m.
func WithMetrics(m ports.MetricsCollector) Option {
	return func(r *Ranker) { r.metrics = m }
}

// WithTracer replaces the tracer obtained from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(r *Ranker) { r.tracer = t }
}

// WithRegistry builds the stages from registry instead of the default one.
func WithRegistry(registry ports.UnitRegistry) Option {
	return func(r *Ranker) { r.registry = registry }
}

// WithConcurrency bounds the number of tables RankBatch ranks at once.
// Values below 1 are ignored.
func WithConcurrency(n int) Option {
	return func(r *Ranker) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// NewRanker validates policies and assembles the six-stage pipeline.
// NewRanker returns a *domain.ValidationError for invalid policies.
func NewRanker(policies PolicyConfig, opts ...Option) (*Ranker, error) {
	r := &Ranker{
		policies:    policies,
		concurrency: runtime.GOMAXPROCS(0),
		newID:       func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.tracer == nil {
		r.tracer = otel.Tracer(tracerName)
	}
	if r.registry == nil {
		r.registry = NewDefaultUnitRegistry()
	}

	if err := validatePolicies(policies); err != nil {
		return nil, err
	}

	pipeline, err := r.buildPipeline()
	if err != nil {
		return nil, err
	}
	r.pipeline = pipeline
	return r, nil
}

func validatePolicies(p PolicyConfig) error {
	verr := domain.NewValidationError("policies")
	if err := collectFieldErrors(configValidator.Struct(p), verr); err != nil {
		return err
	}
	if verr.HasErrors() {
		return verr
	}
	return nil
}

// stageParams maps policies onto the parameters of each stage type.
func (r *Ranker) stageParams(stage string) map[string]any {
	switch stage {
	case units.TypeNormalize:
		return map[string]any{"zero_norm": string(r.policies.ZeroNorm)}
	case units.TypeCloseness:
		return map[string]any{"zero_distance": string(r.policies.ZeroDistance)}
	case units.TypeRank:
		return map[string]any{
			"ties":          string(r.policies.Ties),
			"tie_tolerance": r.policies.TieTolerance,
		}
	default:
		return nil
	}
}

func (r *Ranker) buildPipeline() (*Pipeline, error) {
	pipeline := NewPipeline("topsis")
	for _, stage := range stageOrder {
		unit, err := r.registry.CreateUnit(stage, stage, r.stageParams(stage))
		if err != nil {
			return nil, fmt.Errorf("failed to build stage %s: %w", stage, err)
		}
		if err := unit.Validate(); err != nil {
			return nil, fmt.Errorf("stage %s is misconfigured: %w", stage, err)
		}
		adapter := NewUnitAdapter(unit, stage)
		if r.metrics != nil {
			adapter = adapter.WithMetrics(r.metrics)
		}
		if err := pipeline.Add(adapter); err != nil {
			return nil, err
		}
	}
	return pipeline, nil
}

// Policies returns the policies the ranker was built with.
func (r *Ranker) Policies() PolicyConfig { return r.policies }

// Rank scores and ranks the alternatives of table. See domain.Ranker.
func (r *Ranker) Rank(
	ctx context.Context,
	table domain.Table,
	weights []float64,
	impacts []domain.Impact,
) (*domain.RankedTable, error) {
	exp, err := r.Explain(ctx, table, weights, impacts)
	if err != nil {
		return nil, err
	}
	return exp.Result, nil
}

// Explanation holds every intermediate of a ranking run alongside the
// result, for auditing how a score came about.
type Explanation struct {
	// ID identifies the run in traces.
	ID string `json:"id"`
	// Norms holds the Euclidean norm of each raw criterion column.
	Norms []float64 `json:"norms"`
	// Normalized is the vector-normalized matrix.
	Normalized domain.Matrix `json:"normalized"`
	// Weighted is the normalized matrix scaled by the weights.
	Weighted domain.Matrix `json:"weighted"`
	// Ideal holds the ideal best and worst vectors.
	Ideal domain.IdealPoints `json:"ideal"`
	// Distances holds S+ and S- per alternative.
	Distances domain.Distances `json:"distances"`
	// Result is the ranked table.
	Result *domain.RankedTable `json:"result"`
}

// Explain runs the ranking and returns the intermediates together with the
// ranked table.
func (r *Ranker) Explain(
	ctx context.Context,
	table domain.Table,
	weights []float64,
	impacts []domain.Impact,
) (*Explanation, error) {
	id := r.newID()
	ctx, span := r.tracer.Start(ctx, "Ranker.Rank",
		trace.WithAttributes(
			attribute.String("ranking.id", id),
			attribute.Int("ranking.alternatives", table.NumAlternatives()),
			attribute.Int("ranking.criteria", table.NumCriteria()),
			attribute.String("policy.ties", string(r.policies.Ties)),
		),
	)
	defer span.End()

	start := time.Now()
	exp, err := r.explain(ctx, id, table, weights, impacts)
	r.record(time.Since(start), exp, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if best, ok := exp.Result.Best(); ok {
		span.SetAttributes(
			attribute.String("ranking.best", best.Label),
			attribute.Float64("ranking.best_score", best.Score),
		)
	}
	return exp, nil
}

func (r *Ranker) explain(
	ctx context.Context,
	id string,
	table domain.Table,
	weights []float64,
	impacts []domain.Impact,
) (*Explanation, error) {
	if err := domain.ValidateShape(table, weights, impacts); err != nil {
		return nil, err
	}

	state := domain.NewRankingState(id, table, weights, impacts)
	out, err := r.pipeline.Execute(ctx, state)
	if err != nil {
		return nil, err
	}

	exp := &Explanation{ID: id}
	var ok bool
	if exp.Normalized, ok = domain.Get(out, domain.KeyNormalized); !ok {
		return nil, missingStageOutput(domain.KeyNormalized.Name())
	}
	if exp.Weighted, ok = domain.Get(out, domain.KeyWeighted); !ok {
		return nil, missingStageOutput(domain.KeyWeighted.Name())
	}
	if exp.Ideal, ok = domain.Get(out, domain.KeyIdeal); !ok {
		return nil, missingStageOutput(domain.KeyIdeal.Name())
	}
	if exp.Distances, ok = domain.Get(out, domain.KeyDistances); !ok {
		return nil, missingStageOutput(domain.KeyDistances.Name())
	}
	scores, ok := domain.Get(out, domain.KeyScores)
	if !ok {
		return nil, missingStageOutput(domain.KeyScores.Name())
	}
	ranks, ok := domain.Get(out, domain.KeyRanks)
	if !ok {
		return nil, missingStageOutput(domain.KeyRanks.Name())
	}
	if len(scores) != table.NumAlternatives() || len(ranks) != table.NumAlternatives() {
		return nil, fmt.Errorf("%w: got %d scores and %d ranks for %d alternatives",
			domain.ErrInvalidState, len(scores), len(ranks), table.NumAlternatives())
	}

	raw := table.Matrix()
	exp.Norms = make([]float64, raw.Cols())
	for j := range exp.Norms {
		exp.Norms[j] = raw.ColumnNorm(j)
	}
	exp.Result = assemble(table, scores, ranks)
	return exp, nil
}

func missingStageOutput(key string) error {
	return domain.NewStateError(key, "get", domain.ErrKeyNotFound)
}

// assemble builds the output table in input row order.
func assemble(table domain.Table, scores []float64, ranks []int) *domain.RankedTable {
	rows := make([]domain.ResultRow, len(table.Alternatives))
	for i, alt := range table.Alternatives {
		rows[i] = domain.ResultRow{
			Label:  alt.Label,
			Values: slices.Clone(alt.Values),
			Score:  scores[i],
			Rank:   ranks[i],
		}
	}
	return &domain.RankedTable{
		LabelName: table.LabelName,
		Criteria:  criteriaNames(table),
		Rows:      rows,
	}
}

// criteriaNames returns the table's criterion names, generating C1..Cn
// when the caller supplied none.
func criteriaNames(table domain.Table) []string {
	if len(table.Criteria) > 0 {
		return slices.Clone(table.Criteria)
	}
	names := make([]string, table.NumCriteria())
	for j := range names {
		names[j] = fmt.Sprintf("C%d", j+1)
	}
	return names
}

// record reports the outcome of one ranking run.
func (r *Ranker) record(elapsed time.Duration, exp *Explanation, err error) {
	if r.metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = errorStatus(err)
	}
	r.metrics.RecordCounter("rank_total", 1, map[string]string{"status": status})
	r.metrics.RecordLatency("rank", elapsed, nil)
	if exp == nil || exp.Result == nil {
		return
	}
	r.metrics.RecordGauge("alternatives", float64(len(exp.Result.Rows)), nil)
	for _, row := range exp.Result.Rows {
		r.metrics.RecordHistogram("score", row.Score, nil)
	}
}

// errorStatus classifies err for the status label of rank_total.
func errorStatus(err error) string {
	switch {
	case errors.Is(err, domain.ErrInputShape):
		return "input_shape"
	case errors.Is(err, domain.ErrEmptyInput):
		return "empty_input"
	case errors.Is(err, domain.ErrDegenerateColumn), errors.Is(err, domain.ErrDegenerateDistance):
		return "degenerate"
	case errors.Is(err, domain.ErrInvalidConfiguration):
		return "invalid_config"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}
