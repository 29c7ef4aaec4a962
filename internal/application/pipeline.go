package application

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/ahrav/go-topsis/internal/domain"
	"github.com/ahrav/go-topsis/internal/ports"
)

// Pipeline runs ranking stages in order, handing each stage the State the
// previous one produced. A Pipeline is assembled once and is read-only
// afterwards, so concurrent calls to Execute are safe.
type Pipeline struct {
	name   string
	stages []ports.Executable
}

// NewPipeline returns an empty pipeline. name appears in error messages.
func NewPipeline(name string) *Pipeline {
	return &Pipeline{name: name}
}

// ID returns the pipeline name.
func (p *Pipeline) ID() string { return p.name }

// Add appends stage. Stage IDs must be unique within a pipeline.
// Add must not be called once the pipeline is in use.
func (p *Pipeline) Add(stage ports.Executable) error {
	if stage == nil {
		return errors.New("pipeline: stage cannot be nil")
	}
	id := stage.ID()
	if slices.ContainsFunc(p.stages, func(s ports.Executable) bool { return s.ID() == id }) {
		return fmt.Errorf("pipeline %s: duplicate stage %q", p.name, id)
	}
	p.stages = append(p.stages, stage)
	return nil
}

// Execute threads state through every stage. It checks ctx before each
// stage. On failure it returns the State of the last stage that succeeded
// and an error naming the stage that did not.
func (p *Pipeline) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	for _, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			return state, fmt.Errorf("pipeline %s: stopped before %s: %w", p.name, stage.ID(), err)
		}
		next, err := stage.Execute(ctx, state)
		if err != nil {
			return state, fmt.Errorf("pipeline %s: stage %s failed: %w", p.name, stage.ID(), err)
		}
		state = next
	}
	return state, nil
}

// Executables returns the stages in execution order.
func (p *Pipeline) Executables() []ports.Executable {
	return slices.Clone(p.stages)
}
