package flow

import (
	"fmt"

	"github.com/ad/go-asset-questionnaire/internal/catalog"
	"github.com/ad/go-asset-questionnaire/internal/models"
)

const StepCount = catalog.StepCount

// Registry is the fixed, ordered set of questionnaire steps. It is never
// mutated after construction; completion lives in the Controller.
type Registry struct {
	steps []models.Step
}

func NewRegistry(steps []models.Step) (*Registry, error) {
	if len(steps) != StepCount {
		return nil, fmt.Errorf("%w: expected %d steps, got %d", ErrBadRegistry, StepCount, len(steps))
	}
	own := make([]models.Step, len(steps))
	for i, s := range steps {
		if s.ID != i+1 {
			return nil, fmt.Errorf("%w: step at position %d has id %d", ErrBadRegistry, i+1, s.ID)
		}
		s.Completed = false
		s.Categories = append([]string(nil), s.Categories...)
		own[i] = s
	}
	return &Registry{steps: own}, nil
}

// DefaultRegistry builds the registry from the embedded catalog.
func DefaultRegistry() (*Registry, error) {
	steps, err := catalog.Load()
	if err != nil {
		return nil, err
	}
	return NewRegistry(steps)
}

func (r *Registry) Len() int {
	return len(r.steps)
}

func (r *Registry) Valid(id int) bool {
	return id >= 1 && id <= len(r.steps)
}

func (r *Registry) Step(id int) (models.Step, error) {
	if !r.Valid(id) {
		return models.Step{}, fmt.Errorf("%w: %d", ErrInvalidStepID, id)
	}
	s := r.steps[id-1]
	s.Categories = append([]string(nil), s.Categories...)
	return s, nil
}

func (r *Registry) Steps() []models.Step {
	out := make([]models.Step, len(r.steps))
	for i, s := range r.steps {
		s.Categories = append([]string(nil), s.Categories...)
		out[i] = s
	}
	return out
}
