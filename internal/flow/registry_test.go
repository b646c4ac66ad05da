package flow

import (
	"errors"
	"testing"

	"github.com/ad/go-asset-questionnaire/internal/models"
)

func testSteps(n int) []models.Step {
	steps := make([]models.Step, n)
	for i := range steps {
		steps[i] = models.Step{ID: i + 1, Name: "Step", Categories: []string{"A", "B"}}
	}
	return steps
}

func TestNewRegistry(t *testing.T) {
	if _, err := NewRegistry(testSteps(StepCount)); err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}

	if _, err := NewRegistry(testSteps(StepCount - 1)); !errors.Is(err, ErrBadRegistry) {
		t.Errorf("Expected ErrBadRegistry for short registry, got %v", err)
	}

	steps := testSteps(StepCount)
	steps[2].ID = 9
	if _, err := NewRegistry(steps); !errors.Is(err, ErrBadRegistry) {
		t.Errorf("Expected ErrBadRegistry for bad ids, got %v", err)
	}
}

func TestRegistryIsReadOnly(t *testing.T) {
	steps := testSteps(StepCount)
	steps[0].Completed = true
	r, err := NewRegistry(steps)
	if err != nil {
		t.Fatal(err)
	}

	first, _ := r.Step(1)
	if first.Completed {
		t.Error("Registry must reset completion flags")
	}

	steps[0].Name = "Changed"
	steps[0].Categories[0] = "Changed"
	got := r.Steps()
	if got[0].Name != "Step" || got[0].Categories[0] != "A" {
		t.Error("Registry must not alias caller slices")
	}

	got[1].Name = "Mutated"
	again, _ := r.Step(2)
	if again.Name != "Step" {
		t.Error("Steps() must return copies")
	}

	if _, err := r.Step(0); !errors.Is(err, ErrInvalidStepID) {
		t.Errorf("Expected ErrInvalidStepID, got %v", err)
	}
}
