package flow

import (
	"errors"
	"math"
	"testing"

	"github.com/ad/go-asset-questionnaire/internal/models"
	"pgregory.net/rapid"
)

type fatalHelper interface {
	Helper()
	Fatalf(format string, args ...any)
}

func newTestController(t fatalHelper) *Controller {
	t.Helper()
	registry, err := DefaultRegistry()
	if err != nil {
		t.Fatalf("DefaultRegistry failed: %v", err)
	}
	return New(registry)
}

func TestNewController_InitialState(t *testing.T) {
	c := newTestController(t)

	if c.CurrentStepID() != 1 {
		t.Errorf("Expected current step 1, got %d", c.CurrentStepID())
	}
	if c.ProgressPercent() != 0 {
		t.Errorf("Expected 0%% progress, got %d", c.ProgressPercent())
	}
	if c.Status() != StatusInProgress {
		t.Errorf("Expected status %s, got %s", StatusInProgress, c.Status())
	}

	steps := c.Steps()
	if len(steps) != StepCount {
		t.Fatalf("Expected %d steps, got %d", StepCount, len(steps))
	}
	for i, s := range steps {
		if s.ID != i+1 {
			t.Errorf("Step at %d has id %d", i, s.ID)
		}
		if s.Completed {
			t.Errorf("Step %d should not be completed", s.ID)
		}
	}

	flags := c.DisclosureFlags()
	if len(flags) != StepCount {
		t.Fatalf("Expected %d disclosure flags, got %d", StepCount, len(flags))
	}
	for id, v := range flags {
		if v {
			t.Errorf("Disclosure flag for step %d should be false", id)
		}
	}
}

func TestScenarioA_ProgressAfterMarkComplete(t *testing.T) {
	c := newTestController(t)

	if err := c.MarkComplete(1); err != nil {
		t.Fatalf("MarkComplete(1) failed: %v", err)
	}
	if c.ProgressPercent() != 14 {
		t.Errorf("Expected 14%%, got %d", c.ProgressPercent())
	}

	if err := c.MarkComplete(2); err != nil {
		t.Fatalf("MarkComplete(2) failed: %v", err)
	}
	if c.ProgressPercent() != 29 {
		t.Errorf("Expected 29%%, got %d", c.ProgressPercent())
	}
}

func TestScenarioB_GoToThenRetreat(t *testing.T) {
	c := newTestController(t)

	if err := c.GoToStep(5); err != nil {
		t.Fatalf("GoToStep(5) failed: %v", err)
	}
	if err := c.Retreat(); err != nil {
		t.Fatalf("Retreat failed: %v", err)
	}
	if c.CurrentStepID() != 4 {
		t.Errorf("Expected step 4, got %d", c.CurrentStepID())
	}
}

func TestScenarioC_AdvanceFromLastStepSubmits(t *testing.T) {
	c := newTestController(t)

	if err := c.GoToStep(7); err != nil {
		t.Fatalf("GoToStep(7) failed: %v", err)
	}

	status, err := c.Advance()
	if err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	if status != StatusSubmitted {
		t.Fatalf("Expected status %s, got %s", StatusSubmitted, status)
	}
	if c.CurrentStepID() != 7 {
		t.Errorf("Expected to stay on step 7, got %d", c.CurrentStepID())
	}
	if !c.CurrentStep().Completed {
		t.Error("Step 7 should be completed after submit")
	}

	_, err = c.Advance()
	if !errors.Is(err, ErrSubmitted) {
		t.Errorf("Expected ErrSubmitted on second advance, got %v", err)
	}
	if err := c.GoToStep(1); !errors.Is(err, ErrSubmitted) {
		t.Errorf("Expected ErrSubmitted from GoToStep after submit, got %v", err)
	}
	if err := c.Retreat(); !errors.Is(err, ErrSubmitted) {
		t.Errorf("Expected ErrSubmitted from Retreat after submit, got %v", err)
	}
}

func TestScenarioD_NoAssetsStillCompletes(t *testing.T) {
	c := newTestController(t)

	if err := c.SetHasAssets(2, true); err != nil {
		t.Fatalf("SetHasAssets(2, true) failed: %v", err)
	}
	if err := c.SetHasAssets(2, false); err != nil {
		t.Fatalf("SetHasAssets(2, false) failed: %v", err)
	}
	if c.DisclosureFlags()[2] {
		t.Error("Expected disclosure flag for step 2 to be false")
	}
	if err := c.MarkComplete(2); err != nil {
		t.Fatalf("MarkComplete(2) failed: %v", err)
	}
	s, _ := c.Step(2)
	if !s.Completed {
		t.Error("Step 2 should be completed")
	}
}

func TestRetreatAtFirstStepIsNoop(t *testing.T) {
	c := newTestController(t)

	if err := c.Retreat(); err != nil {
		t.Fatalf("Retreat failed: %v", err)
	}
	if c.CurrentStepID() != 1 {
		t.Errorf("Expected step 1, got %d", c.CurrentStepID())
	}
}

func TestInvalidStepIDsRejected(t *testing.T) {
	c := newTestController(t)

	for _, id := range []int{-1, 0, 8, 100} {
		if err := c.GoToStep(id); !errors.Is(err, ErrInvalidStepID) {
			t.Errorf("GoToStep(%d): expected ErrInvalidStepID, got %v", id, err)
		}
		if err := c.MarkComplete(id); !errors.Is(err, ErrInvalidStepID) {
			t.Errorf("MarkComplete(%d): expected ErrInvalidStepID, got %v", id, err)
		}
		if err := c.SetHasAssets(id, true); !errors.Is(err, ErrInvalidStepID) {
			t.Errorf("SetHasAssets(%d): expected ErrInvalidStepID, got %v", id, err)
		}
		if err := c.AddAsset(id, models.AssetItem{}); !errors.Is(err, ErrInvalidStepID) {
			t.Errorf("AddAsset(%d): expected ErrInvalidStepID, got %v", id, err)
		}
	}

	if c.CurrentStepID() != 1 || c.CompletedCount() != 0 {
		t.Error("Rejected calls must not change state")
	}
}

func TestDisclosureFlagSurvivesNavigation(t *testing.T) {
	c := newTestController(t)

	c.SetHasAssets(3, true)
	c.GoToStep(5)
	c.GoToStep(3)

	if !c.HasAssets(3) {
		t.Error("Disclosure flag for step 3 should persist across navigation")
	}
}

func TestAssetsAndTotalValue(t *testing.T) {
	c := newTestController(t)

	c.AddAsset(2, models.AssetItem{Category: "Car", Description: "2020 Toyota Camry", Value: 18000})
	c.AddAsset(2, models.AssetItem{Category: "Motorcycle", Description: "Honda", Value: 2500.5})
	c.AddAsset(4, models.AssetItem{Category: "Savings Account", Value: 1000})

	if c.ItemCount(2) != 2 {
		t.Errorf("Expected 2 items on step 2, got %d", c.ItemCount(2))
	}
	if !c.HasAssets(2) {
		t.Error("Adding an asset should set the disclosure flag")
	}
	if c.StepValue(2) != 20500.5 {
		t.Errorf("Expected step 2 value 20500.5, got %v", c.StepValue(2))
	}
	if c.TotalValue() != 21500.5 {
		t.Errorf("Expected total 21500.5, got %v", c.TotalValue())
	}
	if c.CompletedCount() != 0 {
		t.Error("Adding assets must not complete steps")
	}

	items := c.Assets(2)
	items[0].Value = 0
	if c.StepValue(2) != 20500.5 {
		t.Error("Assets must return a copy")
	}
}

func TestTotalValueIsStable(t *testing.T) {
	c := newTestController(t)
	values := []float64{0.1, 0.2, 0.3, 1e16, 0.7, 3.3, -1e16}
	for id, v := range values {
		c.AddAsset(id+1, models.AssetItem{Category: "Other", Value: v})
		c.AddAsset(id+1, models.AssetItem{Category: "Other", Value: v / 3})
	}

	var want float64
	for id := 1; id <= StepCount; id++ {
		want += c.StepValue(id)
	}
	for i := 0; i < 50; i++ {
		if got := c.TotalValue(); got != want {
			t.Fatalf("TotalValue() = %v on call %d, want %v", got, i, want)
		}
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"$1,250.50", 1250.5},
		{"1000", 1000},
		{" 42 ", 42},
		{"$0", 0},
		{"abc", 0},
		{"", 0},
		{"NaN", 0},
		{"Inf", 0},
	}

	for _, tt := range tests {
		if got := ParseValue(tt.input); got != tt.want {
			t.Errorf("ParseValue(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestAdvanceSequence_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := newTestController(t)
		calls := rapid.IntRange(1, 12).Draw(t, "calls")

		for i := 0; i < calls; i++ {
			before := c.CurrentStepID()
			wasSubmitted := c.Submitted()

			status, err := c.Advance()

			switch {
			case wasSubmitted:
				if !errors.Is(err, ErrSubmitted) {
					t.Fatalf("advance after submit: expected ErrSubmitted, got %v", err)
				}
			case before < StepCount:
				if err != nil || status != StatusInProgress {
					t.Fatalf("advance from %d: status=%s err=%v", before, status, err)
				}
				if c.CurrentStepID() != before+1 {
					t.Fatalf("advance from %d moved to %d", before, c.CurrentStepID())
				}
			default:
				if err != nil || status != StatusSubmitted {
					t.Fatalf("advance from last step: status=%s err=%v", status, err)
				}
				if c.CurrentStepID() != StepCount {
					t.Fatalf("current step moved past last step: %d", c.CurrentStepID())
				}
			}
		}
	})
}

func TestOperations_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := newTestController(t)
		ops := rapid.SliceOfN(rapid.IntRange(0, 5), 1, 40).Draw(t, "ops")

		prevProgress := c.ProgressPercent()
		prevCompleted := make([]bool, StepCount)

		for i, op := range ops {
			id := rapid.IntRange(-1, StepCount+1).Draw(t, "id")
			before := c.CurrentStepID()

			switch op {
			case 0:
				err := c.GoToStep(id)
				if id >= 1 && id <= StepCount && !c.Submitted() {
					if err != nil || c.CurrentStepID() != id {
						t.Fatalf("op %d: GoToStep(%d) err=%v current=%d", i, id, err, c.CurrentStepID())
					}
				} else if err == nil {
					t.Fatalf("op %d: GoToStep(%d) should fail", i, id)
				}
			case 1:
				c.Advance()
			case 2:
				c.Retreat()
				if !c.Submitted() && before > 1 && c.CurrentStepID() != before-1 {
					t.Fatalf("op %d: Retreat from %d went to %d", i, before, c.CurrentStepID())
				}
			case 3:
				err := c.MarkComplete(id)
				if err == nil {
					if err := c.MarkComplete(id); err != nil {
						t.Fatalf("op %d: second MarkComplete(%d) failed: %v", i, id, err)
					}
					s, _ := c.Step(id)
					if !s.Completed {
						t.Fatalf("op %d: step %d not completed after MarkComplete", i, id)
					}
				}
			case 4:
				c.SetHasAssets(id, rapid.Bool().Draw(t, "hasAssets"))
			case 5:
				c.AddAsset(id, models.AssetItem{Value: rapid.Float64Range(0, 1e6).Draw(t, "value")})
			}

			if cur := c.CurrentStepID(); cur < 1 || cur > StepCount {
				t.Fatalf("op %d: current step out of range: %d", i, cur)
			}

			steps := c.Steps()
			completed := 0
			for j, s := range steps {
				if prevCompleted[j] && !s.Completed {
					t.Fatalf("op %d: step %d was un-completed", i, s.ID)
				}
				prevCompleted[j] = s.Completed
				if s.Completed {
					completed++
				}
			}

			progress := c.ProgressPercent()
			expected := int(math.Round(100 * float64(completed) / float64(StepCount)))
			if progress != expected {
				t.Fatalf("op %d: progress %d, expected %d", i, progress, expected)
			}
			if progress < prevProgress || progress < 0 || progress > 100 {
				t.Fatalf("op %d: progress went from %d to %d", i, prevProgress, progress)
			}
			prevProgress = progress
		}
	})
}

func TestGoToStepDoesNotComplete_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := newTestController(t)
		ids := rapid.SliceOfN(rapid.IntRange(1, StepCount), 1, 20).Draw(t, "ids")

		for _, id := range ids {
			if err := c.GoToStep(id); err != nil {
				t.Fatalf("GoToStep(%d) failed: %v", id, err)
			}
			if c.CurrentStepID() != id {
				t.Fatalf("GoToStep(%d) left current at %d", id, c.CurrentStepID())
			}
		}
		if c.CompletedCount() != 0 {
			t.Fatalf("GoToStep must not complete steps, got %d completed", c.CompletedCount())
		}
	})
}
