// Package flow implements the questionnaire flow controller: step
// navigation, one-way completion, derived progress and per-step
// disclosure flags.
//
// A Controller is owned by exactly one session and is not safe for
// concurrent use.
package flow

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ad/go-asset-questionnaire/internal/models"
)

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusSubmitted  Status = "submitted"
)

type Controller struct {
	registry   *Registry
	current    int
	completed  []bool
	disclosure map[int]bool
	assets     map[int][]models.AssetItem
	status     Status
}

func New(registry *Registry) *Controller {
	return &Controller{
		registry:   registry,
		current:    1,
		completed:  make([]bool, registry.Len()),
		disclosure: make(map[int]bool, registry.Len()),
		assets:     make(map[int][]models.AssetItem),
		status:     StatusInProgress,
	}
}

func (c *Controller) CurrentStepID() int {
	return c.current
}

func (c *Controller) Status() Status {
	return c.status
}

func (c *Controller) Submitted() bool {
	return c.status == StatusSubmitted
}

// Steps returns the registry steps with their completion flags applied.
func (c *Controller) Steps() []models.Step {
	steps := c.registry.Steps()
	for i := range steps {
		steps[i].Completed = c.completed[i]
	}
	return steps
}

func (c *Controller) Step(id int) (models.Step, error) {
	s, err := c.registry.Step(id)
	if err != nil {
		return models.Step{}, err
	}
	s.Completed = c.completed[id-1]
	return s, nil
}

func (c *Controller) CurrentStep() models.Step {
	s, _ := c.Step(c.current)
	return s
}

func (c *Controller) CompletedCount() int {
	n := 0
	for _, done := range c.completed {
		if done {
			n++
		}
	}
	return n
}

// ProgressPercent is round(100 * completed / total), computed on every call.
func (c *Controller) ProgressPercent() int {
	return int(math.Round(100 * float64(c.CompletedCount()) / float64(len(c.completed))))
}

func (c *Controller) Progress() models.Progress {
	return models.Progress{
		Completed: c.CompletedCount(),
		Total:     len(c.completed),
		Percent:   c.ProgressPercent(),
	}
}

func (c *Controller) GoToStep(id int) error {
	if err := c.checkWritable(id); err != nil {
		return err
	}
	c.current = id
	return nil
}

// Advance completes the current step and moves to the next one. On the
// last step it submits the questionnaire instead.
func (c *Controller) Advance() (Status, error) {
	if c.Submitted() {
		return c.status, ErrSubmitted
	}
	c.completed[c.current-1] = true
	if c.current < c.registry.Len() {
		c.current++
		return c.status, nil
	}
	c.status = StatusSubmitted
	return c.status, nil
}

func (c *Controller) Retreat() error {
	if c.Submitted() {
		return ErrSubmitted
	}
	if c.current > 1 {
		c.current--
	}
	return nil
}

func (c *Controller) MarkComplete(id int) error {
	if err := c.checkWritable(id); err != nil {
		return err
	}
	c.completed[id-1] = true
	return nil
}

func (c *Controller) SetHasAssets(id int, hasAssets bool) error {
	if err := c.checkWritable(id); err != nil {
		return err
	}
	c.disclosure[id] = hasAssets
	return nil
}

func (c *Controller) HasAssets(id int) bool {
	return c.disclosure[id]
}

// DisclosureFlags returns a copy keyed by step id with an entry for every step.
func (c *Controller) DisclosureFlags() map[int]bool {
	flags := make(map[int]bool, c.registry.Len())
	for id := 1; id <= c.registry.Len(); id++ {
		flags[id] = c.disclosure[id]
	}
	return flags
}

// AddAsset records a detail sub-form entry for a step. The step's
// disclosure flag is switched on since an item implies assets.
func (c *Controller) AddAsset(id int, item models.AssetItem) error {
	if err := c.checkWritable(id); err != nil {
		return err
	}
	c.disclosure[id] = true
	c.assets[id] = append(c.assets[id], item)
	return nil
}

func (c *Controller) Assets(id int) []models.AssetItem {
	return append([]models.AssetItem(nil), c.assets[id]...)
}

func (c *Controller) ItemCount(id int) int {
	return len(c.assets[id])
}

func (c *Controller) StepValue(id int) float64 {
	var sum float64
	for _, item := range c.assets[id] {
		sum += item.Value
	}
	return sum
}

func (c *Controller) TotalValue() float64 {
	var sum float64
	for id := 1; id <= c.registry.Len(); id++ {
		sum += c.StepValue(id)
	}
	return sum
}

func (c *Controller) checkWritable(id int) error {
	if !c.registry.Valid(id) {
		return fmt.Errorf("%w: %d", ErrInvalidStepID, id)
	}
	if c.Submitted() {
		return ErrSubmitted
	}
	return nil
}

// ParseValue reads a loosely formatted amount such as "$1,250.50".
// Anything unparsable counts as zero.
func ParseValue(s string) float64 {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(strings.TrimSpace(s))
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
