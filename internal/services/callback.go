package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ad/go-asset-questionnaire/internal/models"
)

type ActionKind string

const (
	ActionGoTo     ActionKind = "goto"
	ActionNext     ActionKind = "next"
	ActionPrev     ActionKind = "prev"
	ActionComplete ActionKind = "done"
	ActionAssets   ActionKind = "assets"
	ActionItem     ActionKind = "item"
	ActionCancel   ActionKind = "cancel"
	ActionLayout   ActionKind = "layout"
)

var ErrBadCallback = errors.New("malformed callback data")

// Action is a decoded inline button press.
type Action struct {
	Kind      ActionKind
	StepID    int
	HasAssets bool
	Category  int
	Layout    models.Layout
}

func (a Action) Encode() string {
	switch a.Kind {
	case ActionGoTo, ActionComplete:
		return fmt.Sprintf("%s:%d", a.Kind, a.StepID)
	case ActionAssets:
		answer := "no"
		if a.HasAssets {
			answer = "yes"
		}
		return fmt.Sprintf("%s:%d:%s", a.Kind, a.StepID, answer)
	case ActionItem:
		return fmt.Sprintf("%s:%d:%d", a.Kind, a.StepID, a.Category)
	case ActionLayout:
		return fmt.Sprintf("%s:%s", a.Kind, a.Layout)
	default:
		return string(a.Kind)
	}
}

func ParseCallback(data string) (Action, error) {
	parts := strings.Split(data, ":")
	kind := ActionKind(parts[0])

	switch kind {
	case ActionNext, ActionPrev, ActionCancel:
		if len(parts) != 1 {
			return Action{}, fmt.Errorf("%w: %q", ErrBadCallback, data)
		}
		return Action{Kind: kind}, nil

	case ActionGoTo, ActionComplete:
		if len(parts) != 2 {
			return Action{}, fmt.Errorf("%w: %q", ErrBadCallback, data)
		}
		stepID, err := strconv.Atoi(parts[1])
		if err != nil {
			return Action{}, fmt.Errorf("%w: %q", ErrBadCallback, data)
		}
		return Action{Kind: kind, StepID: stepID}, nil

	case ActionAssets:
		if len(parts) != 3 || (parts[2] != "yes" && parts[2] != "no") {
			return Action{}, fmt.Errorf("%w: %q", ErrBadCallback, data)
		}
		stepID, err := strconv.Atoi(parts[1])
		if err != nil {
			return Action{}, fmt.Errorf("%w: %q", ErrBadCallback, data)
		}
		return Action{Kind: kind, StepID: stepID, HasAssets: parts[2] == "yes"}, nil

	case ActionItem:
		if len(parts) != 3 {
			return Action{}, fmt.Errorf("%w: %q", ErrBadCallback, data)
		}
		stepID, err := strconv.Atoi(parts[1])
		if err != nil {
			return Action{}, fmt.Errorf("%w: %q", ErrBadCallback, data)
		}
		category, err := strconv.Atoi(parts[2])
		if err != nil || category < 0 {
			return Action{}, fmt.Errorf("%w: %q", ErrBadCallback, data)
		}
		return Action{Kind: kind, StepID: stepID, Category: category}, nil

	case ActionLayout:
		if len(parts) != 2 {
			return Action{}, fmt.Errorf("%w: %q", ErrBadCallback, data)
		}
		layout, err := models.ParseLayout(parts[1])
		if err != nil {
			return Action{}, fmt.Errorf("%w: %v", ErrBadCallback, err)
		}
		return Action{Kind: kind, Layout: layout}, nil
	}

	return Action{}, fmt.Errorf("%w: %q", ErrBadCallback, data)
}
