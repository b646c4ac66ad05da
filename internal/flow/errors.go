package flow

import "errors"

var (
	ErrInvalidStepID = errors.New("invalid step id")
	ErrSubmitted     = errors.New("questionnaire already submitted")
	ErrBadRegistry   = errors.New("invalid step registry")
)
