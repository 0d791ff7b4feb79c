package scheduler

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInterval    = errors.New("interval end must be after start")
	ErrInvalidConstraints = errors.New("invalid scheduling constraints")
	ErrBlockNotFound      = errors.New("block not found")
	ErrInvalidTransition  = errors.New("invalid block state transition")
)

// OpError reports a structural failure tied to a specific step or block.
type OpError struct {
	Op       string
	Resource string
	ID       string
	Err      error
}

func (e *OpError) Error() string {
	if e == nil {
		return ""
	}
	if e.ID != "" {
		return fmt.Sprintf("%s %s %s: %v", e.Op, e.Resource, e.ID, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Resource, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

func stepErr(op, id string, err error) error {
	return &OpError{Op: op, Resource: "step", ID: id, Err: err}
}

func blockErr(op, id string, err error) error {
	return &OpError{Op: op, Resource: "block", ID: id, Err: err}
}
