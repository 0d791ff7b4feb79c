package database

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrWrongPassphrase   = errors.New("incorrect passphrase")
	ErrPassphraseMissing = errors.New("export is encrypted, passphrase required")
)

// Entity names used in OpError.Resource.
const (
	EntityAssignment = "assignment"
	EntityBlock      = "block"
	EntityEvent      = "event"
	EntityAttempt    = "attempt"
	EntitySetting    = "setting"
	EntityVault      = "vault"
)

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

func wrapErr(resource, op, id string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Resource: resource, ID: id, Err: err}
}
