package feedgen

import (
	"errors"
	"fmt"
)

// Application error codes.
//
// Codes are grouped by who can act on them: the caller can retry ETRANSPORT,
// an operator must fix ECONFIG, and the rest describe pages or oracle output
// that cannot be processed as-is.
const (
	ECONFIG    = "config"
	ECONFLICT  = "conflict"
	ECYCLE     = "cycle_detected"
	EDECODE    = "decode"
	EINTERNAL  = "internal"
	EINVALID   = "invalid"
	ELIMIT     = "limit_exceeded"
	ELOCATOR   = "locator_syntax"
	ENOTFOUND  = "not_found"
	ESCHEMA    = "schema"
	ETRANSPORT = "transport"
)

// Pipeline stages used to tag errors returned by an Inferrer.
const (
	StageFetch    = "fetch"
	StageClassify = "classify"
	StageParse    = "parse"
	StageValidate = "validate"
	StageWalk     = "walk"
	StageLocate   = "locate"
)

// Error represents an application-specific error.
type Error struct {
	Code    string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("feedgen error: code=%s message=%s", e.Code, e.Message)
}

// Errorf is a helper function to return an Error with a given code and formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error"
}

// StageError tags an error with the pipeline stage it occurred in.
// The wrapped error's code and message are preserved.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return e.Stage + ": " + e.Err.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// WithStage tags err with stage. Returns nil if err is nil.
// An error that already carries a stage is returned unchanged.
func WithStage(stage string, err error) error {
	if err == nil {
		return nil
	}
	var se *StageError
	if errors.As(err, &se) {
		return err
	}
	return &StageError{Stage: stage, Err: err}
}

// ErrorStage returns the stage an error was tagged with, or "" if untagged.
func ErrorStage(err error) string {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
