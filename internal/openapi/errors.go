package openapi

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is.
var (
	ErrFetch = errors.New("fetch error")
	ErrParse = errors.New("parse error")
)

type ParseErrorKind string

const (
	MissingRequiredField ParseErrorKind = "missing required field"
	InvalidShape         ParseErrorKind = "invalid shape"
)

// FetchError reports that the source could not be read.
type FetchError struct {
	Source string
	Cause  error
}

func (e *FetchError) Error() string {
	msg := "fetch error"
	if e.Source != "" {
		msg += " for " + e.Source
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *FetchError) Unwrap() error { return e.Cause }

func (e *FetchError) Is(target error) bool { return target == ErrFetch }

// ParseError reports a malformed document. Path is the dotted location of
// the offending node.
type ParseError struct {
	Kind    ParseErrorKind
	Path    string
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	msg := "parse error"
	if e.Kind != "" {
		msg += " (" + string(e.Kind) + ")"
	}
	if e.Path != "" {
		msg += " at " + e.Path
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Cause }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

func invalidShape(path, format string, args ...any) *ParseError {
	return &ParseError{Kind: InvalidShape, Path: path, Message: fmt.Sprintf(format, args...)}
}

func missingField(path, field string) *ParseError {
	return &ParseError{Kind: MissingRequiredField, Path: path, Message: fmt.Sprintf("%q is required", field)}
}
