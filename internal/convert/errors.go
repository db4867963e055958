// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies a conversion failure. Every failure that leaves the
// Dispatcher carries exactly one Kind.
type Kind string

const (
	KindUnsupportedConversion Kind = "unsupported_conversion"
	KindSourceUnreadable      Kind = "source_unreadable"
	KindNoPagesConverted      Kind = "no_pages_converted"
	KindWriteFailed           Kind = "write_failed"
	KindToolNotInstalled      Kind = "tool_not_installed"
	KindExternalToolError     Kind = "external_tool_error"
	KindOutputNotProduced     Kind = "output_not_produced"
	KindDuplicateInBatch      Kind = "duplicate_in_batch"
	KindSameFormatRequested   Kind = "same_format_requested"
	KindUserCancelledReplace  Kind = "user_cancelled_replace"
	KindUserCancelled         Kind = "user_cancelled"
	KindDispatchInProgress    Kind = "dispatch_in_progress"
)

// Error is a typed conversion failure naming the offending path.
type Error struct {
	Kind    Kind
	Path    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := string(e.Kind)
	if e.Path != "" {
		msg += ": " + e.Path
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds an *Error.
func NewError(kind Kind, path, message string, err error) *Error {
	return &Error{Kind: kind, Path: path, Message: message, Err: err}
}

// KindOf returns the Kind carried by err, or "" when err is not a
// conversion error.
func KindOf(err error) Kind {
	var convErr *Error
	if !errors.As(err, &convErr) {
		return ""
	}
	return convErr.Kind
}

// IsKind reports whether err carries kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// normalize maps any error to an *Error so that no raw I/O or subprocess
// failure escapes the Dispatcher.
func normalize(err error, path string) *Error {
	var convErr *Error
	if errors.As(err, &convErr) {
		return convErr
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return NewError(KindUserCancelled, path, "conversion cancelled", err)
	}
	return NewError(KindWriteFailed, path, "", err)
}
