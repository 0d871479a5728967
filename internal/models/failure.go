package models

import (
	"errors"
	"fmt"
)

// FailureKind identifies which pipeline stage an operation failed at,
// so callers branch on category rather than string-matching log messages.
type FailureKind string

const (
	FailureExtract FailureKind = "extract"
	FailureAuth    FailureKind = "auth"
	// FailureAnalysis covers transport-level analysis errors: the
	// service was unreachable or returned an unusable envelope.
	FailureAnalysis FailureKind = "analysis"
	// FailureMalformedAnalysis means the service answered but its message
	// content was not the requested JSON object. Raw carries the
	// offending text for diagnostic replay.
	FailureMalformedAnalysis FailureKind = "analysis_malformed"
	FailurePersist           FailureKind = "persist"
)

// Failure is a typed, stage-scoped error. Components convert every
// network, timeout, or parse error into a Failure rather than letting it
// escape their boundary.
type Failure struct {
	Kind FailureKind
	Err  error
	// Raw holds the unparseable service output for FailureMalformedAnalysis
	Raw string
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return string(f.Kind)
	}
	return fmt.Sprintf("%s: %v", f.Kind, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// EventKind maps a failure to the audit-trail event category it records as
func (f *Failure) EventKind() EventKind {
	switch f.Kind {
	case FailureExtract:
		return EventExtractFailed
	case FailureAuth:
		return EventAuthFailed
	case FailureAnalysis, FailureMalformedAnalysis:
		return EventAnalysisFailed
	case FailurePersist:
		return EventPersistFailed
	default:
		return EventAnalysisFailed
	}
}

// NewFailure wraps err as a Failure of the given kind
func NewFailure(kind FailureKind, err error) *Failure {
	return &Failure{Kind: kind, Err: err}
}

// NewMalformedAnalysisFailure records a response whose message content was
// not valid JSON, retaining the raw text.
func NewMalformedAnalysisFailure(raw string, err error) *Failure {
	return &Failure{Kind: FailureMalformedAnalysis, Err: err, Raw: raw}
}

// AsFailure extracts a *Failure from err, if it is one
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}
