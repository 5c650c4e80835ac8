package verrors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an error per spec §7, independent of which package raised it.
type Kind uint8

const (
	// KindConfig covers shape, type, or graph errors detected before start.
	KindConfig Kind = iota
	// KindAdapterTransient covers network/I/O errors an adapter retries internally.
	KindAdapterTransient
	// KindAdapterPermanent covers auth/4xx/schema errors that mark a component Failed.
	KindAdapterPermanent
	// KindBuffer covers disk I/O failures on a disk buffer.
	KindBuffer
	// KindAck covers ack timeout or rejection settled back to the source.
	KindAck
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindAdapterTransient:
		return "adapter_transient"
	case KindAdapterPermanent:
		return "adapter_permanent"
	case KindBuffer:
		return "buffer"
	case KindAck:
		return "ack"
	default:
		return "unknown"
	}
}

// ExitCode maps a Kind to the process exit code spec §6 names: 0 success, 78 config
// error, 1 any other runtime error.
func (k Kind) ExitCode() int {
	if k == KindConfig {
		return 78
	}
	return 1
}

// Error wraps a cause with a Kind and the component key it originated from, so
// callers can errors.As to it without losing the underlying error.
type Error struct {
	Kind      Kind
	Component string
	Cause     error
}

func New(kind Kind, component string, cause error) *Error {
	return &Error{Kind: kind, Component: component, Cause: cause}
}

func (e *Error) Error() string {
	if e.Component == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
	}
	return fmt.Sprintf("%s[%s]: %v", e.Kind, e.Component, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// KindOf reports the Kind of err if it (or something it wraps) is a *Error.
func KindOf(err error) (Kind, bool) {
	var v *Error
	if errors.As(err, &v) {
		return v.Kind, true
	}
	return 0, false
}

// MultiError accumulates the bulk-reported errors from a topology build or reload
// validation pass (spec §4.3: "errors report all problems, not just the first").
type MultiError struct {
	Errors []error
}

func (m *MultiError) Add(err error) {
	if err != nil {
		m.Errors = append(m.Errors, err)
	}
}

func (m *MultiError) Empty() bool { return len(m.Errors) == 0 }

// ErrOrNil returns m if it has accumulated errors, or nil otherwise, so a builder can
// write `return errs.ErrOrNil()` unconditionally.
func (m *MultiError) ErrOrNil() error {
	if m.Empty() {
		return nil
	}
	return m
}

func (m *MultiError) Error() string {
	lines := make([]string, len(m.Errors))
	for i, err := range m.Errors {
		lines[i] = err.Error()
	}
	return fmt.Sprintf("%d error(s):\n  %s", len(m.Errors), strings.Join(lines, "\n  "))
}

// ExitCode reports the exit code for the whole batch: 78 if every accumulated error
// is a config error, 1 if any is not (a topology build should only ever accumulate
// config errors, but reload validation may mix in adapter construction failures).
func (m *MultiError) ExitCode() int {
	for _, err := range m.Errors {
		if kind, ok := KindOf(err); !ok || kind != KindConfig {
			return 1
		}
	}
	return 78
}
