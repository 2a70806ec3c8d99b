package browser

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoSuchElement is returned by Driver.FindElement when nothing matches.
var ErrNoSuchElement = errors.New("no such element")

type NotFoundError struct {
	Selector Selector
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no such element: %s", e.Selector)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNoSuchElement
}

// ErrStaleElement is returned by Element methods when the element no longer
// belongs to the page, usually because the page re-rendered after the lookup.
// Looking the element up again is the way out.
var ErrStaleElement = errors.New("stale element reference")

type StaleElementError struct {
	Err error
}

func (e *StaleElementError) Error() string {
	return fmt.Sprintf("stale element reference: %s", e.Err)
}

func (e *StaleElementError) Is(target error) bool {
	return target == ErrStaleElement
}

func (e *StaleElementError) Unwrap() error {
	return e.Err
}

// StaleIf wraps err in a StaleElementError when its message contains one of
// markers. Other errors, and nil, are returned as is.
func StaleIf(err error, markers ...string) error {
	if err == nil || IsStale(err) {
		return err
	}
	msg := err.Error()
	for _, marker := range markers {
		if strings.Contains(msg, marker) {
			return &StaleElementError{Err: err}
		}
	}
	return err
}

// SessionStartError reports a browser that could not be launched. It is fatal
// to the test that asked for it.
type SessionStartError struct {
	Backend string
	Err     error
}

func (e *SessionStartError) Error() string {
	return fmt.Sprintf("failed to start %s browser session: %s", e.Backend, e.Err)
}

func (e *SessionStartError) Unwrap() error {
	return e.Err
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNoSuchElement)
}

func IsStale(err error) bool {
	return errors.Is(err, ErrStaleElement)
}
