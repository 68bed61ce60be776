// SPDX-FileCopyrightText: The nimbus authors
//
// SPDX-License-Identifier: MIT

package owm

import (
	"context"
	"errors"
	"fmt"
)

// ErrCityNotFound indicates the provider does not know the requested city.
var ErrCityNotFound = errors.New("city not found")

// TransientError covers every non-"not found" failure of a provider call:
// timeouts, transport errors, unexpected status codes and malformed payloads.
// The Timeout flag lets callers word timeouts differently from other
// upstream trouble.
type TransientError struct {
	Timeout bool
	cause   error
}

func (e *TransientError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("provider request timed out: %s", e.cause)
	}
	return fmt.Sprintf("provider request failed: %s", e.cause)
}

func (e *TransientError) Unwrap() error {
	return e.cause
}

// transient wraps err into a TransientError, flagging context deadlines as
// timeouts.
func transient(err error) *TransientError {
	return &TransientError{
		Timeout: errors.Is(err, context.DeadlineExceeded),
		cause:   err,
	}
}

func transientStatus(code int) *TransientError {
	return &TransientError{cause: fmt.Errorf("unexpected status code: %d", code)}
}
