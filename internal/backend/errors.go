// Copyright (c) 2026 Devkeep Authors
// Devkeep - developer machine caretaker
// This source code is licensed under the MIT license found in the LICENSE file.

package backend

import (
	"errors"
	"strings"
)

// ErrUnavailable is returned when no helper process can be reached.
var ErrUnavailable = errors.New("backend unavailable")

// ErrCancelled is returned when an in-flight operation was cancelled
// through CancelInstall or context cancellation.
var ErrCancelled = errors.New("operation cancelled")

// ErrorKind is a coarse classification of a helper failure, derived from
// the error text. The helper reports failures as plain messages; there is
// no structured error taxonomy on the wire, so this matching is best
// effort and only used to pick a friendlier user-facing message.
type ErrorKind int

const (
	KindGeneric ErrorKind = iota
	KindNetwork
	KindTimeout
	KindUnavailable
)

// Classify inspects an error and returns its coarse kind.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindGeneric
	}
	if errors.Is(err, ErrUnavailable) {
		return KindUnavailable
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "timed out"):
		return KindTimeout
	case strings.Contains(msg, "network") || strings.Contains(msg, "connection refused") || strings.Contains(msg, "no such host"):
		return KindNetwork
	default:
		return KindGeneric
	}
}
