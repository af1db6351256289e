// Package monitoring reports planner failures to an error tracker.
package monitoring

import (
	"errors"
	"strconv"
	"time"

	"github.com/kilianp07/pumpplan/core/plan"
	"github.com/kilianp07/pumpplan/core/reference"
)

// Monitor defines methods used for error reporting.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	Recover()
	Flush(timeout time.Duration)
}

type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) Recover()                                  {}
func (NopMonitor) Flush(time.Duration)                       {}

var current Monitor = NopMonitor{}

// Init sets the global monitor implementation.
func Init(m Monitor) {
	if m != nil {
		current = m
	}
}

// CaptureException records the error with optional tags.
func CaptureException(err error, tags map[string]string) {
	if current != nil {
		current.CaptureException(err, tags)
	}
}

// CaptureRunError reports a failed run. Rejected input is the caller's
// mistake and is not reported.
func CaptureRunError(err error, year int, runID string) {
	if err == nil {
		return
	}
	var iv *plan.InputValidationError
	if errors.As(err, &iv) {
		return
	}
	tags := map[string]string{"year": strconv.Itoa(year), "kind": "internal"}
	if runID != "" {
		tags["run_id"] = runID
	}
	var uc *plan.UnreachableConstraintError
	var ce *reference.ConfigurationError
	switch {
	case errors.As(err, &uc):
		tags["kind"] = "unreachable"
		tags["pass"] = string(uc.Pass)
	case errors.As(err, &ce):
		tags["kind"] = "configuration"
		tags["table"] = ce.Table
	}
	CaptureException(err, tags)
}

// Recover captures panics in goroutines.
func Recover() {
	if current != nil {
		current.Recover()
	}
}

// Flush flushes buffered events.
func Flush(d time.Duration) {
	if current != nil {
		current.Flush(d)
	}
}
