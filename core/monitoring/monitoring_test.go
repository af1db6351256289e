package monitoring

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/pumpplan/core/plan"
	"github.com/kilianp07/pumpplan/core/reference"
)

type captured struct {
	err  error
	tags map[string]string
}

type fakeMonitor struct{ events []captured }

func (f *fakeMonitor) CaptureException(err error, tags map[string]string) {
	f.events = append(f.events, captured{err, tags})
}
func (f *fakeMonitor) Recover()            {}
func (f *fakeMonitor) Flush(time.Duration) {}

func TestCaptureRunError(t *testing.T) {
	m := &fakeMonitor{}
	Init(m)
	t.Cleanup(func() { current = NopMonitor{} })

	CaptureRunError(nil, 2024, "r0")
	CaptureRunError(&plan.InputValidationError{Field: "year", Reason: "out of range"}, 2024, "")
	CaptureRunError(fmt.Errorf("run: %w", &plan.UnreachableConstraintError{Pass: plan.PassYearly, Cause: plan.ErrNoCandidate}), 2024, "r1")
	CaptureRunError(&reference.ConfigurationError{Table: "production", Key: "north/1", Reason: "missing"}, 2025, "")
	CaptureRunError(errors.New("disk full"), 2026, "r3")

	require.Len(t, m.events, 3)
	assert.Equal(t, map[string]string{"year": "2024", "kind": "unreachable", "pass": "yearly", "run_id": "r1"}, m.events[0].tags)
	assert.Equal(t, map[string]string{"year": "2025", "kind": "configuration", "table": "production"}, m.events[1].tags)
	assert.Equal(t, "internal", m.events[2].tags["kind"])
}

func TestInitIgnoresNil(t *testing.T) {
	Init(nil)
	assert.IsType(t, NopMonitor{}, current)
}
