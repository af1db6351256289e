package metrics

import (
	"time"
)

// PassEvent summarizes one optimizer pass of a run.
type PassEvent struct {
	RunID     string
	Pass      string
	Units     int // days, windows or 1 for the yearly pass
	Advances  int
	Retreats  int
	Skipped   int
	Failed    bool
	Duration  time.Duration
	Component string
	Time      time.Time
}

// RunEvent summarizes a finished run.
type RunEvent struct {
	RunID              string
	Year               int
	Target             int
	BaselineProduction int
	FinalProduction    int
	TotalCost          float64
	BandProduction     map[string]int
	BandCost           map[string]float64
	Status             string
	FailedPass         string
	Duration           time.Duration
	Time               time.Time
}

// Recorder records planner statistics.
type Recorder interface {
	RecordPass(ev PassEvent) error
	RecordRun(ev RunEvent) error
}

// NopRecorder implements Recorder with no-op methods.
type NopRecorder struct{}

func (NopRecorder) RecordPass(PassEvent) error { return nil }
func (NopRecorder) RecordRun(RunEvent) error   { return nil }

// Multi fans events out to several recorders.
type Multi struct {
	Recorders []Recorder
}

// NewMulti creates a Multi with the provided recorders. Nil recorders are
// skipped.
func NewMulti(recs ...Recorder) *Multi {
	m := &Multi{}
	for _, r := range recs {
		if r != nil {
			m.Recorders = append(m.Recorders, r)
		}
	}
	return m
}

// RecordPass forwards the event to all recorders, returning the first error
// encountered after every recorder has been called.
func (m *Multi) RecordPass(ev PassEvent) error {
	var first error
	for _, r := range m.Recorders {
		if err := r.RecordPass(ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// RecordRun forwards the event to all recorders.
func (m *Multi) RecordRun(ev RunEvent) error {
	var first error
	for _, r := range m.Recorders {
		if err := r.RecordRun(ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}
