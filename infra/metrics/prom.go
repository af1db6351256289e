package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/pumpplan/core/metrics"
)

// PromRecorder records planner statistics in Prometheus metrics.
type PromRecorder struct {
	runs       *prometheus.CounterVec
	passes     *prometheus.CounterVec
	advances   *prometheus.CounterVec
	skipped    prometheus.Counter
	duration   *prometheus.HistogramVec
	production *prometheus.GaugeVec
	cost       *prometheus.GaugeVec
}

// NewPromRecorder registers planner metrics on the default Prometheus
// registerer. The Prometheus server is started separately with
// StartPromServer.
func NewPromRecorder() (*PromRecorder, error) {
	return NewPromRecorderWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromRecorderWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromRecorderWithRegistry(reg prometheus.Registerer) (*PromRecorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	r := &PromRecorder{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pumpplan_runs_total",
			Help: "Total number of planning runs by status",
		}, []string{"status"}),
		passes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pumpplan_passes_total",
			Help: "Total number of optimizer passes by pass and outcome",
		}, []string{"pass", "failed"}),
		advances: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pumpplan_pump_steps_total",
			Help: "Pump steps applied by the optimizer",
		}, []string{"pass", "direction"}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pumpplan_skipped_days_total",
			Help: "Days skipped by the daily pass because an hour exceeded the hourly maximum",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pumpplan_pass_duration_seconds",
			Help:    "Duration of optimizer passes",
			Buckets: prometheus.DefBuckets,
		}, []string{"pass"}),
		production: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pumpplan_last_run_production",
			Help: "Production of the last finished run by tariff band",
		}, []string{"year", "band"}),
		cost: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pumpplan_last_run_cost",
			Help: "Energy cost of the last finished run by tariff band",
		}, []string{"year", "band"}),
	}
	var err error
	if r.runs, err = register(reg, r.runs); err != nil {
		return nil, err
	}
	if r.passes, err = register(reg, r.passes); err != nil {
		return nil, err
	}
	if r.advances, err = register(reg, r.advances); err != nil {
		return nil, err
	}
	if r.skipped, err = register(reg, r.skipped); err != nil {
		return nil, err
	}
	if r.duration, err = register(reg, r.duration); err != nil {
		return nil, err
	}
	if r.production, err = register(reg, r.production); err != nil {
		return nil, err
	}
	if r.cost, err = register(reg, r.cost); err != nil {
		return nil, err
	}
	return r, nil
}

// register returns the collector already registered under the same
// descriptor when there is one.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordPass counts the pass and its pump steps.
func (r *PromRecorder) RecordPass(ev coremetrics.PassEvent) error {
	failed := "false"
	if ev.Failed {
		failed = "true"
	}
	r.passes.WithLabelValues(ev.Pass, failed).Inc()
	r.advances.WithLabelValues(ev.Pass, "increase").Add(float64(ev.Advances))
	if ev.Retreats > 0 {
		r.advances.WithLabelValues(ev.Pass, "decrease").Add(float64(ev.Retreats))
	}
	if ev.Skipped > 0 {
		r.skipped.Add(float64(ev.Skipped))
	}
	r.duration.WithLabelValues(ev.Pass).Observe(ev.Duration.Seconds())
	return nil
}

// RecordRun counts the run and exposes its per-band totals.
func (r *PromRecorder) RecordRun(ev coremetrics.RunEvent) error {
	r.runs.WithLabelValues(ev.Status).Inc()
	year := itoa(ev.Year)
	for band, v := range ev.BandProduction {
		r.production.WithLabelValues(year, band).Set(float64(v))
	}
	for band, v := range ev.BandCost {
		r.cost.WithLabelValues(year, band).Set(v)
	}
	return nil
}
