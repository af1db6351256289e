// Package metrics defines the recorder interface the planner reports pass and
// run statistics to. Implementations live in infra/metrics (Prometheus,
// InfluxDB) and can be combined with NewMulti.
package metrics
