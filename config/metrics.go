package config

import "fmt"

// InfluxConfig locates the InfluxDB bucket receiving plan points.
type InfluxConfig struct {
	Enabled bool   `json:"enabled"`
	URL     string `json:"url"`
	Token   string `json:"token"`
	Org     string `json:"org"`
	Bucket  string `json:"bucket"`
	// WriteGrid also writes one point per planned facility-hour.
	WriteGrid bool `json:"write_grid"`
}

// MetricsConfig configures the Prometheus endpoint and the Influx writer.
type MetricsConfig struct {
	PrometheusEnabled bool         `json:"prometheus_enabled"`
	PrometheusPort    int          `json:"prometheus_port"`
	Influx            InfluxConfig `json:"influx"`
}

// SetDefaults applies sane defaults.
func (c *MetricsConfig) SetDefaults() {
	if c.PrometheusPort == 0 {
		c.PrometheusPort = 9101
	}
}

// Validate checks mandatory fields.
func (c MetricsConfig) Validate() error {
	if c.PrometheusPort < 0 || c.PrometheusPort > 65535 {
		return fmt.Errorf("invalid prometheus_port %d", c.PrometheusPort)
	}
	if !c.Influx.Enabled {
		return nil
	}
	if c.Influx.URL == "" || c.Influx.Org == "" || c.Influx.Bucket == "" {
		return fmt.Errorf("influx url, org and bucket are required")
	}
	return nil
}
