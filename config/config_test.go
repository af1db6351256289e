package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, "config.yaml", `planner:
  baseline_pumps: 2
  min_pumps: 1
  full_leap_year: true
  reference_path: "ref.yaml"
logging:
  level: debug
  file: "/var/log/pumpplan/pumpplan.log"
  max_backups: 3
metrics:
  prometheus_enabled: true
  influx:
    enabled: true
    url: "http://localhost:8086"
    token: "tok"
    org: "org"
    bucket: "plans"
store:
  enabled: true
  path: "/tmp/plans.db"
mqtt:
  enabled: true
  broker: "tcp://localhost:1883"
  qos: 1
api:
  addr: ":9000"
  token: "secret"
sentry:
  dsn: "https://key@sentry.example.com/1"
  traces_sample_rate: 0.2
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	checks := []struct {
		name string
		got  any
		want any
	}{
		{"baseline_pumps", cfg.Planner.BaselinePumps, 2},
		{"min_pumps", cfg.Planner.MinPumps, 1},
		{"full_leap_year", cfg.Planner.FullLeapYear, true},
		{"reference_path", cfg.Planner.ReferencePath, "ref.yaml"},
		{"level", cfg.Logging.Level, "debug"},
		{"logging.file", cfg.Logging.File, "/var/log/pumpplan/pumpplan.log"},
		{"logging.max_size_mb", cfg.Logging.MaxSizeMB, 50},
		{"logging.max_backups", cfg.Logging.MaxBackups, 3},
		{"prometheus_enabled", cfg.Metrics.PrometheusEnabled, true},
		{"prometheus_port", cfg.Metrics.PrometheusPort, 9101},
		{"influx.bucket", cfg.Metrics.Influx.Bucket, "plans"},
		{"store.path", cfg.Store.Path, "/tmp/plans.db"},
		{"mqtt.broker", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"mqtt.qos", cfg.MQTT.QoS, byte(1)},
		{"mqtt.topic", cfg.MQTT.Topic, "pumpplan/plans"},
		{"api.addr", cfg.API.Addr, ":9000"},
		{"api.token", cfg.API.Token, "secret"},
		{"api.max_concurrent_runs", cfg.API.MaxConcurrentRuns, 2},
		{"sentry.dsn", cfg.Sentry.DSN, "https://key@sentry.example.com/1"},
	}
	for _, c := range checks {
		assert.Equal(t, c.want, c.got, c.name)
	}

	pc := cfg.Planner.Plan()
	assert.Equal(t, 2, pc.BaselinePumps)
	assert.True(t, pc.FullLeapYear)
}

func TestLoadDefaultsFromJSON(t *testing.T) {
	cfg, err := Load(writeConfig(t, "config.json", `{"planner": {}}`))
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Planner.BaselinePumps)
	assert.Equal(t, "reference.yaml", cfg.Planner.ReferencePath)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, ":8080", cfg.API.Addr)
	assert.False(t, cfg.Store.Enabled)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("PP_PLANNER__BASELINE_PUMPS", "3")
	t.Setenv("PP_API__TOKEN", "from-env")
	cfg, err := Load(writeConfig(t, "config.yaml", "planner:\n  baseline_pumps: 1\n"))
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Planner.BaselinePumps)
	assert.Equal(t, "from-env", cfg.API.Token)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"planner": "planner:\n  baseline_pumps: 1\n  min_pumps: 2\n",
		"logging": "logging:\n  level: loud\n",
		"metrics": "metrics:\n  influx:\n    enabled: true\n",
		"mqtt":    "mqtt:\n  enabled: true\n",
		"sentry":  "sentry:\n  traces_sample_rate: 3\n",
	}
	for section, data := range cases {
		_, err := Load(writeConfig(t, "config.yaml", data))
		require.Error(t, err, section)
		assert.Contains(t, err.Error(), section+":", section)
	}

	_, err := Load(writeConfig(t, "config.toml", ""))
	assert.ErrorContains(t, err, "unsupported config format")
}

func TestLoadReferenceURL(t *testing.T) {
	cfg, err := Load(writeConfig(t, "config.yaml", `planner:
  reference_url: "https://ref.example.com/tables.yaml"
  reference_auth:
    client_id: "id"
    client_secret: "secret"
    auth_url: "https://auth.example.com/token"
`))
	require.NoError(t, err)
	assert.Empty(t, cfg.Planner.ReferencePath)
	assert.True(t, cfg.Planner.ReferenceAuth.Enabled())
}
