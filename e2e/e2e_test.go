package e2e

import (
	"context"
	"fmt"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kilianp07/pumpplan/core/plan"
	"github.com/kilianp07/pumpplan/infra/metrics"
	"github.com/kilianp07/pumpplan/test/util"
)

const (
	org    = "e2e_org"
	bucket = "e2e_bucket"
	token  = "e2e-token"
)

// startInflux starts an InfluxDB 2.7 container initialised with the e2e org,
// bucket and token, and returns it along with the base URL.
func startInflux(ctx context.Context, t *testing.T) (tc.Container, string) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "influxdb:2.7",
		ExposedPorts: []string{"8086/tcp"},
		Env: map[string]string{
			"DOCKER_INFLUXDB_INIT_MODE":        "setup",
			"DOCKER_INFLUXDB_INIT_USERNAME":    "e2e",
			"DOCKER_INFLUXDB_INIT_PASSWORD":    "e2e-password",
			"DOCKER_INFLUXDB_INIT_ORG":         org,
			"DOCKER_INFLUXDB_INIT_BUCKET":      bucket,
			"DOCKER_INFLUXDB_INIT_ADMIN_TOKEN": token,
		},
		WaitingFor: wait.ForHTTP("/health").WithPort("8086/tcp").WithStartupTimeout(60 * time.Second),
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Skipf("unable to start influx container: %v", err)
	}
	host, _ := cont.Host(ctx)
	port, _ := cont.MappedPort(ctx, "8086")
	return cont, fmt.Sprintf("http://%s:%s", host, port.Port())
}

// Test_E2E_InfluxRecorder runs a plan with the Influx recorder attached and
// reads the pass, run and grid points back from a real InfluxDB.
func Test_E2E_InfluxRecorder(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test in short mode")
	}
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skipf("docker not installed: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cont, url := startInflux(ctx, t)
	defer cont.Terminate(ctx) //nolint:errcheck
	t.Logf("InfluxDB started at %s", url)

	rec := metrics.NewInfluxRecorderWithFallback(url, token, org, bucket, nil)
	require.NotNil(t, rec, "influx health check failed")
	defer rec.Close()

	p := plan.New(util.Tables(util.DefaultFixture()), plan.Config{BaselinePumps: 1}, nil, rec)
	target := 365*24*200 + 5000
	res, err := p.Run(ctx, plan.Request{Year: 2023, Target: target})
	require.NoError(t, err)
	require.NoError(t, rec.WriteGrid(ctx, res))

	cli := NewInfluxClient(url, org, bucket, token)
	defer cli.Close()

	passes, err := cli.Count(ctx, "plan_pass", "units", res.RunID)
	require.NoError(t, err)
	assert.Equal(t, 3, passes)

	final, err := cli.Last(ctx, "plan_run", "final_production", res.RunID)
	require.NoError(t, err)
	assert.EqualValues(t, target, final)

	cells, err := cli.Count(ctx, "plan_cell", "production", res.RunID)
	require.NoError(t, err)
	assert.Equal(t, res.Grid.Days()*24*2, cells)
}
