package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kilianp07/pumpplan/app"
	"github.com/kilianp07/pumpplan/config"
	"github.com/kilianp07/pumpplan/infra/mqtt"
	"github.com/kilianp07/pumpplan/test/util"
)

func waitForMQTTReady(broker string, timeout time.Duration) error {
	opts := paho.NewClientOptions().AddBroker(broker).SetClientID("probe")
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		cli := paho.NewClient(opts)
		token := cli.Connect()
		token.Wait()
		if token.Error() == nil {
			cli.Disconnect(100)
			return nil
		}
		lastErr = token.Error()
		time.Sleep(100 * time.Millisecond)
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("timeout waiting for broker")
	}
	return lastErr
}

func startMosquitto(ctx context.Context, t *testing.T) (tc.Container, string) {
	t.Helper()
	conf := "listener 1883\nallow_anonymous true\npersistence false\n"
	path := filepath.Join(t.TempDir(), "mosquitto.conf")
	require.NoError(t, os.WriteFile(path, []byte(conf), 0o644))

	req := tc.ContainerRequest{
		Image:        "eclipse-mosquitto:2.0",
		ExposedPorts: []string{"1883/tcp"},
		WaitingFor:   wait.ForListeningPort("1883/tcp"),
		Files: []tc.ContainerFile{{
			HostFilePath:      path,
			ContainerFilePath: "/mosquitto/config/mosquitto.conf",
			FileMode:          0o644,
		}},
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Skipf("unable to start mosquitto: %v", err)
	}
	host, _ := cont.Host(ctx)
	port, _ := cont.MappedPort(ctx, "1883")
	broker := fmt.Sprintf("tcp://%s:%s", host, port.Port())
	if err := waitForMQTTReady(broker, 5*time.Second); err != nil {
		_ = cont.Terminate(ctx)
		t.Skipf("mosquitto not ready at %s: %v", broker, err)
	}
	return cont, broker
}

// Test_E2E_MQTTPlanRequest sends a plan request over the broker and waits
// for the service to announce the finished run.
func Test_E2E_MQTTPlanRequest(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test in short mode")
	}
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skipf("docker not installed: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cont, broker := startMosquitto(ctx, t)
	defer cont.Terminate(ctx) //nolint:errcheck

	refPath := filepath.Join(t.TempDir(), "reference.yaml")
	require.NoError(t, os.WriteFile(refPath, []byte(util.ReferenceYAML), 0o600))
	cfg := &config.Config{
		Planner: config.PlannerConfig{BaselinePumps: 1, ReferencePath: refPath},
		Logging: config.LoggingConfig{Level: "warn"},
		MQTT: mqtt.Config{
			Enabled:      true,
			Broker:       broker,
			ClientID:     "pumpplan-e2e",
			RequestTopic: "pumpplan/requests",
			QoS:          1,
		},
	}
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())
	svc, err := app.New(ctx, cfg)
	require.NoError(t, err)
	defer svc.Close()

	announced := make(chan mqtt.Announcement, 1)
	probe := paho.NewClient(paho.NewClientOptions().AddBroker(broker).SetClientID("e2e-probe"))
	token := probe.Connect()
	token.Wait()
	require.NoError(t, token.Error())
	defer probe.Disconnect(100)

	token = probe.Subscribe("pumpplan/plans/2024", 1, func(_ paho.Client, m paho.Message) {
		var a mqtt.Announcement
		if err := json.Unmarshal(m.Payload(), &a); err == nil {
			select {
			case announced <- a:
			default:
			}
		}
	})
	token.Wait()
	require.NoError(t, token.Error())

	// The service subscribes from its OnConnect callback.
	time.Sleep(time.Second)
	token = probe.Publish("pumpplan/requests", 1, false, []byte(`{"year":2024,"target":25000000}`))
	token.Wait()
	require.NoError(t, token.Error())

	select {
	case a := <-announced:
		assert.NotEmpty(t, a.RunID)
		assert.Equal(t, 2024, a.Year)
		assert.Equal(t, "succeeded", a.Status)
		assert.Equal(t, 25_000_000, a.FinalProduction)
	case <-time.After(90 * time.Second):
		t.Fatal("no plan announcement received")
	}
}
