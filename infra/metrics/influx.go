package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/kilianp07/pumpplan/core/logger"
	coremetrics "github.com/kilianp07/pumpplan/core/metrics"
	"github.com/kilianp07/pumpplan/core/model"
	"github.com/kilianp07/pumpplan/core/plan"
)

// gridBatch is the number of cell points sent per write request.
const gridBatch = 500

// InfluxRecorder writes planner statistics and plan grids to an InfluxDB
// instance using the official client.
type InfluxRecorder struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxRecorder creates a recorder configured for the given InfluxDB endpoint.
func NewInfluxRecorder(url, token, org, bucket string, log logger.Logger) *InfluxRecorder {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxRecorder{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.OrNop(log),
	}
}

// NewInfluxRecorderWithFallback pings the InfluxDB instance and returns
// nil when the health check fails, so callers can skip the recorder.
func NewInfluxRecorderWithFallback(url, token, org, bucket string, log logger.Logger) *InfluxRecorder {
	r := NewInfluxRecorder(url, token, org, bucket, log)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := r.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			r.log.Errorf("influx health check error: %v", err)
		} else {
			r.log.Errorf("influx health status: %s", health.Status)
		}
		r.client.Close()
		return nil
	}
	return r
}

// RecordPass writes one plan_pass point.
func (r *InfluxRecorder) RecordPass(ev coremetrics.PassEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("plan_pass").
		AddTag("run_id", ev.RunID).
		AddTag("pass", ev.Pass).
		AddTag("failed", strconv.FormatBool(ev.Failed))
	if ev.Component != "" {
		p = p.AddTag("component", ev.Component)
	}
	p = p.AddField("units", ev.Units).
		AddField("advances", ev.Advances).
		AddField("retreats", ev.Retreats).
		AddField("skipped_days", ev.Skipped).
		AddField("duration_ms", round3(ev.Duration.Seconds()*1000)).
		SetTime(ev.Time)
	return r.writeAPI.WritePoint(ctx, p)
}

// RecordRun writes one plan_run point carrying the per-band totals as fields.
func (r *InfluxRecorder) RecordRun(ev coremetrics.RunEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("plan_run").
		AddTag("run_id", ev.RunID).
		AddTag("year", strconv.Itoa(ev.Year)).
		AddTag("status", ev.Status)
	if ev.FailedPass != "" {
		p = p.AddTag("failed_pass", ev.FailedPass)
	}
	p = p.AddField("target", ev.Target).
		AddField("baseline_production", ev.BaselineProduction).
		AddField("final_production", ev.FinalProduction).
		AddField("total_cost", round3(ev.TotalCost)).
		AddField("duration_ms", round3(ev.Duration.Seconds()*1000))
	for _, b := range model.Bands {
		name := b.String()
		if v, ok := ev.BandProduction[name]; ok {
			p = p.AddField("production_"+strings.ToLower(name), v)
		}
		if v, ok := ev.BandCost[name]; ok {
			p = p.AddField("cost_"+strings.ToLower(name), round3(v))
		}
	}
	p = p.SetTime(ev.Time)
	return r.writeAPI.WritePoint(ctx, p)
}

// WriteGrid writes one plan_cell point per facility and hour of the result
// grid, stamped with the hour it plans.
func (r *InfluxRecorder) WriteGrid(ctx context.Context, res *plan.Result) error {
	if res == nil || res.Grid == nil {
		return nil
	}
	batch := make([]*write.Point, 0, gridBatch)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		err := r.writeAPI.WritePoint(ctx, batch...)
		batch = batch[:0]
		return err
	}
	for d := 0; d < res.Grid.Days(); d++ {
		for _, c := range res.Grid.Row(d) {
			for _, side := range model.Sides {
				batch = append(batch, cellPoint(res.RunID, &c, side))
				if len(batch) == gridBatch {
					if err := flush(); err != nil {
						return err
					}
				}
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}
	r.log.Debugf("wrote %d plan cells for run %s", res.Grid.Days()*model.HoursPerDay*len(model.Sides), res.RunID)
	return nil
}

func cellPoint(runID string, c *model.Cell, side model.Side) *write.Point {
	f := c.Facility(side)
	return write.NewPointWithMeasurement("plan_cell").
		AddTag("run_id", runID).
		AddTag("side", side.String()).
		AddTag("band", c.Band.String()).
		AddField("pumps", f.Pumps).
		AddField("production", f.Production).
		AddField("specific_energy", round3(f.SpecificEnergy)).
		AddField("cost", round3(f.Cost)).
		AddField("shutdown", f.Shutdown).
		SetTime(c.Date.Add(time.Duration(c.Hour) * time.Hour))
}

// Close releases the underlying client.
func (r *InfluxRecorder) Close() {
	r.client.Close()
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
