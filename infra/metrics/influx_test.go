package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/pumpplan/core/metrics"
	"github.com/kilianp07/pumpplan/core/model"
	"github.com/kilianp07/pumpplan/core/plan"
)

type lineServer struct {
	mu     sync.Mutex
	bodies []string
}

func (s *lineServer) handler(w http.ResponseWriter, r *http.Request) {
	data, _ := io.ReadAll(r.Body)
	s.mu.Lock()
	s.bodies = append(s.bodies, strings.TrimSpace(string(data)))
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func newLineServer(t *testing.T) (*lineServer, string) {
	t.Helper()
	ls := &lineServer{}
	srv := httptest.NewServer(http.HandlerFunc(ls.handler))
	t.Cleanup(srv.Close)
	return ls, srv.URL
}

func TestInfluxRecorder_RecordPass(t *testing.T) {
	ls, url := newLineServer(t)
	rec := NewInfluxRecorder(url, "token", "org", "bucket", nil)
	defer rec.Close()

	now := time.Now()
	ev := coremetrics.PassEvent{
		RunID: "r1", Pass: "daily", Units: 365, Advances: 12, Skipped: 2,
		Duration: 1500 * time.Microsecond, Component: "planner", Time: now,
	}
	require.NoError(t, rec.RecordPass(ev))

	p := write.NewPointWithMeasurement("plan_pass").
		AddTag("run_id", "r1").
		AddTag("pass", "daily").
		AddTag("failed", "false").
		AddTag("component", "planner").
		AddField("units", 365).
		AddField("advances", 12).
		AddField("retreats", 0).
		AddField("skipped_days", 2).
		AddField("duration_ms", 1.5).
		SetTime(now)
	exp := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	require.Len(t, ls.bodies, 1)
	assert.Equal(t, exp, ls.bodies[0])
}

func TestInfluxRecorder_RecordRun(t *testing.T) {
	ls, url := newLineServer(t)
	rec := NewInfluxRecorder(url, "token", "org", "bucket", nil)
	defer rec.Close()

	now := time.Now()
	ev := coremetrics.RunEvent{
		RunID: "r1", Year: 2024, Target: 100, BaselineProduction: 80, FinalProduction: 100,
		TotalCost: 12.34567, Status: "succeeded",
		BandProduction: map[string]int{"LOW": 60, "MID": 40},
		BandCost:       map[string]float64{"LOW": 4, "MID": 8.34567},
		Duration:       2 * time.Second, Time: now,
	}
	require.NoError(t, rec.RecordRun(ev))

	p := write.NewPointWithMeasurement("plan_run").
		AddTag("run_id", "r1").
		AddTag("year", "2024").
		AddTag("status", "succeeded").
		AddField("target", 100).
		AddField("baseline_production", 80).
		AddField("final_production", 100).
		AddField("total_cost", 12.346).
		AddField("duration_ms", 2000.0).
		AddField("production_low", 60).
		AddField("cost_low", 4.0).
		AddField("production_mid", 40).
		AddField("cost_mid", 8.346).
		SetTime(now)
	exp := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	require.Len(t, ls.bodies, 1)
	assert.Equal(t, exp, ls.bodies[0])
}

func TestInfluxRecorder_WriteGrid(t *testing.T) {
	ls, url := newLineServer(t)
	rec := NewInfluxRecorder(url, "token", "org", "bucket", nil)
	defer rec.Close()

	g := model.NewGrid(2023, 12)
	g.Cell(0, 3).Facility(model.North).Production = 200
	res := &plan.Result{RunID: "r1", Year: 2023, Grid: g}
	require.NoError(t, rec.WriteGrid(context.Background(), res))

	lines := 0
	for _, b := range ls.bodies {
		lines += len(strings.Split(b, "\n"))
	}
	assert.Equal(t, 12*model.HoursPerDay*2, lines)
	assert.Len(t, ls.bodies, 2, "cells are batched")

	c := g.Cell(0, 3)
	exp := strings.TrimSpace(write.PointToLineProtocol(cellPoint("r1", c, model.North), time.Nanosecond))
	assert.Contains(t, ls.bodies[0], exp)
	assert.Contains(t, exp, "production=200i")
}

func TestNewInfluxRecorderWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	rec := NewInfluxRecorderWithFallback(srv.URL+"/api/v2/write", "tok", "org", "bucket", nil)
	assert.Nil(t, rec, "expected no recorder on failing health check")
	assert.True(t, called, "health endpoint not called")
}
