// Package app wires the planner to its reference source and result sinks.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/kilianp07/pumpplan/api/plans"
	"github.com/kilianp07/pumpplan/auth"
	"github.com/kilianp07/pumpplan/config"
	coremetrics "github.com/kilianp07/pumpplan/core/metrics"
	coremon "github.com/kilianp07/pumpplan/core/monitoring"
	"github.com/kilianp07/pumpplan/core/plan"
	"github.com/kilianp07/pumpplan/core/reference"
	"github.com/kilianp07/pumpplan/infra/logger"
	"github.com/kilianp07/pumpplan/infra/metrics"
	"github.com/kilianp07/pumpplan/infra/monitoring"
	"github.com/kilianp07/pumpplan/infra/mqtt"
	"github.com/kilianp07/pumpplan/infra/refsource"
	"github.com/kilianp07/pumpplan/infra/store"
)

type runStore interface {
	plans.Store
	SaveRun(ctx context.Context, res *plan.Result) error
	Close() error
}

type gridWriter interface {
	WriteGrid(ctx context.Context, res *plan.Result) error
}

type publisher interface {
	PublishResult(res *plan.Result) error
}

// Service runs plans and hands every result to the configured sinks: the
// run store, the Influx grid writer and the MQTT announcer.
type Service struct {
	cfg     *config.Config
	planner *plan.Planner
	store   runStore
	grid    gridWriter
	pub     publisher
	slots   chan struct{}
	log     logger.Logger
	closers []func()

	// ctx bounds runs started from MQTT requests; Close cancels it and
	// waits for inflight.
	ctx      context.Context
	cancel   context.CancelFunc
	mu       sync.Mutex
	closing  bool
	inflight sync.WaitGroup
}

// LoadTables reads the reference tables from the configured URL or file.
func LoadTables(ctx context.Context, cfg config.PlannerConfig) (*reference.Tables, error) {
	if cfg.ReferenceURL == "" {
		return reference.LoadFile(cfg.ReferencePath)
	}
	var cred *auth.ClientCred
	if cfg.ReferenceAuth.Enabled() {
		cred = auth.NewClientCred(cfg.ReferenceAuth)
	}
	return refsource.NewHTTPSource(cfg.ReferenceURL, cred, logger.New("reference")).Fetch(ctx)
}

// New creates a Service from the configuration.
func New(ctx context.Context, cfg *config.Config) (*Service, error) {
	lc := cfg.Logging
	opts := logger.Options{
		Level:  lc.Level,
		Format: lc.Format,
		File:   logger.FileOptions{Path: lc.File, MaxSizeMB: lc.MaxSizeMB, MaxBackups: lc.MaxBackups, MaxAgeDays: lc.MaxAgeDays},
	}
	if err := logger.Configure(opts); err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	logg := logger.New("service")
	svc := &Service{cfg: cfg, log: logg}
	svc.ctx, svc.cancel = context.WithCancel(context.Background())

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		svc.Close()
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)

	tables, err := LoadTables(ctx, cfg.Planner)
	if err != nil {
		svc.Close()
		return nil, fmt.Errorf("reference tables: %w", err)
	}

	if cfg.API.MaxConcurrentRuns > 0 {
		svc.slots = make(chan struct{}, cfg.API.MaxConcurrentRuns)
	}

	var recs []coremetrics.Recorder
	if cfg.Metrics.PrometheusEnabled {
		rec, err := metrics.NewPromRecorder()
		if err != nil {
			svc.Close()
			return nil, fmt.Errorf("prom recorder: %w", err)
		}
		recs = append(recs, rec)
	}
	if in := cfg.Metrics.Influx; in.Enabled {
		if rec := metrics.NewInfluxRecorderWithFallback(in.URL, in.Token, in.Org, in.Bucket, logger.New("influx")); rec != nil {
			recs = append(recs, rec)
			if in.WriteGrid {
				svc.grid = rec
			}
			svc.closers = append(svc.closers, rec.Close)
		}
	}
	svc.planner = plan.New(tables, cfg.Planner.Plan(), logger.New("planner"), coremetrics.NewMulti(recs...))

	if cfg.Store.Enabled {
		st, err := store.NewSQLiteStore(cfg.Store.Path)
		if err != nil {
			svc.Close()
			return nil, fmt.Errorf("run store: %w", err)
		}
		svc.store = st
		svc.closers = append(svc.closers, func() {
			if err := st.Close(); err != nil {
				logg.Errorf("store close: %v", err)
			}
		})
	}

	if cfg.MQTT.Enabled {
		client, err := mqtt.NewPahoClient(cfg.MQTT, logger.New("mqtt"))
		if err != nil {
			svc.Close()
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		client.HandleRequests(svc.ctx, svc.dispatch)
		svc.pub = client
		svc.closers = append(svc.closers, client.Disconnect)
	}
	return svc, nil
}

// Plan runs the planner and delivers the result, including a partial one,
// to every sink. Sink failures are logged and do not fail the run.
func (s *Service) Plan(ctx context.Context, req plan.Request) (*plan.Result, error) {
	if s.slots != nil {
		select {
		case s.slots <- struct{}{}:
			defer func() { <-s.slots }()
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	res, err := s.planner.Run(ctx, req)
	runID := ""
	if res != nil {
		runID = res.RunID
	}
	coremon.CaptureRunError(err, req.Year, runID)
	if err != nil {
		s.log.Warnf("plan %d: %v", req.Year, err)
	}
	if res != nil {
		s.deliver(ctx, res)
	}
	return res, err
}

func (s *Service) deliver(ctx context.Context, res *plan.Result) {
	if s.store != nil {
		if err := s.store.SaveRun(ctx, res); err != nil {
			s.log.Errorf("save run %s: %v", res.RunID, err)
		}
	}
	if s.grid != nil {
		if err := s.grid.WriteGrid(ctx, res); err != nil {
			s.log.Errorf("write grid of run %s: %v", res.RunID, err)
		}
	}
	if s.pub != nil {
		if err := s.pub.PublishResult(res); err != nil {
			s.log.Errorf("publish run %s: %v", res.RunID, err)
		}
	}
}

// dispatch starts a run for an MQTT request unless the service is closing.
func (s *Service) dispatch(ctx context.Context, year, target int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		s.log.Warnf("mqtt plan request %d dropped: service closing", year)
		return
	}
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		s.handleRequest(ctx, year, target)
	}()
}

func (s *Service) handleRequest(ctx context.Context, year, target int) {
	defer coremon.Recover()
	if _, err := s.Plan(ctx, plan.Request{Year: year, Target: target}); err != nil {
		s.log.Errorf("mqtt plan request %d: %v", year, err)
	}
}

// Handler returns the HTTP API backed by the service.
func (s *Service) Handler() http.Handler {
	opts := plans.Options{Runner: s, Token: s.cfg.API.Token, Log: logger.New("api")}
	if s.store != nil {
		opts.Store = s.store
	}
	return plans.NewRouter(opts)
}

// Serve runs the HTTP API, and the Prometheus endpoint when enabled, until
// ctx is cancelled.
func (s *Service) Serve(ctx context.Context) error {
	if s.cfg.Metrics.PrometheusEnabled {
		addr := ":" + strconv.Itoa(s.cfg.Metrics.PrometheusPort)
		go func() {
			if err := metrics.StartPromServer(ctx, addr, logger.New("prometheus")); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	srv := &http.Server{Addr: s.cfg.API.Addr, Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("api shutdown: %v", err)
		}
	}()
	s.log.Infof("serving plans API on %s", s.cfg.API.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close cancels runs started from MQTT requests, waits for them to finish
// and releases resources held by the service.
func (s *Service) Close() {
	s.mu.Lock()
	s.closing = true
	s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.inflight.Wait()

	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
	coremon.Flush(2 * time.Second)
	if err := logger.Close(); err != nil {
		s.log.Errorf("log file close: %v", err)
	}
}
