package plans

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/pumpplan/core/model"
	"github.com/kilianp07/pumpplan/core/plan"
	"github.com/kilianp07/pumpplan/core/reference"
	"github.com/kilianp07/pumpplan/infra/store"
)

type fakeRunner struct {
	st    *store.SQLiteStore
	err   error
	calls int
}

func (f *fakeRunner) Plan(ctx context.Context, req plan.Request) (*plan.Result, error) {
	f.calls++
	var iv *plan.InputValidationError
	var ce *reference.ConfigurationError
	if errors.As(f.err, &iv) || errors.As(f.err, &ce) {
		return nil, f.err
	}
	g := model.NewGrid(req.Year, 2)
	g.Cell(0, 0).Facility(model.North).Production = req.Target
	res := &plan.Result{
		RunID:     fmt.Sprintf("run-%d", f.calls),
		Year:      req.Year,
		Target:    req.Target,
		StartedAt: time.Date(2024, 1, 1, 0, f.calls, 0, 0, time.UTC),
		Grid:      g,
		Summary:   plan.Summary{FinalProduction: req.Target, Status: plan.StatusSucceeded},
	}
	if f.err != nil {
		res.Summary.Status = plan.StatusFailed
		res.Summary.Error = f.err.Error()
	}
	if f.st != nil {
		if err := f.st.SaveRun(ctx, res); err != nil {
			return nil, err
		}
	}
	return res, f.err
}

func newTestServer(t *testing.T, runner *fakeRunner, token string) (*httptest.Server, *store.SQLiteStore) {
	t.Helper()
	st, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	runner.st = st
	srv := httptest.NewServer(NewRouter(Options{Runner: runner, Store: st, Token: token}))
	t.Cleanup(srv.Close)
	return srv, st
}

func do(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestCreateAndRead(t *testing.T) {
	runner := &fakeRunner{}
	srv, _ := newTestServer(t, runner, "")

	resp := do(t, http.MethodPost, srv.URL+"/api/plans", "", map[string]int{"year": 2024, "target": 500})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created RunResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, "run-1", created.RunID)
	assert.Equal(t, 500, created.Summary.FinalProduction)

	resp = do(t, http.MethodGet, srv.URL+"/api/plans/run-1", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var run store.RunRecord
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&run))
	assert.Equal(t, 2024, run.Year)

	resp = do(t, http.MethodGet, srv.URL+"/api/plans/run-1/cells?from=0&to=1", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cells []store.CellRecord
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cells))
	require.Len(t, cells, model.HoursPerDay*2)
	assert.Equal(t, 500, cells[0].Production)

	do(t, http.MethodPost, srv.URL+"/api/plans", "", map[string]int{"year": 2025, "target": 1})
	resp = do(t, http.MethodGet, srv.URL+"/api/plans?year=2025", "", nil)
	var runs []store.RunRecord
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "run-2", runs[0].ID)
}

func TestCreateRejectsBadInput(t *testing.T) {
	runner := &fakeRunner{}
	srv, _ := newTestServer(t, runner, "")

	cases := []any{
		map[string]int{"year": 1999, "target": 1},
		map[string]int{"year": 2024, "target": -5},
		map[string]any{"year": "next", "target": 1},
		map[string]int{"year": 2024, "target": 1, "budget": 3},
	}
	for _, body := range cases {
		resp := do(t, http.MethodPost, srv.URL+"/api/plans", "", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "%v", body)
	}
	assert.Zero(t, runner.calls)
}

func TestCreateErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		body   bool
	}{
		{&reference.ConfigurationError{Table: "production", Key: "north/1", Reason: "missing"}, http.StatusInternalServerError, false},
		{&plan.UnreachableConstraintError{Pass: plan.PassDaily, Cause: plan.ErrNoCandidate}, http.StatusUnprocessableEntity, true},
		{context.DeadlineExceeded, http.StatusServiceUnavailable, true},
	}
	for _, c := range cases {
		srv, _ := newTestServer(t, &fakeRunner{err: c.err}, "")
		resp := do(t, http.MethodPost, srv.URL+"/api/plans", "", map[string]int{"year": 2024, "target": 1})
		assert.Equal(t, c.status, resp.StatusCode, "%v", c.err)
		var out RunResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		if c.body {
			assert.Equal(t, plan.StatusFailed, out.Summary.Status)
			assert.NotEmpty(t, out.Error)
		}
	}
}

func TestNotFound(t *testing.T) {
	srv, _ := newTestServer(t, &fakeRunner{}, "")
	assert.Equal(t, http.StatusNotFound, do(t, http.MethodGet, srv.URL+"/api/plans/missing", "", nil).StatusCode)
	assert.Equal(t, http.StatusNotFound, do(t, http.MethodGet, srv.URL+"/api/plans/missing/cells", "", nil).StatusCode)
	assert.Equal(t, http.StatusBadRequest, do(t, http.MethodGet, srv.URL+"/api/plans/x/cells?from=-1", "", nil).StatusCode)
}

func TestBearerToken(t *testing.T) {
	srv, _ := newTestServer(t, &fakeRunner{}, "secret")
	assert.Equal(t, http.StatusUnauthorized, do(t, http.MethodGet, srv.URL+"/api/plans", "", nil).StatusCode)
	assert.Equal(t, http.StatusUnauthorized, do(t, http.MethodGet, srv.URL+"/api/plans", "wrong", nil).StatusCode)
	assert.Equal(t, http.StatusOK, do(t, http.MethodGet, srv.URL+"/api/plans", "secret", nil).StatusCode)
	assert.Equal(t, http.StatusOK, do(t, http.MethodGet, srv.URL+"/healthz", "", nil).StatusCode)
}

func TestStoreDisabled(t *testing.T) {
	srv := httptest.NewServer(NewRouter(Options{Runner: &fakeRunner{}}))
	defer srv.Close()
	assert.Equal(t, http.StatusNotImplemented, do(t, http.MethodGet, srv.URL+"/api/plans", "", nil).StatusCode)
	assert.Equal(t, http.StatusCreated, do(t, http.MethodPost, srv.URL+"/api/plans", "", map[string]int{"year": 2024, "target": 1}).StatusCode)
}
