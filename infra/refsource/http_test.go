package refsource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/pumpplan/auth"
	"github.com/kilianp07/pumpplan/test/util"
)

func TestFetchYAML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write([]byte(util.ReferenceYAML))
	}))
	defer srv.Close()

	tables, err := NewHTTPSource(srv.URL+"/reference", nil, nil).Fetch(context.Background())
	require.NoError(t, err)
	assert.NoError(t, tables.Validate(0))
}

func TestFetchRefreshesRejectedToken(t *testing.T) {
	var tokens atomic.Int32
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokens.Add(1)
		w.Header().Set("Content-Type", "application/json")
		if tokens.Load() == 1 {
			_, _ = w.Write([]byte(`{"access_token":"stale","token_type":"bearer","expires_in":3600}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"fresh","token_type":"bearer","expires_in":3600}`))
	}))
	defer tokenSrv.Close()

	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(util.ReferenceYAML))
	}))
	defer srv.Close()

	cred := auth.NewClientCred(auth.Conf{ClientID: "id", ClientSecret: "s", AuthURL: tokenSrv.URL})
	tables, err := NewHTTPSource(srv.URL+"/reference.yaml", cred, nil).Fetch(context.Background())
	require.NoError(t, err)
	require.NotNil(t, tables)
	assert.Equal(t, []string{"Bearer stale", "Bearer fresh"}, seen)
	assert.EqualValues(t, 2, tokens.Load())
}

func TestFetchStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewHTTPSource(srv.URL, nil, nil).Fetch(context.Background())
	assert.ErrorContains(t, err, "unexpected status")
}

func TestFormatOf(t *testing.T) {
	cases := []struct {
		contentType, url, want string
	}{
		{"application/json; charset=utf-8", "http://x/ref", "json"},
		{"application/x-yaml", "http://x/ref.json", "yaml"},
		{"text/plain", "http://x/ref.json?v=2", "json"},
		{"", "http://x/ref.yml", "yaml"},
		{"", "http://x/ref", "yaml"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, formatOf(c.contentType, c.url), c.url)
	}
}
