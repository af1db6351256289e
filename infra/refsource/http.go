// Package refsource fetches reference tables from an HTTP endpoint.
package refsource

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/kilianp07/pumpplan/auth"
	"github.com/kilianp07/pumpplan/core/logger"
	"github.com/kilianp07/pumpplan/core/reference"
)

// maxBody bounds the size of a reference document.
const maxBody = 16 << 20

// HTTPSource downloads a YAML or JSON reference document. When credentials
// are set every request carries a client-credentials Bearer token.
type HTTPSource struct {
	url    string
	client *http.Client
	cred   *auth.ClientCred
	log    logger.Logger
}

// NewHTTPSource returns a source for rawURL. cred may be nil.
func NewHTTPSource(rawURL string, cred *auth.ClientCred, log logger.Logger) *HTTPSource {
	return &HTTPSource{
		url:    rawURL,
		client: &http.Client{Timeout: 30 * time.Second},
		cred:   cred,
		log:    logger.OrNop(log),
	}
}

// Fetch downloads and compiles the reference tables. A 401 answer triggers
// one token refresh and retry.
func (s *HTTPSource) Fetch(ctx context.Context) (*reference.Tables, error) {
	resp, err := s.get(ctx)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized && s.cred != nil {
		_ = resp.Body.Close()
		s.log.Warnf("reference source rejected token, refreshing")
		if _, err := s.cred.ForceRefresh(ctx); err != nil {
			return nil, err
		}
		if resp, err = s.get(ctx); err != nil {
			return nil, err
		}
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", s.url, resp.Status)
	}
	format := formatOf(resp.Header.Get("Content-Type"), s.url)
	doc, err := reference.Decode(io.LimitReader(resp.Body, maxBody), format)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.url, err)
	}
	s.log.Infof("fetched reference tables from %s", s.url)
	return reference.Compile(doc)
}

func (s *HTTPSource) get(ctx context.Context) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/yaml, application/json")
	if s.cred != nil {
		if err := s.cred.SetAuthHeader(req); err != nil {
			return nil, err
		}
	}
	return s.client.Do(req)
}

// formatOf picks the decoder from the content type, then the URL extension,
// defaulting to YAML.
func formatOf(contentType, rawURL string) string {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		switch {
		case strings.HasSuffix(mt, "json"):
			return "json"
		case strings.HasSuffix(mt, "yaml"):
			return "yaml"
		}
	}
	if u, err := url.Parse(rawURL); err == nil {
		switch strings.ToLower(path.Ext(u.Path)) {
		case ".json":
			return "json"
		case ".yaml", ".yml":
			return "yaml"
		}
	}
	return "yaml"
}
