package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	coregeo "github.com/ChrisCryptoBot/meddropdispatch-sub004/core/geo"
)

// HTTPConfig configures the routing service client.
type HTTPConfig struct {
	BaseURL        string `json:"base_url"`
	APIKey         string `json:"api_key"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// HTTPProvider queries an external routing service for travel distance and
// duration. The service is expected to answer GET {base}/route?from=&to=
// with {"miles": f, "minutes": f}.
type HTTPProvider struct {
	base   string
	apiKey string
	client *http.Client
}

// NewHTTPProvider creates a provider for the configured routing service.
func NewHTTPProvider(cfg HTTPConfig) (*HTTPProvider, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("geo: base_url is required")
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPProvider{
		base:   strings.TrimRight(cfg.BaseURL, "/"),
		apiKey: cfg.APIKey,
		client: &http.Client{Timeout: timeout},
	}, nil
}

func (p *HTTPProvider) Distance(ctx context.Context, from, to string) (coregeo.Leg, error) {
	q := url.Values{}
	q.Set("from", from)
	q.Set("to", to)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.base+"/route?"+q.Encode(), nil)
	if err != nil {
		return coregeo.Leg{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return coregeo.Leg{}, fmt.Errorf("distance request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return coregeo.Leg{}, fmt.Errorf("distance request: status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var leg coregeo.Leg
	if err := json.NewDecoder(resp.Body).Decode(&leg); err != nil {
		return coregeo.Leg{}, fmt.Errorf("decode distance response: %w", err)
	}
	return leg, nil
}
