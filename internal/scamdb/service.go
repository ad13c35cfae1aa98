// Package scamdb queries the Chainabuse scam-report database. The lookup is
// optional: without an API key it reports "not enabled" instead of failing.
package scamdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"amlscreen/internal/domain"
	"amlscreen/pkg/config"
)

// Result is the outcome of one scam-database lookup.
type Result struct {
	Enabled bool
	Error   string
	Hits    []domain.ScamReport
}

type Service struct {
	cfg    config.ProvidersConfig
	client *http.Client
}

func NewService(cfg config.ProvidersConfig) *Service {
	return &Service{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.RequestTimeout},
	}
}

// Enabled reports whether an API key is configured.
func (s *Service) Enabled() bool {
	return s.cfg.ChainabuseAPIKey != ""
}

// Response shapes vary across API plans; keep every plausible field name
// confined to this DTO.
type chainabuseReport struct {
	Category    string `json:"category"`
	ScamType    string `json:"scamType"`
	Description string `json:"description"`
	CreatedAt   string `json:"createdAt"`
	CreatedAt2  string `json:"created_at"`
}

type chainabuseResponse struct {
	Reports []chainabuseReport `json:"reports"`
}

func (s *Service) Check(ctx context.Context, input domain.AddressInput) Result {
	if !s.Enabled() {
		return Result{}
	}

	endpoint, err := url.Parse(s.cfg.ChainabuseURL)
	if err != nil {
		return Result{Enabled: true, Error: "invalid chainabuse endpoint"}
	}
	q := endpoint.Query()
	q.Set("address", input.Address)
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return Result{Enabled: true, Error: err.Error()}
	}
	req.Header.Set("X-API-KEY", s.cfg.ChainabuseAPIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return Result{Enabled: true, Error: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return Result{Enabled: true, Error: "api key rejected"}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{Enabled: true, Error: fmt.Sprintf("HTTP %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Result{Enabled: true, Error: err.Error()}
	}

	// The body is either {reports: [...]} or a bare array depending on plan.
	var reports []chainabuseReport
	var wrapped chainabuseResponse
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Reports != nil {
		reports = wrapped.Reports
	} else if err := json.Unmarshal(body, &reports); err != nil {
		return Result{Enabled: true, Error: "unexpected response shape"}
	}

	out := Result{Enabled: true}
	for _, r := range reports {
		hit := domain.ScamReport{
			Category:    firstNonEmpty(r.Category, r.ScamType, "unknown"),
			Description: truncate(r.Description, 200),
			CreatedAt:   firstNonEmpty(r.CreatedAt, r.CreatedAt2),
		}
		out.Hits = append(out.Hits, hit)
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
