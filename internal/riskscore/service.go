// Package riskscore queries an external wallet risk-scoring provider
// (Blocksec/MetaSleuth wallet screening API). Optional: without an API key it
// reports "not enabled" instead of failing.
package riskscore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"amlscreen/internal/domain"
	"amlscreen/pkg/config"
)

// Provider chain identifiers differ from ours.
var chainIDs = map[domain.Chain]string{
	domain.ChainEthereum: "eth",
	domain.ChainBSC:      "bsc",
	domain.ChainPolygon:  "polygon",
	domain.ChainBitcoin:  "btc",
	domain.ChainTron:     "tron",
}

// Result is the outcome of one risk-score lookup.
type Result struct {
	Enabled bool
	Error   string
	Score   *int
	Labels  []string
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
	return s.cfg.BlocksecAPIKey != ""
}

type scoreRequest struct {
	Chain   string `json:"chain"`
	Address string `json:"address"`
}

// The provider nests the payload under "data" in v2 but returned it flat in
// earlier versions; read both.
type scoreResponse struct {
	Data struct {
		RiskScore *int     `json:"risk_score"`
		Labels    []string `json:"labels"`
	} `json:"data"`
	RiskScore *int     `json:"risk_score"`
	Labels    []string `json:"labels"`
}

func (s *Service) Check(ctx context.Context, input domain.AddressInput) Result {
	if !s.Enabled() {
		return Result{}
	}

	chainID, ok := chainIDs[input.Chain]
	if !ok {
		return Result{}
	}

	payload, err := json.Marshal(scoreRequest{Chain: chainID, Address: input.Address})
	if err != nil {
		return Result{Enabled: true, Error: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BlocksecURL, bytes.NewReader(payload))
	if err != nil {
		return Result{Enabled: true, Error: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("API-KEY", s.cfg.BlocksecAPIKey)

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

	var decoded scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Result{Enabled: true, Error: "unexpected response shape"}
	}

	out := Result{Enabled: true}
	if decoded.Data.RiskScore != nil {
		out.Score = decoded.Data.RiskScore
		out.Labels = decoded.Data.Labels
	} else if decoded.RiskScore != nil {
		out.Score = decoded.RiskScore
		out.Labels = decoded.Labels
	}
	return out
}
