// Package explorer fetches per-address on-chain facts from public block
// explorers and normalizes them into the common snapshot shape. Each chain
// family issues its upstream requests concurrently with a bounded timeout;
// a failed sub-request degrades that portion of the snapshot to "data
// unavailable" instead of failing the fetch.
package explorer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"amlscreen/internal/domain"
	"amlscreen/pkg/config"
	"amlscreen/pkg/errors"
	"amlscreen/pkg/logger"
)

const userAgent = "amlscreen/1.0"

type Service struct {
	cfg        config.ProvidersConfig
	sampleSize int
	client     *http.Client
	logger     logger.Logger
}

func NewService(cfg config.ProvidersConfig, sampleSize int, log logger.Logger) *Service {
	if sampleSize <= 0 {
		sampleSize = 10
	}
	return &Service{
		cfg:        cfg,
		sampleSize: sampleSize,
		client:     &http.Client{Timeout: cfg.RequestTimeout},
		logger:     log,
	}
}

// Fetch dispatches to the chain's explorer family and returns the normalized
// snapshot. An unsupported chain or a totally unreachable explorer is an
// error; partial upstream failures are not.
func (s *Service) Fetch(ctx context.Context, chain domain.Chain, addr string) (*domain.OnChainSnapshot, error) {
	switch {
	case chain.IsEVM():
		return s.fetchEVM(ctx, chain, addr)
	case chain == domain.ChainBitcoin:
		return s.fetchBitcoin(ctx, addr)
	case chain == domain.ChainTron:
		return s.fetchTron(ctx, addr)
	default:
		return nil, fmt.Errorf("%w: %s", errors.ErrExplorerNotFound, chain)
	}
}

// getJSON issues one GET and decodes the body into dest. Any transport
// error, timeout or non-2xx status returns false: callers treat the
// sub-result as unavailable.
func (s *Service) getJSON(ctx context.Context, url string, dest interface{}) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false
	}

	return json.NewDecoder(resp.Body).Decode(dest) == nil
}
