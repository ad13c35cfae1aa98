package explorer

import (
	"context"
	"fmt"
	"time"

	"amlscreen/internal/domain"
	"amlscreen/pkg/errors"

	"github.com/shopspring/decimal"
)

var satoshiPerBTC = decimal.New(1, 8)

// Canonical DTO for the Blockchair dashboard response. The address key of the
// data map echoes the queried address.
type blockchairDashboard struct {
	Data map[string]struct {
		Address struct {
			Balance            int64  `json:"balance"`
			TransactionCount   int    `json:"transaction_count"`
			FirstSeenReceiving string `json:"first_seen_receiving"`
			LastSeenReceiving  string `json:"last_seen_receiving"`
		} `json:"address"`
		Transactions []string `json:"transactions"`
	} `json:"data"`
}

func (s *Service) fetchBitcoin(ctx context.Context, addr string) (*domain.OnChainSnapshot, error) {
	var dash blockchairDashboard
	url := fmt.Sprintf("https://api.blockchair.com/bitcoin/dashboards/address/%s?limit=10", addr)
	if !s.getJSON(ctx, url, &dash) {
		return nil, errors.New("blockchair: request failed or rate limited")
	}

	entry, ok := dash.Data[addr]
	if !ok {
		return nil, errors.New("blockchair: address not found in response")
	}

	balance := decimal.NewFromInt(entry.Address.Balance).Div(satoshiPerBTC)
	snap := &domain.OnChainSnapshot{
		Provider:         "Blockchair",
		Chain:            domain.ChainBitcoin,
		Balance:          balance.StringFixed(8) + " BTC",
		BalanceRaw:       &balance,
		TxCount:          entry.Address.TransactionCount,
		FirstTransaction: parseBlockchairTime(entry.Address.FirstSeenReceiving),
		LastTransaction:  parseBlockchairTime(entry.Address.LastSeenReceiving),
	}

	limit := s.sampleSize
	if limit > len(entry.Transactions) {
		limit = len(entry.Transactions)
	}
	for _, hash := range entry.Transactions[:limit] {
		snap.RecentTxSample = append(snap.RecentTxSample, domain.SampledTx{Hash: hash})
	}

	return snap, nil
}

func parseBlockchairTime(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
