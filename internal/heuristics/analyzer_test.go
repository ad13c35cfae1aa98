package heuristics

import (
	"testing"
	"time"

	"amlscreen/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func analyzerAt(t *testing.T) *Analyzer {
	t.Helper()
	return NewAt(func() time.Time { return fixedNow })
}

func daysAgo(d float64) *time.Time {
	ts := fixedNow.Add(-time.Duration(d * 24 * float64(time.Hour)))
	return &ts
}

func intPtr(v int) *int { return &v }

func decPtr(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}

func TestAnalyzeNilSnapshot(t *testing.T) {
	res := analyzerAt(t).Analyze(nil)

	assert.Equal(t, 0, res.Score)
	assert.Empty(t, res.Findings)
}

func TestAnalyzeQuietWallet(t *testing.T) {
	snap := &domain.OnChainSnapshot{
		Chain:            domain.ChainEthereum,
		TxCount:          12,
		FirstTransaction: daysAgo(400),
	}

	res := analyzerAt(t).Analyze(snap)

	assert.Equal(t, 0, res.Score)
	assert.Empty(t, res.Findings)
}

func TestAnalyzeWalletAgeBands(t *testing.T) {
	a := analyzerAt(t)

	fresh := a.Analyze(&domain.OnChainSnapshot{FirstTransaction: daysAgo(2)})
	require.Len(t, fresh.Findings, 1)
	assert.Equal(t, domain.SeverityHigh, fresh.Findings[0].Severity)
	assert.Equal(t, "wallet_age", fresh.Findings[0].Category)
	assert.Equal(t, 30, fresh.Score)

	recent := a.Analyze(&domain.OnChainSnapshot{FirstTransaction: daysAgo(20)})
	require.Len(t, recent.Findings, 1)
	assert.Equal(t, domain.SeverityMedium, recent.Findings[0].Severity)
	assert.Equal(t, 15, recent.Score)

	// The two age bands never stack.
	assert.NotEqual(t, fresh.Score+recent.Score, a.Analyze(&domain.OnChainSnapshot{FirstTransaction: daysAgo(2)}).Score)
}

func TestAnalyzeVelocity(t *testing.T) {
	a := analyzerAt(t)

	// 600 txs over 10 days: 60/day, high band. Age band for 10 days also fires.
	res := a.Analyze(&domain.OnChainSnapshot{
		FirstTransaction: daysAgo(10),
		TxCount:          600,
	})
	assert.Equal(t, 15+25, res.Score)

	var velocity *domain.Finding
	for i := range res.Findings {
		if res.Findings[i].Category == "velocity" {
			velocity = &res.Findings[i]
		}
	}
	require.NotNil(t, velocity)
	assert.Equal(t, domain.SeverityHigh, velocity.Severity)
	assert.Contains(t, velocity.Detail, "60 tx/day")
}

func TestAnalyzeVelocityMinimumOneDay(t *testing.T) {
	// A wallet seen for an hour must not divide by a fractional day.
	res := analyzerAt(t).Analyze(&domain.OnChainSnapshot{
		FirstTransaction: daysAgo(1.0 / 24),
		TxCount:          30,
	})

	found := false
	for _, f := range res.Findings {
		if f.Category == "velocity" {
			found = true
			assert.Equal(t, domain.SeverityMedium, f.Severity)
		}
	}
	assert.True(t, found)
}

func TestAnalyzeStablecoinDominance(t *testing.T) {
	res := analyzerAt(t).Analyze(&domain.OnChainSnapshot{
		FirstTransaction:  daysAgo(365),
		TokenTxCount:      30,
		StablecoinTxCount: 29,
	})

	require.Len(t, res.Findings, 1)
	assert.Equal(t, "stablecoin_ratio", res.Findings[0].Category)
	assert.Equal(t, 10, res.Score)

	// Ratio high but volume low: no flag.
	quiet := analyzerAt(t).Analyze(&domain.OnChainSnapshot{
		FirstTransaction:  daysAgo(365),
		TokenTxCount:      10,
		StablecoinTxCount: 10,
	})
	assert.Equal(t, 0, quiet.Score)
}

func TestAnalyzeRelayWallet(t *testing.T) {
	res := analyzerAt(t).Analyze(&domain.OnChainSnapshot{
		FirstTransaction: daysAgo(365),
		Balance:          "0.0002 ETH",
		BalanceRaw:       decPtr(0.0002),
		TxCount:          80,
	})

	require.Len(t, res.Findings, 1)
	assert.Equal(t, "relay_wallet", res.Findings[0].Category)
	assert.Equal(t, 15, res.Score)
}

func TestAnalyzeRelayWalletSkippedWithoutBalance(t *testing.T) {
	res := analyzerAt(t).Analyze(&domain.OnChainSnapshot{
		FirstTransaction: daysAgo(365),
		TxCount:          80,
	})

	assert.Equal(t, 0, res.Score)
}

func TestAnalyzeConcentration(t *testing.T) {
	res := analyzerAt(t).Analyze(&domain.OnChainSnapshot{
		FirstTransaction:     daysAgo(365),
		TxCount:              40,
		UniqueCounterparties: intPtr(2),
	})

	require.Len(t, res.Findings, 1)
	assert.Equal(t, "concentration", res.Findings[0].Category)
	assert.Equal(t, 10, res.Score)
}

func TestAnalyzeContractRatio(t *testing.T) {
	res := analyzerAt(t).Analyze(&domain.OnChainSnapshot{
		FirstTransaction:     daysAgo(365),
		TxCount:              40,
		ContractInteractions: 36,
	})

	require.Len(t, res.Findings, 1)
	assert.Equal(t, domain.SeverityLow, res.Findings[0].Severity)
	assert.Equal(t, 5, res.Score)
}

func TestAnalyzeScoreCap(t *testing.T) {
	// Every rule at once stays at or under 100.
	res := analyzerAt(t).Analyze(&domain.OnChainSnapshot{
		FirstTransaction:     daysAgo(2),
		TxCount:              600,
		TokenTxCount:         30,
		StablecoinTxCount:    29,
		Balance:              "0.0001 ETH",
		BalanceRaw:           decPtr(0.0001),
		UniqueCounterparties: intPtr(1),
		ContractInteractions: 580,
	})

	assert.LessOrEqual(t, res.Score, 100)
	assert.GreaterOrEqual(t, len(res.Findings), 5)
}
