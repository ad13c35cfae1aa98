package defi

import (
	"testing"
	"time"

	"amlscreen/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	tornadoRouter = "0x722122DF12D4e14e13Ac3b6895a86e84145b6967"
	wormhole      = "0x3ee18B2214AFF97000D974cf647E7C347E8fa585"
	uniswapV2     = "0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D"
	railgun       = "0xfa7093cdd9ee6932b4eb2c9e1cce4ce7a7abfee1"
	usdtEthereum  = "0xdAC17F958D2ee523a2206206994597C13D831ec7"
	unknownAddr   = "0x1234567890abcdef1234567890abcdef12345678"
	walletAddr    = "0xAAAA567890abcdef1234567890abcdef1234AAAA"
)

func newTestClassifier() *Classifier {
	return NewClassifier(DefaultRegistry(), 5*time.Minute, 5, 5, 10)
}

func tsAt(t *testing.T, offset time.Duration) *time.Time {
	t.Helper()
	base := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	ts := base.Add(offset)
	return &ts
}

func snapshotWith(txs ...domain.SampledTx) *domain.OnChainSnapshot {
	return &domain.OnChainSnapshot{
		Chain:          domain.ChainEthereum,
		RecentTxSample: txs,
	}
}

func TestClassifyNilSnapshot(t *testing.T) {
	res := newTestClassifier().Classify(nil)

	assert.Empty(t, res.Findings)
	assert.Zero(t, res.OpaqueHops)
	assert.False(t, res.Summary.UsedMixer)
}

func TestClassifyMixerOutbound(t *testing.T) {
	res := newTestClassifier().Classify(snapshotWith(
		domain.SampledTx{Hash: "0xabc", From: walletAddr, To: tornadoRouter},
	))

	require.Len(t, res.MixerInteractions, 1)
	assert.Equal(t, "Tornado Cash Router", res.MixerInteractions[0].Name)
	assert.Equal(t, domain.DirectionOutbound, res.MixerInteractions[0].Direction)
	assert.True(t, res.Summary.UsedMixer)

	require.Len(t, res.Findings, 1)
	assert.Equal(t, domain.SeverityCritical, res.Findings[0].Severity)
	assert.Equal(t, "mixer", res.Findings[0].Category)
}

func TestClassifyMixerInboundHighTier(t *testing.T) {
	// Railgun is HIGH tier, and receiving from a mixer also adds a hop.
	res := newTestClassifier().Classify(snapshotWith(
		domain.SampledTx{Hash: "0xabc", From: railgun, To: walletAddr},
	))

	require.Len(t, res.MixerInteractions, 1)
	assert.Equal(t, domain.DirectionInbound, res.MixerInteractions[0].Direction)
	assert.Equal(t, 1, res.OpaqueHops)

	require.Len(t, res.Findings, 1)
	assert.Equal(t, domain.SeverityHigh, res.Findings[0].Severity)
}

func TestClassifyBridgeAloneIsMedium(t *testing.T) {
	res := newTestClassifier().Classify(snapshotWith(
		domain.SampledTx{Hash: "0xb1", From: walletAddr, To: wormhole},
	))

	require.Len(t, res.Findings, 1)
	assert.Equal(t, "bridge", res.Findings[0].Category)
	assert.Equal(t, domain.SeverityMedium, res.Findings[0].Severity)
	assert.Contains(t, res.Findings[0].Detail, "Wormhole")
}

func TestClassifyBridgeEscalatesWithMixer(t *testing.T) {
	res := newTestClassifier().Classify(snapshotWith(
		domain.SampledTx{Hash: "0xm1", From: walletAddr, To: tornadoRouter},
		domain.SampledTx{Hash: "0xb1", From: walletAddr, To: wormhole},
	))

	var bridge *domain.Finding
	for i := range res.Findings {
		if res.Findings[i].Category == "bridge" {
			bridge = &res.Findings[i]
		}
	}
	require.NotNil(t, bridge)
	assert.Equal(t, domain.SeverityHigh, bridge.Severity)
}

func TestClassifyPatternTwoOfThree(t *testing.T) {
	res := newTestClassifier().Classify(snapshotWith(
		domain.SampledTx{Hash: "0xb1", From: walletAddr, To: wormhole},
		domain.SampledTx{Hash: "0xd1", From: walletAddr, To: uniswapV2},
	))

	assert.True(t, res.Summary.SuspiciousPattern)
	assert.Contains(t, res.Summary.PatternDescription, "Bridge + DEX")

	var pattern *domain.Finding
	for i := range res.Findings {
		if res.Findings[i].Category == "pattern" {
			pattern = &res.Findings[i]
		}
	}
	require.NotNil(t, pattern)
	assert.Equal(t, domain.SeverityHigh, pattern.Severity)
}

func TestClassifyDexOnlyNoFindings(t *testing.T) {
	res := newTestClassifier().Classify(snapshotWith(
		domain.SampledTx{Hash: "0xd1", From: walletAddr, To: uniswapV2},
	))

	assert.True(t, res.Summary.UsedDex)
	assert.Empty(t, res.Findings)
}

func TestOpaqueHopsSkipKnownTokensAndTokenTransfers(t *testing.T) {
	res := newTestClassifier().Classify(snapshotWith(
		domain.SampledTx{Hash: "0x1", From: walletAddr, To: usdtEthereum, HasCallData: true},
		domain.SampledTx{Hash: "0x2", From: walletAddr, To: unknownAddr, TokenSymbol: "USDT"},
	))

	assert.Zero(t, res.OpaqueHops)
}

func TestOpaqueHopsThresholds(t *testing.T) {
	c := newTestClassifier()

	calls := func(n int) []domain.SampledTx {
		txs := make([]domain.SampledTx, n)
		for i := range txs {
			txs[i] = domain.SampledTx{Hash: "0xh", From: walletAddr, To: unknownAddr, HasCallData: true}
		}
		return txs
	}

	// Below the alert threshold: counted but silent.
	low := c.Classify(snapshotWith(calls(4)...))
	assert.Equal(t, 4, low.OpaqueHops)
	assert.Empty(t, low.Findings)

	// At the alert threshold: MEDIUM.
	mid := c.Classify(snapshotWith(calls(5)...))
	require.Len(t, mid.Findings, 1)
	assert.Equal(t, "hops", mid.Findings[0].Category)
	assert.Equal(t, domain.SeverityMedium, mid.Findings[0].Severity)

	// At the escalation threshold: HIGH.
	high := c.Classify(snapshotWith(calls(10)...))
	require.Len(t, high.Findings, 1)
	assert.Equal(t, domain.SeverityHigh, high.Findings[0].Severity)
}

func TestBurstDetection(t *testing.T) {
	c := newTestClassifier()

	// Six txs one minute apart: five sub-window gaps, streak 5, +2 hops.
	var txs []domain.SampledTx
	for i := 0; i < 6; i++ {
		txs = append(txs, domain.SampledTx{
			Hash:      "0xb",
			From:      unknownAddr,
			To:        walletAddr,
			Timestamp: tsAt(t, time.Duration(i)*time.Minute),
		})
	}
	res := c.Classify(snapshotWith(txs...))
	assert.Equal(t, 2, res.OpaqueHops)

	// Four txs in a burst: streak 3, below the minimum, no hops.
	short := c.Classify(snapshotWith(txs[:4]...))
	assert.Zero(t, short.OpaqueHops)
}

func TestBurstIgnoresSpreadOutTransactions(t *testing.T) {
	var txs []domain.SampledTx
	for i := 0; i < 8; i++ {
		txs = append(txs, domain.SampledTx{
			Hash:      "0xs",
			From:      unknownAddr,
			To:        walletAddr,
			Timestamp: tsAt(t, time.Duration(i)*time.Hour),
		})
	}

	res := newTestClassifier().Classify(snapshotWith(txs...))
	assert.Zero(t, res.OpaqueHops)
}

func TestRegistryLookupIsCaseInsensitive(t *testing.T) {
	res := newTestClassifier().Classify(snapshotWith(
		domain.SampledTx{Hash: "0xabc", From: walletAddr, To: "0x722122DF12D4E14E13AC3B6895A86E84145B6967"},
	))

	assert.True(t, res.Summary.UsedMixer)
}
