// Package domain holds the data contracts shared across the screening
// pipeline. Everything here is produced once per screening and read-only
// afterwards.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Chain identifies a supported blockchain family.
type Chain string

const (
	ChainEthereum Chain = "ethereum"
	ChainBSC      Chain = "bsc"
	ChainPolygon  Chain = "polygon"
	ChainBitcoin  Chain = "bitcoin"
	ChainTron     Chain = "tron"
)

// SupportedChains lists every chain the screener accepts, in display order.
var SupportedChains = []Chain{ChainEthereum, ChainBSC, ChainPolygon, ChainBitcoin, ChainTron}

// IsEVM reports whether the chain uses EVM-style 0x addresses.
func (c Chain) IsEVM() bool {
	return c == ChainEthereum || c == ChainBSC || c == ChainPolygon
}

// NativeUnit returns the display unit of the chain's native asset.
func (c Chain) NativeUnit() string {
	switch c {
	case ChainBSC:
		return "BNB"
	case ChainPolygon:
		return "MATIC"
	case ChainBitcoin:
		return "BTC"
	case ChainTron:
		return "TRX"
	default:
		return "ETH"
	}
}

// Severity grades a finding. Assigned once at creation by the component that
// detected it and never mutated downstream.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Rank maps a severity to an ordinal for comparisons.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// Finding is the atomic unit the consolidator reasons over.
type Finding struct {
	Source   string   `json:"source"`
	Severity Severity `json:"severity"`
	Category string   `json:"category,omitempty"`
	Detail   string   `json:"detail"`
}

// AddressInput is the validated (chain, address) pair for one screening.
type AddressInput struct {
	Chain   Chain  `json:"chain"`
	Address string `json:"address"`
}

// SampledTx is one entry of the recent-transaction sample used as the
// substrate for DeFi and heuristic analysis.
type SampledTx struct {
	Hash        string     `json:"hash"`
	From        string     `json:"from,omitempty"`
	To          string     `json:"to,omitempty"`
	Value       string     `json:"value,omitempty"`
	Timestamp   *time.Time `json:"timestamp,omitempty"`
	TokenSymbol string     `json:"token_symbol,omitempty"`
	HasCallData bool       `json:"has_call_data,omitempty"`
}

// TokenBalance is a token position reported by an explorer, kept as the
// fallback input for flash-token detection.
type TokenBalance struct {
	Symbol   string          `json:"symbol"`
	Name     string          `json:"name,omitempty"`
	Contract string          `json:"contract,omitempty"`
	Balance  decimal.Decimal `json:"balance"`
}

// OnChainSnapshot is the normalized per-address view gathered from one
// explorer family. Fields that an explorer cannot supply stay nil/zero and
// downstream analyzers must treat them as "data unavailable".
type OnChainSnapshot struct {
	Provider             string           `json:"provider"`
	Chain                Chain            `json:"chain"`
	Balance              string           `json:"balance"`
	BalanceRaw           *decimal.Decimal `json:"balance_raw,omitempty"`
	TxCount              int              `json:"tx_count"`
	TokenTxCount         int              `json:"token_tx_count"`
	StablecoinTxCount    int              `json:"stablecoin_tx_count"`
	FirstTransaction     *time.Time       `json:"first_transaction,omitempty"`
	LastTransaction      *time.Time       `json:"last_transaction,omitempty"`
	UniqueCounterparties *int             `json:"unique_counterparties,omitempty"`
	ContractInteractions int              `json:"contract_interactions"`
	RecentTxSample       []SampledTx      `json:"recent_tx_sample"`
	TokenBalances        []TokenBalance   `json:"token_balances,omitempty"`
}

// Recommendation is the terminal advice attached to a decision.
type Recommendation string

const (
	RecommendationApprove Recommendation = "APPROVE"
	RecommendationReview  Recommendation = "REVIEW"
	RecommendationBlock   Recommendation = "BLOCK"
)

// Decision is the consolidated verdict. Score and level are always consistent
// with the finding set; no partial decisions exist.
type Decision struct {
	Level          Severity       `json:"level"`
	Score          int            `json:"score"`
	Recommendation Recommendation `json:"recommendation"`
	Summary        string         `json:"summary"`
}

// Direction tags which side of a transaction matched a protocol registry.
type Direction string

const (
	DirectionOutbound Direction = "OUT"
	DirectionInbound  Direction = "IN"
)

// ProtocolInteraction records one sampled transaction touching a known
// mixer, bridge or DEX.
type ProtocolInteraction struct {
	Name      string     `json:"name"`
	RiskTier  Severity   `json:"risk_tier,omitempty"`
	Hash      string     `json:"hash,omitempty"`
	Direction Direction  `json:"direction,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// DeFiSummary is the condensed view of protocol usage for one address.
type DeFiSummary struct {
	UsedMixer          bool   `json:"used_mixer"`
	UsedBridge         bool   `json:"used_bridge"`
	UsedDex            bool   `json:"used_dex"`
	SuspiciousPattern  bool   `json:"suspicious_pattern"`
	PatternDescription string `json:"pattern_description,omitempty"`
}

// DeFiAnalysis is the classifier's full output.
type DeFiAnalysis struct {
	MixerInteractions  []ProtocolInteraction `json:"mixer_interactions"`
	BridgeInteractions []ProtocolInteraction `json:"bridge_interactions"`
	DexInteractions    []ProtocolInteraction `json:"dex_interactions"`
	OpaqueHops         int                   `json:"opaque_hops"`
	Summary            DeFiSummary           `json:"summary"`
	Findings           []Finding             `json:"findings"`
}

// TokenVerdict classifies one held token.
type TokenVerdict string

const (
	TokenOfficial   TokenVerdict = "OFFICIAL"
	TokenSuspicious TokenVerdict = "SUSPICIOUS"
)

// AssessedToken is one token examined by the flash detector.
type AssessedToken struct {
	Symbol   string          `json:"symbol"`
	Name     string          `json:"name,omitempty"`
	Contract string          `json:"contract"`
	Balance  decimal.Decimal `json:"balance"`
	Verdict  TokenVerdict    `json:"verdict"`
	Issuer   string          `json:"issuer,omitempty"`
	Holders  *int            `json:"holders,omitempty"`
	Reason   string          `json:"reason,omitempty"`
}

// FlashAnalysis is the flash-token detector's full output.
type FlashAnalysis struct {
	Checked             bool            `json:"checked"`
	FlashTokensDetected bool            `json:"flash_tokens_detected"`
	OfficialTokens      []AssessedToken `json:"official_tokens"`
	SuspiciousTokens    []AssessedToken `json:"suspicious_tokens"`
	Summary             string          `json:"summary"`
	Findings            []Finding       `json:"findings"`
}
