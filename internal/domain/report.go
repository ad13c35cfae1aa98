package domain

import "time"

// SanctionsSource records the outcome of the OFAC/SDN branch.
type SanctionsSource struct {
	Enabled bool   `json:"enabled"`
	Match   bool   `json:"match"`
	Detail  string `json:"detail,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ExplorerSource records the outcome of the chain-explorer branch.
type ExplorerSource struct {
	Enabled bool             `json:"enabled"`
	Error   string           `json:"error,omitempty"`
	Data    *OnChainSnapshot `json:"data,omitempty"`
}

// HeuristicsSource records the derived behavioral analysis.
type HeuristicsSource struct {
	Enabled bool      `json:"enabled"`
	Error   string    `json:"error,omitempty"`
	Score   int       `json:"score"`
	Flags   []Finding `json:"flags,omitempty"`
}

// ScamReport is one abuse report returned by the scam database.
type ScamReport struct {
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// ScamDBSource records the outcome of the scam-report lookup.
type ScamDBSource struct {
	Enabled bool         `json:"enabled"`
	Error   string       `json:"error,omitempty"`
	Hits    int          `json:"hits"`
	Reports []ScamReport `json:"reports,omitempty"`
}

// RiskScorerSource records the outcome of the third-party risk scorer.
type RiskScorerSource struct {
	Enabled bool     `json:"enabled"`
	Error   string   `json:"error,omitempty"`
	Score   *int     `json:"score,omitempty"`
	Labels  []string `json:"labels,omitempty"`
}

// Sources collects every provider branch outcome. Each branch owns exactly
// one slot; the concurrent fan-out never writes two branches to the same one.
type Sources struct {
	Sanctions  SanctionsSource  `json:"sanctions"`
	Explorer   ExplorerSource   `json:"explorer"`
	Heuristics HeuristicsSource `json:"heuristics"`
	ScamDB     ScamDBSource     `json:"scamdb"`
	RiskScorer RiskScorerSource `json:"risk_scorer"`
}

// Report is the complete output contract of one screening. Collaborators may
// render, persist or forward it but never alter the decision.
type Report struct {
	ID            string         `json:"id"`
	Timestamp     time.Time      `json:"timestamp"`
	Input         AddressInput   `json:"input"`
	Decision      Decision       `json:"decision"`
	Findings      []Finding      `json:"findings"`
	DeFiAnalysis  *DeFiAnalysis  `json:"defi_analysis,omitempty"`
	FlashAnalysis *FlashAnalysis `json:"flash_analysis,omitempty"`
	Sources       Sources        `json:"sources"`
	Disclaimer    string         `json:"disclaimer"`
}

// Disclaimer is attached to every report.
const Disclaimer = "Automated screening. False positives/negatives are possible. " +
	"Collect supporting evidence (KYC, invoice, contract, source tx hashes) " +
	"before a final compliance decision."
