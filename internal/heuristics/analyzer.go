// Package heuristics derives behavioral risk flags from an on-chain
// snapshot. Rules are independent and additive; each contributes at most
// once and the total is capped at 100.
package heuristics

import (
	"fmt"
	"math"
	"time"

	"amlscreen/internal/domain"

	"github.com/shopspring/decimal"
)

const source = "On-Chain Heuristics"

// dustBalance is the native-unit floor below which a busy wallet looks like
// a pass-through relay.
var dustBalance = decimal.NewFromFloat(0.001)

// Result is the analyzer's output: triggered flags plus the capped point
// total.
type Result struct {
	Score    int
	Findings []domain.Finding
}

// Analyzer evaluates the behavioral rule set. The zero value is not usable;
// construct with New.
type Analyzer struct {
	now func() time.Time
}

func New() *Analyzer {
	return &Analyzer{now: time.Now}
}

// NewAt pins the analyzer's clock, used by tests.
func NewAt(now func() time.Time) *Analyzer {
	return &Analyzer{now: now}
}

// Analyze runs every rule against the snapshot. A nil snapshot yields an
// empty result: no data means no flags, not an error.
func (a *Analyzer) Analyze(snap *domain.OnChainSnapshot) Result {
	if snap == nil {
		return Result{}
	}

	var res Result
	points := 0

	// Wallet age: first match wins between the two bands.
	if snap.FirstTransaction != nil {
		days := a.now().Sub(*snap.FirstTransaction).Hours() / 24
		if days < 7 {
			res.Findings = append(res.Findings, domain.Finding{
				Source:   source,
				Severity: domain.SeverityHigh,
				Category: "wallet_age",
				Detail:   fmt.Sprintf("Very new wallet (%d day(s) old). High burn-after-use risk.", int(math.Round(days))),
			})
			points += 30
		} else if days < 30 {
			res.Findings = append(res.Findings, domain.Finding{
				Source:   source,
				Severity: domain.SeverityMedium,
				Category: "wallet_age",
				Detail:   fmt.Sprintf("Recent wallet (%d days old).", int(math.Round(days))),
			})
			points += 15
		}
	}

	// Velocity: transactions per day since the first transaction.
	if snap.FirstTransaction != nil && snap.TxCount > 0 {
		days := math.Max(1, a.now().Sub(*snap.FirstTransaction).Hours()/24)
		perDay := float64(snap.TxCount) / days
		if perDay > 50 {
			res.Findings = append(res.Findings, domain.Finding{
				Source:   source,
				Severity: domain.SeverityHigh,
				Category: "velocity",
				Detail:   fmt.Sprintf("~%d tx/day. Possible bot or mixer activity.", int(math.Round(perDay))),
			})
			points += 25
		} else if perDay > 20 {
			res.Findings = append(res.Findings, domain.Finding{
				Source:   source,
				Severity: domain.SeverityMedium,
				Category: "velocity",
				Detail:   fmt.Sprintf("~%d tx/day. Elevated activity.", int(math.Round(perDay))),
			})
			points += 10
		}
	}

	// Stablecoin dominance.
	if snap.TokenTxCount > 0 && snap.StablecoinTxCount > 0 {
		ratio := float64(snap.StablecoinTxCount) / float64(snap.TokenTxCount)
		if ratio > 0.9 && snap.StablecoinTxCount > 20 {
			res.Findings = append(res.Findings, domain.Finding{
				Source:   source,
				Severity: domain.SeverityMedium,
				Category: "stablecoin_ratio",
				Detail:   fmt.Sprintf("%d%% stablecoin transfers (%d txs). OTC/P2P pattern.", int(math.Round(ratio*100)), snap.StablecoinTxCount),
			})
			points += 10
		}
	}

	// Near-zero balance with heavy traffic: relay wallet.
	if snap.BalanceRaw != nil && snap.BalanceRaw.LessThan(dustBalance) && snap.TxCount > 50 {
		res.Findings = append(res.Findings, domain.Finding{
			Source:   source,
			Severity: domain.SeverityMedium,
			Category: "relay_wallet",
			Detail:   fmt.Sprintf("Near-zero balance (%s) but %d+ transactions. Possible relay wallet.", snap.Balance, snap.TxCount),
		})
		points += 15
	}

	// Counterparty concentration.
	if snap.UniqueCounterparties != nil && snap.TxCount > 20 && *snap.UniqueCounterparties < 3 {
		res.Findings = append(res.Findings, domain.Finding{
			Source:   source,
			Severity: domain.SeverityMedium,
			Category: "concentration",
			Detail:   fmt.Sprintf("Only %d counterpart(ies) across %d transactions. High concentration.", *snap.UniqueCounterparties, snap.TxCount),
		})
		points += 10
	}

	// Contract interaction ratio.
	if snap.ContractInteractions > 0 && snap.TxCount > 0 {
		ratio := float64(snap.ContractInteractions) / float64(snap.TxCount)
		if ratio > 0.8 && snap.ContractInteractions > 30 {
			res.Findings = append(res.Findings, domain.Finding{
				Source:   source,
				Severity: domain.SeverityLow,
				Category: "contract_ratio",
				Detail:   fmt.Sprintf("%d%% contract interactions. DeFi power user.", int(math.Round(ratio*100))),
			})
			points += 5
		}
	}

	if points > 100 {
		points = 100
	}
	res.Score = points
	return res
}
