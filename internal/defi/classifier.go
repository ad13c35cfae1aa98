// Package defi classifies an address's sampled transactions against known
// mixer, bridge and DEX contracts and estimates how many opaque hops the
// funds took on the way.
package defi

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"amlscreen/internal/domain"
)

const source = "DeFi Analysis"

// Classifier matches sampled transactions against an injected registry.
type Classifier struct {
	registry *Registry

	burstWindow    time.Duration
	burstMinStreak int
	hopAlert       int
	hopEscalate    int
}

// NewClassifier wires a classifier with its registry and thresholds. A
// zero burstWindow or burstMinStreak disables burst detection.
func NewClassifier(registry *Registry, burstWindow time.Duration, burstMinStreak, hopAlert, hopEscalate int) *Classifier {
	return &Classifier{
		registry:       registry,
		burstWindow:    burstWindow,
		burstMinStreak: burstMinStreak,
		hopAlert:       hopAlert,
		hopEscalate:    hopEscalate,
	}
}

// Classify runs the full analysis over a snapshot's transaction sample.
// A nil snapshot or an empty sample yields a clean result, never an error.
func (c *Classifier) Classify(snap *domain.OnChainSnapshot) domain.DeFiAnalysis {
	res := domain.DeFiAnalysis{
		MixerInteractions:  []domain.ProtocolInteraction{},
		BridgeInteractions: []domain.ProtocolInteraction{},
		DexInteractions:    []domain.ProtocolInteraction{},
	}
	if snap == nil || len(snap.RecentTxSample) == 0 {
		return res
	}
	txs := snap.RecentTxSample

	for _, tx := range txs {
		if tx.To == "" {
			continue
		}
		if p, dir, ok := c.match(c.registry.mixer, tx); ok {
			res.MixerInteractions = append(res.MixerInteractions, domain.ProtocolInteraction{
				Name: p.Name, RiskTier: p.RiskTier, Hash: tx.Hash, Direction: dir, Timestamp: tx.Timestamp,
			})
			res.Summary.UsedMixer = true
		}
		if p, dir, ok := c.match(c.registry.bridge, tx); ok {
			res.BridgeInteractions = append(res.BridgeInteractions, domain.ProtocolInteraction{
				Name: p.Name, Hash: tx.Hash, Direction: dir, Timestamp: tx.Timestamp,
			})
			res.Summary.UsedBridge = true
		}
		if p, _, ok := c.match(c.registry.dex, tx); ok {
			res.DexInteractions = append(res.DexInteractions, domain.ProtocolInteraction{
				Name: p.Name, Hash: tx.Hash, Timestamp: tx.Timestamp,
			})
			res.Summary.UsedDex = true
		}
	}

	res.OpaqueHops = c.countOpaqueHops(txs)

	var used []string
	if res.Summary.UsedMixer {
		used = append(used, "Mixer")
	}
	if res.Summary.UsedBridge {
		used = append(used, "Bridge")
	}
	if res.Summary.UsedDex {
		used = append(used, "DEX")
	}
	if len(used) >= 2 {
		res.Summary.SuspiciousPattern = true
		res.Summary.PatternDescription = fmt.Sprintf("Funds passed through %s. Origin-obfuscation pattern.", strings.Join(used, " + "))
	}

	res.Findings = c.buildFindings(&res)
	return res
}

// match checks a transaction's to then from side against one address book.
// OUT means the screened address sent to the protocol.
func (c *Classifier) match(lookup func(string) (Protocol, bool), tx domain.SampledTx) (Protocol, domain.Direction, bool) {
	if p, ok := lookup(tx.To); ok {
		return p, domain.DirectionOutbound, true
	}
	if tx.From != "" {
		if p, ok := lookup(tx.From); ok {
			return p, domain.DirectionInbound, true
		}
	}
	return Protocol{}, "", false
}

// countOpaqueHops estimates obfuscation depth. Token transfers and calls to
// catalogued protocols do not count; only contract calls to unknown
// addresses, funds arriving from mixers or bridges, and sustained rapid
// bursts do.
func (c *Classifier) countOpaqueHops(txs []domain.SampledTx) int {
	hops := 0
	for _, tx := range txs {
		if tx.To != "" && c.registry.knownToken(tx.To) {
			continue
		}
		if tx.From != "" && c.registry.knownToken(tx.From) {
			continue
		}
		if tx.TokenSymbol != "" {
			continue
		}

		if tx.HasCallData && tx.To != "" {
			_, isDex := c.registry.dex(tx.To)
			_, isBridge := c.registry.bridge(tx.To)
			_, isMixer := c.registry.mixer(tx.To)
			if !isDex && !isBridge && !isMixer {
				hops++
			}
		}
		if tx.From != "" {
			if _, ok := c.registry.bridge(tx.From); ok {
				hops++
			}
			if _, ok := c.registry.mixer(tx.From); ok {
				hops++
			}
		}
	}

	if streak := c.longestBurst(txs); c.burstMinStreak > 0 && streak >= c.burstMinStreak {
		hops += streak / 2
	}
	return hops
}

// longestBurst returns the longest run of consecutive inter-transaction
// gaps shorter than the burst window, over timestamps sorted ascending.
func (c *Classifier) longestBurst(txs []domain.SampledTx) int {
	if c.burstWindow <= 0 {
		return 0
	}
	var times []time.Time
	for _, tx := range txs {
		if tx.Timestamp != nil {
			times = append(times, *tx.Timestamp)
		}
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

	longest, run := 0, 0
	for i := 1; i < len(times); i++ {
		if times[i].Sub(times[i-1]) < c.burstWindow {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}
	return longest
}

func (c *Classifier) buildFindings(res *domain.DeFiAnalysis) []domain.Finding {
	var findings []domain.Finding

	if len(res.MixerInteractions) > 0 {
		severity := domain.SeverityHigh
		for _, m := range res.MixerInteractions {
			if m.RiskTier == domain.SeverityCritical {
				severity = domain.SeverityCritical
				break
			}
		}
		findings = append(findings, domain.Finding{
			Source:   source,
			Severity: severity,
			Category: "mixer",
			Detail:   fmt.Sprintf("Mixer detected: %s. %d tx(s).", strings.Join(uniqueNames(res.MixerInteractions), ", "), len(res.MixerInteractions)),
		})
	}
	if len(res.BridgeInteractions) > 0 {
		severity := domain.SeverityMedium
		if res.Summary.UsedMixer {
			severity = domain.SeverityHigh
		}
		findings = append(findings, domain.Finding{
			Source:   source,
			Severity: severity,
			Category: "bridge",
			Detail:   fmt.Sprintf("Cross-chain bridge: %s.", strings.Join(uniqueNames(res.BridgeInteractions), ", ")),
		})
	}
	if res.Summary.SuspiciousPattern {
		findings = append(findings, domain.Finding{
			Source:   source,
			Severity: domain.SeverityHigh,
			Category: "pattern",
			Detail:   res.Summary.PatternDescription,
		})
	}
	if res.OpaqueHops >= c.hopAlert {
		severity := domain.SeverityMedium
		if res.OpaqueHops >= c.hopEscalate {
			severity = domain.SeverityHigh
		}
		findings = append(findings, domain.Finding{
			Source:   source,
			Severity: severity,
			Category: "hops",
			Detail:   fmt.Sprintf("%d opaque hop(s) detected.", res.OpaqueHops),
		})
	}
	return findings
}

// uniqueNames deduplicates protocol names preserving first-seen order.
func uniqueNames(interactions []domain.ProtocolInteraction) []string {
	seen := make(map[string]struct{}, len(interactions))
	var names []string
	for _, in := range interactions {
		if _, ok := seen[in.Name]; ok {
			continue
		}
		seen[in.Name] = struct{}{}
		names = append(names, in.Name)
	}
	return names
}
