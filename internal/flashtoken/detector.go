// Package flashtoken detects counterfeit stablecoins ("flash USDT"): tokens
// whose name or symbol imitates a mainstream stablecoin but whose contract
// is not one of the verified official deployments. Such tokens render in a
// wallet but cannot be transferred or sold.
package flashtoken

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"amlscreen/internal/domain"
	"amlscreen/pkg/logger"
)

const source = "Flash Token Detection"

// Service runs flash-token detection for one screened address.
type Service struct {
	client      *http.Client
	holderFloor int
	logger      logger.Logger
}

// NewService wires the detector. holderFloor is the holder count below
// which a suspicious TRC-20 contract earns an extra remark; real
// stablecoins have millions of holders.
func NewService(timeout time.Duration, holderFloor int, log logger.Logger) *Service {
	return &Service{
		client:      &http.Client{Timeout: timeout},
		holderFloor: holderFloor,
		logger:      log,
	}
}

// Detect examines every token the address holds. The live listing APIs are
// preferred; when they fail the snapshot's token balances serve as a
// passive fallback. Detection degrades, it never errors.
func (s *Service) Detect(ctx context.Context, input domain.AddressInput, snap *domain.OnChainSnapshot) domain.FlashAnalysis {
	res := domain.FlashAnalysis{
		Checked:          true,
		OfficialTokens:   []domain.AssessedToken{},
		SuspiciousTokens: []domain.AssessedToken{},
	}

	tokens := s.listTokens(ctx, input)
	if tokens == nil {
		tokens = fallbackFromSnapshot(snap)
	}
	if len(tokens) == 0 {
		res.Summary = "No tokens found to verify."
		return res
	}

	for _, tok := range tokens {
		if official, ok := lookupOfficial(tok.Contract); ok {
			res.OfficialTokens = append(res.OfficialTokens, domain.AssessedToken{
				Symbol:   official.Symbol,
				Name:     tok.Name,
				Contract: tok.Contract,
				Balance:  tok.Balance,
				Verdict:  domain.TokenOfficial,
				Issuer:   official.Issuer,
			})
			continue
		}
		if looksLikeStablecoin(tok.Name, tok.Symbol) {
			symbol := tok.Symbol
			if symbol == "" {
				symbol = tok.Name
			}
			res.SuspiciousTokens = append(res.SuspiciousTokens, domain.AssessedToken{
				Symbol:   symbol,
				Name:     tok.Name,
				Contract: tok.Contract,
				Balance:  tok.Balance,
				Verdict:  domain.TokenSuspicious,
				Holders:  tok.Holders,
				Reason:   fmt.Sprintf("Token %q from contract %s is not an official deployment. Possible flash token.", symbol, shortAddr(tok.Contract)),
			})
			res.FlashTokensDetected = true
		}
	}

	if input.Chain == domain.ChainTron {
		s.verifySuspiciousHolders(ctx, res.SuspiciousTokens)
	}

	res.Findings = s.buildFindings(&res)
	res.Summary = summarize(&res)
	return res
}

// listTokens queries the live listing API for the chain. nil means the
// listing was unavailable, not that the wallet is empty.
func (s *Service) listTokens(ctx context.Context, input domain.AddressInput) []listedToken {
	var (
		tokens []listedToken
		ok     bool
	)
	switch {
	case input.Chain == domain.ChainTron:
		tokens, ok = s.fetchTronTokens(ctx, input.Address)
	case input.Chain.IsEVM():
		tokens, ok = s.fetchBlockscoutTokens(ctx, string(input.Chain), input.Address)
	default:
		return nil
	}
	if !ok {
		s.logger.Warn("token listing unavailable, using explorer fallback", map[string]interface{}{
			"chain":   input.Chain,
			"address": input.Address,
		})
		return nil
	}
	return tokens
}

// verifySuspiciousHolders enriches suspicious TRC-20 entries with holder
// counts from Tronscan. Lookup failures leave the entry as-is.
func (s *Service) verifySuspiciousHolders(ctx context.Context, suspicious []domain.AssessedToken) {
	for i := range suspicious {
		if suspicious[i].Contract == "" {
			continue
		}
		info, ok := s.verifyTronContract(ctx, suspicious[i].Contract)
		if !ok {
			continue
		}
		holders := info.Holders
		suspicious[i].Holders = &holders
		if holders < s.holderFloor {
			suspicious[i].Reason += fmt.Sprintf(" Only %d holders (real stablecoins have millions).", holders)
		}
	}
}

func (s *Service) buildFindings(res *domain.FlashAnalysis) []domain.Finding {
	var findings []domain.Finding

	if res.FlashTokensDetected {
		parts := make([]string, 0, len(res.SuspiciousTokens))
		for _, t := range res.SuspiciousTokens {
			entry := fmt.Sprintf("%s [%s]", t.Symbol, shortAddr(t.Contract))
			if t.Holders != nil {
				entry += fmt.Sprintf(" (%d holders)", *t.Holders)
			}
			parts = append(parts, entry)
		}
		findings = append(findings, domain.Finding{
			Source:   source,
			Severity: domain.SeverityCritical,
			Category: "flash_token",
			Detail:   fmt.Sprintf("FLASH TOKEN DETECTED: %s. Contract(s) not official. Fake token, not transferable or sellable.", strings.Join(parts, ", ")),
		})
		return findings
	}

	unverifiable := 0
	for _, t := range res.SuspiciousTokens {
		if t.Holders == nil {
			unverifiable++
		}
	}
	if unverifiable > 0 {
		findings = append(findings, domain.Finding{
			Source:   source,
			Severity: domain.SeverityMedium,
			Category: "flash_token_warning",
			Detail:   fmt.Sprintf("%d token(s) could not be verified. Confirm the contract on the explorer.", unverifiable),
		})
	}
	return findings
}

func summarize(res *domain.FlashAnalysis) string {
	switch {
	case res.FlashTokensDetected:
		return fmt.Sprintf("ALERT: %d fake token(s) detected. Contract(s) do not match the official issuer. Possible flash token scam, do not accept as payment.", len(res.SuspiciousTokens))
	case len(res.OfficialTokens) > 0:
		return fmt.Sprintf("%d token(s) verified as official. No flash tokens detected.", len(res.OfficialTokens))
	default:
		return "No stablecoin tokens found to verify."
	}
}

// fallbackFromSnapshot builds a token list from the explorer snapshot when
// every listing API failed.
func fallbackFromSnapshot(snap *domain.OnChainSnapshot) []listedToken {
	if snap == nil || len(snap.TokenBalances) == 0 {
		return nil
	}
	tokens := make([]listedToken, 0, len(snap.TokenBalances))
	for _, tb := range snap.TokenBalances {
		name := tb.Name
		if name == "" {
			name = tb.Symbol
		}
		tokens = append(tokens, listedToken{
			Name:     name,
			Symbol:   tb.Symbol,
			Contract: tb.Contract,
			Balance:  tb.Balance,
		})
	}
	return tokens
}

func shortAddr(addr string) string {
	if addr == "" {
		return "???"
	}
	if len(addr) <= 16 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}
