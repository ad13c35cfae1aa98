// Package screening orchestrates one wallet screening: validate the input,
// fan the independent provider lookups out concurrently, run the dependent
// analyzers over the explorer snapshot, then consolidate every finding into
// a single decision.
package screening

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"amlscreen/internal/address"
	"amlscreen/internal/domain"
	"amlscreen/internal/heuristics"
	"amlscreen/internal/riskscore"
	"amlscreen/internal/sanctions"
	"amlscreen/internal/scamdb"
	"amlscreen/pkg/logger"
)

// SanctionsChecker matches an address against the sanctioned-address set.
type SanctionsChecker interface {
	Check(input domain.AddressInput) sanctions.Match
}

// ExplorerFetcher gathers the normalized on-chain snapshot.
type ExplorerFetcher interface {
	Fetch(ctx context.Context, chain domain.Chain, addr string) (*domain.OnChainSnapshot, error)
}

// ScamChecker queries the community scam-report database.
type ScamChecker interface {
	Enabled() bool
	Check(ctx context.Context, input domain.AddressInput) scamdb.Result
}

// RiskScorer queries the third-party address risk scorer.
type RiskScorer interface {
	Enabled() bool
	Check(ctx context.Context, input domain.AddressInput) riskscore.Result
}

// HeuristicAnalyzer derives behavioral flags from the snapshot.
type HeuristicAnalyzer interface {
	Analyze(snap *domain.OnChainSnapshot) heuristics.Result
}

// DeFiClassifier matches the transaction sample against protocol registries.
type DeFiClassifier interface {
	Classify(snap *domain.OnChainSnapshot) domain.DeFiAnalysis
}

// FlashDetector checks wallet tokens against the official contract table.
type FlashDetector interface {
	Detect(ctx context.Context, input domain.AddressInput, snap *domain.OnChainSnapshot) domain.FlashAnalysis
}

// ReportCache stores finished reports keyed by chain and address.
type ReportCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

// ProgressFunc receives pipeline stage notifications during a screening.
// Used by the live-progress stream; may be nil.
type ProgressFunc func(stage, detail string)

// Service runs the screening pipeline.
type Service struct {
	sanctions SanctionsChecker
	explorer  ExplorerFetcher
	scamDB    ScamChecker
	riskScore RiskScorer
	heuristic HeuristicAnalyzer
	defi      DeFiClassifier
	flash     FlashDetector
	cache     ReportCache
	cacheTTL  time.Duration
	logger    logger.Logger
	now       func() time.Time
}

// NewService wires the pipeline. cache may be nil to disable report caching.
func NewService(
	sanctionsChecker SanctionsChecker,
	explorerFetcher ExplorerFetcher,
	scamChecker ScamChecker,
	riskScorer RiskScorer,
	heuristicAnalyzer HeuristicAnalyzer,
	defiClassifier DeFiClassifier,
	flashDetector FlashDetector,
	cache ReportCache,
	cacheTTL time.Duration,
	log logger.Logger,
) *Service {
	return &Service{
		sanctions: sanctionsChecker,
		explorer:  explorerFetcher,
		scamDB:    scamChecker,
		riskScore: riskScorer,
		heuristic: heuristicAnalyzer,
		defi:      defiClassifier,
		flash:     flashDetector,
		cache:     cache,
		cacheTTL:  cacheTTL,
		logger:    log,
		now:       time.Now,
	}
}

// Screen validates the input and runs the full pipeline. Input errors fail
// fast before any lookup; provider failures degrade their branch and never
// abort the screening.
func (s *Service) Screen(ctx context.Context, input domain.AddressInput) (*domain.Report, error) {
	return s.ScreenWithProgress(ctx, input, nil)
}

// ScreenWithProgress is Screen with per-stage notifications.
func (s *Service) ScreenWithProgress(ctx context.Context, input domain.AddressInput, notify ProgressFunc) (*domain.Report, error) {
	if err := address.Validate(input.Chain, input.Address); err != nil {
		return nil, err
	}

	if cached := s.cachedReport(ctx, input); cached != nil {
		s.logger.Info("screening served from cache", map[string]interface{}{
			"chain":   input.Chain,
			"address": input.Address,
			"report":  cached.ID,
		})
		return cached, nil
	}

	started := s.now().UTC()
	report := &domain.Report{
		ID:         newReportID(started),
		Timestamp:  started,
		Input:      input,
		Disclaimer: domain.Disclaimer,
	}

	s.progress(notify, "started", "screening initiated")
	s.gather(ctx, input, report, notify)
	s.analyze(ctx, input, report, notify)

	report.Decision = consolidate(report.Findings, report.DeFiAnalysis, report.FlashAnalysis)
	s.progress(notify, "decision", string(report.Decision.Recommendation))

	s.logger.Info("screening completed", map[string]interface{}{
		"report":         report.ID,
		"chain":          input.Chain,
		"address":        input.Address,
		"level":          report.Decision.Level,
		"score":          report.Decision.Score,
		"recommendation": report.Decision.Recommendation,
		"findings":       len(report.Findings),
	})

	s.storeReport(ctx, input, report)
	return report, nil
}

// gather runs the four independent provider lookups concurrently. Each
// branch writes only to its own source slot and finding slice; the join
// assembles findings in a fixed order so the report is deterministic.
func (s *Service) gather(ctx context.Context, input domain.AddressInput, report *domain.Report, notify ProgressFunc) {
	var (
		wg                sync.WaitGroup
		sanctionsFindings []domain.Finding
		scamFindings      []domain.Finding
		scoreFindings     []domain.Finding
	)

	wg.Add(4)

	go func() {
		defer wg.Done()
		match := s.sanctions.Check(input)
		report.Sources.Sanctions = domain.SanctionsSource{Enabled: true, Match: match.Hit, Detail: match.Detail}
		if match.Hit {
			sanctionsFindings = append(sanctionsFindings, domain.Finding{
				Source:   "OFAC/SDN",
				Severity: domain.SeverityCritical,
				Category: "sanctions",
				Detail:   strings.TrimSpace("Address appears on the OFAC sanctions list. " + match.Detail),
			})
		}
		s.progress(notify, "sanctions", sourceOutcome(match.Hit))
	}()

	go func() {
		defer wg.Done()
		snap, err := s.explorer.Fetch(ctx, input.Chain, input.Address)
		if err != nil {
			report.Sources.Explorer = domain.ExplorerSource{Enabled: false, Error: err.Error()}
			s.progress(notify, "explorer", "unavailable")
			return
		}
		report.Sources.Explorer = domain.ExplorerSource{Enabled: true, Data: snap}
		s.progress(notify, "explorer", fmt.Sprintf("%d transactions", snap.TxCount))
	}()

	go func() {
		defer wg.Done()
		if !s.scamDB.Enabled() {
			report.Sources.ScamDB = domain.ScamDBSource{Enabled: false}
			s.progress(notify, "scamdb", "not configured")
			return
		}
		res := s.scamDB.Check(ctx, input)
		src := domain.ScamDBSource{Enabled: true, Error: res.Error, Hits: len(res.Hits)}
		if len(res.Hits) > 5 {
			src.Reports = res.Hits[:5]
		} else {
			src.Reports = res.Hits
		}
		report.Sources.ScamDB = src
		if len(res.Hits) > 0 {
			severity := domain.SeverityMedium
			if len(res.Hits) >= 3 {
				severity = domain.SeverityHigh
			}
			scamFindings = append(scamFindings, domain.Finding{
				Source:   "Chainabuse",
				Severity: severity,
				Category: "scam_reports",
				Detail:   fmt.Sprintf("%d scam/abuse report(s) found.", len(res.Hits)),
			})
		}
		s.progress(notify, "scamdb", fmt.Sprintf("%d hit(s)", len(res.Hits)))
	}()

	go func() {
		defer wg.Done()
		if !s.riskScore.Enabled() {
			report.Sources.RiskScorer = domain.RiskScorerSource{Enabled: false}
			s.progress(notify, "risk_scorer", "not configured")
			return
		}
		res := s.riskScore.Check(ctx, input)
		report.Sources.RiskScorer = domain.RiskScorerSource{Enabled: true, Error: res.Error, Score: res.Score, Labels: res.Labels}
		if res.Score != nil {
			switch {
			case *res.Score >= 70:
				labels := "N/A"
				if len(res.Labels) > 0 {
					labels = strings.Join(res.Labels, ", ")
				}
				scoreFindings = append(scoreFindings, domain.Finding{
					Source:   "Blocksec/MetaSleuth",
					Severity: domain.SeverityHigh,
					Category: "third_party_score",
					Detail:   fmt.Sprintf("Risk score %d/100. Labels: %s", *res.Score, labels),
				})
			case *res.Score >= 40:
				scoreFindings = append(scoreFindings, domain.Finding{
					Source:   "Blocksec/MetaSleuth",
					Severity: domain.SeverityMedium,
					Category: "third_party_score",
					Detail:   fmt.Sprintf("Moderate risk score: %d/100.", *res.Score),
				})
			}
		}
		s.progress(notify, "risk_scorer", "done")
	}()

	wg.Wait()

	report.Findings = append(report.Findings, sanctionsFindings...)
	report.Findings = append(report.Findings, scamFindings...)
	report.Findings = append(report.Findings, scoreFindings...)
}

// analyze runs the snapshot-dependent steps sequentially after the fan-out
// joined. A missing snapshot degrades heuristics to "no data" and leaves
// DeFi analysis empty; flash detection still runs with its own listing APIs.
func (s *Service) analyze(ctx context.Context, input domain.AddressInput, report *domain.Report, notify ProgressFunc) {
	snapshot := report.Sources.Explorer.Data

	if snapshot == nil {
		report.Sources.Heuristics = domain.HeuristicsSource{Enabled: false, Error: "no on-chain data"}
	} else {
		res := s.heuristic.Analyze(snapshot)
		report.Sources.Heuristics = domain.HeuristicsSource{Enabled: true, Score: res.Score, Flags: res.Findings}
		report.Findings = append(report.Findings, res.Findings...)
	}
	s.progress(notify, "heuristics", "done")

	defiRes := s.defi.Classify(snapshot)
	report.DeFiAnalysis = &defiRes
	report.Findings = append(report.Findings, defiRes.Findings...)
	s.progress(notify, "defi", defiRes.Summary.PatternDescription)

	flashRes := s.flash.Detect(ctx, input, snapshot)
	report.FlashAnalysis = &flashRes
	report.Findings = append(report.Findings, flashRes.Findings...)
	s.progress(notify, "flash_token", flashRes.Summary)
}

func (s *Service) cachedReport(ctx context.Context, input domain.AddressInput) *domain.Report {
	if s.cache == nil {
		return nil
	}
	var report domain.Report
	if err := s.cache.Get(ctx, cacheKey(input), &report); err != nil {
		return nil
	}
	return &report
}

func (s *Service) storeReport(ctx context.Context, input domain.AddressInput, report *domain.Report) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	if err := s.cache.Set(ctx, cacheKey(input), report, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache report", map[string]interface{}{
			"report": report.ID,
			"error":  err.Error(),
		})
	}
}

func (s *Service) progress(notify ProgressFunc, stage, detail string) {
	if notify != nil {
		notify(stage, detail)
	}
}

func cacheKey(input domain.AddressInput) string {
	return fmt.Sprintf("screen:%s:%s", input.Chain, strings.ToLower(input.Address))
}

func sourceOutcome(hit bool) string {
	if hit {
		return "match"
	}
	return "clear"
}
