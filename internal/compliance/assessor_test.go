package compliance

import (
	"testing"
	"time"

	"amlscreen/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseReport(level domain.Severity, score int, rec domain.Recommendation) *domain.Report {
	return &domain.Report{
		ID:        "AML-TEST01-ABC123",
		Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Input:     domain.AddressInput{Chain: domain.ChainEthereum, Address: "0xabc"},
		Decision:  domain.Decision{Level: level, Score: score, Recommendation: rec},
		Sources: domain.Sources{
			Sanctions:  domain.SanctionsSource{Enabled: true},
			Explorer:   domain.ExplorerSource{Enabled: true, Data: &domain.OnChainSnapshot{TxCount: 100, Balance: "1.5 ETH"}},
			Heuristics: domain.HeuristicsSource{Enabled: true},
			ScamDB:     domain.ScamDBSource{Enabled: true},
			RiskScorer: domain.RiskScorerSource{Enabled: true},
		},
		DeFiAnalysis:  &domain.DeFiAnalysis{},
		FlashAnalysis: &domain.FlashAnalysis{Checked: true},
	}
}

func TestAssessKYCTiers(t *testing.T) {
	a := NewAssessor()

	for _, tc := range []struct {
		level  domain.Severity
		status domain.KYCStatus
	}{
		{domain.SeverityLow, domain.KYCStatusStandard},
		{domain.SeverityMedium, domain.KYCStatusCDDPlus},
		{domain.SeverityHigh, domain.KYCStatusMandatoryEDD},
		{domain.SeverityCritical, domain.KYCStatusMandatoryBlock},
	} {
		t.Run(string(tc.level), func(t *testing.T) {
			res := a.Assess(baseReport(tc.level, 50, domain.RecommendationReview))
			assert.Equal(t, tc.status, res.KYC.Status)
			assert.NotEmpty(t, res.KYC.Actions)
		})
	}
}

func TestAssessMixerPrependsActionAndDocuments(t *testing.T) {
	report := baseReport(domain.SeverityHigh, 85, domain.RecommendationBlock)
	report.DeFiAnalysis.Summary.UsedMixer = true
	report.DeFiAnalysis.Summary.UsedBridge = true

	res := NewAssessor().Assess(report)

	require.NotEmpty(t, res.KYC.Actions)
	assert.Contains(t, res.KYC.Actions[0], "MIXER DETECTED")
	assert.Contains(t, res.KYC.Actions[len(res.KYC.Actions)-1], "cross-chain trace")

	var mixerDoc bool
	for _, d := range res.KYC.DocumentsRequired {
		if d.Name == "Written justification for mixer usage" {
			mixerDoc = d.Required
		}
	}
	assert.True(t, mixerDoc)
}

func TestAssessDocumentChecklistScalesWithTier(t *testing.T) {
	a := NewAssessor()

	low := a.Assess(baseReport(domain.SeverityLow, 10, domain.RecommendationApprove))
	assert.Len(t, low.KYC.DocumentsRequired, 2)

	medium := a.Assess(baseReport(domain.SeverityMedium, 40, domain.RecommendationReview))
	assert.Len(t, medium.KYC.DocumentsRequired, 4)

	high := a.Assess(baseReport(domain.SeverityHigh, 70, domain.RecommendationReview))
	assert.Len(t, high.KYC.DocumentsRequired, 8)
}

func TestAssessCoverageBands(t *testing.T) {
	a := NewAssessor()

	full := a.Assess(baseReport(domain.SeverityLow, 10, domain.RecommendationApprove))
	assert.Equal(t, 100, full.AMLKYT.CoveragePercent)
	assert.Equal(t, domain.CoverageActive, full.AMLKYT.Status)

	partial := baseReport(domain.SeverityLow, 10, domain.RecommendationApprove)
	partial.Sources.ScamDB.Enabled = false
	partial.Sources.RiskScorer.Enabled = false
	res := a.Assess(partial)
	assert.Equal(t, 67, res.AMLKYT.CoveragePercent)
	assert.Equal(t, domain.CoveragePartial, res.AMLKYT.Status)
	assert.Contains(t, res.AMLKYT.Recommendation, "Recommend enabling")
	assert.Len(t, res.AMLKYT.InactiveProviders, 2)

	bare := baseReport(domain.SeverityLow, 10, domain.RecommendationApprove)
	bare.Sources = domain.Sources{Sanctions: domain.SanctionsSource{Enabled: true}}
	bare.DeFiAnalysis = nil
	assert.Equal(t, domain.CoverageInsufficient, a.Assess(bare).AMLKYT.Status)
}

func TestAssessRegulatoryObligations(t *testing.T) {
	a := NewAssessor()

	low := a.Assess(baseReport(domain.SeverityLow, 10, domain.RecommendationApprove))
	require.Len(t, low.RegulatoryCooperation.Obligations, 1)
	assert.Equal(t, "STANDARD", low.RegulatoryCooperation.Status)

	high := a.Assess(baseReport(domain.SeverityHigh, 70, domain.RecommendationReview))
	assert.Len(t, high.RegulatoryCooperation.Obligations, 3)
	assert.Equal(t, "ENHANCED_MONITORING", high.RegulatoryCooperation.Status)

	critical := baseReport(domain.SeverityCritical, 100, domain.RecommendationBlock)
	critical.Findings = []domain.Finding{
		{Source: "DeFi Analysis", Severity: domain.SeverityCritical, Category: "mixer", Detail: "Mixer detected"},
	}
	res := a.Assess(critical)
	assert.Equal(t, "SAR_REQUIRED", res.RegulatoryCooperation.Status)
	require.Len(t, res.RegulatoryCooperation.Obligations, 6)

	var sdnCheck bool
	for _, o := range res.RegulatoryCooperation.Obligations {
		if o.Regulation == "OFAC Compliance" {
			sdnCheck = true
		}
	}
	assert.True(t, sdnCheck)
}

func TestAssessAuditTrailStructure(t *testing.T) {
	report := baseReport(domain.SeverityMedium, 55, domain.RecommendationReview)
	report.Findings = []domain.Finding{{Source: "x", Severity: domain.SeverityMedium}}

	res := NewAssessor().Assess(report)
	trail := res.AuditTrail

	require.NotEmpty(t, trail.Entries)
	assert.Equal(t, "SCREENING_INITIATED", trail.Entries[0].Action)
	assert.Equal(t, "INTEGRITY_HASH", trail.Entries[len(trail.Entries)-1].Action)
	assert.True(t, trail.Immutable)
	assert.Len(t, trail.ReportHash, 16)

	var actions []string
	for _, e := range trail.Entries {
		actions = append(actions, e.Action)
		assert.Equal(t, report.Timestamp, e.Timestamp)
		assert.Equal(t, "SYSTEM", e.Actor)
	}
	assert.Contains(t, actions, "SOURCE_QUERIED")
	assert.Contains(t, actions, "DEFI_ANALYSIS")
	assert.Contains(t, actions, "RISK_CALCULATED")
	assert.Contains(t, actions, "REPORT_GENERATED")
}

func TestAssessAuditTrailHashDeterministic(t *testing.T) {
	report := baseReport(domain.SeverityLow, 10, domain.RecommendationApprove)

	a := NewAssessor()
	first := a.Assess(report).AuditTrail.ReportHash
	second := a.Assess(report).AuditTrail.ReportHash
	assert.Equal(t, first, second)

	report.Decision.Score = 11
	assert.NotEqual(t, first, a.Assess(report).AuditTrail.ReportHash)
}

func TestAssessTransparencyFloor(t *testing.T) {
	// Mixer plus bridge plus six hops on a three-transaction wallet bottoms
	// out at zero.
	report := baseReport(domain.SeverityCritical, 100, domain.RecommendationBlock)
	report.Sources.Explorer.Data = &domain.OnChainSnapshot{TxCount: 3}
	report.DeFiAnalysis = &domain.DeFiAnalysis{
		OpaqueHops: 6,
		Summary:    domain.DeFiSummary{UsedMixer: true, UsedBridge: true},
	}

	res := NewAssessor().Assess(report)

	assert.Equal(t, 0, res.ProofOfReserves.Score)
	assert.Equal(t, domain.TransparencyUntraceable, res.ProofOfReserves.Status)
	assert.Len(t, res.ProofOfReserves.Factors, 4)
	assert.Contains(t, res.ProofOfReserves.FundTraceability, "untraceable")
}

func TestAssessTransparencyClean(t *testing.T) {
	res := NewAssessor().Assess(baseReport(domain.SeverityLow, 10, domain.RecommendationApprove))

	assert.Equal(t, 100, res.ProofOfReserves.Score)
	assert.Equal(t, domain.TransparencyTransparent, res.ProofOfReserves.Status)
	assert.Empty(t, res.ProofOfReserves.Factors)
}

func TestAssessTransparencyHopPenaltyCapped(t *testing.T) {
	report := baseReport(domain.SeverityMedium, 55, domain.RecommendationReview)
	report.DeFiAnalysis = &domain.DeFiAnalysis{OpaqueHops: 20}

	res := NewAssessor().Assess(report)

	// 100 - min(25, 20*5) = 75.
	assert.Equal(t, 75, res.ProofOfReserves.Score)
}

func TestAssessMonitoringSection(t *testing.T) {
	report := baseReport(domain.SeverityMedium, 55, domain.RecommendationReview)
	report.DeFiAnalysis = &domain.DeFiAnalysis{
		MixerInteractions: []domain.ProtocolInteraction{{Name: "Tornado Cash"}},
		OpaqueHops:        2,
	}
	report.Sources.Heuristics = domain.HeuristicsSource{
		Enabled: true,
		Score:   25,
		Flags:   []domain.Finding{{Source: "On-Chain Heuristics", Severity: domain.SeverityHigh}},
	}

	res := NewAssessor().Assess(report)
	mon := res.OnChainMonitoring

	assert.Equal(t, 1, mon.DeFiExposure.Mixers)
	assert.Equal(t, 2, mon.DeFiExposure.OpaqueHops)
	assert.Equal(t, 25, mon.HeuristicScore)
	assert.Len(t, mon.HeuristicFlags, 1)
	assert.Equal(t, 100, mon.Metrics["total_transactions"])
	assert.True(t, mon.ContinuousMonitoring.Recommended)
}
