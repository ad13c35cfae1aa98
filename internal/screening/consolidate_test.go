package screening

import (
	"testing"

	"amlscreen/internal/domain"

	"github.com/stretchr/testify/assert"
)

func finding(severity domain.Severity) domain.Finding {
	return domain.Finding{Source: "test", Severity: severity, Detail: "x"}
}

func TestConsolidateNoFindings(t *testing.T) {
	d := consolidate(nil, nil, nil)

	assert.Equal(t, domain.SeverityLow, d.Level)
	assert.Equal(t, 10, d.Score)
	assert.Equal(t, domain.RecommendationApprove, d.Recommendation)
}

func TestConsolidateCriticalFinding(t *testing.T) {
	f := domain.Finding{Source: "OFAC/SDN", Severity: domain.SeverityCritical, Category: "sanctions"}
	d := consolidate([]domain.Finding{f}, nil, nil)

	assert.Equal(t, domain.SeverityCritical, d.Level)
	assert.Equal(t, 100, d.Score)
	assert.Equal(t, domain.RecommendationBlock, d.Recommendation)
	assert.Contains(t, d.Summary, "sanctions list")
}

func TestConsolidateFlashTokenPriority(t *testing.T) {
	// Flash detection forces CRITICAL even with zero other findings.
	flash := &domain.FlashAnalysis{FlashTokensDetected: true}
	d := consolidate(nil, nil, flash)

	assert.Equal(t, domain.SeverityCritical, d.Level)
	assert.Equal(t, domain.RecommendationBlock, d.Recommendation)
	assert.Contains(t, d.Summary, "flash token")
}

func TestConsolidateMixerPatternPriority(t *testing.T) {
	// Mixer plus multi-protocol pattern is CRITICAL regardless of how many
	// other findings are merely MEDIUM.
	defiRes := &domain.DeFiAnalysis{
		Summary: domain.DeFiSummary{
			UsedMixer:          true,
			UsedBridge:         true,
			SuspiciousPattern:  true,
			PatternDescription: "Funds passed through Mixer + Bridge. Origin-obfuscation pattern.",
		},
	}
	findings := []domain.Finding{finding(domain.SeverityMedium), finding(domain.SeverityMedium)}
	d := consolidate(findings, defiRes, nil)

	assert.Equal(t, domain.SeverityCritical, d.Level)
	assert.Contains(t, d.Summary, "Mixer + Bridge")
}

func TestConsolidateMixerAloneIsHighBlock(t *testing.T) {
	defiRes := &domain.DeFiAnalysis{Summary: domain.DeFiSummary{UsedMixer: true}}
	d := consolidate(nil, defiRes, nil)

	assert.Equal(t, domain.SeverityHigh, d.Level)
	assert.Equal(t, 85, d.Score)
	assert.Equal(t, domain.RecommendationBlock, d.Recommendation)
	assert.Contains(t, d.Summary, "Mixer")
}

func TestConsolidateHighLadder(t *testing.T) {
	two := consolidate([]domain.Finding{finding(domain.SeverityHigh), finding(domain.SeverityHigh)}, nil, nil)
	assert.Equal(t, domain.SeverityHigh, two.Level)
	assert.Equal(t, 85, two.Score)
	assert.Equal(t, domain.RecommendationBlock, two.Recommendation)

	one := consolidate([]domain.Finding{finding(domain.SeverityHigh)}, nil, nil)
	assert.Equal(t, domain.SeverityHigh, one.Level)
	assert.Equal(t, 70, one.Score)
	assert.Equal(t, domain.RecommendationReview, one.Recommendation)
}

func TestConsolidateMediumLadder(t *testing.T) {
	two := consolidate([]domain.Finding{finding(domain.SeverityMedium), finding(domain.SeverityMedium)}, nil, nil)
	assert.Equal(t, 55, two.Score)
	assert.Equal(t, domain.RecommendationReview, two.Recommendation)

	one := consolidate([]domain.Finding{finding(domain.SeverityMedium)}, nil, nil)
	assert.Equal(t, 40, one.Score)
	assert.Equal(t, domain.SeverityMedium, one.Level)

	lowOnly := consolidate([]domain.Finding{finding(domain.SeverityLow)}, nil, nil)
	assert.Equal(t, 40, lowOnly.Score)
	assert.Equal(t, domain.RecommendationReview, lowOnly.Recommendation)
}

func TestConsolidateIdempotent(t *testing.T) {
	findings := []domain.Finding{finding(domain.SeverityHigh), finding(domain.SeverityMedium)}
	defiRes := &domain.DeFiAnalysis{Summary: domain.DeFiSummary{UsedBridge: true}}

	first := consolidate(findings, defiRes, nil)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, consolidate(findings, defiRes, nil))
	}
}

func TestConsolidateCriticalNeverApproves(t *testing.T) {
	sets := [][]domain.Finding{
		nil,
		{finding(domain.SeverityLow)},
		{finding(domain.SeverityMedium), finding(domain.SeverityMedium)},
		{finding(domain.SeverityHigh), finding(domain.SeverityHigh), finding(domain.SeverityHigh)},
	}
	for _, set := range sets {
		withCritical := append(append([]domain.Finding{}, set...), finding(domain.SeverityCritical))
		d := consolidate(withCritical, nil, nil)
		assert.NotEqual(t, domain.RecommendationApprove, d.Recommendation)
		assert.Equal(t, domain.SeverityCritical, d.Level)
	}
}
