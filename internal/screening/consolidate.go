package screening

import (
	"fmt"

	"amlscreen/internal/domain"
)

// consolidate merges the full finding set plus the DeFi and flash summaries
// into one decision. Pure function: the precedence ladder is evaluated top
// to bottom and the first matching rule wins. The summary always names the
// specific condition that triggered the rule.
func consolidate(findings []domain.Finding, defiRes *domain.DeFiAnalysis, flashRes *domain.FlashAnalysis) domain.Decision {
	var (
		criticalFinding *domain.Finding
		highCount       int
		medCount        int
	)
	for i := range findings {
		switch findings[i].Severity {
		case domain.SeverityCritical:
			if criticalFinding == nil {
				criticalFinding = &findings[i]
			}
		case domain.SeverityHigh:
			highCount++
		case domain.SeverityMedium:
			medCount++
		}
	}

	flashDetected := flashRes != nil && flashRes.FlashTokensDetected
	usedMixer := defiRes != nil && defiRes.Summary.UsedMixer
	mixerPattern := usedMixer && defiRes.Summary.SuspiciousPattern

	if criticalFinding != nil || flashDetected || mixerPattern {
		return domain.Decision{
			Level:          domain.SeverityCritical,
			Score:          100,
			Recommendation: domain.RecommendationBlock,
			Summary:        criticalSummary(criticalFinding, flashDetected, mixerPattern, defiRes),
		}
	}

	if highCount >= 2 || usedMixer {
		summary := fmt.Sprintf("%d high-risk indicators detected. Blocking recommended.", highCount)
		if usedMixer {
			summary = "Mixer interaction detected. Funds origin cannot be established. Blocking recommended."
		}
		return domain.Decision{
			Level:          domain.SeverityHigh,
			Score:          85,
			Recommendation: domain.RecommendationBlock,
			Summary:        summary,
		}
	}

	if highCount == 1 {
		return domain.Decision{
			Level:          domain.SeverityHigh,
			Score:          70,
			Recommendation: domain.RecommendationReview,
			Summary:        "High-risk indicator detected. Requires manual review (EDD).",
		}
	}

	if medCount >= 2 {
		return domain.Decision{
			Level:          domain.SeverityMedium,
			Score:          55,
			Recommendation: domain.RecommendationReview,
			Summary:        fmt.Sprintf("%d moderate risk indicators. Additional diligence recommended.", medCount),
		}
	}

	if len(findings) > 0 {
		return domain.Decision{
			Level:          domain.SeverityMedium,
			Score:          40,
			Recommendation: domain.RecommendationReview,
			Summary:        "Moderate risk indicator(s) detected. Monitor.",
		}
	}

	return domain.Decision{
		Level:          domain.SeverityLow,
		Score:          10,
		Recommendation: domain.RecommendationApprove,
		Summary:        "No risk indicators detected across the queried sources.",
	}
}

// criticalSummary names the exact condition that forced the block.
func criticalSummary(critical *domain.Finding, flashDetected, mixerPattern bool, defiRes *domain.DeFiAnalysis) string {
	switch {
	case critical != nil && critical.Category == "flash_token":
		return "Counterfeit stablecoin (flash token) detected in wallet. Transaction PROHIBITED."
	case critical != nil && critical.Category == "mixer":
		return "Direct mixer interaction detected. Transaction PROHIBITED."
	case critical != nil && critical.Source == "OFAC/SDN":
		return "Address appears on a sanctions list. Transaction PROHIBITED."
	case critical != nil:
		return fmt.Sprintf("Critical risk indicator from %s. Transaction PROHIBITED.", critical.Source)
	case flashDetected:
		return "Counterfeit stablecoin (flash token) detected in wallet. Transaction PROHIBITED."
	default:
		// Mixer combined with a multi-protocol obfuscation pattern.
		desc := "mixer plus multi-protocol obfuscation"
		if defiRes != nil && defiRes.Summary.PatternDescription != "" {
			desc = defiRes.Summary.PatternDescription
		}
		return fmt.Sprintf("Origin-obfuscation pattern: %s. Transaction PROHIBITED.", desc)
	}
}
