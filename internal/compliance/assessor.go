// Package compliance derives the due-diligence, regulatory and audit
// dossier from a finished screening report. The derivation is a pure
// function of the report: no I/O, no external calls.
package compliance

import (
	"encoding/json"
	"fmt"
	"strings"

	"amlscreen/internal/domain"
)

// Assessor builds compliance assessments.
type Assessor struct{}

func NewAssessor() *Assessor {
	return &Assessor{}
}

// Assess derives the full dossier from the report.
func (a *Assessor) Assess(report *domain.Report) domain.ComplianceAssessment {
	snapshot := report.Sources.Explorer.Data
	defiRes := report.DeFiAnalysis

	return domain.ComplianceAssessment{
		Timestamp:             report.Timestamp,
		OverallRisk:           report.Decision.Level,
		OverallScore:          report.Decision.Score,
		Recommendation:        report.Decision.Recommendation,
		KYC:                   evaluateKYC(report, defiRes),
		AMLKYT:                evaluateCoverage(report),
		RegulatoryCooperation: evaluateRegulatory(report),
		AuditTrail:            buildAuditTrail(report),
		OnChainMonitoring:     evaluateMonitoring(snapshot, defiRes, report.Sources.Heuristics),
		ProofOfReserves:       evaluateTransparency(snapshot, defiRes),
	}
}

func evaluateKYC(report *domain.Report, defiRes *domain.DeFiAnalysis) domain.KYCAssessment {
	var kyc domain.KYCAssessment

	switch report.Decision.Level {
	case domain.SeverityCritical:
		kyc.Requirement = "Enhanced Due Diligence (EDD) + Suspicious Activity Report (SAR)"
		kyc.Status = domain.KYCStatusMandatoryBlock
		kyc.Actions = []string{
			"BLOCK the transaction immediately",
			"File a Suspicious Activity Report with the financial intelligence unit",
			"Preserve all documentation for the authorities",
			"Do not alert the customer about the investigation (tipping-off)",
			"Escalate to the Compliance Officer for the final decision",
		}
	case domain.SeverityHigh:
		kyc.Requirement = "Enhanced Due Diligence (EDD)"
		kyc.Status = domain.KYCStatusMandatoryEDD
		kyc.Actions = []string{
			"Request full documentation: ID + proof of address + source of funds",
			"Verify identity through a KYC provider (Onfido, Jumio, SumSub)",
			"Require a signed source-of-funds declaration",
			"Check PEP status and sanctions lists",
			"Manual review by the Compliance Officer before proceeding",
			"Document the decision and its justification (audit trail)",
		}
	case domain.SeverityMedium:
		kyc.Requirement = "Reinforced Customer Due Diligence (CDD)"
		kyc.Status = domain.KYCStatusCDDPlus
		kyc.Actions = []string{
			"Request ID and proof of address",
			"Verify consistency of the declared data",
			"Request the invoice/contract backing the operation",
			"Continuous monitoring for 90 days",
		}
	default:
		kyc.Requirement = "Standard Customer Due Diligence (CDD)"
		kyc.Status = domain.KYCStatusStandard
		kyc.Actions = []string{
			"Basic identity verification (ID + selfie)",
			"Register the operation internally",
			"Standard monitoring",
		}
	}

	usedMixer := defiRes != nil && defiRes.Summary.UsedMixer
	usedBridge := defiRes != nil && defiRes.Summary.UsedBridge

	if usedMixer {
		kyc.Actions = append([]string{"MIXER DETECTED: require a detailed explanation of the funds origin"}, kyc.Actions...)
	}
	if usedBridge {
		kyc.Actions = append(kyc.Actions, "Request a full cross-chain trace (origin and destination tx hashes)")
	}

	kyc.DocumentsRequired = requiredDocuments(report.Decision.Level, usedMixer)

	kyc.RiskFactors = make([]string, 0, len(report.Findings))
	for _, f := range report.Findings {
		kyc.RiskFactors = append(kyc.RiskFactors, fmt.Sprintf("[%s] %s: %s", f.Severity, f.Source, f.Detail))
	}
	return kyc
}

func requiredDocuments(level domain.Severity, usedMixer bool) []domain.RequiredDocument {
	docs := []domain.RequiredDocument{
		{Name: "Identity document (ID card/driver's license/passport)", Required: true},
		{Name: "Proof of address (last 3 months)", Required: true},
	}

	if level != domain.SeverityLow {
		docs = append(docs,
			domain.RequiredDocument{Name: "Proof of income / tax return", Required: level != domain.SeverityMedium},
			domain.RequiredDocument{Name: "Invoice / contract backing the operation", Required: true},
		)
	}
	if level == domain.SeverityHigh || level == domain.SeverityCritical {
		docs = append(docs,
			domain.RequiredDocument{Name: "Signed source-of-funds declaration", Required: true},
			domain.RequiredDocument{Name: "Bank statements (last 6 months)", Required: true},
			domain.RequiredDocument{Name: "Hash/TXID of the source transactions", Required: true},
			domain.RequiredDocument{Name: "Articles of incorporation (if a legal entity)", Required: false},
		)
	}
	if usedMixer {
		docs = append(docs,
			domain.RequiredDocument{Name: "Written justification for mixer usage", Required: true},
			domain.RequiredDocument{Name: "Complete trace of the transaction chain", Required: true},
		)
	}
	return docs
}

// evaluateCoverage measures how many of the six data sources contributed to
// the screening.
func evaluateCoverage(report *domain.Report) domain.AMLCoverage {
	type providerCheck struct {
		name    string
		enabled bool
	}
	checks := []providerCheck{
		{"OFAC/SDN (Sanctions)", report.Sources.Sanctions.Enabled},
		{"Blockchain Explorer (On-Chain)", report.Sources.Explorer.Enabled},
		{"Behavioral Heuristics", report.Sources.Heuristics.Enabled},
		{"Chainabuse (Scam Reports)", report.Sources.ScamDB.Enabled},
		{"Blocksec/MetaSleuth (Risk Score)", report.Sources.RiskScorer.Enabled},
		{"DeFi Protocol Analysis", report.DeFiAnalysis != nil},
	}

	var active, inactive []string
	for _, c := range checks {
		if c.enabled {
			active = append(active, c.name)
		} else {
			inactive = append(inactive, c.name)
		}
	}

	percent := coveragePercent(len(active), len(checks))
	cov := domain.AMLCoverage{
		CoveragePercent:   percent,
		ActiveProviders:   active,
		InactiveProviders: inactive,
		ScreeningType:     "Automated Real-Time Screening",
		Frequency:         "Per-transaction (on-demand)",
	}
	switch {
	case percent >= 80:
		cov.Status = domain.CoverageActive
	case percent >= 50:
		cov.Status = domain.CoveragePartial
	default:
		cov.Status = domain.CoverageInsufficient
	}
	if percent < 80 {
		cov.Recommendation = fmt.Sprintf("Coverage at %d%%. Recommend enabling: %s", percent, strings.Join(inactive, ", "))
	} else {
		cov.Recommendation = fmt.Sprintf("Coverage at %d%%. System operating with an adequate source level.", percent)
	}
	return cov
}

func coveragePercent(active, total int) int {
	if total == 0 {
		return 0
	}
	return int(float64(active)/float64(total)*100 + 0.5)
}

func evaluateRegulatory(report *domain.Report) domain.RegulatoryAssessment {
	level := report.Decision.Level
	var obligations []domain.Obligation

	if level == domain.SeverityCritical {
		obligations = append(obligations,
			domain.Obligation{
				Regulation: "BACEN Circular 3.978/2020",
				Action:     "Mandatory report to the financial intelligence unit (COAF/SISCOAF)",
				Deadline:   "24 hours",
				Priority:   "IMMEDIATE",
			},
			domain.Obligation{
				Regulation: "FATF Recommendation 20",
				Action:     "Suspicious Transaction Report (STR)",
				Deadline:   "Immediately",
				Priority:   "IMMEDIATE",
			},
		)
	}
	if level == domain.SeverityHigh || level == domain.SeverityCritical {
		obligations = append(obligations,
			domain.Obligation{
				Regulation: "Law 9.613/1998 (Anti-Money-Laundering Act)",
				Action:     "Retain records for a minimum of 5 years",
				Deadline:   "Continuous",
				Priority:   "HIGH",
			},
			domain.Obligation{
				Regulation: "CVM Instruction 617/2019",
				Action:     "Enhanced due diligence and continuous monitoring",
				Deadline:   "Before proceeding with the operation",
				Priority:   "HIGH",
			},
		)
	}
	obligations = append(obligations, domain.Obligation{
		Regulation: "BACEN Circular 3.978/2020",
		Action:     "Register and maintain the customer record",
		Deadline:   "Continuous",
		Priority:   "STANDARD",
	})

	if hasMixerFinding(report.Findings) {
		obligations = append(obligations, domain.Obligation{
			Regulation: "OFAC Compliance",
			Action:     "Cross-check the mixer against the SDN list (Tornado Cash is sanctioned)",
			Deadline:   "Before the operation",
			Priority:   "CRITICAL",
		})
	}

	status := "STANDARD"
	switch level {
	case domain.SeverityCritical:
		status = "SAR_REQUIRED"
	case domain.SeverityHigh:
		status = "ENHANCED_MONITORING"
	}
	return domain.RegulatoryAssessment{
		Status:        status,
		Obligations:   obligations,
		Jurisdictions: []string{"Brazil (BACEN/COAF)", "USA (OFAC/FinCEN)", "International (FATF)"},
	}
}

func hasMixerFinding(findings []domain.Finding) bool {
	for _, f := range findings {
		if f.Category == "mixer" || strings.Contains(strings.ToLower(f.Detail), "mixer") {
			return true
		}
	}
	return false
}

// buildAuditTrail records every pipeline step with the report's single
// timestamp and closes with an integrity fingerprint of the serialized
// report. The fingerprint is a rolling hash, not a security-grade digest.
func buildAuditTrail(report *domain.Report) domain.AuditTrail {
	ts := report.Timestamp
	entry := func(action, detail string) domain.AuditEntry {
		return domain.AuditEntry{Timestamp: ts, Action: action, Detail: detail, Actor: "SYSTEM"}
	}

	trail := []domain.AuditEntry{
		entry("SCREENING_INITIATED", fmt.Sprintf("Screening started for %s:%s",
			strings.ToUpper(string(report.Input.Chain)), report.Input.Address)),
	}

	sourceStates := []struct {
		name    string
		enabled bool
		errMsg  string
	}{
		{"sanctions", report.Sources.Sanctions.Enabled, report.Sources.Sanctions.Error},
		{"explorer", report.Sources.Explorer.Enabled, report.Sources.Explorer.Error},
		{"heuristics", report.Sources.Heuristics.Enabled, report.Sources.Heuristics.Error},
		{"scamdb", report.Sources.ScamDB.Enabled, report.Sources.ScamDB.Error},
		{"risk_scorer", report.Sources.RiskScorer.Enabled, report.Sources.RiskScorer.Error},
	}
	for _, src := range sourceStates {
		status := "OK"
		if !src.enabled {
			status = "N/A"
		}
		detail := fmt.Sprintf("Source %q queried. Status: %s", src.name, status)
		if src.errMsg != "" {
			detail += fmt.Sprintf(" (error: %s)", src.errMsg)
		}
		trail = append(trail, entry("SOURCE_QUERIED", detail))
	}

	if report.DeFiAnalysis != nil {
		s := report.DeFiAnalysis.Summary
		trail = append(trail, entry("DEFI_ANALYSIS", fmt.Sprintf(
			"DeFi analysis: Mixer=%t, Bridge=%t, DEX=%t, OpaqueHops=%d",
			s.UsedMixer, s.UsedBridge, s.UsedDex, report.DeFiAnalysis.OpaqueHops)))
	}

	trail = append(trail,
		entry("RISK_CALCULATED", fmt.Sprintf("Level: %s, Score: %d/100, Recommendation: %s",
			report.Decision.Level, report.Decision.Score, report.Decision.Recommendation)),
		entry("REPORT_GENERATED", fmt.Sprintf("Report %s generated with %d finding(s).",
			report.ID, len(report.Findings))),
	)

	hash := reportFingerprint(report)
	trail = append(trail, entry("INTEGRITY_HASH", "Integrity fingerprint: "+hash))

	return domain.AuditTrail{
		Entries:         trail,
		ReportHash:      hash,
		RetentionPolicy: "Minimum 5 years (Law 9.613/1998)",
		Immutable:       true,
	}
}

// reportFingerprint computes a 31-based rolling hash over the JSON-encoded
// report, rendered as zero-padded hex.
func reportFingerprint(report *domain.Report) string {
	raw, err := json.Marshal(report)
	if err != nil {
		return "0000000000000000"
	}
	var hash int32
	for _, b := range raw {
		hash = (hash << 5) - hash + int32(b)
	}
	if hash < 0 {
		hash = -hash
	}
	return fmt.Sprintf("%016x", hash)
}

func evaluateMonitoring(snap *domain.OnChainSnapshot, defiRes *domain.DeFiAnalysis, heur domain.HeuristicsSource) domain.MonitoringAssessment {
	metrics := map[string]interface{}{}
	if snap != nil {
		metrics["balance"] = snap.Balance
		metrics["total_transactions"] = snap.TxCount
		metrics["token_transactions"] = snap.TokenTxCount
		metrics["stablecoin_transactions"] = snap.StablecoinTxCount
		metrics["contract_interactions"] = snap.ContractInteractions
		if snap.FirstTransaction != nil {
			metrics["first_activity"] = *snap.FirstTransaction
		}
		if snap.LastTransaction != nil {
			metrics["last_activity"] = *snap.LastTransaction
		}
		if snap.UniqueCounterparties != nil {
			metrics["unique_counterparties"] = *snap.UniqueCounterparties
		}
	}

	exposure := domain.DeFiExposure{Pattern: "No suspicious pattern detected"}
	if defiRes != nil {
		exposure.Mixers = len(defiRes.MixerInteractions)
		exposure.Bridges = len(defiRes.BridgeInteractions)
		exposure.DexSwaps = len(defiRes.DexInteractions)
		exposure.OpaqueHops = defiRes.OpaqueHops
		if defiRes.Summary.PatternDescription != "" {
			exposure.Pattern = defiRes.Summary.PatternDescription
		}
	}

	return domain.MonitoringAssessment{
		Metrics:        metrics,
		DeFiExposure:   exposure,
		HeuristicFlags: heur.Flags,
		HeuristicScore: heur.Score,
		ContinuousMonitoring: domain.ContinuousMonitoring{
			Recommended: true,
			Frequency:   "Daily for HIGH/CRITICAL, weekly for MEDIUM, monthly for LOW",
			Alerts: []string{
				"Sudden change in transaction pattern",
				"New interaction with a mixer or privacy protocol",
				"Funds received from a sanctioned address",
				"Abnormal transaction volume",
			},
		},
	}
}

func evaluateTransparency(snap *domain.OnChainSnapshot, defiRes *domain.DeFiAnalysis) domain.TransparencyAssessment {
	score := 100
	var factors []domain.TransparencyFactor

	usedMixer := defiRes != nil && defiRes.Summary.UsedMixer
	usedBridge := defiRes != nil && defiRes.Summary.UsedBridge
	hops := 0
	if defiRes != nil {
		hops = defiRes.OpaqueHops
	}

	if usedMixer {
		score -= 50
		factors = append(factors, domain.TransparencyFactor{
			Factor: "Mixer/tumbler usage",
			Impact: -50,
			Detail: "Funds passed through an obfuscation service. Traceability severely compromised.",
		})
	}
	if usedBridge {
		score -= 15
		factors = append(factors, domain.TransparencyFactor{
			Factor: "Cross-chain bridge usage",
			Impact: -15,
			Detail: "Funds crossed chains. Tracing requires multi-chain analysis.",
		})
	}
	if hops >= 3 {
		penalty := hops * 5
		if penalty > 25 {
			penalty = 25
		}
		score -= penalty
		factors = append(factors, domain.TransparencyFactor{
			Factor: fmt.Sprintf("%d opaque hops", hops),
			Impact: -penalty,
			Detail: "Multiple intermediaries between the origin and destination of funds.",
		})
	}
	if snap != nil && snap.TxCount < 5 {
		score -= 10
		factors = append(factors, domain.TransparencyFactor{
			Factor: "Limited history",
			Impact: -10,
			Detail: "Few transactions. No behavioral pattern can be established.",
		})
	}

	if score < 0 {
		score = 0
	}

	var status domain.TransparencyStatus
	switch {
	case score >= 80:
		status = domain.TransparencyTransparent
	case score >= 50:
		status = domain.TransparencyPartiallyOpaque
	case score >= 20:
		status = domain.TransparencyOpaque
	default:
		status = domain.TransparencyUntraceable
	}

	traceability := map[domain.TransparencyStatus]string{
		domain.TransparencyTransparent:     "High: funds origin traceable on-chain",
		domain.TransparencyPartiallyOpaque: "Partial: part of the funds path is opaque",
		domain.TransparencyOpaque:          "Low: multiple obfuscation layers detected",
		domain.TransparencyUntraceable:     "None: funds passed through mixer(s). Origin untraceable.",
	}

	recommendation := "On-chain tracing sufficient for standard diligence."
	if score < 50 {
		recommendation = "Require documentary proof of funds origin (statements, contracts, invoices)."
	}

	return domain.TransparencyAssessment{
		Score:            score,
		Status:           status,
		Factors:          factors,
		FundTraceability: traceability[status],
		Recommendation:   recommendation,
	}
}
