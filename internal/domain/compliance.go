package domain

import "time"

// KYCStatus labels the due-diligence tier a screening mandates.
type KYCStatus string

const (
	KYCStatusStandard       KYCStatus = "STANDARD"
	KYCStatusCDDPlus        KYCStatus = "REQUIRED_CDD_PLUS"
	KYCStatusMandatoryEDD   KYCStatus = "MANDATORY_EDD"
	KYCStatusMandatoryBlock KYCStatus = "MANDATORY_BLOCK"
)

// RequiredDocument is one item of the document checklist.
type RequiredDocument struct {
	Name     string `json:"name"`
	Required bool   `json:"required"`
}

// KYCAssessment is the due-diligence section of the dossier.
type KYCAssessment struct {
	Requirement       string             `json:"requirement"`
	Status            KYCStatus          `json:"status"`
	Actions           []string           `json:"actions"`
	DocumentsRequired []RequiredDocument `json:"documents_required"`
	RiskFactors       []string           `json:"risk_factors"`
}

// CoverageStatus grades how many data sources contributed to a screening.
type CoverageStatus string

const (
	CoverageActive       CoverageStatus = "ACTIVE"
	CoveragePartial      CoverageStatus = "PARTIAL"
	CoverageInsufficient CoverageStatus = "INSUFFICIENT"
)

// AMLCoverage is the provider-coverage section of the dossier.
type AMLCoverage struct {
	Status            CoverageStatus `json:"status"`
	CoveragePercent   int            `json:"coverage_percent"`
	ActiveProviders   []string       `json:"active_providers"`
	InactiveProviders []string       `json:"inactive_providers"`
	Recommendation    string         `json:"recommendation"`
	ScreeningType     string         `json:"screening_type"`
	Frequency         string         `json:"frequency"`
}

// Obligation is one regulatory duty triggered by the screening outcome.
type Obligation struct {
	Regulation string `json:"regulation"`
	Action     string `json:"action"`
	Deadline   string `json:"deadline"`
	Priority   string `json:"priority"`
}

// RegulatoryAssessment is the regulatory-cooperation section of the dossier.
type RegulatoryAssessment struct {
	Status        string       `json:"status"`
	Obligations   []Obligation `json:"obligations"`
	Jurisdictions []string     `json:"jurisdictions"`
}

// AuditEntry is one step of the synthetic audit trail. All entries of one
// screening share the report timestamp.
type AuditEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail"`
	Actor     string    `json:"actor"`
}

// AuditTrail is the ordered, append-only record of the screening run. The
// report hash is an integrity fingerprint (rolling hash), not a
// security-grade digest.
type AuditTrail struct {
	Entries         []AuditEntry `json:"entries"`
	ReportHash      string       `json:"report_hash"`
	RetentionPolicy string       `json:"retention_policy"`
	Immutable       bool         `json:"immutable"`
}

// DeFiExposure summarizes protocol touchpoints for the monitoring section.
type DeFiExposure struct {
	Mixers     int    `json:"mixers"`
	Bridges    int    `json:"bridges"`
	DexSwaps   int    `json:"dex_swaps"`
	OpaqueHops int    `json:"opaque_hops"`
	Pattern    string `json:"pattern"`
}

// ContinuousMonitoring carries the follow-up monitoring recommendation.
type ContinuousMonitoring struct {
	Recommended bool     `json:"recommended"`
	Frequency   string   `json:"frequency"`
	Alerts      []string `json:"alerts"`
}

// MonitoringAssessment is the on-chain monitoring section of the dossier.
type MonitoringAssessment struct {
	Metrics              map[string]interface{} `json:"metrics"`
	DeFiExposure         DeFiExposure           `json:"defi_exposure"`
	HeuristicFlags       []Finding              `json:"heuristic_flags"`
	HeuristicScore       int                    `json:"heuristic_score"`
	ContinuousMonitoring ContinuousMonitoring   `json:"continuous_monitoring"`
}

// TransparencyStatus bands the transparency score.
type TransparencyStatus string

const (
	TransparencyTransparent     TransparencyStatus = "TRANSPARENT"
	TransparencyPartiallyOpaque TransparencyStatus = "PARTIALLY_OPAQUE"
	TransparencyOpaque          TransparencyStatus = "OPAQUE"
	TransparencyUntraceable     TransparencyStatus = "UNTRACEABLE"
)

// TransparencyFactor is one contributing penalty to the transparency score.
type TransparencyFactor struct {
	Factor string `json:"factor"`
	Impact int    `json:"impact"`
	Detail string `json:"detail"`
}

// TransparencyAssessment is the proof-of-reserves/transparency section.
type TransparencyAssessment struct {
	Score            int                  `json:"score"`
	Status           TransparencyStatus   `json:"status"`
	Factors          []TransparencyFactor `json:"factors"`
	FundTraceability string               `json:"fund_traceability"`
	Recommendation   string               `json:"recommendation"`
}

// ComplianceAssessment is the full dossier derived from a report. It is a
// pure function of the report and has no independent lifecycle.
type ComplianceAssessment struct {
	Timestamp             time.Time              `json:"timestamp"`
	OverallRisk           Severity               `json:"overall_risk"`
	OverallScore          int                    `json:"overall_score"`
	Recommendation        Recommendation         `json:"recommendation"`
	KYC                   KYCAssessment          `json:"kyc"`
	AMLKYT                AMLCoverage            `json:"aml_kyt"`
	RegulatoryCooperation RegulatoryAssessment   `json:"regulatory_cooperation"`
	AuditTrail            AuditTrail             `json:"audit_trail"`
	OnChainMonitoring     MonitoringAssessment   `json:"on_chain_monitoring"`
	ProofOfReserves       TransparencyAssessment `json:"proof_of_reserves"`
}
