package domain

// Severity grades a single risk finding.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// RiskLevel is the overall verdict level derived from the score.
type RiskLevel string

const (
	LevelSafe    RiskLevel = "SAFE"
	LevelCaution RiskLevel = "CAUTION"
	LevelDanger  RiskLevel = "DANGER"

	// LevelUnknown is returned for degenerate input that cannot be
	// analyzed. The engine still returns a verdict, never an error.
	LevelUnknown RiskLevel = "UNKNOWN"
)

// RiskFinding is one detected issue. Findings keep detection order,
// not severity order, so reports read in rule order.
type RiskFinding struct {
	Category    string   `json:"category"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
}

// RiskVerdict is the scored output of the risk engine for one registry
// record. The score accumulates rule points and is not capped at 100.
// Constructed fresh per call and never mutated afterwards.
type RiskVerdict struct {
	Score          int           `json:"score"`
	Level          RiskLevel     `json:"level"`
	Findings       []RiskFinding `json:"findings"`
	EstimatedValue int64         `json:"estimatedValue"` // won, 0 when no deposit given
	Recommendation string        `json:"recommendation"`
}

// CrossStatus marks whether contract cross-validation ran.
type CrossStatus string

const (
	CrossSkipped CrossStatus = "SKIPPED"
	CrossDone    CrossStatus = "DONE"
)

// CrossValidationResult holds the registry-vs-contract comparison.
// With no contract the status is CrossSkipped, Issues is empty and
// Consistent is true by convention: there is no mismatch to report.
type CrossValidationResult struct {
	Status     CrossStatus `json:"status"`
	Consistent bool        `json:"consistent"`
	Issues     []string    `json:"issues"`
}

// Locale selects the report language.
type Locale string

const (
	LocaleKO Locale = "KO"
	LocaleEN Locale = "EN"
)

// ParseLocale normalizes a locale string, defaulting to Korean.
func ParseLocale(s string) Locale {
	switch s {
	case "EN", "en", "en-US":
		return LocaleEN
	default:
		return LocaleKO
	}
}
