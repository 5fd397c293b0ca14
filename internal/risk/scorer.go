package risk

import (
	"fmt"

	"github.com/soccz/young-and-home/internal/domain"
)

// Finding category keys produced by the built-in rules. Reports map
// these to localized labels.
const (
	CategoryMultipleMortgages = "multiple_mortgages"
	CategoryMortgage          = "mortgage"
	CategorySeizure           = "seizure"
	CategoryPriorLease        = "prior_lease"
	CategoryDebtExceeded      = "debt_ratio_exceeded"
	CategoryDebtWarning       = "debt_ratio_warning"
)

// ScorerConfig holds the rule weights and level cut-offs. The defaults
// mirror the original ad-hoc constants; they are configuration, not
// calibrated business truths.
type ScorerConfig struct {
	MultipleMortgagePoints int
	SingleMortgagePoints   int
	SeizurePoints          int
	PriorLeasePoints       int
	DebtExceededPoints     int
	DebtWarningPoints      int

	// Level boundaries: score >= Danger is DANGER, >= Caution is
	// CAUTION, anything below is SAFE.
	DangerThreshold  int
	CautionThreshold int

	// SafeLimitRatio of the estimated market value is the safe debt
	// ceiling; WarningRatio of that ceiling triggers the near-limit
	// warning.
	SafeLimitRatio float64
	WarningRatio   float64
}

// DefaultScorerConfig returns the original rule weights.
func DefaultScorerConfig() ScorerConfig {
	return ScorerConfig{
		MultipleMortgagePoints: 30,
		SingleMortgagePoints:   15,
		SeizurePoints:          40,
		PriorLeasePoints:       25,
		DebtExceededPoints:     35,
		DebtWarningPoints:      10,
		DangerThreshold:        60,
		CautionThreshold:       30,
		SafeLimitRatio:         0.7,
		WarningRatio:           0.9,
	}
}

// Scorer applies the ordered built-in risk rules to a registry record.
type Scorer struct {
	cfg ScorerConfig
}

// NewScorer creates a scorer with the given rule weights.
func NewScorer(cfg ScorerConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// LevelForScore maps a cumulative score to a verdict level.
func (s *Scorer) LevelForScore(score int) domain.RiskLevel {
	switch {
	case score >= s.cfg.DangerThreshold:
		return domain.LevelDanger
	case score >= s.cfg.CautionThreshold:
		return domain.LevelCaution
	default:
		return domain.LevelSafe
	}
}

// Score evaluates the built-in rules in fixed order and returns a
// verdict. Each rule only ever adds points, so the score accumulates
// monotonically. A nil or empty registry yields the degenerate
// "unable to analyze" verdict; Score never fails.
//
// Rule order: mortgages, seizures, prior leases, debt-to-value. The
// debt rule runs only when a deposit is given, and its two branches
// are mutually exclusive.
func (s *Scorer) Score(registry *domain.RegistryRecord, deposit int64) domain.RiskVerdict {
	if registry.IsEmpty() {
		return domain.RiskVerdict{
			Score:          0,
			Level:          domain.LevelUnknown,
			Findings:       nil,
			Recommendation: Recommendation(domain.LevelUnknown, domain.LocaleEN),
		}
	}

	var findings []domain.RiskFinding
	score := 0

	totalMortgage := registry.TotalMortgage()
	if n := len(registry.Mortgages); n > 1 {
		findings = append(findings, domain.RiskFinding{
			Category:    CategoryMultipleMortgages,
			Severity:    domain.SeverityHigh,
			Description: fmt.Sprintf("%d mortgages registered, total ₩%s", n, formatWon(totalMortgage)),
		})
		score += s.cfg.MultipleMortgagePoints
	} else if n == 1 {
		findings = append(findings, domain.RiskFinding{
			Category:    CategoryMortgage,
			Severity:    domain.SeverityMedium,
			Description: fmt.Sprintf("mortgage registered, ₩%s", formatWon(totalMortgage)),
		})
		score += s.cfg.SingleMortgagePoints
	}

	if n := len(registry.Seizures); n > 0 {
		findings = append(findings, domain.RiskFinding{
			Category:    CategorySeizure,
			Severity:    domain.SeverityCritical,
			Description: fmt.Sprintf("%d seizure/provisional seizure entries, total ₩%s", n, formatWon(registry.TotalSeizure())),
		})
		score += s.cfg.SeizurePoints
	}

	totalPrior := registry.TotalPriorDeposit()
	if n := len(registry.PriorLeases); n > 0 {
		findings = append(findings, domain.RiskFinding{
			Category:    CategoryPriorLease,
			Severity:    domain.SeverityHigh,
			Description: fmt.Sprintf("%d prior lease holder(s), deposits total ₩%s", n, formatWon(totalPrior)),
		})
		score += s.cfg.PriorLeasePoints
	}

	var estimatedValue int64
	if deposit > 0 {
		totalDebt := totalMortgage + totalPrior
		estimatedValue = EstimateMarketValue(registry.PropertyAddress, registry.AreaSqm())
		safeLimit := float64(estimatedValue) * s.cfg.SafeLimitRatio
		claim := float64(totalDebt + deposit)

		if claim > safeLimit {
			findings = append(findings, domain.RiskFinding{
				Category:    CategoryDebtExceeded,
				Severity:    domain.SeverityCritical,
				Description: fmt.Sprintf("total claims ₩%s exceed %.0f%% of estimated value ₩%s", formatWon(totalDebt+deposit), s.cfg.SafeLimitRatio*100, formatWon(estimatedValue)),
			})
			score += s.cfg.DebtExceededPoints
		} else if claim > safeLimit*s.cfg.WarningRatio {
			findings = append(findings, domain.RiskFinding{
				Category:    CategoryDebtWarning,
				Severity:    domain.SeverityMedium,
				Description: "total claims are approaching the safe debt ceiling",
			})
			score += s.cfg.DebtWarningPoints
		}
	}

	level := s.LevelForScore(score)
	return domain.RiskVerdict{
		Score:          score,
		Level:          level,
		Findings:       findings,
		EstimatedValue: estimatedValue,
		Recommendation: Recommendation(level, domain.LocaleEN),
	}
}

// formatWon renders a won amount with thousands separators.
func formatWon(v int64) string {
	s := fmt.Sprintf("%d", v)
	if v < 0 {
		s = s[1:]
	}
	n := len(s)
	if n <= 3 {
		if v < 0 {
			return "-" + s
		}
		return s
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	if v < 0 {
		return "-" + string(out)
	}
	return string(out)
}
