package risk

import (
	"github.com/soccz/young-and-home/internal/domain"
)

// Engine runs the full analysis pipeline: market value estimation,
// ordered risk scoring, custom rules, cross-validation and report
// assembly. It is stateless between calls; identical inputs always
// produce identical results.
type Engine struct {
	scorer *Scorer
	custom *CustomEngine // optional
}

// Result is the complete output of one analysis.
type Result struct {
	Verdict domain.RiskVerdict           `json:"verdict"`
	Cross   domain.CrossValidationResult `json:"cross"`
	Report  string                       `json:"report"`
}

// NewEngine creates an engine with the given rule weights. The custom
// engine may be nil when no operator-defined rules are in play.
func NewEngine(cfg ScorerConfig, custom *CustomEngine) *Engine {
	return &Engine{
		scorer: NewScorer(cfg),
		custom: custom,
	}
}

// Scorer exposes the configured scorer.
func (e *Engine) Scorer() *Scorer {
	return e.scorer
}

// CustomRules exposes the custom rule engine, or nil.
func (e *Engine) CustomRules() *CustomEngine {
	return e.custom
}

// Analyze produces a verdict, a cross-validation result and a rendered
// report. It is total: malformed input degrades to defaults or to the
// "unable to analyze" verdict, never to an error.
//
// A contract that carries a deposit takes precedence over the caller's
// figure; the signed document is the authoritative source. The explicit
// deposit covers the case where no contract is given.
func (e *Engine) Analyze(registry *domain.RegistryRecord, contract *domain.ContractRecord, deposit int64, locale domain.Locale) *Result {
	if contract != nil && contract.Deposit > 0 {
		deposit = contract.Deposit
	}

	verdict := e.scorer.Score(registry, deposit)

	if verdict.Level != domain.LevelUnknown && e.custom != nil && e.custom.RulesCount() > 0 {
		estimated := verdict.EstimatedValue
		if estimated == 0 {
			// Facts still carry an estimate even when the verdict
			// omits it (deposit not given).
			estimated = EstimateMarketValue(registry.PropertyAddress, registry.AreaSqm())
		}
		findings, points := e.custom.Evaluate(Facts{
			Registry:       registry,
			Deposit:        deposit,
			EstimatedValue: estimated,
		})
		if points > 0 || len(findings) > 0 {
			verdict.Findings = append(verdict.Findings, findings...)
			verdict.Score += points
			verdict.Level = e.scorer.LevelForScore(verdict.Score)
		}
	}

	verdict.Recommendation = Recommendation(verdict.Level, locale)

	var cross domain.CrossValidationResult
	if verdict.Level == domain.LevelUnknown {
		cross = domain.CrossValidationResult{
			Status:     domain.CrossSkipped,
			Consistent: true,
			Issues:     []string{},
		}
	} else {
		cross = Validate(registry, contract)
	}

	return &Result{
		Verdict: verdict,
		Cross:   cross,
		Report:  AssembleReport(verdict, cross, registry, locale),
	}
}
