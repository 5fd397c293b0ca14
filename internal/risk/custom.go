package risk

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"

	"github.com/soccz/young-and-home/internal/domain"
)

// CustomEngine evaluates operator-defined CEL rules over derived
// registry facts. Rules are hot-reloadable; evaluation takes a read
// lock only.
type CustomEngine struct {
	mu       sync.RWMutex
	env      *cel.Env
	compiled map[string]*compiledRule
}

type compiledRule struct {
	rule    *domain.CustomRule
	program cel.Program
}

// NewCustomEngine creates the CEL environment with the registry fact
// variables available to rule expressions.
func NewCustomEngine() (*CustomEngine, error) {
	env, err := cel.NewEnv(
		cel.Variable("mortgage_count", cel.IntType),
		cel.Variable("seizure_count", cel.IntType),
		cel.Variable("prior_lease_count", cel.IntType),
		cel.Variable("total_mortgage", cel.IntType),
		cel.Variable("total_seizure", cel.IntType),
		cel.Variable("total_prior_deposit", cel.IntType),
		cel.Variable("total_debt", cel.IntType),
		cel.Variable("deposit", cel.IntType),
		cel.Variable("estimated_value", cel.IntType),
		cel.Variable("ltv", cel.DoubleType),
		cel.Variable("address", cel.StringType),
		cel.Variable("property_type", cel.StringType),
		cel.Variable("area_sqm", cel.DoubleType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	return &CustomEngine{
		env:      env,
		compiled: make(map[string]*compiledRule),
	}, nil
}

// ValidateRule compiles a rule without loading it.
func (e *CustomEngine) ValidateRule(rule *domain.CustomRule) error {
	if rule == nil {
		return fmt.Errorf("rule is required")
	}
	_, err := e.compileRule(rule)
	return err
}

// LoadRule compiles and loads a rule into the engine.
func (e *CustomEngine) LoadRule(rule *domain.CustomRule) error {
	compiled, err := e.compileRule(rule)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.compiled[rule.ID] = compiled
	return nil
}

// ReloadRules replaces all loaded rules with the given set. Disabled
// rules are skipped.
func (e *CustomEngine) ReloadRules(rules []*domain.CustomRule) error {
	next := make(map[string]*compiledRule)
	for _, rule := range rules {
		if !rule.Enabled {
			continue
		}
		compiled, err := e.compileRule(rule)
		if err != nil {
			return err
		}
		next[rule.ID] = compiled
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.compiled = next
	return nil
}

// LoadedRules returns the currently loaded rule configurations.
func (e *CustomEngine) LoadedRules() []*domain.CustomRule {
	e.mu.RLock()
	defer e.mu.RUnlock()

	rules := make([]*domain.CustomRule, 0, len(e.compiled))
	for _, c := range e.compiled {
		rules = append(rules, c.rule)
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].ID < rules[j].ID })
	return rules
}

// RulesCount returns the number of loaded rules.
func (e *CustomEngine) RulesCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.compiled)
}

// Facts are the derived registry values a rule expression can reference.
type Facts struct {
	Registry       *domain.RegistryRecord
	Deposit        int64
	EstimatedValue int64
}

// activation builds the CEL variable bindings for one evaluation.
func (f Facts) activation() map[string]any {
	totalMortgage := f.Registry.TotalMortgage()
	totalPrior := f.Registry.TotalPriorDeposit()
	totalDebt := totalMortgage + totalPrior

	ltv := 0.0
	if f.EstimatedValue > 0 {
		ltv = float64(totalDebt+f.Deposit) / float64(f.EstimatedValue)
	}

	return map[string]any{
		"mortgage_count":      int64(len(f.Registry.Mortgages)),
		"seizure_count":       int64(len(f.Registry.Seizures)),
		"prior_lease_count":   int64(len(f.Registry.PriorLeases)),
		"total_mortgage":      totalMortgage,
		"total_seizure":       f.Registry.TotalSeizure(),
		"total_prior_deposit": totalPrior,
		"total_debt":          totalDebt,
		"deposit":             f.Deposit,
		"estimated_value":     f.EstimatedValue,
		"ltv":                 ltv,
		"address":             f.Registry.PropertyAddress,
		"property_type":       f.Registry.PropertyType,
		"area_sqm":            f.Registry.AreaSqm(),
	}
}

// Evaluate runs all loaded rules against the facts and returns the
// findings of triggered rules plus the points they add. Rules evaluate
// in ID order so repeated calls produce identical finding order. A rule
// that errors at runtime is skipped; it never fails the analysis.
func (e *CustomEngine) Evaluate(facts Facts) ([]domain.RiskFinding, int) {
	e.mu.RLock()
	rules := make([]*compiledRule, 0, len(e.compiled))
	for _, c := range e.compiled {
		rules = append(rules, c)
	}
	e.mu.RUnlock()

	if len(rules) == 0 {
		return nil, 0
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].rule.ID < rules[j].rule.ID })

	activation := facts.activation()

	var findings []domain.RiskFinding
	points := 0
	for _, c := range rules {
		out, _, err := c.program.Eval(activation)
		if err != nil {
			continue
		}
		triggered, ok := out.(types.Bool)
		if !ok || !bool(triggered) {
			continue
		}
		findings = append(findings, domain.RiskFinding{
			Category:    c.rule.Category,
			Severity:    c.rule.Severity,
			Description: c.rule.Description,
		})
		points += c.rule.Points
	}
	return findings, points
}

// Close clears the loaded rules.
func (e *CustomEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.compiled = make(map[string]*compiledRule)
	return nil
}

func (e *CustomEngine) compileRule(rule *domain.CustomRule) (*compiledRule, error) {
	if rule.ID == "" {
		return nil, fmt.Errorf("rule id is required")
	}
	if rule.Points < 0 {
		return nil, fmt.Errorf("rule %s: points must not be negative", rule.ID)
	}

	ast, issues := e.env.Compile(rule.Expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("failed to compile rule %s: %w", rule.ID, issues.Err())
	}

	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("rule %s: expression must return bool, got %s", rule.ID, ast.OutputType())
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create program for rule %s: %w", rule.ID, err)
	}

	return &compiledRule{rule: rule, program: program}, nil
}
