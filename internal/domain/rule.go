package domain

// CustomRule is an operator-defined risk rule evaluated after the
// built-in registry rules. The expression is CEL over derived registry
// facts and must produce a bool; a triggered rule appends one finding
// and adds Points to the score, so custom rules keep the score's
// add-only accumulation.
type CustomRule struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Severity    Severity `json:"severity"`
	Points      int      `json:"points"`
	Expression  string   `json:"expression"`
	Description string   `json:"description"`
	Enabled     bool     `json:"enabled"`
}
