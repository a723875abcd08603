package generation

// Budget bounds a single generation call.
type Budget struct {
	MaxTokens   int     `json:"maxTokens" toml:"max_tokens"`
	Temperature float64 `json:"temperature" toml:"temperature"`
}

// Budgets holds the per-mode generation budgets. Assessment budgets are short
// and low temperature; content generation is long and more creative.
type Budgets struct {
	Learning         Budget
	Practice         Budget
	AssessmentSoft   Budget
	AssessmentStrict Budget
	Content          Budget
}

// DefaultBudgets returns the stock budgets.
func DefaultBudgets() Budgets {
	return Budgets{
		Learning:         Budget{MaxTokens: 1000, Temperature: 0.7},
		Practice:         Budget{MaxTokens: 500, Temperature: 0.7},
		AssessmentSoft:   Budget{MaxTokens: 150, Temperature: 0.3},
		AssessmentStrict: Budget{MaxTokens: 100, Temperature: 0.3},
		Content:          Budget{MaxTokens: 2000, Temperature: 0.8},
	}
}
