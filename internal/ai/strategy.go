package ai

// Strategy tags the search tier requested from the AI worker. The tags travel
// opaquely with each move request; what they mean is the agent's business.
type Strategy string

const (
	StrategyFastHeuristic Strategy = "fast-heuristic"
	StrategyExactSearch   Strategy = "exact-search"
	StrategyHybridSearch  Strategy = "hybrid-search"
)

// StrategyForDifficulty maps a client-supplied difficulty label to a strategy
// tier. Unrecognized labels fall back to exact search instead of failing.
func StrategyForDifficulty(label string) Strategy {
	switch label {
	case "easy":
		return StrategyFastHeuristic
	case "medium":
		return StrategyExactSearch
	case "hard":
		return StrategyHybridSearch
	default:
		return StrategyExactSearch
	}
}
