package analysis

import "context"

// Analyzer is the outbound port to the inference backend. One call, one
// result or one typed failure; implementations never retry and never touch
// shared state.
type Analyzer interface {
	Analyze(ctx context.Context, req Request) (*Result, error)
}
