package visibility

// Evaluator decides whether a rule holds for one dataset row. The column
// computer applies it across the whole dataset to decide whether a
// conditional column stays visible.
type Evaluator interface {
	Eval(columnKey, rule string, ctx Context) (bool, error)
}

// Context provides the inputs for one evaluation. Values holds the current
// row keyed by column key (nested records become nested maps) while Extras
// carries render-wide data such as global settings or feature flags.
type Context struct {
	Values map[string]any
	Extras map[string]any
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(columnKey, rule string, ctx Context) (bool, error)

// Eval delegates to the underlying function.
func (fn EvaluatorFunc) Eval(columnKey, rule string, ctx Context) (bool, error) {
	return fn(columnKey, rule, ctx)
}
