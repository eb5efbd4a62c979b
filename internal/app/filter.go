package app

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/fpt/go-promptlab/pkg/domain"
	"github.com/fpt/go-promptlab/pkg/provider"
)

// FilterEnv is the set of scenario fields a filter expression can reference,
// e.g. `provider == "claude" && state == "failed"` or `cost > 0.001`.
type FilterEnv struct {
	ID          string  `expr:"id"`
	Description string  `expr:"description"`
	Model       string  `expr:"model"`
	Provider    string  `expr:"provider"`
	Temperature float64 `expr:"temperature"`
	State       string  `expr:"state"`
	Messages    int     `expr:"messages"`
	Cost        float64 `expr:"cost"`
	Tokens      int     `expr:"tokens"`
	LatencyMS   int64   `expr:"latency_ms"`
	Error       string  `expr:"error"`
}

// NewFilterEnv flattens a scenario into the filter environment
func NewFilterEnv(sc domain.Scenario, registry *provider.Registry) FilterEnv {
	env := FilterEnv{
		ID:          sc.ID,
		Description: sc.Description,
		Model:       sc.Model,
		Temperature: sc.Temperature,
		State:       string(sc.State),
		Messages:    len(sc.DispatchableMessages()),
		LatencyMS:   sc.Latency.Milliseconds(),
		Error:       sc.Error,
	}
	if p, ok := registry.ResolveProviderForModel(sc.Model); ok {
		env.Provider = p.ID
	}
	if sc.Cost != nil {
		env.Cost = sc.Cost.TotalCost
		env.Tokens = sc.Cost.TotalTokens
	}
	return env
}

// Filter is a compiled boolean expression over FilterEnv
type Filter struct {
	source  string
	program *vm.Program
}

// CompileFilter compiles expression, rejecting anything that does not evaluate to a bool
func CompileFilter(expression string) (*Filter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, fmt.Errorf("empty filter expression")
	}
	program, err := expr.Compile(expression, expr.Env(FilterEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("failed to compile filter '%s': %w", expression, err)
	}
	return &Filter{source: expression, program: program}, nil
}

// String returns the expression source
func (f *Filter) String() string {
	return f.source
}

// Match evaluates the filter against one scenario
func (f *Filter) Match(env FilterEnv) (bool, error) {
	out, err := expr.Run(f.program, env)
	if err != nil {
		return false, fmt.Errorf("failed to evaluate filter '%s': %w", f.source, err)
	}
	matched, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("filter '%s' returned %T, expected bool", f.source, out)
	}
	return matched, nil
}

// Select returns the scenarios the filter accepts. Evaluation errors count as no match.
func (f *Filter) Select(scenarios []domain.Scenario, registry *provider.Registry) []domain.Scenario {
	var out []domain.Scenario
	for _, sc := range scenarios {
		if ok, err := f.Match(NewFilterEnv(sc, registry)); err == nil && ok {
			out = append(out, sc)
		}
	}
	return out
}
