package app

import (
	"strings"
	"testing"
	"time"

	"github.com/fpt/go-promptlab/pkg/domain"
	"github.com/fpt/go-promptlab/pkg/provider"
)

func scenarioWithResult(id, model, content string) domain.Scenario {
	sc := domain.NewScenario(id, "scenario "+id)
	sc.Model = model
	sc.Temperature = 0.7
	sc.State = domain.StateSucceeded
	sc.Result = &domain.Result{Content: content, Model: model}
	sc.Latency = 250 * time.Millisecond
	sc.Cost = &domain.Cost{TotalCost: 0.00625, TotalTokens: 1500}
	return sc
}

func TestCompareMeta(t *testing.T) {
	registry := provider.Default()

	testCases := []struct {
		name     string
		model    string
		expected string
	}{
		{"temperature supported", "gpt-4o", "gpt-4o · temp 0.7 · 250ms · $0.0063 · 1.5k tokens"},
		{"temperature unsupported", "gpt-5", "gpt-5 · temp n/a · 250ms · $0.0063 · 1.5k tokens"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := CompareMeta(scenarioWithResult("x", tc.model, "hi"), registry)
			if got != tc.expected {
				t.Errorf("CompareMeta = %q, expected %q", got, tc.expected)
			}
		})
	}
}

func TestCompareScenarios(t *testing.T) {
	registry := provider.Default()
	a := scenarioWithResult("aaaaaaaa-1", "gpt-4o", "line one\nshared\n")
	b := scenarioWithResult("bbbbbbbb-2", "gemini-2.5-flash", "line two\nshared")

	out := CompareScenarios(a, b, registry)

	for _, want := range []string{"A: scenario aaaaaaaa-1", "--- a/aaaaaaaa", "+++ b/bbbbbbbb", "-line one", "+line two", " shared"} {
		if !strings.Contains(out, want) {
			t.Errorf("comparison missing %q:\n%s", want, out)
		}
	}
}

func TestCompareScenarios_Identical(t *testing.T) {
	registry := provider.Default()
	a := scenarioWithResult("a", "gpt-4o", "same")
	b := scenarioWithResult("b", "gpt-4o-mini", "same\n")

	if out := CompareScenarios(a, b, registry); !strings.Contains(out, "responses are identical") {
		t.Errorf("expected identical notice, got:\n%s", out)
	}
}
