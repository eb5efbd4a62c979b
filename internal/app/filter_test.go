package app

import (
	"strings"
	"testing"
	"time"

	"github.com/fpt/go-promptlab/pkg/domain"
	"github.com/fpt/go-promptlab/pkg/message"
	"github.com/fpt/go-promptlab/pkg/provider"
)

func TestCompileFilter_Rejects(t *testing.T) {
	testCases := []struct {
		name       string
		expression string
	}{
		{"empty", "  "},
		{"syntax error", "cost >"},
		{"not a bool", "cost * 2"},
		{"unknown field", "vendor == \"openai\""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := CompileFilter(tc.expression); err == nil {
				t.Errorf("CompileFilter(%q) should fail", tc.expression)
			}
		})
	}
}

func TestFilter_Match(t *testing.T) {
	registry := provider.Default()
	sc := domain.NewScenario("abc", "Claude terse")
	sc.Model = "claude-sonnet-4-20250514"
	sc.Messages = []message.Message{message.NewMessage(message.RoleUser, "hi"), message.NewMessage(message.RoleUser, " ")}
	sc.State = domain.StateSucceeded
	sc.Latency = 1500 * time.Millisecond
	sc.Cost = &domain.Cost{TotalCost: 0.002, TotalTokens: 300}

	env := NewFilterEnv(sc, registry)

	testCases := []struct {
		expression string
		expected   bool
	}{
		{`provider == "claude"`, true},
		{`provider == "openai"`, false},
		{`state == "succeeded" && cost > 0.001`, true},
		{`tokens >= 300 && latency_ms > 1000`, true},
		{`messages == 1`, true},
		{`description contains "terse"`, true},
		{`model startsWith "gpt"`, false},
		{`error != ""`, false},
	}

	for _, tc := range testCases {
		t.Run(tc.expression, func(t *testing.T) {
			f, err := CompileFilter(tc.expression)
			if err != nil {
				t.Fatalf("CompileFilter: %v", err)
			}
			got, err := f.Match(env)
			if err != nil {
				t.Fatalf("Match: %v", err)
			}
			if got != tc.expected {
				t.Errorf("Match = %v, expected %v", got, tc.expected)
			}
		})
	}
}

func TestFilter_Select(t *testing.T) {
	registry := provider.Default()
	a := domain.NewScenario("a", "openai")
	b := domain.NewScenario("b", "gemini")
	b.Model = "gemini-2.5-flash"

	f, err := CompileFilter(`provider == "gemini"`)
	if err != nil {
		t.Fatalf("CompileFilter: %v", err)
	}
	got := f.Select([]domain.Scenario{a, b}, registry)
	if len(got) != 1 || got[0].ID != "b" {
		t.Errorf("Select = %+v, expected only b", got)
	}
	if !strings.Contains(f.String(), "gemini") {
		t.Errorf("String() = %q", f.String())
	}
}
