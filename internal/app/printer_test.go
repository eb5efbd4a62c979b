package app

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fpt/go-promptlab/pkg/dispatch"
	"github.com/fpt/go-promptlab/pkg/domain"
	"github.com/fpt/go-promptlab/pkg/provider"
)

func TestEventPrinter_Handle(t *testing.T) {
	succeededSc := scenarioWithResult("s", "gpt-4o", "the answer")
	failedSc := domain.NewScenario("f", "broken")
	failedSc.State = domain.StateFailed
	failedSc.Error = "Incorrect API key provided"
	blank := domain.NewScenario("b", "blank")

	testCases := []struct {
		name     string
		event    dispatch.Event
		expected []string
	}{
		{
			name:     "pending",
			event:    dispatch.Event{ScenarioID: "p", State: domain.StatePending, Scenario: domain.NewScenario("p", "waiting")},
			expected: []string{"⏳ waiting → gpt-4o-mini"},
		},
		{
			name:     "succeeded",
			event:    dispatch.Event{ScenarioID: "s", State: domain.StateSucceeded, Scenario: succeededSc},
			expected: []string{"── scenario s (gpt-4o) ──", "the answer", "250ms", "💰 $0.0063"},
		},
		{
			name:     "failed",
			event:    dispatch.Event{ScenarioID: "f", State: domain.StateFailed, Scenario: failedSc},
			expected: []string{"❌ broken failed: Incorrect API key provided"},
		},
		{
			name:     "cancelled",
			event:    dispatch.Event{ScenarioID: "c", State: domain.StateCancelled, Scenario: domain.NewScenario("c", "slow")},
			expected: []string{"🛑 slow cancelled"},
		},
		{
			name:     "skipped",
			event:    dispatch.Event{ScenarioID: "b", State: domain.StateIdle, Scenario: blank, Err: domain.NewNoMessagesError()},
			expected: []string{"blank skipped: at least one message required"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			NewEventPrinter(&buf, provider.Default(), false).Handle(tc.event)
			for _, want := range tc.expected {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output missing %q:\n%s", want, buf.String())
				}
			}
		})
	}
}

func TestUsageLine_Fallback(t *testing.T) {
	sc := domain.NewScenario("x", "x")
	sc.Latency = 2 * time.Second
	if got := UsageLine(sc); !strings.Contains(got, "2.0s") || !strings.Contains(got, "no usage reported") {
		t.Errorf("UsageLine without cost = %q", got)
	}

	sc.Cost = &domain.Cost{TotalCost: 0.01, Metadata: domain.CostMetadata{Fallback: true, PricedAs: "gpt-4o-mini"}}
	if got := UsageLine(sc); !strings.Contains(got, "(priced as gpt-4o-mini)") {
		t.Errorf("UsageLine with fallback = %q", got)
	}
}

func TestWriteScenarioTable(t *testing.T) {
	var buf bytes.Buffer
	WriteScenarioTable(&buf, nil, "")
	if !strings.Contains(buf.String(), "No scenarios") {
		t.Errorf("unexpected empty table %q", buf.String())
	}

	buf.Reset()
	a := domain.NewScenario("aaaaaaaa-1111", "first")
	b := scenarioWithResult("bbbbbbbb-2222", "gpt-4o", "hi")
	WriteScenarioTable(&buf, []domain.Scenario{a, b}, b.ID)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got:\n%s", buf.String())
	}
	if !strings.Contains(lines[2], "▸") || strings.Contains(lines[1], "▸") {
		t.Errorf("current marker misplaced:\n%s", buf.String())
	}
	if !strings.Contains(lines[2], "$0.0063") || !strings.Contains(lines[1], "aaaaaaaa") {
		t.Errorf("unexpected rows:\n%s", buf.String())
	}
}
