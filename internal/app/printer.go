package app

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/fpt/go-promptlab/pkg/dispatch"
	"github.com/fpt/go-promptlab/pkg/domain"
	"github.com/fpt/go-promptlab/pkg/pricing"
	"github.com/fpt/go-promptlab/pkg/provider"
)

// syncWriter serializes writes from the REPL and from dispatch listeners
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// EventPrinter renders coordinator events as they arrive
type EventPrinter struct {
	out      io.Writer
	registry *provider.Registry
	color    bool
}

// NewEventPrinter creates a printer writing to out
func NewEventPrinter(out io.Writer, registry *provider.Registry, color bool) *EventPrinter {
	return &EventPrinter{out: out, registry: registry, color: color}
}

// Handle is suitable for dispatch.Coordinator.Subscribe
func (p *EventPrinter) Handle(ev dispatch.Event) {
	var sb strings.Builder
	name := ev.Scenario.Description

	switch {
	case ev.Err != nil && errors.Is(ev.Err, domain.ErrNoMessages):
		fmt.Fprintf(&sb, "⚠️  %s skipped: %v\n", name, ev.Err)
	case ev.State == domain.StatePending:
		fmt.Fprintf(&sb, "⏳ %s → %s\n", name, ev.Scenario.Model)
	case ev.State == domain.StateSucceeded:
		WriteResponseHeader(&sb, name, ev.Scenario.Model, p.color)
		if ev.Scenario.Result != nil {
			sb.WriteString(strings.TrimRight(ev.Scenario.Result.Content, "\n"))
			sb.WriteString("\n")
		}
		sb.WriteString(UsageLine(ev.Scenario))
		sb.WriteString("\n")
	case ev.State == domain.StateFailed:
		fmt.Fprintf(&sb, "❌ %s failed: %s\n", name, ev.Scenario.Error)
	case ev.State == domain.StateCancelled:
		fmt.Fprintf(&sb, "🛑 %s cancelled\n", name)
	default:
		return
	}

	io.WriteString(p.out, sb.String())
}

// WriteResponseHeader prints the scenario name and model above a response
func WriteResponseHeader(w io.Writer, name, model string, color bool) {
	if color {
		fmt.Fprintf(w, "\x1b[96m── %s (%s) ──\x1b[0m\n", name, model)
		return
	}
	fmt.Fprintf(w, "── %s (%s) ──\n", name, model)
}

// UsageLine summarizes latency, tokens and cost of a settled run
func UsageLine(sc domain.Scenario) string {
	parts := []string{"⏱️  " + formatLatency(sc.Latency)}
	if sc.Cost != nil {
		parts = append(parts,
			fmt.Sprintf("🔢 %s in / %s cached / %s out",
				pricing.FormatTokens(sc.Cost.InputTokens),
				pricing.FormatTokens(sc.Cost.CachedTokens),
				pricing.FormatTokens(sc.Cost.OutputTokens)),
			"💰 "+pricing.FormatCost(sc.Cost.TotalCost))
		if sc.Cost.Metadata.Fallback {
			parts = append(parts, "(priced as "+sc.Cost.Metadata.PricedAs+")")
		}
	} else {
		parts = append(parts, "💰 no usage reported")
	}
	return strings.Join(parts, "  ")
}

// WriteScenarioTable lists scenarios with their run state; current is marked
func WriteScenarioTable(w io.Writer, scenarios []domain.Scenario, current string) {
	if len(scenarios) == 0 {
		fmt.Fprintln(w, "📭 No scenarios. Use /add or /examples to create some.")
		return
	}
	fmt.Fprintf(w, "   %-3s %-8s %-10s %-28s %5s %4s %10s  %s\n", "#", "id", "state", "model", "temp", "msgs", "cost", "description")
	for i, sc := range scenarios {
		marker := " "
		if sc.ID == current {
			marker = "▸"
		}
		cost := "-"
		if sc.Cost != nil {
			cost = pricing.FormatCost(sc.Cost.TotalCost)
		}
		fmt.Fprintf(w, " %s %-3d %-8s %-10s %-28s %5.1f %4d %10s  %s\n",
			marker, i+1, label(sc), sc.State, sc.Model, sc.Temperature,
			len(sc.DispatchableMessages()), cost, sc.Description)
	}
}

// WriteScenarioDetail prints one scenario including how each role will be sent
func WriteScenarioDetail(w io.Writer, sc domain.Scenario, registry *provider.Registry) {
	fmt.Fprintf(w, "📝 %s\n", sc.Description)
	fmt.Fprintf(w, "  id:          %s\n", sc.ID)

	providerName := "unknown provider"
	if p, ok := registry.ResolveProviderForModel(sc.Model); ok {
		providerName = p.Name
	}
	fmt.Fprintf(w, "  model:       %s (%s)\n", sc.Model, providerName)
	if registry.ModelSupportsTemperature(sc.Model) {
		fmt.Fprintf(w, "  temperature: %.1f\n", sc.Temperature)
	} else {
		fmt.Fprintln(w, "  temperature: n/a (not supported by this model)")
	}

	fmt.Fprintln(w, "  messages:")
	for i, m := range sc.Messages {
		content := m.Content
		if m.IsBlank() {
			content = "(empty, not sent)"
		}
		line := fmt.Sprintf("    %d. [%s] %s", i+1, m.Role, content)
		if info := registry.DescribeRoleMapping(m.Role, sc.Model); info.Converted {
			line += fmt.Sprintf("  ↪ will be sent as %q to %s", info.ConvertedTo, info.ProviderName)
		}
		fmt.Fprintln(w, line)
	}

	fmt.Fprintf(w, "  state:       %s\n", sc.State)
	switch sc.State {
	case domain.StateSucceeded:
		if sc.Result != nil {
			fmt.Fprintf(w, "  response (%s):\n%s\n", sc.Result.Model, indent(sc.Result.Content, "    "))
		}
		fmt.Fprintf(w, "  %s\n", UsageLine(sc))
		if sc.Cost != nil {
			fmt.Fprintf(w, "  cost: input %s · cached %s · output %s · tier %s\n",
				pricing.FormatCost(sc.Cost.InputCost),
				pricing.FormatCost(sc.Cost.CachedCost),
				pricing.FormatCost(sc.Cost.OutputCost),
				sc.Cost.Metadata.Tier)
		}
	case domain.StateFailed:
		fmt.Fprintf(w, "  error:       %s\n", sc.Error)
	}
}

func indent(text, prefix string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
