package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/fpt/go-promptlab/pkg/domain"
	"github.com/fpt/go-promptlab/pkg/pricing"
	"github.com/fpt/go-promptlab/pkg/provider"
	diff "github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
)

// CompareMeta is the one-line summary shown above a scenario's response in a comparison
func CompareMeta(sc domain.Scenario, registry *provider.Registry) string {
	temp := "n/a"
	if registry.ModelSupportsTemperature(sc.Model) {
		temp = fmt.Sprintf("%.1f", sc.Temperature)
	}

	parts := []string{sc.Model, "temp " + temp}
	if sc.Latency > 0 {
		parts = append(parts, formatLatency(sc.Latency))
	}
	if sc.Cost != nil {
		parts = append(parts, pricing.FormatCost(sc.Cost.TotalCost), pricing.FormatTokens(sc.Cost.TotalTokens)+" tokens")
	}
	return strings.Join(parts, " · ")
}

// CompareScenarios renders both meta lines and a unified diff of the two responses.
// A scenario without a result is compared as an empty response.
func CompareScenarios(a, b domain.Scenario, registry *provider.Registry) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "A: %s [%s]\n", a.Description, CompareMeta(a, registry))
	fmt.Fprintf(&sb, "B: %s [%s]\n", b.Description, CompareMeta(b, registry))

	left, right := responseText(a), responseText(b)
	if left == right {
		sb.WriteString("(responses are identical)\n")
		return sb.String()
	}

	edits := myers.ComputeEdits("", left, right)
	unified := diff.ToUnified("a/"+label(a), "b/"+label(b), left, edits)
	sb.WriteString(fmt.Sprint(unified))
	return sb.String()
}

func responseText(sc domain.Scenario) string {
	if sc.Result == nil {
		return ""
	}
	text := sc.Result.Content
	if text != "" && !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	return text
}

func label(sc domain.Scenario) string {
	if len(sc.ID) > 8 {
		return sc.ID[:8]
	}
	return sc.ID
}

func formatLatency(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
