package app

import (
	"fmt"
	"io"
	"sort"

	"github.com/fpt/go-promptlab/pkg/domain"
	"github.com/fpt/go-promptlab/pkg/pricing"
	"github.com/fpt/go-promptlab/pkg/provider"
	"gonum.org/v1/gonum/stat"
)

// ProviderStats summarizes the settled runs of one provider
type ProviderStats struct {
	ProviderID string
	Succeeded  int
	Failed     int
	Cancelled  int

	LatencyMeanMS   float64
	LatencyStdDevMS float64
	CostMean        float64
	CostStdDev      float64
	CostTotal       float64
	Tokens          int
}

// ComputeStats groups settled scenarios by provider. Latency and cost
// statistics cover succeeded runs only.
func ComputeStats(scenarios []domain.Scenario, registry *provider.Registry) []ProviderStats {
	type samples struct {
		stats   ProviderStats
		latency []float64
		cost    []float64
	}
	byProvider := make(map[string]*samples)

	for _, sc := range scenarios {
		if !sc.State.IsSettled() {
			continue
		}
		id := "unknown"
		if p, ok := registry.ResolveProviderForModel(sc.Model); ok {
			id = p.ID
		}
		s, ok := byProvider[id]
		if !ok {
			s = &samples{stats: ProviderStats{ProviderID: id}}
			byProvider[id] = s
		}

		switch sc.State {
		case domain.StateSucceeded:
			s.stats.Succeeded++
			s.latency = append(s.latency, float64(sc.Latency.Milliseconds()))
			if sc.Cost != nil {
				s.cost = append(s.cost, sc.Cost.TotalCost)
				s.stats.CostTotal += sc.Cost.TotalCost
				s.stats.Tokens += sc.Cost.TotalTokens
			}
		case domain.StateFailed:
			s.stats.Failed++
		case domain.StateCancelled:
			s.stats.Cancelled++
		}
	}

	out := make([]ProviderStats, 0, len(byProvider))
	for _, s := range byProvider {
		s.stats.LatencyMeanMS, s.stats.LatencyStdDevMS = meanStdDev(s.latency)
		s.stats.CostMean, s.stats.CostStdDev = meanStdDev(s.cost)
		out = append(out, s.stats)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProviderID < out[j].ProviderID })
	return out
}

// meanStdDev returns zeros for empty input and a zero deviation for a single sample
func meanStdDev(x []float64) (float64, float64) {
	switch len(x) {
	case 0:
		return 0, 0
	case 1:
		return x[0], 0
	}
	return stat.MeanStdDev(x, nil)
}

// WriteStats renders provider statistics as an aligned table
func WriteStats(w io.Writer, stats []ProviderStats, sessionTotal float64) {
	if len(stats) == 0 {
		fmt.Fprintln(w, "📊 No settled runs yet.")
		return
	}
	fmt.Fprintln(w, "📊 Run statistics:")
	fmt.Fprintf(w, "  %-8s %4s %4s %4s %16s %22s %10s\n", "provider", "ok", "err", "cxl", "latency", "cost", "tokens")
	for _, s := range stats {
		latency := fmt.Sprintf("%.0f±%.0fms", s.LatencyMeanMS, s.LatencyStdDevMS)
		cost := fmt.Sprintf("%s±%s", pricing.FormatCost(s.CostMean), pricing.FormatCost(s.CostStdDev))
		fmt.Fprintf(w, "  %-8s %4d %4d %4d %16s %22s %10s\n",
			s.ProviderID, s.Succeeded, s.Failed, s.Cancelled, latency, cost, pricing.FormatTokens(s.Tokens))
	}
	fmt.Fprintf(w, "  💰 Session total: %s\n", pricing.FormatCost(sessionTotal))
}
