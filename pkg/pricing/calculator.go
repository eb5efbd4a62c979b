package pricing

import (
	"github.com/fpt/go-promptlab/pkg/domain"
	"github.com/fpt/go-promptlab/pkg/message"
	"github.com/fpt/go-promptlab/pkg/provider"
)

// DefaultFallbackModel prices models missing from the table
const DefaultFallbackModel = "gpt-4o-mini"

const tokensPerMillion = 1_000_000

// Calculator derives cost breakdowns from usage reports
type Calculator struct {
	registry      *provider.Registry
	table         Table
	fallbackModel string
}

// NewCalculator creates a calculator over the default registry and pricing table
func NewCalculator() *Calculator {
	return NewCalculatorWithTable(provider.Default(), DefaultTable(), DefaultFallbackModel)
}

// NewCalculatorWithTable creates a calculator with explicit dependencies.
// An empty or unlisted fallbackModel falls back to DefaultFallbackModel.
func NewCalculatorWithTable(registry *provider.Registry, table Table, fallbackModel string) *Calculator {
	if registry == nil {
		registry = provider.Default()
	}
	if table == nil {
		table = DefaultTable()
	}
	if _, ok := table[fallbackModel]; !ok {
		fallbackModel = DefaultFallbackModel
	}
	return &Calculator{registry: registry, table: table, fallbackModel: fallbackModel}
}

// FallbackModel returns the model whose pricing applies to unlisted models
func (c *Calculator) FallbackModel() string {
	return c.fallbackModel
}

// Lookup returns the pricing entry for a model without applying the fallback
func (c *Calculator) Lookup(modelID string) (ModelPricing, bool) {
	p, ok := c.table[modelID]
	return p, ok
}

// ComputeCost prices a usage report for a model. It never fails: unlisted models are
// priced with the fallback model's rates and flagged in the metadata.
func (c *Calculator) ComputeCost(modelID string, usage message.TokenUsage) domain.Cost {
	usage = message.NewTokenUsage(usage.PromptTokens, usage.CompletionTokens, usage.CachedTokens)

	meta := domain.CostMetadata{Model: modelID, PricedAs: modelID}
	if p, ok := c.registry.ResolveProviderForModel(modelID); ok {
		meta.Provider = p.ID
	}

	pricing, ok := c.table[modelID]
	if !ok {
		pricing = c.table[c.fallbackModel]
		meta.PricedAs = c.fallbackModel
		meta.Fallback = true
	}

	// The tier is chosen on the total prompt size, cached tokens included
	tier := pricing.SelectTier(usage.PromptTokens)
	meta.Tier = tier.Name

	uncached := usage.UncachedPromptTokens()
	cost := domain.Cost{
		InputCost:    perMillion(uncached, tier.Rates.Input),
		CachedCost:   perMillion(usage.CachedTokens, tier.Rates.Cached),
		OutputCost:   perMillion(usage.CompletionTokens, tier.Rates.Output),
		InputTokens:  uncached,
		CachedTokens: usage.CachedTokens,
		OutputTokens: usage.CompletionTokens,
		TotalTokens:  usage.TotalTokens(),
		Metadata:     meta,
	}
	cost.TotalCost = cost.InputCost + cost.CachedCost + cost.OutputCost
	return cost
}

func perMillion(tokens int, rate float64) float64 {
	return float64(tokens) / tokensPerMillion * rate
}
