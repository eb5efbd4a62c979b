package pricing

// Rates are prices in currency units per one million tokens
type Rates struct {
	Input  float64 `json:"input"`
	Cached float64 `json:"cached"`
	Output float64 `json:"output"`
}

// Tier names reported in cost metadata
const (
	TierStandard  = "standard"
	TierUnder200k = "under_200k"
	TierOver200k  = "over_200k"
	TierText      = "text"
	TierAudio     = "audio"
)

// LongContextThreshold is the prompt size above which tiered models switch brackets
const LongContextThreshold = 200_000

// Tier is a pricing bracket selected by prompt size
type Tier struct {
	Name string
	// MaxPromptTokens is the inclusive upper bound; 0 means unbounded
	MaxPromptTokens int
	Rates           Rates
}

// ModelPricing is the pricing entry for one model
type ModelPricing struct {
	Provider string
	// Tiers are ordered by MaxPromptTokens; a flat model has a single unbounded tier
	Tiers []Tier
	// Modalities hold per-modality rates; text is used when present
	Modalities map[string]Rates

	// Informational rates not applied by ComputeCost
	CacheWrite5m        float64
	CacheWrite1h        float64
	CacheStoragePerHour float64
	GroundingPer1k      float64
}

// SelectTier returns the bracket that applies to the given prompt size
func (p ModelPricing) SelectTier(promptTokens int) Tier {
	// Only text input is dispatched, so modality-priced models use text rates
	if rates, ok := p.Modalities[TierText]; ok {
		return Tier{Name: TierText, Rates: rates}
	}
	for _, t := range p.Tiers {
		if t.MaxPromptTokens == 0 || promptTokens <= t.MaxPromptTokens {
			return t
		}
	}
	if len(p.Tiers) > 0 {
		return p.Tiers[len(p.Tiers)-1]
	}
	return Tier{Name: TierStandard}
}

func flat(provider string, input, cached, output float64) ModelPricing {
	return ModelPricing{
		Provider: provider,
		Tiers:    []Tier{{Name: TierStandard, Rates: Rates{Input: input, Cached: cached, Output: output}}},
	}
}

func claude(baseInput, write5m, write1h, hits, output float64) ModelPricing {
	p := flat("claude", baseInput, hits, output)
	p.CacheWrite5m = write5m
	p.CacheWrite1h = write1h
	return p
}

// Table maps model ids to pricing entries
type Table map[string]ModelPricing

// DefaultTable returns the built-in pricing, per million tokens
func DefaultTable() Table {
	return Table{
		// OpenAI
		"gpt-5":       flat("openai", 1.25, 0.125, 10.00),
		"gpt-5-mini":  flat("openai", 0.25, 0.025, 2.00),
		"gpt-5-nano":  flat("openai", 0.05, 0.005, 0.40),
		"gpt-4o":      flat("openai", 2.50, 1.25, 10.00),
		"gpt-4o-mini": flat("openai", 0.15, 0.075, 0.60),
		"gpt-4o-nano": flat("openai", 0.15, 0.075, 0.60),

		// Claude: cached is the cache-hit rate
		"claude-opus-4-1-20250805":   claude(15.00, 18.75, 30.00, 1.50, 75.00),
		"claude-opus-4-20250514":     claude(15.00, 18.75, 30.00, 1.50, 75.00),
		"claude-sonnet-4-20250514":   claude(3.00, 3.75, 6.00, 0.30, 15.00),
		"claude-3-7-sonnet-20250219": claude(3.00, 3.75, 6.00, 0.30, 15.00),

		// Gemini
		"gemini-2.5-pro": {
			Provider: "gemini",
			Tiers: []Tier{
				{Name: TierUnder200k, MaxPromptTokens: LongContextThreshold, Rates: Rates{Input: 1.25, Cached: 0.31, Output: 10.00}},
				{Name: TierOver200k, Rates: Rates{Input: 2.50, Cached: 0.625, Output: 15.00}},
			},
			CacheStoragePerHour: 4.50,
			GroundingPer1k:      35.00,
		},
		"gemini-2.5-flash": {
			Provider: "gemini",
			Modalities: map[string]Rates{
				TierText:  {Input: 0.30, Cached: 0.075, Output: 2.50},
				TierAudio: {Input: 1.00, Cached: 0.25, Output: 2.50},
			},
			CacheStoragePerHour: 1.00,
			GroundingPer1k:      35.00,
		},
	}
}
