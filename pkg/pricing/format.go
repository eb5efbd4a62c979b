package pricing

import "fmt"

// FormatCost renders a currency amount with precision suited to its magnitude
func FormatCost(cost float64) string {
	switch {
	case cost == 0:
		return "$0.00"
	case cost < 0.000001:
		return "<$0.000001"
	case cost < 0.001:
		return fmt.Sprintf("$%.6f", cost)
	case cost < 0.01:
		return fmt.Sprintf("$%.4f", cost)
	default:
		return fmt.Sprintf("$%.2f", cost)
	}
}

// FormatTokens renders a token count, abbreviating thousands
func FormatTokens(tokens int) string {
	if tokens >= 1000 {
		return fmt.Sprintf("%.1fk", float64(tokens)/1000)
	}
	return fmt.Sprintf("%d", tokens)
}
