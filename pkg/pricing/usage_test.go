package pricing

import (
	"encoding/json"
	"testing"

	"github.com/fpt/go-promptlab/pkg/message"
)

func TestUsageFromRaw(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected message.TokenUsage
		ok       bool
	}{
		{
			name:     "openai chat completion",
			raw:      `{"usage":{"prompt_tokens":100,"completion_tokens":20,"total_tokens":120,"prompt_tokens_details":{"cached_tokens":40}}}`,
			expected: message.TokenUsage{PromptTokens: 100, CompletionTokens: 20, CachedTokens: 40},
			ok:       true,
		},
		{
			name:     "claude message",
			raw:      `{"usage":{"input_tokens":12,"output_tokens":7}}`,
			expected: message.TokenUsage{PromptTokens: 12, CompletionTokens: 7},
			ok:       true,
		},
		{
			name:     "gemini usage metadata",
			raw:      `{"usageMetadata":{"promptTokenCount":30,"candidatesTokenCount":9,"totalTokenCount":39,"cachedContentTokenCount":5}}`,
			expected: message.TokenUsage{PromptTokens: 30, CompletionTokens: 9, CachedTokens: 5},
			ok:       true,
		},
		{
			name: "no usage",
			raw:  `{"content":"hi"}`,
			ok:   false,
		},
		{
			name: "not json",
			raw:  `garbage`,
			ok:   false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := UsageFromRaw(json.RawMessage(tc.raw))
			if ok != tc.ok {
				t.Fatalf("ok = %v, expected %v", ok, tc.ok)
			}
			if got != tc.expected {
				t.Errorf("UsageFromRaw = %+v, expected %+v", got, tc.expected)
			}
		})
	}
}

func TestFormatCost(t *testing.T) {
	testCases := []struct {
		cost     float64
		expected string
	}{
		{0, "$0.00"},
		{0.0000001, "<$0.000001"},
		{0.00025, "$0.000250"},
		{0.00625, "$0.0063"},
		{1.5, "$1.50"},
	}

	for _, tc := range testCases {
		if got := FormatCost(tc.cost); got != tc.expected {
			t.Errorf("FormatCost(%v) = %q, expected %q", tc.cost, got, tc.expected)
		}
	}
}

func TestFormatTokens(t *testing.T) {
	testCases := []struct {
		tokens   int
		expected string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1.0k"},
		{15320, "15.3k"},
	}

	for _, tc := range testCases {
		if got := FormatTokens(tc.tokens); got != tc.expected {
			t.Errorf("FormatTokens(%d) = %q, expected %q", tc.tokens, got, tc.expected)
		}
	}
}
