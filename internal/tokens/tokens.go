// Package tokens estimates AI usage cost and maintains user token balances.
// A "token" here is the abstract billing unit debited from a user's balance,
// not a language-model sub-word token.
package tokens

import (
	"encoding/json"
	"strings"
)

// Characters-per-token ratio for the rough size-based estimate. Good enough
// for billing a free-tier quota, not for exact model accounting.
const charsPerToken = 4

// CountWords returns the number of whitespace-separated words in s.
// Blank input counts as zero.
func CountWords(s string) int {
	return len(strings.Fields(strings.TrimSpace(s)))
}

// EstimateJSON estimates a usage cost from the JSON serialization of v,
// rounded up: ceil(len(serialized) / 4). Returns 0 if v cannot be marshalled.
func EstimateJSON(v any) int {
	b, err := json.Marshal(v)
	if err != nil {
		return 0
	}
	return (len(b) + charsPerToken - 1) / charsPerToken
}

// Debit subtracts cost from balance, clamping at zero. The balance invariant
// is that it is always a non-negative integer.
func Debit(balance, cost int) int {
	next := balance - cost
	if next < 0 {
		return 0
	}
	return next
}

// Credit adds amount to balance. Applied only after the payment gateway has
// verified the payment as successful.
func Credit(balance, amount int) int {
	return balance + amount
}
