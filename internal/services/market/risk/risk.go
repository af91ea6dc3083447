// Package risk scores purchase signals and derives the gate action applied
// at order creation.
package risk

import "strings"

// Action is the recommendation derived from a risk score.
type Action string

const (
	ActionAllow  Action = "allow"
	ActionReview Action = "review"
	ActionBlock  Action = "block"
)

// Signal bundles the fraud signals available at order creation. Missing
// fields degrade to their zero values rather than failing.
type Signal struct {
	Email             string
	Currency          string
	DeviceFingerprint string
}

const baseScore = 0.1

// disposableDomains lists email providers associated with throwaway accounts.
var disposableDomains = map[string]struct{}{
	"mailinator.com":   {},
	"tempmail.com":     {},
	"10minutemail.com": {},
}

// acceptedCurrencies lists currencies that do not add risk.
var acceptedCurrencies = map[string]struct{}{
	"USD": {},
	"EUR": {},
	"GBP": {},
	"JPY": {},
	"AUD": {},
	"CAD": {},
}

// Score maps a signal bundle to a risk score in [0, 1]. It is pure and
// deterministic: the same bundle always yields the same score.
func Score(signal Signal) float64 {
	currency := signal.Currency
	if currency == "" {
		currency = "USD"
	}

	score := baseScore
	if _, risky := disposableDomains[emailDomain(signal.Email)]; risky {
		score += 0.6
	}
	if _, ok := acceptedCurrencies[currency]; !ok {
		score += 0.1
	}
	if signal.DeviceFingerprint == "" {
		score += 0.1
	}

	if score > 1 {
		return 1
	}
	if score < 0 {
		return 0
	}
	return score
}

// ActionFor derives the gate action for a score. The thresholds are
// half-open: score < 0.6 allows, 0.6 <= score < 0.8 reviews, anything
// higher blocks.
func ActionFor(score float64) Action {
	switch {
	case score < 0.6:
		return ActionAllow
	case score < 0.8:
		return ActionReview
	default:
		return ActionBlock
	}
}

// emailDomain extracts the lowercased domain after the last "@", or ""
// when the address has no "@" at all.
func emailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return ""
	}
	return strings.ToLower(email[at+1:])
}
