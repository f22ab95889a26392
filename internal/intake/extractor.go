// Package intake turns free-text customer messages into typed intent facts.
//
// Extraction is pure, total, and deterministic: pattern categories are
// evaluated independently, and inside each category the first matching
// pattern in declaration order wins. The same text always yields the same
// facts, which keeps chain planning replayable and testable. The extractor
// is deliberately rule based; a smarter classifier can replace it without
// touching the orchestrator contract.
package intake

import (
	"regexp"
	"strings"

	"onepath_dispatch_backend/internal/dispatch/domain"
)

// pattern matches either a whole word or a multi-word phrase.
// Single words are bounded so "ac" never fires inside "package".
type pattern struct {
	phrase string
	word   *regexp.Regexp
}

func newPattern(p string) pattern {
	if strings.Contains(p, " ") {
		return pattern{phrase: p}
	}
	return pattern{word: regexp.MustCompile(`\b` + regexp.QuoteMeta(p) + `\b`)}
}

func (p pattern) matches(text string) bool {
	if p.word != nil {
		return p.word.MatchString(text)
	}
	return strings.Contains(text, p.phrase)
}

func newPatterns(ps ...string) []pattern {
	out := make([]pattern, len(ps))
	for i, p := range ps {
		out[i] = newPattern(p)
	}
	return out
}

// Category tables. Declaration order is the priority order: the first
// matching row wins and the rest of the category is not consulted.

var serviceTypePatterns = []struct {
	service  domain.ServiceType
	patterns []pattern
}{
	{domain.ServiceACRepair, newPatterns("ac", "air conditioning", "cooling", "hvac", "conditioner")},
	{domain.ServiceHeating, newPatterns("heat", "heating", "furnace", "boiler", "warm")},
	{domain.ServicePlumbing, newPatterns("plumb", "plumbing", "water", "leak", "pipe", "drain", "toilet")},
	{domain.ServiceElectrical, newPatterns("electric", "electrical", "power", "outlet", "wiring", "lights")},
}

var urgencyPatterns = []struct {
	urgency  domain.Urgency
	patterns []pattern
}{
	{domain.UrgencyEmergency, newPatterns("emergency", "urgent", "asap", "immediately", "right away")},
	{domain.UrgencyHigh, newPatterns("this week", "soon", "quickly", "today", "tomorrow", "broken", "not working")},
	{domain.UrgencyNormal, newPatterns("convenient", "schedule", "when possible")},
	{domain.UrgencyLow, newPatterns("whenever", "no rush", "flexible")},
}

// Addon identifiers accumulate; every matching row contributes.
var addonPatterns = []struct {
	addon    string
	patterns []pattern
}{
	{"thermostat_install", newPatterns("thermostat")},
	{"duct_cleaning", newPatterns("duct", "ducts", "air duct")},
	{"filter_replacement", newPatterns("filter", "filters")},
	{"water_heater_flush", newPatterns("water heater")},
	{"surge_protection", newPatterns("surge", "surge protector")},
}

var bundleIndicators = newPatterns("add", "also", "too", "bundle", "package", "plus", "include")

// A repair request implies a quote; "fix" and "repair" count as pricing
// intent so dispatch always answers with numbers.
var pricingIndicators = newPatterns("cost", "price", "how much", "quote", "estimate", "expensive", "fix", "repair")

var schedulingIndicators = newPatterns("when", "schedule", "appointment", "time", "available", "this week", "today", "tomorrow")

// Extract derives intent facts from a customer message.
// Always returns a value; unmatched categories stay unknown/unset.
func Extract(text string) domain.IntentFacts {
	facts := domain.NewIntentFacts()
	lower := strings.ToLower(text)

	for _, row := range serviceTypePatterns {
		if anyMatch(lower, row.patterns) {
			facts.ServiceType = row.service
			break
		}
	}

	for _, row := range urgencyPatterns {
		if anyMatch(lower, row.patterns) {
			facts.Urgency = row.urgency
			break
		}
	}

	for _, row := range addonPatterns {
		if anyMatch(lower, row.patterns) {
			facts.AdditionalServices = append(facts.AdditionalServices, row.addon)
		}
	}

	facts.BundleRequested = anyMatch(lower, bundleIndicators)
	facts.PricingRequested = anyMatch(lower, pricingIndicators)
	facts.SchedulingRequested = anyMatch(lower, schedulingIndicators)

	return facts
}

func anyMatch(text string, patterns []pattern) bool {
	for _, p := range patterns {
		if p.matches(text) {
			return true
		}
	}
	return false
}
