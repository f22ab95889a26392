package domain

import "sort"

// IntentFacts is the structured extraction result from one pass over a
// customer message. At most one service type and one urgency are set per
// pass; addon identifiers form a deduplicated set.
type IntentFacts struct {
	ServiceType         ServiceType `json:"serviceType"`
	Urgency             Urgency     `json:"urgency"`
	AdditionalServices  []string    `json:"additionalServices,omitempty"`
	BundleRequested     bool        `json:"bundleRequested"`
	PricingRequested    bool        `json:"pricingRequested"`
	SchedulingRequested bool        `json:"schedulingRequested"`
}

// NewIntentFacts returns facts with every field unset.
func NewIntentFacts() IntentFacts {
	return IntentFacts{
		ServiceType: ServiceUnknown,
		Urgency:     UrgencyUnset,
	}
}

// HasAddons reports whether any additional service was requested.
func (f IntentFacts) HasAddons() bool {
	return len(f.AdditionalServices) > 0
}

// Merge combines freshly extracted facts into stored facts.
//
// Set fields in next overwrite the stored value; unset fields (unknown
// service type, unset urgency, false flags) never erase prior knowledge.
// AdditionalServices is the union of both sets: the addon set only ever
// grows across turns, there is no removal intent.
func (f IntentFacts) Merge(next IntentFacts) IntentFacts {
	merged := f

	if next.ServiceType != ServiceUnknown && next.ServiceType != "" {
		merged.ServiceType = next.ServiceType
	}
	if next.Urgency != UrgencyUnset && next.Urgency != "" {
		merged.Urgency = next.Urgency
	}
	merged.AdditionalServices = unionSorted(f.AdditionalServices, next.AdditionalServices)
	merged.BundleRequested = f.BundleRequested || next.BundleRequested
	merged.PricingRequested = f.PricingRequested || next.PricingRequested
	merged.SchedulingRequested = f.SchedulingRequested || next.SchedulingRequested

	return merged
}

// Clone returns a deep copy of the facts.
func (f IntentFacts) Clone() IntentFacts {
	c := f
	if f.AdditionalServices != nil {
		c.AdditionalServices = append([]string(nil), f.AdditionalServices...)
	}
	return c
}

func unionSorted(a, b []string) []string {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(a)+len(b))
	for _, s := range a {
		seen[s] = struct{}{}
	}
	for _, s := range b {
		seen[s] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
