package service

import "onepath_dispatch_backend/internal/dispatch/domain"

// Plan maps intent facts to the ordered stage chain for one request.
//
// The rule table is evaluated in fixed order and yields a subsequence of
// {communication, bundle, calendar, pricing}. Bundle analysis runs before
// pricing because a matched bundle changes what gets priced, and calendar
// runs before pricing so single-visit feasibility can unlock the same-visit
// savings. No stage appears twice.
func Plan(facts domain.IntentFacts) []domain.StageID {
	plan := []domain.StageID{domain.StageCommunication}

	if facts.BundleRequested {
		plan = append(plan, domain.StageBundle)
	}
	if facts.SchedulingRequested || facts.Urgency == domain.UrgencyEmergency || facts.Urgency == domain.UrgencyHigh {
		plan = append(plan, domain.StageCalendar)
	}
	if facts.PricingRequested || facts.BundleRequested {
		plan = append(plan, domain.StagePricing)
	}

	return plan
}

// chainOrder is the canonical execution order of all stages.
var chainOrder = []domain.StageID{
	domain.StageCommunication,
	domain.StageBundle,
	domain.StageCalendar,
	domain.StagePricing,
}

// insertStage returns the plan with the stage added at its canonical chain
// position, so a late-added calendar still runs before pricing and can
// confirm single-visit feasibility. Adding a stage already in the plan is a
// no-op.
func insertStage(plan []domain.StageID, stage domain.StageID) []domain.StageID {
	if planContains(plan, stage) {
		return plan
	}
	out := make([]domain.StageID, 0, len(plan)+1)
	for _, s := range chainOrder {
		if s == stage || planContains(plan, s) {
			out = append(out, s)
		}
	}
	return out
}

func planContains(plan []domain.StageID, stage domain.StageID) bool {
	for _, s := range plan {
		if s == stage {
			return true
		}
	}
	return false
}
