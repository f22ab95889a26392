package service

import (
	"context"

	"onepath_dispatch_backend/internal/dispatch/domain"
	"onepath_dispatch_backend/internal/pricing"
)

// pricingExecutor computes the cost breakdown from the catalog. It runs last
// in the chain so bundle and calendar outcomes can influence the selection.
type pricingExecutor struct {
	catalog *pricing.Catalog
}

func (e *pricingExecutor) ID() domain.StageID { return domain.StagePricing }

func (e *pricingExecutor) Execute(_ context.Context, state *chainState) (domain.StageResult, error) {
	breakdown := e.catalog.Compute(pricing.Selection{
		ServiceType:          state.facts.ServiceType,
		Addons:               state.facts.AdditionalServices,
		Urgency:              state.facts.Urgency,
		SingleVisitConfirmed: state.singleVisitConfirmed(),
		SameVisitBonus:       state.sameVisitBonus,
	})
	state.breakdown = &breakdown

	confidence := 0.95
	if state.facts.ServiceType == domain.ServiceUnknown {
		// Priced off the default table row; the number is a floor, not a quote.
		confidence = 0.7
	}

	data := map[string]any{
		"breakdown": breakdown,
	}
	if state.bundleMatched {
		data["bundleName"] = state.bundleName
	}

	return domain.StageResult{
		Data:       data,
		Confidence: confidence,
	}, nil
}
