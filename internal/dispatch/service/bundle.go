package service

import (
	"context"

	"onepath_dispatch_backend/internal/dispatch/domain"
	"onepath_dispatch_backend/internal/pricing"
)

// bundleExecutor checks the requested addon set against the bundle
// definition table. A match marks the chain as bundled and hands its
// same-visit bonus to the pricing stage; no match is still a successful
// stage, just with lower confidence.
type bundleExecutor struct {
	catalog *pricing.Catalog
}

func (e *bundleExecutor) ID() domain.StageID { return domain.StageBundle }

func (e *bundleExecutor) Execute(_ context.Context, state *chainState) (domain.StageResult, error) {
	def, matched := e.catalog.MatchBundle(state.facts.ServiceType, state.facts.AdditionalServices)
	if !matched {
		return domain.StageResult{
			Data: map[string]any{
				"bundleMatched": false,
			},
			Confidence: 0.75,
		}, nil
	}

	state.bundleMatched = true
	state.bundleName = def.Name
	state.sameVisitBonus = def.SameVisitBonus
	// A matched bundle implies bundle intent even when the customer never
	// said "bundle". Idempotent; persisted by the orchestrator's merge.
	state.facts.BundleRequested = true

	return domain.StageResult{
		Data: map[string]any{
			"bundleMatched":   true,
			"bundleName":      def.Name,
			"discountPercent": def.DiscountPercent,
			"sameVisitBonus":  def.SameVisitBonus,
			"addons":          append([]string(nil), state.facts.AdditionalServices...),
		},
		Confidence: 0.92,
	}, nil
}
