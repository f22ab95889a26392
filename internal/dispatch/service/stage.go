package service

import (
	"context"

	"onepath_dispatch_backend/internal/availability"
	"onepath_dispatch_backend/internal/dispatch/domain"
	"onepath_dispatch_backend/internal/pricing"
)

// chainState is the working state threaded through one chain run. Stage
// executors read what earlier stages produced and publish their own output
// for later stages; the orchestrator owns persistence.
type chainState struct {
	facts    domain.IntentFacts
	location string

	availability *domain.AvailabilityResult
	// priorSingleVisit carries a single-visit confirmation from an earlier
	// chain run when a follow-up reprices without rerunning the calendar.
	priorSingleVisit bool

	// set by the bundle stage when a bundle definition matched
	bundleMatched  bool
	bundleName     string
	sameVisitBonus float64

	breakdown *domain.PricingBreakdown

	results map[domain.StageID]domain.StageResult
	failed  []domain.StageID
}

func newChainState(facts domain.IntentFacts) *chainState {
	return &chainState{
		facts:   facts,
		results: make(map[domain.StageID]domain.StageResult),
	}
}

// singleVisitConfirmed reports whether the calendar collaborator confirmed a
// single technician/single visit slot during this run or a prior one.
func (s *chainState) singleVisitConfirmed() bool {
	if s.availability != nil {
		return s.availability.SingleVisitPossible
	}
	return s.priorSingleVisit
}

// executor is one unit of the processing chain. Execute returns the stage's
// typed result; an error means the stage failed and the chain continues
// without its output.
type executor interface {
	ID() domain.StageID
	Execute(ctx context.Context, state *chainState) (domain.StageResult, error)
}

// newExecutors builds the static dispatch table mapping stage identifiers to
// their executors.
func newExecutors(catalog *pricing.Catalog, availabilityClient availability.Client) map[domain.StageID]executor {
	table := map[domain.StageID]executor{}
	for _, e := range []executor{
		&communicationExecutor{},
		&bundleExecutor{catalog: catalog},
		&calendarExecutor{client: availabilityClient},
		&pricingExecutor{catalog: catalog},
	} {
		table[e.ID()] = e
	}
	return table
}
