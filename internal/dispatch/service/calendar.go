package service

import (
	"context"

	"onepath_dispatch_backend/internal/availability"
	"onepath_dispatch_backend/internal/dispatch/domain"
)

// calendarExecutor asks the availability collaborator for bookable slots.
// A collaborator error or timeout fails the stage; the orchestrator records
// it and the chain continues without slot data.
type calendarExecutor struct {
	client availability.Client
}

func (e *calendarExecutor) ID() domain.StageID { return domain.StageCalendar }

func (e *calendarExecutor) Execute(ctx context.Context, state *chainState) (domain.StageResult, error) {
	result, err := e.client.CheckAvailability(ctx, state.facts.ServiceType, state.facts.Urgency, state.location)
	if err != nil {
		return domain.StageResult{}, err
	}

	state.availability = &result

	data := map[string]any{
		"slots":               result.Slots,
		"slotCount":           len(result.Slots),
		"singleVisitPossible": result.SingleVisitPossible,
	}
	if result.EarliestAvailable != nil {
		data["earliestAvailable"] = *result.EarliestAvailable
	}
	if result.RecommendedSlot != nil {
		data["recommendedSlot"] = *result.RecommendedSlot
	}

	confidence := 0.88
	if len(result.Slots) == 0 {
		confidence = 0.6
	}

	return domain.StageResult{
		Data:       data,
		Confidence: confidence,
	}, nil
}
