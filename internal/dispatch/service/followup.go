package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"onepath_dispatch_backend/internal/dispatch/domain"
	"onepath_dispatch_backend/internal/events"
	"onepath_dispatch_backend/internal/intake"
)

// Follow-up intents, in classification priority order.
const (
	intentBundleRequest       = "bundle_request"
	intentPricingQuery        = "pricing_query"
	intentSchedulingChange    = "scheduling_change"
	intentServiceModification = "service_modification"
	intentClarification       = "clarification"
	intentGeneral             = "general"
)

// SubmitFollowup merges a follow-up message into an existing conversation
// and routes it to exactly one best-fit stage. Follow-ups are incremental
// refinements; rerunning the whole chain could overwrite an already
// confirmed slot. When the routed stage changes what needs paying for, an
// incremental re-price runs afterwards.
func (s *Service) SubmitFollowup(ctx context.Context, requestID, text string) (*domain.Response, error) {
	text, err := s.cleanMessage(text)
	if err != nil {
		return nil, err
	}

	facts := intake.Extract(text)
	intent := classifyFollowup(facts, text)
	routed := routeFollowup(intent)

	updated, err := s.store.Update(ctx, requestID, func(c *domain.Context) error {
		c.RawHistory = append(c.RawHistory, domain.Message{
			Role:      "user",
			Text:      text,
			Timestamp: time.Now(),
			Metadata:  map[string]any{"followupIntent": intent},
		})
		c.Entities = c.Entities.Merge(facts)
		c.Status = domain.StatusProcessing
		c.UpdatedAt = time.Now()
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := s.runFollowup(ctx, updated, routed)

	s.eventBus.Publish(ctx, events.FollowupProcessed{
		BaseEvent: events.NewBaseEvent(),
		RequestID: requestID,
		Intent:    intent,
		Stage:     string(routed),
	})

	return resp, nil
}

// runFollowup executes the routed stage (plus an incremental re-price when
// warranted) over the merged entities. Like runChain it degrades into the
// recovery path instead of failing.
func (s *Service) runFollowup(ctx context.Context, sc *domain.Context, routed domain.StageID) (resp *domain.Response) {
	requestID := sc.RequestID
	defer func() {
		if r := recover(); r != nil {
			resp = s.recoverResponse(ctx, requestID, fmt.Sprintf("followup panic: %v", r))
		}
	}()

	state := newChainState(sc.Entities)
	seedFromHistory(state, sc)

	executed := []domain.StageID{routed}
	if err := s.executeStage(ctx, requestID, routed, state); err != nil {
		return s.recoverResponse(ctx, requestID, err.Error())
	}

	if repriceNeeded(routed, state.facts) {
		executed = append(executed, domain.StagePricing)
		if err := s.executeStage(ctx, requestID, domain.StagePricing, state); err != nil {
			return s.recoverResponse(ctx, requestID, err.Error())
		}
	}

	if _, err := s.store.Update(ctx, requestID, func(c *domain.Context) error {
		c.Entities = c.Entities.Merge(state.facts)
		c.Status = domain.StatusCompleted
		c.UpdatedAt = time.Now()
		return nil
	}); err != nil {
		return s.recoverResponse(ctx, requestID, "failed to complete followup: "+err.Error())
	}

	return s.synthesize(requestID, executed, state)
}

// classifyFollowup picks the follow-up's primary intent from a fixed
// priority list: bundle request > pricing query > scheduling change >
// service modification > clarification > general.
func classifyFollowup(facts domain.IntentFacts, text string) string {
	switch {
	case facts.BundleRequested || facts.HasAddons():
		return intentBundleRequest
	case facts.PricingRequested:
		return intentPricingQuery
	case facts.SchedulingRequested:
		return intentSchedulingChange
	case facts.ServiceType != domain.ServiceUnknown || facts.Urgency != domain.UrgencyUnset:
		return intentServiceModification
	case strings.Contains(text, "?"):
		return intentClarification
	default:
		return intentGeneral
	}
}

// routeFollowup maps an intent to the single stage that handles it.
func routeFollowup(intent string) domain.StageID {
	switch intent {
	case intentBundleRequest:
		return domain.StageBundle
	case intentPricingQuery:
		return domain.StagePricing
	case intentSchedulingChange:
		return domain.StageCalendar
	default:
		return domain.StageCommunication
	}
}

// repriceNeeded reports whether the routed stage invalidated the last quote.
// Bundle changes alter the addon set and calendar changes can flip the
// same-visit savings, so both reprice when anything is priceable.
func repriceNeeded(routed domain.StageID, facts domain.IntentFacts) bool {
	if routed != domain.StageBundle && routed != domain.StageCalendar {
		return false
	}
	return facts.PricingRequested || facts.HasAddons()
}

// seedFromHistory carries confirmed outcomes of earlier chain runs into a
// follow-up run, so repricing sees the single-visit confirmation and bundle
// bonus without rerunning those stages.
func seedFromHistory(state *chainState, sc *domain.Context) {
	if step := sc.LatestStep(domain.StageCalendar); step != nil && step.Status == domain.StageRecordCompleted {
		if confirmed, ok := step.OutputSnapshot["singleVisitPossible"].(bool); ok {
			state.priorSingleVisit = confirmed
		}
	}
	if step := sc.LatestStep(domain.StageBundle); step != nil && step.Status == domain.StageRecordCompleted {
		if bonus, ok := step.OutputSnapshot["sameVisitBonus"].(float64); ok {
			state.sameVisitBonus = bonus
		}
		if name, ok := step.OutputSnapshot["bundleName"].(string); ok {
			state.bundleMatched = true
			state.bundleName = name
		}
	}
}
