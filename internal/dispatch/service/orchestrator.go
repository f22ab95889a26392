package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"onepath_dispatch_backend/internal/dispatch/domain"
	"onepath_dispatch_backend/internal/events"
)

// runChain drives the planned stages sequentially and synthesizes the
// response. Single-stage failures are recorded and the chain continues; any
// panic or persistence failure is an orchestration-level error and degrades
// into the recovery path. runChain never returns nil.
func (s *Service) runChain(ctx context.Context, requestID string, facts domain.IntentFacts, location string) (resp *domain.Response) {
	defer func() {
		if r := recover(); r != nil {
			resp = s.recoverResponse(ctx, requestID, fmt.Sprintf("chain panic: %v", r))
		}
	}()

	plan := Plan(facts)
	plan = s.applyAdvisorHint(ctx, requestID, facts, plan)

	if _, err := s.store.Update(ctx, requestID, func(c *domain.Context) error {
		c.Status = domain.StatusProcessing
		c.UpdatedAt = time.Now()
		return nil
	}); err != nil {
		return s.recoverResponse(ctx, requestID, "failed to start processing: "+err.Error())
	}

	state := newChainState(facts)
	state.location = location

	for _, stageID := range plan {
		if err := s.executeStage(ctx, requestID, stageID, state); err != nil {
			return s.recoverResponse(ctx, requestID, err.Error())
		}
	}

	if _, err := s.store.Update(ctx, requestID, func(c *domain.Context) error {
		c.Entities = c.Entities.Merge(state.facts)
		c.Status = domain.StatusCompleted
		c.UpdatedAt = time.Now()
		return nil
	}); err != nil {
		return s.recoverResponse(ctx, requestID, "failed to complete: "+err.Error())
	}

	resp = s.synthesize(requestID, plan, state)

	s.eventBus.Publish(ctx, events.DispatchCompleted{
		BaseEvent:  events.NewBaseEvent(),
		RequestID:  requestID,
		Confidence: resp.Confidence,
		Stages:     len(plan),
	})

	return resp
}

// applyAdvisorHint lets the optional reasoning collaborator add at most one
// stage the rule planner missed. The hinted stage slots into its canonical
// chain position rather than running last, so a hinted calendar still
// precedes pricing. The hint never removes rule-planned stages, and advisor
// errors never affect the chain.
func (s *Service) applyAdvisorHint(ctx context.Context, requestID string, facts domain.IntentFacts, plan []domain.StageID) []domain.StageID {
	insight, err := s.advisor.Advise(ctx, requestID, facts, plan)
	if err != nil {
		s.log.CollaboratorError("reasoning", err)
		return plan
	}
	if insight == nil {
		return plan
	}
	return insertStage(plan, insight.NextActionHint)
}

// executeStage runs one stage under the bounded timeout and persists its
// record. A stage error or timeout fails only that stage; the returned error
// is reserved for persistence failures, which abort the chain.
func (s *Service) executeStage(ctx context.Context, requestID string, stageID domain.StageID, state *chainState) error {
	exec, ok := s.executors[stageID]
	if !ok {
		return fmt.Errorf("no executor registered for stage %s", stageID)
	}

	stageCtx, cancel := context.WithTimeout(ctx, s.stageTimeout)
	defer cancel()

	input := map[string]any{
		"serviceType": state.facts.ServiceType,
		"urgency":     state.facts.Urgency,
		"addons":      append([]string(nil), state.facts.AdditionalServices...),
	}

	start := time.Now()
	result, err := exec.Execute(stageCtx, state)
	durationMs := float64(time.Since(start).Microseconds()) / 1000

	record := domain.StageRecord{
		StepID:        uuid.New().String(),
		StageName:     string(stageID) + "_stage",
		ActionType:    stageID,
		InputSnapshot: input,
		Timestamp:     time.Now(),
	}

	if err != nil {
		record.Status = domain.StageRecordFailed
		record.Confidence = 0
		record.OutputSnapshot = map[string]any{"error": err.Error()}
		state.failed = append(state.failed, stageID)

		s.log.StageEvent(requestID, string(stageID), "failed", 0, durationMs)
		s.eventBus.Publish(ctx, events.StageFailed{
			BaseEvent: events.NewBaseEvent(),
			RequestID: requestID,
			Stage:     string(stageID),
			Reason:    err.Error(),
		})
	} else {
		record.Status = domain.StageRecordCompleted
		record.Confidence = result.Confidence
		record.OutputSnapshot = result.Data
		state.results[stageID] = result

		s.log.StageEvent(requestID, string(stageID), "completed", result.Confidence, durationMs)
		s.eventBus.Publish(ctx, events.StageCompleted{
			BaseEvent:  events.NewBaseEvent(),
			RequestID:  requestID,
			Stage:      string(stageID),
			Confidence: result.Confidence,
		})
	}

	if _, err := s.store.Update(ctx, requestID, func(c *domain.Context) error {
		c.Steps = append(c.Steps, record)
		c.UpdatedAt = time.Now()
		return nil
	}); err != nil {
		return fmt.Errorf("failed to record stage %s: %w", stageID, err)
	}

	return nil
}

// stageDescriptions feeds the actionsTaken list of the response.
var stageDescriptions = map[domain.StageID]string{
	domain.StageCommunication: "Acknowledged the request",
	domain.StageBundle:        "Evaluated bundle options",
	domain.StageCalendar:      "Checked technician availability",
	domain.StagePricing:       "Computed service pricing",
}

// synthesize merges the stage outputs of one run into the customer-facing
// response. Failed stages stay visible in actionsTaken but never drop the
// other stages' results, and their confidence is excluded from the mean
// rather than averaged in as zero.
func (s *Service) synthesize(requestID string, plan []domain.StageID, state *chainState) *domain.Response {
	actions := make([]string, 0, len(plan))
	result := make(map[string]any, len(plan))

	for _, stageID := range plan {
		if stageResult, ok := state.results[stageID]; ok {
			actions = append(actions, stageDescriptions[stageID])
			result[resultKey(stageID)] = stageResult.Data
		} else {
			actions = append(actions, stageDescriptions[stageID]+" (unavailable)")
		}
	}

	var confidence float64
	if len(state.results) > 0 {
		var sum float64
		for _, r := range state.results {
			sum += r.Confidence
		}
		confidence = sum / float64(len(state.results))
	}

	return &domain.Response{
		RequestID:    requestID,
		ActionsTaken: actions,
		Result:       result,
		NextSteps:    nextSteps(state),
		Confidence:   confidence,
		Timestamp:    time.Now(),
	}
}

func resultKey(stageID domain.StageID) string {
	if stageID == domain.StageCalendar {
		return "availability"
	}
	return string(stageID)
}

// nextSteps maps the available stage outputs to a deterministic next-step
// list; when nothing applies a fixed default list is returned.
func nextSteps(state *chainState) []string {
	var steps []string

	if state.availability != nil && len(state.availability.Slots) > 0 {
		steps = append(steps, "Select preferred appointment time from available slots")
	}
	if state.breakdown != nil {
		steps = append(steps, "Review service pricing and confirm booking")
		if state.breakdown.Savings > 0 {
			steps = append(steps, "Consider bundle services for additional savings")
		}
	}

	if len(steps) == 0 {
		steps = []string{
			"Our team will review your request",
			"You will be contacted to confirm the details",
			"Reply here to add services or ask about pricing",
		}
	}
	return steps
}

// recoverResponse is the orchestration-level error path: it marks the
// context as error_recovery and returns a degraded response with next steps
// pointing to manual support. When even the status write fails, a static
// fallback response is returned with lower confidence.
func (s *Service) recoverResponse(ctx context.Context, requestID, reason string) *domain.Response {
	s.log.WithRequestID(requestID).Error("chain recovery", "reason", reason)

	confidence := 0.6
	fallback := false

	if _, err := s.store.Update(ctx, requestID, func(c *domain.Context) error {
		c.Status = domain.StatusErrorRecovery
		c.ErrorMessage = &reason
		c.UpdatedAt = time.Now()
		return nil
	}); err != nil {
		confidence = 0.3
		fallback = true
	}

	s.eventBus.Publish(ctx, events.DispatchRecovered{
		BaseEvent: events.NewBaseEvent(),
		RequestID: requestID,
		Reason:    reason,
		Fallback:  fallback,
	})

	return &domain.Response{
		RequestID:    requestID,
		ActionsTaken: []string{"Recovered from a processing error"},
		Result: map[string]any{
			"error": "We could not fully process your request automatically.",
		},
		NextSteps: []string{
			"Contact our support team for immediate assistance",
			"Reference request " + requestID + " when you reach out",
		},
		Confidence: confidence,
		Timestamp:  time.Now(),
	}
}
