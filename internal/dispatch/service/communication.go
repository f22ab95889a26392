package service

import (
	"context"
	"fmt"
	"strings"

	"onepath_dispatch_backend/internal/dispatch/domain"
)

// communicationExecutor produces the customer-facing acknowledgment from
// fixed templates. It never fails and runs first in every chain.
type communicationExecutor struct{}

func (e *communicationExecutor) ID() domain.StageID { return domain.StageCommunication }

func (e *communicationExecutor) Execute(_ context.Context, state *chainState) (domain.StageResult, error) {
	message := buildAcknowledgment(state.facts)

	return domain.StageResult{
		Data: map[string]any{
			"message": message,
			"channel": "chat",
		},
		Confidence: 0.9,
	}, nil
}

var serviceLabels = map[domain.ServiceType]string{
	domain.ServiceACRepair:   "AC repair",
	domain.ServiceHeating:    "heating service",
	domain.ServicePlumbing:   "plumbing service",
	domain.ServiceElectrical: "electrical service",
}

func buildAcknowledgment(facts domain.IntentFacts) string {
	label, ok := serviceLabels[facts.ServiceType]
	if !ok {
		label = "service request"
	}

	var sb strings.Builder
	switch facts.Urgency {
	case domain.UrgencyEmergency:
		sb.WriteString(fmt.Sprintf("We received your emergency %s request and are prioritizing it now.", label))
	case domain.UrgencyHigh:
		sb.WriteString(fmt.Sprintf("We received your %s request and will get a technician out quickly.", label))
	default:
		sb.WriteString(fmt.Sprintf("We received your %s request.", label))
	}

	if len(facts.AdditionalServices) > 0 {
		sb.WriteString(fmt.Sprintf(" Requested extras: %s.", strings.Join(facts.AdditionalServices, ", ")))
	}

	return sb.String()
}
