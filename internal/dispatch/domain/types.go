// Package domain provides the typed records shared by the dispatch bounded
// context: intent facts, conversation contexts, stage records, and the
// customer-facing response shape.
package domain

import "time"

// ServiceType identifies the primary home-service category of a request.
type ServiceType string

const (
	ServiceACRepair   ServiceType = "ac_repair"
	ServiceHeating    ServiceType = "heating"
	ServicePlumbing   ServiceType = "plumbing"
	ServiceElectrical ServiceType = "electrical"
	ServiceUnknown    ServiceType = "unknown"
)

// Urgency is the customer-expressed urgency of a request.
type Urgency string

const (
	UrgencyEmergency Urgency = "emergency"
	UrgencyHigh      Urgency = "high"
	UrgencyNormal    Urgency = "normal"
	UrgencyLow       Urgency = "low"
	UrgencyUnset     Urgency = "unset"
)

// StageID identifies one unit of the processing chain.
type StageID string

const (
	StageCommunication StageID = "communication"
	StageBundle        StageID = "bundle"
	StageCalendar      StageID = "calendar"
	StagePricing       StageID = "pricing"
)

// Status is the lifecycle state of a conversation context.
// completed and error_recovery are terminal.
type Status string

const (
	StatusInitializing  Status = "initializing"
	StatusProcessing    Status = "processing"
	StatusCompleted     Status = "completed"
	StatusErrorRecovery Status = "error_recovery"
)

// IsTerminalStatus returns true for the two terminal context states.
func IsTerminalStatus(s Status) bool {
	return s == StatusCompleted || s == StatusErrorRecovery
}

// StageRecordStatus is the outcome of one recorded stage execution.
type StageRecordStatus string

const (
	StageRecordCompleted StageRecordStatus = "completed"
	StageRecordFailed    StageRecordStatus = "failed"
)

// Message is one turn of the conversation history.
type Message struct {
	Role      string         `json:"role"`
	Text      string         `json:"text"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// StageRecord is the append-only audit record of one stage execution.
// Records are never mutated after creation.
type StageRecord struct {
	StepID         string            `json:"stepId"`
	StageName      string            `json:"stageName"`
	ActionType     StageID           `json:"actionType"`
	InputSnapshot  map[string]any    `json:"inputSnapshot,omitempty"`
	OutputSnapshot map[string]any    `json:"outputSnapshot,omitempty"`
	Status         StageRecordStatus `json:"status"`
	Confidence     float64           `json:"confidence"`
	Timestamp      time.Time         `json:"timestamp"`
}

// Slot is one bookable appointment option from the availability collaborator.
type Slot struct {
	DateTime     time.Time `json:"dateTime"`
	TechnicianID string    `json:"technicianId"`
	TravelTime   int       `json:"travelTimeMinutes"`
	Surcharge    float64   `json:"surcharge"`
}

// AvailabilityResult is the availability collaborator's answer for a request.
type AvailabilityResult struct {
	Slots               []Slot `json:"slots"`
	EarliestAvailable   *Slot  `json:"earliestAvailable,omitempty"`
	RecommendedSlot     *Slot  `json:"recommendedSlot,omitempty"`
	SingleVisitPossible bool   `json:"singleVisitPossible"`
}

// PricingBreakdown is the cost breakdown for a service selection.
// Invariant, exact after two-decimal rounding of every component:
//
//	Total == Subtotal - BundleDiscount - SameVisitSavings + UrgencySurcharge + Tax
type PricingBreakdown struct {
	BaseCost         float64 `json:"baseCost"`
	AddonCost        float64 `json:"addonCost"`
	Subtotal         float64 `json:"subtotal"`
	BundleDiscount   float64 `json:"bundleDiscount"`
	SameVisitSavings float64 `json:"sameVisitSavings"`
	UrgencySurcharge float64 `json:"urgencySurcharge"`
	Tax              float64 `json:"tax"`
	Total            float64 `json:"total"`
	Savings          float64 `json:"savings"`
}

// StageResult is what a stage executor hands back to the orchestrator.
type StageResult struct {
	Data       map[string]any `json:"data"`
	Confidence float64        `json:"confidence"`
}

// Response is the customer-facing answer synthesized from a chain run.
type Response struct {
	RequestID    string         `json:"requestId"`
	ActionsTaken []string       `json:"actionsTaken"`
	Result       map[string]any `json:"result"`
	NextSteps    []string       `json:"nextSteps"`
	Confidence   float64        `json:"confidence"`
	Timestamp    time.Time      `json:"timestamp"`
}

// StatusReport is the answer to a status query.
type StatusReport struct {
	RequestID      string  `json:"requestId"`
	Status         Status  `json:"status"`
	StepsCompleted int     `json:"stepsCompleted"`
	LastError      *string `json:"lastError,omitempty"`
}
