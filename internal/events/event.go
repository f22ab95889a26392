// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"onepath_dispatch_backend/platform/events"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Dispatch Domain Events
// =============================================================================

// DispatchRequested is published when a new top-level request enters the
// orchestrator and a conversation context has been created.
type DispatchRequested struct {
	BaseEvent
	RequestID   string `json:"requestId"`
	ServiceType string `json:"serviceType"`
	Urgency     string `json:"urgency"`
}

func (e DispatchRequested) EventName() string { return "dispatch.request.received" }

// StageCompleted is published after a stage executor finishes successfully.
type StageCompleted struct {
	BaseEvent
	RequestID  string  `json:"requestId"`
	Stage      string  `json:"stage"`
	Confidence float64 `json:"confidence"`
}

func (e StageCompleted) EventName() string { return "dispatch.stage.completed" }

// StageFailed is published when a stage executor fails or times out.
// The chain continues; this event exists for observability consumers.
type StageFailed struct {
	BaseEvent
	RequestID string `json:"requestId"`
	Stage     string `json:"stage"`
	Reason    string `json:"reason"`
}

func (e StageFailed) EventName() string { return "dispatch.stage.failed" }

// DispatchCompleted is published when a chain run finishes and the response
// has been synthesized.
type DispatchCompleted struct {
	BaseEvent
	RequestID  string  `json:"requestId"`
	Confidence float64 `json:"confidence"`
	Stages     int     `json:"stages"`
}

func (e DispatchCompleted) EventName() string { return "dispatch.request.completed" }

// DispatchRecovered is published when the orchestration-level error recovery
// path produced a degraded response.
type DispatchRecovered struct {
	BaseEvent
	RequestID string `json:"requestId"`
	Reason    string `json:"reason"`
	Fallback  bool   `json:"fallback"`
}

func (e DispatchRecovered) EventName() string { return "dispatch.request.recovered" }

// FollowupProcessed is published after a follow-up message was merged into an
// existing conversation and its routed stage completed.
type FollowupProcessed struct {
	BaseEvent
	RequestID string `json:"requestId"`
	Intent    string `json:"intent"`
	Stage     string `json:"stage"`
}

func (e FollowupProcessed) EventName() string { return "dispatch.followup.processed" }

// SessionCleared is published when a conversation context is removed from the
// session store, either explicitly or by the expiry scheduler.
type SessionCleared struct {
	BaseEvent
	RequestID string `json:"requestId"`
	Expired   bool   `json:"expired"`
}

func (e SessionCleared) EventName() string { return "dispatch.session.cleared" }
