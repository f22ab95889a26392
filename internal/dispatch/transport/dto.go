// Package transport defines the wire shapes of the dispatch API.
package transport

import (
	"time"

	"onepath_dispatch_backend/internal/dispatch/domain"
)

// ── Requests ──────────────────────────────────────────────────────────────────

// SubmitRequestRequest is the payload for a new dispatch request.
type SubmitRequestRequest struct {
	Text     string         `json:"text" validate:"required,min=1"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// SubmitFollowupRequest is the payload for a follow-up on an existing request.
type SubmitFollowupRequest struct {
	Text string `json:"text" validate:"required,min=1"`
}

// ── Responses ─────────────────────────────────────────────────────────────────

// DispatchResponse serializes a synthesized chain response.
type DispatchResponse struct {
	RequestID    string         `json:"requestId"`
	ActionsTaken []string       `json:"actionsTaken"`
	Result       map[string]any `json:"result"`
	NextSteps    []string       `json:"nextSteps"`
	Confidence   float64        `json:"confidence"`
	Timestamp    time.Time      `json:"timestamp"`
}

// FromResponse maps the domain response to its wire shape.
func FromResponse(r *domain.Response) DispatchResponse {
	return DispatchResponse{
		RequestID:    r.RequestID,
		ActionsTaken: r.ActionsTaken,
		Result:       r.Result,
		NextSteps:    r.NextSteps,
		Confidence:   r.Confidence,
		Timestamp:    r.Timestamp,
	}
}

// StatusResponse serializes a status report.
type StatusResponse struct {
	RequestID      string  `json:"requestId"`
	Status         string  `json:"status"`
	StepsCompleted int     `json:"stepsCompleted"`
	LastError      *string `json:"lastError,omitempty"`
}

// FromStatusReport maps the domain status report to its wire shape.
func FromStatusReport(r domain.StatusReport) StatusResponse {
	return StatusResponse{
		RequestID:      r.RequestID,
		Status:         string(r.Status),
		StepsCompleted: r.StepsCompleted,
		LastError:      r.LastError,
	}
}

// ClearResponse acknowledges a session clear.
type ClearResponse struct {
	RequestID string `json:"requestId"`
	Cleared   bool   `json:"cleared"`
}
