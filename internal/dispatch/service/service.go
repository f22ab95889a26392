// Package service implements the conversational dispatch orchestrator: it
// extracts intent from free text, plans a stage chain, drives the stage
// executors sequentially, and synthesizes the customer-facing response.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"onepath_dispatch_backend/platform/apperr"
	"onepath_dispatch_backend/platform/logger"
	"onepath_dispatch_backend/platform/sanitize"

	"onepath_dispatch_backend/internal/availability"
	"onepath_dispatch_backend/internal/dispatch/domain"
	"onepath_dispatch_backend/internal/events"
	"onepath_dispatch_backend/internal/intake"
	"onepath_dispatch_backend/internal/pricing"
	"onepath_dispatch_backend/internal/reasoning"
	"onepath_dispatch_backend/internal/session"
)

const defaultStageTimeout = 10 * time.Second

// Service exposes the four public dispatch operations. Chain runs for
// different requestIds are independent and may execute concurrently; within
// one run, stages execute strictly sequentially.
type Service struct {
	store     session.Store
	executors map[domain.StageID]executor
	advisor   *reasoning.Advisor
	eventBus  events.Bus
	log       *logger.Logger

	stageTimeout  time.Duration
	maxMessageLen int
}

// Config wires the service dependencies.
type Config struct {
	Store        session.Store
	Catalog      *pricing.Catalog
	Availability availability.Client
	Advisor      *reasoning.Advisor // nil disables reasoning
	EventBus     events.Bus
	Logger       *logger.Logger

	StageTimeout  time.Duration
	MaxMessageLen int
}

// New creates the dispatch service.
func New(cfg Config) *Service {
	stageTimeout := cfg.StageTimeout
	if stageTimeout <= 0 {
		stageTimeout = defaultStageTimeout
	}

	return &Service{
		store:         cfg.Store,
		executors:     newExecutors(cfg.Catalog, cfg.Availability),
		advisor:       cfg.Advisor,
		eventBus:      cfg.EventBus,
		log:           cfg.Logger,
		stageTimeout:  stageTimeout,
		maxMessageLen: cfg.MaxMessageLen,
	}
}

// SubmitRequest handles the first message of a new request: it creates the
// conversation context, runs the planned stage chain, and returns the
// synthesized response. Chain-level failures degrade into a recovery
// response instead of an error.
func (s *Service) SubmitRequest(ctx context.Context, text string, metadata map[string]any) (*domain.Response, error) {
	text, err := s.cleanMessage(text)
	if err != nil {
		return nil, err
	}

	requestID := uuid.New().String()
	facts := intake.Extract(text)

	sc := domain.NewContext(requestID, domain.Message{
		Role:      "user",
		Text:      text,
		Timestamp: time.Now(),
		Metadata:  metadata,
	})
	sc.Entities = sc.Entities.Merge(facts)

	if err := s.store.Create(ctx, sc); err != nil {
		return nil, err
	}
	s.log.SessionEvent("created", requestID)

	s.eventBus.Publish(ctx, events.DispatchRequested{
		BaseEvent:   events.NewBaseEvent(),
		RequestID:   requestID,
		ServiceType: string(facts.ServiceType),
		Urgency:     string(facts.Urgency),
	})

	return s.runChain(ctx, requestID, facts, locationFrom(metadata)), nil
}

// GetStatus reports the lifecycle state of a conversation.
func (s *Service) GetStatus(ctx context.Context, requestID string) (domain.StatusReport, error) {
	sc, err := s.store.Get(ctx, requestID)
	if err != nil {
		return domain.StatusReport{}, err
	}
	return sc.Report(), nil
}

// ClearSession removes a conversation context and reports whether one was
// removed. An unknown or already-cleared requestId is a typed not-found
// error, never a silent success.
func (s *Service) ClearSession(ctx context.Context, requestID string) (bool, error) {
	cleared, err := s.store.Clear(ctx, requestID)
	if err != nil {
		return false, err
	}
	if !cleared {
		return false, apperr.NotFound("session not found").WithOp("dispatch.ClearSession")
	}
	s.log.SessionEvent("cleared", requestID)
	s.eventBus.Publish(ctx, events.SessionCleared{
		BaseEvent: events.NewBaseEvent(),
		RequestID: requestID,
	})
	return true, nil
}

func (s *Service) cleanMessage(text string) (string, error) {
	cleaned := sanitize.Message(text, s.maxMessageLen)
	if cleaned == "" {
		return "", apperr.Validation("message text is required")
	}
	return cleaned, nil
}

func locationFrom(metadata map[string]any) string {
	if metadata == nil {
		return ""
	}
	if loc, ok := metadata["location"].(string); ok {
		return loc
	}
	return ""
}
