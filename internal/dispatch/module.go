// Package dispatch provides the conversational dispatch domain module.
package dispatch

import (
	"time"

	"onepath_dispatch_backend/internal/availability"
	"onepath_dispatch_backend/internal/dispatch/handler"
	"onepath_dispatch_backend/internal/dispatch/service"
	apphttp "onepath_dispatch_backend/internal/http"
	"onepath_dispatch_backend/internal/pricing"
	"onepath_dispatch_backend/internal/reasoning"
	"onepath_dispatch_backend/internal/session"
	"onepath_dispatch_backend/platform/logger"
	"onepath_dispatch_backend/platform/validator"

	"onepath_dispatch_backend/internal/events"
)

// Module represents the dispatch domain module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// Deps are the external collaborators the module is wired with.
type Deps struct {
	Store        session.Store
	Catalog      *pricing.Catalog
	Availability availability.Client
	Advisor      *reasoning.Advisor
	EventBus     events.Bus
	Logger       *logger.Logger
	Validator    *validator.Validator

	StageTimeout  time.Duration
	MaxMessageLen int
}

// NewModule creates the dispatch module with all dependencies wired.
func NewModule(deps Deps) *Module {
	svc := service.New(service.Config{
		Store:         deps.Store,
		Catalog:       deps.Catalog,
		Availability:  deps.Availability,
		Advisor:       deps.Advisor,
		EventBus:      deps.EventBus,
		Logger:        deps.Logger,
		StageTimeout:  deps.StageTimeout,
		MaxMessageLen: deps.MaxMessageLen,
	})

	return &Module{
		handler: handler.New(svc, deps.Validator),
		service: svc,
	}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "dispatch"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes registers the module's routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	requests := ctx.V1.Group("/dispatch/requests")
	m.handler.RegisterRoutes(requests)
}

// Compile-time check that Module implements http.Module.
var _ apphttp.Module = (*Module)(nil)
