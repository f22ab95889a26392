// Package reasoning wraps an LLM agent that reviews a planned stage chain and
// suggests at most one stage the rule planner may have missed.
//
// The advisor is strictly advisory and optional. A nil *Advisor is valid and
// advises nothing; every error is reported to the caller but must never fail
// the chain.
package reasoning

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/adk/tool"
	"google.golang.org/adk/tool/functiontool"
	"google.golang.org/genai"

	"onepath_dispatch_backend/platform/ai/moonshot"

	"onepath_dispatch_backend/internal/dispatch/domain"
)

const appName = "dispatch-advisor"

// Insight is the structured result the agent persists through its tool.
type Insight struct {
	Analysis       string
	NextActionHint domain.StageID
	Confidence     float64
	Assumptions    []string
}

// Config configures the advisor.
type Config struct {
	APIKey string
	Model  string
}

// Advisor runs the reasoning agent. Zero value is unusable; construct with
// New. A nil Advisor is safe to call and returns no insight.
type Advisor struct {
	runner         *runner.Runner
	sessionService session.Service
	capture        *insightCapture
	runMu          sync.Mutex
}

type insightCapture struct {
	mu      sync.Mutex
	insight *Insight
}

func (c *insightCapture) set(i Insight) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.insight = &i
}

func (c *insightCapture) take() *Insight {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.insight
	c.insight = nil
	return i
}

type saveInsightInput struct {
	Analysis       string   `json:"analysis"`       // Short reasoning about the request
	NextActionHint string   `json:"nextActionHint"` // One of: communication, bundle, calendar, pricing, none
	Confidence     float64  `json:"confidence"`     // 0.0 to 1.0
	Assumptions    []string `json:"assumptions"`    // Assumptions behind the hint
}

type saveInsightOutput struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// New creates the advisor backed by the Moonshot model.
func New(cfg Config) (*Advisor, error) {
	kimi := moonshot.NewModel(moonshot.Config{
		APIKey:          cfg.APIKey,
		Model:           cfg.Model,
		DisableThinking: true,
	})

	capture := &insightCapture{}
	saveTool, err := functiontool.New(functiontool.Config{
		Name:        "SaveDispatchInsight",
		Description: "Saves your dispatch analysis. Call this ONCE with your analysis, a nextActionHint naming exactly one stage to add (communication, bundle, calendar, pricing) or 'none', your confidence, and any assumptions.",
	}, func(_ tool.Context, input saveInsightInput) (saveInsightOutput, error) {
		capture.set(Insight{
			Analysis:       input.Analysis,
			NextActionHint: normalizeHint(input.NextActionHint),
			Confidence:     input.Confidence,
			Assumptions:    input.Assumptions,
		})
		return saveInsightOutput{Success: true, Message: "Insight saved"}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build SaveDispatchInsight tool: %w", err)
	}

	adkAgent, err := llmagent.New(llmagent.Config{
		Name:        "DispatchAdvisor",
		Model:       kimi,
		Description: "Reviews a planned dispatch chain for a home-service request and suggests a missed stage.",
		Instruction: "You review the extracted facts and the planned processing stages for a home-service request. If exactly one useful stage is missing, suggest it; otherwise hint 'none'. Always persist your conclusion with SaveDispatchInsight.",
		Tools:       []tool.Tool{saveTool},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create advisor agent: %w", err)
	}

	sessionService := session.InMemoryService()
	r, err := runner.New(runner.Config{
		AppName:        appName,
		Agent:          adkAgent,
		SessionService: sessionService,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create advisor runner: %w", err)
	}

	return &Advisor{
		runner:         r,
		sessionService: sessionService,
		capture:        capture,
	}, nil
}

// Advise runs the agent over the facts and planned chain. Returns nil when
// the advisor is disabled, the agent never saved an insight, or the hint is
// "none".
func (a *Advisor) Advise(ctx context.Context, requestID string, facts domain.IntentFacts, planned []domain.StageID) (*Insight, error) {
	if a == nil {
		return nil, nil
	}

	a.runMu.Lock()
	defer a.runMu.Unlock()
	a.capture.take()

	if err := a.runWithPrompt(ctx, requestID, buildPrompt(facts, planned)); err != nil {
		return nil, err
	}

	insight := a.capture.take()
	if insight == nil || insight.NextActionHint == "" {
		return nil, nil
	}
	return insight, nil
}

func buildPrompt(facts domain.IntentFacts, planned []domain.StageID) string {
	var sb strings.Builder
	sb.WriteString("Extracted facts:\n")
	sb.WriteString(fmt.Sprintf("- service type: %s\n", facts.ServiceType))
	sb.WriteString(fmt.Sprintf("- urgency: %s\n", facts.Urgency))
	sb.WriteString(fmt.Sprintf("- additional services: %s\n", strings.Join(facts.AdditionalServices, ", ")))
	sb.WriteString(fmt.Sprintf("- bundle requested: %v, pricing requested: %v, scheduling requested: %v\n",
		facts.BundleRequested, facts.PricingRequested, facts.SchedulingRequested))
	sb.WriteString("\nPlanned stages, in order:\n")
	for _, stage := range planned {
		sb.WriteString(fmt.Sprintf("- %s\n", stage))
	}
	sb.WriteString("\nIs exactly one useful stage missing from the plan?")
	return sb.String()
}

func normalizeHint(hint string) domain.StageID {
	switch domain.StageID(strings.ToLower(strings.TrimSpace(hint))) {
	case domain.StageCommunication:
		return domain.StageCommunication
	case domain.StageBundle:
		return domain.StageBundle
	case domain.StageCalendar:
		return domain.StageCalendar
	case domain.StagePricing:
		return domain.StagePricing
	default:
		return ""
	}
}

func (a *Advisor) runWithPrompt(ctx context.Context, requestID, promptText string) error {
	sessionID := uuid.New().String()
	userID := "advisor-" + requestID

	_, err := a.sessionService.Create(ctx, &session.CreateRequest{
		AppName:   appName,
		UserID:    userID,
		SessionID: sessionID,
	})
	if err != nil {
		return fmt.Errorf("failed to create advisor session: %w", err)
	}
	defer func() {
		_ = a.sessionService.Delete(ctx, &session.DeleteRequest{
			AppName:   appName,
			UserID:    userID,
			SessionID: sessionID,
		})
	}()

	userMessage := &genai.Content{
		Role:  "user",
		Parts: []*genai.Part{{Text: promptText}},
	}

	runConfig := agent.RunConfig{StreamingMode: agent.StreamingModeNone}
	for event := range a.runner.Run(ctx, userID, sessionID, userMessage, runConfig) {
		_ = event
	}

	return nil
}
