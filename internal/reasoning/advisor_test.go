package reasoning

import (
	"context"
	"strings"
	"testing"

	"onepath_dispatch_backend/internal/dispatch/domain"
)

func TestNilAdvisorAdvisesNothing(t *testing.T) {
	var advisor *Advisor
	insight, err := advisor.Advise(context.Background(), "req-1", domain.NewIntentFacts(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if insight != nil {
		t.Fatalf("expected no insight, got %+v", insight)
	}
}

func TestNormalizeHint(t *testing.T) {
	cases := map[string]domain.StageID{
		"bundle":   domain.StageBundle,
		" Pricing": domain.StagePricing,
		"CALENDAR": domain.StageCalendar,
		"none":     "",
		"":         "",
		"invoice":  "",
	}
	for in, want := range cases {
		if got := normalizeHint(in); got != want {
			t.Fatalf("normalizeHint(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBuildPromptMentionsFactsAndPlan(t *testing.T) {
	facts := domain.IntentFacts{
		ServiceType:        domain.ServiceACRepair,
		Urgency:            domain.UrgencyHigh,
		AdditionalServices: []string{"thermostat_install"},
		BundleRequested:    true,
	}
	prompt := buildPrompt(facts, []domain.StageID{domain.StageCommunication, domain.StageBundle})

	for _, want := range []string{"ac_repair", "high", "thermostat_install", "communication", "bundle"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestInsightCaptureTakeIsOneShot(t *testing.T) {
	c := &insightCapture{}
	c.set(Insight{Analysis: "ok", NextActionHint: domain.StagePricing, Confidence: 0.8})

	first := c.take()
	if first == nil || first.NextActionHint != domain.StagePricing {
		t.Fatalf("unexpected first take: %+v", first)
	}
	if second := c.take(); second != nil {
		t.Fatalf("expected capture to be cleared, got %+v", second)
	}
}
