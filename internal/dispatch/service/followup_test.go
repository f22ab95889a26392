package service

import (
	"context"
	"reflect"
	"testing"

	"onepath_dispatch_backend/platform/apperr"

	"onepath_dispatch_backend/internal/dispatch/domain"
)

func TestSubmitFollowup_ThermostatBundle(t *testing.T) {
	svc, store := newTestService(t, nil)
	ctx := context.Background()

	initial, err := svc.SubmitRequest(ctx, "My AC is broken. Can someone fix it this week?", nil)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	initialBreakdown := breakdownFromResponse(t, initial)

	resp, err := svc.SubmitFollowup(ctx, initial.RequestID, "Can you add a thermostat installation too and bundle it?")
	if err != nil {
		t.Fatalf("followup failed: %v", err)
	}

	// Routed to the bundle stage, then incrementally repriced.
	wantActions := []string{"Evaluated bundle options", "Computed service pricing"}
	if !reflect.DeepEqual(resp.ActionsTaken, wantActions) {
		t.Fatalf("expected actions %v, got %v", wantActions, resp.ActionsTaken)
	}

	breakdown := breakdownFromResponse(t, resp)
	if breakdown.AddonCost != 200 {
		t.Fatalf("expected addon cost 200, got %v", breakdown.AddonCost)
	}
	if breakdown.Subtotal != 425 {
		t.Fatalf("expected subtotal 425, got %v", breakdown.Subtotal)
	}
	if breakdown.BundleDiscount != 63.75 {
		t.Fatalf("expected bundle discount 63.75, got %v", breakdown.BundleDiscount)
	}
	// Single-visit confirmation carries over from the original calendar run.
	if breakdown.SameVisitSavings != 25 {
		t.Fatalf("expected same-visit savings 25, got %v", breakdown.SameVisitSavings)
	}
	if breakdown.Total != 390.15 {
		t.Fatalf("expected total 390.15, got %v", breakdown.Total)
	}

	// Bundling must cost strictly less than pricing the two independently.
	independentTotal := initialBreakdown.Total + 200*1.08
	if breakdown.Total >= independentTotal {
		t.Fatalf("bundled total %v not below independent %v", breakdown.Total, independentTotal)
	}

	sc, err := store.Get(ctx, initial.RequestID)
	if err != nil {
		t.Fatalf("context not stored: %v", err)
	}
	if !reflect.DeepEqual(sc.Entities.AdditionalServices, []string{"thermostat_install"}) {
		t.Fatalf("expected merged addons, got %v", sc.Entities.AdditionalServices)
	}
	if !sc.Entities.BundleRequested {
		t.Fatal("expected bundleRequested after merge")
	}
	// Original facts survive the merge.
	if sc.Entities.ServiceType != domain.ServiceACRepair || sc.Entities.Urgency != domain.UrgencyHigh {
		t.Fatalf("follow-up erased original facts: %+v", sc.Entities)
	}
	if len(sc.RawHistory) != 2 {
		t.Fatalf("expected 2 history messages, got %d", len(sc.RawHistory))
	}
	// 3 initial records + bundle + pricing
	if len(sc.Steps) != 5 {
		t.Fatalf("expected 5 stage records, got %d", len(sc.Steps))
	}
}

func TestSubmitFollowup_UnknownRequest(t *testing.T) {
	svc, _ := newTestService(t, nil)
	_, err := svc.SubmitFollowup(context.Background(), "unknown-id", "add a thermostat too")
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSubmitFollowup_SchedulingChangeRoutesCalendar(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	initial, err := svc.SubmitRequest(ctx, "My AC is broken. Can someone fix it this week?", nil)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	resp, err := svc.SubmitFollowup(ctx, initial.RequestID, "What appointment times are available?")
	if err != nil {
		t.Fatalf("followup failed: %v", err)
	}
	if _, ok := resp.Result["availability"]; !ok {
		t.Fatalf("expected availability result, got %v", resp.Result)
	}
	if len(resp.ActionsTaken) == 0 || resp.ActionsTaken[0] != "Checked technician availability" {
		t.Fatalf("expected calendar routing, got %v", resp.ActionsTaken)
	}
}

func TestSubmitFollowup_GeneralRoutesCommunication(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	initial, err := svc.SubmitRequest(ctx, "My AC is broken. Can someone fix it this week?", nil)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	resp, err := svc.SubmitFollowup(ctx, initial.RequestID, "thanks a lot")
	if err != nil {
		t.Fatalf("followup failed: %v", err)
	}
	wantActions := []string{"Acknowledged the request"}
	if !reflect.DeepEqual(resp.ActionsTaken, wantActions) {
		t.Fatalf("expected communication only, got %v", resp.ActionsTaken)
	}
}

func TestClassifyFollowup_Priority(t *testing.T) {
	cases := []struct {
		name  string
		facts domain.IntentFacts
		text  string
		want  string
	}{
		{
			name:  "bundle beats pricing",
			facts: domain.IntentFacts{BundleRequested: true, PricingRequested: true},
			want:  intentBundleRequest,
		},
		{
			name:  "addons imply bundle intent",
			facts: domain.IntentFacts{AdditionalServices: []string{"duct_cleaning"}},
			want:  intentBundleRequest,
		},
		{
			name:  "pricing beats scheduling",
			facts: domain.IntentFacts{PricingRequested: true, SchedulingRequested: true},
			want:  intentPricingQuery,
		},
		{
			name:  "scheduling beats service modification",
			facts: domain.IntentFacts{SchedulingRequested: true, Urgency: domain.UrgencyEmergency},
			want:  intentSchedulingChange,
		},
		{
			name:  "service modification",
			facts: domain.IntentFacts{ServiceType: domain.ServiceHeating, Urgency: domain.UrgencyUnset},
			want:  intentServiceModification,
		},
		{
			name:  "clarification",
			facts: domain.IntentFacts{ServiceType: domain.ServiceUnknown, Urgency: domain.UrgencyUnset},
			text:  "was that with tax?",
			want:  intentClarification,
		},
		{
			name:  "general",
			facts: domain.IntentFacts{ServiceType: domain.ServiceUnknown, Urgency: domain.UrgencyUnset},
			text:  "thanks",
			want:  intentGeneral,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := classifyFollowup(tc.facts, tc.text); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}
