package service

import (
	"reflect"
	"testing"

	"onepath_dispatch_backend/internal/dispatch/domain"
)

func TestPlan_CommunicationAlwaysFirst(t *testing.T) {
	plan := Plan(domain.NewIntentFacts())
	if len(plan) == 0 || plan[0] != domain.StageCommunication {
		t.Fatalf("expected communication first, got %v", plan)
	}
}

func TestPlan_ACRepairScenario(t *testing.T) {
	facts := domain.IntentFacts{
		ServiceType:         domain.ServiceACRepair,
		Urgency:             domain.UrgencyHigh,
		PricingRequested:    true,
		SchedulingRequested: true,
	}
	want := []domain.StageID{domain.StageCommunication, domain.StageCalendar, domain.StagePricing}
	if got := Plan(facts); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestPlan_BundleImpliesPricing(t *testing.T) {
	facts := domain.IntentFacts{
		ServiceType:        domain.ServiceACRepair,
		Urgency:            domain.UrgencyHigh,
		AdditionalServices: []string{"thermostat_install"},
		BundleRequested:    true,
	}
	want := []domain.StageID{
		domain.StageCommunication, domain.StageBundle, domain.StageCalendar, domain.StagePricing,
	}
	if got := Plan(facts); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestPlan_CalendarOnUrgencyWithoutSchedulingRequest(t *testing.T) {
	for _, urgency := range []domain.Urgency{domain.UrgencyEmergency, domain.UrgencyHigh} {
		plan := Plan(domain.IntentFacts{ServiceType: domain.ServicePlumbing, Urgency: urgency})
		if !planContains(plan, domain.StageCalendar) {
			t.Fatalf("urgency %s: expected calendar in plan %v", urgency, plan)
		}
	}
	for _, urgency := range []domain.Urgency{domain.UrgencyNormal, domain.UrgencyLow, domain.UrgencyUnset} {
		plan := Plan(domain.IntentFacts{ServiceType: domain.ServicePlumbing, Urgency: urgency})
		if planContains(plan, domain.StageCalendar) {
			t.Fatalf("urgency %s: did not expect calendar in plan %v", urgency, plan)
		}
	}
}

func TestPlan_NoDuplicateStages(t *testing.T) {
	facts := domain.IntentFacts{
		ServiceType:         domain.ServiceHeating,
		Urgency:             domain.UrgencyEmergency,
		AdditionalServices:  []string{"duct_cleaning", "filter_replacement"},
		BundleRequested:     true,
		PricingRequested:    true,
		SchedulingRequested: true,
	}
	plan := Plan(facts)
	seen := map[domain.StageID]bool{}
	for _, stage := range plan {
		if seen[stage] {
			t.Fatalf("stage %s appears twice in %v", stage, plan)
		}
		seen[stage] = true
	}
	want := []domain.StageID{
		domain.StageCommunication, domain.StageBundle, domain.StageCalendar, domain.StagePricing,
	}
	if !reflect.DeepEqual(plan, want) {
		t.Fatalf("expected full chain %v, got %v", want, plan)
	}
}

func TestInsertStage_KeepsChainOrder(t *testing.T) {
	plan := []domain.StageID{domain.StageCommunication, domain.StagePricing}

	// A calendar added after planning must still run before pricing so its
	// single-visit confirmation can unlock the same-visit savings.
	got := insertStage(plan, domain.StageCalendar)
	want := []domain.StageID{domain.StageCommunication, domain.StageCalendar, domain.StagePricing}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	// Inserting a stage already in the plan changes nothing.
	if again := insertStage(got, domain.StagePricing); !reflect.DeepEqual(again, got) {
		t.Fatalf("expected %v unchanged, got %v", got, again)
	}

	bundled := insertStage([]domain.StageID{domain.StageCommunication, domain.StageCalendar, domain.StagePricing}, domain.StageBundle)
	wantBundled := []domain.StageID{
		domain.StageCommunication, domain.StageBundle, domain.StageCalendar, domain.StagePricing,
	}
	if !reflect.DeepEqual(bundled, wantBundled) {
		t.Fatalf("expected %v, got %v", wantBundled, bundled)
	}
}
