package intake

import (
	"reflect"
	"testing"

	"onepath_dispatch_backend/internal/dispatch/domain"
)

func TestExtract_ACRepairThisWeek(t *testing.T) {
	facts := Extract("My AC is broken. Can someone fix it this week?")

	if facts.ServiceType != domain.ServiceACRepair {
		t.Fatalf("expected service ac_repair, got %s", facts.ServiceType)
	}
	if facts.Urgency != domain.UrgencyHigh {
		t.Fatalf("expected urgency high, got %s", facts.Urgency)
	}
	if !facts.SchedulingRequested {
		t.Fatal("expected schedulingRequested to be true")
	}
	if facts.BundleRequested {
		t.Fatal("expected bundleRequested to be false")
	}
	// "fix" marks pricing intent so the chain includes a quote.
	if !facts.PricingRequested {
		t.Fatal("expected pricingRequested to be true")
	}
	if facts.HasAddons() {
		t.Fatalf("expected no addons, got %v", facts.AdditionalServices)
	}
}

func TestExtract_ThermostatBundleFollowup(t *testing.T) {
	facts := Extract("Can you add a thermostat installation too and bundle it?")

	if !facts.BundleRequested {
		t.Fatal("expected bundleRequested to be true")
	}
	if !reflect.DeepEqual(facts.AdditionalServices, []string{"thermostat_install"}) {
		t.Fatalf("expected thermostat_install addon, got %v", facts.AdditionalServices)
	}
	if facts.ServiceType != domain.ServiceUnknown {
		t.Fatalf("expected unknown service type, got %s", facts.ServiceType)
	}
	if facts.Urgency != domain.UrgencyUnset {
		t.Fatalf("expected unset urgency, got %s", facts.Urgency)
	}
}

func TestExtract_Deterministic(t *testing.T) {
	text := "Emergency! The water heater is leaking, how much to fix and can you add a filter change too?"

	first := Extract(text)
	for i := 0; i < 10; i++ {
		if got := Extract(text); !reflect.DeepEqual(got, first) {
			t.Fatalf("extraction not deterministic: %+v vs %+v", got, first)
		}
	}

	if first.Urgency != domain.UrgencyEmergency {
		t.Fatalf("expected emergency urgency, got %s", first.Urgency)
	}
	if first.ServiceType != domain.ServicePlumbing {
		t.Fatalf("expected plumbing, got %s", first.ServiceType)
	}
	if !first.PricingRequested {
		t.Fatal("expected pricingRequested to be true")
	}
	if !reflect.DeepEqual(first.AdditionalServices, []string{"filter_replacement", "water_heater_flush"}) {
		t.Fatalf("unexpected addons: %v", first.AdditionalServices)
	}
}

func TestExtract_FirstMatchingServiceWins(t *testing.T) {
	// Both AC and heating vocabulary present; ac_repair is declared first.
	facts := Extract("The AC and the furnace are acting up")
	if facts.ServiceType != domain.ServiceACRepair {
		t.Fatalf("expected ac_repair to win, got %s", facts.ServiceType)
	}
}

func TestExtract_NoMatches(t *testing.T) {
	facts := Extract("hello there")
	if facts.ServiceType != domain.ServiceUnknown {
		t.Fatalf("expected unknown service, got %s", facts.ServiceType)
	}
	if facts.Urgency != domain.UrgencyUnset {
		t.Fatalf("expected unset urgency, got %s", facts.Urgency)
	}
	if facts.BundleRequested || facts.PricingRequested || facts.SchedulingRequested {
		t.Fatalf("expected no flags set: %+v", facts)
	}
}

func TestExtract_WordBoundaries(t *testing.T) {
	// "package" must not fire the bounded "ac" pattern.
	facts := Extract("do you offer a maintenance package deal")
	if facts.ServiceType != domain.ServiceUnknown {
		t.Fatalf("expected unknown service for %q, got %s", "package", facts.ServiceType)
	}
	// But it is a bundle indicator phrase.
	if !facts.BundleRequested {
		t.Fatal("expected bundleRequested via package indicator")
	}
}
