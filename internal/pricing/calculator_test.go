package pricing

import (
	"math"
	"testing"

	"onepath_dispatch_backend/internal/dispatch/domain"
)

func assertIdentity(t *testing.T, b domain.PricingBreakdown) {
	t.Helper()
	want := round2(b.Subtotal - b.BundleDiscount - b.SameVisitSavings + b.UrgencySurcharge + b.Tax)
	if b.Total != want {
		t.Fatalf("total identity violated: total=%v, components give %v (%+v)", b.Total, want, b)
	}
	if b.Subtotal != round2(b.BaseCost+b.AddonCost) {
		t.Fatalf("subtotal %v != baseCost %v + addonCost %v", b.Subtotal, b.BaseCost, b.AddonCost)
	}
}

func TestCompute_ACRepairHighUrgency(t *testing.T) {
	catalog := Default()
	b := catalog.Compute(Selection{
		ServiceType: domain.ServiceACRepair,
		Urgency:     domain.UrgencyHigh,
	})

	if b.BaseCost != 225 {
		t.Fatalf("expected base cost 225, got %v", b.BaseCost)
	}
	if b.Subtotal != 225 {
		t.Fatalf("expected subtotal 225, got %v", b.Subtotal)
	}
	if b.UrgencySurcharge != 25 {
		t.Fatalf("expected surcharge 25, got %v", b.UrgencySurcharge)
	}
	if b.BundleDiscount != 0 {
		t.Fatalf("expected no bundle discount, got %v", b.BundleDiscount)
	}
	if b.Tax != 20 {
		t.Fatalf("expected tax 20, got %v", b.Tax)
	}
	if b.Total != 270 {
		t.Fatalf("expected total 270, got %v", b.Total)
	}
	assertIdentity(t, b)
}

func TestCompute_ThermostatBundle(t *testing.T) {
	catalog := Default()
	b := catalog.Compute(Selection{
		ServiceType:          domain.ServiceACRepair,
		Addons:               []string{"thermostat_install"},
		Urgency:              domain.UrgencyHigh,
		SingleVisitConfirmed: true,
		SameVisitBonus:       25,
	})

	if b.AddonCost != 200 {
		t.Fatalf("expected addon cost 200, got %v", b.AddonCost)
	}
	if b.Subtotal != 425 {
		t.Fatalf("expected subtotal 425, got %v", b.Subtotal)
	}
	if b.BundleDiscount != round2(0.15*425) {
		t.Fatalf("expected bundle discount %v, got %v", round2(0.15*425), b.BundleDiscount)
	}
	if b.SameVisitSavings != 25 {
		t.Fatalf("expected same-visit savings 25, got %v", b.SameVisitSavings)
	}
	if b.Savings != round2(b.BundleDiscount+25) {
		t.Fatalf("expected savings %v, got %v", round2(b.BundleDiscount+25), b.Savings)
	}
	assertIdentity(t, b)

	// Bundling must beat pricing the two services independently: the AC
	// repair alone totals 270 and the thermostat alone would add its price
	// plus tax.
	independent := 270 + round2(200*1.08)
	if b.Total >= independent {
		t.Fatalf("bundled total %v not below independent total %v", b.Total, independent)
	}
}

func TestCompute_BundleDiscountIffAddons(t *testing.T) {
	catalog := Default()

	for _, svc := range []domain.ServiceType{
		domain.ServiceACRepair, domain.ServiceHeating, domain.ServicePlumbing,
		domain.ServiceElectrical, domain.ServiceUnknown,
	} {
		noAddons := catalog.Compute(Selection{ServiceType: svc, Urgency: domain.UrgencyNormal})
		if noAddons.BundleDiscount != 0 {
			t.Fatalf("%s: expected zero discount without addons, got %v", svc, noAddons.BundleDiscount)
		}

		withAddons := catalog.Compute(Selection{
			ServiceType: svc,
			Addons:      []string{"duct_cleaning"},
			Urgency:     domain.UrgencyNormal,
		})
		if withAddons.BundleDiscount <= 0 {
			t.Fatalf("%s: expected non-zero discount with addons, got %v", svc, withAddons.BundleDiscount)
		}
	}
}

func TestCompute_SameVisitRequiresBundleDiscount(t *testing.T) {
	catalog := Default()

	// Single-visit confirmed but no addons: no discount, so no bonus either.
	b := catalog.Compute(Selection{
		ServiceType:          domain.ServiceACRepair,
		Urgency:              domain.UrgencyEmergency,
		SingleVisitConfirmed: true,
	})
	if b.SameVisitSavings != 0 {
		t.Fatalf("expected no same-visit savings without a bundle discount, got %v", b.SameVisitSavings)
	}
	if b.UrgencySurcharge != 75 {
		t.Fatalf("expected emergency surcharge 75, got %v", b.UrgencySurcharge)
	}
	assertIdentity(t, b)
}

func TestCompute_UnknownServiceUsesDefaultRow(t *testing.T) {
	catalog := Default()
	b := catalog.Compute(Selection{ServiceType: domain.ServiceUnknown})
	if b.BaseCost != 150 {
		t.Fatalf("expected default row cost 150, got %v", b.BaseCost)
	}
	if b.UrgencySurcharge != 0 {
		t.Fatalf("expected no surcharge for unset urgency, got %v", b.UrgencySurcharge)
	}
	assertIdentity(t, b)
}

func TestCompute_IdentityAcrossGrid(t *testing.T) {
	catalog := Default()
	services := []domain.ServiceType{
		domain.ServiceACRepair, domain.ServiceHeating, domain.ServicePlumbing,
		domain.ServiceElectrical, domain.ServiceUnknown,
	}
	urgencies := []domain.Urgency{
		domain.UrgencyEmergency, domain.UrgencyHigh, domain.UrgencyNormal,
		domain.UrgencyLow, domain.UrgencyUnset,
	}
	addonSets := [][]string{
		nil,
		{"thermostat_install"},
		{"duct_cleaning", "filter_replacement"},
		{"water_heater_flush", "surge_protection", "thermostat_install"},
	}

	for _, svc := range services {
		for _, urg := range urgencies {
			for _, addons := range addonSets {
				for _, single := range []bool{false, true} {
					b := catalog.Compute(Selection{
						ServiceType:          svc,
						Addons:               addons,
						Urgency:              urg,
						SingleVisitConfirmed: single,
					})
					assertIdentity(t, b)
					if math.Signbit(b.Total) {
						t.Fatalf("negative total %v for %s/%s/%v", b.Total, svc, urg, addons)
					}
				}
			}
		}
	}
}

func TestMatchBundle(t *testing.T) {
	catalog := Default()

	b, ok := catalog.MatchBundle(domain.ServiceACRepair, []string{"thermostat_install"})
	if !ok || b.Name != "hvac_service_bundle" {
		t.Fatalf("expected hvac_service_bundle, got %+v ok=%v", b, ok)
	}

	if _, ok := catalog.MatchBundle(domain.ServicePlumbing, []string{"thermostat_install"}); ok {
		t.Fatal("expected no bundle for plumbing + thermostat")
	}

	if _, ok := catalog.MatchBundle(domain.ServiceElectrical, nil); ok {
		t.Fatal("expected no bundle without addons")
	}
}
