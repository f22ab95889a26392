package pricing

import (
	"math"

	"onepath_dispatch_backend/internal/dispatch/domain"
)

// Selection is the input to a breakdown computation.
type Selection struct {
	ServiceType domain.ServiceType
	Addons      []string
	Urgency     domain.Urgency

	// SingleVisitConfirmed is true when the calendar stage confirmed a
	// single technician/single visit slot. The same-visit bonus is only
	// applied together with a non-zero bundle discount.
	SingleVisitConfirmed bool

	// SameVisitBonus overrides the catalog-level bonus when a matched
	// bundle supplies its own. Zero means "use the catalog default".
	SameVisitBonus float64
}

// round2 rounds to two decimal places. Every breakdown component is rounded
// individually so that the total identity holds exactly.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Compute builds the cost breakdown for a selection.
//
// The bundle discount is non-zero exactly when the addon set is non-empty.
// The identity
//
//	total == subtotal - bundleDiscount - sameVisitSavings + urgencySurcharge + tax
//
// holds exactly for every returned breakdown.
func (c *Catalog) Compute(sel Selection) domain.PricingBreakdown {
	baseCost := round2(c.BaseRateFor(sel.ServiceType).Cost())

	var addonCost float64
	for _, addon := range sel.Addons {
		addonCost += c.AddonPrices[addon]
	}
	addonCost = round2(addonCost)

	subtotal := round2(baseCost + addonCost)

	var bundleDiscount float64
	if len(sel.Addons) > 0 {
		bundleDiscount = round2(c.BundleDiscount * subtotal)
	}

	var sameVisitSavings float64
	if bundleDiscount > 0 && sel.SingleVisitConfirmed {
		sameVisitSavings = sel.SameVisitBonus
		if sameVisitSavings == 0 {
			sameVisitSavings = c.SameVisitBonus
		}
		sameVisitSavings = round2(sameVisitSavings)
	}

	urgencySurcharge := round2(c.UrgencySurcharges[sel.Urgency])

	taxable := subtotal - bundleDiscount - sameVisitSavings + urgencySurcharge
	tax := round2(c.TaxRate * taxable)

	total := round2(subtotal - bundleDiscount - sameVisitSavings + urgencySurcharge + tax)

	return domain.PricingBreakdown{
		BaseCost:         baseCost,
		AddonCost:        addonCost,
		Subtotal:         subtotal,
		BundleDiscount:   bundleDiscount,
		SameVisitSavings: sameVisitSavings,
		UrgencySurcharge: urgencySurcharge,
		Tax:              tax,
		Total:            total,
		Savings:          round2(bundleDiscount + sameVisitSavings),
	}
}
