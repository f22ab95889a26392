// Package pricing computes cost breakdowns for service selections from a
// static catalog. The engine is a pure function over the catalog; the
// catalog itself can be overridden from a YAML file at startup.
package pricing

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"onepath_dispatch_backend/internal/dispatch/domain"
)

// BaseRate is the diagnostic + repair rate row for one service type.
type BaseRate struct {
	Diagnostic float64 `yaml:"diagnostic"`
	Repair     float64 `yaml:"repair"`
}

// Cost is the combined base cost of the row.
func (r BaseRate) Cost() float64 {
	return r.Diagnostic + r.Repair
}

// BundleDef maps a service set to a discount policy.
type BundleDef struct {
	Name            string               `yaml:"name"`
	PrimaryServices []domain.ServiceType `yaml:"primaryServices"`
	Addons          []string             `yaml:"addons"`
	DiscountPercent float64              `yaml:"discountPercent"`
	SameVisitBonus  float64              `yaml:"sameVisitBonus"`
}

// Covers reports whether the bundle applies to the given primary service and
// at least one of the requested addons.
func (b BundleDef) Covers(service domain.ServiceType, addons []string) bool {
	primaryOK := false
	for _, s := range b.PrimaryServices {
		if s == service {
			primaryOK = true
			break
		}
	}
	if !primaryOK {
		return false
	}
	for _, requested := range addons {
		for _, covered := range b.Addons {
			if requested == covered {
				return true
			}
		}
	}
	return false
}

// Catalog holds every rate the pricing engine needs.
type Catalog struct {
	BaseRates         map[domain.ServiceType]BaseRate `yaml:"baseRates"`
	DefaultRate       BaseRate                        `yaml:"defaultRate"`
	AddonPrices       map[string]float64              `yaml:"addonPrices"`
	UrgencySurcharges map[domain.Urgency]float64      `yaml:"urgencySurcharges"`
	TaxRate           float64                         `yaml:"taxRate"`
	BundleDiscount    float64                         `yaml:"bundleDiscount"`
	SameVisitBonus    float64                         `yaml:"sameVisitBonus"`
	Bundles           []BundleDef                     `yaml:"bundles"`
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return &Catalog{
		BaseRates: map[domain.ServiceType]BaseRate{
			domain.ServiceACRepair:   {Diagnostic: 75, Repair: 150},
			domain.ServiceHeating:    {Diagnostic: 85, Repair: 160},
			domain.ServicePlumbing:   {Diagnostic: 65, Repair: 120},
			domain.ServiceElectrical: {Diagnostic: 70, Repair: 125},
		},
		DefaultRate: BaseRate{Diagnostic: 60, Repair: 90},
		AddonPrices: map[string]float64{
			"thermostat_install": 200,
			"duct_cleaning":      120,
			"filter_replacement": 45,
			"water_heater_flush": 110,
			"surge_protection":   90,
		},
		UrgencySurcharges: map[domain.Urgency]float64{
			domain.UrgencyEmergency: 75,
			domain.UrgencyHigh:      25,
		},
		TaxRate:        0.08,
		BundleDiscount: 0.15,
		SameVisitBonus: 25,
		Bundles: []BundleDef{
			{
				Name:            "hvac_service_bundle",
				PrimaryServices: []domain.ServiceType{domain.ServiceACRepair, domain.ServiceHeating},
				Addons:          []string{"thermostat_install", "duct_cleaning", "filter_replacement"},
				DiscountPercent: 15,
				SameVisitBonus:  25,
			},
			{
				Name:            "plumbing_protect_bundle",
				PrimaryServices: []domain.ServiceType{domain.ServicePlumbing},
				Addons:          []string{"water_heater_flush", "filter_replacement"},
				DiscountPercent: 15,
				SameVisitBonus:  25,
			},
			{
				Name:            "electrical_safety_bundle",
				PrimaryServices: []domain.ServiceType{domain.ServiceElectrical},
				Addons:          []string{"surge_protection"},
				DiscountPercent: 15,
				SameVisitBonus:  25,
			},
		},
	}
}

// Load returns the default catalog overlaid with the YAML file at path.
// An empty path returns the default catalog unchanged.
func Load(path string) (*Catalog, error) {
	catalog := Default()
	if path == "" {
		return catalog, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pricing catalog: %w", err)
	}
	if err := yaml.Unmarshal(data, catalog); err != nil {
		return nil, fmt.Errorf("failed to parse pricing catalog: %w", err)
	}
	if catalog.TaxRate < 0 || catalog.TaxRate >= 1 {
		return nil, fmt.Errorf("pricing catalog: tax rate %v out of range", catalog.TaxRate)
	}
	if catalog.BundleDiscount < 0 || catalog.BundleDiscount >= 1 {
		return nil, fmt.Errorf("pricing catalog: bundle discount %v out of range", catalog.BundleDiscount)
	}
	return catalog, nil
}

// BaseRateFor returns the rate row for the service type, falling back to the
// default row for unknown service types.
func (c *Catalog) BaseRateFor(service domain.ServiceType) BaseRate {
	if rate, ok := c.BaseRates[service]; ok {
		return rate
	}
	return c.DefaultRate
}

// MatchBundle returns the first bundle definition covering the primary
// service and addon set, in catalog declaration order.
func (c *Catalog) MatchBundle(service domain.ServiceType, addons []string) (BundleDef, bool) {
	for _, b := range c.Bundles {
		if b.Covers(service, addons) {
			return b, true
		}
	}
	return BundleDef{}, false
}
