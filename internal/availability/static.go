package availability

import (
	"context"
	"time"

	"onepath_dispatch_backend/internal/dispatch/domain"
)

// technician is one row of the built-in roster. Travel times are fixed per
// technician so slot recommendation is deterministic.
type technician struct {
	id         string
	travelTime int
}

var roster = []technician{
	{id: "tech-101", travelTime: 15},
	{id: "tech-205", travelTime: 25},
	{id: "tech-318", travelTime: 40},
}

// StaticClient serves slots from a fixed roster without any network calls.
// It backs local development and deployments without a scheduling API.
type StaticClient struct {
	now func() time.Time
}

var _ Client = (*StaticClient)(nil)

func NewStaticClient() *StaticClient {
	return &StaticClient{now: time.Now}
}

// CheckAvailability builds a deterministic slot list for the urgency level.
// Emergency requests get same-day slots with an emergency call-out surcharge;
// high urgency starts next morning; everything else starts in three days.
func (c *StaticClient) CheckAvailability(_ context.Context, _ domain.ServiceType, urgency domain.Urgency, _ string) (domain.AvailabilityResult, error) {
	now := c.now()

	var (
		first     time.Time
		gap       time.Duration
		surcharge float64
	)
	switch urgency {
	case domain.UrgencyEmergency:
		first = now.Truncate(time.Hour).Add(2 * time.Hour)
		gap = 4 * time.Hour
		surcharge = 50
	case domain.UrgencyHigh:
		first = nextMorning(now)
		gap = 24 * time.Hour
	default:
		first = nextMorning(now).Add(48 * time.Hour)
		gap = 24 * time.Hour
	}

	slots := make([]domain.Slot, 0, len(roster))
	for i, tech := range roster {
		slots = append(slots, domain.Slot{
			DateTime:     first.Add(time.Duration(i) * gap),
			TechnicianID: tech.id,
			TravelTime:   tech.travelTime,
			Surcharge:    surcharge,
		})
	}

	return finalize(domain.AvailabilityResult{
		Slots:               slots,
		SingleVisitPossible: true,
	}), nil
}

func nextMorning(now time.Time) time.Time {
	next := now.AddDate(0, 0, 1)
	return time.Date(next.Year(), next.Month(), next.Day(), 9, 0, 0, 0, next.Location())
}
