// Package availability answers "when can a technician come" for a service
// request, either from an external scheduling API or a built-in slot table.
package availability

import (
	"context"

	"onepath_dispatch_backend/internal/dispatch/domain"
)

// Client is the availability collaborator contract. Implementations must be
// safe for concurrent use.
type Client interface {
	CheckAvailability(ctx context.Context, serviceType domain.ServiceType, urgency domain.Urgency, location string) (domain.AvailabilityResult, error)
}

// finalize fills the derived fields of a result from its slot list:
// the earliest slot by dateTime and the recommended slot by lowest travel
// time with ties broken by earliest dateTime.
func finalize(result domain.AvailabilityResult) domain.AvailabilityResult {
	if len(result.Slots) == 0 {
		result.EarliestAvailable = nil
		result.RecommendedSlot = nil
		return result
	}

	earliest := result.Slots[0]
	recommended := result.Slots[0]
	for _, s := range result.Slots[1:] {
		if s.DateTime.Before(earliest.DateTime) {
			earliest = s
		}
		if s.TravelTime < recommended.TravelTime ||
			(s.TravelTime == recommended.TravelTime && s.DateTime.Before(recommended.DateTime)) {
			recommended = s
		}
	}

	result.EarliestAvailable = &earliest
	result.RecommendedSlot = &recommended
	return result
}
