package availability

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"onepath_dispatch_backend/platform/apperr"

	"onepath_dispatch_backend/internal/dispatch/domain"
)

func TestStaticClient_EmergencySlots(t *testing.T) {
	fixed := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)
	client := &StaticClient{now: func() time.Time { return fixed }}

	result, err := client.CheckAvailability(context.Background(), domain.ServiceACRepair, domain.UrgencyEmergency, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Slots) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(result.Slots))
	}

	// First emergency slot lands same day, two hours out on the hour.
	want := time.Date(2026, 3, 10, 16, 0, 0, 0, time.UTC)
	if !result.Slots[0].DateTime.Equal(want) {
		t.Fatalf("expected first slot at %v, got %v", want, result.Slots[0].DateTime)
	}
	for _, s := range result.Slots {
		if s.Surcharge != 50 {
			t.Fatalf("expected emergency surcharge 50 on every slot, got %v", s.Surcharge)
		}
	}
	if !result.SingleVisitPossible {
		t.Fatal("expected single visit to be possible")
	}
}

func TestStaticClient_HighUrgencyStartsNextMorning(t *testing.T) {
	fixed := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)
	client := &StaticClient{now: func() time.Time { return fixed }}

	result, err := client.CheckAvailability(context.Background(), domain.ServiceHeating, domain.UrgencyHigh, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)
	if !result.Slots[0].DateTime.Equal(want) {
		t.Fatalf("expected first slot at %v, got %v", want, result.Slots[0].DateTime)
	}
	if result.Slots[0].Surcharge != 0 {
		t.Fatalf("expected no surcharge, got %v", result.Slots[0].Surcharge)
	}
}

func TestStaticClient_Recommendation(t *testing.T) {
	client := NewStaticClient()

	result, err := client.CheckAvailability(context.Background(), domain.ServicePlumbing, domain.UrgencyNormal, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.RecommendedSlot == nil || result.EarliestAvailable == nil {
		t.Fatal("expected derived slots to be set")
	}
	// tech-101 has the lowest travel time and the earliest slot.
	if result.RecommendedSlot.TechnicianID != "tech-101" {
		t.Fatalf("expected tech-101 recommended, got %s", result.RecommendedSlot.TechnicianID)
	}
	if !result.EarliestAvailable.DateTime.Equal(result.Slots[0].DateTime) {
		t.Fatalf("expected earliest slot %v, got %v", result.Slots[0].DateTime, result.EarliestAvailable.DateTime)
	}
}

func TestFinalize_TravelTimeTieBreaksOnEarliest(t *testing.T) {
	base := time.Date(2026, 3, 12, 9, 0, 0, 0, time.UTC)
	result := finalize(domain.AvailabilityResult{
		Slots: []domain.Slot{
			{DateTime: base.Add(24 * time.Hour), TechnicianID: "late", TravelTime: 20},
			{DateTime: base, TechnicianID: "early", TravelTime: 20},
			{DateTime: base.Add(48 * time.Hour), TechnicianID: "far", TravelTime: 45},
		},
	})

	if result.RecommendedSlot.TechnicianID != "early" {
		t.Fatalf("expected tie to break on earliest slot, got %s", result.RecommendedSlot.TechnicianID)
	}
	if result.EarliestAvailable.TechnicianID != "early" {
		t.Fatalf("expected earliest slot, got %s", result.EarliestAvailable.TechnicianID)
	}
}

func TestHTTPClient_CheckAvailability(t *testing.T) {
	slotTime := time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing bearer key, got %q", r.Header.Get("Authorization"))
		}
		var req availabilityRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if req.ServiceType != domain.ServiceACRepair || req.Urgency != domain.UrgencyHigh {
			t.Errorf("unexpected request: %+v", req)
		}

		_ = json.NewEncoder(w).Encode(domain.AvailabilityResult{
			Slots: []domain.Slot{
				{DateTime: slotTime, TechnicianID: "ext-1", TravelTime: 30},
				{DateTime: slotTime.Add(2 * time.Hour), TechnicianID: "ext-2", TravelTime: 10},
			},
			SingleVisitPossible: true,
		})
	}))
	defer server.Close()

	client := NewHTTPClient(HTTPConfig{BaseURL: server.URL, APIKey: "test-key"})
	result, err := client.CheckAvailability(context.Background(), domain.ServiceACRepair, domain.UrgencyHigh, "zip 1234")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(result.Slots))
	}
	// Derived fields are recomputed locally from the slot list.
	if result.RecommendedSlot == nil || result.RecommendedSlot.TechnicianID != "ext-2" {
		t.Fatalf("expected ext-2 recommended, got %+v", result.RecommendedSlot)
	}
	if result.EarliestAvailable == nil || result.EarliestAvailable.TechnicianID != "ext-1" {
		t.Fatalf("expected ext-1 earliest, got %+v", result.EarliestAvailable)
	}
}

func TestHTTPClient_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend down", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewHTTPClient(HTTPConfig{BaseURL: server.URL})
	_, err := client.CheckAvailability(context.Background(), domain.ServiceACRepair, domain.UrgencyHigh, "")
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
}
