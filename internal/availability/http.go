package availability

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"onepath_dispatch_backend/platform/apperr"

	"onepath_dispatch_backend/internal/dispatch/domain"
)

// HTTPClient queries an external scheduling API for availability.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// HTTPConfig configures the availability HTTP client.
type HTTPConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates an availability client for the scheduling API.
func NewHTTPClient(cfg HTTPConfig) *HTTPClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	return &HTTPClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type availabilityRequest struct {
	ServiceType domain.ServiceType `json:"serviceType"`
	Urgency     domain.Urgency     `json:"urgency"`
	Location    string             `json:"location,omitempty"`
}

// CheckAvailability asks the scheduling API for bookable slots. Any transport
// or decode failure surfaces as an unavailable error; the caller decides how
// the chain degrades.
func (c *HTTPClient) CheckAvailability(ctx context.Context, serviceType domain.ServiceType, urgency domain.Urgency, location string) (domain.AvailabilityResult, error) {
	reqBody := availabilityRequest{ServiceType: serviceType, Urgency: urgency, Location: location}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return domain.AvailabilityResult{}, apperr.Wrap(apperr.KindInternal, "failed to encode availability request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return domain.AvailabilityResult{}, apperr.Wrap(apperr.KindInternal, "failed to create availability request", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.AvailabilityResult{}, apperr.Wrap(apperr.KindUnavailable, "availability request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.AvailabilityResult{}, apperr.New(apperr.KindUnavailable,
			fmt.Sprintf("availability API returned %d: %s", resp.StatusCode, string(body)))
	}

	var result domain.AvailabilityResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return domain.AvailabilityResult{}, apperr.Wrap(apperr.KindUnavailable, "failed to decode availability response", err)
	}

	// The API is only trusted for the slot list itself; derived fields are
	// recomputed locally so recommendation rules stay consistent across
	// backends.
	return finalize(result), nil
}
