package simulate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/okian/fieldforce/internal/domain/model"
)

// callerHeader matches the header the API reads the caller from.
const callerHeader = "X-User-ID"

// Client talks to the tracker API.
type Client struct {
	http    *http.Client
	baseURL string
}

// NewClient creates a client with a per-request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Ack is the response to a posted sample.
type Ack struct {
	Status    string `json:"status"`
	ID        string `json:"id"`
	Duplicate bool   `json:"duplicate"`
}

type samplePayload struct {
	ID        string  `json:"id"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Timestamp string  `json:"timestamp"`
	Activity  string  `json:"activity,omitempty"`
}

// Health checks that the service answers its health route.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", http.NoBody)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode)
	}
	return nil
}

// PostSample submits s as its own user and returns the HTTP status.
func (c *Client) PostSample(ctx context.Context, s model.LocationSample) (int, Ack, error) {
	body, err := json.Marshal(samplePayload{
		ID:        s.ID,
		Lat:       s.Lat,
		Lng:       s.Lng,
		Timestamp: s.Timestamp.Format(time.RFC3339Nano),
		Activity:  s.Activity,
	})
	if err != nil {
		return 0, Ack{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/locations", bytes.NewReader(body))
	if err != nil {
		return 0, Ack{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(callerHeader, s.UserID)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, Ack{}, err
	}
	defer resp.Body.Close()

	var ack Ack
	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusAccepted {
		if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
			return resp.StatusCode, Ack{}, fmt.Errorf("decode ack: %w", err)
		}
	} else {
		_, _ = io.Copy(io.Discard, resp.Body)
	}
	return resp.StatusCode, ack, nil
}

// Fleet reads the fleet summary as caller.
func (c *Client) Fleet(ctx context.Context, caller string) (FleetSummary, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/fleet", http.NoBody)
	if err != nil {
		return FleetSummary{}, err
	}
	req.Header.Set(callerHeader, caller)
	resp, err := c.http.Do(req)
	if err != nil {
		return FleetSummary{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return FleetSummary{}, fmt.Errorf("%w: fleet status %d", ErrUnexpected, resp.StatusCode)
	}
	var f FleetSummary
	if err := json.NewDecoder(resp.Body).Decode(&f); err != nil {
		return FleetSummary{}, fmt.Errorf("decode fleet: %w", err)
	}
	return f, nil
}

// Stored returns the number of samples the service workers have stored.
func (c *Client) Stored(ctx context.Context) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/stats", http.NoBody)
	if err != nil {
		return 0, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return 0, fmt.Errorf("%w: stats status %d", ErrUnexpected, resp.StatusCode)
	}
	var stats struct {
		Processed int64 `json:"processed"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return 0, fmt.Errorf("decode stats: %w", err)
	}
	return stats.Processed, nil
}
