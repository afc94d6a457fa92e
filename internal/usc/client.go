// Package usc is a client for the USC facility reservation API.
// All calls are retried on transient failures (HTTP errors, network
// errors, schema violations) with a bounded attempt count.
package usc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"

	"squash-booking-bot/internal/pkg/dates"
)

// maxAttempts bounds every API call: one initial attempt plus three retries.
const maxAttempts = 4

// squashTagID is the facility's tag for squash court slots.
const squashTagID = 195

// ErrNotAuthenticated is returned when a call requires a prior Authenticate.
var ErrNotAuthenticated = errors.New("not authenticated")

// APIError is a non-2xx response from the facility API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("facility API returned status %d: %s", e.StatusCode, e.Body)
}

// Client talks to the facility API on behalf of one member session.
// It is not safe for concurrent use; the orchestrator creates one
// client per booking group.
type Client struct {
	hc      *http.Client
	baseURL string
	auth    *Auth

	newBackOff func() backoff.BackOff
}

// NewClient creates an unauthenticated client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		hc:      &http.Client{Timeout: 15 * time.Second},
		baseURL: baseURL,
		newBackOff: func() backoff.BackOff {
			bo := backoff.NewExponentialBackOff()
			bo.InitialInterval = 500 * time.Millisecond
			return backoff.WithMaxRetries(bo, maxAttempts-1)
		},
	}
}

// Authenticate logs in and keeps the token for subsequent calls.
func (c *Client) Authenticate(ctx context.Context, username, password string) (*Auth, error) {
	var auth Auth
	body := map[string]string{"email": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth", nil, body, &auth); err != nil {
		return nil, fmt.Errorf("authenticate %s: %w", username, err)
	}
	c.auth = &auth
	log.Debug().Str("username", username).Msg("Authenticated with facility API")
	return &auth, nil
}

// Slots lists the bookable squash slots for the given day, using the
// facility's local 00:00-23:00 window.
func (c *Client) Slots(ctx context.Context, date time.Time) (*SlotsResponse, error) {
	if c.auth == nil {
		return nil, ErrNotAuthenticated
	}

	day := date.In(dates.Amsterdam).Format("2006-01-02")
	from := day + "T00:00:00.000Z"
	until := day + "T23:00:00.000Z"

	filter, err := json.Marshal(map[string]any{
		"startDate":         from,
		"endDate":           until,
		"tagIds":            map[string]any{"$in": []int{squashTagID}},
		"availableFromDate": map[string]any{"$gt": from},
		"availableTillDate": map[string]any{"$lte": until},
	})
	if err != nil {
		return nil, err
	}
	joins, err := json.Marshal([]string{
		"linkedProduct",
		"linkedProduct.translations",
		"product",
		"product.translations",
	})
	if err != nil {
		return nil, err
	}

	query := url.Values{"s": {string(filter)}, "join": {string(joins)}}
	var resp SlotsResponse
	if err := c.do(ctx, http.MethodGet, "/bookable-slots", query, nil, &resp); err != nil {
		return nil, fmt.Errorf("get slots for %s: %w", day, err)
	}
	return &resp, nil
}

// Member fetches the authenticated member's record; its numeric id is
// needed for booking payloads.
func (c *Client) Member(ctx context.Context) (*MemberInfo, error) {
	if c.auth == nil {
		return nil, ErrNotAuthenticated
	}
	var info MemberInfo
	if err := c.do(ctx, http.MethodGet, "/auth", url.Values{"cf": {"0"}}, nil, &info); err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}
	return &info, nil
}

// BookSlot submits a booking.
func (c *Client) BookSlot(ctx context.Context, data BookingData) error {
	if c.auth == nil {
		return ErrNotAuthenticated
	}
	if err := c.do(ctx, http.MethodPost, "/participations", nil, data, nil); err != nil {
		return fmt.Errorf("book slot: %w", err)
	}
	return nil
}

type validator interface {
	validate() error
}

// do performs one API call with the retry policy applied.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload, out any) error {
	op := func() error {
		err := c.attempt(ctx, method, path, query, payload, out)
		if err != nil {
			log.Debug().Err(err).Str("method", method).Str("path", path).Msg("Facility API call failed")
		}
		return err
	}
	return backoff.Retry(op, backoff.WithContext(c.newBackOff(), ctx))
}

func (c *Client) attempt(ctx context.Context, method, path string, query url.Values, payload, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return backoff.Permanent(err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.auth != nil {
		req.Header.Set("Authorization", c.auth.TokenType+" "+c.auth.AccessToken)
	}
	if query != nil {
		req.URL.RawQuery = query.Encode()
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(data)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if v, ok := out.(validator); ok {
		return v.validate()
	}
	return nil
}
