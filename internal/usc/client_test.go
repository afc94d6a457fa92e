package usc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"squash-booking-bot/internal/pkg/dates"
)

// newTestClient builds a client with no retry delay so tests run fast.
func newTestClient(baseURL string) *Client {
	c := NewClient(baseURL)
	c.newBackOff = func() backoff.BackOff {
		return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, maxAttempts-1)
	}
	return c
}

const authBody = `{
	"access_token": "token",
	"token_type": "Bearer",
	"refresh_token": "refresh",
	"scope": "scope",
	"id_token": "id",
	"expires_in": "3600"
}`

func TestAuthenticateRetriesOn400(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}
		fmt.Fprint(w, authBody)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	auth, err := c.Authenticate(context.Background(), "test@usc.nl", "password")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", auth.TokenType)
	assert.EqualValues(t, 3, calls.Load(), "should retry twice then succeed")
}

func TestMemberRetriesOn429(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 2 {
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"id": 123, "email": "test@usc.nl"}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	c.auth = &Auth{TokenType: "Bearer", AccessToken: "token"}

	info, err := c.Member(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 123, info.ID)
	assert.EqualValues(t, 2, calls.Load(), "should retry once then succeed")
}

func TestSlotsRetriesOn500(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"data": [], "page": 1, "count": 0, "total": 0, "pageCount": 0}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	c.auth = &Auth{TokenType: "Bearer", AccessToken: "token"}

	resp, err := c.Slots(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Empty(t, resp.Data)
	assert.EqualValues(t, 3, calls.Load(), "should retry twice then succeed")
}

func TestNoRetryOnSuccess(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, authBody)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.Authenticate(context.Background(), "test@usc.nl", "password")
	require.NoError(t, err)
	assert.EqualValues(t, 1, calls.Load(), "should not retry on success")
}

func TestMaxRetriesExceeded(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "Bad Request", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.Authenticate(context.Background(), "test@usc.nl", "password")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.EqualValues(t, maxAttempts, calls.Load(), "should give up after the attempt budget")
}

func TestRetryOnNetworkError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 2 {
			// Drop the connection to simulate a network failure.
			hj, ok := w.(http.Hijacker)
			if !ok {
				t.Fatal("response writer does not support hijacking")
			}
			conn, _, err := hj.Hijack()
			require.NoError(t, err)
			conn.Close()
			return
		}
		fmt.Fprint(w, authBody)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.Authenticate(context.Background(), "test@usc.nl", "password")
	require.NoError(t, err)
	assert.EqualValues(t, 2, calls.Load(), "should retry once then succeed")
}

func TestSlotsRetriesOnValidationError(t *testing.T) {
	invalid := `{"data": [{
		"startDate": "2024-03-20T17:30:00.000Z",
		"endDate": "2024-03-20T19:00:00.000Z",
		"isAvailable": true,
		"linkedProductId": null,
		"bookableProductId": 123
	}], "page": 1, "count": 1, "total": 1, "pageCount": 1}`
	valid := `{"data": [{
		"startDate": "2024-03-20T17:30:00.000Z",
		"endDate": "2024-03-20T19:00:00.000Z",
		"isAvailable": true,
		"linkedProductId": 456,
		"bookableProductId": 123
	}], "page": 1, "count": 1, "total": 1, "pageCount": 1}`

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			fmt.Fprint(w, invalid)
			return
		}
		fmt.Fprint(w, valid)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	c.auth = &Auth{TokenType: "Bearer", AccessToken: "token"}

	resp, err := c.Slots(context.Background(), time.Now())
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.EqualValues(t, 456, resp.Data[0].LinkedProductID)
	assert.EqualValues(t, 3, calls.Load(), "should retry twice then succeed")
}

func TestCallsRequireAuthentication(t *testing.T) {
	c := newTestClient("http://localhost:1")

	_, err := c.Slots(context.Background(), time.Now())
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = c.Member(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	err = c.BookSlot(context.Background(), BookingData{})
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestSlotsQueryWindow(t *testing.T) {
	var gotFilter string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotFilter = r.URL.Query().Get("s")
		fmt.Fprint(w, `{"data": [], "page": 1, "count": 0, "total": 0, "pageCount": 0}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	c.auth = &Auth{TokenType: "Bearer", AccessToken: "token"}

	date := time.Date(2025, 3, 20, 17, 30, 0, 0, dates.Amsterdam)
	_, err := c.Slots(context.Background(), date)
	require.NoError(t, err)
	assert.Contains(t, gotFilter, `"startDate":"2025-03-20T00:00:00.000Z"`)
	assert.Contains(t, gotFilter, `"endDate":"2025-03-20T23:00:00.000Z"`)
}
