package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/payrelay/internal/config"
	"github.com/GTDGit/payrelay/internal/models"
	"github.com/GTDGit/payrelay/internal/utils"
)

func testResult(t *testing.T, status string) *models.PaymentResult {
	t.Helper()
	a, err := models.ParsePaidAmount("100.00")
	require.NoError(t, err)
	return &models.PaymentResult{
		InvoiceNo:          "INV1001",
		PaymentStatus:      status,
		Amount:             a,
		CurrencyCode:       "764",
		PaymentChannelCode: "CC",
		UserDefined1:       "a@b.com",
	}
}

// collaborator is a fake downstream endpoint that answers with a fixed status.
type collaborator struct {
	srv    *httptest.Server
	hits   atomic.Int32
	status int
	body   atomic.Value
}

func newCollaborator(t *testing.T, status int) *collaborator {
	t.Helper()
	c := &collaborator{status: status}
	c.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.hits.Add(1)
		var doc map[string]any
		_ = json.NewDecoder(r.Body).Decode(&doc)
		c.body.Store(doc)
		w.WriteHeader(c.status)
	}))
	t.Cleanup(c.srv.Close)
	return c
}

func (c *collaborator) lastBody() map[string]any {
	v, _ := c.body.Load().(map[string]any)
	return v
}

func dispatchConfig(orderURL, ticketURL string, retries int) *config.DispatchConfig {
	return &config.DispatchConfig{
		OrderURL:  orderURL,
		TicketURL: ticketURL,
		Timeout:   2 * time.Second,
		Retries:   retries,
		Backoff:   time.Millisecond,
	}
}

func TestDispatch_BothDelivered(t *testing.T) {
	order := newCollaborator(t, http.StatusCreated)
	ticket := newCollaborator(t, http.StatusOK)

	svc := NewDispatchService(dispatchConfig(order.srv.URL, ticket.srv.URL, 2))
	results := svc.Dispatch(context.Background(), testResult(t, "0000"))

	require.Len(t, results, 2)
	for _, r := range results {
		assert.NoError(t, r.Err)
		assert.Equal(t, 1, r.Attempts)
	}
	assert.Equal(t, int32(1), order.hits.Load())
	assert.Equal(t, int32(1), ticket.hits.Load())

	assert.Equal(t, map[string]any{
		"orderRef":      "INV1001",
		"email":         "a@b.com",
		"amount":        100.0,
		"currency":      "764",
		"paymentMethod": "CC",
		"status":        "Paid",
	}, order.lastBody())
	assert.Equal(t, map[string]any{
		"orderId":  "INV1001",
		"customer": "a@b.com",
		"issue":    "New paid order",
	}, ticket.lastBody())
}

func TestDispatch_RetriesServerErrors(t *testing.T) {
	order := newCollaborator(t, http.StatusServiceUnavailable)
	ticket := newCollaborator(t, http.StatusTooManyRequests)

	svc := NewDispatchService(dispatchConfig(order.srv.URL, ticket.srv.URL, 2))
	results := svc.Dispatch(context.Background(), testResult(t, "0000"))

	assert.Equal(t, int32(3), order.hits.Load())
	assert.Equal(t, int32(3), ticket.hits.Load())
	for _, r := range results {
		assert.ErrorIs(t, r.Err, utils.ErrDownstreamDispatch)
		assert.Equal(t, 3, r.Attempts)
	}
}

func TestDispatch_ClientErrorIsFinal(t *testing.T) {
	order := newCollaborator(t, http.StatusBadRequest)
	ticket := newCollaborator(t, http.StatusOK)

	svc := NewDispatchService(dispatchConfig(order.srv.URL, ticket.srv.URL, 3))
	results := svc.Dispatch(context.Background(), testResult(t, "0000"))

	assert.Equal(t, int32(1), order.hits.Load())
	assert.ErrorIs(t, results[0].Err, utils.ErrDownstreamDispatch)
	assert.Equal(t, http.StatusBadRequest, results[0].StatusCode)
	assert.NoError(t, results[1].Err)
}

func TestDispatch_FailuresAreIndependent(t *testing.T) {
	ticket := newCollaborator(t, http.StatusOK)

	// Nothing listens on the order URL.
	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	svc := NewDispatchService(dispatchConfig(deadURL, ticket.srv.URL, 1))
	results := svc.Dispatch(context.Background(), testResult(t, "0000"))

	assert.ErrorIs(t, results[0].Err, utils.ErrDownstreamDispatch)
	assert.NoError(t, results[1].Err)
	assert.Equal(t, int32(1), ticket.hits.Load())
}

func TestDispatch_TimeoutIsDispatchFailure(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer slow.Close()

	cfg := dispatchConfig(slow.URL, "", 0)
	cfg.Timeout = 50 * time.Millisecond
	results := NewDispatchService(cfg).Dispatch(context.Background(), testResult(t, "0000"))

	assert.ErrorIs(t, results[0].Err, utils.ErrDownstreamDispatch)
	assert.True(t, results[1].Skipped)
	assert.NoError(t, results[1].Err)
}

func TestDispatch_EmptyURLSkipped(t *testing.T) {
	results := NewDispatchService(dispatchConfig("", "", 1)).Dispatch(context.Background(), testResult(t, "0000"))
	for _, r := range results {
		assert.True(t, r.Skipped)
		assert.NoError(t, r.Err)
		assert.Zero(t, r.Attempts)
	}
}
