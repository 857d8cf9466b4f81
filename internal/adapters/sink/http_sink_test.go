package sink

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/karnsiree/subscription-radar/internal/core"
)

func sampleBatch() *core.ResultBatch {
	amount := 15.49
	currency := "USD"
	return &core.ResultBatch{
		GeneratedAt: "2026-08-29T12:00:00Z",
		Subscriptions: []core.SubscriptionRecord{
			{
				ServiceName:  "Netflix",
				Category:     core.CategoryStreaming,
				BillingCycle: core.CycleMonthly,
				Amount:       &amount,
				Currency:     &currency,
				Status:       core.StatusReceipt,
				Source:       core.Source{EmailID: "1", From: "info@netflix.com"},
			},
		},
	}
}

func TestHTTPSinkDeliver(t *testing.T) {
	var body []byte
	var contentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		contentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	s := NewHTTPSink(server.URL, 5*time.Second, zap.NewNop())
	require.NoError(t, s.Deliver(context.Background(), sampleBatch()))

	assert.Equal(t, "application/json", contentType)

	// Downstream consumers depend on these exact field names.
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Contains(t, payload, "generated_at")
	assert.Contains(t, payload, "subscriptions")

	subs := payload["subscriptions"].([]interface{})
	require.Len(t, subs, 1)
	record := subs[0].(map[string]interface{})
	for _, field := range []string{
		"service_name", "category", "subscribed_date", "next_billing_date",
		"billing_cycle", "amount", "currency", "status", "source",
	} {
		assert.Contains(t, record, field)
	}
	assert.NotContains(t, record, "confidence")

	src := record["source"].(map[string]interface{})
	assert.Equal(t, "1", src["email_id"])
	assert.Equal(t, "info@netflix.com", src["from"])
}

func TestHTTPSinkNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer server.Close()

	s := NewHTTPSink(server.URL, 5*time.Second, zap.NewNop())
	err := s.Deliver(context.Background(), sampleBatch())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestHTTPSinkConnectionRefused(t *testing.T) {
	s := NewHTTPSink("http://127.0.0.1:1", time.Second, zap.NewNop())
	assert.Error(t, s.Deliver(context.Background(), sampleBatch()))
}
