package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubGate answers from a fixed map and counts calls per sender.
type stubGate struct {
	verdicts map[string]bool
	errs     map[string]error
	calls    map[string]int
}

func newStubGate() *stubGate {
	return &stubGate{
		verdicts: make(map[string]bool),
		errs:     make(map[string]error),
		calls:    make(map[string]int),
	}
}

func (g *stubGate) IsSubscription(_ context.Context, email *Email) (bool, error) {
	g.calls[email.From]++
	if err, ok := g.errs[email.From]; ok {
		return false, err
	}
	return g.verdicts[email.From], nil
}

// recordingSink captures delivered batches.
type recordingSink struct {
	batches []*ResultBatch
	err     error
}

func (s *recordingSink) Deliver(_ context.Context, batch *ResultBatch) error {
	s.batches = append(s.batches, batch)
	return s.err
}

// fakeCache is a minimal VerdictCache backed by a map, without expiry.
type fakeCache struct {
	entries map[string]*VerdictEntry
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]*VerdictEntry)}
}

func (c *fakeCache) Get(_ context.Context, key string) (*VerdictEntry, error) {
	if entry, ok := c.entries[key]; ok {
		return entry, nil
	}
	return nil, errors.New("not found")
}

func (c *fakeCache) Set(_ context.Context, entry *VerdictEntry) error {
	c.entries[entry.Key] = entry
	return nil
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	delete(c.entries, key)
	return nil
}

func (c *fakeCache) Cleanup(_ context.Context) error { return nil }

func newTestService(gate GateClient, sink ResultSink, cache VerdictCache, known []string) *PipelineService {
	cacheEnabled := cache != nil
	return NewPipelineService(
		gate,
		NewRuleEngine(),
		sink,
		cache,
		zap.NewNop(),
		cacheEnabled,
		time.Hour,
		known,
	)
}

func TestAnalyzeGateFiltersEmails(t *testing.T) {
	gate := newStubGate()
	gate.verdicts["info@netflix.com"] = true
	gate.verdicts["friend@gmail.com"] = false

	svc := newTestService(gate, &recordingSink{}, nil, nil)

	emails := []Email{
		{ID: "1", From: "info@netflix.com", Subject: "Your Netflix receipt", Snippet: "charged $15.49 for your monthly subscription"},
		{ID: "2", From: "friend@gmail.com", Subject: "lunch?", Snippet: "are you free tomorrow"},
	}

	batch := svc.Analyze(context.Background(), emails)

	require.Len(t, batch.Subscriptions, 1)
	assert.Equal(t, "Netflix", batch.Subscriptions[0].ServiceName)
	assert.Equal(t, "1", batch.Subscriptions[0].Source.EmailID)
}

func TestAnalyzeGatedOutProducesEmptyBatch(t *testing.T) {
	gate := newStubGate() // answers false for everything

	svc := newTestService(gate, &recordingSink{}, nil, nil)

	batch := svc.Analyze(context.Background(), []Email{
		{ID: "1", From: "info@netflix.com", Subject: "receipt", Snippet: "$1.00"},
	})

	assert.Len(t, batch.Subscriptions, 0)
}

func TestAnalyzePreservesInputOrder(t *testing.T) {
	gate := newStubGate()
	gate.verdicts["a@netflix.com"] = true
	gate.verdicts["b@gmail.com"] = false
	gate.verdicts["c@spotify.com"] = true
	gate.verdicts["d@adobe.com"] = true

	svc := newTestService(gate, &recordingSink{}, nil, nil)

	emails := []Email{
		{ID: "1", From: "a@netflix.com"},
		{ID: "2", From: "b@gmail.com"},
		{ID: "3", From: "c@spotify.com"},
		{ID: "4", From: "d@adobe.com"},
	}

	batch := svc.Analyze(context.Background(), emails)

	require.Len(t, batch.Subscriptions, 3)
	assert.Equal(t, "1", batch.Subscriptions[0].Source.EmailID)
	assert.Equal(t, "3", batch.Subscriptions[1].Source.EmailID)
	assert.Equal(t, "4", batch.Subscriptions[2].Source.EmailID)
}

func TestAnalyzeFailsClosedOnGateError(t *testing.T) {
	gate := newStubGate()
	gate.errs["broken@example.com"] = errors.New("connection refused")
	gate.verdicts["info@netflix.com"] = true

	svc := newTestService(gate, &recordingSink{}, nil, nil)

	// The failing email is excluded but must not abort the batch.
	batch := svc.Analyze(context.Background(), []Email{
		{ID: "1", From: "broken@example.com", Subject: "receipt", Snippet: "$9.99"},
		{ID: "2", From: "info@netflix.com", Subject: "receipt", Snippet: "$9.99"},
	})

	require.Len(t, batch.Subscriptions, 1)
	assert.Equal(t, "2", batch.Subscriptions[0].Source.EmailID)
}

func TestAnalyzeStripsConfidence(t *testing.T) {
	gate := newStubGate()
	gate.verdicts["info@netflix.com"] = true

	svc := newTestService(gate, &recordingSink{}, nil, nil)

	batch := svc.Analyze(context.Background(), []Email{
		{ID: "1", From: "info@netflix.com", Subject: "receipt", Snippet: "$9.99"},
	})

	require.Len(t, batch.Subscriptions, 1)
	assert.Nil(t, batch.Subscriptions[0].Confidence)

	// The rule-only surface keeps it.
	record := svc.Process(&Email{From: "info@netflix.com", Subject: "receipt", Snippet: "$9.99"})
	assert.NotNil(t, record.Confidence)
}

func TestAnalyzeGeneratedAtIsUTC(t *testing.T) {
	svc := newTestService(newStubGate(), &recordingSink{}, nil, nil)

	batch := svc.Analyze(context.Background(), nil)

	ts, err := time.Parse(time.RFC3339, batch.GeneratedAt)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, ts.Location())
	assert.WithinDuration(t, time.Now().UTC(), ts, time.Minute)
}

func TestAnalyzeAndSendDeliversBatch(t *testing.T) {
	gate := newStubGate()
	gate.verdicts["info@netflix.com"] = true
	sink := &recordingSink{}

	svc := newTestService(gate, sink, nil, nil)

	batch, err := svc.AnalyzeAndSend(context.Background(), []Email{
		{ID: "1", From: "info@netflix.com", Subject: "receipt", Snippet: "$15.49"},
	})

	require.NoError(t, err)
	require.Len(t, sink.batches, 1)
	assert.Equal(t, batch, sink.batches[0])
}

func TestAnalyzeAndSendReportsDeliveryFailure(t *testing.T) {
	sink := &recordingSink{err: errors.New("sink unavailable")}

	svc := newTestService(newStubGate(), sink, nil, nil)

	batch, err := svc.AnalyzeAndSend(context.Background(), nil)

	assert.Error(t, err)
	// The batch is still returned so the caller can inspect it; it is
	// not re-queued.
	assert.NotNil(t, batch)
	assert.Len(t, sink.batches, 1)
}

func TestKnownSenderBypassesGate(t *testing.T) {
	gate := newStubGate() // would answer false

	svc := newTestService(gate, &recordingSink{}, nil, []string{"netflix.com"})

	batch := svc.Analyze(context.Background(), []Email{
		{ID: "1", From: "info@netflix.com", Subject: "receipt", Snippet: "$15.49"},
	})

	require.Len(t, batch.Subscriptions, 1)
	assert.Zero(t, gate.calls["info@netflix.com"])
}

func TestVerdictCacheAvoidsRepeatGateCalls(t *testing.T) {
	gate := newStubGate()
	gate.verdicts["info@netflix.com"] = true
	cache := newFakeCache()

	svc := newTestService(gate, &recordingSink{}, cache, nil)

	email := Email{ID: "1", From: "info@netflix.com", Subject: "receipt", Snippet: "$15.49"}

	svc.Analyze(context.Background(), []Email{email})
	svc.Analyze(context.Background(), []Email{email})

	assert.Equal(t, 1, gate.calls["info@netflix.com"])
}

func TestGateFailureIsNotCached(t *testing.T) {
	gate := newStubGate()
	gate.errs["flaky@example.com"] = errors.New("timeout")
	cache := newFakeCache()

	svc := newTestService(gate, &recordingSink{}, cache, nil)

	email := Email{From: "flaky@example.com", Subject: "receipt", Snippet: "$1"}

	svc.Analyze(context.Background(), []Email{email})
	svc.Analyze(context.Background(), []Email{email})

	// Both runs must hit the gate; transport failures are never cached.
	assert.Equal(t, 2, gate.calls["flaky@example.com"])
}
