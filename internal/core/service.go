package core

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PipelineService is the core service: it gates emails through the LLM
// classifier and runs the rule engine on the survivors.
type PipelineService struct {
	gate               GateClient
	rules              *RuleEngine
	sink               ResultSink
	cache              VerdictCache
	logger             *zap.Logger
	cacheEnabled       bool
	cacheTTL           time.Duration
	knownSenderDomains []string
}

// NewPipelineService creates a new pipeline service
func NewPipelineService(
	gate GateClient,
	rules *RuleEngine,
	sink ResultSink,
	cache VerdictCache,
	logger *zap.Logger,
	cacheEnabled bool,
	cacheTTL time.Duration,
	knownSenderDomains []string,
) *PipelineService {
	return &PipelineService{
		gate:               gate,
		rules:              rules,
		sink:               sink,
		cache:              cache,
		logger:             logger,
		cacheEnabled:       cacheEnabled,
		cacheTTL:           cacheTTL,
		knownSenderDomains: knownSenderDomains,
	}
}

// isKnownSender checks if the sender's domain is a configured billing domain
func (s *PipelineService) isKnownSender(from string) bool {
	parts := strings.Split(from, "@")
	if len(parts) != 2 {
		return false
	}

	domain := strings.ToLower(strings.TrimSuffix(parts[1], ">"))

	for _, known := range s.knownSenderDomains {
		if strings.EqualFold(domain, known) {
			return true
		}
	}

	return false
}

// verdictKey builds the cache key for an email's gate verdict.
func verdictKey(email *Email) string {
	return strings.ToLower(email.From) + "|" + email.Subject
}

// IsSubscription decides whether an email is subscription-related. Known
// billing domains bypass the gate entirely; otherwise the cached verdict is
// used when fresh, and the LLM gate is consulted as a last resort. Any gate
// failure is treated as a NO so that transport errors never misclassify an
// email as a subscription.
func (s *PipelineService) IsSubscription(ctx context.Context, email *Email) bool {
	if s.isKnownSender(email.From) {
		s.logger.Debug("Skipping gate for known billing domain",
			zap.String("sender", email.From))
		return true
	}

	key := verdictKey(email)

	if s.cacheEnabled {
		if entry, err := s.cache.Get(ctx, key); err == nil {
			s.logger.Debug("Verdict cache hit", zap.String("sender", email.From))
			return entry.IsSubscription
		}
	}

	verdict, err := s.gate.IsSubscription(ctx, email)
	if err != nil {
		// Fail closed: a transport failure excludes the email rather
		// than letting it through unclassified.
		s.logger.Warn("Gate call failed, treating as not a subscription",
			zap.String("sender", email.From),
			zap.Error(err))
		return false
	}

	if s.cacheEnabled {
		entry := &VerdictEntry{
			Key:            key,
			IsSubscription: verdict,
			LastSeen:       time.Now(),
			ExpiresAt:      time.Now().Add(s.cacheTTL),
		}
		if err := s.cache.Set(ctx, entry); err != nil {
			s.logger.Error("Failed to update verdict cache", zap.Error(err))
		}
	}

	return verdict
}

// Process runs the rule engine alone, keeping the confidence score. This is
// the non-gated surface used by the /process endpoint and the CLI.
func (s *PipelineService) Process(email *Email) *SubscriptionRecord {
	return s.rules.Process(email)
}

// Analyze gates each email in input order and runs the rule engine on the
// ones that pass. The returned batch preserves the relative input order of
// the surviving emails; gated-out emails produce no record.
func (s *PipelineService) Analyze(ctx context.Context, emails []Email) *ResultBatch {
	runID := uuid.NewString()
	records := make([]SubscriptionRecord, 0, len(emails))

	for i := range emails {
		email := &emails[i]
		if !s.IsSubscription(ctx, email) {
			s.logger.Debug("Email gated out",
				zap.String("run_id", runID),
				zap.String("sender", email.From),
				zap.String("subject", email.Subject))
			continue
		}

		record := s.rules.Process(email)
		if record == nil {
			// Reserved for a future unparseable outcome; the rule
			// engine is currently total.
			continue
		}

		// The gated pipeline does not expose the heuristic confidence;
		// only the rule-only surface carries it.
		record.Confidence = nil
		records = append(records, *record)
	}

	s.logger.Info("Pipeline run complete",
		zap.String("run_id", runID),
		zap.Int("emails_in", len(emails)),
		zap.Int("records_out", len(records)))

	return &ResultBatch{
		GeneratedAt:   time.Now().UTC().Format(time.RFC3339),
		Subscriptions: records,
	}
}

// AnalyzeAndSend runs Analyze and hands the batch to the sink. A delivery
// failure is reported to the caller; the batch is not re-queued or retried.
func (s *PipelineService) AnalyzeAndSend(ctx context.Context, emails []Email) (*ResultBatch, error) {
	batch := s.Analyze(ctx, emails)

	if err := s.sink.Deliver(ctx, batch); err != nil {
		s.logger.Error("Failed to deliver result batch",
			zap.Int("records", len(batch.Subscriptions)),
			zap.Error(err))
		return batch, err
	}

	return batch, nil
}
