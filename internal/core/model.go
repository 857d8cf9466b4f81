package core

import (
	"time"
)

// Email represents an inbound email message. No field is guaranteed to be
// present; extraction must tolerate empty values.
type Email struct {
	ID      string `json:"id,omitempty"`
	From    string `json:"from"`
	Subject string `json:"subject"`
	Snippet string `json:"snippet"`
}

// Source is a back-reference from a subscription record to the email it
// was extracted from.
type Source struct {
	EmailID string `json:"email_id,omitempty"`
	From    string `json:"from,omitempty"`
}

// SubscriptionRecord is the structured result of classifying one email.
// The field names are a wire contract with downstream consumers.
type SubscriptionRecord struct {
	ServiceName     string   `json:"service_name"`
	Category        string   `json:"category"`
	SubscribedDate  *string  `json:"subscribed_date"`
	NextBillingDate *string  `json:"next_billing_date"`
	BillingCycle    string   `json:"billing_cycle"`
	Amount          *float64 `json:"amount"`
	Currency        *string  `json:"currency"`
	Status          string   `json:"status"`
	Confidence      *float64 `json:"confidence,omitempty"`
	Source          Source   `json:"source"`
}

// ResultBatch is the output of one pipeline run.
type ResultBatch struct {
	GeneratedAt   string               `json:"generated_at"`
	Subscriptions []SubscriptionRecord `json:"subscriptions"`
}

// Service categories.
const (
	CategoryStreaming    = "Streaming"
	CategoryProductivity = "Productivity"
	CategoryCloud        = "Cloud"
	CategoryOther        = "Other"
)

// Billing cycles.
const (
	CycleMonthly = "monthly"
	CycleYearly  = "yearly"
)

// Subscription statuses, in detection priority order.
const (
	StatusPaymentFailed = "payment_failed"
	StatusRenewalNotice = "renewal_notice"
	StatusTrial         = "trial"
	StatusReceipt       = "receipt"
	StatusUnknown       = "unknown"
)

// ServiceUnknown is the service name used when the sender address yields
// no recognizable domain label.
const ServiceUnknown = "Unknown"

// VerdictEntry is a cached gate verdict for a sender/subject pair.
type VerdictEntry struct {
	Key            string
	IsSubscription bool
	LastSeen       time.Time
	ExpiresAt      time.Time
}
