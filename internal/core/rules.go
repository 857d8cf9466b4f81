package core

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	serviceNameRe = regexp.MustCompile(`@([\w\-]+)\.`)
	amountRe      = regexp.MustCompile(`[$€£]\s?(\d+(\.\d{2})?)`)
)

// currencySymbols maps symbols to ISO codes, checked in this order.
var currencySymbols = []struct {
	symbol string
	code   string
}{
	{"$", "USD"},
	{"€", "EUR"},
	{"£", "GBP"},
}

// categoryMembers maps known service names to their category.
var categoryMembers = map[string]string{
	"netflix": CategoryStreaming,
	"spotify": CategoryStreaming,
	"youtube": CategoryStreaming,
	"adobe":   CategoryProductivity,
	"figma":   CategoryProductivity,
	"notion":  CategoryProductivity,
	"icloud":  CategoryCloud,
	"google":  CategoryCloud,
	"dropbox": CategoryCloud,
}

// ExtractServiceName derives a service name from the sender address: the
// domain label immediately preceding a dot after the "@", with the first
// letter capitalized. Returns ServiceUnknown when no such label exists.
func ExtractServiceName(from string) string {
	m := serviceNameRe.FindStringSubmatch(strings.ToLower(from))
	if m == nil {
		return ServiceUnknown
	}
	return capitalize(m[1])
}

// ExtractAmount returns the numeric value of the first currency-prefixed
// amount in the text, or nil when none is present. Only the first match
// counts; multiple amounts are not aggregated.
func ExtractAmount(text string) *float64 {
	m := amountRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	return &value
}

// ExtractCurrency maps the first currency symbol found in the text to its
// ISO code, or nil when no symbol is present. The symbol search is
// independent of the amount match.
func ExtractCurrency(text string) *string {
	for _, c := range currencySymbols {
		if strings.Contains(text, c.symbol) {
			code := c.code
			return &code
		}
	}
	return nil
}

// DetectBillingCycle returns "yearly" when the text mentions a yearly or
// annual plan, and "monthly" otherwise.
func DetectBillingCycle(text string) string {
	lower := strings.ToLower(text)
	if strings.Contains(lower, "year") || strings.Contains(lower, "annual") {
		return CycleYearly
	}
	return CycleMonthly
}

// DetectCategory looks up the service name against the known membership
// lists. Unknown services fall into CategoryOther.
func DetectCategory(serviceName string) string {
	if category, ok := categoryMembers[strings.ToLower(serviceName)]; ok {
		return category
	}
	return CategoryOther
}

// DetectStatus classifies the message text into a subscription status.
// Rules are an ordered priority cascade; the first matching tier wins
// regardless of where the phrase appears in the text.
func DetectStatus(text string) string {
	lower := strings.ToLower(text)

	if strings.Contains(lower, "payment failed") || strings.Contains(lower, "couldn't collect") {
		return StatusPaymentFailed
	}
	if strings.Contains(lower, "renew") {
		return StatusRenewalNotice
	}
	if strings.Contains(lower, "trial") {
		return StatusTrial
	}
	if strings.Contains(lower, "receipt") || strings.Contains(lower, "invoice") || strings.Contains(lower, "charged") {
		return StatusReceipt
	}
	return StatusUnknown
}

// CalculateConfidence combines the presence of the three main signals into
// a score in [0,1]: 0.3 for a resolved service, 0.3 for an extracted
// amount, 0.4 for a resolved status. Deterministic and side-effect free.
func CalculateConfidence(serviceName string, amount *float64, status string) float64 {
	score := 0.0
	if !strings.EqualFold(serviceName, ServiceUnknown) {
		score += 0.3
	}
	if amount != nil {
		score += 0.3
	}
	if status != StatusUnknown {
		score += 0.4
	}
	return score
}

// RuleEngine assembles a subscription record from an email using the
// heuristic extractors above. It is stateless; Process never fails.
type RuleEngine struct{}

// NewRuleEngine creates a new rule engine
func NewRuleEngine() *RuleEngine {
	return &RuleEngine{}
}

// Process extracts a subscription record from the email. Every extractor
// degrades to its documented default, so the result is total: missing
// fields yield nil/"Unknown"/"unknown" rather than an error.
func (e *RuleEngine) Process(email *Email) *SubscriptionRecord {
	combined := email.Subject + " " + email.Snippet

	serviceName := ExtractServiceName(email.From)
	amount := ExtractAmount(combined)
	status := DetectStatus(combined)
	confidence := CalculateConfidence(serviceName, amount, status)

	return &SubscriptionRecord{
		ServiceName:  serviceName,
		Category:     DetectCategory(serviceName),
		BillingCycle: DetectBillingCycle(combined),
		Amount:       amount,
		Currency:     ExtractCurrency(combined),
		Status:       status,
		Confidence:   &confidence,
		Source: Source{
			EmailID: email.ID,
			From:    email.From,
		},
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
