package knownsenders

import (
	"strings"

	"go.uber.org/zap"
)

// Checker decides whether a sender belongs to a known billing domain.
// Mail from these domains skips the LLM gate and is always treated as
// subscription-related.
type Checker struct {
	domains []string
	logger  *zap.Logger
}

// NewChecker creates a new known-sender checker
func NewChecker(domains []string, logger *zap.Logger) *Checker {
	normalized := make([]string, len(domains))
	for i, domain := range domains {
		normalized[i] = strings.ToLower(strings.TrimSpace(domain))
	}

	if len(normalized) > 0 && logger != nil {
		logger.Info("Initialized known-sender checker", zap.Strings("domains", normalized))
	}

	return &Checker{
		domains: normalized,
		logger:  logger,
	}
}

// IsKnown checks if the sender's domain is a configured billing domain.
// The from field may be a bare address or a display-name form like
// "Netflix <info@netflix.com>".
func (c *Checker) IsKnown(from string) bool {
	if len(c.domains) == 0 {
		return false
	}

	parts := strings.Split(from, "@")
	if len(parts) != 2 {
		return false
	}
	domain := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(parts[1]), ">"))

	for _, known := range c.domains {
		if known == domain {
			if c.logger != nil {
				c.logger.Debug("Sender domain is a known billing domain",
					zap.String("domain", domain),
					zap.String("email", from))
			}
			return true
		}
	}

	return false
}
