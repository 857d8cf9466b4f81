package source

import (
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/karnsiree/subscription-radar/internal/core"
)

// FileSource loads a batch of emails from a JSON file, the shape the Gmail
// fetcher writes to inbox.json: either a bare array of emails or an object
// with a "messages" array.
type FileSource struct {
	path   string
	logger *zap.Logger
}

// NewFileSource creates a new file source
func NewFileSource(path string, logger *zap.Logger) *FileSource {
	return &FileSource{
		path:   path,
		logger: logger,
	}
}

// Load reads and decodes the email batch, preserving file order
func (s *FileSource) Load() ([]core.Email, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read email file: %w", err)
	}

	var emails []core.Email
	if err := json.Unmarshal(data, &emails); err == nil {
		s.logger.Info("Loaded emails", zap.String("path", s.path), zap.Int("count", len(emails)))
		return emails, nil
	}

	var wrapped struct {
		Messages []core.Email `json:"messages"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to decode email file %s: %w", s.path, err)
	}

	s.logger.Info("Loaded emails", zap.String("path", s.path), zap.Int("count", len(wrapped.Messages)))
	return wrapped.Messages, nil
}
