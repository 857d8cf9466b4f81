package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/karnsiree/subscription-radar/internal/core"
)

// FileSink writes result batches as indented JSON files under an output
// directory, one file per pipeline run.
type FileSink struct {
	outputDir string
	logger    *zap.Logger
}

// NewFileSink creates a new file sink
func NewFileSink(outputDir string, logger *zap.Logger) (*FileSink, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	return &FileSink{
		outputDir: outputDir,
		logger:    logger,
	}, nil
}

// Deliver writes the batch to subscriptions-<timestamp>.json
func (s *FileSink) Deliver(ctx context.Context, batch *core.ResultBatch) error {
	payload, err := json.MarshalIndent(batch, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result batch: %w", err)
	}

	name := fmt.Sprintf("subscriptions-%s.json", time.Now().UTC().Format("20060102T150405Z"))
	path := filepath.Join(s.outputDir, name)

	if err := os.WriteFile(path, payload, 0644); err != nil {
		return fmt.Errorf("failed to write result batch: %w", err)
	}

	s.logger.Info("Wrote result batch",
		zap.String("path", path),
		zap.Int("records", len(batch.Subscriptions)))

	return nil
}
