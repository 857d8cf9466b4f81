package factory

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/karnsiree/subscription-radar/internal/adapters/sink"
	"github.com/karnsiree/subscription-radar/internal/config"
	"github.com/karnsiree/subscription-radar/internal/core"
)

// SinkFactory creates result sinks based on configuration
type SinkFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewSinkFactory creates a new sink factory
func NewSinkFactory(cfg *config.Config, logger *zap.Logger) *SinkFactory {
	return &SinkFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateResultSink creates a result sink based on the configuration
func (f *SinkFactory) CreateResultSink() (core.ResultSink, error) {
	sinkCfg := f.cfg.GetSink()

	switch sinkCfg.Type {
	case "http":
		timeout, err := time.ParseDuration(sinkCfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid sink timeout: %w", err)
		}
		return sink.NewHTTPSink(sinkCfg.Endpoint, timeout, f.logger), nil
	case "file":
		return sink.NewFileSink(sinkCfg.OutputDir, f.logger)
	default:
		return nil, fmt.Errorf("unsupported sink type: %s", sinkCfg.Type)
	}
}
