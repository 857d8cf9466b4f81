package di

import (
	"time"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/karnsiree/subscription-radar/internal/config"
	"github.com/karnsiree/subscription-radar/internal/core"
	"github.com/karnsiree/subscription-radar/internal/factory"
	"github.com/karnsiree/subscription-radar/internal/logging"
	"github.com/karnsiree/subscription-radar/internal/ports"
	"github.com/karnsiree/subscription-radar/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewLLMFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewSinkFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewIngestFactory); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register gate client
	if err := container.Provide(func(f *factory.LLMFactory) (core.GateClient, error) {
		return f.CreateGateClient()
	}); err != nil {
		return nil, err
	}

	// Register verdict cache
	if err := container.Provide(func(f *factory.CacheFactory) (core.VerdictCache, error) {
		return f.CreateVerdictCache()
	}); err != nil {
		return nil, err
	}

	// Register cache TTL and enabled flag
	if err := container.Provide(func(f *factory.CacheFactory) (time.Duration, error) {
		return f.GetCacheTTL()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.CacheFactory) bool {
		return f.IsCacheEnabled()
	}); err != nil {
		return nil, err
	}

	// Register result sink
	if err := container.Provide(func(f *factory.SinkFactory) (core.ResultSink, error) {
		return f.CreateResultSink()
	}); err != nil {
		return nil, err
	}

	// Register known billing domains
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) []string {
		domains := cfg.GetStringSlice("gate.known_sender_domains")
		if len(domains) > 0 {
			logger.Info("Loaded known billing domains", zap.Strings("domains", domains))
		}
		return domains
	}); err != nil {
		return nil, err
	}

	// Register rule engine
	if err := container.Provide(core.NewRuleEngine); err != nil {
		return nil, err
	}

	// Register pipeline service
	if err := container.Provide(core.NewPipelineService); err != nil {
		return nil, err
	}

	// Register email ingest
	if err := container.Provide(func(f *factory.IngestFactory) (ports.EmailIngest, error) {
		return f.CreateEmailIngest()
	}); err != nil {
		return nil, err
	}

	return container, nil
}
