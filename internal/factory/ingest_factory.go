package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/karnsiree/subscription-radar/internal/adapters/ingest"
	"github.com/karnsiree/subscription-radar/internal/config"
	"github.com/karnsiree/subscription-radar/internal/core"
	"github.com/karnsiree/subscription-radar/internal/ports"
)

// IngestFactory creates inbound email surfaces based on configuration
type IngestFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	service *core.PipelineService
}

// NewIngestFactory creates a new ingest factory
func NewIngestFactory(cfg *config.Config, logger *zap.Logger, service *core.PipelineService) *IngestFactory {
	return &IngestFactory{
		cfg:     cfg,
		logger:  logger,
		service: service,
	}
}

// CreateEmailIngest creates an ingest surface based on the configuration
func (f *IngestFactory) CreateEmailIngest() (ports.EmailIngest, error) {
	ingestType := f.cfg.GetString("server.ingest_type")
	listenAddr := f.cfg.GetString("server.listen_address")

	switch ingestType {
	case "http":
		return ingest.NewHTTPIngest(
			f.service,
			f.logger,
			listenAddr,
			f.cfg.GetStringSlice("server.cors_origins"),
		), nil
	case "smtp":
		return ingest.NewSMTPIngest(f.service, f.logger, listenAddr), nil
	default:
		return nil, fmt.Errorf("unsupported ingest type: %s", ingestType)
	}
}
