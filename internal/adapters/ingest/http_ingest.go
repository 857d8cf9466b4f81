package ingest

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/karnsiree/subscription-radar/internal/core"
)

// HTTPIngest exposes the pipeline over HTTP: a rule-only endpoint for
// single emails and a gated batch endpoint that delivers to the sink.
type HTTPIngest struct {
	service     *core.PipelineService
	logger      *zap.Logger
	listenAddr  string
	corsOrigins []string
	server      *echo.Echo
}

// NewHTTPIngest creates a new HTTP ingest surface
func NewHTTPIngest(
	service *core.PipelineService,
	logger *zap.Logger,
	listenAddr string,
	corsOrigins []string,
) *HTTPIngest {
	return &HTTPIngest{
		service:     service,
		logger:      logger,
		listenAddr:  listenAddr,
		corsOrigins: corsOrigins,
	}
}

// Start starts the HTTP server
func (h *HTTPIngest) Start() error {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: h.corsOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			h.logger.Info("Request",
				zap.String("uri", v.URI),
				zap.Int("status", v.Status))
			return nil
		},
	}))

	e.GET("/healthz", h.handleHealth)
	e.POST("/process", h.handleProcess)
	e.POST("/analyze", h.handleAnalyze)

	h.server = e

	h.logger.Info("HTTP ingest starting", zap.String("address", h.listenAddr))

	go func() {
		if err := e.Start(h.listenAddr); err != nil && err != http.ErrServerClosed {
			h.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop stops the HTTP server
func (h *HTTPIngest) Stop() error {
	if h.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return h.server.Shutdown(ctx)
}

func (h *HTTPIngest) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// handleProcess runs the rule engine alone on a single email and returns
// the record with its confidence score. No LLM call is made.
func (h *HTTPIngest) handleProcess(c echo.Context) error {
	var email core.Email
	if err := c.Bind(&email); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid email payload"})
	}

	record := h.service.Process(&email)
	return c.JSON(http.StatusOK, record)
}

// handleAnalyze runs the full gated pipeline on a batch of emails and
// delivers the result to the configured sink. The batch is echoed back so
// callers can inspect what was sent.
func (h *HTTPIngest) handleAnalyze(c echo.Context) error {
	var emails []core.Email
	if err := c.Bind(&emails); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid email batch"})
	}

	batch, err := h.service.AnalyzeAndSend(c.Request().Context(), emails)
	if err != nil {
		// The batch was built but not delivered; surface both facts.
		return c.JSON(http.StatusBadGateway, map[string]interface{}{
			"error": err.Error(),
			"batch": batch,
		})
	}

	return c.JSON(http.StatusOK, batch)
}
