package ingest

import (
	"context"
	"fmt"
	"io"
	"net/mail"
	"time"

	"github.com/emersion/go-smtp"
	"go.uber.org/zap"

	"github.com/karnsiree/subscription-radar/internal/core"
)

// snippetSize bounds how much body text is kept per message; the rule
// engine and the gate both work on short excerpts.
const snippetSize = 500

// SMTPIngest accepts email over SMTP (typically an MTA BCC target), runs
// each message through the gated pipeline and delivers the result to the
// sink as a single-record batch. Messages are consumed, never relayed.
type SMTPIngest struct {
	service    *core.PipelineService
	logger     *zap.Logger
	listenAddr string
	server     *smtp.Server
}

// NewSMTPIngest creates a new SMTP ingest surface
func NewSMTPIngest(
	service *core.PipelineService,
	logger *zap.Logger,
	listenAddr string,
) *SMTPIngest {
	return &SMTPIngest{
		service:    service,
		logger:     logger,
		listenAddr: listenAddr,
	}
}

// Start starts the SMTP server
func (f *SMTPIngest) Start() error {
	f.server = smtp.NewServer(&smtpBackend{ingest: f})

	f.server.Addr = f.listenAddr
	f.server.Domain = "localhost"
	f.server.ReadTimeout = 30 * time.Second
	f.server.WriteTimeout = 30 * time.Second
	f.server.MaxMessageBytes = 10 * 1024 * 1024 // 10MB
	f.server.MaxRecipients = 10
	f.server.AllowInsecureAuth = true

	f.logger.Info("SMTP ingest starting", zap.String("address", f.listenAddr))

	go func() {
		if err := f.server.ListenAndServe(); err != nil {
			if err != smtp.ErrServerClosed {
				f.logger.Error("SMTP server error", zap.Error(err))
			}
		}
	}()

	return nil
}

// Stop stops the SMTP server
func (f *SMTPIngest) Stop() error {
	if f.server != nil {
		return f.server.Close()
	}
	return nil
}

// processMessage runs one accepted message through the pipeline.
func (f *SMTPIngest) processMessage(envelopeFrom string, r io.Reader) error {
	msg, err := mail.ReadMessage(r)
	if err != nil {
		return fmt.Errorf("failed to parse message: %w", err)
	}

	from := decodeHeader(msg.Header.Get("From"))
	if from == "" {
		from = envelopeFrom
	}
	subject := decodeHeader(msg.Header.Get("Subject"))

	body, err := extractTextFromMessage(msg)
	if err != nil {
		f.logger.Warn("Failed to extract message body", zap.Error(err))
		body = ""
	}
	if len(body) > snippetSize {
		body = body[:snippetSize]
	}

	email := &core.Email{
		ID:      msg.Header.Get("Message-Id"),
		From:    from,
		Subject: subject,
		Snippet: body,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := f.service.AnalyzeAndSend(ctx, []core.Email{*email}); err != nil {
		// Delivery failure must not bounce the message; the MTA copy
		// is best-effort.
		f.logger.Error("Failed to deliver batch for message",
			zap.String("sender", from),
			zap.Error(err))
	}

	return nil
}

// smtpBackend implements the go-smtp backend interface
type smtpBackend struct {
	ingest *SMTPIngest
}

func (b *smtpBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{ingest: b.ingest}, nil
}

// smtpSession handles a single SMTP transaction
type smtpSession struct {
	ingest *SMTPIngest
	from   string
}

func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.from = from
	return nil
}

func (s *smtpSession) Rcpt(_ string, _ *smtp.RcptOptions) error {
	return nil
}

func (s *smtpSession) Data(r io.Reader) error {
	return s.ingest.processMessage(s.from, r)
}

func (s *smtpSession) Reset() {
	s.from = ""
}

func (s *smtpSession) Logout() error {
	return nil
}
