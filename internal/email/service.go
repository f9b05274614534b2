package email

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	htemplate "html/template"
	"net/url"
	ttemplate "text/template"
	"time"

	"github.com/Peekay0523/MadidiMarket/internal/metrics"
	"github.com/Peekay0523/MadidiMarket/internal/observability/logger"
)

var (
	ErrTemplateRender = errors.New("email: template render failed")
	ErrSendFailed     = errors.New("email: send failed")
	ErrInvalidInput   = errors.New("email: invalid input")
)

// ServiceConfig contiene la configuración del servicio de email.
type ServiceConfig struct {
	Sender    Sender
	Templates *Templates // nil = usar los embebidos

	BaseURL   string        // URL base para links (ej: https://madidimarket.com)
	ResetTTL  time.Duration // TTL de tokens de reset (default 1h)
	VerifyTTL time.Duration // TTL de tokens de verificación (default 48h)
}

// Service renderiza y envía los correos transaccionales del marketplace.
type Service struct {
	sender    Sender
	tpls      *Templates
	baseURL   string
	resetTTL  time.Duration
	verifyTTL time.Duration
}

// NewService crea el servicio de email.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Sender == nil {
		return nil, fmt.Errorf("email: sender is required")
	}

	tpls := cfg.Templates
	if tpls == nil {
		var err error
		tpls, err = DefaultTemplates()
		if err != nil {
			return nil, fmt.Errorf("email: parse default templates: %w", err)
		}
	}

	if cfg.ResetTTL == 0 {
		cfg.ResetTTL = time.Hour
	}
	if cfg.VerifyTTL == 0 {
		cfg.VerifyTTL = 48 * time.Hour
	}

	return &Service{
		sender:    cfg.Sender,
		tpls:      tpls,
		baseURL:   cfg.BaseURL,
		resetTTL:  cfg.ResetTTL,
		verifyTTL: cfg.VerifyTTL,
	}, nil
}

// ResetLink construye el link de reset para un token.
func (s *Service) ResetLink(token string) string {
	return s.buildLink("/reset-password", token)
}

// VerifyLink construye el link de verificación para un token.
func (s *Service) VerifyLink(token string) string {
	return s.buildLink("/verify-email", token)
}

// SendPasswordReset envía el correo de reset de contraseña con un link
// de un solo uso.
func (s *Service) SendPasswordReset(ctx context.Context, toEmail, token string) error {
	log := logger.From(ctx).With(
		logger.Op("SendPasswordReset"),
		logger.Email(toEmail),
	)

	if toEmail == "" || token == "" {
		return ErrInvalidInput
	}

	vars := ResetVars{
		UserEmail: toEmail,
		Link:      s.ResetLink(token),
		TTL:       formatDuration(s.resetTTL),
	}
	htmlBody, textBody, err := render(s.tpls.ResetHTML, s.tpls.ResetTXT, vars)
	if err != nil {
		log.Error("failed to render template", logger.Err(err))
		metrics.RecordEmail(TemplateReset, "render_error")
		return fmt.Errorf("%w: %v", ErrTemplateRender, err)
	}

	subject := "Restablecé tu contraseña"
	if err := s.sender.Send(toEmail, subject, htmlBody, textBody); err != nil {
		diag := DiagnoseSMTP(err)
		log.Error("failed to send email",
			logger.Err(err),
			logger.String("diag_code", diag.Code),
			logger.Bool("temporary", diag.Temporary),
		)
		metrics.RecordEmail(TemplateReset, "error")
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	metrics.RecordEmail(TemplateReset, "ok")
	log.Info("password reset email sent")
	return nil
}

// SendEmailVerification envía el correo de verificación de cuenta.
func (s *Service) SendEmailVerification(ctx context.Context, toEmail, token string) error {
	log := logger.From(ctx).With(
		logger.Op("SendEmailVerification"),
		logger.Email(toEmail),
	)

	if toEmail == "" || token == "" {
		return ErrInvalidInput
	}

	vars := VerifyVars{
		UserEmail: toEmail,
		Link:      s.VerifyLink(token),
		TTL:       formatDuration(s.verifyTTL),
	}
	htmlBody, textBody, err := render(s.tpls.VerifyHTML, s.tpls.VerifyTXT, vars)
	if err != nil {
		log.Error("failed to render template", logger.Err(err))
		metrics.RecordEmail(TemplateVerify, "render_error")
		return fmt.Errorf("%w: %v", ErrTemplateRender, err)
	}

	subject := "Verificá tu email"
	if err := s.sender.Send(toEmail, subject, htmlBody, textBody); err != nil {
		diag := DiagnoseSMTP(err)
		log.Error("failed to send email",
			logger.Err(err),
			logger.String("diag_code", diag.Code),
			logger.Bool("temporary", diag.Temporary),
		)
		metrics.RecordEmail(TemplateVerify, "error")
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	metrics.RecordEmail(TemplateVerify, "ok")
	log.Info("verification email sent")
	return nil
}

// SendBusinessApproved avisa al dueño que su negocio fue aprobado y ya
// puede vender.
func (s *Service) SendBusinessApproved(ctx context.Context, toEmail, businessName string) error {
	log := logger.From(ctx).With(
		logger.Op("SendBusinessApproved"),
		logger.Email(toEmail),
		logger.String("business", businessName),
	)

	if toEmail == "" {
		return ErrInvalidInput
	}

	vars := ApprovedVars{
		UserEmail:    toEmail,
		BusinessName: businessName,
		Link:         s.buildPlainLink("/business"),
	}
	htmlBody, textBody, err := render(s.tpls.ApprovedHTML, s.tpls.ApprovedTXT, vars)
	if err != nil {
		log.Error("failed to render template", logger.Err(err))
		metrics.RecordEmail(TemplateBusinessApproved, "render_error")
		return fmt.Errorf("%w: %v", ErrTemplateRender, err)
	}

	subject := "Tu negocio fue aprobado en Madidi Market"
	if err := s.sender.Send(toEmail, subject, htmlBody, textBody); err != nil {
		diag := DiagnoseSMTP(err)
		log.Error("failed to send email",
			logger.Err(err),
			logger.String("diag_code", diag.Code),
			logger.Bool("temporary", diag.Temporary),
		)
		metrics.RecordEmail(TemplateBusinessApproved, "error")
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	metrics.RecordEmail(TemplateBusinessApproved, "ok")
	log.Info("business approved email sent")
	return nil
}

// ─── Helpers ───

func (s *Service) buildLink(path, token string) string {
	u, err := url.Parse(s.baseURL)
	if err != nil || s.baseURL == "" {
		u = &url.URL{Scheme: "http", Host: "localhost:8080"}
	}
	u.Path = path
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}

func (s *Service) buildPlainLink(path string) string {
	u, err := url.Parse(s.baseURL)
	if err != nil || s.baseURL == "" {
		u = &url.URL{Scheme: "http", Host: "localhost:8080"}
	}
	u.Path = path
	return u.String()
}

func render(htmlTmpl *htemplate.Template, textTmpl *ttemplate.Template, data any) (string, string, error) {
	var htmlBuf, textBuf bytes.Buffer

	if err := htmlTmpl.Execute(&htmlBuf, data); err != nil {
		return "", "", err
	}
	if err := textTmpl.Execute(&textBuf, data); err != nil {
		return "", "", err
	}

	return htmlBuf.String(), textBuf.String(), nil
}

func formatDuration(d time.Duration) string {
	if d == 0 {
		return ""
	}
	hours := int(d.Hours())
	if hours >= 24 {
		days := hours / 24
		if days == 1 {
			return "1 día"
		}
		return fmt.Sprintf("%d días", days)
	}
	if hours >= 1 {
		if hours == 1 {
			return "1 hora"
		}
		return fmt.Sprintf("%d horas", hours)
	}
	minutes := int(d.Minutes())
	if minutes == 1 {
		return "1 minuto"
	}
	return fmt.Sprintf("%d minutos", minutes)
}
