// Package email sends transactional mail over SMTP.
package email

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"marketplace/internal/shared/config"
	"marketplace/internal/shared/logger"
)

// Sender delivers the marketplace's transactional messages.
type Sender interface {
	SendVerificationEmail(to, name, verifyURL string) error
	SendCredentialsEmail(to, name, username, password, portalURL string) error
}

// SMTPSender is the gomail-backed Sender.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
	logger logger.Interface
}

var _ Sender = (*SMTPSender)(nil)

func NewSMTPSender(cfg *config.EmailConfig, log logger.Interface) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		from:   fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromAddress),
		logger: log,
	}
}

func (s *SMTPSender) SendVerificationEmail(to, name, verifyURL string) error {
	body := fmt.Sprintf(
		"<p>Hola %s,</p>"+
			"<p>Confirma tu correo para activar tu cuenta:</p>"+
			`<p><a href="%s">Verificar correo</a></p>`+
			"<p>El enlace expira en 48 horas.</p>",
		name, verifyURL)
	return s.send(to, "Verifica tu correo", body)
}

func (s *SMTPSender) SendCredentialsEmail(to, name, username, password, portalURL string) error {
	body := fmt.Sprintf(
		"<p>Hola %s,</p>"+
			"<p>Tu plan fue activado. Accede al portal con:</p>"+
			"<p>Usuario: <b>%s</b><br>Contrase&ntilde;a: <b>%s</b></p>"+
			`<p><a href="%s">Ir al portal</a></p>`,
		name, username, password, portalURL)
	return s.send(to, "Tu plan está activo", body)
}

func (s *SMTPSender) send(to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		s.logger.Errorw("failed to send email", "to", to, "subject", subject, "error", err)
		return err
	}
	s.logger.Infow("email sent", "to", to, "subject", subject)
	return nil
}
