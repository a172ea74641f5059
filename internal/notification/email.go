package notification

import (
	"fmt"
	"net/smtp"
)

// EmailConfig holds SMTP settings.
type EmailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
}

// EmailService sends transactional email over plain SMTP.
type EmailService struct {
	config EmailConfig
}

// NewEmailService creates a new email service.
func NewEmailService(config EmailConfig) *EmailService {
	return &EmailService{config: config}
}

// SendPasswordResetEmail sends the reset link to the account holder.
func (s *EmailService) SendPasswordResetEmail(to, name, resetURL string) error {
	subject := "Recuperación de Contraseña"
	body := fmt.Sprintf(`<html><body>
		<h2>Recuperación de Contraseña</h2>
		<p>Hola %s,</p>
		<p>Recibimos una solicitud para restablecer la contraseña de tu cuenta.</p>
		<p><a href="%s">Restablecer Contraseña</a></p>
		<p>O copia este enlace en tu navegador: %s</p>
		<p>Este enlace expirará en 24 horas.</p>
		<p>Si no solicitaste este cambio, puedes ignorar este email. Tu contraseña no será modificada.</p>
	</body></html>`, name, resetURL, resetURL)
	return s.sendEmail(to, subject, body)
}

// SendContactNotification forwards a contact-form submission to the site owner.
func (s *EmailService) SendContactNotification(to, fromName, fromEmail, subject, message string) error {
	body := fmt.Sprintf(`<html><body>
		<h2>Nuevo mensaje de contacto</h2>
		<p><strong>De:</strong> %s (%s)</p>
		<p><strong>Asunto:</strong> %s</p>
		<p>%s</p>
	</body></html>`, fromName, fromEmail, subject, message)
	return s.sendEmail(to, "Contacto: "+subject, body)
}

func (s *EmailService) sendEmail(to, subject, body string) error {
	from := s.config.From
	if s.config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.config.FromName, s.config.From)
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		from, to, subject, body)

	var auth smtp.Auth
	if s.config.User != "" {
		auth = smtp.PlainAuth("", s.config.User, s.config.Password, s.config.Host)
	}
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	return smtp.SendMail(addr, auth, s.config.From, []string{to}, []byte(msg))
}
