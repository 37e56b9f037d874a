package mailer

import (
	"fmt"
	"html"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendWelcome(toEmail, displayName string) error
}

// dialer is the part of *gomail.Dialer the service uses.
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type emailService struct {
	dialer      dialer
	senderEmail string
	senderName  string
	appURL      string
}

func NewEmailService(host string, port int, username, password, senderName, appURL string) IEmailService {
	return &emailService{
		dialer:      gomail.NewDialer(host, port, username, password),
		senderEmail: username,
		senderName:  senderName,
		appURL:      appURL,
	}
}

func (s *emailService) SendWelcome(toEmail, displayName string) error {
	m := BuildWelcome(s.senderEmail, s.senderName, toEmail, displayName, s.appURL)
	return s.dialer.DialAndSend(m)
}

// BuildWelcome renders the signup greeting.
func BuildWelcome(fromEmail, fromName, toEmail, displayName, appURL string) *gomail.Message {
	if displayName == "" {
		displayName = "there"
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", fromEmail, fromName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Welcome to Haley!")

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Hi %s, welcome aboard!</h2>
			<p>Haley is ready to chat. Free accounts get a few messages every day.</p>
			<a href="%s" style="background-color: #ff6fa5; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">Say hello</a>
		</div>
	`, html.EscapeString(displayName), appURL)

	m.SetBody("text/html", body)
	return m
}

type noopEmailService struct{}

// NewNoopEmailService is used when SMTP is not configured.
func NewNoopEmailService() IEmailService {
	return noopEmailService{}
}

func (noopEmailService) SendWelcome(string, string) error { return nil }
