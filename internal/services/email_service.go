package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"gopkg.in/gomail.v2"

	"github.com/example/asfalya/internal/config"
)

const resendEndpoint = "https://api.resend.com/emails"

// EmailService delivers account emails. Delivery goes through the Resend
// API when an API key is configured and falls back to plain SMTP otherwise.
// Sending is best-effort: a failed delivery is reported to the caller but
// never rolls back state already committed.
type EmailService struct {
	cfg *config.Config
}

// NewEmailService creates an EmailService from configuration.
func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{cfg: cfg}
}

// SendActivationCode mails a one-time activation code to the given address.
func (s *EmailService) SendActivationCode(toEmail, otp string) error {
	subject := "Asfalya - Your Activation Code"
	html := fmt.Sprintf(`
		<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
			<h2>Welcome to Asfalya</h2>
			<p>To activate your account, please use the following one-time code:</p>
			<div style="background-color: #f4f4f4; padding: 20px; text-align: center; margin: 25px 0;">
				<span style="font-size: 32px; font-weight: bold; letter-spacing: 5px;">%s</span>
			</div>
			<p>This code will expire in 15 minutes. If you did not request this activation, please ignore this email.</p>
		</div>`, otp)

	return s.send(toEmail, subject, html)
}

// SendBroadcast mails an announcement to a single recipient.
func (s *EmailService) SendBroadcast(toEmail, subject, body string) error {
	html := fmt.Sprintf(`
		<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
			<h2>%s</h2>
			<p>%s</p>
		</div>`, subject, body)

	return s.send(toEmail, subject, html)
}

func (s *EmailService) send(toEmail, subject, html string) error {
	if s.cfg.ResendAPIKey != "" {
		return s.sendViaResend(toEmail, subject, html)
	}
	if s.cfg.SMTPHost != "" {
		return s.sendViaSMTP(toEmail, subject, html)
	}

	log.Printf("[Email] No delivery backend configured, dropping mail to %s", toEmail)
	return nil
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func (s *EmailService) sendViaResend(toEmail, subject, html string) error {
	payload := resendRequest{
		From:    s.cfg.EmailFrom,
		To:      []string{toEmail},
		Subject: subject,
		HTML:    html,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, resendEndpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.ResendAPIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Printf("[Email] Resend request failed: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("[Email] Resend unexpected status: %d", resp.StatusCode)
		return fmt.Errorf("resend returned status %d", resp.StatusCode)
	}

	return nil
}

func (s *EmailService) sendViaSMTP(toEmail, subject, html string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.EmailFrom)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", html)

	d := gomail.NewDialer(s.cfg.SMTPHost, s.cfg.SMTPPort, s.cfg.SMTPUsername, s.cfg.SMTPPassword)
	if err := d.DialAndSend(m); err != nil {
		log.Printf("[Email] SMTP send failed: %v", err)
		return err
	}
	return nil
}
