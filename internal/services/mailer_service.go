package services

import (
	"errors"
	"fmt"

	"coffeestock-backend/config"

	"gopkg.in/gomail.v2"
)

var ErrMailNotConfigured = errors.New("smtp is not configured")

// mailSender is swapped out in tests.
var mailSender = smtpSend

func smtpSend(cfg *config.Config, m *gomail.Message) error {
	d := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
	return d.DialAndSend(m)
}

// SendMail delivers one plain-text message to the given recipients. No
// retries; the caller decides whether a failure is fatal.
func SendMail(to []string, subject, body string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if cfg.SMTPHost == "" {
		return ErrMailNotConfigured
	}

	m := gomail.NewMessage()
	m.SetHeader("From", cfg.SMTPFrom)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	return mailSender(cfg, m)
}

// BroadcastLowStock mails every active opted-in user that the counter
// dropped to or below the minimum.
func BroadcastLowStock(currentStock, minStock int) error {
	recipients, err := NotifyRecipients()
	if err != nil {
		return err
	}
	if len(recipients) == 0 {
		return nil
	}

	to := make([]string, 0, len(recipients))
	for _, u := range recipients {
		to = append(to, u.Email)
	}

	subject := "Coffee stock is running low"
	body := fmt.Sprintf(
		"The shared coffee stock is down to %d (minimum %d). Time to restock.",
		currentStock, minStock)

	return SendMail(to, subject, body)
}

// SendTestMail is the explicit admin action. Unlike the broadcast, a
// failure here is returned to the caller.
func SendTestMail(to string) error {
	return SendMail([]string{to}, "Coffee stock test mail", "SMTP delivery is working.")
}
