package services

import (
	"os"
	"testing"

	"coffeestock-backend/config"
	"coffeestock-backend/internal/database"

	"github.com/stretchr/testify/assert"
	"gopkg.in/gomail.v2"
)

func TestSendMailNotConfigured(t *testing.T) {
	os.Unsetenv("SMTP_HOST")

	err := SendMail([]string{"x@example.com"}, "subject", "body")
	assert.ErrorIs(t, err, ErrMailNotConfigured)
}

func TestBroadcastLowStockTargetsOptedInUsers(t *testing.T) {
	setupTestDB()
	seedStock(10, 1, 2)

	os.Setenv("SMTP_HOST", "smtp.example.com")
	defer os.Unsetenv("SMTP_HOST")

	seedUser("quiet@example.com", nil)
	optIn := seedUser("listen@example.com", nil)
	database.DB.Model(&optIn).Update("notify", true)

	var captured *gomail.Message
	mailSender = func(cfg *config.Config, m *gomail.Message) error {
		captured = m
		return nil
	}

	err := BroadcastLowStock(1, 2)
	assert.NoError(t, err)
	assert.NotNil(t, captured)

	to := captured.GetHeader("To")
	assert.Contains(t, to, "listen@example.com")
	assert.NotContains(t, to, "quiet@example.com")
}

func TestBroadcastLowStockNoRecipients(t *testing.T) {
	setupTestDB()
	seedStock(10, 1, 2)

	os.Setenv("SMTP_HOST", "smtp.example.com")
	defer os.Unsetenv("SMTP_HOST")

	called := false
	mailSender = func(cfg *config.Config, m *gomail.Message) error {
		called = true
		return nil
	}

	err := BroadcastLowStock(1, 2)
	assert.NoError(t, err)
	assert.False(t, called)
}
