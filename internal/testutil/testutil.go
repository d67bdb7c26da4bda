package testutil

import (
	"time"

	"tgapp/internal/domain"

	"go.uber.org/zap"
)

// NewTestLogger creates a no-op logger for tests
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// NewTestUser creates a test user record
func NewTestUser(telegramID int64, firstName string) *domain.User {
	now := time.Now().UTC().Format(time.RFC3339)
	return &domain.User{
		TelegramID:   telegramID,
		FirstName:    firstName,
		LanguageCode: "en",
		UserData:     map[string]interface{}{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NewTestMessage creates a plain text message from a user
func NewTestMessage(chatID, messageID, userID int64, text string) domain.Message {
	return domain.Message{
		ChatID:    chatID,
		MessageID: messageID,
		UserID:    userID,
		FirstName: "Test",
		Username:  "testuser",
		Text:      text,
	}
}
