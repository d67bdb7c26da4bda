package repository

import (
	"context"

	"tgapp/internal/domain"
)

// UserRepository defines user record operations.
type UserRepository interface {
	GetUser(ctx context.Context, telegramID int64) (*domain.User, error)
	CreateUser(ctx context.Context, user *domain.User) (*domain.User, error)
	UpdateUser(ctx context.Context, telegramID int64, updates map[string]interface{}) (*domain.User, error)
	DeleteUser(ctx context.Context, telegramID int64) error
	UserExists(ctx context.Context, telegramID int64) (bool, error)
	ListUserIDs(ctx context.Context) ([]int64, error)
}

// MessagePointerRepository tracks the last bot message sent to each chat,
// used to replace the previous bot message on the next send.
type MessagePointerRepository interface {
	SetLastBotMessageID(ctx context.Context, chatID, messageID int64) error
	LastBotMessageID(ctx context.Context, chatID int64) (int64, error)
	ClearLastBotMessageID(ctx context.Context, chatID int64) error
}

// HealthChecker reports storage availability.
type HealthChecker interface {
	Ping(ctx context.Context) error
}
