package testutil

import (
	"context"

	"tgapp/internal/domain"
	"tgapp/internal/telegram"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock for repository.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetUser(ctx context.Context, telegramID int64) (*domain.User, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, telegramID int64, updates map[string]interface{}) (*domain.User, error) {
	args := m.Called(ctx, telegramID, updates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) DeleteUser(ctx context.Context, telegramID int64) error {
	args := m.Called(ctx, telegramID)
	return args.Error(0)
}

func (m *MockUserRepository) UserExists(ctx context.Context, telegramID int64) (bool, error) {
	args := m.Called(ctx, telegramID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ListUserIDs(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

// MockMessagePointerRepository is a mock for repository.MessagePointerRepository
type MockMessagePointerRepository struct {
	mock.Mock
}

func (m *MockMessagePointerRepository) SetLastBotMessageID(ctx context.Context, chatID, messageID int64) error {
	args := m.Called(ctx, chatID, messageID)
	return args.Error(0)
}

func (m *MockMessagePointerRepository) LastBotMessageID(ctx context.Context, chatID int64) (int64, error) {
	args := m.Called(ctx, chatID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMessagePointerRepository) ClearLastBotMessageID(ctx context.Context, chatID int64) error {
	args := m.Called(ctx, chatID)
	return args.Error(0)
}

// MockBotAPI is a mock for handler.BotAPI
type MockBotAPI struct {
	mock.Mock
}

func (m *MockBotAPI) SendMessage(ctx context.Context, chatID int64, text string, markup *telegram.InlineKeyboardMarkup) (int64, error) {
	args := m.Called(ctx, chatID, text, markup)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBotAPI) DeleteMessage(ctx context.Context, chatID, messageID int64) error {
	args := m.Called(ctx, chatID, messageID)
	return args.Error(0)
}

func (m *MockBotAPI) AnswerCallbackQuery(ctx context.Context, callbackQueryID, text string, showAlert bool) error {
	args := m.Called(ctx, callbackQueryID, text, showAlert)
	return args.Error(0)
}
