package service

import (
	"context"
	"errors"

	"tgapp/internal/domain"
	"tgapp/internal/repository"
	"tgapp/internal/telegram"

	"go.uber.org/zap"
)

// UserService handles user record logic on top of the repository.
type UserService struct {
	users  repository.UserRepository
	logger *zap.Logger
}

// NewUserService creates a new user service.
func NewUserService(users repository.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{
		users:  users,
		logger: logger,
	}
}

// GetOrCreate returns the record for an authenticated WebApp user, creating
// it from the sanitized payload on first contact. The second result reports
// whether a new record was created.
func (s *UserService) GetOrCreate(ctx context.Context, webAppUser *domain.WebAppUser) (*domain.User, bool, error) {
	if webAppUser == nil || webAppUser.ID == 0 {
		return nil, false, domain.ErrNoUser
	}

	user, err := s.users.GetUser(ctx, webAppUser.ID)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, false, err
	}

	sanitized := telegram.SanitizeUser(webAppUser)
	created, err := s.users.CreateUser(ctx, &domain.User{
		TelegramID:   sanitized.ID,
		FirstName:    sanitized.FirstName,
		LastName:     sanitized.LastName,
		Username:     sanitized.Username,
		LanguageCode: sanitized.LanguageCode,
	})
	if err != nil {
		return nil, false, err
	}

	s.logger.Info("created new user", zap.Int64("user_id", sanitized.ID))
	return created, true, nil
}

// Update validates and applies a field-update payload to an existing user.
func (s *UserService) Update(ctx context.Context, telegramID int64, updates map[string]interface{}) (*domain.User, error) {
	if err := telegram.ValidateUpdatePayload(updates); err != nil {
		return nil, err
	}

	user, err := s.users.UpdateUser(ctx, telegramID, updates)
	if err != nil {
		return nil, err
	}

	s.logger.Info("updated user", zap.Int64("user_id", telegramID))
	return user, nil
}

// Delete removes a user record (admin operation, not part of normal flow).
func (s *UserService) Delete(ctx context.Context, telegramID int64) error {
	if err := s.users.DeleteUser(ctx, telegramID); err != nil {
		return err
	}
	s.logger.Info("deleted user", zap.Int64("user_id", telegramID))
	return nil
}

// ListIDs enumerates all known user ids.
func (s *UserService) ListIDs(ctx context.Context) ([]int64, error) {
	return s.users.ListUserIDs(ctx)
}
