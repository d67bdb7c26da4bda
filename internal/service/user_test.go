package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"tgapp/internal/domain"
	"tgapp/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUserService_GetOrCreate_Existing(t *testing.T) {
	mockRepo := new(testutil.MockUserRepository)
	svc := NewUserService(mockRepo, testutil.NewTestLogger())

	existing := testutil.NewTestUser(42, "John")
	mockRepo.On("GetUser", mock.Anything, int64(42)).Return(existing, nil)

	user, created, err := svc.GetOrCreate(context.Background(), &domain.WebAppUser{ID: 42, FirstName: "John"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, existing, user)
	mockRepo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestUserService_GetOrCreate_New(t *testing.T) {
	mockRepo := new(testutil.MockUserRepository)
	svc := NewUserService(mockRepo, testutil.NewTestLogger())

	mockRepo.On("GetUser", mock.Anything, int64(42)).Return(nil, domain.ErrUserNotFound)
	mockRepo.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.TelegramID == 42 && u.FirstName == "John" && u.LanguageCode == "en"
	})).Return(testutil.NewTestUser(42, "John"), nil)

	user, created, err := svc.GetOrCreate(context.Background(), &domain.WebAppUser{
		ID:           42,
		FirstName:    "John",
		LanguageCode: "en",
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, int64(42), user.TelegramID)
	mockRepo.AssertExpectations(t)
}

func TestUserService_GetOrCreate_SanitizesFields(t *testing.T) {
	mockRepo := new(testutil.MockUserRepository)
	svc := NewUserService(mockRepo, testutil.NewTestLogger())

	long := strings.Repeat("x", 150)
	mockRepo.On("GetUser", mock.Anything, int64(42)).Return(nil, domain.ErrUserNotFound)
	mockRepo.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return len(u.FirstName) == 100
	})).Return(testutil.NewTestUser(42, long[:100]), nil)

	_, created, err := svc.GetOrCreate(context.Background(), &domain.WebAppUser{ID: 42, FirstName: long})
	require.NoError(t, err)
	assert.True(t, created)
	mockRepo.AssertExpectations(t)
}

func TestUserService_GetOrCreate_NoUser(t *testing.T) {
	svc := NewUserService(new(testutil.MockUserRepository), testutil.NewTestLogger())

	tests := []struct {
		name string
		user *domain.WebAppUser
	}{
		{name: "nil user", user: nil},
		{name: "zero id", user: &domain.WebAppUser{FirstName: "John"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.GetOrCreate(context.Background(), tt.user)
			assert.ErrorIs(t, err, domain.ErrNoUser)
		})
	}
}

func TestUserService_GetOrCreate_RepoError(t *testing.T) {
	mockRepo := new(testutil.MockUserRepository)
	svc := NewUserService(mockRepo, testutil.NewTestLogger())

	repoErr := errors.New("connection refused")
	mockRepo.On("GetUser", mock.Anything, int64(42)).Return(nil, repoErr)

	_, _, err := svc.GetOrCreate(context.Background(), &domain.WebAppUser{ID: 42})
	assert.ErrorIs(t, err, repoErr)
}

func TestUserService_Update(t *testing.T) {
	mockRepo := new(testutil.MockUserRepository)
	svc := NewUserService(mockRepo, testutil.NewTestLogger())

	updates := map[string]interface{}{"first_name": "Johnny"}
	mockRepo.On("UpdateUser", mock.Anything, int64(42), updates).
		Return(testutil.NewTestUser(42, "Johnny"), nil)

	user, err := svc.Update(context.Background(), 42, updates)
	require.NoError(t, err)
	assert.Equal(t, "Johnny", user.FirstName)
}

func TestUserService_Update_InvalidPayload(t *testing.T) {
	mockRepo := new(testutil.MockUserRepository)
	svc := NewUserService(mockRepo, testutil.NewTestLogger())

	_, err := svc.Update(context.Background(), 42, map[string]interface{}{"first_name": "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)
	mockRepo.AssertNotCalled(t, "UpdateUser", mock.Anything, mock.Anything, mock.Anything)
}

func TestUserService_Update_NotFound(t *testing.T) {
	mockRepo := new(testutil.MockUserRepository)
	svc := NewUserService(mockRepo, testutil.NewTestLogger())

	updates := map[string]interface{}{"first_name": "Johnny"}
	mockRepo.On("UpdateUser", mock.Anything, int64(999), updates).
		Return(nil, domain.ErrUserNotFound)

	_, err := svc.Update(context.Background(), 999, updates)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserService_Delete(t *testing.T) {
	mockRepo := new(testutil.MockUserRepository)
	svc := NewUserService(mockRepo, testutil.NewTestLogger())

	mockRepo.On("DeleteUser", mock.Anything, int64(42)).Return(nil)

	assert.NoError(t, svc.Delete(context.Background(), 42))
	mockRepo.AssertExpectations(t)
}

func TestUserService_ListIDs(t *testing.T) {
	mockRepo := new(testutil.MockUserRepository)
	svc := NewUserService(mockRepo, testutil.NewTestLogger())

	mockRepo.On("ListUserIDs", mock.Anything).Return([]int64{42, 43}, nil)

	ids, err := svc.ListIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{42, 43}, ids)
}
