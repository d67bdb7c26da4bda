package redisrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"tgapp/internal/domain"

	"github.com/redis/go-redis/v9"
)

const (
	userKeyPrefix    = "user:"
	userIndexKey     = "users:index"
	lastMsgKeyPrefix = "last_bot_msg:"

	// lastMsgTTL caps how long a stale clean-send pointer can linger.
	lastMsgTTL = 7 * 24 * time.Hour
)

// Store implements the user and message-pointer repositories on Redis.
// User records are flat hashes, the user index is a set, and the last
// bot message pointer is a scalar with a TTL.
type Store struct {
	rdb *redis.Client
}

// NewStore creates a Redis-backed store.
func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func userKey(telegramID int64) string {
	return userKeyPrefix + strconv.FormatInt(telegramID, 10)
}

func lastMsgKey(chatID int64) string {
	return lastMsgKeyPrefix + strconv.FormatInt(chatID, 10)
}

// GetUser loads a user record, returning domain.ErrUserNotFound when the
// hash does not exist.
func (s *Store) GetUser(ctx context.Context, telegramID int64) (*domain.User, error) {
	fields, err := s.rdb.HGetAll(ctx, userKey(telegramID)).Result()
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", telegramID, err)
	}
	if len(fields) == 0 {
		return nil, domain.ErrUserNotFound
	}
	return userFromHash(fields)
}

// CreateUser stores a new user record and indexes it. If the record already
// exists it is left untouched and re-read, so concurrent first-contact
// requests settle on a single record.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	key := userKey(user.TelegramID)

	exists, err := s.rdb.Exists(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("check user %d: %w", user.TelegramID, err)
	}
	if exists > 0 {
		return s.GetUser(ctx, user.TelegramID)
	}

	userData := user.UserData
	if userData == nil {
		userData = map[string]interface{}{}
	}
	blob, err := json.Marshal(userData)
	if err != nil {
		return nil, fmt.Errorf("encode user_data: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	fields := map[string]interface{}{
		"telegram_id":   strconv.FormatInt(user.TelegramID, 10),
		"first_name":    user.FirstName,
		"last_name":     user.LastName,
		"username":      user.Username,
		"language_code": user.LanguageCode,
		"user_data":     string(blob),
		"created_at":    now,
		"updated_at":    now,
	}

	if err := s.rdb.HSet(ctx, key, fields).Err(); err != nil {
		return nil, fmt.Errorf("create user %d: %w", user.TelegramID, err)
	}
	if err := s.rdb.SAdd(ctx, userIndexKey, user.TelegramID).Err(); err != nil {
		return nil, fmt.Errorf("index user %d: %w", user.TelegramID, err)
	}

	return s.GetUser(ctx, user.TelegramID)
}

// UpdateUser merges scalar fields into an existing record, replacing the
// user_data blob wholesale and refreshing updated_at. created_at is never
// touched.
func (s *Store) UpdateUser(ctx context.Context, telegramID int64, updates map[string]interface{}) (*domain.User, error) {
	key := userKey(telegramID)

	exists, err := s.rdb.Exists(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("check user %d: %w", telegramID, err)
	}
	if exists == 0 {
		return nil, domain.ErrUserNotFound
	}

	fields := make(map[string]interface{}, len(updates)+1)
	for name, value := range updates {
		switch name {
		case "created_at", "telegram_id":
			continue
		case "user_data":
			blob, err := json.Marshal(value)
			if err != nil {
				return nil, fmt.Errorf("encode user_data: %w", err)
			}
			fields[name] = string(blob)
		default:
			fields[name] = fmt.Sprint(value)
		}
	}
	fields["updated_at"] = time.Now().UTC().Format(time.RFC3339)

	if err := s.rdb.HSet(ctx, key, fields).Err(); err != nil {
		return nil, fmt.Errorf("update user %d: %w", telegramID, err)
	}

	return s.GetUser(ctx, telegramID)
}

// DeleteUser removes a user record and its index membership.
func (s *Store) DeleteUser(ctx context.Context, telegramID int64) error {
	if err := s.rdb.SRem(ctx, userIndexKey, telegramID).Err(); err != nil {
		return fmt.Errorf("unindex user %d: %w", telegramID, err)
	}
	if err := s.rdb.Del(ctx, userKey(telegramID)).Err(); err != nil {
		return fmt.Errorf("delete user %d: %w", telegramID, err)
	}
	return nil
}

// UserExists reports whether a user record is present.
func (s *Store) UserExists(ctx context.Context, telegramID int64) (bool, error) {
	exists, err := s.rdb.Exists(ctx, userKey(telegramID)).Result()
	if err != nil {
		return false, fmt.Errorf("check user %d: %w", telegramID, err)
	}
	return exists > 0, nil
}

// ListUserIDs enumerates all known user ids.
func (s *Store) ListUserIDs(ctx context.Context) ([]int64, error) {
	members, err := s.rdb.SMembers(ctx, userIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	ids := make([]int64, 0, len(members))
	for _, member := range members {
		id, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// SetLastBotMessageID stores the clean-send pointer for a chat.
func (s *Store) SetLastBotMessageID(ctx context.Context, chatID, messageID int64) error {
	key := lastMsgKey(chatID)
	if err := s.rdb.Set(ctx, key, messageID, lastMsgTTL).Err(); err != nil {
		return fmt.Errorf("set last message for chat %d: %w", chatID, err)
	}
	return nil
}

// LastBotMessageID returns the stored pointer, or zero when none is set.
func (s *Store) LastBotMessageID(ctx context.Context, chatID int64) (int64, error) {
	value, err := s.rdb.Get(ctx, lastMsgKey(chatID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get last message for chat %d: %w", chatID, err)
	}

	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, nil
	}
	return id, nil
}

// ClearLastBotMessageID drops the pointer for a chat.
func (s *Store) ClearLastBotMessageID(ctx context.Context, chatID int64) error {
	if err := s.rdb.Del(ctx, lastMsgKey(chatID)).Err(); err != nil {
		return fmt.Errorf("clear last message for chat %d: %w", chatID, err)
	}
	return nil
}

// Ping checks the Redis connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func userFromHash(fields map[string]string) (*domain.User, error) {
	telegramID, err := strconv.ParseInt(fields["telegram_id"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse telegram_id: %w", err)
	}

	userData := map[string]interface{}{}
	if blob := fields["user_data"]; blob != "" {
		if err := json.Unmarshal([]byte(blob), &userData); err != nil {
			return nil, fmt.Errorf("decode user_data: %w", err)
		}
	}

	return &domain.User{
		TelegramID:   telegramID,
		FirstName:    fields["first_name"],
		LastName:     fields["last_name"],
		Username:     fields["username"],
		LanguageCode: fields["language_code"],
		UserData:     userData,
		CreatedAt:    fields["created_at"],
		UpdatedAt:    fields["updated_at"],
	}, nil
}
