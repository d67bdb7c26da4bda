package telegram

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"tgapp/internal/domain"

	"go.uber.org/zap"
)

// maxAuthAge is how old init data may be before a staleness warning is logged.
const maxAuthAge = 86400 * time.Second

// maxUserDataBytes limits the JSON-encoded size of the opaque user_data blob.
const maxUserDataBytes = 10000

// maxFieldLen limits sanitized user field values.
const maxFieldLen = 100

// Validator verifies Telegram WebApp init data.
type Validator struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewValidator creates an init-data validator.
func NewValidator(logger *zap.Logger) *Validator {
	return &Validator{
		logger: logger,
		now:    time.Now,
	}
}

type pair struct {
	key   string
	value string
}

// parseInitData splits init data into key/value pairs, preserving order and
// duplicates. The signature covers the exact decoded values, so a generic
// query decoder (which re-orders, deduplicates, and turns '+' into spaces)
// must not be used here.
func parseInitData(initData string) []pair {
	var pairs []pair
	for _, raw := range strings.Split(initData, "&") {
		key, value, found := strings.Cut(raw, "=")
		if !found {
			continue
		}
		decoded, err := url.PathUnescape(value)
		if err != nil {
			decoded = value
		}
		pairs = append(pairs, pair{key: key, value: decoded})
	}
	return pairs
}

// Validate checks the init-data signature against the bot token and returns
// the embedded WebApp user, when one is present. A stale auth_date is logged
// but does not fail validation; an undecodable user field degrades to nil.
func (v *Validator) Validate(initData, botToken string) (*domain.WebAppUser, error) {
	if initData == "" {
		return nil, domain.ErrMissingInitData
	}

	pairs := parseInitData(initData)

	receivedHash := ""
	checked := pairs[:0]
	for _, p := range pairs {
		if p.key == "hash" {
			receivedHash = p.value
			continue
		}
		checked = append(checked, p)
	}
	if receivedHash == "" {
		return nil, domain.ErrMissingHash
	}

	sort.SliceStable(checked, func(i, j int) bool {
		return checked[i].key < checked[j].key
	})

	lines := make([]string, len(checked))
	for i, p := range checked {
		lines[i] = p.key + "=" + p.value
	}
	checkString := strings.Join(lines, "\n")

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))

	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(checkString))
	calculated := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(calculated), []byte(receivedHash)) {
		return nil, domain.ErrBadSignature
	}

	var user *domain.WebAppUser
	for _, p := range checked {
		switch p.key {
		case "auth_date":
			authDate, err := strconv.ParseInt(p.value, 10, 64)
			if err != nil {
				continue
			}
			if age := v.now().Sub(time.Unix(authDate, 0)); age > maxAuthAge {
				v.logger.Warn("init data is stale",
					zap.Duration("age", age),
				)
			}
		case "user":
			var u domain.WebAppUser
			if err := json.Unmarshal([]byte(p.value), &u); err != nil {
				v.logger.Warn("failed to decode init data user", zap.Error(err))
				continue
			}
			user = &u
		}
	}

	return user, nil
}

// SanitizeUser truncates user fields to the persistable allow-list limits.
// The id is exempt from truncation.
func SanitizeUser(u *domain.WebAppUser) *domain.WebAppUser {
	if u == nil {
		return nil
	}
	return &domain.WebAppUser{
		ID:           u.ID,
		FirstName:    truncate(u.FirstName),
		LastName:     truncate(u.LastName),
		Username:     truncate(u.Username),
		LanguageCode: truncate(u.LanguageCode),
		IsBot:        u.IsBot,
		IsPremium:    u.IsPremium,
	}
}

func truncate(s string) string {
	if len(s) > maxFieldLen {
		return s[:maxFieldLen]
	}
	return s
}

// ValidateUpdatePayload checks a user-update request body: first_name, when
// present, must not be blank, and user_data must be a JSON object encoding
// to at most 10KB.
func ValidateUpdatePayload(updates map[string]interface{}) error {
	if updates == nil {
		return domain.ErrInvalidPayload
	}

	if firstName, ok := updates["first_name"]; ok {
		s, isString := firstName.(string)
		if !isString || strings.TrimSpace(s) == "" {
			return fmt.Errorf("%w: first name cannot be empty", domain.ErrInvalidPayload)
		}
	}

	if userData, ok := updates["user_data"]; ok {
		obj, isObject := userData.(map[string]interface{})
		if !isObject {
			return fmt.Errorf("%w: user_data must be an object", domain.ErrInvalidPayload)
		}
		encoded, err := json.Marshal(obj)
		if err != nil {
			return fmt.Errorf("%w: user_data is not encodable", domain.ErrInvalidPayload)
		}
		if len(encoded) > maxUserDataBytes {
			return domain.ErrBlobTooLarge
		}
	}

	return nil
}
