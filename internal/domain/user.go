package domain

// User is the persistent per-user record, keyed by Telegram user id.
type User struct {
	TelegramID   int64                  `json:"telegram_id"`
	FirstName    string                 `json:"first_name"`
	LastName     string                 `json:"last_name"`
	Username     string                 `json:"username"`
	LanguageCode string                 `json:"language_code"`
	UserData     map[string]interface{} `json:"user_data"`
	CreatedAt    string                 `json:"created_at"`
	UpdatedAt    string                 `json:"updated_at"`
}

// WebAppUser is the user object embedded in WebApp init data.
type WebAppUser struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Username     string `json:"username"`
	LanguageCode string `json:"language_code"`
	IsBot        bool   `json:"is_bot"`
	IsPremium    bool   `json:"is_premium"`
}
