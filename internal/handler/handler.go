package handler

import (
	"context"
	"fmt"

	"tgapp/internal/repository"
	"tgapp/internal/telegram"

	"go.uber.org/zap"
)

// BotAPI is the slice of the Bot API client the dispatcher needs.
type BotAPI interface {
	SendMessage(ctx context.Context, chatID int64, text string, markup *telegram.InlineKeyboardMarkup) (int64, error)
	DeleteMessage(ctx context.Context, chatID, messageID int64) error
	AnswerCallbackQuery(ctx context.Context, callbackQueryID, text string, showAlert bool) error
}

// Dispatcher routes normalized messages to the matching handler and replies
// through the Bot API.
type Dispatcher struct {
	bot      BotAPI
	users    repository.UserRepository
	pointers repository.MessagePointerRepository
	logger   *zap.Logger

	frontendURL string
	websiteURL  string
}

// NewDispatcher creates a dispatcher. frontendURL is the Mini App the start
// keyboard opens; websiteURL is the external link button.
func NewDispatcher(
	bot BotAPI,
	users repository.UserRepository,
	pointers repository.MessagePointerRepository,
	frontendURL string,
	websiteURL string,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		bot:         bot,
		users:       users,
		pointers:    pointers,
		logger:      logger,
		frontendURL: frontendURL,
		websiteURL:  websiteURL,
	}
}

// startKeyboard builds the inline keyboard attached to the greeting.
func (d *Dispatcher) startKeyboard() *telegram.InlineKeyboardMarkup {
	return &telegram.InlineKeyboardMarkup{
		InlineKeyboard: [][]telegram.InlineKeyboardButton{
			{{Text: "🚀 Open Web App", WebApp: &telegram.WebAppInfo{URL: d.frontendURL}}},
			{{Text: "👨‍💻 About me", URL: d.websiteURL}},
		},
	}
}

// unknownCommandText is the reply for commands outside the known set.
func unknownCommandText(command string) string {
	return fmt.Sprintf(
		"❓ Unknown command: <code>%s</code>\n\nAvailable commands:\n/start - Main menu\n/help - Show help",
		command,
	)
}
