package handler

import (
	"context"
	"errors"
	"fmt"

	"tgapp/internal/domain"
	"tgapp/internal/telegram"

	"go.uber.org/zap"
)

// defaultLanguage is used for users created from the bot path, where the
// update does not carry a language code.
const defaultLanguage = "en"

// handleStart runs the /start flow: ensure the user record exists, drop any
// stale clean-send pointer so the greeting never replaces a phantom
// message, and send the greeting with the start keyboard.
func (d *Dispatcher) handleStart(ctx context.Context, msg domain.Message) error {
	_, err := d.users.GetUser(ctx, msg.UserID)
	if errors.Is(err, domain.ErrUserNotFound) {
		d.logger.Info("creating new user from /start",
			zap.Int64("user_id", msg.UserID),
		)
		_, err = d.users.CreateUser(ctx, &domain.User{
			TelegramID:   msg.UserID,
			FirstName:    msg.FirstName,
			LastName:     msg.LastName,
			Username:     msg.Username,
			LanguageCode: defaultLanguage,
		})
	}
	if err != nil {
		return fmt.Errorf("ensure user %d: %w", msg.UserID, err)
	}

	if err := d.pointers.ClearLastBotMessageID(ctx, msg.ChatID); err != nil {
		d.logger.Warn("failed to clear last message pointer",
			zap.Int64("chat_id", msg.ChatID),
			zap.Error(err),
		)
	}

	greeting := fmt.Sprintf("👋 Hello, <b>%s</b>!\n\nWelcome! Use the buttons below to get started.", msg.FullName())
	return d.sendClean(ctx, msg.ChatID, greeting, d.startKeyboard())
}

// sendClean sends a message after deleting the previously sent bot message
// for the chat. The delete is best-effort; a successful send with a
// reported id replaces the stored pointer.
func (d *Dispatcher) sendClean(ctx context.Context, chatID int64, text string, markup *telegram.InlineKeyboardMarkup) error {
	lastID, err := d.pointers.LastBotMessageID(ctx, chatID)
	if err != nil {
		d.logger.Warn("failed to load last message pointer",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
	if lastID != 0 {
		if err := d.bot.DeleteMessage(ctx, chatID, lastID); err != nil {
			d.logger.Warn("failed to delete previous bot message",
				zap.Int64("chat_id", chatID),
				zap.Int64("message_id", lastID),
				zap.Error(err),
			)
		}
	}

	messageID, err := d.bot.SendMessage(ctx, chatID, text, markup)
	if err != nil {
		d.logger.Error("failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
		return fmt.Errorf("send message to chat %d: %w", chatID, err)
	}

	if messageID != 0 {
		if err := d.pointers.SetLastBotMessageID(ctx, chatID, messageID); err != nil {
			d.logger.Warn("failed to store last message pointer",
				zap.Int64("chat_id", chatID),
				zap.Error(err),
			)
		}
	}

	return nil
}
