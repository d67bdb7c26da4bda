package handler

import (
	"context"
	"fmt"
	"strings"

	"tgapp/internal/domain"

	"go.uber.org/zap"
)

// HandleUpdate routes one normalized message. Precedence: callback data,
// then text, then media, then unknown. Bot API failures inside a branch are
// logged and absorbed; an error is returned only when the update as a whole
// could not be handled.
func (d *Dispatcher) HandleUpdate(ctx context.Context, msg domain.Message) error {
	if msg.UserID == 0 || msg.ChatID == 0 {
		return fmt.Errorf("update carries no user or chat id")
	}

	switch {
	case msg.CallbackData != "":
		return d.handleCallback(ctx, msg)
	case msg.Text != "":
		return d.handleText(ctx, msg)
	case msg.HasMedia():
		return d.handleMedia(ctx, msg)
	default:
		return d.handleUnknown(ctx, msg)
	}
}

// handleText routes commands and free text.
func (d *Dispatcher) handleText(ctx context.Context, msg domain.Message) error {
	text := strings.TrimSpace(msg.Text)

	if strings.HasPrefix(text, "/") {
		return d.handleCommand(ctx, msg, text)
	}
	return d.handleFreeText(ctx, msg, text)
}

func (d *Dispatcher) handleCommand(ctx context.Context, msg domain.Message, command string) error {
	switch strings.ToLower(command) {
	case "/start", "/help":
		return d.handleStart(ctx, msg)
	default:
		return d.sendClean(ctx, msg.ChatID, unknownCommandText(command), nil)
	}
}

// handleFreeText matches trimmed text against the small dialog script.
// Anything unrecognized is deleted from the chat, with one exception: a
// literal /start reaching this branch is passed through untouched so the
// command it represents survives for the command handler.
func (d *Dispatcher) handleFreeText(ctx context.Context, msg domain.Message, text string) error {
	lower := strings.ToLower(text)

	if lower == "/start" {
		d.logger.Info("passing /start through free-text branch",
			zap.Int64("user_id", msg.UserID),
		)
		return nil
	}

	switch lower {
	case "hi", "hello", "hey", "привет":
		reply := fmt.Sprintf("Hello %s! 👋\n\nUse /start to see available options.", msg.FullName())
		return d.sendClean(ctx, msg.ChatID, reply, nil)

	case "help", "помощь":
		return d.handleStart(ctx, msg)

	case "thanks", "thank you", "спасибо":
		return d.sendClean(ctx, msg.ChatID, "You're welcome! 😊", nil)
	}

	d.logger.Info("deleting unhandled text message",
		zap.Int64("user_id", msg.UserID),
		zap.Int64("chat_id", msg.ChatID),
	)
	d.deleteIncoming(ctx, msg)
	return nil
}

// handleCallback answers the callback query and routes known payloads.
func (d *Dispatcher) handleCallback(ctx context.Context, msg domain.Message) error {
	if err := d.bot.AnswerCallbackQuery(ctx, msg.CallbackID, "", false); err != nil {
		d.logger.Warn("failed to answer callback query",
			zap.Int64("user_id", msg.UserID),
			zap.Error(err),
		)
	}

	switch msg.CallbackData {
	case "start":
		return d.handleStart(ctx, msg)
	default:
		reply := fmt.Sprintf("❓ Unknown action: %s", msg.CallbackData)
		return d.sendClean(ctx, msg.ChatID, reply, nil)
	}
}

// handleMedia deletes incoming media regardless of kind. A placeholder
// policy: each kind is matched separately so per-kind handling can be
// slotted in.
func (d *Dispatcher) handleMedia(ctx context.Context, msg domain.Message) error {
	var kind string
	switch {
	case msg.Photo != "":
		kind = "photo"
	case msg.Video != "":
		kind = "video"
	case msg.Voice != "":
		kind = "voice"
	case msg.Document != "":
		kind = "document"
	default:
		kind = "unknown"
	}

	d.logger.Info("deleting unhandled media message",
		zap.Int64("user_id", msg.UserID),
		zap.Int64("chat_id", msg.ChatID),
		zap.String("kind", kind),
	)
	d.deleteIncoming(ctx, msg)
	return nil
}

func (d *Dispatcher) handleUnknown(ctx context.Context, msg domain.Message) error {
	d.logger.Info("deleting unknown message type",
		zap.Int64("user_id", msg.UserID),
		zap.Int64("chat_id", msg.ChatID),
	)
	d.deleteIncoming(ctx, msg)
	return nil
}

// deleteIncoming removes the user's message, best-effort.
func (d *Dispatcher) deleteIncoming(ctx context.Context, msg domain.Message) {
	if err := d.bot.DeleteMessage(ctx, msg.ChatID, msg.MessageID); err != nil {
		d.logger.Warn("failed to delete message",
			zap.Int64("chat_id", msg.ChatID),
			zap.Int64("message_id", msg.MessageID),
			zap.Error(err),
		)
	}
}
