package telegram

import (
	"encoding/json"
	"fmt"

	"tgapp/internal/domain"
)

// Update is a Telegram webhook update. At most one of the kind fields is
// expected to be set; Normalize picks the first present one in priority
// order message, callback_query, edited_message.
type Update struct {
	UpdateID      int64            `json:"update_id"`
	Message       *IncomingMessage `json:"message,omitempty"`
	CallbackQuery *CallbackQuery   `json:"callback_query,omitempty"`
	EditedMessage *IncomingMessage `json:"edited_message,omitempty"`
	ChannelPost   json.RawMessage  `json:"channel_post,omitempty"`
}

// IncomingMessage is a message as delivered inside an update.
type IncomingMessage struct {
	MessageID int64       `json:"message_id"`
	From      *Sender     `json:"from,omitempty"`
	Chat      Chat        `json:"chat"`
	Text      string      `json:"text,omitempty"`
	Photo     []PhotoSize `json:"photo,omitempty"`
	Video     *FileRef    `json:"video,omitempty"`
	Voice     *FileRef    `json:"voice,omitempty"`
	Document  *FileRef    `json:"document,omitempty"`
}

// CallbackQuery is an inline-button press.
type CallbackQuery struct {
	ID      string           `json:"id"`
	From    *Sender          `json:"from,omitempty"`
	Message *IncomingMessage `json:"message,omitempty"`
	Data    string           `json:"data,omitempty"`
}

// Sender identifies the user an update came from.
type Sender struct {
	ID        int64  `json:"id"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// Chat identifies the chat an update belongs to.
type Chat struct {
	ID int64 `json:"id"`
}

// PhotoSize is one resolution variant of a photo. Telegram sends several;
// only the first is tracked.
type PhotoSize struct {
	FileID string `json:"file_id"`
}

// FileRef is a non-photo attachment reference.
type FileRef struct {
	FileID string `json:"file_id"`
}

// updateKeys are the top-level keys a well-formed update must carry at
// least one of.
var updateKeys = []string{"update_id", "message", "callback_query", "edited_message", "channel_post"}

// ParseUpdate decodes a raw webhook body, rejecting bodies that do not look
// like a Telegram update.
func ParseUpdate(body []byte) (Update, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil {
		return Update{}, fmt.Errorf("decode update: %w", err)
	}

	recognized := false
	for _, key := range updateKeys {
		if _, ok := probe[key]; ok {
			recognized = true
			break
		}
	}
	if !recognized {
		return Update{}, fmt.Errorf("%w: not a telegram update", domain.ErrInvalidPayload)
	}

	var update Update
	if err := json.Unmarshal(body, &update); err != nil {
		return Update{}, fmt.Errorf("decode update: %w", err)
	}
	return update, nil
}

// Normalize flattens an update into the uniform Message view. Updates
// matching none of the known kinds yield a zero Message.
func Normalize(update Update) domain.Message {
	switch {
	case update.Message != nil:
		msg := fromIncoming(update.Message)
		if len(update.Message.Photo) > 0 {
			msg.Photo = update.Message.Photo[0].FileID
		}
		if update.Message.Video != nil {
			msg.Video = update.Message.Video.FileID
		}
		if update.Message.Voice != nil {
			msg.Voice = update.Message.Voice.FileID
		}
		if update.Message.Document != nil {
			msg.Document = update.Message.Document.FileID
		}
		return msg

	case update.CallbackQuery != nil:
		cb := update.CallbackQuery
		var msg domain.Message
		if cb.Message != nil {
			msg.ChatID = cb.Message.Chat.ID
			msg.MessageID = cb.Message.MessageID
		}
		if cb.From != nil {
			msg.UserID = cb.From.ID
			msg.Username = cb.From.Username
			msg.FirstName = cb.From.FirstName
			msg.LastName = cb.From.LastName
		}
		msg.CallbackData = cb.Data
		msg.CallbackID = cb.ID
		return msg

	case update.EditedMessage != nil:
		// Edits carry no media of interest, only the fresh text.
		return fromIncoming(update.EditedMessage)
	}

	return domain.Message{}
}

func fromIncoming(in *IncomingMessage) domain.Message {
	msg := domain.Message{
		ChatID:    in.Chat.ID,
		MessageID: in.MessageID,
		Text:      in.Text,
	}
	if in.From != nil {
		msg.UserID = in.From.ID
		msg.Username = in.From.Username
		msg.FirstName = in.From.FirstName
		msg.LastName = in.From.LastName
	}
	return msg
}
