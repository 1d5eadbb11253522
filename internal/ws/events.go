package ws

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
)

// Event names are part of the wire contract and must not be renamed.
const (
	EventJoinUser    = "join-user"
	EventJoinChat    = "join-chat"
	EventCreateChat  = "create-chat"
	EventCreateGroup = "create-group"
	EventSendMessage = "send-message"

	EventChatCreated = "chat-created"
	EventChatUpdated = "chat-updated"
	EventMessage     = "message"
)

// Envelope frames every event on the wire. join-user and join-chat carry a
// bare JSON string as data, the rest carry objects.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type CreateChatPayload struct {
	PartnerID     string `json:"partnerId" validate:"required"`
	CurrentUserID string `json:"currentUserId" validate:"required"`
}

type CreateGroupPayload struct {
	Name      string   `json:"name" validate:"required"`
	MemberIDs []string `json:"memberIds" validate:"required,min=1"`
	AdminID   string   `json:"adminId" validate:"required"`
}

type SendMessagePayload struct {
	ChatID     string `json:"chatId" validate:"required"`
	Content    string `json:"content" validate:"required"`
	SenderID   string `json:"senderId" validate:"required"`
	SenderName string `json:"senderName"`
}

var validate = validator.New()

func encodeEvent(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}
