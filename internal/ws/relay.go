package ws

import (
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/banterhq/banter/internal/ids"
	"github.com/banterhq/banter/internal/models"
	"github.com/banterhq/banter/internal/store"
)

// frame is one raw inbound event from a client.
type frame struct {
	client *Client
	data   []byte
}

// Relay is the event-handling core. It processes every inbound event to
// completion (store mutation plus fan-out) on a single goroutine before the
// next is started, so the directory and registry need no locking and two
// senders racing on one chat can never have their stored order differ from
// their broadcast order. The relay holds no state of its own between events
// beyond its handles to the stores.
type Relay struct {
	chats    store.ChatStore
	messages store.MessageStore
	rooms    *RoomDirectory
	registry *ConnectionRegistry

	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	inbound    chan frame

	log *zap.Logger
}

func NewRelay(chats store.ChatStore, messages store.MessageStore, log *zap.Logger) *Relay {
	return &Relay{
		chats:      chats,
		messages:   messages,
		rooms:      NewRoomDirectory(),
		registry:   NewConnectionRegistry(),
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan frame),
		log:        log,
	}
}

// Run is the single consumer of all relay channels. It must run in its own
// goroutine.
func (r *Relay) Run() {
	for {
		select {
		case c := <-r.register:
			r.addClient(c)
		case c := <-r.unregister:
			r.removeClient(c)
		case f := <-r.inbound:
			r.dispatch(f.client, f.data)
		}
	}
}

func (r *Relay) addClient(c *Client) {
	r.clients[c] = true
}

// removeClient tears down everything a connection touched: identity binding,
// every room subscription, and the send channel.
func (r *Relay) removeClient(c *Client) {
	if _, ok := r.clients[c]; !ok {
		return
	}
	delete(r.clients, c)
	r.registry.Remove(c)
	r.rooms.UnsubscribeAll(c)
	close(c.send)
}

// dispatch handles one inbound event. Every path is best-effort: malformed
// input or an unknown entity is logged and dropped, never fatal to the
// connection or the process.
func (r *Relay) dispatch(c *Client, data []byte) {
	// A frame can still be in flight from a connection the relay already
	// dropped; it must not re-subscribe a dead client.
	if !r.clients[c] {
		return
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		r.log.Warn("malformed event frame", zap.Error(err))
		return
	}

	switch env.Event {
	case EventJoinUser:
		r.handleJoinUser(c, env.Data)
	case EventJoinChat:
		r.handleJoinChat(c, env.Data)
	case EventCreateChat:
		r.handleCreateChat(env.Data)
	case EventCreateGroup:
		r.handleCreateGroup(env.Data)
	case EventSendMessage:
		r.handleSendMessage(env.Data)
	default:
		r.log.Warn("unknown event", zap.String("event", env.Event))
	}
}

func (r *Relay) handleJoinUser(c *Client, data json.RawMessage) {
	var userID string
	if err := json.Unmarshal(data, &userID); err != nil || userID == "" {
		r.log.Warn("join-user: missing user id")
		return
	}
	r.registry.Bind(c, userID)
	r.rooms.Subscribe(c, userID)
}

func (r *Relay) handleJoinChat(c *Client, data json.RawMessage) {
	var chatID string
	if err := json.Unmarshal(data, &chatID); err != nil || chatID == "" {
		r.log.Warn("join-chat: missing chat id")
		return
	}
	r.rooms.Subscribe(c, chatID)
}

func (r *Relay) handleCreateChat(data json.RawMessage) {
	var p CreateChatPayload
	if err := json.Unmarshal(data, &p); err != nil {
		r.log.Warn("create-chat: malformed payload", zap.Error(err))
		return
	}
	if err := validate.Struct(&p); err != nil {
		r.log.Warn("create-chat: invalid payload", zap.Error(err))
		return
	}

	chat, err := r.chats.CreatePersonalChat(p.CurrentUserID, p.PartnerID)
	if err != nil && !errors.Is(err, store.ErrAlreadyExists) {
		r.log.Error("create-chat failed", zap.Error(err))
		return
	}

	// Both the new and the existing chat go out to every connection bound to
	// either user, so repeated creates still resolve the chat on all devices.
	r.fanOut(r.roomUnion(p.PartnerID, p.CurrentUserID), EventChatCreated, chat)
}

func (r *Relay) handleCreateGroup(data json.RawMessage) {
	var p CreateGroupPayload
	if err := json.Unmarshal(data, &p); err != nil {
		r.log.Warn("create-group: malformed payload", zap.Error(err))
		return
	}
	if err := validate.Struct(&p); err != nil {
		r.log.Warn("create-group: invalid payload", zap.Error(err))
		return
	}

	chat, err := r.chats.CreateGroupChat(p.Name, p.MemberIDs, p.AdminID)
	if err != nil {
		r.log.Error("create-group failed", zap.Error(err))
		return
	}

	r.fanOut(r.roomUnion(chat.Members...), EventChatCreated, chat)
}

func (r *Relay) handleSendMessage(data json.RawMessage) {
	var p SendMessagePayload
	if err := json.Unmarshal(data, &p); err != nil {
		r.log.Warn("send-message: malformed payload", zap.Error(err))
		return
	}
	if err := validate.Struct(&p); err != nil {
		r.log.Warn("send-message: invalid payload", zap.Error(err))
		return
	}

	now := time.Now()
	msg := models.Message{
		ID:         ids.NewMessageID(now),
		Content:    p.Content,
		SenderID:   p.SenderID,
		SenderName: p.SenderName,
		Timestamp:  now,
		Type:       models.MessageText,
		ChatID:     p.ChatID,
	}

	if err := r.messages.Append(p.ChatID, msg); err != nil {
		r.log.Error("send-message: append failed", zap.Error(err))
		return
	}
	if err := r.chats.RecordActivity(p.ChatID, p.Content, now); err != nil {
		r.log.Error("send-message: record activity failed", zap.Error(err))
	}

	// Tier one: the live message to whoever has the thread open. This fires
	// even when the chat store has no record of the chat.
	r.fanOut(r.rooms.MembersOf(p.ChatID), EventMessage, msg)

	// Tier two: a chat snapshot to each member's user room, so chat-list
	// previews update for members who never joined the chat room.
	chat, err := r.chats.GetChat(p.ChatID)
	if err != nil {
		return
	}
	for _, member := range chat.Members {
		r.fanOut(r.rooms.MembersOf(member), EventChatUpdated, chat)
	}
}

// roomUnion collects the members of several rooms, each connection once.
func (r *Relay) roomUnion(roomIDs ...string) []*Client {
	seen := make(map[*Client]struct{})
	var out []*Client
	for _, id := range roomIDs {
		for _, c := range r.rooms.MembersOf(id) {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}

// fanOut encodes the event once and hands it to each target without
// blocking. A connection whose buffer is full is dropped so one stuck client
// never stalls delivery to the rest.
func (r *Relay) fanOut(targets []*Client, event string, data any) {
	if len(targets) == 0 {
		return
	}
	raw, err := encodeEvent(event, data)
	if err != nil {
		r.log.Error("encode event failed", zap.String("event", event), zap.Error(err))
		return
	}
	for _, c := range targets {
		select {
		case c.send <- raw:
		default:
			r.log.Warn("dropping slow client", zap.String("event", event))
			r.removeClient(c)
		}
	}
}
