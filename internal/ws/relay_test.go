package ws

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/banterhq/banter/internal/models"
	"github.com/banterhq/banter/internal/store/memstore"
)

// Relay logic is exercised synchronously: tests call dispatch directly
// instead of going through Run, so there is nothing to wait on.

func newTestRelay() *Relay {
	s := memstore.New()
	return NewRelay(s, s, zap.NewNop())
}

func newTestClient(r *Relay) *Client {
	c := &Client{send: make(chan []byte, 64)}
	r.addClient(c)
	return c
}

func send(r *Relay, c *Client, event string, data any) {
	raw, _ := json.Marshal(data)
	frame, _ := json.Marshal(Envelope{Event: event, Data: raw})
	r.dispatch(c, frame)
}

// recvEvent pops the next queued outbound event, failing if none is pending.
func recvEvent(t *testing.T, c *Client) Envelope {
	t.Helper()
	select {
	case raw := <-c.send:
		var env Envelope
		require.NoError(t, json.Unmarshal(raw, &env))
		return env
	default:
		t.Fatal("expected a pending event")
		return Envelope{}
	}
}

func recvChat(t *testing.T, c *Client, wantEvent string) models.Chat {
	t.Helper()
	env := recvEvent(t, c)
	require.Equal(t, wantEvent, env.Event)
	var chat models.Chat
	require.NoError(t, json.Unmarshal(env.Data, &chat))
	return chat
}

func recvMessage(t *testing.T, c *Client) models.Message {
	t.Helper()
	env := recvEvent(t, c)
	require.Equal(t, EventMessage, env.Event)
	var msg models.Message
	require.NoError(t, json.Unmarshal(env.Data, &msg))
	return msg
}

func assertNoEvent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case raw := <-c.send:
		t.Fatalf("expected no event, got %s", raw)
	default:
	}
}

func TestCreateChatNotifiesBothUsers(t *testing.T) {
	r := newTestRelay()
	u1 := newTestClient(r)
	u2 := newTestClient(r)

	send(r, u1, EventJoinUser, "u1")
	send(r, u2, EventJoinUser, "u2")

	send(r, u1, EventCreateChat, CreateChatPayload{PartnerID: "u2", CurrentUserID: "u1"})

	got1 := recvChat(t, u1, EventChatCreated)
	got2 := recvChat(t, u2, EventChatCreated)
	assert.Equal(t, got1.ID, got2.ID)
	assert.Equal(t, models.ChatPersonal, got1.Type)
	assert.ElementsMatch(t, []string{"u1", "u2"}, got1.Members)

	// Repeating the create resolves the same chat, one event per call.
	send(r, u1, EventCreateChat, CreateChatPayload{PartnerID: "u2", CurrentUserID: "u1"})
	again1 := recvChat(t, u1, EventChatCreated)
	again2 := recvChat(t, u2, EventChatCreated)
	assert.Equal(t, got1.ID, again1.ID)
	assert.Equal(t, got1.ID, again2.ID)
	assertNoEvent(t, u1)
	assertNoEvent(t, u2)
}

func TestCreateGroupNotifiesAllMembers(t *testing.T) {
	r := newTestRelay()
	admin := newTestClient(r)
	member := newTestClient(r)
	outsider := newTestClient(r)

	send(r, admin, EventJoinUser, "u1")
	send(r, member, EventJoinUser, "u2")
	send(r, outsider, EventJoinUser, "u9")

	send(r, admin, EventCreateGroup, CreateGroupPayload{Name: "Team", MemberIDs: []string{"u2", "u3"}, AdminID: "u1"})

	gotAdmin := recvChat(t, admin, EventChatCreated)
	gotMember := recvChat(t, member, EventChatCreated)
	assert.Equal(t, gotAdmin.ID, gotMember.ID)
	assert.Equal(t, []string{"u2", "u3", "u1"}, gotAdmin.Members)
	assert.Equal(t, []string{"u1"}, gotAdmin.AdminIDs)

	assertNoEvent(t, outsider)
}

func TestCreateGroupInvalidPayloadDropped(t *testing.T) {
	r := newTestRelay()
	admin := newTestClient(r)
	send(r, admin, EventJoinUser, "u1")

	send(r, admin, EventCreateGroup, CreateGroupPayload{Name: "", MemberIDs: []string{"u2"}, AdminID: "u1"})
	send(r, admin, EventCreateGroup, CreateGroupPayload{Name: "Team", MemberIDs: nil, AdminID: "u1"})

	assertNoEvent(t, admin)
	// The connection survives and keeps working.
	send(r, admin, EventCreateGroup, CreateGroupPayload{Name: "Team", MemberIDs: []string{"u2"}, AdminID: "u1"})
	recvChat(t, admin, EventChatCreated)
}

func TestSendMessageTwoTierFanOut(t *testing.T) {
	r := newTestRelay()
	u1 := newTestClient(r)
	u2 := newTestClient(r)

	send(r, u1, EventJoinUser, "u1")
	send(r, u2, EventJoinUser, "u2")
	send(r, u1, EventCreateChat, CreateChatPayload{PartnerID: "u2", CurrentUserID: "u1"})
	chat := recvChat(t, u1, EventChatCreated)
	recvChat(t, u2, EventChatCreated)

	// Only u1 has the thread open.
	send(r, u1, EventJoinChat, chat.ID)

	send(r, u1, EventSendMessage, SendMessagePayload{ChatID: chat.ID, Content: "hi", SenderID: "u1", SenderName: "Alice"})

	// Tier one: the room subscriber gets the live message.
	msg := recvMessage(t, u1)
	assert.Equal(t, "hi", msg.Content)
	assert.Equal(t, "u1", msg.SenderID)
	assert.Equal(t, "Alice", msg.SenderName)
	assert.Equal(t, chat.ID, msg.ChatID)
	assert.Equal(t, models.MessageText, msg.Type)

	// Tier two: both members get the chat-list update, u2 even though it
	// never joined the chat room.
	updated1 := recvChat(t, u1, EventChatUpdated)
	updated2 := recvChat(t, u2, EventChatUpdated)
	assert.Equal(t, "hi", updated1.LastMessage)
	assert.Equal(t, 1, updated1.UnreadCount)
	assert.Equal(t, updated1.ID, updated2.ID)

	// u2 got no tier-one message.
	assertNoEvent(t, u2)
	assertNoEvent(t, u1)
}

func TestSendMessageSameRoomIdenticalPayload(t *testing.T) {
	r := newTestRelay()
	u1 := newTestClient(r)
	u2 := newTestClient(r)

	send(r, u1, EventJoinChat, "chat-c")
	send(r, u2, EventJoinChat, "chat-c")

	send(r, u1, EventSendMessage, SendMessagePayload{ChatID: "chat-c", Content: "hi", SenderID: "u1", SenderName: "Alice"})

	m1 := recvMessage(t, u1)
	m2 := recvMessage(t, u2)
	assert.Equal(t, m1, m2)

	messages, err := r.messages.ListMessages("chat-c")
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, m1.ID, messages[0].ID)
}

func TestSendMessageUnknownChatStillBroadcasts(t *testing.T) {
	r := newTestRelay()
	watcher := newTestClient(r)
	send(r, watcher, EventJoinUser, "u1")
	send(r, watcher, EventJoinChat, "ghost-chat")

	send(r, watcher, EventSendMessage, SendMessagePayload{ChatID: "ghost-chat", Content: "anyone?", SenderID: "u1", SenderName: "Alice"})

	// The room broadcast fires even though the chat store has no record,
	// and the history is kept; only chat-updated is skipped.
	msg := recvMessage(t, watcher)
	assert.Equal(t, "anyone?", msg.Content)
	assertNoEvent(t, watcher)

	messages, err := r.messages.ListMessages("ghost-chat")
	require.NoError(t, err)
	assert.Len(t, messages, 1)
}

func TestSendMessageOrdering(t *testing.T) {
	r := newTestRelay()
	u1 := newTestClient(r)
	send(r, u1, EventJoinChat, "chat-c")

	const n = 10
	for i := 0; i < n; i++ {
		send(r, u1, EventSendMessage, SendMessagePayload{ChatID: "chat-c", Content: fmt.Sprintf("m%d", i), SenderID: "u1"})
	}

	messages, err := r.messages.ListMessages("chat-c")
	require.NoError(t, err)
	require.Len(t, messages, n)

	seen := make(map[string]bool)
	for i := 0; i < n; i++ {
		// Stored order, broadcast order and id order all agree.
		assert.Equal(t, fmt.Sprintf("m%d", i), messages[i].Content)
		assert.False(t, seen[messages[i].ID])
		seen[messages[i].ID] = true

		broadcast := recvMessage(t, u1)
		assert.Equal(t, messages[i].ID, broadcast.ID)
	}
}

func TestDisconnectCleansUpEverything(t *testing.T) {
	r := newTestRelay()
	u1 := newTestClient(r)
	u2 := newTestClient(r)

	send(r, u1, EventJoinUser, "u1")
	send(r, u1, EventJoinChat, "chat-c")
	send(r, u2, EventJoinUser, "u2")
	send(r, u2, EventJoinChat, "chat-c")

	r.removeClient(u1)

	_, ok := r.registry.UserIDOf(u1)
	assert.False(t, ok)
	assert.Len(t, r.rooms.MembersOf("chat-c"), 1)
	assert.Empty(t, r.rooms.MembersOf("u1"))

	// A later broadcast never reaches the gone connection.
	send(r, u2, EventSendMessage, SendMessagePayload{ChatID: "chat-c", Content: "hi", SenderID: "u2"})
	recvMessage(t, u2)
	_, open := <-u1.send
	assert.False(t, open, "send channel must be closed after disconnect")

	// Double removal is harmless.
	r.removeClient(u1)
}

func TestMalformedFramesAreDropped(t *testing.T) {
	r := newTestRelay()
	c := newTestClient(r)
	send(r, c, EventJoinUser, "u1")

	r.dispatch(c, []byte("not json"))
	r.dispatch(c, []byte(`{"event":"no-such-event","data":{}}`))
	r.dispatch(c, []byte(`{"event":"send-message","data":{"chatId":"c","content":""}}`))
	r.dispatch(c, []byte(`{"event":"join-user","data":42}`))

	// Connection is still registered and still receives events.
	assert.True(t, r.clients[c])
	send(r, c, EventCreateChat, CreateChatPayload{PartnerID: "u2", CurrentUserID: "u1"})
	recvChat(t, c, EventChatCreated)
}

func TestSlowClientIsDropped(t *testing.T) {
	r := newTestRelay()
	slow := &Client{send: make(chan []byte)} // unbuffered, nobody reading
	r.addClient(slow)
	healthy := newTestClient(r)

	send(r, slow, EventJoinChat, "chat-c")
	send(r, healthy, EventJoinChat, "chat-c")

	send(r, healthy, EventSendMessage, SendMessagePayload{ChatID: "chat-c", Content: "hi", SenderID: "u2"})

	// The stuck connection is gone, the healthy one got its message.
	assert.False(t, r.clients[slow])
	assert.Len(t, r.rooms.MembersOf("chat-c"), 1)
	recvMessage(t, healthy)
}

func TestJoinUserRebind(t *testing.T) {
	r := newTestRelay()
	c := newTestClient(r)

	send(r, c, EventJoinUser, "u1")
	send(r, c, EventJoinUser, "u2")

	userID, ok := r.registry.UserIDOf(c)
	require.True(t, ok)
	assert.Equal(t, "u2", userID)

	// The old user-room subscription remains until disconnect; the binding
	// itself is last-write-wins.
	assert.Len(t, r.rooms.MembersOf("u1"), 1)
	assert.Len(t, r.rooms.MembersOf("u2"), 1)
}
