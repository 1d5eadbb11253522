package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/banterhq/banter/internal/models"
	"github.com/banterhq/banter/internal/store"
)

// SnapshotHandler serves point-in-time reads of stored chats and messages,
// independent of the event stream. Clients hit it on initial load and
// reconnect catch-up.
type SnapshotHandler struct {
	Chats    store.ChatStore
	Messages store.MessageStore
}

func (h *SnapshotHandler) GetChats(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "Missing userId")
		return
	}

	chats, err := h.Chats.ListChatsForUser(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if chats == nil {
		chats = []models.Chat{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(chats)
}

func (h *SnapshotHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	chatID := r.URL.Query().Get("chatId")
	if chatID == "" {
		writeError(w, http.StatusBadRequest, "Missing chatId")
		return
	}

	messages, err := h.Messages.ListMessages(chatID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(messages)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
