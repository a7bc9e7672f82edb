package event

import (
	"encoding/json"

	"github.com/rohitnarwariya/PlaceReady-1/internal/model"
)

// Client to Server
const (
	// EventSubscribe - client asks for a live view of a conversation's messages
	EventSubscribe = "subscribe"

	// EventUnsubscribe - client stops listening to a conversation
	EventUnsubscribe = "unsubscribe"
)

// Server to Client
const (
	// EventConversationList - full snapshot of the user's conversations and pending requests
	EventConversationList = "conversation_list"

	// EventMessageList - full snapshot of one conversation's messages
	EventMessageList = "message_list"

	// EventError - subscription-level error (e.g. not a participant)
	EventError = "error"
)

type WsEvent struct {
	Event   string          `json:"event"`
	Topic   string          `json:"topic"`
	Payload json.RawMessage `json:"payload"`
}

// SubscribePayload carries the conversation a client wants to (un)subscribe
type SubscribePayload struct {
	ConversationID string `json:"conversationId"`
}

// ConversationListPayload is the per-user snapshot: everything needed to
// render the chat dashboard. Re-sent in full on every relevant mutation, so
// replays are harmless.
type ConversationListPayload struct {
	UserID          string               `json:"userId"`
	Conversations   []model.Conversation `json:"conversations"`
	PendingRequests []model.ChatRequest  `json:"pendingRequests"`
	UnreadCount     int                  `json:"unreadCount"`
}

// MessageListPayload is the per-conversation snapshot, oldest message first.
type MessageListPayload struct {
	ConversationID string          `json:"conversationId"`
	Messages       []model.Message `json:"messages"`
}

// ErrorPayload is an error response sent to a client over the socket
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
