package hub

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/rohitnarwariya/PlaceReady-1/internal/event"
	"github.com/rohitnarwariya/PlaceReady-1/internal/model"
	"github.com/rohitnarwariya/PlaceReady-1/internal/repo"
	"github.com/rohitnarwariya/PlaceReady-1/internal/service"
)

const snapshotTimeout = 10 * time.Second

// Notifier recomputes the full current state from the repositories and
// publishes it to topic subscribers whenever a mutation happens. Full
// snapshots instead of deltas: redundant payloads, but replay-idempotent and
// immune to delta-ordering bugs.
type Notifier struct {
	hub           *Hub
	requests      repo.RequestRepository
	conversations repo.ConversationRepository
	messages      repo.MessageRepository
}

func NewNotifier(
	h *Hub,
	requests repo.RequestRepository,
	conversations repo.ConversationRepository,
	messages repo.MessageRepository,
) *Notifier {
	n := &Notifier{
		hub:           h,
		requests:      requests,
		conversations: conversations,
		messages:      messages,
	}
	h.SetNotifier(n)
	return n
}

var _ service.Notifier = (*Notifier)(nil)

// -----------------------------------------------------------------
// Notification Methods - Publish Snapshots to Subscribers
// -----------------------------------------------------------------

// ConversationsChanged publishes a fresh conversation-list snapshot to each
// user's topic. Asynchronous: mutations never block on fan-out.
func (n *Notifier) ConversationsChanged(userIDs ...string) {
	for _, userID := range userIDs {
		go n.publishConversations(userID)
	}
}

// MessagesChanged publishes a fresh message-list snapshot to the
// conversation topic.
func (n *Notifier) MessagesChanged(conversationID string) {
	go n.publishMessages(conversationID)
}

func (n *Notifier) publishConversations(userID string) {
	ev, err := n.conversationSnapshot(userID)
	if err != nil {
		log.Printf("failed to build conversation snapshot for user %s: %v", userID, err)
		return
	}
	n.hub.publish(UserTopic(userID), ev)
}

func (n *Notifier) publishMessages(conversationID string) {
	ev, err := n.messageSnapshot(conversationID)
	if err != nil {
		log.Printf("failed to build message snapshot for conversation %s: %v", conversationID, err)
		return
	}
	n.hub.publish(ConversationTopic(conversationID), ev)
}

// pushConversationsTo sends the initial conversation-list snapshot to a
// freshly connected client.
func (n *Notifier) pushConversationsTo(c *Client) {
	ev, err := n.conversationSnapshot(c.userID)
	if err != nil {
		log.Printf("failed to build initial snapshot for user %s: %v", c.userID, err)
		return
	}
	c.SafeSend(ev, sendTimeout)
}

// pushMessagesTo sends the current message snapshot to a client that just
// subscribed to a conversation topic.
func (n *Notifier) pushMessagesTo(c *Client, conversationID string) {
	ev, err := n.messageSnapshot(conversationID)
	if err != nil {
		log.Printf("failed to build message snapshot for conversation %s: %v", conversationID, err)
		return
	}
	c.SafeSend(ev, sendTimeout)
}

// authorizeSubscribe reports whether the user may subscribe to the
// conversation's message stream.
func (n *Notifier) authorizeSubscribe(conversationID, userID string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()

	conversation, err := n.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return false
	}
	return conversation.HasParticipant(userID)
}

// -----------------------------------------------------------------
// Snapshot Builders
// -----------------------------------------------------------------

func (n *Notifier) conversationSnapshot(userID string) (event.WsEvent, error) {
	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()

	conversations, err := n.conversations.ListFor(ctx, userID)
	if err != nil {
		return event.WsEvent{}, err
	}

	pending, err := n.requests.ListPendingFor(ctx, userID)
	if err != nil {
		return event.WsEvent{}, err
	}

	unread := service.Filter(conversations, func(c model.Conversation) bool {
		return c.UnreadFor(userID)
	})

	payload, err := json.Marshal(event.ConversationListPayload{
		UserID:          userID,
		Conversations:   conversations,
		PendingRequests: pending,
		UnreadCount:     len(unread),
	})
	if err != nil {
		return event.WsEvent{}, err
	}

	return event.WsEvent{
		Event:   event.EventConversationList,
		Topic:   UserTopic(userID),
		Payload: payload,
	}, nil
}

func (n *Notifier) messageSnapshot(conversationID string) (event.WsEvent, error) {
	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()

	messages, err := n.messages.ListByConversation(ctx, conversationID)
	if err != nil {
		return event.WsEvent{}, err
	}

	payload, err := json.Marshal(event.MessageListPayload{
		ConversationID: conversationID,
		Messages:       messages,
	})
	if err != nil {
		return event.WsEvent{}, err
	}

	return event.WsEvent{
		Event:   event.EventMessageList,
		Topic:   ConversationTopic(conversationID),
		Payload: payload,
	}, nil
}
