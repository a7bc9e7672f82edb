package hub

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rohitnarwariya/PlaceReady-1/internal/event"
	"github.com/rohitnarwariya/PlaceReady-1/internal/model"
)

// stub repositories feeding the snapshot builders; only the read paths the
// notifier exercises are populated.
type stubRequestRepo struct {
	pending []model.ChatRequest
}

func (s *stubRequestRepo) Insert(context.Context, *model.ChatRequest) (string, error) {
	return "", nil
}

func (s *stubRequestRepo) FindByID(context.Context, string) (*model.ChatRequest, error) {
	return nil, nil
}

func (s *stubRequestRepo) ListPendingFor(_ context.Context, userID string) ([]model.ChatRequest, error) {
	out := make([]model.ChatRequest, 0)
	for _, r := range s.pending {
		if r.ToUserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *stubRequestRepo) CountFromSince(context.Context, string, time.Time) (int64, error) {
	return 0, nil
}

func (s *stubRequestRepo) Claim(context.Context, string, string) (*model.ChatRequest, error) {
	return nil, nil
}

func (s *stubRequestRepo) Reopen(context.Context, string) error { return nil }

type stubConversationRepo struct {
	conversations map[string]*model.Conversation
}

func (s *stubConversationRepo) Insert(context.Context, *model.Conversation) (string, error) {
	return "", nil
}

func (s *stubConversationRepo) GetByID(_ context.Context, id string) (*model.Conversation, error) {
	if c, ok := s.conversations[id]; ok {
		return c, nil
	}
	return nil, primitive.ErrInvalidHex
}

func (s *stubConversationRepo) ListFor(_ context.Context, userID string) ([]model.Conversation, error) {
	out := make([]model.Conversation, 0)
	for _, c := range s.conversations {
		if c.HasParticipant(userID) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (s *stubConversationRepo) ApplySend(context.Context, string, string, string, time.Time) error {
	return nil
}

func (s *stubConversationRepo) AddSeen(context.Context, string, string) error { return nil }

type stubMessageRepo struct {
	messages map[string][]model.Message
}

func (s *stubMessageRepo) InsertMessage(context.Context, *model.Message) (string, error) {
	return "", nil
}

func (s *stubMessageRepo) ListByConversation(_ context.Context, conversationID string) ([]model.Message, error) {
	return s.messages[conversationID], nil
}

// newTestClient builds a client without a websocket connection; tests only
// exercise subscription bookkeeping and the egress queue.
func newTestClient(userID string) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		ID:          uuid.New().String(),
		userID:      userID,
		egress:      make(chan event.WsEvent, sendBufSize),
		connectedAt: time.Now(),
		topics:      make(map[string]struct{}),
		ctx:         ctx,
		cancel:      cancel,
		connClosed:  make(chan struct{}),
	}
}

func TestTopicNames(t *testing.T) {
	assert.Equal(t, "user:sen_y", UserTopic("sen_y"))
	assert.Equal(t, "conv:64f0", ConversationTopic("64f0"))
}

func TestGetShardStable(t *testing.T) {
	assert.Equal(t, uint32(0), getShard(""))

	for _, topic := range []string{"user:a", "user:b", "conv:64f000000000000000000000"} {
		sh := getShard(topic)
		assert.Less(t, sh, uint32(shardCount))
		assert.Equal(t, sh, getShard(topic))
	}
}

func TestSubscribePublishUnsubscribe(t *testing.T) {
	h := NewHub(nil)
	c := newTestClient("sen_y")
	topic := ConversationTopic("64f000000000000000000000")

	h.subscribe(c, topic)
	assert.Contains(t, c.Topics(), topic)

	ev := event.WsEvent{Event: event.EventMessageList, Topic: topic}
	h.publish(topic, ev)

	select {
	case got := <-c.egress:
		assert.Equal(t, ev.Event, got.Event)
		assert.Equal(t, topic, got.Topic)
	case <-time.After(time.Second):
		t.Fatal("expected event on egress")
	}

	h.unsubscribe(c, topic)
	assert.Empty(t, c.Topics())

	// publishing to an empty topic is a no-op
	h.publish(topic, ev)
	select {
	case <-c.egress:
		t.Fatal("unsubscribed client received an event")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPublishOnlyReachesTopicSubscribers(t *testing.T) {
	h := NewHub(nil)
	a := newTestClient("user_a")
	b := newTestClient("user_b")

	h.subscribe(a, UserTopic("user_a"))
	h.subscribe(b, UserTopic("user_b"))

	h.publish(UserTopic("user_a"), event.WsEvent{Event: event.EventConversationList})

	select {
	case <-a.egress:
	case <-time.After(time.Second):
		t.Fatal("subscriber missed its event")
	}

	select {
	case <-b.egress:
		t.Fatal("event leaked to another user's topic")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestConversationSnapshot(t *testing.T) {
	conversationID := primitive.NewObjectID()
	n := &Notifier{
		requests: &stubRequestRepo{
			pending: []model.ChatRequest{
				{ToUserID: "sen_y", FromUserID: "stu_x", Status: model.RequestPending},
			},
		},
		conversations: &stubConversationRepo{
			conversations: map[string]*model.Conversation{
				conversationID.Hex(): {
					ID:      conversationID,
					UserAID: "stu_x",
					UserBID: "sen_y",
					SeenBy:  []string{"stu_x"}, // sen_y has not read it
				},
			},
		},
		messages: &stubMessageRepo{},
	}

	ev, err := n.conversationSnapshot("sen_y")
	assert.NoError(t, err)
	assert.Equal(t, event.EventConversationList, ev.Event)
	assert.Equal(t, UserTopic("sen_y"), ev.Topic)

	var payload event.ConversationListPayload
	assert.NoError(t, json.Unmarshal(ev.Payload, &payload))
	assert.Equal(t, "sen_y", payload.UserID)
	assert.Len(t, payload.Conversations, 1)
	assert.Len(t, payload.PendingRequests, 1)
	assert.Equal(t, 1, payload.UnreadCount)
}

func TestMessageSnapshot(t *testing.T) {
	conversationID := primitive.NewObjectID()
	n := &Notifier{
		requests:      &stubRequestRepo{},
		conversations: &stubConversationRepo{},
		messages: &stubMessageRepo{
			messages: map[string][]model.Message{
				conversationID.Hex(): {
					{SenderID: "stu_x", Text: "hello"},
					{SenderID: "sen_y", Text: "hi"},
				},
			},
		},
	}

	ev, err := n.messageSnapshot(conversationID.Hex())
	assert.NoError(t, err)
	assert.Equal(t, event.EventMessageList, ev.Event)
	assert.Equal(t, ConversationTopic(conversationID.Hex()), ev.Topic)

	var payload event.MessageListPayload
	assert.NoError(t, json.Unmarshal(ev.Payload, &payload))
	assert.Equal(t, conversationID.Hex(), payload.ConversationID)
	assert.Len(t, payload.Messages, 2)
	assert.Equal(t, "hello", payload.Messages[0].Text)
}

func TestAuthorizeSubscribe(t *testing.T) {
	conversationID := primitive.NewObjectID()
	n := &Notifier{
		conversations: &stubConversationRepo{
			conversations: map[string]*model.Conversation{
				conversationID.Hex(): {
					ID:      conversationID,
					UserAID: "stu_x",
					UserBID: "sen_y",
				},
			},
		},
	}

	assert.True(t, n.authorizeSubscribe(conversationID.Hex(), "stu_x"))
	assert.True(t, n.authorizeSubscribe(conversationID.Hex(), "sen_y"))
	assert.False(t, n.authorizeSubscribe(conversationID.Hex(), "intruder"))
	assert.False(t, n.authorizeSubscribe("missing", "stu_x"))
}

func TestForbiddenEvent(t *testing.T) {
	ev := forbiddenEvent("64f0")
	assert.Equal(t, event.EventError, ev.Event)

	var payload event.ErrorPayload
	assert.NoError(t, json.Unmarshal(ev.Payload, &payload))
	assert.Equal(t, "forbidden", payload.Code)
}

func TestMonitorStats(t *testing.T) {
	h := NewHub(nil)
	ms := NewMonitorService(h)

	stats := ms.GetStats()
	assert.Equal(t, "idle", stats.Status)
	assert.Zero(t, stats.Connections.TotalConnected)

	a := newTestClient("user_a")
	b := newTestClient("user_b")
	h.subscribe(a, UserTopic("user_a"))
	h.subscribe(b, UserTopic("user_b"))
	h.subscribe(a, ConversationTopic("64f0"))
	h.subscribe(b, ConversationTopic("64f0"))

	stats = ms.GetStats()
	assert.Equal(t, "healthy", stats.Status)
	assert.Equal(t, 2, stats.Connections.TotalConnected)
	assert.Equal(t, 2, stats.Connections.TotalUsers)
	assert.Equal(t, 3, stats.Topics.TotalTopics)

	for _, info := range stats.Topics.TopicDetails {
		if info.Topic == ConversationTopic("64f0") {
			assert.Equal(t, 2, info.Subscribers)
			assert.Equal(t, []string{"user_a", "user_b"}, info.SubscriberIDs)
		}
	}
}
