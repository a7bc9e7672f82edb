package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rohitnarwariya/PlaceReady-1/internal/model"
	"github.com/rohitnarwariya/PlaceReady-1/internal/repo"
)

// In-memory repository fakes implementing the repo interfaces. All guarded
// by mutexes so racing resolution tests behave like the store's per-document
// serialization.

type fakeRequestRepo struct {
	mu        sync.Mutex
	requests  map[string]*model.ChatRequest
	insertErr error
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: make(map[string]*model.ChatRequest)}
}

func (f *fakeRequestRepo) Insert(_ context.Context, req *model.ChatRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.insertErr != nil {
		return "", f.insertErr
	}

	stored := *req
	stored.ID = primitive.NewObjectID()
	f.requests[stored.ID.Hex()] = &stored
	return stored.ID.Hex(), nil
}

func (f *fakeRequestRepo) FindByID(_ context.Context, id string) (*model.ChatRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	// Malformed ids surface as a wrapped invalid-hex error, as they do
	// from the store-backed repository.
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, fmt.Errorf("fetch chat request failed: %w", err)
	}

	req, ok := f.requests[id]
	if !ok {
		return nil, repo.ErrRequestNotFound
	}
	copied := *req
	return &copied, nil
}

func (f *fakeRequestRepo) ListPendingFor(_ context.Context, userID string) ([]model.ChatRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var pending []model.ChatRequest
	for _, req := range f.requests {
		if req.ToUserID == userID && req.Status == model.RequestPending {
			pending = append(pending, *req)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].CreatedAt.After(pending[j].CreatedAt)
	})
	return pending, nil
}

func (f *fakeRequestRepo) CountFromSince(_ context.Context, userID string, since time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var count int64
	for _, req := range f.requests {
		if req.FromUserID == userID && !req.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (f *fakeRequestRepo) Claim(_ context.Context, id string, decision string) (*model.ChatRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	req, ok := f.requests[id]
	if !ok {
		return nil, repo.ErrRequestNotFound
	}
	if req.Status != model.RequestPending {
		return nil, repo.ErrRequestResolved
	}
	req.Status = decision
	copied := *req
	return &copied, nil
}

func (f *fakeRequestRepo) Reopen(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if req, ok := f.requests[id]; ok {
		req.Status = model.RequestPending
	}
	return nil
}

type fakeConversationRepo struct {
	mu            sync.Mutex
	conversations map[string]*model.Conversation
	insertErr     error
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{conversations: make(map[string]*model.Conversation)}
}

func (f *fakeConversationRepo) Insert(_ context.Context, conversation *model.Conversation) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.insertErr != nil {
		return "", f.insertErr
	}

	stored := *conversation
	stored.ID = primitive.NewObjectID()
	stored.SeenBy = append([]string(nil), conversation.SeenBy...)
	f.conversations[stored.ID.Hex()] = &stored
	return stored.ID.Hex(), nil
}

func (f *fakeConversationRepo) GetByID(_ context.Context, conversationID string) (*model.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	conversation, ok := f.conversations[conversationID]
	if !ok {
		return nil, repo.ErrConversationNotFound
	}
	copied := *conversation
	copied.SeenBy = append([]string(nil), conversation.SeenBy...)
	return &copied, nil
}

func (f *fakeConversationRepo) ListFor(_ context.Context, userID string) ([]model.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []model.Conversation
	for _, conversation := range f.conversations {
		if conversation.UserAID == userID || conversation.UserBID == userID {
			copied := *conversation
			copied.SeenBy = append([]string(nil), conversation.SeenBy...)
			result = append(result, copied)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})
	return result, nil
}

func (f *fakeConversationRepo) ApplySend(_ context.Context, conversationID string, lastMessage string, senderID string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	conversation, ok := f.conversations[conversationID]
	if !ok {
		return repo.ErrConversationNotFound
	}
	conversation.LastMessage = lastMessage
	conversation.UpdatedAt = at
	conversation.SeenBy = []string{senderID}
	return nil
}

func (f *fakeConversationRepo) AddSeen(_ context.Context, conversationID string, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	conversation, ok := f.conversations[conversationID]
	if !ok {
		return repo.ErrConversationNotFound
	}
	for _, id := range conversation.SeenBy {
		if id == userID {
			return nil
		}
	}
	conversation.SeenBy = append(conversation.SeenBy, userID)
	return nil
}

type fakeMessageRepo struct {
	mu        sync.Mutex
	messages  []model.Message
	insertErr error
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{}
}

func (f *fakeMessageRepo) InsertMessage(_ context.Context, msg *model.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.insertErr != nil {
		return "", f.insertErr
	}

	stored := *msg
	stored.ID = primitive.NewObjectID()
	f.messages = append(f.messages, stored)
	return stored.ID.Hex(), nil
}

func (f *fakeMessageRepo) ListByConversation(_ context.Context, conversationID string) ([]model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []model.Message
	for _, msg := range f.messages {
		if msg.ConversationID.Hex() == conversationID {
			result = append(result, msg)
		}
	}
	// Stable sort: equal timestamps keep insertion order, like the
	// created_at/_id compound sort against the store.
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

type recordingNotifier struct {
	mu                   sync.Mutex
	conversationsChanged []string
	messagesChanged      []string
}

func (n *recordingNotifier) ConversationsChanged(userIDs ...string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.conversationsChanged = append(n.conversationsChanged, userIDs...)
}

func (n *recordingNotifier) MessagesChanged(conversationID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messagesChanged = append(n.messagesChanged, conversationID)
}

func (n *recordingNotifier) conversationNotifications() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.conversationsChanged...)
}

func (n *recordingNotifier) messageNotifications() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messagesChanged...)
}
