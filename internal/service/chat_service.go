package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/rohitnarwariya/PlaceReady-1/internal/apperr"
	"github.com/rohitnarwariya/PlaceReady-1/internal/model"
	"github.com/rohitnarwariya/PlaceReady-1/internal/repo"
)

// acceptGreeting seeds the conversation created when a senior accepts a
// request; the accepter authored it, so they start out as having read it.
const acceptGreeting = "Consultation started. How can I help?"

// Quota is the per-sender request submission limit: at most MaxRequests
// inside a rolling Window. Soft limit, enforced by counting.
type Quota struct {
	MaxRequests int
	Window      time.Duration
}

// SubmitRequestInput carries everything a requester supplies when asking a
// senior for a consultation. Identity fields come from the Identity Resolver
// and are trusted, not validated for existence.
type SubmitRequestInput struct {
	FromUserID   string
	FromUserName string
	ToUserID     string
	ToUserName   string
	Domain       string
	Reason       model.RequestReason
	Message      string
}

type ChatService interface {
	SubmitRequest(ctx context.Context, in SubmitRequestInput) (*model.ChatRequest, error)
	ResolveRequest(ctx context.Context, requestID, decision, callerID, callerName string) (*model.Conversation, error)
	ListPendingRequests(ctx context.Context, userID string) ([]model.ChatRequest, error)
	ListConversations(ctx context.Context, userID string) ([]model.Conversation, error)
	GetConversation(ctx context.Context, conversationID, callerID string) (*model.Conversation, error)
	SendMessage(ctx context.Context, conversationID, senderID, text string) (*model.Message, error)
	ListMessages(ctx context.Context, conversationID, callerID string) ([]model.Message, error)
	MarkRead(ctx context.Context, conversationID, userID string) error
}

type chatService struct {
	requests      repo.RequestRepository
	conversations repo.ConversationRepository
	messages      repo.MessageRepository
	notifier      Notifier
	quota         Quota
	logger        *zap.Logger
	now           func() time.Time
}

func NewChatService(
	requests repo.RequestRepository,
	conversations repo.ConversationRepository,
	messages repo.MessageRepository,
	notifier Notifier,
	quota Quota,
	logger *zap.Logger,
) ChatService {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &chatService{
		requests:      requests,
		conversations: conversations,
		messages:      messages,
		notifier:      notifier,
		quota:         quota,
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// -----------------------------------------------------------------------------
// Request Ledger
// -----------------------------------------------------------------------------

func (s *chatService) SubmitRequest(ctx context.Context, in SubmitRequestInput) (*model.ChatRequest, error) {
	if in.FromUserID == "" || in.ToUserID == "" {
		return nil, apperr.Validation("fromUser and toUser are required")
	}
	if in.FromUserID == in.ToUserID {
		return nil, apperr.Validation("cannot request a chat with yourself")
	}
	if !in.Reason.Valid() {
		return nil, apperr.Validation("reason must be one of Internship, Skills, CGPA, Placement")
	}

	message := strings.TrimSpace(in.Message)
	if message == "" {
		return nil, apperr.Validation("request message is required")
	}
	// Character limit, not bytes: multibyte scripts count per rune.
	if utf8.RuneCountInString(message) > model.MaxRequestMessageLen {
		return nil, apperr.Validation("request message exceeds 300 characters")
	}

	now := s.now()

	// Soft quota: plain count, no lock. Two racing submissions can both
	// pass and exceed the limit by one, which is accepted.
	since := now.Add(-s.quota.Window)
	count, err := s.requests.CountFromSince(ctx, in.FromUserID, since)
	if err != nil {
		s.logger.Error("quota check failed", zap.String("from_user_id", in.FromUserID), zap.Error(err))
		return nil, apperr.Unavailable("could not verify request quota")
	}
	if count >= int64(s.quota.MaxRequests) {
		return nil, apperr.RateLimited("request limit reached, try again later")
	}

	domain := in.Domain
	if domain == "" {
		domain = "General"
	}

	req := &model.ChatRequest{
		FromUserID:   in.FromUserID,
		FromUserName: in.FromUserName,
		ToUserID:     in.ToUserID,
		ToUserName:   in.ToUserName,
		Domain:       domain,
		Reason:       in.Reason,
		Message:      message,
		Status:       model.RequestPending,
		CreatedAt:    now,
	}

	id, err := s.requests.Insert(ctx, req)
	if err != nil {
		return nil, apperr.ErrUnavailable
	}
	req.ID = objectIDFromHex(id)

	s.notifier.ConversationsChanged(in.ToUserID)
	return req, nil
}

func (s *chatService) ResolveRequest(ctx context.Context, requestID, decision, callerID, callerName string) (*model.Conversation, error) {
	if decision != model.RequestAccepted && decision != model.RequestRejected {
		return nil, apperr.Validation("decision must be accepted or rejected")
	}

	req, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		// A malformed id surfaces as an invalid-hex error from the store;
		// to the caller it is the same as an unknown request.
		if errors.Is(err, repo.ErrRequestNotFound) || errors.Is(err, primitive.ErrInvalidHex) {
			return nil, apperr.NotFound("chat request not found")
		}
		return nil, apperr.ErrUnavailable
	}

	// Only the recipient may decide.
	if req.ToUserID != callerID {
		return nil, apperr.Forbidden("only the request recipient can resolve it")
	}
	if !req.Pending() {
		return nil, apperr.Conflict("chat request is already resolved")
	}

	// Single winner: the claim matches only while the document is still
	// pending, so a racing second resolution fails here.
	claimed, err := s.requests.Claim(ctx, requestID, decision)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrRequestResolved):
			return nil, apperr.Conflict("chat request is already resolved")
		case errors.Is(err, repo.ErrRequestNotFound):
			return nil, apperr.NotFound("chat request not found")
		}
		return nil, apperr.ErrUnavailable
	}

	if decision == model.RequestRejected {
		s.notifier.ConversationsChanged(callerID)
		return nil, nil
	}

	accepterName := callerName
	if accepterName == "" {
		accepterName = claimed.ToUserName
	}

	now := s.now()
	conversation := &model.Conversation{
		UserAID:     claimed.FromUserID,
		UserBID:     claimed.ToUserID,
		UserAName:   claimed.FromUserName,
		UserBName:   accepterName,
		Domain:      claimed.Domain,
		LastMessage: acceptGreeting,
		CreatedAt:   now,
		UpdatedAt:   now,
		SeenBy:      []string{callerID},
	}

	conversationID, err := s.conversations.Insert(ctx, conversation)
	if err != nil {
		// Undo the status flip so a reader never observes an accepted
		// request with no conversation behind it.
		if reopenErr := s.requests.Reopen(ctx, requestID); reopenErr != nil {
			s.logger.Error("failed to reopen request after conversation insert failure",
				zap.String("request_id", requestID),
				zap.Error(reopenErr),
			)
		}
		return nil, apperr.Unavailable("conversation could not be created")
	}
	conversation.ID = objectIDFromHex(conversationID)

	s.notifier.ConversationsChanged(conversation.UserAID, conversation.UserBID)
	return conversation, nil
}

func (s *chatService) ListPendingRequests(ctx context.Context, userID string) ([]model.ChatRequest, error) {
	if userID == "" {
		return nil, apperr.Validation("userId is required")
	}
	requests, err := s.requests.ListPendingFor(ctx, userID)
	if err != nil {
		return nil, apperr.ErrUnavailable
	}
	return requests, nil
}

// -----------------------------------------------------------------------------
// Conversation Store
// -----------------------------------------------------------------------------

func (s *chatService) ListConversations(ctx context.Context, userID string) ([]model.Conversation, error) {
	if userID == "" {
		return nil, apperr.Validation("userId is required")
	}
	conversations, err := s.conversations.ListFor(ctx, userID)
	if err != nil {
		return nil, apperr.ErrUnavailable
	}
	return conversations, nil
}

// GetConversation hides non-participant conversations behind NotFound, so
// their existence cannot be probed.
func (s *chatService) GetConversation(ctx context.Context, conversationID, callerID string) (*model.Conversation, error) {
	conversation, err := s.fetchConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conversation.HasParticipant(callerID) {
		return nil, apperr.NotFound("conversation not found")
	}
	return conversation, nil
}

func (s *chatService) MarkRead(ctx context.Context, conversationID, userID string) error {
	conversation, err := s.fetchConversation(ctx, conversationID)
	if err != nil {
		return err
	}
	if !conversation.HasParticipant(userID) {
		return apperr.Forbidden("caller is not a participant")
	}

	// $addToSet union: already-seen is a no-op, and a concurrent send's
	// full replace cannot be clobbered with stale state.
	if err := s.conversations.AddSeen(ctx, conversationID, userID); err != nil {
		if errors.Is(err, repo.ErrConversationNotFound) {
			return apperr.NotFound("conversation not found")
		}
		return apperr.ErrUnavailable
	}

	s.notifier.ConversationsChanged(userID)
	return nil
}

// -----------------------------------------------------------------------------
// Message Log
// -----------------------------------------------------------------------------

func (s *chatService) SendMessage(ctx context.Context, conversationID, senderID, text string) (*model.Message, error) {
	conversation, err := s.fetchConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conversation.HasParticipant(senderID) {
		return nil, apperr.Forbidden("sender is not a participant")
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, apperr.Validation("message text is required")
	}

	now := s.now()
	msg := &model.Message{
		ConversationID: conversation.ID,
		SenderID:       senderID,
		Text:           trimmed,
		CreatedAt:      now,
	}

	messageID, err := s.messages.InsertMessage(ctx, msg)
	if err != nil {
		return nil, apperr.ErrUnavailable
	}
	msg.ID = objectIDFromHex(messageID)

	// Reset seen_by to just the sender: the counterpart is unread until
	// they open the thread.
	if err := s.conversations.ApplySend(ctx, conversationID, trimmed, senderID, now); err != nil {
		if errors.Is(err, repo.ErrConversationNotFound) {
			return nil, apperr.NotFound("conversation not found")
		}
		return nil, apperr.ErrUnavailable
	}

	s.notifier.MessagesChanged(conversationID)
	s.notifier.ConversationsChanged(conversation.UserAID, conversation.UserBID)
	return msg, nil
}

func (s *chatService) ListMessages(ctx context.Context, conversationID, callerID string) ([]model.Message, error) {
	conversation, err := s.fetchConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conversation.HasParticipant(callerID) {
		return nil, apperr.Forbidden("caller is not a participant")
	}

	messages, err := s.messages.ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, apperr.ErrUnavailable
	}
	return messages, nil
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func (s *chatService) fetchConversation(ctx context.Context, conversationID string) (*model.Conversation, error) {
	conversation, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, repo.ErrConversationNotFound) || errors.Is(err, repo.ErrInvalidConversationID) {
			return nil, apperr.NotFound("conversation not found")
		}
		if errors.Is(err, primitive.ErrInvalidHex) {
			return nil, apperr.NotFound("conversation not found")
		}
		return nil, apperr.ErrUnavailable
	}
	return conversation, nil
}

func objectIDFromHex(id string) primitive.ObjectID {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID
	}
	return oid
}
