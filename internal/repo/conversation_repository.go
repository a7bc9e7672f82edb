package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/rohitnarwariya/PlaceReady-1/internal/db"
	"github.com/rohitnarwariya/PlaceReady-1/internal/model"
)

var ErrConversationNotFound = errors.New("conversation not found")

type conversationRepository struct {
	mongoRepo *db.Repository[model.Conversation]
	logger    *zap.Logger
}

type ConversationRepository interface {
	Insert(ctx context.Context, conversation *model.Conversation) (string, error)
	GetByID(ctx context.Context, conversationID string) (*model.Conversation, error)
	ListFor(ctx context.Context, userID string) ([]model.Conversation, error)
	ApplySend(ctx context.Context, conversationID string, lastMessage string, senderID string, at time.Time) error
	AddSeen(ctx context.Context, conversationID string, userID string) error
}

func NewConversationRepository(repo *db.Repository[model.Conversation], logger *zap.Logger) ConversationRepository {
	return &conversationRepository{
		mongoRepo: repo,
		logger:    logger,
	}
}

func (r *conversationRepository) Insert(ctx context.Context, conversation *model.Conversation) (string, error) {
	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	result, err := r.mongoRepo.Create(ctx, *conversation)
	if err != nil {
		r.logger.Error("failed to insert conversation",
			zap.String("user_a_id", conversation.UserAID),
			zap.String("user_b_id", conversation.UserBID),
			zap.Error(err),
		)
		return "", fmt.Errorf("insert conversation failed: %w", err)
	}

	insertedID := insertedHex(result)
	r.logger.Info("conversation created",
		zap.String("inserted_id", insertedID),
		zap.String("user_a_id", conversation.UserAID),
		zap.String("user_b_id", conversation.UserBID),
		zap.String("domain", conversation.Domain),
	)
	return insertedID, nil
}

// GetByID fetches a conversation document by ID
func (r *conversationRepository) GetByID(ctx context.Context, conversationID string) (*model.Conversation, error) {
	if conversationID == "" {
		return nil, ErrInvalidConversationID
	}

	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	conversation, err := r.mongoRepo.FindByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			r.logger.Debug("conversation not found",
				zap.String("conversation_id", conversationID),
			)
			return nil, ErrConversationNotFound
		}
		r.logger.Error("failed to fetch conversation",
			zap.String("conversation_id", conversationID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("fetch conversation failed: %w", err)
	}

	return conversation, nil
}

// ListFor returns every conversation the user participates in, most recently
// updated first. The ordering is recomputed on every query.
func (r *conversationRepository) ListFor(ctx context.Context, userID string) ([]model.Conversation, error) {
	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	filter := db.NewFilter().
		Or(bson.M{"user_a_id": userID}, bson.M{"user_b_id": userID}).
		Build()
	sort := bson.D{{Key: "updated_at", Value: -1}}

	conversations, err := r.mongoRepo.FindAllSorted(ctx, filter, sort)
	if err != nil {
		r.logger.Error("failed to list conversations",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("list conversations failed: %w", err)
	}

	r.logger.Debug("conversations retrieved",
		zap.String("user_id", userID),
		zap.Int("count", len(conversations)),
	)
	return conversations, nil
}

// ApplySend records a sent message on the conversation: last message preview,
// bumped updated_at, and seen_by replaced wholesale with just the sender so
// the other participant reads as unread. Full replace in one atomic update.
func (r *conversationRepository) ApplySend(ctx context.Context, conversationID string, lastMessage string, senderID string, at time.Time) error {
	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	update := bson.M{
		"last_message": lastMessage,
		"updated_at":   at,
		"seen_by":      []string{senderID},
	}

	result, err := r.mongoRepo.UpdateByID(ctx, conversationID, update)
	if err != nil {
		r.logger.Error("failed to apply send to conversation",
			zap.String("conversation_id", conversationID),
			zap.Error(err),
		)
		return fmt.Errorf("apply send failed: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrConversationNotFound
	}
	return nil
}

// AddSeen unions the user into seen_by via $addToSet, so repeated calls are
// idempotent and a concurrent send cannot be clobbered by stale client state.
func (r *conversationRepository) AddSeen(ctx context.Context, conversationID string, userID string) error {
	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	update := bson.M{"$addToSet": bson.M{"seen_by": userID}}

	result, err := r.mongoRepo.ApplyByID(ctx, conversationID, update)
	if err != nil {
		r.logger.Error("failed to mark conversation read",
			zap.String("conversation_id", conversationID),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return fmt.Errorf("mark read failed: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrConversationNotFound
	}

	r.logger.Debug("conversation marked read",
		zap.String("conversation_id", conversationID),
		zap.String("user_id", userID),
	)
	return nil
}
