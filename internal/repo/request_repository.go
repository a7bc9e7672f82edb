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

var (
	ErrRequestNotFound = errors.New("chat request not found")
	ErrRequestResolved = errors.New("chat request already resolved")
)

type requestRepository struct {
	mongoRepo *db.Repository[model.ChatRequest]
	logger    *zap.Logger
}

type RequestRepository interface {
	Insert(ctx context.Context, req *model.ChatRequest) (string, error)
	FindByID(ctx context.Context, id string) (*model.ChatRequest, error)
	ListPendingFor(ctx context.Context, userID string) ([]model.ChatRequest, error)
	CountFromSince(ctx context.Context, userID string, since time.Time) (int64, error)
	Claim(ctx context.Context, id string, decision string) (*model.ChatRequest, error)
	Reopen(ctx context.Context, id string) error
}

func NewRequestRepository(repo *db.Repository[model.ChatRequest], logger *zap.Logger) RequestRepository {
	return &requestRepository{
		mongoRepo: repo,
		logger:    logger,
	}
}

func (r *requestRepository) Insert(ctx context.Context, req *model.ChatRequest) (string, error) {
	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	result, err := r.mongoRepo.Create(ctx, *req)
	if err != nil {
		r.logger.Error("failed to insert chat request",
			zap.String("from_user_id", req.FromUserID),
			zap.String("to_user_id", req.ToUserID),
			zap.Error(err),
		)
		return "", fmt.Errorf("insert chat request failed: %w", err)
	}

	insertedID := insertedHex(result)
	r.logger.Info("chat request inserted",
		zap.String("inserted_id", insertedID),
		zap.String("from_user_id", req.FromUserID),
		zap.String("to_user_id", req.ToUserID),
	)
	return insertedID, nil
}

func (r *requestRepository) FindByID(ctx context.Context, id string) (*model.ChatRequest, error) {
	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	req, err := r.mongoRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("fetch chat request failed: %w", err)
	}
	return req, nil
}

// ListPendingFor returns pending requests addressed to the user, newest
// first. The ordering is recomputed on every query.
func (r *requestRepository) ListPendingFor(ctx context.Context, userID string) ([]model.ChatRequest, error) {
	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	filter := db.NewFilter().
		Eq("to_user_id", userID).
		Eq("status", model.RequestPending).
		Build()
	sort := bson.D{{Key: "created_at", Value: -1}}

	requests, err := r.mongoRepo.FindAllSorted(ctx, filter, sort)
	if err != nil {
		r.logger.Error("failed to list pending requests",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("list pending requests failed: %w", err)
	}
	return requests, nil
}

// CountFromSince counts requests the user has submitted inside the rolling
// quota window. Plain count with no lock: two near-simultaneous submissions
// can both pass the check, which is acceptable for a soft limit.
func (r *requestRepository) CountFromSince(ctx context.Context, userID string, since time.Time) (int64, error) {
	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	filter := db.NewFilter().
		Eq("from_user_id", userID).
		Gte("created_at", since).
		Build()

	return r.mongoRepo.Count(ctx, filter)
}

// Claim transitions the request from pending to the given decision. The
// filter matches only while the request is still pending, so concurrent
// resolution attempts are serialized by the store and exactly one wins;
// losers get ErrRequestResolved.
func (r *requestRepository) Claim(ctx context.Context, id string, decision string) (*model.ChatRequest, error) {
	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	filter := db.NewFilter().
		ObjectID("_id", id).
		Eq("status", model.RequestPending).
		Build()
	update := bson.M{"$set": bson.M{"status": decision}}

	req, err := r.mongoRepo.ClaimOne(ctx, filter, update)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			r.logger.Error("failed to claim chat request",
				zap.String("request_id", id),
				zap.Error(err),
			)
			return nil, fmt.Errorf("claim chat request failed: %w", err)
		}

		// No pending document matched: distinguish absent from already
		// resolved by a concurrent writer.
		if _, findErr := r.FindByID(ctx, id); findErr != nil {
			return nil, findErr
		}
		return nil, ErrRequestResolved
	}

	r.logger.Info("chat request resolved",
		zap.String("request_id", id),
		zap.String("decision", decision),
	)
	return req, nil
}

// Reopen reverts a claimed request back to pending. Only used when the
// conversation insert that follows an accept could not be completed.
func (r *requestRepository) Reopen(ctx context.Context, id string) error {
	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	if _, err := r.mongoRepo.UpdateByID(ctx, id, bson.M{"status": model.RequestPending}); err != nil {
		r.logger.Error("failed to reopen chat request",
			zap.String("request_id", id),
			zap.Error(err),
		)
		return fmt.Errorf("reopen chat request failed: %w", err)
	}

	r.logger.Warn("chat request reopened", zap.String("request_id", id))
	return nil
}
