package store

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/models"
)

// DraftStore keeps priced card checkouts keyed by payment intent id while the
// client confirms with the processor. Drafts expire via the TTL index; an
// abandoned card payment therefore leaves no trace in the orders collection.
type DraftStore struct {
	drafts *mongo.Collection
	ttl    time.Duration
}

func NewDraftStore(db *mongo.Database, ttl time.Duration) *DraftStore {
	return &DraftStore{drafts: db.Collection("checkout_drafts"), ttl: ttl}
}

// Put stores the draft under its intent id.
func (s *DraftStore) Put(ctx context.Context, draft models.CheckoutDraft) error {
	ctx, cancel := context.WithTimeout(ctx, orderOpTimeout)
	defer cancel()

	now := time.Now()
	draft.CreatedAt = now
	draft.ExpiresAt = now.Add(s.ttl)

	_, err := s.drafts.InsertOne(ctx, draft)
	if err != nil {
		return err
	}
	log.Println("[CHECKOUT] [INFO] draft stored for intent:", draft.IntentID)
	return nil
}

// Get returns the draft without consuming it.
func (s *DraftStore) Get(ctx context.Context, intentID string) (models.CheckoutDraft, error) {
	ctx, cancel := context.WithTimeout(ctx, orderOpTimeout)
	defer cancel()

	var draft models.CheckoutDraft
	err := s.drafts.FindOne(ctx, bson.M{"_id": intentID}).Decode(&draft)
	if err == mongo.ErrNoDocuments {
		return models.CheckoutDraft{}, ErrNotFound
	}
	if err != nil {
		return models.CheckoutDraft{}, err
	}
	return draft, nil
}

// Take removes and returns the draft for the intent. The delete doubles as an
// idempotency guard: only the first confirmation for an intent gets the draft.
func (s *DraftStore) Take(ctx context.Context, intentID string) (models.CheckoutDraft, error) {
	ctx, cancel := context.WithTimeout(ctx, orderOpTimeout)
	defer cancel()

	var draft models.CheckoutDraft
	err := s.drafts.FindOneAndDelete(ctx, bson.M{"_id": intentID}).Decode(&draft)
	if err == mongo.ErrNoDocuments {
		return models.CheckoutDraft{}, ErrNotFound
	}
	if err != nil {
		return models.CheckoutDraft{}, err
	}
	return draft, nil
}
