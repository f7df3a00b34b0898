package orders

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/models"
	"backend/internal/notify"
)

var (
	// ErrInvalidTransition means the state machine forbids the requested move.
	ErrInvalidTransition = errors.New("invalid order status transition")

	// ErrUnauthorized means the actor has no rights over the order. Handlers
	// render it exactly like a missing order so existence never leaks.
	ErrUnauthorized = errors.New("actor may not act on this order")
)

// Store is the persistence the lifecycle service needs. *store.OrderRepository
// satisfies it; tests substitute an in-memory fake.
type Store interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Order, error)
	FindByOwner(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	FindAll(ctx context.Context, page, limit int64) ([]models.Order, int64, error)
	UpdateStatusCAS(ctx context.Context, id primitive.ObjectID, event models.StatusEvent) (models.Order, error)
}

// Service applies lifecycle transitions with authorization and attribution.
type Service struct {
	store    Store
	notifier notify.Notifier
	now      func() time.Time
}

func NewService(store Store, notifier notify.Notifier) *Service {
	return &Service{store: store, notifier: notifier, now: time.Now}
}

// Get returns the order if the actor is its owner or an admin; anything else
// is ErrUnauthorized.
func (s *Service) Get(ctx context.Context, actor models.Principal, id primitive.ObjectID) (models.Order, error) {
	order, err := s.store.FindByID(ctx, id)
	if err != nil {
		return models.Order{}, err
	}
	if !actor.IsAdmin() && !order.OwnedBy(actor.ID) {
		return models.Order{}, ErrUnauthorized
	}
	return order, nil
}

// ListForOwner returns the actor's own orders, newest first.
func (s *Service) ListForOwner(ctx context.Context, actor models.Principal) ([]models.Order, error) {
	return s.store.FindByOwner(ctx, actor.ID)
}

// ListAll is the admin listing, newest first, paginated.
func (s *Service) ListAll(ctx context.Context, actor models.Principal, page, limit int64) ([]models.Order, int64, error) {
	if !actor.IsAdmin() {
		return nil, 0, ErrUnauthorized
	}
	return s.store.FindAll(ctx, page, limit)
}

// Cancel moves a Pending order to Cancelled. Legal actors are the owning user
// and administrators; attribution is written in the same atomic update that
// flips the status, never inferred afterwards.
func (s *Service) Cancel(ctx context.Context, actor models.Principal, id primitive.ObjectID) (models.Order, error) {
	order, err := s.store.FindByID(ctx, id)
	if err != nil {
		return models.Order{}, err
	}
	if !actor.IsAdmin() && !order.OwnedBy(actor.ID) {
		return models.Order{}, ErrUnauthorized
	}
	if !CanTransition(order.Status, models.StatusCancelled) {
		return models.Order{}, ErrInvalidTransition
	}

	updated, err := s.apply(ctx, actor, order, models.StatusCancelled)
	if err != nil {
		return models.Order{}, err
	}
	s.notifier.OrderCancelled(updated)
	return updated, nil
}

// SetStatus is the administrative override: any legal transition out of
// Pending. Terminal states stay terminal for admins too.
func (s *Service) SetStatus(ctx context.Context, actor models.Principal, id primitive.ObjectID, to models.OrderStatus) (models.Order, error) {
	if !actor.IsAdmin() {
		return models.Order{}, ErrUnauthorized
	}

	order, err := s.store.FindByID(ctx, id)
	if err != nil {
		return models.Order{}, err
	}
	if !CanTransition(order.Status, to) {
		return models.Order{}, ErrInvalidTransition
	}

	updated, err := s.apply(ctx, actor, order, to)
	if err != nil {
		return models.Order{}, err
	}
	if to == models.StatusCancelled {
		s.notifier.OrderCancelled(updated)
	}
	return updated, nil
}

func (s *Service) apply(ctx context.Context, actor models.Principal, order models.Order, to models.OrderStatus) (models.Order, error) {
	actorID := actor.ID
	return s.store.UpdateStatusCAS(ctx, order.ID, models.StatusEvent{
		From:      order.Status,
		To:        to,
		ActorRole: actor.Role,
		ActorID:   &actorID,
		At:        s.now(),
	})
}
