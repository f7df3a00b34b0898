package store

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

const orderOpTimeout = 5 * time.Second

// OrderRepository persists order documents. There is no delete: orders are an
// append-only audit trail mutated only through status transitions.
type OrderRepository struct {
	orders *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{orders: db.Collection("orders")}
}

// Create inserts the order and returns it with its assigned id.
func (r *OrderRepository) Create(ctx context.Context, order models.Order) (models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, orderOpTimeout)
	defer cancel()

	result, err := r.orders.InsertOne(ctx, order)
	if err != nil {
		return models.Order{}, err
	}
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		order.ID = id
	}
	log.Println("[ORDER] [INFO] order created:", order.ID.Hex())
	return order, nil
}

// FindByID returns one order or ErrNotFound.
func (r *OrderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, orderOpTimeout)
	defer cancel()

	var order models.Order
	err := r.orders.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return models.Order{}, ErrNotFound
	}
	if err != nil {
		return models.Order{}, err
	}
	return order, nil
}

// FindByOwner returns the user's orders, newest first.
func (r *OrderRepository) FindByOwner(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, orderOpTimeout)
	defer cancel()

	cursor, err := r.orders.Find(ctx,
		bson.M{"userId": userID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// FindAll returns every order newest first, paginated for the back office.
func (r *OrderRepository) FindAll(ctx context.Context, page, limit int64) ([]models.Order, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, orderOpTimeout)
	defer cancel()

	total, err := r.orders.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}

	cursor, err := r.orders.Find(ctx, bson.M{}, options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip((page-1)*limit).
		SetLimit(limit),
	)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// UpdateStatusCAS applies one transition atomically: the write only matches
// while the stored status still equals event.From, and it sets the new status,
// cancellation attribution, and history entry in a single update. A miss on a
// document that exists is ErrConflict (a concurrent transition won).
func (r *OrderRepository) UpdateStatusCAS(ctx context.Context, id primitive.ObjectID, event models.StatusEvent) (models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, orderOpTimeout)
	defer cancel()

	set := bson.M{"status": event.To}
	if event.To == models.StatusCancelled {
		set["cancelledBy"] = event.ActorRole
		set["cancelledAt"] = event.At
	}

	var order models.Order
	err := r.orders.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": event.From},
		bson.M{
			"$set":  set,
			"$push": bson.M{"statusHistory": event},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&order)
	if err == mongo.ErrNoDocuments {
		// Either the order is gone or its status moved under us.
		if _, findErr := r.FindByID(ctx, id); findErr == ErrNotFound {
			return models.Order{}, ErrNotFound
		}
		log.Println("[ORDER] [WARN] status CAS conflict:", id.Hex())
		return models.Order{}, ErrConflict
	}
	if err != nil {
		return models.Order{}, err
	}

	log.Printf("[ORDER] [INFO] order %s: %s -> %s by %s", id.Hex(), event.From, event.To, event.ActorRole)
	return order, nil
}
