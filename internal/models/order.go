package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatus is the closed set of order lifecycle states. Pending is the only
// non-terminal state; transitions are validated by the orders package.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusComplete  OrderStatus = "complete"
	StatusCancelled OrderStatus = "cancelled"
	StatusReturned  OrderStatus = "returned"
)

// ParseOrderStatus maps a request value onto the closed enum.
func ParseOrderStatus(value string) (OrderStatus, error) {
	switch OrderStatus(value) {
	case StatusPending, StatusComplete, StatusCancelled, StatusReturned:
		return OrderStatus(value), nil
	}
	return "", fmt.Errorf("unknown order status %q", value)
}

// Role identifies the kind of principal acting on an order.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Principal is the authenticated actor supplied by the identity middleware.
// Every mutating operation takes it explicitly; nothing reads ambient state.
type Principal struct {
	ID   primitive.ObjectID
	Role Role
}

// IsAdmin reports whether the principal carries the admin role.
func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// OrderItem is a snapshot of one cart line at order time. Prices are minor
// currency units and never re-read from the product document afterwards.
type OrderItem struct {
	ProductID       primitive.ObjectID `bson:"productId" json:"productId"`
	Name            string             `bson:"name" json:"name"`
	UnitPrice       int64              `bson:"unitPrice" json:"unitPrice"`
	Quantity        int                `bson:"quantity" json:"quantity"`
	DiscountPercent float64            `bson:"discountPercent,omitempty" json:"discountPercent,omitempty"`
}

// OrderPricing embeds the priced breakdown on the order document.
type OrderPricing struct {
	Subtotal       int64 `bson:"subtotal" json:"subtotal"`
	DiscountAmount int64 `bson:"discountAmount" json:"discountAmount"`
	TaxAmount      int64 `bson:"taxAmount" json:"taxAmount"`
	ShippingAmount int64 `bson:"shippingAmount" json:"shippingAmount"`
	GrandTotal     int64 `bson:"grandTotal" json:"grandTotal"`
}

// StatusEvent records one applied transition so "who cancelled this order" is
// answerable from the document alone.
type StatusEvent struct {
	From      OrderStatus         `bson:"from" json:"from"`
	To        OrderStatus         `bson:"to" json:"to"`
	ActorRole Role                `bson:"actorRole" json:"actorRole"`
	ActorID   *primitive.ObjectID `bson:"actorId,omitempty" json:"actorId,omitempty"`
	At        time.Time           `bson:"at" json:"at"`
}

// Order is the persisted order document. Orders are append-only: created once
// in Pending, afterwards mutated only through status transitions, never
// deleted.
type Order struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID        *primitive.ObjectID `bson:"userId" json:"userId"`
	CustomerName  string              `bson:"customerName" json:"customerName"`
	Phone         string              `bson:"phone" json:"phone"`
	Address       Address             `bson:"address" json:"address"`
	Items         []OrderItem         `bson:"items" json:"items"`
	Channel       string              `bson:"channel" json:"channel"`
	Pricing       OrderPricing        `bson:"pricing" json:"pricing"`
	Bill          int64               `bson:"bill" json:"bill"`
	PaymentMethod string              `bson:"paymentMethod" json:"paymentMethod"`
	PaymentStatus string              `bson:"paymentStatus" json:"paymentStatus"`
	Status        OrderStatus         `bson:"status" json:"status"`
	CancelledBy   Role                `bson:"cancelledBy,omitempty" json:"cancelledBy,omitempty"`
	CancelledAt   *time.Time          `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
	StatusHistory []StatusEvent       `bson:"statusHistory" json:"statusHistory"`
	CreatedAt     time.Time           `bson:"createdAt" json:"createdAt"`
}

// OwnedBy reports whether the order belongs to the given user.
func (o Order) OwnedBy(userID primitive.ObjectID) bool {
	return o.UserID != nil && *o.UserID == userID
}

// CheckoutDraft holds a fully priced card checkout between intent creation and
// the success callback. It is not an order: abandoned drafts expire via TTL
// and never reach the orders collection.
type CheckoutDraft struct {
	IntentID  string    `bson:"_id" json:"intentId"`
	Order     Order     `bson:"order" json:"order"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	ExpiresAt time.Time `bson:"expiresAt" json:"expiresAt"`
}
