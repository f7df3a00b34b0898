// Package checkout composes pricing, addresses, payment and order persistence
// into the place-an-order use case. The whole path is all-or-nothing: an order
// document appears only after the chosen payment path has succeeded.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/catalog"
	"backend/internal/models"
	"backend/internal/notify"
	"backend/internal/payment"
	"backend/internal/pricing"
	"backend/internal/store"
)

// ValidationError reports a malformed checkout field. Field-level, never
// partially applied.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Settings are the storefront checkout toggles.
type Settings struct {
	Pricing       pricing.Settings
	CODEnabled    bool
	OnlineEnabled bool
	Channel       string
}

// AddressBook is the slice of the address store checkout needs.
type AddressBook interface {
	Get(ctx context.Context, userID primitive.ObjectID, addressID string) (models.Address, error)
	Add(ctx context.Context, userID primitive.ObjectID, candidate models.Address) ([]models.Address, error)
}

// OrderWriter persists the finished order.
type OrderWriter interface {
	Create(ctx context.Context, order models.Order) (models.Order, error)
}

// Drafts parks priced card checkouts until the processor confirms.
type Drafts interface {
	Put(ctx context.Context, draft models.CheckoutDraft) error
	Get(ctx context.Context, intentID string) (models.CheckoutDraft, error)
	Take(ctx context.Context, intentID string) (models.CheckoutDraft, error)
}

// ItemInput is one client cart line. The client price is deliberately absent:
// prices come from the catalog at order time.
type ItemInput struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
}

// AddressInput is a new shipping address supplied inline with checkout.
type AddressInput struct {
	FirstName  string `json:"firstName" binding:"required"`
	LastName   string `json:"lastName" binding:"required"`
	Province   string `json:"province" binding:"required"`
	City       string `json:"city" binding:"required"`
	Area       string `json:"area"`
	PostalCode string `json:"postalCode" binding:"required"`
	Phone      string `json:"phone" binding:"required"`
	Line1      string `json:"line1" binding:"required"`
	IsDefault  bool   `json:"isDefault"`
}

// Input is the place-order request after transport decoding.
type Input struct {
	Items         []ItemInput
	AddressID     string
	NewAddress    *AddressInput
	PaymentMethod string
	Channel       string
}

// Result is either a created COD order or a card intent awaiting client
// confirmation, never both.
type Result struct {
	Order  *models.Order   `json:"order,omitempty"`
	Intent *payment.Intent `json:"payment,omitempty"`
}

// Orchestrator wires the checkout collaborators together.
type Orchestrator struct {
	catalog   catalog.Source
	addresses AddressBook
	orders    OrderWriter
	drafts    Drafts
	payments  *payment.Adapter
	notifier  notify.Notifier
	settings  Settings
	now       func() time.Time
}

func NewOrchestrator(
	cat catalog.Source,
	addresses AddressBook,
	orders OrderWriter,
	drafts Drafts,
	payments *payment.Adapter,
	notifier notify.Notifier,
	settings Settings,
) *Orchestrator {
	if settings.Channel == "" {
		settings.Channel = "web"
	}
	return &Orchestrator{
		catalog:   cat,
		addresses: addresses,
		orders:    orders,
		drafts:    drafts,
		payments:  payments,
		notifier:  notifier,
		settings:  settings,
		now:       time.Now,
	}
}

// PlaceOrder runs the full checkout. COD orders are persisted immediately in
// Pending; card checkouts return a payment intent and persist nothing until
// ConfirmCardOrder sees the processor confirm.
func (o *Orchestrator) PlaceOrder(ctx context.Context, actor models.Principal, in Input) (Result, error) {
	if !o.settings.CODEnabled && !o.settings.OnlineEnabled {
		return Result{}, &ValidationError{Field: "paymentMethod", Message: "checkout is currently disabled"}
	}

	switch in.PaymentMethod {
	case payment.MethodCOD:
		if !o.settings.CODEnabled {
			return Result{}, &ValidationError{Field: "paymentMethod", Message: "cash on delivery is disabled"}
		}
	case payment.MethodCard:
		if !o.settings.OnlineEnabled {
			return Result{}, &ValidationError{Field: "paymentMethod", Message: "online payment is disabled"}
		}
	default:
		return Result{}, &ValidationError{Field: "paymentMethod", Message: "unknown payment method"}
	}

	address, err := o.resolveAddress(ctx, actor, in)
	if err != nil {
		return Result{}, err
	}

	items, lines, err := o.resolveLines(ctx, in.Items)
	if err != nil {
		return Result{}, err
	}

	breakdown, err := pricing.Calculate(lines, o.settings.Pricing)
	if err != nil {
		if errors.Is(err, pricing.ErrEmptyCart) {
			return Result{}, &ValidationError{Field: "items", Message: "cart is empty"}
		}
		return Result{}, err
	}

	userID := actor.ID
	channel := strings.TrimSpace(in.Channel)
	if channel == "" {
		channel = o.settings.Channel
	}
	order := models.Order{
		UserID:        &userID,
		CustomerName:  address.FullName(),
		Phone:         address.Phone,
		Address:       address,
		Items:         items,
		Channel:       channel,
		Pricing:       breakdown,
		Bill:          breakdown.GrandTotal,
		Status:        models.StatusPending,
		StatusHistory: []models.StatusEvent{},
		CreatedAt:     o.now(),
	}

	if in.PaymentMethod == payment.MethodCOD {
		order.PaymentMethod = payment.LabelCOD
		order.PaymentStatus = "unpaid"

		created, err := o.orders.Create(ctx, order)
		if err != nil {
			return Result{}, err
		}
		o.notifier.OrderCreated(created)
		return Result{Order: &created}, nil
	}

	intent, err := o.payments.CreateIntent(ctx, breakdown.GrandTotal)
	if err != nil {
		// PaymentFailed: nothing was persisted, the user may resubmit.
		return Result{}, err
	}

	// The draft stays unpaid; only a processor-confirmed intent flips it.
	order.PaymentMethod = payment.MethodCard
	order.PaymentStatus = "unpaid"
	if err := o.drafts.Put(ctx, models.CheckoutDraft{IntentID: intent.ID, Order: order}); err != nil {
		return Result{}, err
	}

	log.Println("[CHECKOUT] [INFO] card intent created:", intent.ID)
	return Result{Intent: &intent}, nil
}

// ConfirmCardOrder is the success callback for the card path. It verifies the
// intent with the processor, consumes the draft exactly once, and only then
// creates the order.
func (o *Orchestrator) ConfirmCardOrder(ctx context.Context, actor models.Principal, intentID string) (models.Order, error) {
	intentID = strings.TrimSpace(intentID)
	if intentID == "" {
		return models.Order{}, &ValidationError{Field: "intentId", Message: "intentId is required"}
	}

	draft, err := o.drafts.Get(ctx, intentID)
	if err != nil {
		return models.Order{}, err
	}
	if !actor.IsAdmin() && !draft.Order.OwnedBy(actor.ID) {
		return models.Order{}, store.ErrNotFound
	}

	if err := o.payments.VerifySucceeded(ctx, intentID, draft.Order.Bill); err != nil {
		return models.Order{}, err
	}

	// Consuming the draft is the idempotency gate: a second confirmation for
	// the same intent finds nothing and creates nothing.
	draft, err = o.drafts.Take(ctx, intentID)
	if err != nil {
		return models.Order{}, err
	}

	order := draft.Order
	order.PaymentStatus = "paid"
	order.CreatedAt = o.now()
	created, err := o.orders.Create(ctx, order)
	if err != nil {
		return models.Order{}, err
	}
	o.notifier.OrderCreated(created)
	return created, nil
}

func (o *Orchestrator) resolveAddress(ctx context.Context, actor models.Principal, in Input) (models.Address, error) {
	if in.NewAddress != nil {
		candidate := models.Address{
			FirstName:  strings.TrimSpace(in.NewAddress.FirstName),
			LastName:   strings.TrimSpace(in.NewAddress.LastName),
			Province:   strings.TrimSpace(in.NewAddress.Province),
			City:       strings.TrimSpace(in.NewAddress.City),
			Area:       strings.TrimSpace(in.NewAddress.Area),
			PostalCode: strings.TrimSpace(in.NewAddress.PostalCode),
			Phone:      strings.TrimSpace(in.NewAddress.Phone),
			Line1:      strings.TrimSpace(in.NewAddress.Line1),
			IsDefault:  in.NewAddress.IsDefault,
		}
		if candidate.FirstName == "" || candidate.LastName == "" || candidate.Phone == "" ||
			candidate.Line1 == "" || candidate.PostalCode == "" || candidate.Province == "" || candidate.City == "" {
			return models.Address{}, &ValidationError{Field: "address", Message: "incomplete shipping address"}
		}

		addresses, err := o.addresses.Add(ctx, actor.ID, candidate)
		if err != nil {
			return models.Address{}, err
		}
		// Add is a dedup no-op when the address already exists, so re-find
		// the canonical stored value by key.
		for _, stored := range addresses {
			if stored.Matches(candidate) {
				return stored, nil
			}
		}
		return models.Address{}, errors.New("added address missing from address book")
	}

	if strings.TrimSpace(in.AddressID) == "" {
		return models.Address{}, &ValidationError{Field: "addressId", Message: "an address is required"}
	}
	return o.addresses.Get(ctx, actor.ID, strings.TrimSpace(in.AddressID))
}

func (o *Orchestrator) resolveLines(ctx context.Context, items []ItemInput) ([]models.OrderItem, []pricing.Line, error) {
	orderItems := make([]models.OrderItem, 0, len(items))
	lines := make([]pricing.Line, 0, len(items))

	for i, item := range items {
		if item.Quantity < 1 {
			return nil, nil, &ValidationError{Field: fmt.Sprintf("items[%d].quantity", i), Message: "quantity must be at least 1"}
		}
		productID, err := primitive.ObjectIDFromHex(strings.TrimSpace(item.ProductID))
		if err != nil {
			return nil, nil, &ValidationError{Field: fmt.Sprintf("items[%d].productId", i), Message: "invalid productId"}
		}

		price, err := o.catalog.Resolve(ctx, productID)
		if err == catalog.ErrProductNotFound {
			return nil, nil, &ValidationError{Field: fmt.Sprintf("items[%d].productId", i), Message: "product not found"}
		}
		if err != nil {
			return nil, nil, err
		}

		orderItems = append(orderItems, models.OrderItem{
			ProductID:       price.ProductID,
			Name:            price.Name,
			UnitPrice:       price.UnitPrice,
			Quantity:        item.Quantity,
			DiscountPercent: price.DiscountPercent,
		})
		lines = append(lines, pricing.Line{
			UnitPrice:       price.UnitPrice,
			Quantity:        item.Quantity,
			DiscountPercent: price.DiscountPercent,
		})
	}
	return orderItems, lines, nil
}
