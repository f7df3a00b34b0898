package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/catalog"
	"backend/internal/models"
	"backend/internal/notify"
	"backend/internal/payment"
	"backend/internal/pricing"
	"backend/internal/store"
)

type fakeCatalog struct {
	prices map[primitive.ObjectID]catalog.LinePrice
}

func (f *fakeCatalog) Resolve(_ context.Context, id primitive.ObjectID) (catalog.LinePrice, error) {
	price, ok := f.prices[id]
	if !ok {
		return catalog.LinePrice{}, catalog.ErrProductNotFound
	}
	return price, nil
}

type fakeAddressBook struct {
	byUser map[primitive.ObjectID][]models.Address
}

func (f *fakeAddressBook) Get(_ context.Context, userID primitive.ObjectID, addressID string) (models.Address, error) {
	for _, addr := range f.byUser[userID] {
		if addr.ID == addressID {
			return addr, nil
		}
	}
	return models.Address{}, store.ErrNotFound
}

func (f *fakeAddressBook) Add(_ context.Context, userID primitive.ObjectID, candidate models.Address) ([]models.Address, error) {
	for _, addr := range f.byUser[userID] {
		if addr.Matches(candidate) {
			return f.byUser[userID], nil
		}
	}
	candidate.ID = "addr-new"
	f.byUser[userID] = append(f.byUser[userID], candidate)
	return f.byUser[userID], nil
}

type fakeOrderWriter struct {
	created []models.Order
}

func (f *fakeOrderWriter) Create(_ context.Context, order models.Order) (models.Order, error) {
	order.ID = primitive.NewObjectID()
	f.created = append(f.created, order)
	return order, nil
}

type memDrafts struct {
	byIntent map[string]models.CheckoutDraft
}

func (m *memDrafts) Put(_ context.Context, draft models.CheckoutDraft) error {
	m.byIntent[draft.IntentID] = draft
	return nil
}

func (m *memDrafts) Get(_ context.Context, intentID string) (models.CheckoutDraft, error) {
	draft, ok := m.byIntent[intentID]
	if !ok {
		return models.CheckoutDraft{}, store.ErrNotFound
	}
	return draft, nil
}

func (m *memDrafts) Take(ctx context.Context, intentID string) (models.CheckoutDraft, error) {
	draft, err := m.Get(ctx, intentID)
	if err != nil {
		return models.CheckoutDraft{}, err
	}
	delete(m.byIntent, intentID)
	return draft, nil
}

type scriptedProcessor struct {
	createErr error
	status    string
}

func (p *scriptedProcessor) CreateIntent(_ context.Context, amountMinor int64, currency string) (payment.Intent, error) {
	if p.createErr != nil {
		return payment.Intent{}, p.createErr
	}
	return payment.Intent{ID: "pi_test", ClientSecret: "cs_test", Amount: amountMinor, Currency: currency}, nil
}

func (p *scriptedProcessor) RetrieveIntent(_ context.Context, intentID string) (payment.Intent, error) {
	return payment.Intent{ID: intentID, Amount: 20900, Currency: "usd", Status: p.status}, nil
}

type fixture struct {
	orch      *Orchestrator
	writer    *fakeOrderWriter
	drafts    *memDrafts
	actor     models.Principal
	productID primitive.ObjectID
}

func newFixture(t *testing.T, processor payment.Processor, settings Settings) *fixture {
	t.Helper()

	userID := primitive.NewObjectID()
	productID := primitive.NewObjectID()

	cat := &fakeCatalog{prices: map[primitive.ObjectID]catalog.LinePrice{
		productID: {ProductID: productID, Name: "Candle", UnitPrice: 10000, DiscountPercent: 10},
	}}
	book := &fakeAddressBook{byUser: map[primitive.ObjectID][]models.Address{
		userID: {{
			ID: "addr-1", FirstName: "Ada", LastName: "Aksoy", Phone: "0555",
			Line1: "Moda Cad. 12/3", PostalCode: "34710", Province: "Istanbul", City: "Kadikoy",
			IsDefault: true,
		}},
	}}
	writer := &fakeOrderWriter{}
	drafts := &memDrafts{byIntent: map[string]models.CheckoutDraft{}}

	return &fixture{
		orch: NewOrchestrator(
			cat, book, writer, drafts,
			payment.NewAdapter(processor, time.Second, "usd"),
			notify.Discard{},
			settings,
		),
		writer:    writer,
		drafts:    drafts,
		actor:     models.Principal{ID: userID, Role: models.RoleUser},
		productID: productID,
	}
}

func storefrontSettings() Settings {
	return Settings{
		Pricing: pricing.Settings{
			TaxEnabled:      true,
			TaxRate:         5,
			ShippingEnabled: true,
			ShippingCharges: 2000,
		},
		CODEnabled:    true,
		OnlineEnabled: true,
	}
}

func TestPlaceOrderCODCreatesOnePendingOrder(t *testing.T) {
	f := newFixture(t, &scriptedProcessor{}, storefrontSettings())

	result, err := f.orch.PlaceOrder(context.Background(), f.actor, Input{
		Items:         []ItemInput{{ProductID: f.productID.Hex(), Quantity: 2}},
		AddressID:     "addr-1",
		PaymentMethod: payment.MethodCOD,
	})
	require.NoError(t, err)
	require.NotNil(t, result.Order)
	assert.Nil(t, result.Intent)
	require.Len(t, f.writer.created, 1)

	order := *result.Order
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Equal(t, payment.LabelCOD, order.PaymentMethod)
	assert.Equal(t, "Ada Aksoy", order.CustomerName)
	assert.Equal(t, "addr-1", order.Address.ID)
	require.Len(t, order.Items, 1)
	// catalog price, not anything the client could have sent
	assert.Equal(t, int64(10000), order.Items[0].UnitPrice)
	assert.Equal(t, int64(20900), order.Bill)
	assert.Equal(t, order.Bill, order.Pricing.GrandTotal)
	require.NotNil(t, order.UserID)
	assert.Equal(t, f.actor.ID, *order.UserID)
}

func TestPlaceOrderCardCreatesIntentButNoOrder(t *testing.T) {
	f := newFixture(t, &scriptedProcessor{status: payment.IntentStatusSucceeded}, storefrontSettings())

	result, err := f.orch.PlaceOrder(context.Background(), f.actor, Input{
		Items:         []ItemInput{{ProductID: f.productID.Hex(), Quantity: 2}},
		AddressID:     "addr-1",
		PaymentMethod: payment.MethodCard,
	})
	require.NoError(t, err)
	assert.Nil(t, result.Order)
	require.NotNil(t, result.Intent)
	assert.Equal(t, "cs_test", result.Intent.ClientSecret)
	assert.Equal(t, int64(20900), result.Intent.Amount)
	assert.Empty(t, f.writer.created, "card checkout must not persist before confirmation")
	require.Len(t, f.drafts.byIntent, 1)
	// the parked draft is unpaid until the processor confirms the intent
	assert.Equal(t, "unpaid", f.drafts.byIntent["pi_test"].Order.PaymentStatus)
}

func TestPlaceOrderCardDeclineLeavesNothing(t *testing.T) {
	f := newFixture(t, &scriptedProcessor{createErr: errors.New("declined")}, storefrontSettings())

	_, err := f.orch.PlaceOrder(context.Background(), f.actor, Input{
		Items:         []ItemInput{{ProductID: f.productID.Hex(), Quantity: 1}},
		AddressID:     "addr-1",
		PaymentMethod: payment.MethodCard,
	})
	require.True(t, payment.IsFailed(err), "expected PaymentFailed, got %v", err)
	assert.Empty(t, f.writer.created)
	assert.Empty(t, f.drafts.byIntent)
}

func TestConfirmCardOrder(t *testing.T) {
	f := newFixture(t, &scriptedProcessor{status: payment.IntentStatusSucceeded}, storefrontSettings())

	_, err := f.orch.PlaceOrder(context.Background(), f.actor, Input{
		Items:         []ItemInput{{ProductID: f.productID.Hex(), Quantity: 2}},
		AddressID:     "addr-1",
		PaymentMethod: payment.MethodCard,
	})
	require.NoError(t, err)

	order, err := f.orch.ConfirmCardOrder(context.Background(), f.actor, "pi_test")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Equal(t, "paid", order.PaymentStatus)
	assert.Equal(t, int64(20900), order.Bill)
	require.Len(t, f.writer.created, 1)

	// a second confirmation finds no draft and creates nothing
	_, err = f.orch.ConfirmCardOrder(context.Background(), f.actor, "pi_test")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Len(t, f.writer.created, 1)
}

func TestConfirmCardOrderUnconfirmedIntentCreatesNothing(t *testing.T) {
	f := newFixture(t, &scriptedProcessor{status: "requires_payment_method"}, storefrontSettings())

	_, err := f.orch.PlaceOrder(context.Background(), f.actor, Input{
		Items:         []ItemInput{{ProductID: f.productID.Hex(), Quantity: 2}},
		AddressID:     "addr-1",
		PaymentMethod: payment.MethodCard,
	})
	require.NoError(t, err)

	_, err = f.orch.ConfirmCardOrder(context.Background(), f.actor, "pi_test")
	require.True(t, payment.IsFailed(err), "expected PaymentFailed, got %v", err)
	assert.Empty(t, f.writer.created)
	// the draft survives a failed verification so the user can retry
	assert.Len(t, f.drafts.byIntent, 1)
}

func TestConfirmCardOrderHidesForeignDrafts(t *testing.T) {
	f := newFixture(t, &scriptedProcessor{status: payment.IntentStatusSucceeded}, storefrontSettings())

	_, err := f.orch.PlaceOrder(context.Background(), f.actor, Input{
		Items:         []ItemInput{{ProductID: f.productID.Hex(), Quantity: 2}},
		AddressID:     "addr-1",
		PaymentMethod: payment.MethodCard,
	})
	require.NoError(t, err)

	stranger := models.Principal{ID: primitive.NewObjectID(), Role: models.RoleUser}
	_, err = f.orch.ConfirmCardOrder(context.Background(), stranger, "pi_test")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Empty(t, f.writer.created)
}

func TestPlaceOrderValidation(t *testing.T) {
	f := newFixture(t, &scriptedProcessor{}, storefrontSettings())

	cases := []struct {
		name  string
		input Input
	}{
		{"unknown method", Input{Items: []ItemInput{{ProductID: f.productID.Hex(), Quantity: 1}}, AddressID: "addr-1", PaymentMethod: "wire"}},
		{"no address", Input{Items: []ItemInput{{ProductID: f.productID.Hex(), Quantity: 1}}, PaymentMethod: payment.MethodCOD}},
		{"zero quantity", Input{Items: []ItemInput{{ProductID: f.productID.Hex(), Quantity: 0}}, AddressID: "addr-1", PaymentMethod: payment.MethodCOD}},
		{"unknown product", Input{Items: []ItemInput{{ProductID: primitive.NewObjectID().Hex(), Quantity: 1}}, AddressID: "addr-1", PaymentMethod: payment.MethodCOD}},
		{"empty cart", Input{AddressID: "addr-1", PaymentMethod: payment.MethodCOD}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.orch.PlaceOrder(context.Background(), f.actor, tc.input)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr, "expected ValidationError, got %v", err)
			assert.Empty(t, f.writer.created)
		})
	}
}

func TestPlaceOrderBothPathsDisabled(t *testing.T) {
	settings := storefrontSettings()
	settings.CODEnabled = false
	settings.OnlineEnabled = false
	f := newFixture(t, &scriptedProcessor{}, settings)

	_, err := f.orch.PlaceOrder(context.Background(), f.actor, Input{
		Items:         []ItemInput{{ProductID: f.productID.Hex(), Quantity: 1}},
		AddressID:     "addr-1",
		PaymentMethod: payment.MethodCOD,
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestPlaceOrderEmptyCartFloor(t *testing.T) {
	settings := storefrontSettings()
	settings.Pricing.EmptyCartFloor = 100
	f := newFixture(t, &scriptedProcessor{}, settings)

	result, err := f.orch.PlaceOrder(context.Background(), f.actor, Input{
		AddressID:     "addr-1",
		PaymentMethod: payment.MethodCOD,
	})
	require.NoError(t, err)
	require.NotNil(t, result.Order)
	assert.Equal(t, int64(100), result.Order.Bill)
	assert.Empty(t, result.Order.Items)
}

func TestPlaceOrderWithNewAddress(t *testing.T) {
	f := newFixture(t, &scriptedProcessor{}, storefrontSettings())

	result, err := f.orch.PlaceOrder(context.Background(), f.actor, Input{
		Items: []ItemInput{{ProductID: f.productID.Hex(), Quantity: 1}},
		NewAddress: &AddressInput{
			FirstName: "Deniz", LastName: "Kaya", Province: "Istanbul", City: "Besiktas",
			PostalCode: "34357", Phone: "0533", Line1: "Barbaros Blv. 5",
		},
		PaymentMethod: payment.MethodCOD,
	})
	require.NoError(t, err)
	require.NotNil(t, result.Order)
	assert.Equal(t, "Deniz Kaya", result.Order.CustomerName)
	assert.Equal(t, "addr-new", result.Order.Address.ID)
}
