// Package payment abstracts the two supported payment paths: Stripe-hosted
// card payment intents and cash on delivery.
package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Method identifiers accepted from checkout requests.
const (
	MethodCard = "card"
	MethodCOD  = "cash"

	// LabelCOD is the payment method label stored on COD orders.
	LabelCOD = "Cash on Delivery"
)

// Intent statuses reported by the processor.
const (
	IntentStatusSucceeded = "succeeded"
)

// Intent is the processor's handle for an in-flight card payment. The client
// secret goes to the browser; the id keys the checkout draft.
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"clientSecret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	Status       string `json:"status"`
}

// Processor is the external card-payment collaborator. Implementations must
// honour context cancellation; the adapter bounds every call with a timeout.
type Processor interface {
	CreateIntent(ctx context.Context, amountMinor int64, currency string) (Intent, error)
	RetrieveIntent(ctx context.Context, intentID string) (Intent, error)
}

// FailedError is the PaymentFailed taxonomy entry: the processor declined or
// the round trip timed out. No order exists for the attempt and retrying is a
// user decision, never automatic.
type FailedError struct {
	Reason string
	Err    error
}

func (e *FailedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("payment failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("payment failed: %s", e.Reason)
}

func (e *FailedError) Unwrap() error { return e.Err }

// IsFailed reports whether err is a payment failure.
func IsFailed(err error) bool {
	var failed *FailedError
	return errors.As(err, &failed)
}

// Adapter wraps a Processor with the checkout-side rules: every round trip is
// bounded by Timeout, and a timeout is a failed payment, never an ambiguous
// one.
type Adapter struct {
	processor Processor
	timeout   time.Duration
	currency  string
}

func NewAdapter(processor Processor, timeout time.Duration, currency string) *Adapter {
	return &Adapter{processor: processor, timeout: timeout, currency: currency}
}

// CreateIntent requests a payment intent for the grand total.
func (a *Adapter) CreateIntent(ctx context.Context, amountMinor int64) (Intent, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	intent, err := a.processor.CreateIntent(ctx, amountMinor, a.currency)
	if err != nil {
		return Intent{}, wrapProcessorErr(ctx, "create intent", err)
	}
	return intent, nil
}

// VerifySucceeded re-reads the intent and confirms the processor reports it
// as succeeded for the expected amount in the configured currency. Order
// persistence is gated on this.
func (a *Adapter) VerifySucceeded(ctx context.Context, intentID string, expectedAmount int64) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	intent, err := a.processor.RetrieveIntent(ctx, intentID)
	if err != nil {
		return wrapProcessorErr(ctx, "retrieve intent", err)
	}
	if intent.Status != IntentStatusSucceeded {
		return &FailedError{Reason: fmt.Sprintf("intent %s is %s, not succeeded", intentID, intent.Status)}
	}
	if intent.Amount != expectedAmount {
		return &FailedError{Reason: fmt.Sprintf("intent %s amount %d does not match order total %d", intentID, intent.Amount, expectedAmount)}
	}
	if !strings.EqualFold(intent.Currency, a.currency) {
		return &FailedError{Reason: fmt.Sprintf("intent %s currency %q does not match configured currency %q", intentID, intent.Currency, a.currency)}
	}
	return nil
}

func wrapProcessorErr(ctx context.Context, op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &FailedError{Reason: op + " timed out", Err: err}
	}
	return &FailedError{Reason: op + " rejected by processor", Err: err}
}
