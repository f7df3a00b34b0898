package payment

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeProcessor struct {
	intent Intent
	err    error
	block  bool
}

func (f *fakeProcessor) CreateIntent(ctx context.Context, amountMinor int64, currency string) (Intent, error) {
	if f.block {
		<-ctx.Done()
		return Intent{}, ctx.Err()
	}
	if f.err != nil {
		return Intent{}, f.err
	}
	intent := f.intent
	intent.Amount = amountMinor
	intent.Currency = currency
	return intent, nil
}

func (f *fakeProcessor) RetrieveIntent(ctx context.Context, intentID string) (Intent, error) {
	if f.err != nil {
		return Intent{}, f.err
	}
	return f.intent, nil
}

func TestCreateIntentTimeoutIsPaymentFailed(t *testing.T) {
	adapter := NewAdapter(&fakeProcessor{block: true}, 10*time.Millisecond, "usd")

	_, err := adapter.CreateIntent(context.Background(), 20900)
	if !IsFailed(err) {
		t.Fatalf("expected FailedError, got %v", err)
	}
}

func TestCreateIntentDeclineIsPaymentFailed(t *testing.T) {
	adapter := NewAdapter(&fakeProcessor{err: errors.New("card declined")}, time.Second, "usd")

	_, err := adapter.CreateIntent(context.Background(), 500)
	if !IsFailed(err) {
		t.Fatalf("expected FailedError, got %v", err)
	}
}

func TestVerifySucceeded(t *testing.T) {
	cases := []struct {
		name   string
		intent Intent
		wantOK bool
	}{
		{"succeeded", Intent{ID: "pi_1", Status: IntentStatusSucceeded, Amount: 20900, Currency: "usd"}, true},
		{"currency case differs", Intent{ID: "pi_1", Status: IntentStatusSucceeded, Amount: 20900, Currency: "USD"}, true},
		{"still processing", Intent{ID: "pi_1", Status: "processing", Amount: 20900, Currency: "usd"}, false},
		{"amount mismatch", Intent{ID: "pi_1", Status: IntentStatusSucceeded, Amount: 100, Currency: "usd"}, false},
		{"currency mismatch", Intent{ID: "pi_1", Status: IntentStatusSucceeded, Amount: 20900, Currency: "eur"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			adapter := NewAdapter(&fakeProcessor{intent: tc.intent}, time.Second, "usd")
			err := adapter.VerifySucceeded(context.Background(), "pi_1", 20900)
			if tc.wantOK && err != nil {
				t.Fatalf("expected success, got %v", err)
			}
			if !tc.wantOK && !IsFailed(err) {
				t.Fatalf("expected FailedError, got %v", err)
			}
		})
	}
}
