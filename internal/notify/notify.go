// Package notify is the fire-and-forget side channel for order events. A sink
// that fails must never fail the mutation that triggered it, so the interface
// returns nothing.
package notify

import (
	"log"

	"backend/internal/models"
)

// Notifier receives order lifecycle signals for administrative awareness.
type Notifier interface {
	OrderCreated(order models.Order)
	OrderCancelled(order models.Order)
}

// LogNotifier writes events to the application log. It stands where a real
// delivery channel (mail, queue) would be wired.
type LogNotifier struct{}

func (LogNotifier) OrderCreated(order models.Order) {
	log.Printf("[NOTIFY] [INFO] order created: %s total=%d method=%s", order.ID.Hex(), order.Bill, order.PaymentMethod)
}

func (LogNotifier) OrderCancelled(order models.Order) {
	log.Printf("[NOTIFY] [INFO] order cancelled: %s by=%s", order.ID.Hex(), order.CancelledBy)
}

// Discard drops every event; used in tests.
type Discard struct{}

func (Discard) OrderCreated(models.Order)   {}
func (Discard) OrderCancelled(models.Order) {}
