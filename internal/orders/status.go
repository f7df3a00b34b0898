// Package orders governs the order lifecycle: which status transitions are
// legal, who may cause them, and how they are attributed.
package orders

import "backend/internal/models"

// transitions is the full table. Terminal states have no entries, so nothing
// ever leaves Complete, Cancelled or Returned.
var transitions = map[models.OrderStatus][]models.OrderStatus{
	models.StatusPending: {
		models.StatusComplete,
		models.StatusCancelled,
		models.StatusReturned,
	},
}

// CanTransition reports whether from -> to is a legal lifecycle move.
func CanTransition(from, to models.OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves the status.
func IsTerminal(status models.OrderStatus) bool {
	return len(transitions[status]) == 0
}
