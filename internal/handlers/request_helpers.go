package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"backend/internal/checkout"
	"backend/internal/orders"
	"backend/internal/payment"
	"backend/internal/store"
)

func handlePanic(c *gin.Context, route string) {
	if r := recover(); r != nil {
		log.Printf("[%s] panic recovered: %v", route, r)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func ensureDBConnection(ctx context.Context, db *mongo.Database) error {
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return db.Client().Ping(checkCtx, readpref.Primary())
}

func respondWithError(c *gin.Context, status int, route string, message string) {
	log.Printf("[%s] returning error %d: %s", route, status, message)
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// respondDomainError maps the typed error taxonomy onto HTTP. Unauthorized
// and NotFound deliberately render the same so resource existence never
// leaks.
func respondDomainError(c *gin.Context, route string, err error) {
	var validation *checkout.ValidationError
	switch {
	case errors.As(err, &validation):
		log.Printf("[%s] validation failed: %v", route, validation)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":   "validation failed",
			"field":   validation.Field,
			"message": validation.Message,
		})
	case payment.IsFailed(err):
		log.Printf("[%s] payment failed: %v", route, err)
		c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{"error": "payment failed"})
	case errors.Is(err, orders.ErrUnauthorized), errors.Is(err, store.ErrNotFound):
		respondWithError(c, http.StatusNotFound, route, "not found")
	case errors.Is(err, orders.ErrInvalidTransition):
		respondWithError(c, http.StatusConflict, route, "invalid status transition")
	case errors.Is(err, store.ErrConflict):
		respondWithError(c, http.StatusConflict, route, "concurrent modification, retry the operation")
	default:
		log.Printf("[%s] internal error: %v", route, err)
		respondWithError(c, http.StatusInternalServerError, route, "internal error")
	}
}

func parsePaginationParams(pageStr, limitStr string) (int64, int64, error) {
	page := int64(1)
	limit := int64(20)

	if pageStr != "" {
		p, err := strconv.ParseInt(pageStr, 10, 64)
		if err != nil || p < 1 {
			return 0, 0, errors.New("invalid page")
		}
		page = p
	}

	if limitStr != "" {
		l, err := strconv.ParseInt(limitStr, 10, 64)
		if err != nil || l < 1 || l > 100 {
			return 0, 0, errors.New("invalid limit")
		}
		limit = l
	}

	return page, limit, nil
}
