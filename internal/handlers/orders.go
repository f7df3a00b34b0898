package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/checkout"
	"backend/internal/middleware"
	"backend/internal/models"
	"backend/internal/orders"
)

type createOrderRequest struct {
	Items         []checkout.ItemInput   `json:"items"`
	AddressID     string                 `json:"addressId"`
	NewAddress    *checkout.AddressInput `json:"newAddress"`
	PaymentMethod string                 `json:"paymentMethod" binding:"required"`
	Channel       string                 `json:"channel"`
}

type confirmOrderRequest struct {
	IntentID string `json:"intentId" binding:"required"`
}

type setStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// CreateOrder runs checkout: COD orders come back created, card checkouts
// come back as a payment intent for the client to confirm.
func CreateOrder(db *mongo.Database, orch *checkout.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		actor, ok := middleware.Principal(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		result, err := orch.PlaceOrder(c.Request.Context(), actor, checkout.Input{
			Items:         req.Items,
			AddressID:     req.AddressID,
			NewAddress:    req.NewAddress,
			PaymentMethod: req.PaymentMethod,
			Channel:       req.Channel,
		})
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		if result.Order != nil {
			c.JSON(http.StatusCreated, gin.H{"order": result.Order})
			return
		}
		c.JSON(http.StatusOK, gin.H{"payment": result.Intent})
	}
}

// ConfirmOrder is the card-path success callback: the order is created here,
// after the processor confirms, never before.
func ConfirmOrder(orch *checkout.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders/confirm"
		defer handlePanic(c, route)

		actor, ok := middleware.Principal(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req confirmOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		order, err := orch.ConfirmCardOrder(c.Request.Context(), actor, req.IntentID)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"order": order})
	}
}

// GetOrder returns one order to its owner or an admin.
func GetOrder(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders/:id"
		defer handlePanic(c, route)

		actor, ok := middleware.Principal(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusNotFound, route, "not found")
			return
		}

		order, err := svc.Get(c.Request.Context(), actor, orderID)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}

// GetMyOrders lists the caller's orders, newest first.
func GetMyOrders(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders"
		defer handlePanic(c, route)

		actor, ok := middleware.Principal(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		list, err := svc.ListForOwner(c.Request.Context(), actor)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": list})
	}
}

// GetAllOrders is the paginated back-office listing.
func GetAllOrders(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/orders"
		defer handlePanic(c, route)

		actor, ok := middleware.Principal(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		list, total, err := svc.ListAll(c.Request.Context(), actor, page, limit)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"orders": list,
			"total":  total,
			"page":   page,
			"limit":  limit,
		})
	}
}

// CancelOrder lets the owner or an admin cancel a pending order. Attribution
// is recorded as part of the transition.
func CancelOrder(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /orders/:id/cancel"
		defer handlePanic(c, route)

		actor, ok := middleware.Principal(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusNotFound, route, "not found")
			return
		}

		order, err := svc.Cancel(c.Request.Context(), actor, orderID)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}

// SetOrderStatus is the administrative status override.
func SetOrderStatus(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /admin/api/orders/:id/status"
		defer handlePanic(c, route)

		actor, ok := middleware.Principal(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusNotFound, route, "not found")
			return
		}

		var req setStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}
		status, err := models.ParseOrderStatus(req.Status)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid status")
			return
		}

		order, err := svc.SetStatus(c.Request.Context(), actor, orderID, status)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}
