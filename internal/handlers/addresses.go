package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"backend/internal/checkout"
	"backend/internal/middleware"
	"backend/internal/models"
	"backend/internal/store"
)

type addressRequest struct {
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

func (r addressRequest) toAddress() models.Address {
	return models.Address{
		FirstName:  strings.TrimSpace(r.FirstName),
		LastName:   strings.TrimSpace(r.LastName),
		Province:   strings.TrimSpace(r.Province),
		City:       strings.TrimSpace(r.City),
		Area:       strings.TrimSpace(r.Area),
		PostalCode: strings.TrimSpace(r.PostalCode),
		Phone:      strings.TrimSpace(r.Phone),
		Line1:      strings.TrimSpace(r.Line1),
		IsDefault:  r.IsDefault,
	}
}

func GetUserAddresses(addresses *store.AddressStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /user/addresses"
		defer handlePanic(c, route)

		actor, ok := middleware.Principal(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		list, err := addresses.List(c.Request.Context(), actor.ID)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"addresses": list})
	}
}

func CreateUserAddress(addresses *store.AddressStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /user/addresses"
		defer handlePanic(c, route)

		actor, ok := middleware.Principal(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req addressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondDomainError(c, route, &checkout.ValidationError{Field: "address", Message: "invalid body"})
			return
		}

		list, err := addresses.Add(c.Request.Context(), actor.ID, req.toAddress())
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"addresses": list})
	}
}

func UpdateUserAddress(addresses *store.AddressStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /user/addresses/:id"
		defer handlePanic(c, route)

		actor, ok := middleware.Principal(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		addressID := strings.TrimSpace(c.Param("id"))
		if addressID == "" {
			respondWithError(c, http.StatusNotFound, route, "not found")
			return
		}

		var req addressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondDomainError(c, route, &checkout.ValidationError{Field: "address", Message: "invalid body"})
			return
		}

		list, err := addresses.Update(c.Request.Context(), actor.ID, addressID, req.toAddress())
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"addresses": list})
	}
}

func DeleteUserAddress(addresses *store.AddressStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /user/addresses/:id"
		defer handlePanic(c, route)

		actor, ok := middleware.Principal(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		addressID := strings.TrimSpace(c.Param("id"))
		if addressID == "" {
			respondWithError(c, http.StatusNotFound, route, "not found")
			return
		}

		list, err := addresses.Delete(c.Request.Context(), actor.ID, addressID)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"addresses": list})
	}
}
