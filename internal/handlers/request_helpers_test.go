package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"backend/internal/checkout"
	"backend/internal/orders"
	"backend/internal/payment"
	"backend/internal/store"
)

func TestParsePaginationParams(t *testing.T) {
	page, limit, err := parsePaginationParams("", "")
	if err != nil || page != 1 || limit != 20 {
		t.Fatalf("expected defaults 1/20, got %d/%d err=%v", page, limit, err)
	}

	page, limit, err = parsePaginationParams("3", "50")
	if err != nil || page != 3 || limit != 50 {
		t.Fatalf("expected 3/50, got %d/%d err=%v", page, limit, err)
	}

	for _, bad := range [][2]string{{"0", "10"}, {"x", "10"}, {"1", "0"}, {"1", "101"}} {
		if _, _, err := parsePaginationParams(bad[0], bad[1]); err == nil {
			t.Fatalf("expected error for page=%q limit=%q", bad[0], bad[1])
		}
	}
}

func TestRespondDomainErrorMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &checkout.ValidationError{Field: "items", Message: "cart is empty"}, http.StatusBadRequest},
		{"payment failed", &payment.FailedError{Reason: "declined"}, http.StatusPaymentRequired},
		{"not found", store.ErrNotFound, http.StatusNotFound},
		{"unauthorized renders as not found", orders.ErrUnauthorized, http.StatusNotFound},
		{"invalid transition", orders.ErrInvalidTransition, http.StatusConflict},
		{"cas conflict", store.ErrConflict, http.StatusConflict},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(recorder)

			respondDomainError(c, "TEST", tc.err)
			if recorder.Code != tc.want {
				t.Fatalf("expected status %d, got %d", tc.want, recorder.Code)
			}
		})
	}
}
