package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"freegift/internal/domain"
	"freegift/internal/repository/audit"
	giftsvc "freegift/internal/service/gift"
)

// GiftService is the slice of the gift service the handlers need.
type GiftService interface {
	Apply(ctx context.Context, cartID string) (domain.ReconcileResult, error)
	CartStatus(ctx context.Context, cartID string) (giftsvc.Status, error)
}

type applyRequest struct {
	CartID string `json:"cartId"`
}

// applyGiftHandler reconciles a cart's gift line. 200 when a mutation was
// applied or gifts were removed; 400 for validation failures and benign
// no-ops (disabled, ineligible, already correct); 503 when the platform API
// is unavailable; 500 otherwise.
func applyGiftHandler(svc GiftService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req applyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, domain.ReconcileResult{Reason: "invalid request body"})
			return
		}
		if strings.TrimSpace(req.CartID) == "" {
			c.JSON(http.StatusBadRequest, domain.ReconcileResult{Reason: "cartId is required"})
			return
		}

		result, err := svc.Apply(c.Request.Context(), req.CartID)
		if err != nil {
			c.JSON(applyErrorStatus(err), result)
			return
		}
		if result.Applied || result.Removed {
			c.JSON(http.StatusOK, result)
			return
		}
		c.JSON(http.StatusBadRequest, result)
	}
}

func applyErrorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrCartNotFound):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// giftStatusHandler reports eligibility progress for the banner.
func giftStatusHandler(svc GiftService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cartID := strings.TrimSpace(c.Query("cartId"))
		if cartID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"reason": "cartId is required"})
			return
		}

		status, err := svc.CartStatus(c.Request.Context(), cartID)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrUpstreamUnavailable):
				c.JSON(http.StatusServiceUnavailable, gin.H{"reason": err.Error()})
			case errors.Is(err, domain.ErrCartNotFound):
				c.JSON(http.StatusBadRequest, gin.H{"reason": err.Error()})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"reason": err.Error()})
			}
			return
		}
		c.JSON(http.StatusOK, status)
	}
}

// auditHandler lists recent reconciliation attempts for a cart.
func auditHandler(repo audit.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if repo == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"reason": "audit log disabled"})
			return
		}
		cartID := strings.TrimSpace(c.Query("cartId"))
		if cartID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"reason": "cartId is required"})
			return
		}
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

		entries, err := repo.ListByCart(c.Request.Context(), cartID, limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"reason": err.Error()})
			return
		}
		if entries == nil {
			entries = []domain.AuditEntry{}
		}
		c.JSON(http.StatusOK, gin.H{"entries": entries})
	}
}
