package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"freegift/internal/domain"
	rulesvc "freegift/internal/service/rule"
)

// RuleService is the slice of the settings service the handlers need.
type RuleService interface {
	Get(ctx context.Context) (*domain.GiftRule, error)
	Save(ctx context.Context, in rulesvc.SaveInput) (*domain.GiftRule, error)
}

type settingsResponse struct {
	Configured bool   `json:"configured"`
	Rule       any    `json:"rule,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

func getSettingsHandler(svc RuleService) gin.HandlerFunc {
	return func(c *gin.Context) {
		rule, err := svc.Get(c.Request.Context())
		if err != nil {
			c.JSON(settingsErrorStatus(err), settingsResponse{Reason: err.Error()})
			return
		}
		if rule == nil {
			c.JSON(http.StatusOK, settingsResponse{Configured: false})
			return
		}
		c.JSON(http.StatusOK, settingsResponse{Configured: true, Rule: rule})
	}
}

func putSettingsHandler(svc RuleService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in rulesvc.SaveInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, settingsResponse{Reason: "invalid request body"})
			return
		}

		rule, err := svc.Save(c.Request.Context(), in)
		if err != nil {
			c.JSON(settingsErrorStatus(err), settingsResponse{Reason: err.Error()})
			return
		}
		c.JSON(http.StatusOK, settingsResponse{Configured: true, Rule: rule})
	}
}

func settingsErrorStatus(err error) int {
	var vErr *rulesvc.ValidationError
	switch {
	case errors.As(err, &vErr):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
