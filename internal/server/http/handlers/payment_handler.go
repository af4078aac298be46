package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/storefront/internal/adapter/payment"
	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/server/http/dto"
)

const maxNotificationSize = 1 << 20

// PaymentHandler exposes intent creation and the provider webhook.
type PaymentHandler struct {
	facade PaymentFacade
	logger *slog.Logger
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(facade PaymentFacade, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{facade: facade, logger: logger}
}

// CreateIntent handles POST /api/payments/create-intent.
func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	var req dto.CreateIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	handle, err := h.facade.CreatePaymentIntent(c.Request.Context(), CurrentUserID(c), req.OrderID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CreateIntentResponse{ClientSecret: handle.ClientHandle, OrderID: handle.OrderID})
}

// Webhook handles POST /api/payments/webhook. Everything except a signature
// failure is acknowledged so the provider stops redelivering.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxNotificationSize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.logger.Warn("payment notification too large", slog.Int64("limit", tooLarge.Limit))
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusBadRequest)
		return
	}

	err = h.facade.HandlePaymentNotification(c.Request.Context(), payload, c.GetHeader(payment.SignatureHeader))
	switch {
	case err == nil:
	case errors.Is(err, domainErrors.ErrInvalidSignature):
		h.logger.Warn("payment notification rejected", slog.String("error", err.Error()))
		c.Status(http.StatusBadRequest)
		return
	default:
		h.logger.Error("payment notification processing failed", slog.String("error", err.Error()))
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
