package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/teranga-stays/service-rental/internal/application"
	"github.com/teranga-stays/service-rental/internal/payment"
	"github.com/teranga-stays/service-rental/internal/platform/auth"
	"github.com/teranga-stays/service-rental/internal/platform/middleware"
	"github.com/teranga-stays/service-rental/internal/platform/response"
)

const (
	signatureHeader     = "Stripe-Signature"
	maxWebhookBodyBytes = int64(65536)
)

// WebhookParser verifies and decodes a processor webhook delivery.
type WebhookParser interface {
	ParseWebhook(payload []byte, signature string) (*payment.WebhookEvent, error)
}

// PaymentHandler handles checkout creation and processor webhooks.
type PaymentHandler struct {
	service *application.PaymentService
	parser  WebhookParser
	logger  *zap.Logger
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(service *application.PaymentService, parser WebhookParser, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{service: service, parser: parser, logger: logger}
}

// RegisterRoutes registers payment routes. The webhook is authenticated by
// its signature, not by a bearer token.
func (h *PaymentHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	r.POST("/api/v1/payments/webhook", h.Webhook)
	r.POST("/api/v1/bookings/:id/checkout", middleware.AuthMiddleware(jwtManager), h.CreateCheckout)
}

// CreateCheckout handles POST /api/v1/bookings/:id/checkout.
func (h *PaymentHandler) CreateCheckout(c *gin.Context) {
	bookingID, ok := pathID(c, "id", "booking")
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	result, err := h.service.CreateCheckoutSession(c.Request.Context(), userID, bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Webhook handles POST /api/v1/payments/webhook. The processor retries on
// any non-2xx answer, so only bad signatures get a 400.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.logger.Warn("rejected oversized webhook", zap.Int64("limit", tooLarge.Limit))
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"received": false})
			return
		}
		response.BadRequest(c, "could not read body")
		return
	}

	evt, err := h.parser.ParseWebhook(payload, c.GetHeader(signatureHeader))
	switch {
	case errors.Is(err, payment.ErrInvalidSignature):
		h.logger.Warn("rejected webhook with invalid signature")
		response.BadRequest(c, "invalid signature")
		return
	case err != nil:
		h.logger.Error("failed to parse webhook", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"received": false})
		return
	}

	if err := h.service.HandleWebhookEvent(c.Request.Context(), evt); err != nil {
		h.logger.Error("failed to process webhook",
			zap.String("event_id", evt.ID),
			zap.String("type", evt.Type),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"received": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
