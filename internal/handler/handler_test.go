package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/teranga-stays/service-rental/internal/application"
	"github.com/teranga-stays/service-rental/internal/payment"
	"github.com/teranga-stays/service-rental/internal/platform/auth"
	"github.com/teranga-stays/service-rental/internal/platform/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubParser struct {
	event *payment.WebhookEvent
	err   error
}

func (p stubParser) ParseWebhook(_ []byte, _ string) (*payment.WebhookEvent, error) {
	return p.event, p.err
}

func newPaymentRouter(parser WebhookParser) *gin.Engine {
	svc := application.NewPaymentService(application.PaymentServiceDeps{
		Metrics: metrics.New("test"),
		Logger:  zap.NewNop(),
	})
	r := gin.New()
	NewPaymentHandler(svc, parser, zap.NewNop()).
		RegisterRoutes(&r.RouterGroup, auth.NewJWTManager("secret", time.Hour, time.Hour))
	return r
}

func TestWebhook_StatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		parser stubParser
		want   int
	}{
		{"bad signature", stubParser{err: fmt.Errorf("%w: mismatch", payment.ErrInvalidSignature)}, http.StatusBadRequest},
		{"missing secret", stubParser{err: payment.ErrMissingSecret}, http.StatusInternalServerError},
		{"decode failure", stubParser{err: errors.New("bad json")}, http.StatusInternalServerError},
		{"ignored type", stubParser{event: &payment.WebhookEvent{ID: "evt_1", Type: "charge.refunded"}}, http.StatusOK},
		{"completed without booking id", stubParser{event: &payment.WebhookEvent{ID: "evt_2", Type: payment.EventCheckoutCompleted}}, http.StatusInternalServerError},
		{"failed without booking id", stubParser{event: &payment.WebhookEvent{ID: "evt_3", Type: payment.EventPaymentFailed}}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newPaymentRouter(tt.parser)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", strings.NewReader(`{}`))
			req.Header.Set("Stripe-Signature", "t=1,v1=abc")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestWebhook_OversizedBody(t *testing.T) {
	r := newPaymentRouter(stubParser{event: &payment.WebhookEvent{ID: "evt_4", Type: "charge.refunded"}})

	body := strings.Repeat("a", int(maxWebhookBodyBytes)+1)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", strings.NewReader(body))
	req.Header.Set("Stripe-Signature", "t=1,v1=abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", strings.NewReader(body[:maxWebhookBodyBytes]))
	req.Header.Set("Stripe-Signature", "t=1,v1=abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBookingRoutes_AuthAndParams(t *testing.T) {
	jwt := auth.NewJWTManager("secret", time.Hour, time.Hour)
	r := gin.New()
	NewBookingHandler(application.NewBookingService(application.BookingServiceDeps{Logger: zap.NewNop()})).
		RegisterRoutes(&r.RouterGroup, jwt)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/bookings/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := jwt.GenerateAccessToken(uuid.New(), auth.RoleGuest)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/not-a-uuid", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/bookings/earnings", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(`{"guest_count":2}`))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query     string
		wantPage  int
		wantLimit int
	}{
		{"", 1, 20},
		{"?page=3&limit=50", 3, 50},
		{"?page=-1&limit=0", 1, 20},
		{"?limit=1000", 1, 100},
	}
	for _, tt := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/"+tt.query, nil)
		page, limit := parsePagination(c)
		assert.Equal(t, tt.wantPage, page, tt.query)
		assert.Equal(t, tt.wantLimit, limit, tt.query)
	}
}
