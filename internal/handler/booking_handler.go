package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/teranga-stays/service-rental/internal/application"
	"github.com/teranga-stays/service-rental/internal/platform/auth"
	"github.com/teranga-stays/service-rental/internal/platform/middleware"
	"github.com/teranga-stays/service-rental/internal/platform/response"
)

// BookingHandler handles HTTP requests for booking operations.
type BookingHandler struct {
	service *application.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// RegisterRoutes registers all booking routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	listings := r.Group("/api/v1/listings")
	{
		listings.GET("/:id/quote", h.QuotePrice)
		listings.GET("/:id/availability", h.CheckAvailability)
	}

	bookings := r.Group("/api/v1/bookings")
	bookings.Use(authMW)
	{
		bookings.POST("", h.CreateBooking)
		bookings.GET("", h.ListMyBookings)
		bookings.GET("/hosting", middleware.RequireRole(auth.RoleHost, auth.RoleAdmin), h.ListHostBookings)
		bookings.GET("/earnings", middleware.RequireRole(auth.RoleHost, auth.RoleAdmin), h.HostEarnings)
		bookings.GET("/:id", h.GetBooking)
		bookings.PATCH("/:id/status", h.UpdateStatus)
	}
}

// CreateBooking handles POST /api/v1/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateBooking(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListMyBookings handles GET /api/v1/bookings (the caller's trips).
func (h *BookingHandler) ListMyBookings(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	page, limit := parsePagination(c)

	result, err := h.service.ListGuestBookings(c.Request.Context(), userID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// ListHostBookings handles GET /api/v1/bookings/hosting.
func (h *BookingHandler) ListHostBookings(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	page, limit := parsePagination(c)

	result, err := h.service.ListHostBookings(c.Request.Context(), userID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// HostEarnings handles GET /api/v1/bookings/earnings.
func (h *BookingHandler) HostEarnings(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	result, err := h.service.GetHostEarnings(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetBooking handles GET /api/v1/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	bookingID, ok := pathID(c, "id", "booking")
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	result, err := h.service.GetBooking(c.Request.Context(), userID, bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdateStatus handles PATCH /api/v1/bookings/:id/status.
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	bookingID, ok := pathID(c, "id", "booking")
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req application.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateStatus(c.Request.Context(), userID, bookingID, req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// QuotePrice handles GET /api/v1/listings/:id/quote?check_in=&check_out=.
func (h *BookingHandler) QuotePrice(c *gin.Context) {
	listingID, ok := pathID(c, "id", "listing")
	if !ok {
		return
	}

	result, err := h.service.QuotePrice(c.Request.Context(), listingID, c.Query("check_in"), c.Query("check_out"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CheckAvailability handles GET /api/v1/listings/:id/availability?check_in=&check_out=.
func (h *BookingHandler) CheckAvailability(c *gin.Context) {
	listingID, ok := pathID(c, "id", "listing")
	if !ok {
		return
	}

	result, err := h.service.CheckAvailability(c.Request.Context(), listingID, c.Query("check_in"), c.Query("check_out"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
