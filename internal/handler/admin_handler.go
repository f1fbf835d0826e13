package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/teranga-stays/service-rental/internal/application"
	"github.com/teranga-stays/service-rental/internal/platform/auth"
	"github.com/teranga-stays/service-rental/internal/platform/middleware"
	"github.com/teranga-stays/service-rental/internal/platform/response"
)

// AdminHandler handles admin HTTP requests for moderation and oversight.
type AdminHandler struct {
	bookings *application.BookingService
	listings *application.ListingService
	profiles *application.ProfileService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(bookings *application.BookingService, listings *application.ListingService, profiles *application.ProfileService) *AdminHandler {
	return &AdminHandler{bookings: bookings, listings: listings, profiles: profiles}
}

// RegisterRoutes registers admin routes. The token role only gates the
// group; each service call re-checks the stored role.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	adminRole := middleware.RequireRole(auth.RoleAdmin)

	admin := r.Group("/api/v1/admin")
	admin.Use(authMW, adminRole)
	{
		admin.GET("/bookings", h.ListBookings)
		admin.GET("/stats/bookings", h.BookingStats)
		admin.GET("/listings/pending", h.PendingListings)
		admin.POST("/listings/:id/moderate", h.ModerateListing)
		admin.PUT("/profiles/:id/role", h.SetRole)
	}
}

// ListBookings handles GET /api/v1/admin/bookings.
func (h *AdminHandler) ListBookings(c *gin.Context) {
	adminID, ok := currentUser(c)
	if !ok {
		return
	}
	page, limit := parsePagination(c)

	bookings, total, err := h.bookings.ListAllBookings(c.Request.Context(), adminID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, bookings, total, page, limit)
}

// BookingStats handles GET /api/v1/admin/stats/bookings.
func (h *AdminHandler) BookingStats(c *gin.Context) {
	adminID, ok := currentUser(c)
	if !ok {
		return
	}

	stats, err := h.bookings.GetBookingStats(c.Request.Context(), adminID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}

// PendingListings handles GET /api/v1/admin/listings/pending.
func (h *AdminHandler) PendingListings(c *gin.Context) {
	adminID, ok := currentUser(c)
	if !ok {
		return
	}
	page, limit := parsePagination(c)

	result, err := h.listings.ListPendingReview(c.Request.Context(), adminID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// ModerateListing handles POST /api/v1/admin/listings/:id/moderate.
func (h *AdminHandler) ModerateListing(c *gin.Context) {
	listingID, ok := pathID(c, "id", "listing")
	if !ok {
		return
	}
	adminID, ok := currentUser(c)
	if !ok {
		return
	}

	var req application.ModerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.listings.ModerateListing(c.Request.Context(), adminID, listingID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// SetRole handles PUT /api/v1/admin/profiles/:id/role.
func (h *AdminHandler) SetRole(c *gin.Context) {
	userID, ok := pathID(c, "id", "profile")
	if !ok {
		return
	}
	adminID, ok := currentUser(c)
	if !ok {
		return
	}

	var req application.SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.profiles.SetRole(c.Request.Context(), adminID, userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
