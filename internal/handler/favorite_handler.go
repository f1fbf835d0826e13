package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/teranga-stays/service-rental/internal/application"
	"github.com/teranga-stays/service-rental/internal/platform/auth"
	"github.com/teranga-stays/service-rental/internal/platform/middleware"
	"github.com/teranga-stays/service-rental/internal/platform/response"
)

// FavoriteHandler handles the wishlist.
type FavoriteHandler struct {
	service *application.FavoriteService
}

// NewFavoriteHandler creates a new FavoriteHandler.
func NewFavoriteHandler(service *application.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{service: service}
}

// RegisterRoutes registers favorite routes.
func (h *FavoriteHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	favorites := r.Group("/api/v1/favorites")
	favorites.Use(middleware.AuthMiddleware(jwtManager))
	{
		favorites.GET("", h.ListFavorites)
		favorites.POST("/:id/toggle", h.Toggle)
	}
}

// ListFavorites handles GET /api/v1/favorites.
func (h *FavoriteHandler) ListFavorites(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	result, err := h.service.ListFavorites(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Toggle handles POST /api/v1/favorites/:id/toggle where id is a listing ID.
func (h *FavoriteHandler) Toggle(c *gin.Context) {
	listingID, ok := pathID(c, "id", "listing")
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	result, err := h.service.Toggle(c.Request.Context(), userID, listingID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
