package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/teranga-stays/service-rental/internal/application"
	listingDomain "github.com/teranga-stays/service-rental/internal/domain/listing"
	"github.com/teranga-stays/service-rental/internal/platform/auth"
	"github.com/teranga-stays/service-rental/internal/platform/middleware"
	"github.com/teranga-stays/service-rental/internal/platform/response"
)

// ListingHandler handles HTTP requests for listings and their images.
type ListingHandler struct {
	service *application.ListingService
	images  *application.ImageService
	reviews *application.ReviewService
}

// NewListingHandler creates a new ListingHandler.
func NewListingHandler(service *application.ListingService, images *application.ImageService, reviews *application.ReviewService) *ListingHandler {
	return &ListingHandler{service: service, images: images, reviews: reviews}
}

// RegisterRoutes registers listing routes.
func (h *ListingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	hostRole := middleware.RequireRole(auth.RoleHost, auth.RoleAdmin)

	listings := r.Group("/api/v1/listings")
	{
		listings.GET("", h.SearchListings)
		listings.GET("/mine", authMW, h.ListMyListings)
		listings.GET("/:id", middleware.OptionalAuthMiddleware(jwtManager), h.GetListing)
		listings.GET("/:id/reviews", h.ListReviews)
		listings.POST("", authMW, hostRole, h.CreateListing)
		listings.PUT("/:id", authMW, h.UpdateListing)
		listings.DELETE("/:id", authMW, h.DeleteListing)
		listings.POST("/:id/snooze", authMW, h.SnoozeListing)
		listings.POST("/:id/unsnooze", authMW, h.UnsnoozeListing)
		listings.POST("/:id/images", authMW, h.UploadImage)
	}
}

// SearchListings handles GET /api/v1/listings?city=&guests=&min_price=&max_price=&amenity=.
func (h *ListingHandler) SearchListings(c *gin.Context) {
	page, limit := parsePagination(c)
	guests, _ := strconv.Atoi(c.Query("guests"))
	minPrice, _ := strconv.ParseInt(c.Query("min_price"), 10, 64)
	maxPrice, _ := strconv.ParseInt(c.Query("max_price"), 10, 64)

	filter := listingDomain.SearchFilter{
		City:     c.Query("city"),
		Guests:   guests,
		MinPrice: minPrice,
		MaxPrice: maxPrice,
		Amenity:  c.Query("amenity"),
	}

	result, err := h.service.SearchListings(c.Request.Context(), filter, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetListing handles GET /api/v1/listings/:id. Anonymous callers see approved listings only.
func (h *ListingHandler) GetListing(c *gin.Context) {
	listingID, ok := pathID(c, "id", "listing")
	if !ok {
		return
	}
	viewerID, _ := middleware.GetUserID(c)

	result, err := h.service.GetListing(c.Request.Context(), viewerID, listingID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListReviews handles GET /api/v1/listings/:id/reviews.
func (h *ListingHandler) ListReviews(c *gin.Context) {
	listingID, ok := pathID(c, "id", "listing")
	if !ok {
		return
	}
	page, limit := parsePagination(c)

	result, err := h.reviews.ListListingReviews(c.Request.Context(), listingID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListMyListings handles GET /api/v1/listings/mine.
func (h *ListingHandler) ListMyListings(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	result, err := h.service.ListMyListings(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CreateListing handles POST /api/v1/listings.
func (h *ListingHandler) CreateListing(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req application.ListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateListing(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// UpdateListing handles PUT /api/v1/listings/:id.
func (h *ListingHandler) UpdateListing(c *gin.Context) {
	listingID, ok := pathID(c, "id", "listing")
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req application.ListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateListing(c.Request.Context(), userID, listingID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeleteListing handles DELETE /api/v1/listings/:id.
func (h *ListingHandler) DeleteListing(c *gin.Context) {
	listingID, ok := pathID(c, "id", "listing")
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.service.DeleteListing(c.Request.Context(), userID, listingID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "listing deleted"})
}

// SnoozeListing handles POST /api/v1/listings/:id/snooze.
func (h *ListingHandler) SnoozeListing(c *gin.Context) {
	listingID, ok := pathID(c, "id", "listing")
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	result, err := h.service.SnoozeListing(c.Request.Context(), userID, listingID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UnsnoozeListing handles POST /api/v1/listings/:id/unsnooze.
func (h *ListingHandler) UnsnoozeListing(c *gin.Context) {
	listingID, ok := pathID(c, "id", "listing")
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	result, err := h.service.UnsnoozeListing(c.Request.Context(), userID, listingID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UploadImage handles POST /api/v1/listings/:id/images (multipart field "image").
func (h *ListingHandler) UploadImage(c *gin.Context) {
	listingID, ok := pathID(c, "id", "listing")
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		response.BadRequest(c, "image file is required")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, "could not read image file")
		return
	}
	defer file.Close()

	result, err := h.images.UploadListingImage(c.Request.Context(), userID, listingID, application.UploadImageRequest{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Body:        file,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}
