package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kiloutout/service-booking/internal/application"
	"github.com/kiloutout/service-booking/internal/auth"
	"github.com/kiloutout/service-booking/internal/middleware"
	"github.com/kiloutout/service-booking/internal/response"
)

// CatalogHandler handles HTTP requests for the service catalog.
type CatalogHandler struct {
	service *application.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(service *application.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// RegisterRoutes registers catalog routes. Reading the catalog is public;
// editing it is admin only.
func (h *CatalogHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	r.GET("/api/v1/services", h.ListServices)
	r.GET("/api/v1/services/:slug", h.GetService)

	admin := r.Group("/api/v1/admin/services")
	admin.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireRole(auth.RoleAdmin))
	{
		admin.GET("", h.ListAllServices)
		admin.POST("", h.CreateService)
		admin.PATCH("/:id", h.UpdateService)
		admin.DELETE("/:id", h.DeactivateService)
	}
}

// ListServices handles GET /api/v1/services.
func (h *CatalogHandler) ListServices(c *gin.Context) {
	result, err := h.service.ListServices(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetService handles GET /api/v1/services/:slug.
func (h *CatalogHandler) GetService(c *gin.Context) {
	result, err := h.service.GetServiceBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListAllServices handles GET /api/v1/admin/services.
func (h *CatalogHandler) ListAllServices(c *gin.Context) {
	result, err := h.service.ListAllServices(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CreateService handles POST /api/v1/admin/services.
func (h *CatalogHandler) CreateService(c *gin.Context) {
	var req application.CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateService(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// UpdateService handles PATCH /api/v1/admin/services/:id.
func (h *CatalogHandler) UpdateService(c *gin.Context) {
	serviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid service ID")
		return
	}

	var req application.UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateService(c.Request.Context(), serviceID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// DeactivateService handles DELETE /api/v1/admin/services/:id.
func (h *CatalogHandler) DeactivateService(c *gin.Context) {
	serviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid service ID")
		return
	}

	if err := h.service.DeactivateService(c.Request.Context(), serviceID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"deactivated": true})
}
