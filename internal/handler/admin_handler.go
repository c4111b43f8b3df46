package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kiloutout/service-booking/internal/application"
	"github.com/kiloutout/service-booking/internal/auth"
	"github.com/kiloutout/service-booking/internal/calendar"
	"github.com/kiloutout/service-booking/internal/middleware"
	"github.com/kiloutout/service-booking/internal/response"
)

const calendarOAuthState = "calendar-connect"

// AdminHandler handles the admin dashboard endpoints: the global booking
// list, booking statistics and the business settings.
type AdminHandler struct {
	bookings *application.BookingService
	settings *application.SettingsService
	calendar *calendar.GoogleClient
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(bookings *application.BookingService, settings *application.SettingsService, calendarClient *calendar.GoogleClient) *AdminHandler {
	return &AdminHandler{bookings: bookings, settings: settings, calendar: calendarClient}
}

// RegisterRoutes registers admin routes on the given router group.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	// Google redirects the browser here without a bearer token. The code
	// is single use and bound to this app's OAuth client.
	r.GET("/api/v1/calendar/oauth/callback", h.CalendarCallback)

	admin := r.Group("/api/v1/admin")
	admin.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireRole(auth.RoleAdmin))
	{
		admin.GET("/bookings", h.ListBookings)
		admin.GET("/stats", h.GetStats)
		admin.GET("/settings", h.GetSettings)
		admin.PUT("/settings", h.UpdateSettings)
		admin.GET("/settings/calendar/connect", h.ConnectCalendar)
		admin.DELETE("/settings/calendar", h.DisconnectCalendar)
	}
}

// ListBookings handles GET /api/v1/admin/bookings.
func (h *AdminHandler) ListBookings(c *gin.Context) {
	page, limit := parsePagination(c)
	bookings, total, err := h.bookings.ListAllBookings(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, bookings, total, page, limit)
}

// GetStats handles GET /api/v1/admin/stats.
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.bookings.GetBookingStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, stats)
}

// GetSettings handles GET /api/v1/admin/settings.
func (h *AdminHandler) GetSettings(c *gin.Context) {
	cfg, err := h.settings.GetSettings(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, cfg)
}

// UpdateSettings handles PUT /api/v1/admin/settings.
func (h *AdminHandler) UpdateSettings(c *gin.Context) {
	var req application.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	cfg, err := h.settings.UpdateSettings(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, cfg)
}

// ConnectCalendar handles GET /api/v1/admin/settings/calendar/connect.
// It returns the Google consent URL the admin must visit.
func (h *AdminHandler) ConnectCalendar(c *gin.Context) {
	response.Success(c, gin.H{"auth_url": h.calendar.AuthURL(calendarOAuthState)})
}

// CalendarCallback handles GET /api/v1/calendar/oauth/callback, the OAuth
// redirect target. It exchanges the code and stores the tokens.
func (h *AdminHandler) CalendarCallback(c *gin.Context) {
	if c.Query("state") != calendarOAuthState {
		response.BadRequest(c, "invalid oauth state")
		return
	}
	code := c.Query("code")
	if code == "" {
		response.BadRequest(c, "missing authorization code")
		return
	}

	token, err := h.calendar.ExchangeCode(c.Request.Context(), code)
	if err != nil {
		response.Error(c, err)
		return
	}

	var expiry *time.Time
	if !token.Expiry.IsZero() {
		expiry = &token.Expiry
	}
	if err := h.settings.StoreCalendarTokens(c.Request.Context(), token.AccessToken, token.RefreshToken, expiry); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"connected": true})
}

// DisconnectCalendar handles DELETE /api/v1/admin/settings/calendar.
func (h *AdminHandler) DisconnectCalendar(c *gin.Context) {
	if err := h.settings.DisconnectCalendar(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"disconnected": true})
}
