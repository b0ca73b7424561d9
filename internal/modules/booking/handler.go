package booking

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"astroseva/internal/domain"
	"astroseva/internal/middleware"
	"astroseva/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterPublicRoutes mounts routes that accept anonymous callers. The group
// must run middleware.OptionalAuth.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings", h.SubmitBooking)
	rg.GET("/booking-options", h.GetOptions)
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	bookings := rg.Group("/bookings")
	{
		bookings.GET("", h.ListBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.POST("/:id/cancel", h.CancelBooking)

		providers := bookings.Group("", middleware.ProvidersOnly())
		providers.POST("/:id/confirm", h.ConfirmBooking)
		providers.PATCH("/:id/status", h.UpdateStatus)
		providers.POST("/:id/accept", h.transitionTo(domain.BookingAccepted))
		providers.POST("/:id/reject", h.transitionTo(domain.BookingRejected))
	}
}

// RegisterAdminRoutes mounts the admin override. The group must run AdminOnly.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.PATCH("/bookings/:id/assign", h.AssignBooking)
}

func (h *Handler) SubmitBooking(c *gin.Context) {
	var req SubmitBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	b, err := h.service.Submit(c.Request.Context(), req, middleware.GetActor(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"booking": b})
}

func (h *Handler) GetOptions(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{
		"problem_categories":   domain.ProblemCategories,
		"dependent_categories": domain.DependentCategories,
		"preferred_slots":      domain.PreferredSlots,
		"pooja_types":          domain.PoojaTypes,
	})
}

func (h *Handler) ListBookings(c *gin.Context) {
	res := h.service.ListFor(c.Request.Context(), middleware.GetActor(c))
	body := ListResponse{Bookings: res.Bookings, Count: len(res.Bookings)}
	if res.Err != nil {
		_ = c.Error(res.Err)
		response.Degraded(c, http.StatusOK, body, "UPSTREAM_UNAVAILABLE", "Bookings could not be loaded")
		return
	}
	response.Success(c, http.StatusOK, body)
}

func (h *Handler) GetBooking(c *gin.Context) {
	v, err := h.service.Get(c.Request.Context(), c.Param("id"), middleware.GetActor(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": v})
}

func (h *Handler) ConfirmBooking(c *gin.Context) {
	actor := middleware.GetActor(c)
	res, err := h.service.ConfirmAndAssign(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"booking":           Redact(actor, res.Booking),
		"summary_generated": res.SummaryGenerated,
	})
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	h.applyStatus(c, domain.BookingStatus(req.Status))
}

func (h *Handler) transitionTo(status domain.BookingStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.applyStatus(c, status)
	}
}

func (h *Handler) applyStatus(c *gin.Context, status domain.BookingStatus) {
	actor := middleware.GetActor(c)
	b, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), status, actor)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": Redact(actor, b)})
}

func (h *Handler) CancelBooking(c *gin.Context) {
	actor := middleware.GetActor(c)
	b, err := h.service.Cancel(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": Redact(actor, b)})
}

func (h *Handler) AssignBooking(c *gin.Context) {
	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	actor := middleware.GetActor(c)
	b, err := h.service.Assign(c.Request.Context(), c.Param("id"), req.ProviderID, actor)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": Redact(actor, b)})
}

func writeError(c *gin.Context, err error) {
	var fields FieldErrors
	switch {
	case errors.As(err, &fields):
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking", fields)
	case errors.Is(err, ErrPermissionDenied):
		response.Error(c, http.StatusForbidden, "PERMISSION_DENIED", "You cannot perform this action on the booking")
	case errors.Is(err, ErrAlreadyAssigned):
		response.Error(c, http.StatusConflict, "ALREADY_ASSIGNED", "Booking is already assigned to another provider")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Booking not found")
	case errors.Is(err, ErrValidationFailed):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrUpstreamUnavailable):
		_ = c.Error(err)
		response.Error(c, http.StatusServiceUnavailable, "UPSTREAM_UNAVAILABLE", "Booking store unavailable")
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Unexpected error")
	}
}
