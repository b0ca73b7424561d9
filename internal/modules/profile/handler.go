package profile

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"astroseva/internal/middleware"
	"astroseva/internal/modules/identity"
	"astroseva/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	me := rg.Group("/me")
	{
		me.GET("/profile", h.GetProfile)
		me.PUT("/profile", h.UpdateProfile)
		me.POST("/role/refresh", h.RefreshRole)
	}
}

func (h *Handler) GetProfile(c *gin.Context) {
	view, err := h.service.Get(c.Request.Context(), middleware.GetActor(c).ID)
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "PROFILE_FAILED", "Could not load profile")
		return
	}
	response.Success(c, http.StatusOK, view)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	view, err := h.service.Update(c.Request.Context(), middleware.GetActor(c).ID, req)
	if err != nil {
		if errors.Is(err, ErrValidationFailed) {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "UPDATE_FAILED", "Could not update profile")
		return
	}
	response.Success(c, http.StatusOK, view)
}

func (h *Handler) RefreshRole(c *gin.Context) {
	res, err := h.service.RefreshRole(c.Request.Context(), middleware.GetActor(c).ID)
	if err != nil {
		if errors.Is(err, identity.ErrUpstreamUnavailable) {
			response.Error(c, http.StatusServiceUnavailable, "UPSTREAM_UNAVAILABLE", "Role store unavailable")
			return
		}
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "REFRESH_FAILED", "Could not refresh role")
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"actor":               res.Actor,
		"profile":             res.Profile,
		"needs_birth_details": res.Profile.NeedsBirthDetails(),
	})
}
