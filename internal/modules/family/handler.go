package family

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"astroseva/internal/middleware"
	"astroseva/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	fam := rg.Group("/me/family-profiles")
	{
		fam.GET("", h.List)
		fam.POST("", h.Create)
		fam.PUT("/:id", h.Update)
		fam.DELETE("/:id", h.Delete)
	}
}

func (h *Handler) List(c *gin.Context) {
	out, err := h.service.List(c.Request.Context(), middleware.GetActor(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"family_profiles": out, "count": len(out)})
}

func (h *Handler) Create(c *gin.Context) {
	var req FamilyProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	fp, err := h.service.Create(c.Request.Context(), middleware.GetActor(c).ID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"family_profile": fp})
}

func (h *Handler) Update(c *gin.Context) {
	var req FamilyProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	fp, err := h.service.Update(c.Request.Context(), middleware.GetActor(c).ID, c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"family_profile": fp})
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), middleware.GetActor(c).ID, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidationFailed):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Family profile not found")
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Unexpected error")
	}
}
