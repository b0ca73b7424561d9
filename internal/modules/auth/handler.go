package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"astroseva/internal/middleware"
	"astroseva/internal/modules/identity"
	"astroseva/internal/pkg/response"
)

// Handler manages all HTTP interactions for authentication
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterPublicRoutes mounts the auth routes. The group must run
// middleware.OptionalAuth so session and logout can see the caller.
func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/refresh", h.Refresh)
		authGroup.POST("/logout", h.Logout)
		authGroup.GET("/session", h.GetSession)
		authGroup.POST("/session", h.SetSession)
	}
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	res, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			response.Error(c, http.StatusConflict, "EMAIL_EXISTS", "This email is already registered")
			return
		}
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "REGISTRATION_FAILED", "Failed to register")
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"user":   UserPublic{ID: res.User.ID, Email: res.User.Email},
		"tokens": res.Tokens,
	})
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Email or password is incorrect")
			return
		}
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "LOGIN_FAILED", "Failed to login")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user":   UserPublic{ID: res.User.ID, Email: res.User.Email},
		"tokens": res.Tokens,
	})
}

func (h *Handler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	tokens, err := h.service.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, ErrRefreshTokenReused):
			response.Error(c, http.StatusUnauthorized, "REFRESH_TOKEN_REUSED", "Session revoked, sign in again")
		case errors.Is(err, ErrInvalidRefreshToken):
			response.Error(c, http.StatusUnauthorized, "INVALID_REFRESH_TOKEN", "Invalid or expired refresh token")
		default:
			_ = c.Error(err)
			response.Error(c, http.StatusInternalServerError, "REFRESH_FAILED", "Failed to refresh session")
		}
		return
	}
	response.Success(c, http.StatusOK, gin.H{"tokens": tokens})
}

func (h *Handler) Logout(c *gin.Context) {
	var req LogoutRequest
	// body is optional
	_ = c.ShouldBindJSON(&req)

	if err := h.service.Logout(c.Request.Context(), middleware.GetActor(c).ID, req.RefreshToken); err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "LOGOUT_FAILED", "Failed to sign out")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"signed_out": true})
}

func (h *Handler) GetSession(c *gin.Context) {
	view, err := h.service.Session(c.Request.Context(), middleware.GetActor(c).ID)
	if err != nil {
		writeSessionError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": view})
}

func (h *Handler) SetSession(c *gin.Context) {
	var req SetSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	view, err := h.service.SetSession(c.Request.Context(), req)
	if err != nil {
		writeSessionError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": view})
}

func writeSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrUnauthorized):
		response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
	case errors.Is(err, identity.ErrInvalidCallback):
		response.Error(c, http.StatusBadRequest, "INVALID_CALLBACK", "Callback URL could not be parsed")
	case errors.Is(err, identity.ErrUpstreamUnavailable):
		_ = c.Error(err)
		response.Error(c, http.StatusServiceUnavailable, "UPSTREAM_UNAVAILABLE", "Role store unavailable")
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "SESSION_FAILED", "Failed to load session")
	}
}
