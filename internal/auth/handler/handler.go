// Package handler exposes the auth module over HTTP.
package handler

import (
	"net/http"

	"pulsecapture_backend/internal/auth/authctx"
	"pulsecapture_backend/internal/auth/service"
	"pulsecapture_backend/internal/auth/transport"
	"pulsecapture_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterPublicRoutes mounts login under the public API group.
func (h *Handler) RegisterPublicRoutes(api *gin.RouterGroup, loginLimiter gin.HandlerFunc) {
	api.POST("/auth/login", loginLimiter, h.login)
}

// RegisterProtectedRoutes mounts the current-user endpoint.
func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	protected.GET("/auth/me", h.me)
}

// RegisterAdminRoutes mounts user management under the admin group.
func (h *Handler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	admin.GET("/users", h.listUsers)
	admin.POST("/users", h.createUser)
	admin.PUT("/users/:id", h.updateUser)
	admin.DELETE("/users/:id", h.deleteUser)
}

func (h *Handler) login(c *gin.Context) {
	var req transport.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "Validation error", []string{"invalid JSON body"})
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, resp)
}

func (h *Handler) me(c *gin.Context) {
	user, ok := authctx.CurrentUser(c)
	if !ok {
		httpkit.Error(c, http.StatusUnauthorized, "Access token required", nil)
		return
	}

	httpkit.OK(c, transport.UserResponse{
		ID:        user.ID.String(),
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	})
}

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.svc.ListUsers(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"users": users})
}

func (h *Handler) createUser(c *gin.Context) {
	var req transport.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "Validation error", []string{"invalid JSON body"})
		return
	}

	user, err := h.svc.CreateUser(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, user)
}

func (h *Handler) updateUser(c *gin.Context) {
	var req transport.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "Validation error", []string{"invalid JSON body"})
		return
	}

	user, err := h.svc.UpdateUser(c.Request.Context(), c.Param("id"), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, user)
}

func (h *Handler) deleteUser(c *gin.Context) {
	requester, _ := authctx.CurrentUser(c)

	err := h.svc.DeleteUser(c.Request.Context(), c.Param("id"), requester.ID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"success": true, "message": "User deleted"})
}
