package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"realtycrm/internal/authz"
	"realtycrm/internal/logger"
	"realtycrm/internal/services"
)

type AuthHandler struct {
	authService *services.AuthService
	log         logger.Logger
}

func NewAuthHandler(authService *services.AuthService, log logger.Logger) *AuthHandler {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &AuthHandler{authService: authService, log: log}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// @Summary      Log in
// @Description  Checks credentials and returns an access token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        login  body      LoginRequest  true  "credentials"
// @Success      200    {object}  map[string]interface{}
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Router       /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	email := strings.TrimSpace(req.Email)

	token, p, err := h.authService.Login(email, req.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		h.log.Warn("login rejected", map[string]interface{}{"email": email})
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate access token"})
		return
	}

	h.log.Info("login", map[string]interface{}{"user_id": p.UserID, "role": p.Role})
	c.JSON(http.StatusOK, gin.H{
		"message":      "Login successful",
		"user":         p,
		"access_token": token,
	})
}

// @Summary      Current user
// @Tags         Auth
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Security     BearerAuth
// @Router       /me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, role := getUserAndRole(c)
	c.JSON(http.StatusOK, gin.H{"user_id": userID, "role": role, "is_admin": authz.IsAdmin(role)})
}
