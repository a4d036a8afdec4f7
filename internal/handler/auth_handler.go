package handler

import (
	"log/slog"
	"net/http"
	"time"

	"account_service/internal/middleware"
	"account_service/internal/model"
	"account_service/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	service service.AuthService
	logger  *slog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(s service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{service: s, logger: logger}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req model.CredentialsRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.service.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, "register", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Registered Successfully",
		"user_id": user.ID,
		"role":    user.Role,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req model.CredentialsRequest
	if !bindJSON(c, &req) {
		return
	}

	token, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, "login", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Session reports the caller's latest recorded session
func (h *AuthHandler) Session(c *gin.Context) {
	principal := middleware.PrincipalFrom(c)
	session, err := h.service.CurrentSession(c.Request.Context(), principal.UserID)
	if err != nil {
		respondError(c, h.logger, "session", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":    session.UserID,
		"created_at": session.CreatedAt,
		"expires_at": session.ExpiresAt,
		"active":     !session.Expired(time.Now()),
	})
}

// RegisterAuthRoutes registers auth routes
func (h *AuthHandler) RegisterAuthRoutes(rg *gin.RouterGroup, jwtAuthMW gin.HandlerFunc) {
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.GET("/session", jwtAuthMW, h.Session)
	}
}
