package handler

import (
	"log/slog"
	"net/http"

	"account_service/internal/middleware"
	"account_service/internal/service"
	"account_service/internal/utils"

	"github.com/gin-gonic/gin"
)

// RouterDeps are the collaborators the HTTP surface needs
type RouterDeps struct {
	AuthService service.AuthService
	UserService service.UserService
	JWTUtil     *utils.JWTUtil
	Store       Pinger
	Logger      *slog.Logger
}

// NewRouter builds the gin engine with every route registered
func NewRouter(d RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(d.Logger))

	// Simple CORS middleware (allow all origins)
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	jwtAuthMW := middleware.JWTAuthMiddleware(d.JWTUtil)
	adminRoleMW := middleware.AdminMiddleware()

	apiGroup := router.Group("/api/v1")
	NewAuthHandler(d.AuthService, d.Logger).RegisterAuthRoutes(apiGroup, jwtAuthMW)
	NewUserHandler(d.UserService, d.Logger).RegisterUserRoutes(apiGroup, jwtAuthMW, adminRoleMW)

	router.GET("/health", HealthHandler(d.Store))
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
	})
	return router
}
