package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cv-builder-backend/internal/auth"
	"cv-builder-backend/internal/cvs"
	sharedauth "cv-builder-backend/internal/shared/auth"
	"cv-builder-backend/internal/shared/config"
	"cv-builder-backend/internal/shared/metrics"
	"cv-builder-backend/internal/shared/server/middleware"
	"cv-builder-backend/internal/shared/server/respond"
)

// RouterDeps carries everything the router needs to register routes.
type RouterDeps struct {
	Config      config.Config
	Tokens      *sharedauth.TokenManager
	AuthHandler *auth.Handler
	CVHandler   *cvs.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(deps.Tokens),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	deps.AuthHandler.RegisterRoutes(api)
	deps.AuthHandler.RegisterProtectedRoutes(api)
	deps.CVHandler.RegisterRoutes(api)

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
