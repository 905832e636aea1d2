package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	sharedauth "cv-builder-backend/internal/shared/auth"
	"cv-builder-backend/internal/shared/metrics"
	"cv-builder-backend/internal/shared/server/middleware"
	"cv-builder-backend/internal/shared/server/respond"
	"cv-builder-backend/internal/users"
)

// Handler exposes the credential endpoints and session management.
type Handler struct {
	Users        *users.Service
	Tokens       *sharedauth.TokenManager
	CookieSecure bool
	Limiter      *middleware.RateLimiter
}

// NewHandler constructs a Handler.
func NewHandler(usersSvc *users.Service, tokens *sharedauth.TokenManager, cookieSecure bool) *Handler {
	return &Handler{
		Users:        usersSvc,
		Tokens:       tokens,
		CookieSecure: cookieSecure,
		Limiter:      middleware.NewRateLimiter(nil),
	}
}

// RegisterRoutes attaches the public auth routes. Login and register share
// a per-IP bucket to slow credential stuffing.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	grp := rg.Group("/auth")
	grp.Use(middleware.RateLimit(h.Limiter, middleware.RateLimitRule{Rate: 1, Burst: 10}))
	grp.POST("/register", h.register)
	grp.POST("/login", h.login)
	grp.POST("/logout", h.logout)
}

// RegisterProtectedRoutes attaches routes that require a session.
func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.me)
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
		return
	}

	user, err := h.Users.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrMissingFields):
			respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "name, email and password are required", nil)
		case errors.Is(err, users.ErrEmailTaken):
			respond.Error(c, http.StatusConflict, respond.CodeConflict, "email already registered", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to register", nil)
		}
		return
	}

	if !h.issueSession(c, user) {
		return
	}
	respond.JSON(c, http.StatusCreated, gin.H{"user": toUserResponse(user)})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
		return
	}

	user, err := h.Users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrMissingFields):
			respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "email and password are required", nil)
		case errors.Is(err, users.ErrBadCredentials):
			metrics.IncLoginFailed()
			respond.Error(c, http.StatusUnauthorized, respond.CodeUnauthorized, "invalid credentials", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to log in", nil)
		}
		return
	}

	if !h.issueSession(c, user) {
		return
	}
	respond.OK(c, gin.H{"user": toUserResponse(user)})
}

func (h *Handler) logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.CookieSecure, true)
	respond.OK(c, gin.H{"success": true})
}

func (h *Handler) me(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	user, err := h.Users.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, respond.CodeNotFound, "user not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to load user", nil)
		return
	}
	respond.OK(c, gin.H{"user": toUserResponse(user)})
}

// issueSession mints a token and delivers it as an HttpOnly cookie. The
// token is never part of the JSON body or the logs.
func (h *Handler) issueSession(c *gin.Context, user users.User) bool {
	token, err := h.Tokens.Mint(user.ID, user.Email, user.Name)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to create session", nil)
		return false
	}
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.SessionCookie, token, int(h.Tokens.TTL().Seconds()), "/", "", h.CookieSecure, true)
	return true
}

func toUserResponse(user users.User) gin.H {
	return gin.H{
		"id":        user.ID,
		"name":      user.Name,
		"email":     user.Email,
		"createdAt": user.CreatedAt,
		"updatedAt": user.UpdatedAt,
	}
}
