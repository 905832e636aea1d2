package cvs

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cv-builder-backend/internal/shared/metrics"
	"cv-builder-backend/internal/shared/server/middleware"
	"cv-builder-backend/internal/shared/server/respond"
	"cv-builder-backend/internal/shared/util"
)

// Renderer turns a CV into a printable document.
type Renderer interface {
	Render(cv CV) ([]byte, error)
}

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc      *Service
	Renderer Renderer
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, renderer Renderer) *Handler {
	return &Handler{Svc: svc, Renderer: renderer}
}

// RegisterRoutes attaches CV routes to the router group. All of them sit
// behind the auth middleware.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/cv", h.list)
	rg.POST("/cv", h.create)
	rg.GET("/cv/:id", h.get)
	rg.PUT("/cv/:id", h.update)
	rg.DELETE("/cv/:id", h.remove)
	rg.GET("/cv/:id/export", h.export)
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	result, err := h.Svc.List(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err, "failed to list CVs")
		return
	}
	respond.OK(c, gin.H{"cvs": result})
}

func (h *Handler) create(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var in Input
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
		return
	}

	cv, err := h.Svc.Create(c.Request.Context(), userID, in)
	if err != nil {
		h.fail(c, err, "failed to create CV")
		return
	}
	c.Set("cvId", cv.ID)
	respond.JSON(c, http.StatusCreated, gin.H{"cv": cv})
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	id := c.Param("id")

	cv, err := h.Svc.Get(c.Request.Context(), userID, id)
	if err != nil {
		h.fail(c, err, "failed to fetch CV")
		return
	}
	c.Set("cvId", cv.ID)
	respond.OK(c, gin.H{"cv": cv})
}

func (h *Handler) update(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	id := c.Param("id")

	// Identity fields in the body are dropped by the Patch shape itself;
	// only editable sections survive binding.
	var patch Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
		return
	}

	cv, err := h.Svc.Update(c.Request.Context(), userID, id, patch)
	if err != nil {
		h.fail(c, err, "failed to update CV")
		return
	}
	c.Set("cvId", cv.ID)
	respond.OK(c, gin.H{"cv": cv})
}

func (h *Handler) remove(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	id := c.Param("id")

	if err := h.Svc.Delete(c.Request.Context(), userID, id); err != nil {
		h.fail(c, err, "failed to delete CV")
		return
	}
	respond.OK(c, gin.H{"success": true})
}

func (h *Handler) export(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	id := c.Param("id")

	cv, err := h.Svc.Get(c.Request.Context(), userID, id)
	if err != nil {
		h.fail(c, err, "failed to fetch CV")
		return
	}
	if h.Renderer == nil {
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "export not configured", nil)
		return
	}
	page, err := h.Renderer.Render(cv)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to render CV", nil)
		return
	}
	c.Set("cvId", cv.ID)
	metrics.IncCVExported()
	c.Header("Content-Disposition", `inline; filename="`+exportFileName(cv)+`"`)
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

// exportFileName derives a safe download name from the CV title.
func exportFileName(cv CV) string {
	name, err := util.SanitizeFileName(cv.Title)
	if err != nil {
		name = "cv"
	}
	return name + ".html"
}

func (h *Handler) fail(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, respond.CodeNotFound, "CV not found", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, message, nil)
	}
}
