package api

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rfpforge/rfpforge/internal/coordinator"
	"github.com/rfpforge/rfpforge/internal/domain"
	"github.com/rfpforge/rfpforge/internal/storage"
)

// Handler handles coordinator API requests.
type Handler struct {
	coord     *coordinator.Coordinator
	facade    *storage.Facade
	logger    *zap.Logger
	uploadDir string
}

// NewHandler creates a new API handler.
func NewHandler(coord *coordinator.Coordinator, facade *storage.Facade, logger *zap.Logger, uploadDir string) *Handler {
	return &Handler{coord: coord, facade: facade, logger: logger, uploadDir: uploadDir}
}

// RegisterRoutes registers the coordinator routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/process", h.Process)
	r.GET("/sessions/:id", h.GetSession)
	r.POST("/sessions/:id/compile", h.Compile)
	r.POST("/content", h.LoadContent)
}

// Process runs one request through the pipeline. The response is always a
// result envelope, including on failure (section "error"), never a stack
// trace. Accepts JSON or a multipart form with an optional document.
func (h *Handler) Process(c *gin.Context) {
	var req domain.ProcessRequest

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		req.Text = c.PostForm("text")
		req.SessionID = c.PostForm("session_id")
		if req.Text == "" {
			req.Text = "Analyze this document"
		}

		if file, err := c.FormFile("file"); err == nil {
			if err := os.MkdirAll(h.uploadDir, 0755); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store upload"})
				return
			}
			dst := filepath.Join(h.uploadDir, uuid.New().String()+"_"+filepath.Base(file.Filename))
			if err := c.SaveUploadedFile(file, dst); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store upload"})
				return
			}
			defer os.Remove(dst)
			req.FilePath = dst
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	envelope := h.coord.Process(c.Request.Context(), req)
	c.JSON(http.StatusOK, envelope)
}

// GetSession returns the persisted snapshot for a session.
func (h *Handler) GetSession(c *gin.Context) {
	snap, err := h.facade.Sessions.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		h.logger.Error("failed to load session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load session"})
		return
	}

	c.JSON(http.StatusOK, snap)
}

// Compile assembles the session's sections into a document.
func (h *Handler) Compile(c *gin.Context) {
	var req domain.CompileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	path, err := h.coord.Compile(c.Request.Context(), c.Param("id"), req.Format)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSessionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		case errors.Is(err, domain.ErrInvalidRequest):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.logger.Error("compile failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "compile failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"path": path})
}

type loadContentRequest struct {
	ContentKey string `json:"content_key" binding:"required"`
}

// LoadContent returns a stored blob by key so front ends can fetch full
// outputs referenced from envelopes and snapshots.
func (h *Handler) LoadContent(c *gin.Context) {
	var req loadContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	data, err := h.facade.Objects.GetBlob(c.Request.Context(), req.ContentKey)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "content not found"})
			return
		}
		h.logger.Error("failed to load content", zap.String("key", req.ContentKey), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load content"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"content": string(data), "size": len(data)})
}
