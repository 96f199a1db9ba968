package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/qrstudio/internal/content"
	"github.com/cristianadrielbraun/qrstudio/internal/history"
)

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// ListCodes returns the most recently generated codes, newest first.
func (h *Handler) ListCodes(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(history.DefaultLimit)))
	if err != nil || limit < 1 {
		h.fail(c, &content.ValidationError{Field: "limit", Message: "must be a positive integer"})
		return
	}
	if limit > history.MaxLimit {
		limit = history.MaxLimit
	}

	codes, err := h.history.Recent(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"codes": codes})
}

// DeleteCode removes a history record and its stored file.
func (h *Handler) DeleteCode(c *gin.Context) {
	id := c.Param("id")
	rec, err := h.history.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	if rec.StorageKey != "" && h.store != nil {
		if err := h.store.Delete(c.Request.Context(), rec.StorageKey); err != nil {
			h.fail(c, fmt.Errorf("delete stored file %s: %w", rec.StorageKey, err))
			return
		}
	}
	if err := h.history.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}

	h.logger.Info("qr code deleted", "id", id)
	c.JSON(http.StatusOK, gin.H{"success": true, "id": id})
}
