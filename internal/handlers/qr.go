package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/qrstudio/internal/content"
)

// downloadScale multiplies the canvas for size=download.
const downloadScale = 2

type qrQuery struct {
	ContentType string `form:"content_type,default=url"`
	Size        string `form:"size,default=preview" binding:"oneof=preview download"`
	StyleFields
}

// QRCodeHandler renders straight to the response body from query
// parameters, e.g. /api/qr?url=example.com&qrStyle=pixel-perfect. Nothing is
// stored and logos are not supported.
func (h *Handler) QRCodeHandler(c *gin.Context) {
	var q qrQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.fail(c, err)
		return
	}

	cr, err := content.FromValues(q.ContentType, c.Request.URL.Query())
	if err != nil {
		h.fail(c, err)
		return
	}

	canvas := h.canvasSize
	if q.Size == "download" {
		canvas *= downloadScale
	}
	req, err := h.buildRequest(cr, q.StyleFields, canvas)
	if err != nil {
		h.fail(c, err)
		return
	}

	res, err := h.gen.Render(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.Header("X-QR-Debug", fmt.Sprintf("format=%s;size=%s;style=%s;fallback=%t", res.Format, q.Size, res.Style, res.Fallback))
	c.Header("Cache-Control", "public, max-age=3600")
	if q.Size == "download" {
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="qr-%s%s"`, res.Style, res.Format.Ext()))
	}
	c.Data(http.StatusOK, res.ContentType, res.Data)
}
