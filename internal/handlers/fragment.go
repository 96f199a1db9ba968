package handlers

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/qrstudio/web/components"
)

// GenerateFragment is Generate for HTMX: it answers with an HTML fragment
// to swap into the page instead of JSON.
func (h *Handler) GenerateFragment(c *gin.Context) {
	req, cleanup, err := h.parseGenerate(c)
	defer cleanup()
	if err != nil {
		h.failFragment(c, err)
		return
	}

	res, err := h.gen.Generate(c.Request.Context(), req)
	if err != nil {
		h.failFragment(c, err)
		return
	}

	h.render(c, http.StatusOK, components.Result(components.ResultProps{
		ID:       res.ID,
		URL:      res.URL,
		Style:    string(res.Style),
		Format:   string(res.Format),
		Fallback: res.Fallback,
		Class:    c.PostForm("class"),
	}))
}

func (h *Handler) failFragment(c *gin.Context, err error) {
	status := statusFor(err)
	h.logFailure(c, err, status)
	h.render(c, status, components.ResultError(components.ErrorProps{
		Message: errorMessage(err, status),
		Field:   errorField(err),
	}))
}

func (h *Handler) render(c *gin.Context, status int, comp templ.Component) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if err := comp.Render(c.Request.Context(), c.Writer); err != nil {
		h.logger.Error("render fragment", "error", err)
	}
}
