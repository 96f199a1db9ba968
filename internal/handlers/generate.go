package handlers

import (
	"errors"
	"image/color"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/cristianadrielbraun/qrstudio/internal/content"
	"github.com/cristianadrielbraun/qrstudio/internal/generator"
	"github.com/cristianadrielbraun/qrstudio/internal/imgenc"
	"github.com/cristianadrielbraun/qrstudio/internal/logo"
	"github.com/cristianadrielbraun/qrstudio/internal/qrgen"
	"github.com/cristianadrielbraun/qrstudio/internal/raster"
)

// formOverhead is the body allowance on top of the logo for the text fields.
const formOverhead = 64 << 10

// StyleFields are the render options shared by the form and query endpoints.
type StyleFields struct {
	DarkColor   string `form:"darkColor"`
	LightColor  string `form:"lightColor"`
	Transparent string `form:"transparent"`
	QRStyle     string `form:"qrStyle" binding:"omitempty,oneof=classic glassmorphism-dots pixel-perfect"`
	WhiteQRMode string `form:"whiteQrMode" binding:"omitempty,oneof=invert-colors dark-background outlined with-border force-transparent"`
	ECLevel     string `form:"ecLevel" binding:"omitempty,oneof=L M Q H l m q h"`
	Format      string `form:"format" binding:"omitempty,oneof=png jpg jpeg"`
}

type generateForm struct {
	ContentType string `form:"content_type" binding:"required"`
	StyleFields
}

// Generate handles the multipart form and answers with the image URL.
func (h *Handler) Generate(c *gin.Context) {
	req, cleanup, err := h.parseGenerate(c)
	defer cleanup()
	if err != nil {
		h.fail(c, err)
		return
	}

	res, err := h.gen.Generate(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.logger.Debug("qr code generated",
		"id", res.ID,
		"style", string(res.Style),
		"fallback", res.Fallback,
		"logo", res.LogoApplied,
	)
	c.JSON(http.StatusOK, gin.H{
		"qrCodeUrl": res.URL,
		"success":   true,
		"style":     res.Style,
		"id":        res.ID,
	})
}

// parseGenerate reads the request body into a generator request. The
// returned cleanup removes any spooled upload and must always be called.
func (h *Handler) parseGenerate(c *gin.Context) (generator.Request, func(), error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxLogoBytes+formOverhead)

	cleanup := func() {
		if form := c.Request.MultipartForm; form != nil {
			if err := form.RemoveAll(); err != nil {
				h.logger.Warn("failed to remove upload temp files", "error", err)
			}
		}
	}

	if err := c.Request.ParseMultipartForm(h.uploadMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return generator.Request{}, cleanup, h.malformedBody(err)
	}

	var form generateForm
	if err := c.ShouldBindWith(&form, binding.Form); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			err = h.malformedBody(err)
		}
		return generator.Request{}, cleanup, err
	}

	logoData, err := h.readLogo(c)
	if err != nil {
		return generator.Request{}, cleanup, err
	}

	cr, err := content.FromValues(form.ContentType, c.Request.Form)
	if err != nil {
		return generator.Request{}, cleanup, err
	}

	req, err := h.buildRequest(cr, form.StyleFields, h.canvasSize)
	if err != nil {
		return generator.Request{}, cleanup, err
	}
	req.Logo = logoData
	return req, cleanup, nil
}

// malformedBody reports a body the form parser rejected as a client error.
// The body limit error passes through so it still maps to the logo field.
func (h *Handler) malformedBody(err error) error {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return err
	}
	h.logger.Debug("malformed form body", "error", err)
	return &content.ValidationError{Field: "body", Message: "malformed form body"}
}

// readLogo returns nil when no file was chosen or the body is not multipart.
func (h *Handler) readLogo(c *gin.Context) ([]byte, error) {
	if c.Request.MultipartForm == nil {
		return nil, nil
	}
	fh, err := c.FormFile("logo")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if fh.Filename == "" && fh.Size == 0 {
		return nil, nil
	}
	return logo.ReadUpload(fh, h.maxLogoBytes)
}

func (h *Handler) buildRequest(cr content.Request, f StyleFields, canvas int) (generator.Request, error) {
	dark, err := parseColor("darkColor", f.DarkColor, raster.Black)
	if err != nil {
		return generator.Request{}, err
	}
	light, err := parseColor("lightColor", f.LightColor, raster.White)
	if err != nil {
		return generator.Request{}, err
	}
	id, err := raster.ParseStyleID(f.QRStyle)
	if err != nil {
		return generator.Request{}, &content.ValidationError{Field: "qrStyle", Message: err.Error()}
	}
	mode, err := raster.ParseWhiteMode(f.WhiteQRMode)
	if err != nil {
		return generator.Request{}, &content.ValidationError{Field: "whiteQrMode", Message: err.Error()}
	}
	level, err := qrgen.ParseLevel(f.ECLevel)
	if err != nil {
		return generator.Request{}, &content.ValidationError{Field: "ecLevel", Message: err.Error()}
	}
	format, err := imgenc.ParseFormat(f.Format)
	if err != nil {
		return generator.Request{}, &content.ValidationError{Field: "format", Message: err.Error()}
	}

	return generator.Request{
		Content: cr,
		Style: raster.Style{
			ID:          id,
			Dark:        dark,
			Light:       light,
			Transparent: isTrue(f.Transparent),
			CanvasSize:  canvas,
			WhiteMode:   mode,
		},
		Level:  level,
		Format: format,
	}, nil
}

// parseColor accepts #RRGGBB; an empty value selects def.
func parseColor(field, value string, def color.RGBA) (color.RGBA, error) {
	if strings.TrimSpace(value) == "" {
		return def, nil
	}
	col, err := raster.ParseHex(value)
	if err != nil {
		return color.RGBA{}, &content.ValidationError{Field: field, Message: "must be a 6-digit hex color"}
	}
	return col, nil
}

func isTrue(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "on", "1":
		return true
	}
	return false
}
