package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/cristianadrielbraun/qrstudio/internal/content"
	"github.com/cristianadrielbraun/qrstudio/internal/generator"
	"github.com/cristianadrielbraun/qrstudio/internal/history"
	"github.com/cristianadrielbraun/qrstudio/internal/logo"
)

// statusFor maps pipeline errors onto HTTP status codes.
func statusFor(err error) int {
	var (
		maxBytes *http.MaxBytesError
		invalid  validator.ValidationErrors
	)
	switch {
	case errors.Is(err, content.ErrValidation),
		errors.Is(err, content.ErrInvalidContentType),
		errors.Is(err, logo.ErrInvalid),
		errors.As(err, &maxBytes),
		errors.As(err, &invalid):
		return http.StatusBadRequest
	case errors.Is(err, history.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, generator.ErrTimeout):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage is the text sent to the client. Server-side failures get a
// fixed message; the cause is only logged.
func errorMessage(err error, status int) string {
	switch status {
	case http.StatusInternalServerError:
		return "Failed to generate QR code"
	case http.StatusServiceUnavailable:
		return "QR code generation timed out"
	}

	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return logo.ErrTooLarge.Error()
	}
	var invalid validator.ValidationErrors
	if errors.As(err, &invalid) {
		msgs := make([]string, 0, len(invalid))
		for _, fe := range invalid {
			msgs = append(msgs, fieldMessage(fe))
		}
		return strings.Join(msgs, "; ")
	}
	return err.Error()
}

// errorField names the offending form field, if any.
func errorField(err error) string {
	var ve *content.ValidationError
	if errors.As(err, &ve) {
		return ve.Field
	}
	var invalid validator.ValidationErrors
	if errors.As(err, &invalid) && len(invalid) > 0 {
		return invalid[0].Field()
	}
	var maxBytes *http.MaxBytesError
	if errors.Is(err, logo.ErrInvalid) || errors.As(err, &maxBytes) {
		return "logo"
	}
	return ""
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// fail writes the JSON error body.
func (h *Handler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	h.logFailure(c, err, status)
	body := gin.H{"error": errorMessage(err, status)}
	if field := errorField(err); field != "" && status == http.StatusBadRequest {
		body["field"] = field
	}
	c.JSON(status, body)
}

func (h *Handler) logFailure(c *gin.Context, err error, status int) {
	attrs := []any{
		slog.String("path", c.FullPath()),
		slog.Int("status", status),
		slog.String("error", err.Error()),
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", attrs...)
		return
	}
	h.logger.Info("request rejected", attrs...)
}

var fieldNamesOnce sync.Once

// useFormFieldNames makes validator report form field names instead of Go
// struct field names.
func useFormFieldNames() {
	fieldNamesOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
}
