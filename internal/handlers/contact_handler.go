package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/folio-dev/portfolio-api/internal/models"
	"github.com/folio-dev/portfolio-api/internal/services"
	pkgerrors "github.com/folio-dev/portfolio-api/pkg/errors"
)

// contactCORSHeaders are set on every contact response, including errors and preflights.
var contactCORSHeaders = map[string]string{
	"Access-Control-Allow-Credentials": "true",
	"Access-Control-Allow-Origin":      "*",
	"Access-Control-Allow-Methods":     "GET,OPTIONS,PATCH,DELETE,POST,PUT",
	"Access-Control-Allow-Headers":     "Content-Type",
}

// SetCORSHeaders applies the contact CORS headers to h. Responses written
// outside HandleContact use it too.
func SetCORSHeaders(h http.Header) {
	for k, v := range contactCORSHeaders {
		h.Set(k, v)
	}
}

type ContactHandler struct {
	service services.ContactServiceInterface
}

func NewContactHandler(service services.ContactServiceInterface) *ContactHandler {
	return &ContactHandler{service: service}
}

// HandleContact is the submission endpoint. It accepts every method so it can
// answer preflights and reject unsupported verbs itself.
func (h *ContactHandler) HandleContact(c *gin.Context) {
	SetCORSHeaders(c.Writer.Header())

	switch c.Request.Method {
	case http.MethodOptions:
		c.Status(http.StatusOK)
		return
	case http.MethodPost:
	default:
		respondError(c, http.StatusMethodNotAllowed, "Method not allowed", nil)
		return
	}

	var req models.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, http.StatusRequestEntityTooLarge, "Request body too large", err)
			return
		}
		// Unparseable bodies are treated as empty submissions.
		attachError(c, err)
		req = models.ContactRequest{}
	}

	outcome, err := h.service.SubmitContactForm(c.Request.Context(), &req)
	if err != nil {
		respondError(c, validationStatus(err), validationMessage(err), err)
		return
	}

	if !outcome.Delivered {
		respondError(c, http.StatusInternalServerError, "Failed to send message", nil)
		return
	}

	c.JSON(http.StatusOK, models.ContactResponse{
		Success: true,
		Message: "Message sent successfully",
	})
}

func validationStatus(err error) int {
	if errors.Is(err, pkgerrors.ErrInvalidInput) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, pkgerrors.ErrMissingFields):
		return "Missing required fields"
	case errors.Is(err, pkgerrors.ErrInputTooLong):
		return "Input too long"
	case errors.Is(err, pkgerrors.ErrInvalidEmail):
		return "Invalid email format"
	case errors.Is(err, pkgerrors.ErrInvalidInput):
		return "Invalid request"
	default:
		return "Failed to send message"
	}
}
