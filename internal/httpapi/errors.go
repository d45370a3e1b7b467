package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amishk599/hirecall/internal/ats"
	"github.com/amishk599/hirecall/internal/calls"
	"github.com/amishk599/hirecall/internal/model"
)

const msgInternal = "Internal server error"

// fail writes the error response for err. notFound is the message used when
// err is a not-found error.
func (h *handler) fail(c *gin.Context, op, notFound string, err error) {
	status, msg := classify(err, notFound)
	if status >= 500 {
		h.Logger.Error("request failed", "op", op, "error", err)
	} else {
		h.Logger.Debug("request rejected", "op", op, "status", status, "error", err)
	}
	c.JSON(status, gin.H{"error": msg})
}

func classify(err error, notFound string) (int, string) {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Msg
	case errors.Is(err, model.ErrAgentNotFound):
		return http.StatusNotFound, "Agent not found"
	case errors.Is(err, model.ErrNotFound):
		if notFound == "" {
			notFound = "Not found"
		}
		return http.StatusNotFound, notFound
	case errors.Is(err, model.ErrAlreadyApplied):
		return http.StatusConflict, "This email has already applied for this position"
	case errors.Is(err, model.ErrInvalidTransition):
		return http.StatusConflict, "Call has already been started"
	case errors.Is(err, model.ErrNotDispatched):
		return http.StatusBadRequest, "Call ID not found"
	case errors.Is(err, model.ErrNoTranscript):
		return http.StatusBadRequest, "No transcript available for this call"
	case errors.Is(err, model.ErrUnreadablePDF):
		return http.StatusBadRequest, "Failed to extract text from PDF. Please ensure the PDF is readable and contains text."
	case errors.Is(err, ats.ErrMailNotConfigured):
		return http.StatusInternalServerError, "Email service not configured"
	case errors.Is(err, calls.ErrNoCallsCreated):
		return http.StatusInternalServerError, "Failed to create initial calls"
	}
	return http.StatusInternalServerError, msgInternal
}
