package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/mrlokans/librium/internal/backup"
	"github.com/mrlokans/librium/internal/database/lookup"
	"github.com/mrlokans/librium/internal/entities"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // per-field validation reasons
}

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ListResponse wraps an unpaginated list.
type ListResponse struct {
	Items any `json:"items"`
	Count int `json:"count"`
}

const (
	codeValidation       = "validation_error"
	codeInvalidReference = "invalid_reference"
	codeNotFound         = "not_found"
)

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// respondNotFound sends a 404 Not Found response.
func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found", Code: codeNotFound})
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Error().Err(err).Str("context", context).Str("path", c.FullPath()).Msg("Internal error")
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// respondServiceError maps a service error to its HTTP status. Anything that
// is not a domain error is treated as a storage failure.
func respondServiceError(c *gin.Context, err error, context string) {
	var verr *entities.ValidationError
	var rerr *entities.InvalidReferenceError
	switch {
	case errors.As(err, &verr):
		details := make(map[string]string, len(verr.Fields))
		for field, reason := range verr.Fields {
			details[field] = reason.Error()
		}
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Code:    codeValidation,
			Details: details,
		})
	case errors.As(err, &rerr):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   rerr.Error(),
			Code:    codeInvalidReference,
			Details: map[string]any{"field": rerr.Field, "id": rerr.ID},
		})
	case errors.Is(err, entities.ErrNotFound):
		respondNotFound(c, context)
	case errors.Is(err, lookup.ErrUnknownKind), errors.Is(err, backup.ErrInvalidName):
		respondBadRequest(c, err.Error())
	default:
		respondInternalError(c, err, context)
	}
}

// --- Success Response Helpers ---

// respondCreated sends a 201 Created response with data.
func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// respondAccepted sends a 202 Accepted response (for async operations).
func respondAccepted(c *gin.Context, message string, data any) {
	c.JSON(http.StatusAccepted, SuccessResponse{Message: message, Data: data})
}

// respondSuccess sends a 200 OK response with a message.
func respondSuccess(c *gin.Context, message string) {
	c.JSON(http.StatusOK, SuccessResponse{Message: message})
}

// --- Parameter Parsing ---

// parseIDParam extracts and validates an unsigned integer ID from URL parameters.
// Returns the parsed ID or responds with a 400 error and returns 0, false.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(paramName), 10, 32)
	if err != nil || id == 0 {
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return uint(id), true
}
