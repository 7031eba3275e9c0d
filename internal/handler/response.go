package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"lipseyocr/internal/domain"
)

// APIResponse is the envelope for error responses. Successful extractions
// return the model's JSON object directly, so only failures carry it.
type APIResponse struct {
	Success bool      `json:"success"`
	Error   *APIError `json:"error,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"
	case errors.Is(err, domain.ErrInvalidEncoding):
		return http.StatusBadRequest, "INVALID_ENCODING", "fileBase64 is not valid base64"
	case errors.Is(err, domain.ErrNoRenderablePages):
		return http.StatusUnprocessableEntity, "NO_RENDERABLE_PAGES", "document contains no renderable pages"
	case errors.Is(err, domain.ErrMalformedPDF):
		return http.StatusInternalServerError, "RENDER_FAILED", "PDF could not be rendered"
	case errors.Is(err, domain.ErrUpstreamFailure):
		return http.StatusInternalServerError, "UPSTREAM_FAILED", "model service call failed"
	case errors.Is(err, domain.ErrMalformedModelOutput):
		return http.StatusInternalServerError, "MALFORMED_MODEL_OUTPUT", "model reply was not valid JSON"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get("request_id")
		log.Printf("[%s] internal error: %v", requestID, err)
	}
	RespondError(c, status, code, msg)
}
