package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"article_cms/internal/domain"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// respondError maps domain errors onto status codes. Unknown errors become 500
// without leaking their text.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	resp := ErrorResponse{Error: err.Error()}

	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		resp.Field = vErr.Field
	}

	var httpErr domain.HTTPError
	if !errors.As(err, &httpErr) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	status := httpErr.StatusCode()
	if status == http.StatusBadGateway {
		resp.Error = "upstream dependency failed"
	}
	c.AbortWithStatusJSON(status, resp)
}

func badRequest(c *gin.Context, field, message string) {
	respondError(c, &domain.ValidationError{Field: field, Message: message})
}
