package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"article_cms/internal/domain"
)

const CapabilityKey = "capability"

type Authorizer interface {
	Authorize(ctx context.Context, token string) (domain.Capability, error)
}

// Auth resolves the bearer token into a capability stored on the gin context.
// Requests without a token continue with the anonymous capability.
func Auth(gate Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		capability, err := gate.Authorize(c.Request.Context(), bearerToken(c.GetHeader("Authorization")))
		if err != nil {
			status := http.StatusUnauthorized
			var httpErr domain.HTTPError
			if errors.As(err, &httpErr) {
				status = httpErr.StatusCode()
			}
			_ = c.Error(err)
			c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
			return
		}

		c.Set(CapabilityKey, capability)
		c.Next()
	}
}

// GetCapability returns the capability set by Auth, or the anonymous one.
func GetCapability(c *gin.Context) domain.Capability {
	if v, ok := c.Get(CapabilityKey); ok {
		if capability, ok := v.(domain.Capability); ok {
			return capability
		}
	}
	return domain.Capability{}
}

func bearerToken(header string) string {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
