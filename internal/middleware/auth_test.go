package middleware_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"article_cms/internal/domain"
	"article_cms/internal/middleware"
	"article_cms/internal/service/mocks"
)

func newAuthRouter(gate middleware.Authorizer, captured *domain.Capability) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.Auth(gate))
	router.GET("/test", func(c *gin.Context) {
		*captured = middleware.GetCapability(c)
		c.Status(http.StatusOK)
	})
	return router
}

func TestAuth_StoresCapability(t *testing.T) {
	ctrl := gomock.NewController(t)
	gate := mocks.NewMockSessionGate(ctrl)
	want := domain.Capability{Subject: "ana", Write: true}
	gate.EXPECT().Authorize(gomock.Any(), "tok123").Return(want, nil)

	var captured domain.Capability
	router := newAuthRouter(gate, &captured)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer tok123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, want, captured)
}

func TestAuth_AnonymousWithoutHeader(t *testing.T) {
	ctrl := gomock.NewController(t)
	gate := mocks.NewMockSessionGate(ctrl)
	gate.EXPECT().Authorize(gomock.Any(), "").Return(domain.Capability{}, nil)

	var captured domain.Capability
	router := newAuthRouter(gate, &captured)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, captured.CanWrite())
}

func TestAuth_IgnoresOtherSchemes(t *testing.T) {
	ctrl := gomock.NewController(t)
	gate := mocks.NewMockSessionGate(ctrl)
	gate.EXPECT().Authorize(gomock.Any(), "").Return(domain.Capability{}, nil)

	var captured domain.Capability
	router := newAuthRouter(gate, &captured)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuth_RejectsInvalidToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	gate := mocks.NewMockSessionGate(ctrl)
	gate.EXPECT().Authorize(gomock.Any(), "bad").Return(domain.Capability{}, &domain.UnauthorizedError{Message: "invalid session token"})

	var captured domain.Capability
	router := newAuthRouter(gate, &captured)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "bearer bad")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid session token")
}

func TestAuth_GateFailureDefaultsToUnauthorized(t *testing.T) {
	ctrl := gomock.NewController(t)
	gate := mocks.NewMockSessionGate(ctrl)
	gate.EXPECT().Authorize(gomock.Any(), "tok").Return(domain.Capability{}, errors.New("boom"))

	var captured domain.Capability
	router := newAuthRouter(gate, &captured)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_WrappedGateErrorKeepsStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	gate := mocks.NewMockSessionGate(ctrl)
	gate.EXPECT().Authorize(gomock.Any(), "tok").Return(domain.Capability{},
		fmt.Errorf("authorize session: %w", &domain.CollaboratorError{Op: "load session", Err: errors.New("timeout")}))

	var captured domain.Capability
	router := newAuthRouter(gate, &captured)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}
