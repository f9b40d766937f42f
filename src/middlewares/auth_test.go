package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", AuthMiddleware, func(ctx *gin.Context) {
		ctx.Status(http.StatusOK)
	})
	return router
}

func TestAuthMiddlewareRejectsBadHeaders(t *testing.T) {
	router := newAuthRouter()
	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc"},
		{"bare scheme", "Bearer"},
		{"empty token", "Bearer "},
		{"malformed token", "Bearer not-a-jwt"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest("GET", "/protected", nil)
			if c.header != "" {
				req.Header.Set("Authorization", c.header)
			}
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}
