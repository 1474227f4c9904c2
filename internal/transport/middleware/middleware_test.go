package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handlers...)
	return r
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name        string
		origins     []string
		origin      string
		wantAllowed string
	}{
		{name: "wildcard", origins: []string{"*"}, origin: "http://shop.example", wantAllowed: "*"},
		{name: "listed origin", origins: []string{"http://app.example"}, origin: "http://app.example", wantAllowed: "http://app.example"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(CORS(tt.origins))
			r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodGet)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusNoContent, w.Code)
			assert.Equal(t, tt.wantAllowed, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestCORSRejectsUnlistedOrigin(t *testing.T) {
	r := newRouter(CORS([]string{"http://app.example"}))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://evil.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestTimeoutSetsDeadline(t *testing.T) {
	var deadline time.Time
	var hasDeadline bool

	r := newRouter(Timeout(2 * time.Second))
	r.GET("/slow", func(c *gin.Context) {
		deadline, hasDeadline = c.Request.Context().Deadline()
		c.Status(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/slow", nil))
	require.True(t, hasDeadline)
	assert.WithinDuration(t, time.Now().Add(2*time.Second), deadline, time.Second)
}

func TestTimeoutDisabled(t *testing.T) {
	var hasDeadline bool

	r := newRouter(Timeout(0))
	r.GET("/", func(c *gin.Context) {
		_, hasDeadline = c.Request.Context().Deadline()
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, hasDeadline)
}

func TestRequestIDGenerated(t *testing.T) {
	var seen string
	r := newRouter(RequestID())
	r.GET("/", func(c *gin.Context) { seen = c.GetString(RequestIDKey) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get(RequestIDHeader))
}
