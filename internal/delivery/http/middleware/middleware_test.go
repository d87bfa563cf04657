package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-headhunter-backend/internal/domain"
	"go-headhunter-backend/pkg/apperror"
	"go-headhunter-backend/pkg/audit"
	"go-headhunter-backend/pkg/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), ErrorHandler())
	r.GET("/conflict", func(c *gin.Context) {
		_ = c.Error(domain.ErrDuplicateEmail.Wrap(errors.New("23505")))
	})
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(errors.New("pq: secret table missing"))
	})
	r.GET("/wrapped", func(c *gin.Context) {
		_ = c.Error(errors.Join(errors.New("ctx"), apperror.NotFound("gone")))
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/conflict", nil))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "already exists")
	assert.Contains(t, w.Body.String(), `"request_id"`)

	w = serve(r, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "secret table")

	w = serve(r, httptest.NewRequest(http.MethodGet, "/wrapped", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		id, _ := c.Request.Context().Value(audit.RequestIDKey).(string)
		c.String(http.StatusOK, id)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := serve(r, req)
	assert.Equal(t, "abc-123", w.Body.String())
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "<script>")
	w = serve(r, req)
	assert.NotEqual(t, "<script>", w.Body.String())
	assert.Len(t, w.Body.String(), 36)
}

func TestAuthMiddleware(t *testing.T) {
	tokens := auth.NewTokenManager("secret", time.Hour)
	r := gin.New()
	r.GET("/me", AuthMiddleware(tokens), RequireRole(domain.RoleHR), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(string(domain.KeyUserID)))
	})

	t.Run("Valid hr token", func(t *testing.T) {
		token, _, err := tokens.Issue("hr-1", "r@x.com", domain.RoleHR)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		w := serve(r, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "hr-1", w.Body.String())
	})

	t.Run("Missing header", func(t *testing.T) {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Wrong role", func(t *testing.T) {
		token, _, _ := tokens.Issue("st-1", "s@x.com", domain.RoleStudent)
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		w := serve(r, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer not.a.jwt")
		w := serve(r, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAdminToken(t *testing.T) {
	ok := func(c *gin.Context) { c.Status(http.StatusNoContent) }

	r := gin.New()
	r.POST("/import", AdminToken("s3cret"), ok)

	req := httptest.NewRequest(http.MethodPost, "/import", nil)
	req.Header.Set(AdminTokenHeader, "s3cret")
	assert.Equal(t, http.StatusNoContent, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodPost, "/import", nil)
	req.Header.Set(AdminTokenHeader, "guess")
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)

	disabled := gin.New()
	disabled.POST("/import", AdminToken(""), ok)
	req = httptest.NewRequest(http.MethodPost, "/import", nil)
	assert.Equal(t, http.StatusForbidden, serve(disabled, req).Code)
}

func TestRateLimiterInMemory(t *testing.T) {
	limiter := NewRateLimiter(nil, nil)
	r := gin.New()
	r.POST("/register", limiter.Middleware(RateLimitConfig{
		Limit:     2,
		Window:    time.Minute,
		KeyPrefix: "rl:test:",
	}), func(c *gin.Context) { c.Status(http.StatusCreated) })

	for i := 0; i < 2; i++ {
		w := serve(r, httptest.NewRequest(http.MethodPost, "/register", nil))
		assert.Equal(t, http.StatusCreated, w.Code)
	}
	w := serve(r, httptest.NewRequest(http.MethodPost, "/register", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	t.Run("Window reset", func(t *testing.T) {
		limiter.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
		w := serve(r, httptest.NewRequest(http.MethodPost, "/register", nil))
		assert.Equal(t, http.StatusCreated, w.Code)
	})
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware("https://app.example.com/"))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := serve(r, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = serve(r, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
