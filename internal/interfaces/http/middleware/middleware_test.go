package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agri-oasis/storefront/internal/config"
	"github.com/agri-oasis/storefront/internal/domain/session"
	"github.com/agri-oasis/storefront/internal/domain/workspace"
	"github.com/agri-oasis/storefront/internal/infrastructure/storage"
	"github.com/agri-oasis/storefront/internal/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubProvider struct {
	err  error
	seen []string
}

func (p *stubProvider) Get(_ context.Context, clientID string) (*workspace.Workspace, error) {
	p.seen = append(p.seen, clientID)
	if p.err != nil {
		return nil, p.err
	}
	slots, err := storage.NewMemory().ForClient(clientID)
	if err != nil {
		return nil, err
	}
	store := session.NewStore(slots, nil, session.MustIdentityValidator(), logger.Component(logger.Discard(), "session"))
	return &workspace.Workspace{ID: clientID, Session: store}, nil
}

var sessionCfg = config.SessionConfig{CookieName: "agri_client", CookieMaxAge: time.Hour}

func newRouter(provider WorkspaceProvider, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(ClientWorkspace(provider, sessionCfg, logger.Component(logger.Discard(), "workspace")))
	handlers := append(extra, func(c *gin.Context) {
		c.String(http.StatusOK, WorkspaceFrom(c).ID)
	})
	r.GET("/x", handlers...)
	return r
}

func TestClientWorkspace_IssuesCookie(t *testing.T) {
	p := &stubProvider{}
	r := newRouter(p)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "agri_client", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	_, err := uuid.Parse(cookies[0].Value)
	assert.NoError(t, err)
	assert.Equal(t, cookies[0].Value, rec.Body.String())
}

func TestClientWorkspace_ReusesValidCookie(t *testing.T) {
	p := &stubProvider{}
	r := newRouter(p)
	id := uuid.NewString()

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.AddCookie(&http.Cookie{Name: "agri_client", Value: id})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, id, rec.Body.String())
}

func TestClientWorkspace_ReplacesMalformedCookie(t *testing.T) {
	p := &stubProvider{}
	r := newRouter(p)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.AddCookie(&http.Cookie{Name: "agri_client", Value: "../../etc"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.NotEqual(t, "../../etc", rec.Body.String())
	_, err := uuid.Parse(p.seen[0])
	assert.NoError(t, err)
}

func TestClientWorkspace_StorageFailure(t *testing.T) {
	r := newRouter(&stubProvider{err: errors.New("redis down")})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRequireRole_AnonymousRedirects(t *testing.T) {
	r := newRouter(&stubProvider{}, RequireRole(session.RoleFarmer))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.Equal(t, "unauthenticated", rec.Header().Get(RedirectReasonHeader))
	assert.JSONEq(t, `{"error":"Authentication required","redirect":"/login"}`, rec.Body.String())
}

func TestRequireRole_WithoutWorkspace(t *testing.T) {
	r := gin.New()
	r.GET("/x", RequireRole(session.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestIPRateLimiter(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	l := NewIPRateLimiter(60, 2)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("1.1.1.1"))
	assert.True(t, l.Allow("1.1.1.1"))
	assert.False(t, l.Allow("1.1.1.1"))
	assert.True(t, l.Allow("2.2.2.2"))

	now = now.Add(time.Second)
	assert.True(t, l.Allow("1.1.1.1"))
}

func TestRateLimit_DisabledWhenZero(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(0, 0, nil, logger.Component(logger.Discard(), "rate_limit")))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestTimeout_SetsDeadline(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(time.Minute))
	r.GET("/x", func(c *gin.Context) {
		_, ok := c.Request.Context().Deadline()
		assert.True(t, ok)
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORS_Preflight(t *testing.T) {
	cfg := &config.Config{Security: config.SecurityConfig{
		CORSAllowedOrigins: []string{"http://localhost:5173"},
		CORSAllowedMethods: []string{"GET", "POST"},
		CORSAllowedHeaders: []string{"Content-Type"},
	}}
	r := gin.New()
	r.Use(CORS(cfg))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_WildcardSubdomains(t *testing.T) {
	cfg := &config.Config{Security: config.SecurityConfig{
		CORSAllowedOrigins: []string{"*.agrioasis.com", "http://localhost:5173/"},
	}}
	r := gin.New()
	r.Use(CORS(cfg))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	cases := map[string]bool{
		"https://shop.agrioasis.com":         true,
		"https://a.b.AgriOasis.com:8443":     true,
		"http://localhost:5173":              true,
		"https://agrioasis.com":              false,
		"https://evilagrioasis.com":          false,
		"https://agrioasis.com.evil.io":      false,
		"https://shop.agrioasis.com.evil.io": false,
		"not a url":                          false,
	}
	for origin, allowed := range cases {
		t.Run(origin, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			req.Header.Set("Origin", origin)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "Origin", rec.Header().Get("Vary"))
			if allowed {
				assert.Equal(t, origin, rec.Header().Get("Access-Control-Allow-Origin"))
				assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
			} else {
				assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
				assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
			}
		})
	}
}
