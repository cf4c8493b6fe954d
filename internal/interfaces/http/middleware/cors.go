// internal/interfaces/http/middleware/cors.go
package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/agri-oasis/storefront/internal/config"
)

// CORS lets the browser app read redirects and request ids from another origin.
// Credentials are allowed because the client instance travels in a cookie.
func CORS(cfg *config.Config) gin.HandlerFunc {
	origins := newOriginMatcher(cfg.Security.CORSAllowedOrigins)
	methods := strings.Join(cfg.Security.CORSAllowedMethods, ", ")
	headers := strings.Join(cfg.Security.CORSAllowedHeaders, ", ")

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		c.Header("Vary", "Origin")

		if origin != "" && origins.allows(origin) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Expose-Headers", "Location, "+RedirectReasonHeader+", X-Request-ID")
		}
		c.Header("Access-Control-Allow-Methods", methods)
		c.Header("Access-Control-Allow-Headers", headers)
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// originMatcher holds exact origins and "*.domain" host suffixes
type originMatcher struct {
	any      bool
	exact    map[string]bool
	suffixes []string
}

func newOriginMatcher(allowed []string) originMatcher {
	m := originMatcher{exact: make(map[string]bool)}
	for _, a := range allowed {
		a = strings.TrimSpace(a)
		switch {
		case a == "*":
			m.any = true
		case strings.HasPrefix(a, "*."):
			m.suffixes = append(m.suffixes, "."+strings.ToLower(strings.TrimPrefix(a, "*.")))
		case a != "":
			m.exact[strings.TrimRight(a, "/")] = true
		}
	}
	return m
}

// allows reports whether origin may read responses. Wildcards match the
// hostname, ignoring scheme and port.
func (m originMatcher) allows(origin string) bool {
	if m.any || m.exact[origin] {
		return true
	}
	if len(m.suffixes) == 0 {
		return false
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, suffix := range m.suffixes {
		if strings.HasSuffix(host, suffix) {
			return true
		}
	}
	return false
}
