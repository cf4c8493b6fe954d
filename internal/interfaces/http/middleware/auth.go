// internal/interfaces/http/middleware/auth.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agri-oasis/storefront/internal/domain/guard"
	"github.com/agri-oasis/storefront/internal/domain/session"
)

const (
	SessionKey           = "session"
	RedirectReasonHeader = "X-Redirect-Reason"
)

// RequireRole lets the request through only for a session with role.
// Anonymous clients are sent to the login view, signed-in clients with
// another role to their own home view. Must run after ClientWorkspace.
func RequireRole(role session.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws := WorkspaceFrom(c)
		if ws == nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "Workspace not loaded",
			})
			return
		}

		sess := ws.Session.Current()
		decision := guard.Check(sess, role)
		if !decision.Allowed() {
			c.Header("Location", decision.Location)
			c.Header(RedirectReasonHeader, decision.Outcome.String())
			c.AbortWithStatusJSON(http.StatusFound, gin.H{
				"error":    redirectMessage(decision.Outcome),
				"redirect": decision.Location,
			})
			return
		}

		c.Set(SessionKey, sess)
		c.Next()
	}
}

func redirectMessage(o guard.Outcome) string {
	if o == guard.RedirectLogin {
		return "Authentication required"
	}
	return "This area belongs to another role"
}

// SessionFrom returns the session admitted by RequireRole
func SessionFrom(c *gin.Context) *session.Session {
	v, ok := c.Get(SessionKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*session.Session)
	return sess
}
