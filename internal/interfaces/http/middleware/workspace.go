// internal/interfaces/http/middleware/workspace.go
package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/agri-oasis/storefront/internal/config"
	"github.com/agri-oasis/storefront/internal/domain/workspace"
)

const (
	ClientIDKey  = "client_id"
	WorkspaceKey = "workspace"
)

// WorkspaceProvider resolves the workspace of a client id
type WorkspaceProvider interface {
	Get(ctx context.Context, clientID string) (*workspace.Workspace, error)
}

// ClientWorkspace identifies the client instance by cookie, issuing a new
// id when the cookie is missing or malformed, and loads its workspace.
func ClientWorkspace(provider WorkspaceProvider, cfg config.SessionConfig, logger *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID, err := c.Cookie(cfg.CookieName)
		if _, perr := uuid.Parse(clientID); err != nil || perr != nil {
			clientID = uuid.NewString()
		}

		// Refresh the cookie on every request so active clients keep their id
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cfg.CookieName, clientID, int(cfg.CookieMaxAge.Seconds()), "/", "", cfg.CookieSecure, true)

		ws, err := provider.Get(c.Request.Context(), clientID)
		if err != nil {
			logger.WithError(err).WithField("client_id", clientID).Error("Failed to load workspace")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error": "Session storage unavailable",
			})
			return
		}

		c.Set(ClientIDKey, clientID)
		c.Set(WorkspaceKey, ws)
		c.Next()
	}
}

// WorkspaceFrom returns the workspace loaded by ClientWorkspace
func WorkspaceFrom(c *gin.Context) *workspace.Workspace {
	v, ok := c.Get(WorkspaceKey)
	if !ok {
		return nil
	}
	ws, _ := v.(*workspace.Workspace)
	return ws
}
