// internal/interfaces/http/handlers/auth.go
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/agri-oasis/storefront/internal/domain/guard"
	"github.com/agri-oasis/storefront/internal/domain/session"
)

// AuthHandler handles sign-in, sign-up and sign-out of a client instance
type AuthHandler struct {
	logger *logrus.Entry
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(logger *logrus.Entry) *AuthHandler {
	return &AuthHandler{logger: logger}
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

// SignupRequest is the body of POST /auth/signup
type SignupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

// sessionResponse is what the client needs to route after authentication
type sessionResponse struct {
	Authenticated bool              `json:"authenticated"`
	User          *session.Identity `json:"user"`
	Redirect      string            `json:"redirect"`
}

func sessionPayload(sess *session.Session) sessionResponse {
	if sess == nil {
		return sessionResponse{Redirect: guard.LoginPath}
	}
	user := sess.Identity
	return sessionResponse{
		Authenticated: true,
		User:          &user,
		Redirect:      guard.HomeFor(user.Role),
	}
}

// LoginView handles GET /login. Signed-in clients are sent to their home.
func (h *AuthHandler) LoginView(c *gin.Context) {
	ws := workspaceOrAbort(c)
	if ws == nil {
		return
	}

	if sess := ws.Session.Current(); sess != nil {
		home := guard.HomeFor(sess.Role())
		c.Header("Location", home)
		c.JSON(http.StatusFound, gin.H{
			"message":  "Already signed in",
			"redirect": home,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Sign in to continue",
		"data": gin.H{
			"roles": session.Roles,
		},
	})
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	ws := workspaceOrAbort(c)
	if ws == nil {
		return
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	role, err := session.ParseRole(strings.ToLower(strings.TrimSpace(req.Role)))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if err := ws.Login(c.Request.Context(), strings.TrimSpace(req.Email), req.Password, role); err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"client_id": ws.ID,
			"role":      role,
		}).Warn("Login failed")
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"data":    sessionPayload(ws.Session.Current()),
	})
}

// Signup handles POST /auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	ws := workspaceOrAbort(c)
	if ws == nil {
		return
	}

	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	role, err := session.ParseRole(strings.ToLower(strings.TrimSpace(req.Role)))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	err = ws.Signup(c.Request.Context(), strings.TrimSpace(req.Name), strings.TrimSpace(req.Email), req.Password, role)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Account created successfully",
		"data":    sessionPayload(ws.Session.Current()),
	})
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	ws := workspaceOrAbort(c)
	if ws == nil {
		return
	}

	ws.Logout(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
		"data":    sessionPayload(nil),
	})
}

// Session handles GET /auth/session
func (h *AuthHandler) Session(c *gin.Context) {
	ws := workspaceOrAbort(c)
	if ws == nil {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Session retrieved successfully",
		"data":    sessionPayload(ws.Session.Current()),
	})
}
