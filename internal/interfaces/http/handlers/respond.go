// internal/interfaces/http/handlers/respond.go
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/agri-oasis/storefront/internal/domain/catalog"
	"github.com/agri-oasis/storefront/internal/domain/checkout"
	"github.com/agri-oasis/storefront/internal/domain/session"
	"github.com/agri-oasis/storefront/internal/domain/workspace"
	"github.com/agri-oasis/storefront/internal/infrastructure/marketapi"
	"github.com/agri-oasis/storefront/internal/interfaces/http/middleware"
)

// statusFor maps a domain error to its HTTP status and user-facing message
func statusFor(err error) (int, string) {
	var (
		submitErr *checkout.OrderSubmissionError
		authErr   *session.AuthServiceError
		apiErr    *marketapi.APIError
	)

	switch {
	case errors.Is(err, checkout.ErrEmptyShippingAddress), errors.Is(err, checkout.ErrEmptyCart):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, checkout.ErrCheckoutInProgress):
		return http.StatusConflict, "An order is already being placed"
	case errors.As(err, &submitErr):
		return http.StatusBadGateway, submitErr.Message
	case errors.As(err, &authErr):
		if authErr.Status == 0 || authErr.Status >= 500 {
			return http.StatusBadGateway, authErr.Message
		}
		return http.StatusUnauthorized, authErr.Message
	case errors.Is(err, session.ErrInvalidCredentialsResponse):
		return http.StatusBadGateway, "Authentication service returned an invalid response"
	case errors.Is(err, session.ErrInvalidRole):
		return http.StatusBadRequest, "Invalid role"
	case errors.Is(err, workspace.ErrNotAuthenticated):
		return http.StatusUnauthorized, "Authentication required"
	case errors.Is(err, catalog.ErrProductNotFound):
		return http.StatusNotFound, "Product not found"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "Marketplace did not respond in time"
	case errors.As(err, &apiErr):
		if apiErr.Status >= 400 && apiErr.Status < 500 {
			msg := apiErr.Message
			if msg == "" {
				msg = http.StatusText(apiErr.Status)
			}
			return apiErr.Status, msg
		}
		return http.StatusBadGateway, "Marketplace service unavailable"
	}
	return http.StatusInternalServerError, "Internal server error"
}

// respondError writes err as {"error": message}. Server-side failures are
// logged with the request id.
func respondError(c *gin.Context, logger *logrus.Entry, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		entry := logger.WithError(err).WithField("status", status)
		if id, ok := c.Get(middleware.RequestIDKey); ok {
			entry = entry.WithField("request_id", id)
		}
		entry.Error("Request failed")
	}
	c.JSON(status, gin.H{
		"error": msg,
	})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request data",
		"details": err.Error(),
	})
}

// workspaceOrAbort returns the client workspace or writes a 500
func workspaceOrAbort(c *gin.Context) *workspace.Workspace {
	ws := middleware.WorkspaceFrom(c)
	if ws == nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Workspace not loaded",
		})
	}
	return ws
}

// identity returns the identity admitted by the role guard
func identity(c *gin.Context) (session.Identity, bool) {
	sess := middleware.SessionFrom(c)
	if sess == nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
		})
		return session.Identity{}, false
	}
	return sess.Identity, true
}
