// internal/interfaces/http/handlers/admin.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/agri-oasis/storefront/internal/domain/analytics"
	"github.com/agri-oasis/storefront/internal/domain/catalog"
	"github.com/agri-oasis/storefront/internal/domain/session"
)

// AdminHandler handles the admin views
type AdminHandler struct {
	catalog *catalog.Service
	logger  *logrus.Entry
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(catalogService *catalog.Service, logger *logrus.Entry) *AdminHandler {
	return &AdminHandler{
		catalog: catalogService,
		logger:  logger,
	}
}

// UserStatusRequest is the body of PUT /admin/users/:id/status
type UserStatusRequest struct {
	Status session.AccountStatus `json:"status" binding:"required"`
}

// Dashboard handles GET /admin/dashboard
func (h *AdminHandler) Dashboard(c *gin.Context) {
	ws := workspaceOrAbort(c)
	if ws == nil {
		return
	}
	user, ok := identity(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	farmers, err := ws.API.ListFarmers(ctx)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	users, err := ws.API.ListUsers(ctx)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	orders, err := ws.API.ListOrders(ctx)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	products, err := h.catalog.List(ctx)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	pending := 0
	for _, f := range farmers {
		if f.Status == session.StatusPending {
			pending++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Dashboard retrieved successfully",
		"data": gin.H{
			"user":           user,
			"totalFarmers":   len(farmers),
			"pendingFarmers": pending,
			"totalUsers":     len(users),
			"totalProducts":  len(products),
			"orders":         analytics.Summarize(orders),
		},
	})
}

// Farmers handles GET /admin/farmers
func (h *AdminHandler) Farmers(c *gin.Context) {
	ws := workspaceOrAbort(c)
	if ws == nil {
		return
	}

	farmers, err := ws.API.ListFarmers(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Farmers retrieved successfully",
		"data":    farmers,
	})
}

// Users handles GET /admin/users
func (h *AdminHandler) Users(c *gin.Context) {
	ws := workspaceOrAbort(c)
	if ws == nil {
		return
	}

	users, err := ws.API.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Users retrieved successfully",
		"data":    users,
	})
}

// UpdateUserStatus handles PUT /admin/users/:id/status
func (h *AdminHandler) UpdateUserStatus(c *gin.Context) {
	ws := workspaceOrAbort(c)
	if ws == nil {
		return
	}

	var req UserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if !req.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid account status",
		})
		return
	}

	updated, err := ws.API.UpdateUserStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"user_id": updated.ID,
		"status":  updated.Status,
	}).Info("Account status updated")

	c.JSON(http.StatusOK, gin.H{
		"message": "User status updated successfully",
		"data":    updated,
	})
}

// Products handles GET /admin/products
func (h *AdminHandler) Products(c *gin.Context) {
	products, err := h.catalog.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Products retrieved successfully",
		"data":    products,
	})
}
