// internal/interfaces/http/handlers/buyer.go
package handlers

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/agri-oasis/storefront/internal/domain/analytics"
	"github.com/agri-oasis/storefront/internal/domain/catalog"
	"github.com/agri-oasis/storefront/internal/domain/order"
	"github.com/agri-oasis/storefront/internal/pkg/pdf"
)

const recentOrdersLimit = 5

// BuyerHandler handles the buyer views
type BuyerHandler struct {
	catalog  *catalog.Service
	receipts *pdf.Service
	logger   *logrus.Entry
}

// NewBuyerHandler creates a new buyer handler
func NewBuyerHandler(catalogService *catalog.Service, receipts *pdf.Service, logger *logrus.Entry) *BuyerHandler {
	return &BuyerHandler{
		catalog:  catalogService,
		receipts: receipts,
		logger:   logger,
	}
}

// Dashboard handles GET /user/dashboard
func (h *BuyerHandler) Dashboard(c *gin.Context) {
	ws := workspaceOrAbort(c)
	if ws == nil {
		return
	}
	user, ok := identity(c)
	if !ok {
		return
	}

	orders, err := ws.API.OrdersByBuyer(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	sortNewestFirst(orders)

	recent := orders
	if len(recent) > recentOrdersLimit {
		recent = recent[:recentOrdersLimit]
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Dashboard retrieved successfully",
		"data": gin.H{
			"user":         user,
			"summary":      analytics.Summarize(orders),
			"recentOrders": recent,
			"cart":         ws.Cart(),
		},
	})
}

// Products handles GET /user/products with optional category and q filters
func (h *BuyerHandler) Products(c *gin.Context) {
	products, err := h.catalog.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	category := strings.TrimSpace(c.Query("category"))
	query := strings.ToLower(strings.TrimSpace(c.Query("q")))

	filtered := products[:0]
	for _, p := range products {
		if category != "" && !strings.EqualFold(p.Category, category) {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(p.Name), query) &&
			!strings.Contains(strings.ToLower(p.Description), query) {
			continue
		}
		filtered = append(filtered, p)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Products retrieved successfully",
		"data":    filtered,
	})
}

// Orders handles GET /user/orders
func (h *BuyerHandler) Orders(c *gin.Context) {
	ws := workspaceOrAbort(c)
	if ws == nil {
		return
	}
	user, ok := identity(c)
	if !ok {
		return
	}

	orders, err := ws.API.OrdersByBuyer(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	sortNewestFirst(orders)

	c.JSON(http.StatusOK, gin.H{
		"message": "Orders retrieved successfully",
		"data":    orders,
	})
}

// Receipt handles GET /user/orders/:id/receipt. format=html skips the PDF
// conversion.
func (h *BuyerHandler) Receipt(c *gin.Context) {
	ws := workspaceOrAbort(c)
	if ws == nil {
		return
	}
	user, ok := identity(c)
	if !ok {
		return
	}

	orders, err := ws.API.OrdersByBuyer(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var found *order.Order
	for i := range orders {
		if orders[i].ID == c.Param("id") {
			found = &orders[i]
			break
		}
	}
	if found == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Order not found",
		})
		return
	}

	if c.Query("format") == "html" {
		html, err := h.receipts.RenderHTML(found)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
		return
	}

	content, err := h.receipts.GenerateReceipt(found)
	if err != nil {
		h.logger.WithError(err).WithField("order_id", found.ID).Error("Failed to generate receipt")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to generate receipt",
		})
		return
	}

	filename := fmt.Sprintf("receipt-%s.pdf", pdf.ReceiptNumber(found.ID))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/pdf", content)
}

func sortNewestFirst(orders []order.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt > orders[j].CreatedAt
	})
}
