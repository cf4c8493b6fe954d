// internal/interfaces/http/handlers/farmer.go
package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/agri-oasis/storefront/internal/domain/analytics"
	"github.com/agri-oasis/storefront/internal/domain/catalog"
	"github.com/agri-oasis/storefront/internal/domain/order"
)

// FarmerHandler handles the farmer views
type FarmerHandler struct {
	catalog *catalog.Service
	logger  *logrus.Entry
}

// NewFarmerHandler creates a new farmer handler
func NewFarmerHandler(catalogService *catalog.Service, logger *logrus.Entry) *FarmerHandler {
	return &FarmerHandler{
		catalog: catalogService,
		logger:  logger,
	}
}

const defaultProductImage = "/assets/images/default-product.jpg"

// ProductRequest is the body of POST /farmer/products and
// PUT /farmer/products/:id
type ProductRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description" binding:"required"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	Category    string  `json:"category" binding:"required"`
	Quantity    int     `json:"quantity" binding:"required,gt=0"`
	Image       string  `json:"image"`
}

// apply copies the editable fields onto p
func (r ProductRequest) apply(p *catalog.Product) {
	p.Name = strings.TrimSpace(r.Name)
	p.Description = strings.TrimSpace(r.Description)
	p.Price = r.Price
	p.Category = r.Category
	p.Quantity = r.Quantity
	p.Image = r.Image
	if p.Image == "" {
		p.Image = defaultProductImage
	}
}

// Dashboard handles GET /farmer/dashboard
func (h *FarmerHandler) Dashboard(c *gin.Context) {
	ws := workspaceOrAbort(c)
	if ws == nil {
		return
	}
	user, ok := identity(c)
	if !ok {
		return
	}

	orders, err := ws.API.OrdersByFarmer(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	products, err := h.catalog.ByFarmer(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	sortNewestFirst(orders)

	c.JSON(http.StatusOK, gin.H{
		"message": "Dashboard retrieved successfully",
		"data": gin.H{
			"user":     user,
			"summary":  analytics.Summarize(orders),
			"orders":   orders,
			"products": products,
		},
	})
}

// Orders handles GET /farmer/orders
func (h *FarmerHandler) Orders(c *gin.Context) {
	ws := workspaceOrAbort(c)
	if ws == nil {
		return
	}
	user, ok := identity(c)
	if !ok {
		return
	}

	orders, err := ws.API.OrdersByFarmer(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if status := order.Status(c.Query("status")); status != "" {
		filtered := orders[:0]
		for _, o := range orders {
			if o.Status == status {
				filtered = append(filtered, o)
			}
		}
		orders = filtered
	}
	sortNewestFirst(orders)

	c.JSON(http.StatusOK, gin.H{
		"message": "Orders retrieved successfully",
		"data":    orders,
	})
}

// UpdateOrderStatus handles PUT /farmer/orders/:id/status
func (h *FarmerHandler) UpdateOrderStatus(c *gin.Context) {
	ws := workspaceOrAbort(c)
	if ws == nil {
		return
	}

	var req order.StatusUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if !req.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid order status",
		})
		return
	}

	updated, err := ws.API.UpdateOrderStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"order_id": updated.ID,
		"status":   updated.Status,
	}).Info("Order status updated")

	c.JSON(http.StatusOK, gin.H{
		"message": "Order status updated successfully",
		"data":    updated,
	})
}

// Analytics handles GET /farmer/analytics
func (h *FarmerHandler) Analytics(c *gin.Context) {
	ws := workspaceOrAbort(c)
	if ws == nil {
		return
	}
	user, ok := identity(c)
	if !ok {
		return
	}

	monthly, err := ws.API.MonthlySales(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	byProduct, err := ws.API.ProductSales(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Analytics retrieved successfully",
		"data": gin.H{
			"monthlySales": monthly,
			"productSales": byProduct,
		},
	})
}

// Products handles GET /farmer/products
func (h *FarmerHandler) Products(c *gin.Context) {
	user, ok := identity(c)
	if !ok {
		return
	}

	products, err := h.catalog.ByFarmer(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Products retrieved successfully",
		"data":    products,
	})
}

// CreateProduct handles POST /farmer/products
func (h *FarmerHandler) CreateProduct(c *gin.Context) {
	ws := workspaceOrAbort(c)
	if ws == nil {
		return
	}
	user, ok := identity(c)
	if !ok {
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	p := catalog.Product{
		FarmerID:   user.ID,
		FarmerName: user.Name,
		CreatedAt:  time.Now().Format("2006-01-02"),
	}
	req.apply(&p)

	created, err := ws.API.CreateProduct(c.Request.Context(), p)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.catalog.Invalidate()

	h.logger.WithFields(logrus.Fields{
		"product_id": created.ID,
		"farmer_id":  user.ID,
	}).Info("Product created")

	c.JSON(http.StatusCreated, gin.H{
		"message": "Product added successfully",
		"data":    created,
	})
}

// UpdateProduct handles PUT /farmer/products/:id
func (h *FarmerHandler) UpdateProduct(c *gin.Context) {
	ws := workspaceOrAbort(c)
	if ws == nil {
		return
	}

	existing, ok := h.ownProduct(c)
	if !ok {
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	req.apply(&existing)

	updated, err := ws.API.UpdateProduct(c.Request.Context(), existing.ID, existing)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.catalog.Invalidate()

	h.logger.WithField("product_id", updated.ID).Info("Product updated")

	c.JSON(http.StatusOK, gin.H{
		"message": "Product updated successfully",
		"data":    updated,
	})
}

// DeleteProduct handles DELETE /farmer/products/:id
func (h *FarmerHandler) DeleteProduct(c *gin.Context) {
	ws := workspaceOrAbort(c)
	if ws == nil {
		return
	}

	existing, ok := h.ownProduct(c)
	if !ok {
		return
	}

	if err := ws.API.DeleteProduct(c.Request.Context(), existing.ID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.catalog.Invalidate()

	h.logger.WithField("product_id", existing.ID).Info("Product deleted")

	c.JSON(http.StatusOK, gin.H{
		"message": "Product deleted successfully",
	})
}

// ownProduct resolves :id among the caller's own listings. Products of other
// farmers are reported as not found.
func (h *FarmerHandler) ownProduct(c *gin.Context) (catalog.Product, bool) {
	user, ok := identity(c)
	if !ok {
		return catalog.Product{}, false
	}

	p, err := h.catalog.Find(c.Request.Context(), c.Param("id"))
	if err == nil && p.FarmerID != user.ID {
		err = catalog.ErrProductNotFound
	}
	if err != nil {
		respondError(c, h.logger, err)
		return catalog.Product{}, false
	}
	return p, true
}
