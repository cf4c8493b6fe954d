// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/agri-oasis/storefront/internal/domain/catalog"
)

// CartHandler handles the buyer's cart and checkout
type CartHandler struct {
	catalog *catalog.Service
	logger  *logrus.Entry
}

// NewCartHandler creates a new cart handler
func NewCartHandler(catalogService *catalog.Service, logger *logrus.Entry) *CartHandler {
	return &CartHandler{
		catalog: catalogService,
		logger:  logger,
	}
}

// AddToCartRequest is the body of POST /user/cart/items
type AddToCartRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

// UpdateQuantityRequest is the body of PUT /user/cart/items/:id
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// ShippingRequest is the body of PUT /user/cart/shipping
type ShippingRequest struct {
	ShippingAddress string `json:"shippingAddress"`
}

// GetCart handles GET /user/cart
func (h *CartHandler) GetCart(c *gin.Context) {
	ws := workspaceOrAbort(c)
	if ws == nil {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart retrieved successfully",
		"data":    ws.Cart(),
	})
}

// AddItem handles POST /user/cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	ws := workspaceOrAbort(c)
	if ws == nil {
		return
	}

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	product, err := h.catalog.Find(c.Request.Context(), req.ProductID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if err := ws.AddToCart(product); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart successfully",
		"data":    ws.Cart(),
	})
}

// UpdateItem handles PUT /user/cart/items/:id
func (h *CartHandler) UpdateItem(c *gin.Context) {
	ws := workspaceOrAbort(c)
	if ws == nil {
		return
	}

	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := ws.SetQuantity(c.Param("id"), *req.Quantity); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart item updated successfully",
		"data":    ws.Cart(),
	})
}

// RemoveItem handles DELETE /user/cart/items/:id
func (h *CartHandler) RemoveItem(c *gin.Context) {
	ws := workspaceOrAbort(c)
	if ws == nil {
		return
	}

	if err := ws.RemoveFromCart(c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart successfully",
		"data":    ws.Cart(),
	})
}

// Clear handles DELETE /user/cart
func (h *CartHandler) Clear(c *gin.Context) {
	ws := workspaceOrAbort(c)
	if ws == nil {
		return
	}

	if err := ws.ClearCart(); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared successfully",
		"data":    ws.Cart(),
	})
}

// SetShipping handles PUT /user/cart/shipping
func (h *CartHandler) SetShipping(c *gin.Context) {
	ws := workspaceOrAbort(c)
	if ws == nil {
		return
	}

	var req ShippingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := ws.SetShippingAddress(req.ShippingAddress); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Shipping address saved",
		"data":    ws.Cart(),
	})
}
