// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Checkout handles POST /user/checkout. On success the cart and address are
// already cleared and the placed order is returned.
func (h *CartHandler) Checkout(c *gin.Context) {
	ws := workspaceOrAbort(c)
	if ws == nil {
		return
	}

	placed, err := ws.PlaceOrder(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).WithField("client_id", ws.ID).Warn("Checkout failed")
		respondError(c, h.logger, err)
		return
	}

	// Stock levels changed on the marketplace side
	h.catalog.Invalidate()

	h.logger.WithFields(logrus.Fields{
		"client_id": ws.ID,
		"order_id":  placed.ID,
		"total":     placed.TotalAmount,
	}).Info("Order placed")

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"data":    placed,
	})
}
