package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) BuyNow(c *gin.Context) {
	var req BuyNowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}
	order, err := h.orders.BuyNow(c.Request.Context(), identity(c).UserID, req.ProductID, req.Quantity)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newOrderResponse(order, false))
}

func (h *Handler) ListOrders(c *gin.Context) {
	orders, err := h.orders.ListOrders(c.Request.Context(), identity(c).UserID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": newOrderResponses(orders)})
}

func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	order, err := h.orders.GetOrder(c.Request.Context(), identity(c).UserID, id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newOrderResponse(order, true))
}

func (h *Handler) Pay(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req PayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}
	order, err := h.orders.ProcessPayment(c.Request.Context(), identity(c).UserID, id, req.Method)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newOrderResponse(order, true))
}

func (h *Handler) Invoice(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	inv, err := h.orders.Invoice(c.Request.Context(), identity(c).UserID, id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}
