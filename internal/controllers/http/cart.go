package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListCart(c *gin.Context) {
	summary, err := h.carts.ListItems(c.Request.Context(), identity(c).UserID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handler) CartCount(c *gin.Context) {
	n, err := h.carts.Count(c.Request.Context(), identity(c).UserID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

func (h *Handler) AddCartItem(c *gin.Context) {
	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}
	line, err := h.carts.AddItem(c.Request.Context(), identity(c).UserID, req.ProductID, req.Quantity)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, line)
}

func (h *Handler) SetCartQuantity(c *gin.Context) {
	var req SetQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}
	line, err := h.carts.SetQuantity(c.Request.Context(), identity(c).UserID, c.Param("id"), req.Quantity)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": line, "subtotal": line.Subtotal()})
}

func (h *Handler) ToggleCartItem(c *gin.Context) {
	line, err := h.carts.ToggleSelection(c.Request.Context(), identity(c).UserID, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, line)
}

func (h *Handler) RemoveCartItem(c *gin.Context) {
	if err := h.carts.RemoveItem(c.Request.Context(), identity(c).UserID, c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) SelectAll(c *gin.Context) {
	var req SelectAllRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}
	if err := h.carts.SelectAll(c.Request.Context(), identity(c).UserID, *req.Selected); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"selected": *req.Selected})
}

func (h *Handler) RemoveSelected(c *gin.Context) {
	n, err := h.carts.RemoveSelected(c.Request.Context(), identity(c).UserID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": n})
}

func (h *Handler) Checkout(c *gin.Context) {
	order, err := h.orders.CheckoutFromCart(c.Request.Context(), identity(c).UserID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newOrderResponse(order, false))
}
