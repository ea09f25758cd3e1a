package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

func (h *Handler) Dashboard(c *gin.Context) {
	d, err := h.dashboard.Stats(c.Request.Context(), identity(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *Handler) AdminListOrders(c *gin.Context) {
	var q OrderListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.bindError(c, err)
		return
	}
	from, err := parseDate(q.DateFrom)
	if err != nil {
		h.writeError(c, err)
		return
	}
	to, err := parseDate(q.DateTo)
	if err != nil {
		h.writeError(c, err)
		return
	}

	page, err := h.orders.AdminListOrders(c.Request.Context(), identity(c), repository.OrderFilter{
		Status:        domain.OrderStatus(q.Status),
		PaymentStatus: domain.PaymentStatus(q.PaymentStatus),
		DateFrom:      from,
		DateTo:        to,
		Search:        q.Search,
		Page:          repository.NewPage(q.Page, 15),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"orders":  newOrderResponses(page.Orders),
		"total":   page.Total,
		"page":    page.Page,
		"perPage": page.PerPage,
		"stats":   page.Stats,
	})
}

func (h *Handler) AdminGetOrder(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	order, err := h.orders.AdminGetOrder(c.Request.Context(), identity(c), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newOrderResponse(order, true))
}

func (h *Handler) AdminUpdateStatus(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}
	order, err := h.orders.AdminUpdateStatus(c.Request.Context(), identity(c), id, req.Status)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newOrderResponse(order, true))
}

func (h *Handler) AdminCompleteOrder(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	order, err := h.orders.CompleteOrder(c.Request.Context(), identity(c), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newOrderResponse(order, true))
}

func (h *Handler) AdminWallet(c *gin.Context) {
	var q WalletQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.bindError(c, err)
		return
	}
	from, err := parseDate(q.DateFrom)
	if err != nil {
		h.writeError(c, err)
		return
	}
	to, err := parseDate(q.DateTo)
	if err != nil {
		h.writeError(c, err)
		return
	}

	ctx := c.Request.Context()
	balance, err := h.ledger.Balance(ctx)
	if err != nil {
		h.writeError(c, err)
		return
	}
	filter := repository.TransactionFilter{DateFrom: from, DateTo: to, Page: repository.NewPage(q.Page, 20)}
	txs, total, err := h.ledger.Transactions(ctx, filter)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"balance":      balance,
		"transactions": txs,
		"total":        total,
		"page":         filter.Page.Page,
		"perPage":      filter.Page.Limit(),
	})
}

func (h *Handler) AdminUpdateStock(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req UpdateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}
	change, err := h.catalog.UpdateStock(c.Request.Context(), identity(c), id, *req.Stock, req.Reason)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, change)
}
