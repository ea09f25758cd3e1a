package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/repository"
)

func (h *Handler) ListProducts(c *gin.Context) {
	var q ProductQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.bindError(c, err)
		return
	}
	page, err := h.catalog.ListProducts(c.Request.Context(), repository.ProductFilter{
		CategorySlug: q.Category,
		Search:       q.Search,
		Page:         repository.NewPage(q.Page, 15),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	p, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"product":     p,
		"stockStatus": p.StockStatus(),
	})
}

func (h *Handler) SearchSuggestions(c *gin.Context) {
	suggestions, err := h.catalog.Suggest(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, suggestions)
}
