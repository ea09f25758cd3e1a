package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storefront/internal/services"
)

type Handler struct {
	carts     *services.CartService
	orders    *services.OrderService
	catalog   *services.CatalogService
	dashboard *services.DashboardService
	ledger    services.Ledger
	log       logrus.FieldLogger
}

func NewHandler(
	carts *services.CartService,
	orders *services.OrderService,
	catalog *services.CatalogService,
	dashboard *services.DashboardService,
	ledger services.Ledger,
	log logrus.FieldLogger,
) *Handler {
	return &Handler{
		carts:     carts,
		orders:    orders,
		catalog:   catalog,
		dashboard: dashboard,
		ledger:    ledger,
		log:       log,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.Use(Identify(), RequestLogger(h.log))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/products", h.ListProducts)
	r.GET("/products/:id", h.GetProduct)
	r.GET("/search/suggestions", h.SearchSuggestions)
	r.GET("/payment-methods", h.PaymentMethods)

	user := r.Group("/", RequireUser())
	user.GET("/cart", h.ListCart)
	user.GET("/cart/count", h.CartCount)
	user.POST("/cart/items", h.AddCartItem)
	user.PATCH("/cart/items/:id", h.SetCartQuantity)
	user.POST("/cart/items/:id/toggle", h.ToggleCartItem)
	user.DELETE("/cart/items/:id", h.RemoveCartItem)
	user.POST("/cart/select-all", h.SelectAll)
	user.POST("/cart/remove-selected", h.RemoveSelected)
	user.POST("/cart/checkout", h.Checkout)

	user.POST("/orders", h.BuyNow)
	user.GET("/orders", h.ListOrders)
	user.GET("/orders/:id", h.GetOrder)
	user.POST("/orders/:id/pay", h.Pay)
	user.GET("/orders/:id/invoice", h.Invoice)

	admin := r.Group("/admin", RequireBackOffice())
	admin.GET("/dashboard", h.Dashboard)
	admin.GET("/orders", h.AdminListOrders)
	admin.GET("/orders/:id", h.AdminGetOrder)
	admin.PATCH("/orders/:id/status", h.AdminUpdateStatus)
	admin.POST("/orders/:id/complete", h.AdminCompleteOrder)
	admin.GET("/wallet", h.AdminWallet)
	admin.PATCH("/products/:id/stock", h.AdminUpdateStock)
}

func idParam(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return 0, false
	}
	return id, true
}

func (h *Handler) PaymentMethods(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"methods": h.orders.PaymentMethods()})
}
