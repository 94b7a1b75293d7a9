package httpserver

import (
	"net/http"

	"storefront/internal/api"
	"storefront/internal/domain"
	"storefront/internal/metrics"
	cartsvc "storefront/internal/service/cart"
	checkoutsvc "storefront/internal/service/checkout"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// StorefrontDeps wires the buyer-facing cart API.
type StorefrontDeps struct {
	Logger      *zap.Logger
	Registry    *prometheus.Registry
	HTTPMetrics *metrics.HTTP
	CORSOrigins []string
	Ready       []ReadyCheck

	Carts    *cartsvc.Service
	Checkout *checkoutsvc.Service
}

type storefrontHandler struct {
	StorefrontDeps
}

func BuildStorefrontRouter(deps StorefrontDeps) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	router := newEngine(engineConfig{
		Logger:      deps.Logger,
		Registry:    deps.Registry,
		HTTPMetrics: deps.HTTPMetrics,
		CORSOrigins: deps.CORSOrigins,
		Ready:       deps.Ready,
	})
	h := &storefrontHandler{deps}

	g := router.Group("/cart", buyerMiddleware())
	g.GET("", h.viewCart)
	g.GET("/count", h.itemCount)
	g.POST("/items", h.addItem)
	g.PUT("/items/:lineId", h.updateQuantity)
	g.DELETE("/items/:lineId", h.removeItem)
	g.POST("/abandon", h.abandon)
	g.POST("/checkout", h.checkout)
	return router
}

func (h *storefrontHandler) fail(c *gin.Context, err error) {
	writeError(c, h.Logger, err)
}

func (h *storefrontHandler) viewCart(c *gin.Context) {
	view, err := h.Carts.View(c.Request.Context(), buyerFromContext(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	dto := api.FromCart(*view.Cart)
	for i, lv := range view.Lines {
		stock, available := lv.StockAvailable, lv.Available
		dto.Lines[i].StockAvailable = &stock
		dto.Lines[i].Available = &available
		dto.Lines[i].ImageURL = lv.ImageURL
	}
	c.JSON(http.StatusOK, dto)
}

func (h *storefrontHandler) itemCount(c *gin.Context) {
	n, err := h.Carts.ItemCount(c.Request.Context(), buyerFromContext(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, api.CountResponse{Count: n})
}

func (h *storefrontHandler) addItem(c *gin.Context) {
	var req api.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	cart, err := h.Carts.AddItem(c.Request.Context(), buyerFromContext(c), req.ProductID, req.Quantity)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, api.FromCart(*cart))
}

func (h *storefrontHandler) updateQuantity(c *gin.Context) {
	var req api.UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	cart, err := h.Carts.UpdateQuantity(c.Request.Context(), buyerFromContext(c), c.Param("lineId"), req.Quantity)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, api.FromCart(*cart))
}

func (h *storefrontHandler) removeItem(c *gin.Context) {
	cart, err := h.Carts.RemoveItem(c.Request.Context(), buyerFromContext(c), c.Param("lineId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, api.FromCart(*cart))
}

func (h *storefrontHandler) abandon(c *gin.Context) {
	if err := h.Carts.Abandon(c.Request.Context(), buyerFromContext(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *storefrontHandler) checkout(c *gin.Context) {
	var req api.CheckoutRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
	}
	res, err := h.Checkout.Checkout(c.Request.Context(), buyerFromContext(c), checkoutsvc.Input{
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, api.CheckoutResponse{
		CartID:        res.CartID,
		Orders:        api.FromOrders(res.Orders),
		Total:         domain.CentsToAmount(res.TotalCents),
		PaymentMethod: res.PaymentMethod,
		Message:       res.Message,
	})
}
