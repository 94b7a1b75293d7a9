package httpserver

import (
	"net/http"
	"time"

	"storefront/internal/api"
	"storefront/internal/blobstore"
	"storefront/internal/domain"
	"storefront/internal/metrics"
	customersvc "storefront/internal/service/customer"
	ordersvc "storefront/internal/service/order"
	productsvc "storefront/internal/service/product"
	"storefront/internal/upload"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	PaymentProofsContainer = "payment-proofs"
	ProductImagesContainer = "product-images"
)

// FunctionsDeps wires the functions tier: table-store CRUD, uploads and order placement.
type FunctionsDeps struct {
	Logger      *zap.Logger
	Registry    *prometheus.Registry
	HTTPMetrics *metrics.HTTP
	CORSOrigins []string
	Ready       []ReadyCheck

	Products  *productsvc.Service
	Customers *customersvc.Service
	Orders    *ordersvc.Service
	Blobs     blobstore.Store
	// Files, when set, serves stored blobs under /files.
	Files *blobstore.FileStore
}

type functionsHandler struct {
	FunctionsDeps
}

func BuildFunctionsRouter(deps FunctionsDeps) *gin.Engine {
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
	h := &functionsHandler{deps}

	g := router.Group("/api")
	g.GET("/customers", h.listCustomers)
	g.POST("/customers", h.createCustomer)
	g.GET("/customers/:id", h.getCustomer)
	g.PUT("/customers/:id", h.updateCustomer)
	g.DELETE("/customers/:id", h.deleteCustomer)

	g.GET("/products", h.listProducts)
	g.POST("/products", h.createProduct)
	g.GET("/products/:id", h.getProduct)
	g.PUT("/products/:id", h.updateProduct)
	g.DELETE("/products/:id", h.deleteProduct)
	g.POST("/products/:id/upload", h.uploadProductImage)

	g.GET("/orders", h.listOrders)
	g.POST("/orders", h.createOrder)
	g.GET("/orders/:id", h.getOrder)
	g.DELETE("/orders/:id", h.deleteOrder)
	g.PATCH("/orders/:id/status", h.updateOrderStatus)
	g.POST("/orders/:id/cancel", h.cancelOrder)

	g.POST("/upload", h.uploadPaymentProof)

	if deps.Files != nil {
		router.GET("/files/:container/:name", h.serveFile)
	}
	return router
}

func (h *functionsHandler) fail(c *gin.Context, err error) {
	writeError(c, h.Logger, err)
}

func (h *functionsHandler) listCustomers(c *gin.Context) {
	customers, err := h.Customers.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]api.CustomerDTO, 0, len(customers))
	for _, cust := range customers {
		out = append(out, api.FromCustomer(cust))
	}
	c.JSON(http.StatusOK, out)
}

func (h *functionsHandler) getCustomer(c *gin.Context) {
	cust, err := h.Customers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, api.FromCustomer(*cust))
}

func customerInput(d api.CustomerDTO) customersvc.Input {
	return customersvc.Input{
		ID:              d.ID,
		Name:            d.Name,
		Surname:         d.Surname,
		Username:        d.Username,
		Email:           d.Email,
		ShippingAddress: d.ShippingAddress,
	}
}

func (h *functionsHandler) createCustomer(c *gin.Context) {
	var req api.CustomerDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	cust, err := h.Customers.Create(c.Request.Context(), customerInput(req))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, api.FromCustomer(*cust))
}

func (h *functionsHandler) updateCustomer(c *gin.Context) {
	var req api.CustomerDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	cust, err := h.Customers.Update(c.Request.Context(), c.Param("id"), customerInput(req))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, api.FromCustomer(*cust))
}

func (h *functionsHandler) deleteCustomer(c *gin.Context) {
	if err := h.Customers.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *functionsHandler) listProducts(c *gin.Context) {
	products, err := h.Products.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]api.ProductDTO, 0, len(products))
	for _, p := range products {
		out = append(out, api.FromProduct(p))
	}
	c.JSON(http.StatusOK, out)
}

func (h *functionsHandler) getProduct(c *gin.Context) {
	p, err := h.Products.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, api.FromProduct(*p))
}

func productInput(d api.ProductDTO) productsvc.Input {
	p := d.ToDomain()
	return productsvc.Input{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		PriceCents:     p.PriceCents,
		StockAvailable: p.StockAvailable,
		ImageURL:       p.ImageURL,
	}
}

func (h *functionsHandler) createProduct(c *gin.Context) {
	var req api.ProductDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	p, err := h.Products.Create(c.Request.Context(), productInput(req))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, api.FromProduct(*p))
}

func (h *functionsHandler) updateProduct(c *gin.Context) {
	var req api.ProductDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	p, err := h.Products.Update(c.Request.Context(), c.Param("id"), productInput(req))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, api.FromProduct(*p))
}

func (h *functionsHandler) deleteProduct(c *gin.Context) {
	if err := h.Products.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *functionsHandler) uploadProductImage(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.Products.Get(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	f, err := upload.Read(c.Request, func(string) string {
		return "product_" + id + "_" + uuid.NewString() + ".jpg"
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	u, err := h.Blobs.Upload(c.Request.Context(), ProductImagesContainer, f.Name, f.Data, f.ContentType)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.Logger.Info("product image uploaded", zap.String("product_id", id), zap.String("blob", f.Name), zap.Int("bytes", len(f.Data)))
	c.JSON(http.StatusOK, api.ImageUploadResponse{ImageURL: u})
}

func (h *functionsHandler) uploadPaymentProof(c *gin.Context) {
	f, err := upload.Read(c.Request, func(ext string) string {
		return "file_" + uuid.NewString() + ext
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	u, err := h.Blobs.Upload(c.Request.Context(), PaymentProofsContainer, f.Name, f.Data, f.ContentType)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.Logger.Info("payment proof uploaded", zap.String("blob", f.Name), zap.Int("bytes", len(f.Data)))
	c.JSON(http.StatusOK, api.UploadResponse{FileName: f.Name, URL: u})
}

func (h *functionsHandler) serveFile(c *gin.Context) {
	path, err := h.Files.Path(c.Param("container"), c.Param("name"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.File(path)
}

func (h *functionsHandler) listOrders(c *gin.Context) {
	orders, err := h.Orders.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, api.FromOrders(orders))
}

func (h *functionsHandler) getOrder(c *gin.Context) {
	o, err := h.Orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, api.FromOrder(*o))
}

func (h *functionsHandler) createOrder(c *gin.Context) {
	var req api.OrderCreateDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	var orderDate time.Time
	if req.OrderDate != nil {
		orderDate = *req.OrderDate
	}
	o, err := h.Orders.Create(c.Request.Context(), domain.OrderRequest{
		ID:         req.ID,
		CustomerID: req.CustomerID,
		ProductID:  req.ProductID,
		Quantity:   req.Quantity,
		OrderDate:  orderDate,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, api.FromOrder(*o))
}

func (h *functionsHandler) deleteOrder(c *gin.Context) {
	if err := h.Orders.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *functionsHandler) updateOrderStatus(c *gin.Context) {
	var req api.StatusUpdateDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	o, err := h.Orders.UpdateStatus(c.Request.Context(), c.Param("id"), domain.OrderStatus(req.NewStatus))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, api.FromOrder(*o))
}

func (h *functionsHandler) cancelOrder(c *gin.Context) {
	o, err := h.Orders.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, api.FromOrder(*o))
}
