package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/anr091/project-kapita/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	products  *service.ProductService
	ledger    *service.StockLedger
	counter   *service.AggregateCounter
	receiving *service.ReceivingService
	shipping  *service.ShippingService
	partners  *service.PartnerService
	dashboard *service.DashboardService
	audit     *service.AuditTrail
}

// NewHandler creates a new HTTP handler
func NewHandler(
	products *service.ProductService,
	ledger *service.StockLedger,
	counter *service.AggregateCounter,
	receiving *service.ReceivingService,
	shipping *service.ShippingService,
	partners *service.PartnerService,
	dashboard *service.DashboardService,
	audit *service.AuditTrail,
) *Handler {
	return &Handler{
		products:  products,
		ledger:    ledger,
		counter:   counter,
		receiving: receiving,
		shipping:  shipping,
		partners:  partners,
		dashboard: dashboard,
		audit:     audit,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	v1.Use(identityMiddleware())
	{
		v1.GET("/dashboard", h.getDashboard)

		v1.POST("/products", h.createProduct)
		v1.GET("/products", h.listProducts)
		v1.GET("/products/options", h.listProductOptions)
		v1.GET("/products/:id", h.getProduct)
		v1.PUT("/products/:id", h.updateProduct)
		v1.DELETE("/products/:id", h.deleteProduct)

		v1.GET("/inventory", h.listInventory)
		v1.PUT("/inventory/:id/location", h.setLocation)

		v1.POST("/arrivals", h.createArrival)
		v1.GET("/arrivals", h.listArrivals)
		v1.GET("/arrivals/:id", h.getArrival)

		v1.POST("/shipments", h.createShipment)
		v1.GET("/shipments", h.listShipments)
		v1.GET("/shipments/:id", h.getShipment)

		v1.POST("/suppliers", h.createSupplier)
		v1.GET("/suppliers", h.listSuppliers)
		v1.GET("/suppliers/:id", h.getSupplier)
		v1.PUT("/suppliers/:id", h.updateSupplier)
		v1.DELETE("/suppliers/:id", h.deleteSupplier)

		v1.POST("/retails", h.createRetail)
		v1.GET("/retails", h.listRetails)
		v1.GET("/retails/:id", h.getRetail)
		v1.PUT("/retails/:id", h.updateRetail)
		v1.DELETE("/retails/:id", h.deleteRetail)

		v1.GET("/counter", h.getCounter)
		v1.GET("/counter/series", h.getCounterSeries)

		v1.GET("/audit", h.listAudit)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

func (h *Handler) getDashboard(c *gin.Context) {
	summary, err := h.dashboard.Summary(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handler) createProduct(c *gin.Context) {
	var req service.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	product, err := h.products.CreateProduct(c.Request.Context(), actorID(c), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.products.ListProducts(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// listProductOptions returns only active products, for intake forms that
// should not offer deactivated items.
func (h *Handler) listProductOptions(c *gin.Context) {
	products, err := h.products.ListActiveProducts(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *Handler) getProduct(c *gin.Context) {
	product, entry, err := h.products.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"product": product,
		"stock":   entry,
	})
}

func (h *Handler) updateProduct(c *gin.Context) {
	var req service.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	product, err := h.products.UpdateProduct(c.Request.Context(), actorID(c), c.Param("id"), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) deleteProduct(c *gin.Context) {
	if err := h.products.DeleteProduct(c.Request.Context(), actorID(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("id")})
}

func (h *Handler) listInventory(c *gin.Context) {
	entries, err := h.ledger.Entries(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

type setLocationRequest struct {
	Location string `json:"location" binding:"required"`
}

func (h *Handler) setLocation(c *gin.Context) {
	var req setLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if err := h.ledger.AdjustLocation(c.Request.Context(), c.Param("id"), req.Location); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stock_id": c.Param("id"), "location": req.Location})
}

func (h *Handler) createArrival(c *gin.Context) {
	var req service.CreateArrivalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	arrival, err := h.receiving.CreateArrival(c.Request.Context(), actorID(c), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, arrival)
}

func (h *Handler) listArrivals(c *gin.Context) {
	arrivals, err := h.receiving.Arrivals(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"arrivals": arrivals})
}

func (h *Handler) getArrival(c *gin.Context) {
	arrival, lines, err := h.receiving.Arrival(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"arrival": arrival,
		"lines":   lines,
	})
}

func (h *Handler) createShipment(c *gin.Context) {
	var req service.CreateShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	shipment, err := h.shipping.CreateShipment(c.Request.Context(), actorID(c), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, shipment)
}

func (h *Handler) listShipments(c *gin.Context) {
	shipments, err := h.shipping.Shipments(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shipments": shipments})
}

func (h *Handler) getShipment(c *gin.Context) {
	shipment, lines, err := h.shipping.Shipment(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"shipment": shipment,
		"lines":    lines,
	})
}

func (h *Handler) createSupplier(c *gin.Context) {
	var req service.PartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	sup, err := h.partners.CreateSupplier(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sup)
}

func (h *Handler) listSuppliers(c *gin.Context) {
	sups, err := h.partners.ListSuppliers(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"suppliers": sups})
}

func (h *Handler) getSupplier(c *gin.Context) {
	sup, err := h.partners.GetSupplier(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sup)
}

func (h *Handler) updateSupplier(c *gin.Context) {
	var req service.PartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	sup, err := h.partners.UpdateSupplier(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sup)
}

func (h *Handler) deleteSupplier(c *gin.Context) {
	if err := h.partners.DeleteSupplier(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("id")})
}

func (h *Handler) createRetail(c *gin.Context) {
	var req service.PartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	r, err := h.partners.CreateRetail(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (h *Handler) listRetails(c *gin.Context) {
	rs, err := h.partners.ListRetails(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"retails": rs})
}

func (h *Handler) getRetail(c *gin.Context) {
	r, err := h.partners.GetRetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *Handler) updateRetail(c *gin.Context) {
	var req service.PartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	r, err := h.partners.UpdateRetail(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *Handler) deleteRetail(c *gin.Context) {
	if err := h.partners.DeleteRetail(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("id")})
}

func (h *Handler) getCounter(c *gin.Context) {
	latest, err := h.counter.Latest(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if latest == nil {
		c.JSON(http.StatusOK, gin.H{"counter": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"counter": latest})
}

func (h *Handler) getCounterSeries(c *gin.Context) {
	series, err := h.counter.Series(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"series": series})
}

func (h *Handler) listAudit(c *gin.Context) {
	entries, err := h.audit.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// writeError maps service errors to HTTP statuses.
func writeError(c *gin.Context, err error) {
	var validationErr *service.ValidationError
	var stockErr *service.InsufficientStockError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
	case errors.As(err, &stockErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":      stockErr.Error(),
			"product_id": stockErr.ProductID,
			"available":  stockErr.Available,
			"requested":  stockErr.Requested,
		})
	case errors.Is(err, service.ErrNegativeAggregate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case strings.Contains(err.Error(), "not found"):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal error",
			"details": err.Error(),
		})
	}
}
