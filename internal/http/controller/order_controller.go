package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/hifi-storefront/internal/service"
)

// OrderController handles HTTP requests for orders.
type OrderController struct {
	catalog *service.CatalogService
}

// NewOrderController creates a new OrderController with the given catalog service.
func NewOrderController(catalog *service.CatalogService) *OrderController {
	return &OrderController{
		catalog: catalog,
	}
}

// PlaceOrderRequest represents the request body for placing an order.
type PlaceOrderRequest struct {
	ProductID int64 `json:"productId" binding:"required,gt=0"`
}

// PlaceOrder handles the HTTP POST request for ordering a product.
func (oc *OrderController) PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := oc.catalog.PlaceOrder(c.Request.Context(), req.ProductID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

// ListOrders handles the HTTP GET request for listing orders.
func (oc *OrderController) ListOrders(c *gin.Context) {
	orders, err := oc.catalog.ListOrders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// CancelOrder handles the HTTP DELETE request for an order.
func (oc *OrderController) CancelOrder(c *gin.Context) {
	if err := oc.catalog.CancelOrder(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
