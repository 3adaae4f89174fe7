package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/hifi-storefront/internal/model"
	"github.com/iyhunko/hifi-storefront/internal/repository"
	"github.com/iyhunko/hifi-storefront/internal/service"
)

// ProductController handles HTTP requests for product operations.
type ProductController struct {
	catalog *service.CatalogService
}

// NewProductController creates a new ProductController with the given catalog service.
func NewProductController(catalog *service.CatalogService) *ProductController {
	return &ProductController{
		catalog: catalog,
	}
}

// CreateProductRequest represents the request body for creating a product.
// Price may be sent as a string or a number.
type CreateProductRequest struct {
	Name     string      `json:"name"`
	Price    model.Price `json:"price"`
	ImageURI string      `json:"imageUri"`
}

// CreateProduct handles the HTTP POST request for creating a new product.
func (pc *ProductController) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := pc.catalog.CreateProduct(c.Request.Context(), model.ProductCandidate{
		Name:     req.Name,
		Price:    req.Price,
		ImageURI: req.ImageURI,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, product)
}

// GetProduct handles the HTTP GET request for a single product.
func (pc *ProductController) GetProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	product, err := pc.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// DeleteProduct handles the HTTP DELETE request for deleting a product by ID.
// Orders placed for the product are deleted with it.
func (pc *ProductController) DeleteProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	if err := pc.catalog.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "product deleted successfully"})
}

// ListProductsRequest represents the query parameters for listing products.
type ListProductsRequest struct {
	Search string `form:"q"`
	Limit  int32  `form:"limit"`
	Token  string `form:"token"`
}

// ListProductsResponse represents the response body for listing products.
type ListProductsResponse struct {
	Products      []model.Product `json:"products"`
	Total         int             `json:"total"`
	NextPageToken string          `json:"next_page_token,omitempty"`
}

// ListProducts handles the HTTP GET request for listing products with search and pagination.
func (pc *ProductController) ListProducts(c *gin.Context) {
	var req ListProductsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	query := repository.NewQuery().WithSearch(req.Search)
	if err := query.ApplyPagination(req.Limit, req.Token); err != nil {
		respondError(c, err)
		return
	}

	page, err := pc.catalog.ListProducts(c.Request.Context(), *query)
	if err != nil {
		respondError(c, err)
		return
	}

	response := ListProductsResponse{
		Products: page.Products,
		Total:    page.Total,
	}
	if page.Next != nil {
		response.NextPageToken = page.Next.Encode()
	}

	c.JSON(http.StatusOK, response)
}

func productID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product ID"})
		return 0, false
	}
	return id, true
}
