// internal/interfaces/http/handlers/product.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/pharmacy-backend/internal/domain/inventory"
	"github.com/your-org/pharmacy-backend/internal/domain/product"
	"github.com/your-org/pharmacy-backend/internal/interfaces/http/middleware"
)

// ProductHandler handles catalog and batch endpoints
type ProductHandler struct {
	productService   *product.Service
	inventoryService *inventory.Service
	log              *logrus.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService *product.Service, inventoryService *inventory.Service, log *logrus.Logger) *ProductHandler {
	return &ProductHandler{
		productService:   productService,
		inventoryService: inventoryService,
		log:              log,
	}
}

// GetProducts handles GET /products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	var req product.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBadRequest(c, "Invalid query parameters")
		return
	}

	response, err := h.productService.List(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Products retrieved successfully", response)
}

// GetCategories handles GET /products/categories
func (h *ProductHandler) GetCategories(c *gin.Context) {
	categories, err := h.productService.Categories(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Categories retrieved successfully", categories)
}

// GetProduct handles GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	p, err := h.productService.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Product retrieved successfully", p)
}

// GetNextBatch handles GET /products/:id/next-batch
func (h *ProductHandler) GetNextBatch(c *gin.Context) {
	batch, err := h.inventoryService.NextBatch(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Batch selected", batch)
}

// GetMovements handles GET /products/:id/movements
func (h *ProductHandler) GetMovements(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	movements, err := h.inventoryService.Movements(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Stock movements retrieved successfully", movements)
}

// CreateProduct handles POST /products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req product.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request data")
		return
	}

	p, err := h.productService.CreateProduct(c.Request.Context(), middleware.ActorFromContext(c), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusCreated, "Product created successfully", p)
}

// UpdateProduct handles PUT /products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var req product.DetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request data")
		return
	}

	p, err := h.productService.UpdateProduct(c.Request.Context(), middleware.ActorFromContext(c), c.Param("id"), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Product updated successfully", p)
}

// DeleteProduct handles DELETE /products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	if err := h.productService.DeleteProduct(c.Request.Context(), middleware.ActorFromContext(c), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Product deleted successfully", nil)
}

// Restock handles POST /products/:id/batches
func (h *ProductHandler) Restock(c *gin.Context) {
	var req product.BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request data")
		return
	}

	batch, err := h.productService.Restock(c.Request.Context(), middleware.ActorFromContext(c), c.Param("id"), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusCreated, "Batch received successfully", batch)
}
