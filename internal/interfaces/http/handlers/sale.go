// internal/interfaces/http/handlers/sale.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/pharmacy-backend/internal/domain/sale"
	"github.com/your-org/pharmacy-backend/internal/interfaces/http/middleware"
)

// SaleHandler handles point-of-sale endpoints
type SaleHandler struct {
	saleService *sale.Service
	log         *logrus.Logger
}

// NewSaleHandler creates a new sale handler
func NewSaleHandler(saleService *sale.Service, log *logrus.Logger) *SaleHandler {
	return &SaleHandler{
		saleService: saleService,
		log:         log,
	}
}

// ProcessSale handles POST /sales
func (h *SaleHandler) ProcessSale(c *gin.Context) {
	var req sale.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request data")
		return
	}

	s, err := h.saleService.ProcessSale(c.Request.Context(), middleware.ActorFromContext(c), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusCreated, "Sale completed successfully", s)
}

// GetSales handles GET /sales
func (h *SaleHandler) GetSales(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	sales, err := h.saleService.ListRecent(c.Request.Context(), limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Sales retrieved successfully", sales)
}

// GetSale handles GET /sales/:id
func (h *SaleHandler) GetSale(c *gin.Context) {
	s, err := h.saleService.GetSale(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Sale retrieved successfully", s)
}
