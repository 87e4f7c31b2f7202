// internal/interfaces/http/handlers/returns.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/pharmacy-backend/internal/domain/returns"
	"github.com/your-org/pharmacy-backend/internal/domain/sale"
	"github.com/your-org/pharmacy-backend/internal/interfaces/http/middleware"
)

// ReturnHandler handles customer return endpoints
type ReturnHandler struct {
	returnService *returns.Service
	saleService   *sale.Service
	log           *logrus.Logger
}

// NewReturnHandler creates a new return handler
func NewReturnHandler(returnService *returns.Service, saleService *sale.Service, log *logrus.Logger) *ReturnHandler {
	return &ReturnHandler{
		returnService: returnService,
		saleService:   saleService,
		log:           log,
	}
}

// ProcessReturn handles POST /returns
func (h *ReturnHandler) ProcessReturn(c *gin.Context) {
	var req returns.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request data")
		return
	}

	record, err := h.returnService.ProcessReturn(c.Request.Context(), middleware.ActorFromContext(c), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusCreated, "Return processed successfully", record)
}

// GetReturns handles GET /returns
func (h *ReturnHandler) GetReturns(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	records, err := h.returnService.List(c.Request.Context(), limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Returns retrieved successfully", records)
}

// SearchSales handles GET /returns/sales?query=
func (h *ReturnHandler) SearchSales(c *gin.Context) {
	sales, err := h.saleService.Search(c.Request.Context(), c.Query("query"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Sales retrieved successfully", sales)
}
