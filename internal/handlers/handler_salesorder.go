package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finbooks/finbooks_app/internal/apperrors"
	"github.com/finbooks/finbooks_app/internal/core/domain"
	portssvc "github.com/finbooks/finbooks_app/internal/core/ports/services"
	"github.com/finbooks/finbooks_app/internal/core/services"
	"github.com/finbooks/finbooks_app/internal/dto"
	"github.com/finbooks/finbooks_app/internal/middleware"
)

// salesOrderHandler handles HTTP requests related to sales orders.
type salesOrderHandler struct {
	documentService portssvc.DocumentSvcFacade
}

func newSalesOrderHandler(ds portssvc.DocumentSvcFacade) *salesOrderHandler {
	return &salesOrderHandler{documentService: ds}
}

// registerSalesOrderRoutes registers routes related to sales orders.
func registerSalesOrderRoutes(rg *gin.RouterGroup, documentService portssvc.DocumentSvcFacade) {
	h := newSalesOrderHandler(documentService)

	orders := rg.Group("/sales-orders")
	{
		orders.POST("", h.createSalesOrder)
		orders.GET("/:id", h.getSalesOrder)
		orders.GET("", h.listSalesOrders)
		orders.PATCH("/:id/status", h.updateSalesOrderStatus)
	}
}

// createSalesOrder godoc
// @Summary Create a new sales order
// @Description Creates a draft sales order; totals including shipping are computed server-side
// @Tags sales-orders
// @Accept  json
// @Produce  json
// @Param   order body dto.CreateSalesOrderRequest true "Sales order details"
// @Success 201 {object} dto.SalesOrderResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to create sales order"
// @Security BearerAuth
// @Router /sales-orders [post]
func (h *salesOrderHandler) createSalesOrder(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateSalesOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateSalesOrder", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	order, err := h.documentService.CreateSalesOrder(c.Request.Context(), req, creatorUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to create sales order in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create sales order"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToSalesOrderResponse(order))
}

// getSalesOrder godoc
// @Summary Get a sales order by ID
// @Description Retrieves a sales order with its line items
// @Tags sales-orders
// @Produce  json
// @Param   id path string true "Sales order ID"
// @Success 200 {object} dto.SalesOrderResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Sales order not found"
// @Failure 500 {object} map[string]string "Failed to retrieve sales order"
// @Security BearerAuth
// @Router /sales-orders/{id} [get]
func (h *salesOrderHandler) getSalesOrder(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	orderID := c.Param("id")

	order, err := h.documentService.GetSalesOrderByID(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Sales order not found"})
		} else {
			logger.Error("Failed to get sales order from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve sales order"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToSalesOrderResponse(order))
}

// listSalesOrders godoc
// @Summary List sales orders
// @Description Retrieves a token-paginated list of sales orders, newest first
// @Tags sales-orders
// @Produce  json
// @Param   limit query int false "Limit number of results" default(20)
// @Param   nextToken query string false "Pagination token from a previous response"
// @Success 200 {object} dto.ListSalesOrdersResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list sales orders"
// @Security BearerAuth
// @Router /sales-orders [get]
func (h *salesOrderHandler) listSalesOrders(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	orders, nextToken, err := h.documentService.ListSalesOrders(c.Request.Context(), params)
	if err != nil {
		logger.Error("Failed to list sales orders from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list sales orders"})
		return
	}

	responses := make([]dto.SalesOrderResponse, len(orders))
	for i := range orders {
		responses[i] = dto.ToSalesOrderResponse(&orders[i])
	}
	c.JSON(http.StatusOK, dto.ListSalesOrdersResponse{SalesOrders: responses, NextToken: nextToken})
}

// updateSalesOrderStatus godoc
// @Summary Transition a sales order's status
// @Description Applies a lifecycle transition (DRAFT->CONFIRMED/CANCELLED, CONFIRMED->FULFILLED/CANCELLED)
// @Tags sales-orders
// @Accept  json
// @Produce  json
// @Param   id path string true "Sales order ID"
// @Param   status body dto.UpdateStatusRequest true "Target status"
// @Success 200 {object} dto.SalesOrderResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Sales order not found"
// @Failure 409 {object} map[string]string "Invalid status transition"
// @Failure 500 {object} map[string]string "Failed to update sales order status"
// @Security BearerAuth
// @Router /sales-orders/{id}/status [patch]
func (h *salesOrderHandler) updateSalesOrderStatus(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	orderID := c.Param("id")

	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	order, err := h.documentService.UpdateSalesOrderStatus(c.Request.Context(), orderID, domain.SalesOrderStatus(req.Status), requestingUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Sales order not found"})
		} else if errors.Is(err, services.ErrInvalidTransition) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to update sales order status in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update sales order status"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToSalesOrderResponse(order))
}
