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

// quoteHandler handles HTTP requests related to quotes.
type quoteHandler struct {
	documentService portssvc.DocumentSvcFacade
}

func newQuoteHandler(ds portssvc.DocumentSvcFacade) *quoteHandler {
	return &quoteHandler{documentService: ds}
}

// registerQuoteRoutes registers routes related to quotes.
func registerQuoteRoutes(rg *gin.RouterGroup, documentService portssvc.DocumentSvcFacade) {
	h := newQuoteHandler(documentService)

	quotes := rg.Group("/quotes")
	{
		quotes.POST("", h.createQuote)
		quotes.GET("/:id", h.getQuote)
		quotes.GET("", h.listQuotes)
		quotes.PATCH("/:id/status", h.updateQuoteStatus)
	}
}

// createQuote godoc
// @Summary Create a new quote
// @Description Creates a draft quote; line and document totals are computed server-side
// @Tags quotes
// @Accept  json
// @Produce  json
// @Param   quote body dto.CreateQuoteRequest true "Quote details"
// @Success 201 {object} dto.QuoteResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to create quote"
// @Security BearerAuth
// @Router /quotes [post]
func (h *quoteHandler) createQuote(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateQuote", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	quote, err := h.documentService.CreateQuote(c.Request.Context(), req, creatorUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to create quote in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create quote"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToQuoteResponse(quote))
}

// getQuote godoc
// @Summary Get a quote by ID
// @Description Retrieves a quote with its line items
// @Tags quotes
// @Produce  json
// @Param   id path string true "Quote ID"
// @Success 200 {object} dto.QuoteResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Quote not found"
// @Failure 500 {object} map[string]string "Failed to retrieve quote"
// @Security BearerAuth
// @Router /quotes/{id} [get]
func (h *quoteHandler) getQuote(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	quoteID := c.Param("id")

	quote, err := h.documentService.GetQuoteByID(c.Request.Context(), quoteID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Quote not found"})
		} else {
			logger.Error("Failed to get quote from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve quote"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToQuoteResponse(quote))
}

// listQuotes godoc
// @Summary List quotes
// @Description Retrieves a token-paginated list of quotes, newest first
// @Tags quotes
// @Produce  json
// @Param   limit query int false "Limit number of results" default(20)
// @Param   nextToken query string false "Pagination token from a previous response"
// @Success 200 {object} dto.ListQuotesResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list quotes"
// @Security BearerAuth
// @Router /quotes [get]
func (h *quoteHandler) listQuotes(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	quotes, nextToken, err := h.documentService.ListQuotes(c.Request.Context(), params)
	if err != nil {
		logger.Error("Failed to list quotes from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list quotes"})
		return
	}

	responses := make([]dto.QuoteResponse, len(quotes))
	for i := range quotes {
		responses[i] = dto.ToQuoteResponse(&quotes[i])
	}
	c.JSON(http.StatusOK, dto.ListQuotesResponse{Quotes: responses, NextToken: nextToken})
}

// updateQuoteStatus godoc
// @Summary Transition a quote's status
// @Description Applies a lifecycle transition (DRAFT->SENT, SENT->ACCEPTED/DECLINED/EXPIRED)
// @Tags quotes
// @Accept  json
// @Produce  json
// @Param   id path string true "Quote ID"
// @Param   status body dto.UpdateStatusRequest true "Target status"
// @Success 200 {object} dto.QuoteResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Quote not found"
// @Failure 409 {object} map[string]string "Invalid status transition"
// @Failure 500 {object} map[string]string "Failed to update quote status"
// @Security BearerAuth
// @Router /quotes/{id}/status [patch]
func (h *quoteHandler) updateQuoteStatus(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	quoteID := c.Param("id")

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

	quote, err := h.documentService.UpdateQuoteStatus(c.Request.Context(), quoteID, domain.QuoteStatus(req.Status), requestingUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Quote not found"})
		} else if errors.Is(err, services.ErrInvalidTransition) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to update quote status in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update quote status"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToQuoteResponse(quote))
}
