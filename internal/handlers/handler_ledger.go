package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finbooks/finbooks_app/internal/apperrors"
	portssvc "github.com/finbooks/finbooks_app/internal/core/ports/services"
	"github.com/finbooks/finbooks_app/internal/dto"
	"github.com/finbooks/finbooks_app/internal/middleware"
)

// ledgerHandler handles HTTP requests for the account ledger.
type ledgerHandler struct {
	journalService portssvc.JournalSvcFacade
}

// registerLedgerRoutes registers the per-account ledger route.
func registerLedgerRoutes(rg *gin.RouterGroup, journalService portssvc.JournalSvcFacade) {
	h := &ledgerHandler{journalService: journalService}

	rg.GET("/accounts/:id/ledger", h.listLedgerEntries)
}

// listLedgerEntries godoc
// @Summary List ledger entries for an account
// @Description Retrieves a token-paginated list of immutable ledger postings for one account, newest first
// @Tags ledger
// @Produce  json
// @Param   id path string true "Account ID"
// @Param   limit query int false "Limit number of results" default(20)
// @Param   nextToken query string false "Pagination token from a previous response"
// @Success 200 {object} dto.ListLedgerEntriesResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to list ledger entries"
// @Security BearerAuth
// @Router /accounts/{id}/ledger [get]
func (h *ledgerHandler) listLedgerEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("id")

	var params dto.ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	entries, nextToken, err := h.journalService.ListLedgerEntriesByAccount(c.Request.Context(), accountID, params)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		} else {
			logger.Error("Failed to list ledger entries from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list ledger entries"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ListLedgerEntriesResponse{Entries: dto.ToLedgerEntryResponses(entries), NextToken: nextToken})
}
