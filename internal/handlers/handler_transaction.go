package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/hishab-app/hishab_backend/internal/apperrors"
	"github.com/hishab-app/hishab_backend/internal/core/domain"
	portssvc "github.com/hishab-app/hishab_backend/internal/core/ports/services"
	"github.com/hishab-app/hishab_backend/internal/dto"
	"github.com/hishab-app/hishab_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// transactionHandler handles HTTP requests for one transaction kind. The
// expenses and payments groups share this handler, parameterized by kind.
type transactionHandler struct {
	kind               domain.TransactionKind
	transactionService portssvc.TransactionSvcFacade
	journalService     portssvc.JournalSvcFacade
}

// newTransactionHandler creates a new transactionHandler for the given kind.
func newTransactionHandler(kind domain.TransactionKind, ts portssvc.TransactionSvcFacade, js portssvc.JournalSvcFacade) *transactionHandler {
	return &transactionHandler{
		kind:               kind,
		transactionService: ts,
		journalService:     js,
	}
}

// registerTransactionRoutes registers the /expenses and /payments groups.
func registerTransactionRoutes(rg *gin.RouterGroup, transactionService portssvc.TransactionSvcFacade, journalService portssvc.JournalSvcFacade) {
	groups := map[string]domain.TransactionKind{
		"/expenses": domain.KindExpense,
		"/payments": domain.KindPayment,
	}
	for path, kind := range groups {
		h := newTransactionHandler(kind, transactionService, journalService)
		g := rg.Group(path)
		{
			g.POST("", h.createTransaction)
			g.GET("", h.listTransactions)
			g.GET("/:transactionID", h.getTransaction)
			g.PUT("/:transactionID", h.updateTransaction)
			g.DELETE("/:transactionID", h.deleteTransaction)
			g.GET("/:transactionID/journal-entry", h.getLinkedEntry)
		}
	}
}

// respondTransactionError maps service errors to HTTP responses shared by the
// create/update/delete paths.
func respondTransactionError(c *gin.Context, logger *slog.Logger, err error, action string) {
	switch {
	case errors.Is(err, apperrors.ErrMissingRate):
		// The whole state change was rolled back; the message names the pair
		// and date so the operator can record the rate and retry.
		logger.Warn("Posting rejected, no exchange rate resolvable", slog.String("error", err.Error()))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrPostingConflict):
		logger.Warn("Concurrent posting conflict", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrConflict):
		logger.Warn("Transaction state conflict", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Validation error", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Transaction not found", slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
	default:
		logger.Error("Failed to "+action+" transaction in service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action + " transaction"})
	}
}

// createTransaction godoc
// @Summary Record a new expense or payment
// @Description Validates and persists the transaction. A transaction arriving with status "paid" is posted to the journal in the same atomic unit; a missing exchange rate rejects the whole operation.
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   transaction body dto.CreateTransactionRequest true "Transaction details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 409 {object} map[string]string "Concurrent posting conflict"
// @Failure 422 {object} map[string]string "No exchange rate on or before the transaction date"
// @Failure 500 {object} map[string]string "Failed to create transaction"
// @Router /expenses [post]
func (h *transactionHandler) createTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateTransaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID := middleware.GetActorIDFromContext(c)
	logger = logger.With(slog.String("actor_id", actorID), slog.String("kind", string(h.kind)))

	txn, err := h.transactionService.CreateTransaction(c.Request.Context(), h.kind, req, actorID)
	if err != nil {
		respondTransactionError(c, logger, err, "create")
		return
	}

	logger.Info("Transaction created",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("transaction_number", txn.TransactionNumber),
		slog.String("status", string(txn.Status)),
	)
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

// getTransaction godoc
// @Summary Get a transaction by ID
// @Description Retrieves one expense or payment, including its denormalized posting results
// @Tags transactions
// @Produce  json
// @Param   transactionID path string true "Transaction ID (UUID)"
// @Success 200 {object} dto.TransactionResponse
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 500 {object} map[string]string "Failed to retrieve transaction"
// @Router /expenses/{transactionID} [get]
func (h *transactionHandler) getTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")
	logger = logger.With(slog.String("transaction_id", transactionID))

	txn, err := h.transactionService.GetTransactionByID(c.Request.Context(), transactionID)
	if err == nil && txn.Kind != h.kind {
		err = apperrors.ErrNotFound
	}
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Transaction not found")
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
		} else {
			logger.Error("Failed to get transaction from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve transaction"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// listTransactions godoc
// @Summary List transactions of one kind
// @Description Retrieves a token-paginated list of expenses or payments, newest first
// @Tags transactions
// @Produce  json
// @Param   status query string false "Filter by status (pending, paid, cancelled)"
// @Param   limit query int false "Max transactions to return (default 20)"
// @Param   nextToken query string false "Pagination token from a previous response"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 500 {object} map[string]string "Failed to list transactions"
// @Router /expenses [get]
func (h *transactionHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListTransactions", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.transactionService.ListTransactions(c.Request.Context(), h.kind, params)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to list transactions from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list transactions"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// updateTransaction godoc
// @Summary Update a transaction
// @Description Applies the changes and runs the journal state table: becoming paid posts an entry, leaving paid reverses it, and amount or currency edits on a paid transaction reverse and repost.
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   transactionID path string true "Transaction ID (UUID)"
// @Param   transaction body dto.UpdateTransactionRequest true "Fields to update"
// @Success 200 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid input or status transition"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 409 {object} map[string]string "Concurrent posting conflict"
// @Failure 422 {object} map[string]string "No exchange rate on or before the transaction date"
// @Failure 500 {object} map[string]string "Failed to update transaction"
// @Router /expenses/{transactionID} [put]
func (h *transactionHandler) updateTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")

	var req dto.UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateTransaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID := middleware.GetActorIDFromContext(c)
	logger = logger.With(slog.String("transaction_id", transactionID), slog.String("actor_id", actorID))

	txn, err := h.transactionService.UpdateTransaction(c.Request.Context(), transactionID, req, actorID)
	if err != nil {
		respondTransactionError(c, logger, err, "update")
		return
	}

	logger.Info("Transaction updated", slog.String("status", string(txn.Status)))
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// deleteTransaction godoc
// @Summary Delete a transaction
// @Description Deletes the transaction. A paid transaction's linked journal entry is reversed in the same atomic unit; deleting an already-deleted transaction is a no-op.
// @Tags transactions
// @Produce  json
// @Param   transactionID path string true "Transaction ID (UUID)"
// @Success 204 "Transaction deleted"
// @Failure 409 {object} map[string]string "Concurrent posting conflict"
// @Failure 500 {object} map[string]string "Failed to delete transaction"
// @Router /expenses/{transactionID} [delete]
func (h *transactionHandler) deleteTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")
	actorID := middleware.GetActorIDFromContext(c)
	logger = logger.With(slog.String("transaction_id", transactionID), slog.String("actor_id", actorID))

	if err := h.transactionService.DeleteTransaction(c.Request.Context(), transactionID, actorID); err != nil {
		respondTransactionError(c, logger, err, "delete")
		return
	}

	logger.Info("Transaction deleted")
	c.Status(http.StatusNoContent)
}

// getLinkedEntry godoc
// @Summary Get the active journal entry for a transaction
// @Description Returns the journal entry currently linked to the transaction, with its lines. 404 when the transaction was never posted or its newest link is a reversal.
// @Tags transactions
// @Produce  json
// @Param   transactionID path string true "Transaction ID (UUID)"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 404 {object} map[string]string "No active journal entry"
// @Failure 500 {object} map[string]string "Failed to retrieve journal entry"
// @Router /expenses/{transactionID}/journal-entry [get]
func (h *transactionHandler) getLinkedEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")
	logger = logger.With(slog.String("transaction_id", transactionID))

	entry, err := h.journalService.GetEntryBySource(c.Request.Context(), "transactions", transactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Info("No active journal entry for transaction")
			c.JSON(http.StatusNotFound, gin.H{"error": "No active journal entry for this transaction"})
		} else {
			logger.Error("Failed to get linked journal entry", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve journal entry"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}
