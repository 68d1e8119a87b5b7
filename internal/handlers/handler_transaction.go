package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SscSPs/split_ledger/internal/apperrors"
	"github.com/SscSPs/split_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/split_ledger/internal/core/ports/services"
	"github.com/SscSPs/split_ledger/internal/dto"
	"github.com/SscSPs/split_ledger/internal/middleware"
)

// transactionHandler handles HTTP requests related to ledger transactions.
type transactionHandler struct {
	transactionService portssvc.TransactionSvcFacade
}

func newTransactionHandler(ts portssvc.TransactionSvcFacade) *transactionHandler {
	return &transactionHandler{
		transactionService: ts,
	}
}

// RegisterTransactionRoutes registers transaction routes and the per-account listing route.
func RegisterTransactionRoutes(rg *gin.RouterGroup, transactionService portssvc.TransactionSvcFacade) {
	h := newTransactionHandler(transactionService)

	transactions := rg.Group("/transactions")
	{
		transactions.POST("", h.createTransaction)
		transactions.GET("/:id", h.getTransaction)
		transactions.PATCH("/:id", h.updateTransaction)
		transactions.DELETE("/:id", h.deleteTransaction)
		transactions.PUT("/:id/splits", h.updateSplits)
		transactions.POST("/:id/status", h.updateStatus)
		transactions.GET("/:id/mirrors", h.listMirrors)
	}

	rg.GET("/accounts/:accountID/transactions", h.listTransactionsByAccount)
}

// requestOwner returns the authenticated owner, answering 401 when absent.
func requestOwner(c *gin.Context, logger *slog.Logger) (domain.UserID, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Code: string(apperrors.CodeUnauthorized), Error: "Unauthorized"})
		return "", false
	}
	return domain.UserID(userID), true
}

// createTransaction godoc
// @Summary Record a transaction
// @Description Records a split transaction against an account. Every transfer split creates a mirror transaction in its target account.
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   transaction body dto.CreateTransactionRequest true "Transaction details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid splits, account, category or request format"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to create transaction"
// @Security BearerAuth
// @Router /transactions [post]
func (h *transactionHandler) createTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}
	ownerID, ok := requestOwner(c, logger)
	if !ok {
		return
	}

	logger.Info("Received request to create transaction",
		slog.String("account_id", req.AccountID), slog.Int("splits", len(req.Splits)))

	tx, err := h.transactionService.CreateTransaction(c.Request.Context(), ownerID, req)
	if err != nil {
		respondError(c, logger, err, "Failed to create transaction")
		return
	}

	c.JSON(http.StatusCreated, dto.ToTransactionResponse(tx))
}

// getTransaction godoc
// @Summary Get a transaction by ID
// @Tags transactions
// @Produce  json
// @Param   id path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Transaction belongs to another user"
// @Failure 404 {object} dto.ErrorResponse "Transaction not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to retrieve transaction"
// @Security BearerAuth
// @Router /transactions/{id} [get]
func (h *transactionHandler) getTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	ownerID, ok := requestOwner(c, logger)
	if !ok {
		return
	}

	tx, err := h.transactionService.GetTransaction(c.Request.Context(), ownerID, domain.TransactionID(c.Param("id")))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve transaction")
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponse(tx))
}

// updateSplits godoc
// @Summary Replace the splits of a transaction
// @Description Replaces amount and splits atomically and synchronizes the mirrors of transfer splits.
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   id path string true "Transaction ID"
// @Param   splits body dto.UpdateSplitsRequest true "New amount and splits"
// @Success 200 {object} dto.TransactionResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid splits"
// @Failure 404 {object} dto.ErrorResponse "Transaction not found"
// @Failure 409 {object} dto.ErrorResponse "Version conflict"
// @Failure 422 {object} dto.ErrorResponse "Transaction is a mirror"
// @Security BearerAuth
// @Router /transactions/{id}/splits [put]
func (h *transactionHandler) updateSplits(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.UpdateSplitsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}
	ownerID, ok := requestOwner(c, logger)
	if !ok {
		return
	}

	tx, err := h.transactionService.UpdateSplits(c.Request.Context(), ownerID, domain.TransactionID(c.Param("id")), req)
	if err != nil {
		respondError(c, logger, err, "Failed to update splits")
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponse(tx))
}

// updateTransaction godoc
// @Summary Update descriptive fields of a transaction
// @Description Omitted fields are unchanged; an empty string clears a text field. Mirrors only accept postedDate.
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   id path string true "Transaction ID"
// @Param   fields body dto.UpdateTransactionRequest true "Fields to change"
// @Success 200 {object} dto.TransactionResponse
// @Failure 404 {object} dto.ErrorResponse "Transaction not found"
// @Failure 409 {object} dto.ErrorResponse "Version conflict"
// @Failure 422 {object} dto.ErrorResponse "Field cannot be changed on a mirror"
// @Security BearerAuth
// @Router /transactions/{id} [patch]
func (h *transactionHandler) updateTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}
	ownerID, ok := requestOwner(c, logger)
	if !ok {
		return
	}

	tx, err := h.transactionService.UpdateTransaction(c.Request.Context(), ownerID, domain.TransactionID(c.Param("id")), req)
	if err != nil {
		respondError(c, logger, err, "Failed to update transaction")
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponse(tx))
}

// updateStatus godoc
// @Summary Advance the status of a transaction
// @Description PENDING moves to CLEARED, CLEARED moves to RECONCILED.
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   id path string true "Transaction ID"
// @Param   status body dto.UpdateStatusRequest true "Target status"
// @Success 200 {object} dto.TransactionResponse
// @Failure 400 {object} dto.ErrorResponse "Unknown target status"
// @Failure 409 {object} dto.ErrorResponse "Illegal status transition"
// @Security BearerAuth
// @Router /transactions/{id}/status [post]
func (h *transactionHandler) updateStatus(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}
	ownerID, ok := requestOwner(c, logger)
	if !ok {
		return
	}

	tx, err := h.transactionService.UpdateStatus(c.Request.Context(), ownerID, domain.TransactionID(c.Param("id")), req)
	if err != nil {
		respondError(c, logger, err, "Failed to update transaction status")
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponse(tx))
}

// deleteTransaction godoc
// @Summary Delete a transaction
// @Description Deletes a source transaction together with all of its mirrors.
// @Tags transactions
// @Param   id path string true "Transaction ID"
// @Success 204 "No Content"
// @Failure 404 {object} dto.ErrorResponse "Transaction not found"
// @Failure 422 {object} dto.ErrorResponse "Transaction is a mirror"
// @Security BearerAuth
// @Router /transactions/{id} [delete]
func (h *transactionHandler) deleteTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	ownerID, ok := requestOwner(c, logger)
	if !ok {
		return
	}

	if err := h.transactionService.DeleteTransaction(c.Request.Context(), ownerID, domain.TransactionID(c.Param("id"))); err != nil {
		respondError(c, logger, err, "Failed to delete transaction")
		return
	}

	c.Status(http.StatusNoContent)
}

// listMirrors godoc
// @Summary List the mirrors of a transaction
// @Tags transactions
// @Produce  json
// @Param   id path string true "Source transaction ID"
// @Success 200 {array} dto.TransactionResponse
// @Failure 404 {object} dto.ErrorResponse "Transaction not found"
// @Security BearerAuth
// @Router /transactions/{id}/mirrors [get]
func (h *transactionHandler) listMirrors(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	ownerID, ok := requestOwner(c, logger)
	if !ok {
		return
	}

	mirrors, err := h.transactionService.GetMirrors(c.Request.Context(), ownerID, domain.TransactionID(c.Param("id")))
	if err != nil {
		respondError(c, logger, err, "Failed to list mirrors")
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponses(mirrors))
}

// listTransactionsByAccount godoc
// @Summary List transactions for an account
// @Description Retrieves a page of transactions, newest effective date first.
// @Tags transactions
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Param   limit query int false "Number of transactions to return"
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid query parameters"
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Security BearerAuth
// @Router /accounts/{accountID}/transactions [get]
func (h *transactionHandler) listTransactionsByAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, logger, err)
		return
	}
	ownerID, ok := requestOwner(c, logger)
	if !ok {
		return
	}

	accountID := domain.AccountID(c.Param("accountID"))
	resp, err := h.transactionService.ListTransactionsByAccount(c.Request.Context(), ownerID, accountID, params)
	if err != nil {
		respondError(c, logger, err, "Failed to list transactions")
		return
	}

	c.JSON(http.StatusOK, resp)
}
