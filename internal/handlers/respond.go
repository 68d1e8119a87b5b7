package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SscSPs/split_ledger/internal/apperrors"
	"github.com/SscSPs/split_ledger/internal/dto"
)

// respondError writes the error body for err. Client errors carry the
// service message; internal failures are logged and answered generically.
func respondError(c *gin.Context, logger *slog.Logger, err error, internalMsg string) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code == apperrors.CodeInternal {
		logger.Error(internalMsg, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Code: string(apperrors.CodeInternal), Error: internalMsg})
		return
	}

	status := appErr.StatusCode
	if status == 0 {
		status = apperrors.HTTPStatus(appErr.Code)
	}
	logger.Warn("Request rejected", slog.String("code", string(appErr.Code)), slog.String("error", err.Error()))
	c.JSON(status, dto.ErrorResponse{Code: string(appErr.Code), Error: appErr.Message})
}

// respondBindError answers a request whose body or query failed to bind.
func respondBindError(c *gin.Context, logger *slog.Logger, err error) {
	logger.Warn("Failed to bind request", slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Code:  string(apperrors.CodeValidation),
		Error: "Invalid request format: " + err.Error(),
	})
}
