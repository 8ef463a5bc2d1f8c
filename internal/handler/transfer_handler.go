package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shanegrouber/meow-bank-api/internal/middleware"
	"github.com/shanegrouber/meow-bank-api/internal/models"
)

// TransferService defines the transfer operations used by TransferHandler.
type TransferService interface {
	Create(ctx context.Context, fromAccountID, toAccountID string, amount decimal.Decimal) (*models.Transfer, error)
	Get(ctx context.Context, id string) (*models.Transfer, error)
}

type TransferHandler struct {
	transfers TransferService
}

func NewTransferHandler(transfers TransferService) *TransferHandler {
	return &TransferHandler{transfers: transfers}
}

type CreateTransferRequest struct {
	FromAccountID string  `json:"from_account_id" validate:"required,uuid4"`
	ToAccountID   string  `json:"to_account_id" validate:"required,uuid4"`
	Amount        float64 `json:"amount" validate:"required,gt=0"`
}

func (h *TransferHandler) CreateTransfer(c *gin.Context) {
	var req CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	transfer, err := h.transfers.Create(
		c.Request.Context(),
		req.FromAccountID,
		req.ToAccountID,
		decimal.NewFromFloat(req.Amount),
	)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, transfer)
}

func (h *TransferHandler) GetTransfer(c *gin.Context) {
	transferID := c.Param("transferId")
	if uuid.Validate(transferID) != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid transfer id")
		return
	}

	transfer, err := h.transfers.Get(c.Request.Context(), transferID)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, transfer)
}
