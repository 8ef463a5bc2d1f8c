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

// AccountService defines the account operations used by AccountHandler.
type AccountService interface {
	Create(ctx context.Context, customerID string, initialDeposit decimal.Decimal) (*models.AccountView, error)
	Get(ctx context.Context, id string) (*models.AccountView, error)
	GetWithTransfers(ctx context.Context, id string) (*models.AccountWithTransfersView, error)
}

type AccountHandler struct {
	accounts AccountService
}

func NewAccountHandler(accounts AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

type CreateAccountRequest struct {
	CustomerID     string   `json:"customer_id" validate:"required,uuid4"`
	InitialDeposit *float64 `json:"initial_deposit" validate:"required,gte=0"`
}

func (h *AccountHandler) CreateAccount(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	view, err := h.accounts.Create(c.Request.Context(), req.CustomerID, decimal.NewFromFloat(*req.InitialDeposit))
	if err != nil {
		respondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, view)
}

func (h *AccountHandler) GetAccount(c *gin.Context) {
	accountID := c.Param("accountId")
	if uuid.Validate(accountID) != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid account id")
		return
	}

	view, err := h.accounts.Get(c.Request.Context(), accountID)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *AccountHandler) GetAccountWithTransfers(c *gin.Context) {
	accountID := c.Param("accountId")
	if uuid.Validate(accountID) != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid account id")
		return
	}

	view, err := h.accounts.GetWithTransfers(c.Request.Context(), accountID)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}
