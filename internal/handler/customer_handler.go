package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shanegrouber/meow-bank-api/internal/middleware"
	"github.com/shanegrouber/meow-bank-api/internal/models"
)

// CustomerService defines the customer operations used by CustomerHandler.
type CustomerService interface {
	Create(ctx context.Context, name string) (*models.Customer, error)
	Get(ctx context.Context, id string) (*models.CustomerView, error)
	GetWithAccounts(ctx context.Context, id string) (*models.CustomerWithAccountsView, error)
}

type CustomerHandler struct {
	customers CustomerService
}

func NewCustomerHandler(customers CustomerService) *CustomerHandler {
	return &CustomerHandler{customers: customers}
}

type CreateCustomerRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	var req CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	customer, err := h.customers.Create(c.Request.Context(), req.Name)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, customer)
}

func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	customerID := c.Param("customerId")
	if uuid.Validate(customerID) != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid customer id")
		return
	}

	view, err := h.customers.Get(c.Request.Context(), customerID)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *CustomerHandler) GetCustomerWithAccounts(c *gin.Context) {
	customerID := c.Param("customerId")
	if uuid.Validate(customerID) != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid customer id")
		return
	}

	view, err := h.customers.GetWithAccounts(c.Request.Context(), customerID)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}
