package handler

import (
	"corebank/internal/adapter/http/dto"
	"corebank/internal/core/ports"
	"corebank/pkg/apperror"
	"corebank/pkg/response"

	"github.com/gin-gonic/gin"
)

// CardHandler handles back-office card and transaction endpoints.
type CardHandler struct {
	querySvc   ports.QueryService
	accountSvc ports.AccountService
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(querySvc ports.QueryService, accountSvc ports.AccountService) *CardHandler {
	return &CardHandler{querySvc: querySvc, accountSvc: accountSvc}
}

// GetCard handles GET /api/v1/cards/:card_number.
func (h *CardHandler) GetCard(c *gin.Context) {
	cardNumber := c.Param("card_number")

	details, err := h.querySvc.GetCardDetails(c.Request.Context(), cardNumber)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromCardDetails(details))
}

// ListTransactions handles GET /api/v1/transactions.
// An optional card_number query parameter filters to one card.
func (h *CardHandler) ListTransactions(c *gin.Context) {
	cardNumber := c.Query("card_number")

	records, err := h.querySvc.ListTransactions(c.Request.Context(), cardNumber)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromTransactions(records))
}

// Provision handles POST /api/v1/cards.
func (h *CardHandler) Provision(c *gin.Context) {
	var req dto.ProvisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	// Holder name only; the PIN must reach the verifier untouched.
	req.HolderName = dto.Sanitize(req.HolderName)

	account, err := h.accountSvc.Provision(c.Request.Context(), ports.ProvisionRequest{
		CardNumber:     req.CardNumber,
		HolderName:     req.HolderName,
		PIN:            req.PIN,
		InitialBalance: req.InitialBalance,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.FromAccount(account))
}
