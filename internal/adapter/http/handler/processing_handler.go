package handler

import (
	"strings"

	"corebank/internal/adapter/http/dto"
	"corebank/internal/core/ports"
	"corebank/pkg/apperror"
	"corebank/pkg/response"

	"github.com/gin-gonic/gin"
)

// ProcessingHandler handles the transaction processing endpoint.
type ProcessingHandler struct {
	processingSvc ports.ProcessingService
}

// NewProcessingHandler creates a new ProcessingHandler.
func NewProcessingHandler(processingSvc ports.ProcessingService) *ProcessingHandler {
	return &ProcessingHandler{processingSvc: processingSvc}
}

// Process handles POST /api/v1/process. Domain rejections come back as a
// 200 with success=false; only infrastructure failures map to error codes.
func (h *ProcessingHandler) Process(c *gin.Context) {
	var req dto.ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	result, err := h.processingSvc.Process(c.Request.Context(), ports.ProcessRequest{
		CardNumber: req.CardNumber,
		PIN:        req.PIN,
		Amount:     req.Amount,
		Type:       strings.ToLower(strings.TrimSpace(req.Type)),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromProcessResult(result))
}
