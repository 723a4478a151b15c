package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-hod-api/internal/middleware"
	"github.com/noah-isme/sma-hod-api/internal/models"
	"github.com/noah-isme/sma-hod-api/pkg/response"
)

type financeService interface {
	Overview(ctx context.Context, term string) models.Sourced[models.FinancialOverview]
}

// FinanceHandler exposes the fee collection overview.
type FinanceHandler struct {
	service financeService
}

// NewFinanceHandler builds a finance handler.
func NewFinanceHandler(service financeService) *FinanceHandler {
	return &FinanceHandler{service: service}
}

// Overview godoc
// @Summary Fee collection overview
// @Tags Finance
// @Produce json
// @Param term query string false "Academic term"
// @Success 200 {object} response.Envelope
// @Router /finance/overview [get]
func (h *FinanceHandler) Overview(c *gin.Context) {
	sourced := h.service.Overview(c.Request.Context(), c.Query("term"))
	response.Sourced(c, http.StatusOK, sourced, nil, middleware.ExtractMeta(c))
}
