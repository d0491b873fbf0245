// internal/handlers/commission/commission_handler.go
package commission

import (
	"net/http"
	"strconv"

	"estatedesk-service/internal/domain/commission"
	"estatedesk-service/internal/middleware"
	"estatedesk-service/internal/pkg/response"
	service "estatedesk-service/internal/service/commission"

	"github.com/gin-gonic/gin"
)

type CommissionHandler struct {
	commissionService *service.Service
}

func NewCommissionHandler(commissionService *service.Service) *CommissionHandler {
	return &CommissionHandler{
		commissionService: commissionService,
	}
}

// ListCommissions retrieves commissions with filters
func (h *CommissionHandler) ListCommissions(c *gin.Context) {
	var filters commission.ListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid query parameters", err)
		return
	}

	results, err := h.commissionService.List(c.Request.Context(), &filters)
	if err != nil {
		response.FromError(c, "failed to list commissions", err)
		return
	}

	response.Success(c, http.StatusOK, "commissions retrieved", gin.H{
		"commissions": results,
		"count":       len(results),
	})
}

// ApproveCommission moves one commission pending to approved
func (h *CommissionHandler) ApproveCommission(c *gin.Context) {
	actor := middleware.MustGetActor(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid commission ID", err)
		return
	}

	result, err := h.commissionService.Approve(c.Request.Context(), actor, id)
	if err != nil {
		response.FromError(c, "failed to approve commission", err)
		return
	}

	response.Success(c, http.StatusOK, "commission approved", result)
}

// PayCommission moves one commission approved to paid
func (h *CommissionHandler) PayCommission(c *gin.Context) {
	actor := middleware.MustGetActor(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid commission ID", err)
		return
	}

	result, err := h.commissionService.MarkPaid(c.Request.Context(), actor, id)
	if err != nil {
		response.FromError(c, "failed to mark commission paid", err)
		return
	}

	response.Success(c, http.StatusOK, "commission paid", result)
}

// BulkApprove approves a batch of pending commissions
func (h *CommissionHandler) BulkApprove(c *gin.Context) {
	actor := middleware.MustGetActor(c)

	var req commission.BulkApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.commissionService.BulkApprove(c.Request.Context(), actor, req.CommissionIDs)
	if err != nil {
		response.FromError(c, "failed to bulk approve commissions", err)
		return
	}

	response.Success(c, http.StatusOK, "bulk approval processed", result)
}
