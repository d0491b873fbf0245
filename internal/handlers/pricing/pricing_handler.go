// internal/handlers/pricing/pricing_handler.go
package pricing

import (
	"net/http"
	"strconv"

	"estatedesk-service/internal/pkg/response"
	service "estatedesk-service/internal/service/inventory"

	"github.com/gin-gonic/gin"
)

type PricingHandler struct {
	inventoryService *service.Service
}

func NewPricingHandler(inventoryService *service.Service) *PricingHandler {
	return &PricingHandler{
		inventoryService: inventoryService,
	}
}

// Quote computes the full cost breakdown for a unit without touching any
// state, so staff can compare units during a negotiation
func (h *PricingHandler) Quote(c *gin.Context) {
	unitIDStr := c.Query("unit_id")
	unitID, err := strconv.ParseInt(unitIDStr, 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid unit ID", err)
		return
	}

	includeParking := c.DefaultQuery("include_parking", "false") == "true"

	breakdown, err := h.inventoryService.Quote(c.Request.Context(), unitID, includeParking)
	if err != nil {
		response.FromError(c, "failed to compute quote", err)
		return
	}

	response.Success(c, http.StatusOK, "quote computed", breakdown)
}
