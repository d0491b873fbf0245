// internal/handlers/inventory/inventory_handler.go
package inventory

import (
	"net/http"
	"strconv"

	"estatedesk-service/internal/domain/booking"
	"estatedesk-service/internal/domain/unit"
	"estatedesk-service/internal/middleware"
	"estatedesk-service/internal/pkg/response"
	service "estatedesk-service/internal/service/inventory"

	"github.com/gin-gonic/gin"
)

type InventoryHandler struct {
	inventoryService *service.Service
}

func NewInventoryHandler(inventoryService *service.Service) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventoryService,
	}
}

// ListUnits retrieves a project's units with filters
func (h *InventoryHandler) ListUnits(c *gin.Context) {
	projectID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid project ID", err)
		return
	}

	var filters unit.ListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid query parameters", err)
		return
	}

	units, err := h.inventoryService.List(c.Request.Context(), projectID, &filters)
	if err != nil {
		response.FromError(c, "failed to list units", err)
		return
	}

	response.Success(c, http.StatusOK, "units retrieved", gin.H{
		"units": units,
		"count": len(units),
	})
}

// BlockUnit places a timed hold on a unit
func (h *InventoryHandler) BlockUnit(c *gin.Context) {
	actor := middleware.MustGetActor(c)

	unitID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid unit ID", err)
		return
	}

	var req unit.BlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.inventoryService.Block(c.Request.Context(), actor, unitID, req.DurationHours)
	if err != nil {
		response.FromError(c, "failed to block unit", err)
		return
	}

	response.Success(c, http.StatusOK, "unit blocked", result)
}

// UnblockUnit releases a hold
func (h *InventoryHandler) UnblockUnit(c *gin.Context) {
	actor := middleware.MustGetActor(c)

	unitID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid unit ID", err)
		return
	}

	result, err := h.inventoryService.Unblock(c.Request.Context(), actor, unitID)
	if err != nil {
		response.FromError(c, "failed to unblock unit", err)
		return
	}

	response.Success(c, http.StatusOK, "unit unblocked", result)
}

// CreateBooking converts a verified association into bookings
func (h *InventoryHandler) CreateBooking(c *gin.Context) {
	actor := middleware.MustGetActor(c)

	var req booking.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.inventoryService.Book(c.Request.Context(), actor, &req)
	if err != nil {
		response.FromError(c, "failed to create booking", err)
		return
	}

	response.Success(c, http.StatusCreated, "booking created", result)
}
