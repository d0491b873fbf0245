// internal/handlers/association/association_handler.go
package association

import (
	"net/http"
	"strconv"

	"estatedesk-service/internal/domain/association"
	"estatedesk-service/internal/middleware"
	"estatedesk-service/internal/pkg/response"
	service "estatedesk-service/internal/service/association"

	"github.com/gin-gonic/gin"
)

type AssociationHandler struct {
	associationService *service.Service
}

func NewAssociationHandler(associationService *service.Service) *AssociationHandler {
	return &AssociationHandler{
		associationService: associationService,
	}
}

// CreateVisit records a walk-in visit
func (h *AssociationHandler) CreateVisit(c *gin.Context) {
	actor := middleware.MustGetActor(c)

	var req association.CreateVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.associationService.CreateVisit(c.Request.Context(), actor, &req)
	if err != nil {
		response.FromError(c, "failed to create visit", err)
		return
	}

	response.Success(c, http.StatusCreated, "visit created", result)
}

// Pretag marks a lead as channel-partner sourced
func (h *AssociationHandler) Pretag(c *gin.Context) {
	actor := middleware.MustGetActor(c)

	var req association.PretagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.associationService.Pretag(c.Request.Context(), actor, &req)
	if err != nil {
		response.FromError(c, "failed to pretag lead", err)
		return
	}

	response.Success(c, http.StatusCreated, "lead pretagged", result)
}

// ScheduleVisit books a future visit slot
func (h *AssociationHandler) ScheduleVisit(c *gin.Context) {
	actor := middleware.MustGetActor(c)

	var req association.ScheduleVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.associationService.ScheduleVisit(c.Request.Context(), actor, &req)
	if err != nil {
		response.FromError(c, "failed to schedule visit", err)
		return
	}

	response.Success(c, http.StatusCreated, "visit scheduled", result)
}

// Revisit opens a fresh association chained to a prior one
func (h *AssociationHandler) Revisit(c *gin.Context) {
	actor := middleware.MustGetActor(c)

	var req association.RevisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.associationService.Revisit(c.Request.Context(), actor, &req)
	if err != nil {
		response.FromError(c, "failed to record revisit", err)
		return
	}

	response.Success(c, http.StatusCreated, "revisit recorded", result)
}

// QueueVisit is the front-desk intake path
func (h *AssociationHandler) QueueVisit(c *gin.Context) {
	actor := middleware.MustGetActor(c)

	var req association.QueueVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.associationService.QueueVisit(c.Request.Context(), actor, &req)
	if err != nil {
		response.FromError(c, "failed to queue visit", err)
		return
	}

	response.Success(c, http.StatusCreated, "visit queued", result)
}

// PromoteQueued claims a queued visit
func (h *AssociationHandler) PromoteQueued(c *gin.Context) {
	actor := middleware.MustGetActor(c)

	id, err := paramID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid association ID", err)
		return
	}

	result, err := h.associationService.PromoteQueued(c.Request.Context(), actor, id)
	if err != nil {
		response.FromError(c, "failed to promote queued visit", err)
		return
	}

	response.Success(c, http.StatusOK, "queued visit promoted", result)
}

// UpdateStatus moves an association along the pipeline
func (h *AssociationHandler) UpdateStatus(c *gin.Context) {
	actor := middleware.MustGetActor(c)

	id, err := paramID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid association ID", err)
		return
	}

	var req association.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.associationService.UpdateStatus(c.Request.Context(), actor, id, req.Status)
	if err != nil {
		response.FromError(c, "failed to update status", err)
		return
	}

	response.Success(c, http.StatusOK, "status updated", result)
}

// OverrideStatus is the administrative escape hatch
func (h *AssociationHandler) OverrideStatus(c *gin.Context) {
	actor := middleware.MustGetActor(c)

	id, err := paramID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid association ID", err)
		return
	}

	var req association.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.associationService.OverrideStatus(c.Request.Context(), actor, id, req.Status)
	if err != nil {
		response.FromError(c, "failed to override status", err)
		return
	}

	response.Success(c, http.StatusOK, "status overridden", result)
}

// GetAssociation retrieves an association by ID
func (h *AssociationHandler) GetAssociation(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid association ID", err)
		return
	}

	result, err := h.associationService.FindByID(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, "association not found", err)
		return
	}

	response.Success(c, http.StatusOK, "association retrieved", result)
}

// ListAssociations retrieves associations with filters
func (h *AssociationHandler) ListAssociations(c *gin.Context) {
	var filters association.ListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid query parameters", err)
		return
	}

	results, err := h.associationService.List(c.Request.Context(), &filters)
	if err != nil {
		response.FromError(c, "failed to list associations", err)
		return
	}

	response.Success(c, http.StatusOK, "associations retrieved", gin.H{
		"associations": results,
		"count":        len(results),
	})
}

func paramID(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
