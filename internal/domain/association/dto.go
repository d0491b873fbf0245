package association

import "estatedesk-service/internal/domain/lead"

// CreateVisitRequest records a walk-in visit.
type CreateVisitRequest struct {
	Lead      lead.UpsertLeadInput `json:"lead" binding:"required"`
	ProjectID int64                `json:"project_id" binding:"required"`
}

// PretagRequest marks a lead as channel-partner sourced ahead of any visit.
type PretagRequest struct {
	Lead             lead.UpsertLeadInput `json:"lead" binding:"required"`
	ProjectID        int64                `json:"project_id" binding:"required"`
	ChannelPartnerID int64                `json:"channel_partner_id" binding:"required"`
}

// ScheduleVisitRequest books a future visit slot with an auto-assigned
// staff member.
type ScheduleVisitRequest struct {
	Lead       lead.UpsertLeadInput `json:"lead" binding:"required"`
	ProjectID  int64                `json:"project_id" binding:"required"`
	AssignedTo int64                `json:"assigned_to" binding:"required"`
}

// RevisitRequest creates a fresh association chained to a prior one.
type RevisitRequest struct {
	PreviousVisitID int64 `json:"previous_visit_id" binding:"required"`
}

// QueueVisitRequest is the front-desk intake path.
type QueueVisitRequest struct {
	Lead      lead.UpsertLeadInput `json:"lead" binding:"required"`
	ProjectID int64                `json:"project_id" binding:"required"`
}

// UpdateStatusRequest moves an association along the pipeline.
type UpdateStatusRequest struct {
	Status Status `json:"status" binding:"required"`
}

// ListFilters narrows association listings.
type ListFilters struct {
	ProjectID  int64   `form:"project_id"`
	Status     *Status `form:"status"`
	AssignedTo *int64  `form:"assigned_to"`
	Pretagged  *bool   `form:"pretagged"`
	Page       int     `form:"page" binding:"omitempty,min=1"`
	PageSize   int     `form:"page_size" binding:"omitempty,min=1,max=100"`
}
