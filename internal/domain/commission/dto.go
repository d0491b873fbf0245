package commission

// BulkApproveRequest approves a batch; entries not pending when processed
// are skipped, never aborting the batch.
type BulkApproveRequest struct {
	CommissionIDs []int64 `json:"commission_ids" binding:"required,min=1"`
}

// BulkApproveResult reports what actually happened per entry.
type BulkApproveResult struct {
	Approved []int64 `json:"approved"`
	Skipped  []int64 `json:"skipped"`
}

// ListFilters narrows commission listings.
type ListFilters struct {
	ProjectID int64   `form:"project_id"`
	StaffID   *int64  `form:"staff_id"`
	Status    *Status `form:"status"`
	Page      int     `form:"page" binding:"omitempty,min=1"`
	PageSize  int     `form:"page_size" binding:"omitempty,min=1,max=100"`
}
