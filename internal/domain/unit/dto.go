package unit

// BlockRequest places a timed hold on a unit.
type BlockRequest struct {
	DurationHours int `json:"duration_hours" binding:"required,min=1,max=168"`
}

// ListFilters narrows unit listings for a project.
type ListFilters struct {
	Tower  string  `form:"tower"`
	Floor  *int    `form:"floor"`
	Status *Status `form:"status"`
}
