package lead

// UpsertLeadInput carries the contact details captured at any entry point.
type UpsertLeadInput struct {
	Phone    string `json:"phone" binding:"required,max=20"`
	FullName string `json:"full_name" binding:"max=255"`
	Email    string `json:"email" binding:"omitempty,email,max=255"`
	Source   string `json:"source" binding:"max=64"`
}
