package booking

// CreateRequest converts a verified association into bookings on one or
// more units. The operation is atomic: if any unit fails its availability
// check nothing is committed.
type CreateRequest struct {
	AssociationID int64   `json:"association_id" binding:"required"`
	UnitIDs       []int64 `json:"unit_ids" binding:"required,min=1"`
	TotalPrice    float64 `json:"total_price" binding:"required,gt=0"`
	TokenAmount   float64 `json:"token_amount" binding:"min=0"`
	DownPayment   float64 `json:"down_payment" binding:"min=0"`
	PaymentMode   string  `json:"payment_mode" binding:"max=32"`
	PaymentRef    string  `json:"payment_ref" binding:"max=64"`
}

// CreateResult reports the created group.
type CreateResult struct {
	GroupRef string     `json:"group_ref"`
	Bookings []*Booking `json:"bookings"`
}
