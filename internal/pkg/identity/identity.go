package identity

// Role is the closed set of staff roles the engine understands. Role
// classification comes from the identity provider; user management itself
// lives outside this service.
type Role string

const (
	RoleTelecaller      Role = "telecaller"
	RoleSourcingManager Role = "sourcing_manager"
	RoleClosingManager  Role = "closing_manager"
	RoleFrontDesk       Role = "front_desk"
	RoleAdmin           Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleTelecaller, RoleSourcingManager, RoleClosingManager, RoleFrontDesk, RoleAdmin:
		return true
	}
	return false
}

// IsClosing reports whether the role closes sales on site. Closing roles
// claim queued visits and self-assign associations they verify.
func (r Role) IsClosing() bool {
	return r == RoleClosingManager || r == RoleAdmin
}

// Capability names an action a role may perform.
type Capability string

const (
	CapVerifyOTP         Capability = "verify_otp"
	CapPromoteQueued     Capability = "promote_queued"
	CapBlockUnit         Capability = "block_unit"
	CapBookUnit          Capability = "book_unit"
	CapApproveCommission Capability = "approve_commission"
	CapPayCommission     Capability = "pay_commission"
	CapOverrideStatus    Capability = "override_status"
	CapManageInventory   Capability = "manage_inventory"
	CapQueueVisit        Capability = "queue_visit"
)

var capabilities = map[Role]map[Capability]bool{
	RoleTelecaller: {
		CapVerifyOTP: true,
	},
	RoleSourcingManager: {
		CapVerifyOTP: true,
		CapBlockUnit: true,
	},
	RoleClosingManager: {
		CapVerifyOTP:     true,
		CapPromoteQueued: true,
		CapBlockUnit:     true,
		CapBookUnit:      true,
	},
	RoleFrontDesk: {
		CapQueueVisit: true,
	},
	RoleAdmin: {
		CapVerifyOTP:         true,
		CapPromoteQueued:     true,
		CapBlockUnit:         true,
		CapBookUnit:          true,
		CapApproveCommission: true,
		CapPayCommission:     true,
		CapOverrideStatus:    true,
		CapManageInventory:   true,
		CapQueueVisit:        true,
	},
}

// Can is the single capability lookup consumed by services instead of
// scattering role string checks through business logic.
func Can(r Role, cap Capability) bool {
	return capabilities[r][cap]
}

// Actor is the authenticated staff member executing a request.
type Actor struct {
	StaffID  int64   `json:"staff_id"`
	Role     Role    `json:"role"`
	Projects []int64 `json:"projects"`
}

// AssignedTo reports whether the actor is assigned to the given project.
func (a Actor) AssignedTo(projectID int64) bool {
	for _, p := range a.Projects {
		if p == projectID {
			return true
		}
	}
	return false
}
