package domain

// GymStatus is the lifecycle state of a tenant.
type GymStatus string

const (
	GymActive   GymStatus = "active"
	GymDisabled GymStatus = "disabled"
)

// Gym is a tenant together with its administrator account. The roster of all
// gyms lives under the platform key; the gym's ID is also its tenant ID.
type Gym struct {
	Base
	GymName   string `json:"gymName" validate:"required"`
	AdminName string `json:"adminName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone"`
	// PasswordHash is persisted with the record but never leaves the API.
	PasswordHash        string    `json:"passwordHash,omitempty" validate:"required"`
	PlanID              string    `json:"planId"`
	SubscriptionEndDate Date      `json:"subscriptionEndDate"`
	Status              GymStatus `json:"status" validate:"oneof=active disabled"`
}

func (g *Gym) IsDisabled() bool {
	return g.Status == GymDisabled
}
