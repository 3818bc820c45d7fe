package domain

// PlanStatus toggles whether a plan can be sold.
type PlanStatus string

const (
	PlanActive   PlanStatus = "active"
	PlanDisabled PlanStatus = "disabled"
)

// ID prefixes of plans seeded from platform templates and of gym-authored plans.
const (
	DefaultPlanPrefix = "default_"
	CustomPlanPrefix  = "custom_"
)

// Plan is either a platform tariff template (GymID empty) or one of a gym's
// subscription plans. Price is in whole XOF.
type Plan struct {
	Base
	GymID        string     `json:"gymId,omitempty"`
	Name         string     `json:"name" validate:"required"`
	Price        int64      `json:"price" validate:"gte=0"`
	DurationDays int        `json:"duration" validate:"gte=1"`
	Benefits     string     `json:"benefits"`
	Status       PlanStatus `json:"status" validate:"oneof=active disabled"`
	IsDefault    bool       `json:"isDefault"`
}

func (p *Plan) IsActive() bool {
	return p.Status == PlanActive
}

// Toggled returns the opposite status.
func (s PlanStatus) Toggled() PlanStatus {
	if s == PlanActive {
		return PlanDisabled
	}
	return PlanActive
}
