package domain

// MemberStatus of a gym member account.
type MemberStatus string

const (
	MemberActive    MemberStatus = "active"
	MemberInactive  MemberStatus = "inactive"
	MemberSuspended MemberStatus = "suspended"
)

// Member is a client of exactly one gym.
type Member struct {
	Base
	Name               string       `json:"name" validate:"required"`
	Email              string       `json:"email" validate:"required,email"`
	Phone              string       `json:"phone"`
	PasswordHash       string       `json:"passwordHash,omitempty" validate:"required"`
	Status             MemberStatus `json:"status" validate:"oneof=active inactive suspended"`
	MustChangePassword bool         `json:"mustChangePassword"`
}

// Coach belongs to one gym. Classes reference coaches by ID only.
type Coach struct {
	Base
	Name        string   `json:"name" validate:"required"`
	Email       string   `json:"email" validate:"omitempty,email"`
	Phone       string   `json:"phone"`
	Specialties []string `json:"specialties"`
}
