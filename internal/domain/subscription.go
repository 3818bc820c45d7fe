package domain

import "errors"

// Subscription binds a member to a plan for a window of calendar days. Plan
// name and price are a snapshot taken at creation.
type Subscription struct {
	Base
	MemberID   string `json:"memberId" validate:"required"`
	MemberName string `json:"memberName"`
	PlanID     string `json:"planId" validate:"required"`
	PlanName   string `json:"planName"`
	Price      int64  `json:"price" validate:"gte=0"`
	StartDate  Date   `json:"startDate"`
	EndDate    Date   `json:"endDate"`
	Status     string `json:"status"`
}

func (s *Subscription) check() error {
	if s.StartDate.IsZero() || s.EndDate.IsZero() {
		return errors.New("subscription start and end dates are required")
	}
	if s.EndDate.Before(s.StartDate) {
		return errors.New("subscription ends before it starts")
	}
	return nil
}

// SubscriptionEnd is start plus the plan duration in calendar days.
func SubscriptionEnd(start Date, durationDays int) Date {
	return start.AddDays(durationDays)
}

// EquipmentStatus is stored as entered; it has no transitions.
type EquipmentStatus string

const (
	EquipmentInService    EquipmentStatus = "in_service"
	EquipmentMaintenance  EquipmentStatus = "maintenance"
	EquipmentOutOfService EquipmentStatus = "out_of_service"
)

type Equipment struct {
	Base
	Name            string          `json:"name" validate:"required"`
	Quantity        int             `json:"quantity" validate:"gte=0"`
	Status          EquipmentStatus `json:"status" validate:"oneof=in_service maintenance out_of_service"`
	LastMaintenance Date            `json:"lastMaintenance"`
}

// Message is one entry of a gym conversation with a contact.
type Message struct {
	Base
	SenderID string `json:"senderId" validate:"required"`
	Text     string `json:"text" validate:"required"`
}
