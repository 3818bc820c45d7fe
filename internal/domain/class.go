package domain

import "errors"

// ClassType distinguishes group sessions from one-to-one coaching.
type ClassType string

const (
	ClassGroup      ClassType = "group"
	ClassIndividual ClassType = "individual"
)

// Class is a scheduled session with a fixed capacity.
type Class struct {
	Base
	Name      string    `json:"name" validate:"required"`
	Type      ClassType `json:"type" validate:"oneof=group individual"`
	CoachID   string    `json:"coachId"`
	CoachName string    `json:"coachName"`
	Date      Date      `json:"date"`
	Time      string    `json:"time" validate:"required,datetime=15:04"`
	Capacity  int       `json:"maxParticipants" validate:"gte=1"`
	Enrolled  int       `json:"participants" validate:"gte=0,ltefield=Capacity"`
}

func (c *Class) check() error {
	if c.Date.IsZero() {
		return errors.New("class date is required")
	}
	return nil
}

// Full reports whether no seat is left.
func (c *Class) Full() bool {
	return c.Enrolled >= c.Capacity
}

// StartsAt orders classes by day then by time of day.
func (c *Class) StartsAt() string {
	return c.Date.String() + " " + c.Time
}
