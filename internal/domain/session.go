package domain

import "time"

// Session is the persisted record of an authenticated user, credential stripped.
type Session struct {
	ID                 string    `json:"id" validate:"required"`
	UserID             string    `json:"userId" validate:"required"`
	GymID              string    `json:"gymId" validate:"required"`
	Role               Role      `json:"role" validate:"required"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	GymName            string    `json:"gymName"`
	MustChangePassword bool      `json:"mustChangePassword"`
	CreatedAt          time.Time `json:"createdAt"`
	ExpiresAt          time.Time `json:"expiresAt"`
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
