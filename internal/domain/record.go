package domain

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Base carries the identity fields shared by every stored record.
type Base struct {
	ID        string    `json:"id" validate:"required"`
	CreatedAt time.Time `json:"createdAt"`
}

func (b *Base) GetID() string            { return b.ID }
func (b *Base) SetID(id string)          { b.ID = id }
func (b *Base) SetCreatedAt(t time.Time) { b.CreatedAt = t }
func (b *Base) GetCreatedAt() time.Time  { return b.CreatedAt }

var validate = validator.New()

// crossChecker is implemented by records with rules struct tags cannot express.
type crossChecker interface {
	check() error
}

// Validate checks a record against its struct tags and cross-field rules.
// Repositories call it on every record they read or write.
func Validate(rec any) error {
	if err := validate.Struct(rec); err != nil {
		return err
	}
	if c, ok := rec.(crossChecker); ok {
		return c.check()
	}
	return nil
}

// ValidEmail applies the same rule as the email struct tag.
func ValidEmail(s string) bool {
	return validate.Var(s, "required,email") == nil
}
