package maildir

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/adapt/core"
)

// Category is a named list of important email addresses.
type Category struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"category" db:"name"`
}

// Email is one directory entry: a display name and the address itself.
type Email struct {
	ID         string    `json:"id" db:"id"`
	CategoryID string    `json:"category_id" db:"category_id"`
	Name       string    `json:"name" db:"name"`
	Mail       string    `json:"mail" db:"mail"`
	SentBy     string    `json:"sent_by" db:"sent_by"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"` // UTC
}

// NewCategory contains information needed to create a new Category.
type NewCategory struct {
	Name string `json:"category" validate:"required"`
}

func (nc *NewCategory) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	return validate.Struct(nc)
}

// NewEmail contains information needed to add a directory entry.
type NewEmail struct {
	Name string `json:"name" validate:"required"`
	Mail string `json:"mail" validate:"required,email"`
}

func (ne *NewEmail) Validate(validate *validator.Validate) error {
	ne.Name = core.CleanString(ne.Name)
	ne.Mail = core.CleanString(ne.Mail, true /* lower */)
	return validate.Struct(ne)
}
