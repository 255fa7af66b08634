package lostfound

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/adapt/core"
)

// Message statuses
const (
	StatusLost  = "lost"
	StatusFound = "found"
)

// Place is a physical location messages are grouped under.
type Place struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"place" db:"name"`
}

type Message struct {
	ID        string           `json:"id" db:"id"`
	PlaceID   string           `json:"place_id" db:"place_id"`
	Text      string           `json:"text" db:"text"`
	Status    string           `json:"status" db:"status"` // lost | found
	File      *core.Attachment `json:"file,omitempty"`
	UserID    string           `json:"user_id" db:"user_id"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"` // UTC
}

type Reply struct {
	ID        string           `json:"id" db:"id"`
	MessageID string           `json:"message_id" db:"message_id"`
	Text      string           `json:"text" db:"text"`
	File      *core.Attachment `json:"file,omitempty"`
	SenderID  string           `json:"sender_id" db:"sender_id"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"` // UTC
}

// ReplyEvent is the broadcast payload for a new Reply.
type ReplyEvent struct {
	MessageID string `json:"message_id"`
	NewReply  Reply  `json:"new_reply"`
}

// NewPlace contains information needed to create a new Place.
type NewPlace struct {
	Name string `json:"place" validate:"required"`
}

func (np *NewPlace) Validate(validate *validator.Validate) error {
	np.Name = core.CleanString(np.Name)
	return validate.Struct(np)
}

// NewMessage contains information needed to post a lost or found Message.
// Text may only be empty when a file is attached.
type NewMessage struct {
	Text string `json:"text"`
}

func (nm *NewMessage) Validate(validate *validator.Validate, hasFile bool) error {
	nm.Text = core.CleanString(nm.Text)
	if nm.Text == "" && !hasFile {
		return core.NewValidationError(nil, core.FieldError{Field: "text", Error: "this field is required"})
	}
	return validate.Struct(nm)
}

// NewReply contains information needed to post a Reply.
type NewReply struct {
	MessageID string `json:"message_id" validate:"required"`
	Text      string `json:"text"`
}

func (nr *NewReply) Validate(validate *validator.Validate, hasFile bool) error {
	nr.Text = core.CleanString(nr.Text)
	if nr.Text == "" && !hasFile {
		return core.NewValidationError(nil, core.FieldError{Field: "text", Error: "this field is required"})
	}
	return validate.Struct(nr)
}
