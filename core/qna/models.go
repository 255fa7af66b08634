package qna

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/adapt/core"
)

type Category struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

type Question struct {
	ID         string           `json:"id" db:"id"`
	CategoryID string           `json:"category_id" db:"category_id"`
	Text       string           `json:"text" db:"text"`
	File       *core.Attachment `json:"file,omitempty"`
	UserID     string           `json:"user_id" db:"user_id"`
	CreatedAt  time.Time        `json:"created_at" db:"created_at"` // UTC
}

type Answer struct {
	ID         string           `json:"id" db:"id"`
	QuestionID string           `json:"question_id" db:"question_id"`
	Category   string           `json:"category" db:"category"` // category name the answer was posted under
	Text       string           `json:"text" db:"text"`
	File       *core.Attachment `json:"file,omitempty"`
	SenderID   string           `json:"sender_id" db:"sender_id"`
	CreatedAt  time.Time        `json:"created_at" db:"created_at"` // UTC
}

// Broadcast payloads.
type (
	QuestionEvent struct {
		Question
		Category string `json:"category"`
	}

	AnswerEvent struct {
		QuestionID string `json:"question_id"`
		NewAnswer  Answer `json:"new_answer"`
	}
)

// NewCategory contains information needed to create a new Category.
type NewCategory struct {
	Name string `json:"category" validate:"required"`
}

func (nc *NewCategory) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	return validate.Struct(nc)
}

// NewQuestion contains information needed to post a new Question.
// Text may only be empty when a file is attached.
type NewQuestion struct {
	Text string `json:"text"`
}

func (nq *NewQuestion) Validate(validate *validator.Validate, hasFile bool) error {
	nq.Text = core.CleanString(nq.Text)
	if nq.Text == "" && !hasFile {
		return core.NewValidationError(nil, core.FieldError{Field: "text", Error: "this field is required"})
	}
	return validate.Struct(nq)
}

// NewAnswer contains information needed to post a new Answer.
type NewAnswer struct {
	QuestionID string `json:"question_id" validate:"required"`
	Text       string `json:"text"`
}

func (na *NewAnswer) Validate(validate *validator.Validate, hasFile bool) error {
	na.Text = core.CleanString(na.Text)
	if na.Text == "" && !hasFile {
		return core.NewValidationError(nil, core.FieldError{Field: "text", Error: "this field is required"})
	}
	return validate.Struct(na)
}
