package sharedlib

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/adapt/core"
)

// CourseCode is the top-level grouping (course subject code).
// Code matching is case-insensitive throughout this domain.
type CourseCode struct {
	ID   string `json:"id" db:"id"`
	Code string `json:"category" db:"code"`
}

type Course struct {
	ID     string `json:"id" db:"id"`
	CodeID string `json:"code_id" db:"code_id"`
	Name   string `json:"name" db:"name"`
}

type CourseFile struct {
	ID         string           `json:"id" db:"id"`
	CourseID   string           `json:"course_id" db:"course_id"`
	Title      string           `json:"title" db:"title"`
	FileType   string           `json:"file_type" db:"file_type"` // stored MIME type
	File       *core.Attachment `json:"file,omitempty"`
	UploadedAt time.Time        `json:"uploaded_at" db:"uploaded_at"` // UTC
}

// NewCourseCode contains information needed to create a new CourseCode.
type NewCourseCode struct {
	Code string `json:"category" validate:"required"`
}

func (nc *NewCourseCode) Validate(validate *validator.Validate) error {
	nc.Code = core.CleanString(nc.Code)
	return validate.Struct(nc)
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Name string `json:"name" validate:"required"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	return validate.Struct(nc)
}

// NewCourseFile contains information needed to upload a new CourseFile.
// The file itself is mandatory in this domain.
type NewCourseFile struct {
	Title string `json:"title" validate:"required"`
}

func (nf *NewCourseFile) Validate(validate *validator.Validate) error {
	nf.Title = core.CleanString(nf.Title)
	return validate.Struct(nf)
}
