package sharedlib

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/adapt/core"
)

var (
	ErrCodeExists     = errors.New("category already exists")
	ErrCodeNotFound   = errors.New("category not found")
	ErrCourseExists   = errors.New("course already exists")
	ErrCourseNotFound = errors.New("course not found")
	ErrFileNotFound   = errors.New("file not found")
)

type (
	Repository interface {
		CreateCourseCode(ctx context.Context, cc CourseCode) (CourseCode, error)
		QueryAllCourseCodes(ctx context.Context) ([]CourseCode, error)
		// Name lookups in this domain are case-insensitive, anchored exact
		// matches. Deletion does not cascade to courses.
		DeleteCourseCodeByName(ctx context.Context, code string) error
		// CreateCourse carries the code-existence check within the write;
		// ErrCodeNotFound when the code does not resolve, ErrCourseExists on
		// a duplicate name under the code.
		CreateCourse(ctx context.Context, codeName string, course Course) (Course, error)
		QueryCoursesByCode(ctx context.Context, codeID string) ([]Course, error)
		// DeleteCourseByName distinguishes an unresolved code
		// (ErrCodeNotFound) from a missing course (ErrCourseNotFound).
		DeleteCourseByName(ctx context.Context, codeName, courseName string) error
		// CreateCourseFile carries the course-existence check within the
		// write; ErrCourseNotFound when the ref does not resolve.
		CreateCourseFile(ctx context.Context, cf CourseFile) (CourseFile, error)
		QueryCourseFiles(ctx context.Context, courseID string) ([]CourseFile, error)
		GetCourseFileByTitle(ctx context.Context, courseID, title string) (CourseFile, error)
		DeleteCourseFileByID(ctx context.Context, id string) error
	}

	Service interface {
		CourseCodes(ctx context.Context) ([]CourseCode, error)
		CreateCourseCode(ctx context.Context, nc NewCourseCode) (CourseCode, error)
		DeleteCourseCode(ctx context.Context, code string) error
		Courses(ctx context.Context, codeID string) ([]Course, error)
		CreateCourse(ctx context.Context, codeName string, nc NewCourse) (Course, error)
		DeleteCourse(ctx context.Context, codeName, courseName string) error
		Files(ctx context.Context, courseID string) ([]CourseFile, error)
		CreateFile(ctx context.Context, courseID string, nf NewCourseFile, up core.Upload) (CourseFile, error)
		DeleteFile(ctx context.Context, courseID, title string) error
	}

	service struct {
		repo  Repository
		media core.MediaService
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, media core.MediaService) Service {
	return &service{
		repo:  repo,
		media: media,
	}
}

func (svc *service) CourseCodes(ctx context.Context) ([]CourseCode, error) {
	return svc.repo.QueryAllCourseCodes(ctx)
}

func (svc *service) CreateCourseCode(ctx context.Context, nc NewCourseCode) (CourseCode, error) {
	return svc.repo.CreateCourseCode(ctx, CourseCode{Code: nc.Code})
}

func (svc *service) DeleteCourseCode(ctx context.Context, code string) error {
	return svc.repo.DeleteCourseCodeByName(ctx, code)
}

func (svc *service) Courses(ctx context.Context, codeID string) ([]Course, error) {
	return svc.repo.QueryCoursesByCode(ctx, codeID)
}

func (svc *service) CreateCourse(ctx context.Context, codeName string, nc NewCourse) (Course, error) {
	return svc.repo.CreateCourse(ctx, codeName, Course{Name: nc.Name})
}

func (svc *service) DeleteCourse(ctx context.Context, codeName, courseName string) error {
	return svc.repo.DeleteCourseByName(ctx, codeName, courseName)
}

func (svc *service) Files(ctx context.Context, courseID string) ([]CourseFile, error) {
	return svc.repo.QueryCourseFiles(ctx, courseID)
}

func (svc *service) CreateFile(ctx context.Context, courseID string, nf NewCourseFile, up core.Upload) (CourseFile, error) {
	att, err := svc.media.Upload(ctx, up)
	if err != nil {
		return CourseFile{}, err
	}
	cf := CourseFile{
		CourseID:   courseID,
		Title:      nf.Title,
		FileType:   up.ContentType,
		File:       &att,
		UploadedAt: time.Now().UTC(),
	}
	return svc.repo.CreateCourseFile(ctx, cf)
}

func (svc *service) DeleteFile(ctx context.Context, courseID, title string) error {
	cf, err := svc.repo.GetCourseFileByTitle(ctx, courseID, title)
	if err != nil {
		return err
	}
	if cf.File != nil {
		// best-effort: the record goes regardless
		_ = svc.media.Delete(ctx, cf.File.PublicID, cf.FileType)
	}
	return svc.repo.DeleteCourseFileByID(ctx, cf.ID)
}
