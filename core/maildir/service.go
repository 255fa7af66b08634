package maildir

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var (
	ErrCategoryExists   = errors.New("category already exists")
	ErrCategoryNotFound = errors.New("category not found")
	ErrEmailNotFound    = errors.New("email not found")
)

type (
	Repository interface {
		CreateCategory(ctx context.Context, cat Category) (Category, error)
		QueryAllCategories(ctx context.Context) ([]Category, error)
		// DeleteCategoryByID does not cascade to emails.
		DeleteCategoryByID(ctx context.Context, id string) error
		// CreateEmail carries the category-existence check within the
		// write; ErrCategoryNotFound when the ref does not resolve.
		CreateEmail(ctx context.Context, em Email) (Email, error)
		QueryEmailsByCategory(ctx context.Context, categoryID string) ([]Email, error)
		DeleteEmailByID(ctx context.Context, id string) error
	}

	Service interface {
		Categories(ctx context.Context) ([]Category, error)
		CreateCategory(ctx context.Context, nc NewCategory) (Category, error)
		DeleteCategory(ctx context.Context, id string) error
		Emails(ctx context.Context, categoryID string) ([]Email, error)
		CreateEmail(ctx context.Context, categoryID string, ne NewEmail, sentBy string) (Email, error)
		DeleteEmail(ctx context.Context, id string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Categories(ctx context.Context) ([]Category, error) {
	return svc.repo.QueryAllCategories(ctx)
}

func (svc *service) CreateCategory(ctx context.Context, nc NewCategory) (Category, error) {
	return svc.repo.CreateCategory(ctx, Category{Name: nc.Name})
}

func (svc *service) DeleteCategory(ctx context.Context, id string) error {
	return svc.repo.DeleteCategoryByID(ctx, id)
}

func (svc *service) Emails(ctx context.Context, categoryID string) ([]Email, error) {
	return svc.repo.QueryEmailsByCategory(ctx, categoryID)
}

func (svc *service) CreateEmail(ctx context.Context, categoryID string, ne NewEmail, sentBy string) (Email, error) {
	em := Email{
		CategoryID: categoryID,
		Name:       ne.Name,
		Mail:       ne.Mail,
		SentBy:     sentBy,
		CreatedAt:  time.Now().UTC(),
	}
	return svc.repo.CreateEmail(ctx, em)
}

func (svc *service) DeleteEmail(ctx context.Context, id string) error {
	return svc.repo.DeleteEmailByID(ctx, id)
}
