package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/adapt/core/maildir"
)

type mailDirRepository struct {
	db *sqlx.DB
}

var _ maildir.Repository = (*mailDirRepository)(nil)

func NewMailDirRepository(db *sqlx.DB) maildir.Repository {
	return &mailDirRepository{db: db}
}

func (repo *mailDirRepository) CreateCategory(ctx context.Context, cat maildir.Category) (maildir.Category, error) {
	cat.ID = uuid.NewString()
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO email_category (id, name) VALUES ($1, $2)`, cat.ID, cat.Name)
	if err != nil {
		if isUniqueViolation(err) {
			return maildir.Category{}, maildir.ErrCategoryExists
		}
		return maildir.Category{}, errors.Wrap(err, "creating category")
	}
	return cat, nil
}

func (repo *mailDirRepository) QueryAllCategories(ctx context.Context) ([]maildir.Category, error) {
	cats := make([]maildir.Category, 0)
	err := repo.db.SelectContext(ctx, &cats, `SELECT * FROM email_category ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, "querying categories")
	}
	return cats, nil
}

func (repo *mailDirRepository) DeleteCategoryByID(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM email_category WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting category")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return maildir.ErrCategoryNotFound
	}
	return nil
}

func (repo *mailDirRepository) CreateEmail(ctx context.Context, em maildir.Email) (maildir.Email, error) {
	em.ID = uuid.NewString()
	// the category check rides within the write
	err := repo.db.QueryRowContext(ctx,
		`INSERT INTO email (id, category_id, name, mail, sent_by, created_at)
		 SELECT $1, c.id, $2, $3, $4, $5 FROM email_category c WHERE c.id = $6
		 RETURNING category_id`,
		em.ID, em.Name, em.Mail, em.SentBy, em.CreatedAt, em.CategoryID,
	).Scan(&em.CategoryID)
	if err != nil {
		if err == sql.ErrNoRows {
			return maildir.Email{}, maildir.ErrCategoryNotFound
		}
		return maildir.Email{}, errors.Wrap(err, "creating email")
	}
	return em, nil
}

func (repo *mailDirRepository) QueryEmailsByCategory(ctx context.Context, categoryID string) ([]maildir.Email, error) {
	emails := make([]maildir.Email, 0)
	err := repo.db.SelectContext(ctx, &emails,
		`SELECT * FROM email WHERE category_id = $1 ORDER BY created_at`, categoryID)
	if err != nil {
		return nil, errors.Wrap(err, "querying emails")
	}
	return emails, nil
}

func (repo *mailDirRepository) DeleteEmailByID(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM email WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting email")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return maildir.ErrEmailNotFound
	}
	return nil
}
