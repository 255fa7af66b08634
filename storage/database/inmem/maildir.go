package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/adapt/core/maildir"
)

type mailDirRepository struct {
	db *mailDirTables
}

var _ maildir.Repository = (*mailDirRepository)(nil)

func NewMailDirRepository(db *DB) maildir.Repository {
	return &mailDirRepository{db: db.mailDir}
}

func (repo *mailDirRepository) CreateCategory(_ context.Context, cat maildir.Category) (maildir.Category, error) {
	// the uniqueness check and the insert share the same critical section
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, c := range repo.db.categories {
		if c.Name == cat.Name {
			return maildir.Category{}, maildir.ErrCategoryExists
		}
	}
	cat.ID = uuid.NewString()
	repo.db.categories[cat.ID] = &cat
	return cat, nil
}

func (repo *mailDirRepository) QueryAllCategories(_ context.Context) ([]maildir.Category, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	cats := make([]maildir.Category, 0, len(repo.db.categories))
	for _, cat := range repo.db.categories {
		cats = append(cats, *cat)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i].Name < cats[j].Name })
	return cats, nil
}

func (repo *mailDirRepository) DeleteCategoryByID(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.categories[id]; !ok {
		return maildir.ErrCategoryNotFound
	}
	delete(repo.db.categories, id)
	return nil
}

func (repo *mailDirRepository) CreateEmail(_ context.Context, em maildir.Email) (maildir.Email, error) {
	// the category check and the insert share the same critical section
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.categories[em.CategoryID]; !ok {
		return maildir.Email{}, maildir.ErrCategoryNotFound
	}
	em.ID = uuid.NewString()
	repo.db.emails[em.ID] = &em
	return em, nil
}

func (repo *mailDirRepository) QueryEmailsByCategory(_ context.Context, categoryID string) ([]maildir.Email, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	emails := make([]maildir.Email, 0)
	for _, em := range repo.db.emails {
		if em.CategoryID == categoryID {
			emails = append(emails, *em)
		}
	}
	sort.Slice(emails, func(i, j int) bool { return emails[i].CreatedAt.Before(emails[j].CreatedAt) })
	return emails, nil
}

func (repo *mailDirRepository) DeleteEmailByID(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.emails[id]; !ok {
		return maildir.ErrEmailNotFound
	}
	delete(repo.db.emails, id)
	return nil
}
