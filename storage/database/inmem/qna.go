package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/adapt/core/qna"
)

type qnaRepository struct {
	db *qnaTables
}

var _ qna.Repository = (*qnaRepository)(nil)

func NewQnARepository(db *DB) qna.Repository {
	return &qnaRepository{db: db.qna}
}

func (repo *qnaRepository) getCategoryByName(name string) (*qna.Category, bool) {
	for _, cat := range repo.db.categories {
		if cat.Name == name {
			return cat, true
		}
	}
	return nil, false
}

func (repo *qnaRepository) CreateCategory(_ context.Context, cat qna.Category) (qna.Category, error) {
	// the uniqueness check and the insert share the same critical section
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.getCategoryByName(cat.Name); ok {
		return qna.Category{}, qna.ErrCategoryExists
	}
	cat.ID = uuid.NewString()
	repo.db.categories[cat.ID] = &cat
	return cat, nil
}

func (repo *qnaRepository) QueryAllCategories(_ context.Context) ([]qna.Category, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	cats := make([]qna.Category, 0, len(repo.db.categories))
	for _, cat := range repo.db.categories {
		cats = append(cats, *cat)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i].Name < cats[j].Name })
	return cats, nil
}

func (repo *qnaRepository) DeleteCategoryByName(_ context.Context, name string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	cat, ok := repo.getCategoryByName(name)
	if !ok {
		return qna.ErrCategoryNotFound
	}
	delete(repo.db.categories, cat.ID)
	return nil
}

func (repo *qnaRepository) CreateQuestion(_ context.Context, categoryName string, q qna.Question) (qna.Question, error) {
	// the category check and the insert share the same critical section
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	cat, ok := repo.getCategoryByName(categoryName)
	if !ok {
		return qna.Question{}, qna.ErrCategoryNotFound
	}
	q.ID = uuid.NewString()
	q.CategoryID = cat.ID
	repo.db.questions[q.ID] = &q
	return q, nil
}

func (repo *qnaRepository) QueryQuestionsByCategory(_ context.Context, categoryName string) ([]qna.Question, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	cat, ok := repo.getCategoryByName(categoryName)
	if !ok {
		return nil, qna.ErrCategoryNotFound
	}

	questions := make([]qna.Question, 0)
	for _, q := range repo.db.questions {
		if q.CategoryID == cat.ID {
			questions = append(questions, *q)
		}
	}
	sort.Slice(questions, func(i, j int) bool { return questions[i].CreatedAt.Before(questions[j].CreatedAt) })
	return questions, nil
}

func (repo *qnaRepository) GetQuestionByID(_ context.Context, id string) (qna.Question, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if q, ok := repo.db.questions[id]; ok {
		return *q, nil
	}
	return qna.Question{}, qna.ErrQuestionNotFound
}

func (repo *qnaRepository) DeleteQuestionByID(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.questions[id]; !ok {
		return qna.ErrQuestionNotFound
	}
	delete(repo.db.questions, id)
	return nil
}

func (repo *qnaRepository) CreateAnswer(_ context.Context, ans qna.Answer) (qna.Answer, error) {
	// the question check and the insert share the same critical section
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.questions[ans.QuestionID]; !ok {
		return qna.Answer{}, qna.ErrQuestionNotFound
	}
	ans.ID = uuid.NewString()
	repo.db.answers[ans.ID] = &ans
	return ans, nil
}

func (repo *qnaRepository) QueryAnswersByQuestion(_ context.Context, questionID string) ([]qna.Answer, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	answers := make([]qna.Answer, 0)
	for _, ans := range repo.db.answers {
		if ans.QuestionID == questionID {
			answers = append(answers, *ans)
		}
	}
	sort.Slice(answers, func(i, j int) bool { return answers[i].CreatedAt.Before(answers[j].CreatedAt) })
	return answers, nil
}

func (repo *qnaRepository) GetAnswerByID(_ context.Context, id string) (qna.Answer, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if ans, ok := repo.db.answers[id]; ok {
		return *ans, nil
	}
	return qna.Answer{}, qna.ErrAnswerNotFound
}

func (repo *qnaRepository) DeleteAnswerByID(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.answers[id]; !ok {
		return qna.ErrAnswerNotFound
	}
	delete(repo.db.answers, id)
	return nil
}
