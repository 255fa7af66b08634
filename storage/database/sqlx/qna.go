package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/adapt/core/qna"
)

type qnaRepository struct {
	db *sqlx.DB
}

var _ qna.Repository = (*qnaRepository)(nil)

func NewQnARepository(db *sqlx.DB) qna.Repository {
	return &qnaRepository{db: db}
}

type questionRow struct {
	ID         string `db:"id"`
	CategoryID string `db:"category_id"`
	Text       string `db:"text"`
	fileCols
	UserID    string    `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
}

func (r questionRow) model() qna.Question {
	return qna.Question{
		ID:         r.ID,
		CategoryID: r.CategoryID,
		Text:       r.Text,
		File:       r.attachment(),
		UserID:     r.UserID,
		CreatedAt:  r.CreatedAt,
	}
}

type answerRow struct {
	ID         string `db:"id"`
	QuestionID string `db:"question_id"`
	Category   string `db:"category"`
	Text       string `db:"text"`
	fileCols
	SenderID  string    `db:"sender_id"`
	CreatedAt time.Time `db:"created_at"`
}

func (r answerRow) model() qna.Answer {
	return qna.Answer{
		ID:         r.ID,
		QuestionID: r.QuestionID,
		Category:   r.Category,
		Text:       r.Text,
		File:       r.attachment(),
		SenderID:   r.SenderID,
		CreatedAt:  r.CreatedAt,
	}
}

func (repo *qnaRepository) CreateCategory(ctx context.Context, cat qna.Category) (qna.Category, error) {
	cat.ID = uuid.NewString()
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO qna_category (id, name) VALUES ($1, $2)`, cat.ID, cat.Name)
	if err != nil {
		if isUniqueViolation(err) {
			return qna.Category{}, qna.ErrCategoryExists
		}
		return qna.Category{}, errors.Wrap(err, "creating category")
	}
	return cat, nil
}

func (repo *qnaRepository) QueryAllCategories(ctx context.Context) ([]qna.Category, error) {
	cats := make([]qna.Category, 0)
	err := repo.db.SelectContext(ctx, &cats, `SELECT * FROM qna_category ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, "querying categories")
	}
	return cats, nil
}

func (repo *qnaRepository) DeleteCategoryByName(ctx context.Context, name string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM qna_category WHERE name = $1`, name)
	if err != nil {
		return errors.Wrap(err, "deleting category")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return qna.ErrCategoryNotFound
	}
	return nil
}

func (repo *qnaRepository) CreateQuestion(ctx context.Context, categoryName string, q qna.Question) (qna.Question, error) {
	q.ID = uuid.NewString()
	file := newFileCols(q.File)
	// the category check rides within the write: no row inserted when the
	// name does not resolve.
	err := repo.db.QueryRowContext(ctx,
		`INSERT INTO question (id, category_id, text, file_url, file_public_id, file_content_type, user_id, created_at)
		 SELECT $1, c.id, $2, $3, $4, $5, $6, $7 FROM qna_category c WHERE c.name = $8
		 RETURNING category_id`,
		q.ID, q.Text, file.URL, file.PublicID, file.ContentType, q.UserID, q.CreatedAt, categoryName,
	).Scan(&q.CategoryID)
	if err != nil {
		if err == sql.ErrNoRows {
			return qna.Question{}, qna.ErrCategoryNotFound
		}
		return qna.Question{}, errors.Wrap(err, "creating question")
	}
	return q, nil
}

func (repo *qnaRepository) QueryQuestionsByCategory(ctx context.Context, categoryName string) ([]qna.Question, error) {
	var catID string
	err := repo.db.GetContext(ctx, &catID, `SELECT id FROM qna_category WHERE name = $1`, categoryName)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, qna.ErrCategoryNotFound
		}
		return nil, errors.Wrap(err, "getting category")
	}

	rows := make([]questionRow, 0)
	err = repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM question WHERE category_id = $1 ORDER BY created_at`, catID)
	if err != nil {
		return nil, errors.Wrap(err, "querying questions")
	}

	questions := make([]qna.Question, 0, len(rows))
	for _, r := range rows {
		questions = append(questions, r.model())
	}
	return questions, nil
}

func (repo *qnaRepository) GetQuestionByID(ctx context.Context, id string) (qna.Question, error) {
	var r questionRow
	err := repo.db.GetContext(ctx, &r, `SELECT * FROM question WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return qna.Question{}, qna.ErrQuestionNotFound
		}
		return qna.Question{}, errors.Wrap(err, "getting question")
	}
	return r.model(), nil
}

func (repo *qnaRepository) DeleteQuestionByID(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM question WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting question")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return qna.ErrQuestionNotFound
	}
	return nil
}

func (repo *qnaRepository) CreateAnswer(ctx context.Context, ans qna.Answer) (qna.Answer, error) {
	ans.ID = uuid.NewString()
	file := newFileCols(ans.File)
	// the question check rides within the write
	err := repo.db.QueryRowContext(ctx,
		`INSERT INTO answer (id, question_id, category, text, file_url, file_public_id, file_content_type, sender_id, created_at)
		 SELECT $1, q.id, $2, $3, $4, $5, $6, $7, $8 FROM question q WHERE q.id = $9
		 RETURNING question_id`,
		ans.ID, ans.Category, ans.Text, file.URL, file.PublicID, file.ContentType, ans.SenderID, ans.CreatedAt, ans.QuestionID,
	).Scan(&ans.QuestionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return qna.Answer{}, qna.ErrQuestionNotFound
		}
		return qna.Answer{}, errors.Wrap(err, "creating answer")
	}
	return ans, nil
}

func (repo *qnaRepository) QueryAnswersByQuestion(ctx context.Context, questionID string) ([]qna.Answer, error) {
	rows := make([]answerRow, 0)
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM answer WHERE question_id = $1 ORDER BY created_at`, questionID)
	if err != nil {
		return nil, errors.Wrap(err, "querying answers")
	}

	answers := make([]qna.Answer, 0, len(rows))
	for _, r := range rows {
		answers = append(answers, r.model())
	}
	return answers, nil
}

func (repo *qnaRepository) GetAnswerByID(ctx context.Context, id string) (qna.Answer, error) {
	var r answerRow
	err := repo.db.GetContext(ctx, &r, `SELECT * FROM answer WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return qna.Answer{}, qna.ErrAnswerNotFound
		}
		return qna.Answer{}, errors.Wrap(err, "getting answer")
	}
	return r.model(), nil
}

func (repo *qnaRepository) DeleteAnswerByID(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM answer WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting answer")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return qna.ErrAnswerNotFound
	}
	return nil
}
