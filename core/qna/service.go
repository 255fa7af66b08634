package qna

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/adapt/core"
)

var (
	ErrCategoryExists   = errors.New("category already exists")
	ErrCategoryNotFound = errors.New("category not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrAnswerNotFound   = errors.New("answer not found")
)

type (
	Repository interface {
		CreateCategory(ctx context.Context, cat Category) (Category, error)
		QueryAllCategories(ctx context.Context) ([]Category, error)
		// DeleteCategoryByName does not cascade: questions keep their
		// category reference even once it no longer resolves.
		DeleteCategoryByName(ctx context.Context, name string) error
		// CreateQuestion carries the category-existence check within the
		// write itself; ErrCategoryNotFound when the name does not resolve.
		CreateQuestion(ctx context.Context, categoryName string, q Question) (Question, error)
		QueryQuestionsByCategory(ctx context.Context, categoryName string) ([]Question, error)
		GetQuestionByID(ctx context.Context, id string) (Question, error)
		DeleteQuestionByID(ctx context.Context, id string) error
		CreateAnswer(ctx context.Context, ans Answer) (Answer, error)
		QueryAnswersByQuestion(ctx context.Context, questionID string) ([]Answer, error)
		GetAnswerByID(ctx context.Context, id string) (Answer, error)
		DeleteAnswerByID(ctx context.Context, id string) error
	}

	Service interface {
		Categories(ctx context.Context) ([]string, error)
		CreateCategory(ctx context.Context, nc NewCategory) (Category, error)
		DeleteCategory(ctx context.Context, name string) error
		Questions(ctx context.Context, categoryName string) ([]Question, error)
		CreateQuestion(ctx context.Context, categoryName string, nq NewQuestion, up *core.Upload, userID, originSocket string) (Question, error)
		DeleteQuestion(ctx context.Context, id string) error
		Answers(ctx context.Context, questionID string) ([]Answer, error)
		CreateAnswer(ctx context.Context, categoryName string, na NewAnswer, up *core.Upload, senderID, originSocket string) (Answer, error)
		DeleteAnswer(ctx context.Context, id string) error
	}

	service struct {
		repo  Repository
		media core.MediaService
		hub   core.Broadcaster
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, media core.MediaService, hub core.Broadcaster) Service {
	return &service{
		repo:  repo,
		media: media,
		hub:   hub,
	}
}

func (svc *service) Categories(ctx context.Context) ([]string, error) {
	cats, err := svc.repo.QueryAllCategories(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(cats))
	for _, cat := range cats {
		names = append(names, cat.Name)
	}
	return names, nil
}

func (svc *service) CreateCategory(ctx context.Context, nc NewCategory) (Category, error) {
	return svc.repo.CreateCategory(ctx, Category{Name: nc.Name})
}

func (svc *service) DeleteCategory(ctx context.Context, name string) error {
	return svc.repo.DeleteCategoryByName(ctx, name)
}

func (svc *service) Questions(ctx context.Context, categoryName string) ([]Question, error) {
	return svc.repo.QueryQuestionsByCategory(ctx, categoryName)
}

func (svc *service) CreateQuestion(ctx context.Context, categoryName string, nq NewQuestion, up *core.Upload, userID, originSocket string) (Question, error) {
	q := Question{
		Text:      nq.Text,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	if up != nil {
		att, err := svc.media.Upload(ctx, *up)
		if err != nil {
			return Question{}, err
		}
		q.File = &att
	}

	q, err := svc.repo.CreateQuestion(ctx, categoryName, q)
	if err != nil {
		return Question{}, err
	}

	svc.hub.Publish(core.EventNewQuestion, QuestionEvent{Question: q, Category: categoryName}, originSocket)
	return q, nil
}

func (svc *service) DeleteQuestion(ctx context.Context, id string) error {
	q, err := svc.repo.GetQuestionByID(ctx, id)
	if err != nil {
		return err
	}
	if q.File != nil {
		// best-effort: the record goes regardless
		_ = svc.media.Delete(ctx, q.File.PublicID, q.File.ContentType)
	}
	return svc.repo.DeleteQuestionByID(ctx, id)
}

func (svc *service) Answers(ctx context.Context, questionID string) ([]Answer, error) {
	return svc.repo.QueryAnswersByQuestion(ctx, questionID)
}

func (svc *service) CreateAnswer(ctx context.Context, categoryName string, na NewAnswer, up *core.Upload, senderID, originSocket string) (Answer, error) {
	ans := Answer{
		QuestionID: na.QuestionID,
		Category:   categoryName,
		Text:       na.Text,
		SenderID:   senderID,
		CreatedAt:  time.Now().UTC(),
	}
	if up != nil {
		att, err := svc.media.Upload(ctx, *up)
		if err != nil {
			return Answer{}, err
		}
		ans.File = &att
	}

	ans, err := svc.repo.CreateAnswer(ctx, ans)
	if err != nil {
		return Answer{}, err
	}

	svc.hub.Publish(core.EventNewAnswer, AnswerEvent{QuestionID: ans.QuestionID, NewAnswer: ans}, originSocket)
	return ans, nil
}

func (svc *service) DeleteAnswer(ctx context.Context, id string) error {
	ans, err := svc.repo.GetAnswerByID(ctx, id)
	if err != nil {
		return err
	}
	if ans.File != nil {
		_ = svc.media.Delete(ctx, ans.File.PublicID, ans.File.ContentType)
	}
	return svc.repo.DeleteAnswerByID(ctx, id)
}
