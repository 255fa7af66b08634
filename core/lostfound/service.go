package lostfound

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/adapt/core"
)

var (
	ErrPlaceExists     = errors.New("place already exists")
	ErrPlaceNotFound   = errors.New("place not found")
	ErrMessageNotFound = errors.New("message not found")
	ErrReplyNotFound   = errors.New("reply not found")
	ErrBadStatus       = errors.New("invalid status")
)

type (
	Repository interface {
		CreatePlace(ctx context.Context, pl Place) (Place, error)
		QueryAllPlaces(ctx context.Context) ([]Place, error)
		// DeletePlaceByName does not cascade: messages keep their place
		// reference even once it no longer resolves.
		DeletePlaceByName(ctx context.Context, name string) error
		// CreateMessage carries the place-existence check within the write
		// itself; ErrPlaceNotFound when the name does not resolve.
		CreateMessage(ctx context.Context, placeName string, msg Message) (Message, error)
		QueryMessagesByPlace(ctx context.Context, placeName, status string) ([]Message, error)
		GetMessageByID(ctx context.Context, id string) (Message, error)
		DeleteMessageByID(ctx context.Context, id string) error
		CreateReply(ctx context.Context, rep Reply) (Reply, error)
		QueryRepliesByMessage(ctx context.Context, messageID string) ([]Reply, error)
		GetReplyByID(ctx context.Context, id string) (Reply, error)
		DeleteReplyByID(ctx context.Context, id string) error
	}

	Service interface {
		Places(ctx context.Context) ([]string, error)
		CreatePlace(ctx context.Context, np NewPlace) (Place, error)
		DeletePlace(ctx context.Context, name string) error
		Messages(ctx context.Context, placeName, status string) ([]Message, error)
		CreateMessage(ctx context.Context, placeName, status string, nm NewMessage, up *core.Upload, userID string) (Message, error)
		DeleteMessage(ctx context.Context, id string) error
		Replies(ctx context.Context, messageID string) ([]Reply, error)
		CreateReply(ctx context.Context, nr NewReply, up *core.Upload, senderID, originSocket string) (Reply, error)
		DeleteReply(ctx context.Context, id string) error
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

func checkStatus(status string) error {
	switch status {
	case StatusLost, StatusFound:
		return nil
	}
	return ErrBadStatus
}

func (svc *service) Places(ctx context.Context) ([]string, error) {
	places, err := svc.repo.QueryAllPlaces(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(places))
	for _, pl := range places {
		names = append(names, pl.Name)
	}
	return names, nil
}

func (svc *service) CreatePlace(ctx context.Context, np NewPlace) (Place, error) {
	return svc.repo.CreatePlace(ctx, Place{Name: np.Name})
}

func (svc *service) DeletePlace(ctx context.Context, name string) error {
	return svc.repo.DeletePlaceByName(ctx, name)
}

func (svc *service) Messages(ctx context.Context, placeName, status string) ([]Message, error) {
	if err := checkStatus(status); err != nil {
		return nil, err
	}
	return svc.repo.QueryMessagesByPlace(ctx, placeName, status)
}

func (svc *service) CreateMessage(ctx context.Context, placeName, status string, nm NewMessage, up *core.Upload, userID string) (Message, error) {
	if err := checkStatus(status); err != nil {
		return Message{}, err
	}
	msg := Message{
		Text:      nm.Text,
		Status:    status,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	if up != nil {
		att, err := svc.media.Upload(ctx, *up)
		if err != nil {
			return Message{}, err
		}
		msg.File = &att
	}
	return svc.repo.CreateMessage(ctx, placeName, msg)
}

func (svc *service) DeleteMessage(ctx context.Context, id string) error {
	msg, err := svc.repo.GetMessageByID(ctx, id)
	if err != nil {
		return err
	}
	if msg.File != nil {
		// best-effort: the record goes regardless
		_ = svc.media.Delete(ctx, msg.File.PublicID, msg.File.ContentType)
	}
	return svc.repo.DeleteMessageByID(ctx, id)
}

func (svc *service) Replies(ctx context.Context, messageID string) ([]Reply, error) {
	return svc.repo.QueryRepliesByMessage(ctx, messageID)
}

func (svc *service) CreateReply(ctx context.Context, nr NewReply, up *core.Upload, senderID, originSocket string) (Reply, error) {
	rep := Reply{
		MessageID: nr.MessageID,
		Text:      nr.Text,
		SenderID:  senderID,
		CreatedAt: time.Now().UTC(),
	}
	if up != nil {
		att, err := svc.media.Upload(ctx, *up)
		if err != nil {
			return Reply{}, err
		}
		rep.File = &att
	}

	rep, err := svc.repo.CreateReply(ctx, rep)
	if err != nil {
		return Reply{}, err
	}

	svc.hub.Publish(core.EventNewReply, ReplyEvent{MessageID: rep.MessageID, NewReply: rep}, originSocket)
	return rep, nil
}

func (svc *service) DeleteReply(ctx context.Context, id string) error {
	rep, err := svc.repo.GetReplyByID(ctx, id)
	if err != nil {
		return err
	}
	if rep.File != nil {
		_ = svc.media.Delete(ctx, rep.File.PublicID, rep.File.ContentType)
	}
	return svc.repo.DeleteReplyByID(ctx, id)
}
