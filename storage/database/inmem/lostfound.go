package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/adapt/core/lostfound"
)

type lostFoundRepository struct {
	db *lostFoundTables
}

var _ lostfound.Repository = (*lostFoundRepository)(nil)

func NewLostFoundRepository(db *DB) lostfound.Repository {
	return &lostFoundRepository{db: db.lostFound}
}

func (repo *lostFoundRepository) getPlaceByName(name string) (*lostfound.Place, bool) {
	for _, pl := range repo.db.places {
		if pl.Name == name {
			return pl, true
		}
	}
	return nil, false
}

func (repo *lostFoundRepository) CreatePlace(_ context.Context, pl lostfound.Place) (lostfound.Place, error) {
	// the uniqueness check and the insert share the same critical section
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.getPlaceByName(pl.Name); ok {
		return lostfound.Place{}, lostfound.ErrPlaceExists
	}
	pl.ID = uuid.NewString()
	repo.db.places[pl.ID] = &pl
	return pl, nil
}

func (repo *lostFoundRepository) QueryAllPlaces(_ context.Context) ([]lostfound.Place, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	places := make([]lostfound.Place, 0, len(repo.db.places))
	for _, pl := range repo.db.places {
		places = append(places, *pl)
	}
	sort.Slice(places, func(i, j int) bool { return places[i].Name < places[j].Name })
	return places, nil
}

func (repo *lostFoundRepository) DeletePlaceByName(_ context.Context, name string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	pl, ok := repo.getPlaceByName(name)
	if !ok {
		return lostfound.ErrPlaceNotFound
	}
	delete(repo.db.places, pl.ID)
	return nil
}

func (repo *lostFoundRepository) CreateMessage(_ context.Context, placeName string, msg lostfound.Message) (lostfound.Message, error) {
	// the place check and the insert share the same critical section
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	pl, ok := repo.getPlaceByName(placeName)
	if !ok {
		return lostfound.Message{}, lostfound.ErrPlaceNotFound
	}
	msg.ID = uuid.NewString()
	msg.PlaceID = pl.ID
	repo.db.messages[msg.ID] = &msg
	return msg, nil
}

func (repo *lostFoundRepository) QueryMessagesByPlace(_ context.Context, placeName, status string) ([]lostfound.Message, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	pl, ok := repo.getPlaceByName(placeName)
	if !ok {
		return nil, lostfound.ErrPlaceNotFound
	}

	messages := make([]lostfound.Message, 0)
	for _, msg := range repo.db.messages {
		if msg.PlaceID == pl.ID && msg.Status == status {
			messages = append(messages, *msg)
		}
	}
	sort.Slice(messages, func(i, j int) bool { return messages[i].CreatedAt.Before(messages[j].CreatedAt) })
	return messages, nil
}

func (repo *lostFoundRepository) GetMessageByID(_ context.Context, id string) (lostfound.Message, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if msg, ok := repo.db.messages[id]; ok {
		return *msg, nil
	}
	return lostfound.Message{}, lostfound.ErrMessageNotFound
}

func (repo *lostFoundRepository) DeleteMessageByID(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.messages[id]; !ok {
		return lostfound.ErrMessageNotFound
	}
	delete(repo.db.messages, id)
	return nil
}

func (repo *lostFoundRepository) CreateReply(_ context.Context, rep lostfound.Reply) (lostfound.Reply, error) {
	// the message check and the insert share the same critical section
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.messages[rep.MessageID]; !ok {
		return lostfound.Reply{}, lostfound.ErrMessageNotFound
	}
	rep.ID = uuid.NewString()
	repo.db.replies[rep.ID] = &rep
	return rep, nil
}

func (repo *lostFoundRepository) QueryRepliesByMessage(_ context.Context, messageID string) ([]lostfound.Reply, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	replies := make([]lostfound.Reply, 0)
	for _, rep := range repo.db.replies {
		if rep.MessageID == messageID {
			replies = append(replies, *rep)
		}
	}
	sort.Slice(replies, func(i, j int) bool { return replies[i].CreatedAt.Before(replies[j].CreatedAt) })
	return replies, nil
}

func (repo *lostFoundRepository) GetReplyByID(_ context.Context, id string) (lostfound.Reply, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if rep, ok := repo.db.replies[id]; ok {
		return *rep, nil
	}
	return lostfound.Reply{}, lostfound.ErrReplyNotFound
}

func (repo *lostFoundRepository) DeleteReplyByID(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.replies[id]; !ok {
		return lostfound.ErrReplyNotFound
	}
	delete(repo.db.replies, id)
	return nil
}
