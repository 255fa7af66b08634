package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/adapt/core/lostfound"
)

type lostFoundRepository struct {
	db *sqlx.DB
}

var _ lostfound.Repository = (*lostFoundRepository)(nil)

func NewLostFoundRepository(db *sqlx.DB) lostfound.Repository {
	return &lostFoundRepository{db: db}
}

type messageRow struct {
	ID      string `db:"id"`
	PlaceID string `db:"place_id"`
	Text    string `db:"text"`
	Status  string `db:"status"`
	fileCols
	UserID    string    `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
}

func (r messageRow) model() lostfound.Message {
	return lostfound.Message{
		ID:        r.ID,
		PlaceID:   r.PlaceID,
		Text:      r.Text,
		Status:    r.Status,
		File:      r.attachment(),
		UserID:    r.UserID,
		CreatedAt: r.CreatedAt,
	}
}

type replyRow struct {
	ID        string `db:"id"`
	MessageID string `db:"message_id"`
	Text      string `db:"text"`
	fileCols
	SenderID  string    `db:"sender_id"`
	CreatedAt time.Time `db:"created_at"`
}

func (r replyRow) model() lostfound.Reply {
	return lostfound.Reply{
		ID:        r.ID,
		MessageID: r.MessageID,
		Text:      r.Text,
		File:      r.attachment(),
		SenderID:  r.SenderID,
		CreatedAt: r.CreatedAt,
	}
}

func (repo *lostFoundRepository) CreatePlace(ctx context.Context, pl lostfound.Place) (lostfound.Place, error) {
	pl.ID = uuid.NewString()
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO place (id, name) VALUES ($1, $2)`, pl.ID, pl.Name)
	if err != nil {
		if isUniqueViolation(err) {
			return lostfound.Place{}, lostfound.ErrPlaceExists
		}
		return lostfound.Place{}, errors.Wrap(err, "creating place")
	}
	return pl, nil
}

func (repo *lostFoundRepository) QueryAllPlaces(ctx context.Context) ([]lostfound.Place, error) {
	places := make([]lostfound.Place, 0)
	err := repo.db.SelectContext(ctx, &places, `SELECT * FROM place ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, "querying places")
	}
	return places, nil
}

func (repo *lostFoundRepository) DeletePlaceByName(ctx context.Context, name string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM place WHERE name = $1`, name)
	if err != nil {
		return errors.Wrap(err, "deleting place")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return lostfound.ErrPlaceNotFound
	}
	return nil
}

func (repo *lostFoundRepository) CreateMessage(ctx context.Context, placeName string, msg lostfound.Message) (lostfound.Message, error) {
	msg.ID = uuid.NewString()
	file := newFileCols(msg.File)
	// the place check rides within the write
	err := repo.db.QueryRowContext(ctx,
		`INSERT INTO message (id, place_id, text, status, file_url, file_public_id, file_content_type, user_id, created_at)
		 SELECT $1, p.id, $2, $3, $4, $5, $6, $7, $8 FROM place p WHERE p.name = $9
		 RETURNING place_id`,
		msg.ID, msg.Text, msg.Status, file.URL, file.PublicID, file.ContentType, msg.UserID, msg.CreatedAt, placeName,
	).Scan(&msg.PlaceID)
	if err != nil {
		if err == sql.ErrNoRows {
			return lostfound.Message{}, lostfound.ErrPlaceNotFound
		}
		return lostfound.Message{}, errors.Wrap(err, "creating message")
	}
	return msg, nil
}

func (repo *lostFoundRepository) QueryMessagesByPlace(ctx context.Context, placeName, status string) ([]lostfound.Message, error) {
	var placeID string
	err := repo.db.GetContext(ctx, &placeID, `SELECT id FROM place WHERE name = $1`, placeName)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, lostfound.ErrPlaceNotFound
		}
		return nil, errors.Wrap(err, "getting place")
	}

	rows := make([]messageRow, 0)
	err = repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM message WHERE place_id = $1 AND status = $2 ORDER BY created_at`, placeID, status)
	if err != nil {
		return nil, errors.Wrap(err, "querying messages")
	}

	messages := make([]lostfound.Message, 0, len(rows))
	for _, r := range rows {
		messages = append(messages, r.model())
	}
	return messages, nil
}

func (repo *lostFoundRepository) GetMessageByID(ctx context.Context, id string) (lostfound.Message, error) {
	var r messageRow
	err := repo.db.GetContext(ctx, &r, `SELECT * FROM message WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return lostfound.Message{}, lostfound.ErrMessageNotFound
		}
		return lostfound.Message{}, errors.Wrap(err, "getting message")
	}
	return r.model(), nil
}

func (repo *lostFoundRepository) DeleteMessageByID(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM message WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting message")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return lostfound.ErrMessageNotFound
	}
	return nil
}

func (repo *lostFoundRepository) CreateReply(ctx context.Context, rep lostfound.Reply) (lostfound.Reply, error) {
	rep.ID = uuid.NewString()
	file := newFileCols(rep.File)
	// the message check rides within the write
	err := repo.db.QueryRowContext(ctx,
		`INSERT INTO reply (id, message_id, text, file_url, file_public_id, file_content_type, sender_id, created_at)
		 SELECT $1, m.id, $2, $3, $4, $5, $6, $7 FROM message m WHERE m.id = $8
		 RETURNING message_id`,
		rep.ID, rep.Text, file.URL, file.PublicID, file.ContentType, rep.SenderID, rep.CreatedAt, rep.MessageID,
	).Scan(&rep.MessageID)
	if err != nil {
		if err == sql.ErrNoRows {
			return lostfound.Reply{}, lostfound.ErrMessageNotFound
		}
		return lostfound.Reply{}, errors.Wrap(err, "creating reply")
	}
	return rep, nil
}

func (repo *lostFoundRepository) QueryRepliesByMessage(ctx context.Context, messageID string) ([]lostfound.Reply, error) {
	rows := make([]replyRow, 0)
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM reply WHERE message_id = $1 ORDER BY created_at`, messageID)
	if err != nil {
		return nil, errors.Wrap(err, "querying replies")
	}

	replies := make([]lostfound.Reply, 0, len(rows))
	for _, r := range rows {
		replies = append(replies, r.model())
	}
	return replies, nil
}

func (repo *lostFoundRepository) GetReplyByID(ctx context.Context, id string) (lostfound.Reply, error) {
	var r replyRow
	err := repo.db.GetContext(ctx, &r, `SELECT * FROM reply WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return lostfound.Reply{}, lostfound.ErrReplyNotFound
		}
		return lostfound.Reply{}, errors.Wrap(err, "getting reply")
	}
	return r.model(), nil
}

func (repo *lostFoundRepository) DeleteReplyByID(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM reply WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting reply")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return lostfound.ErrReplyNotFound
	}
	return nil
}
