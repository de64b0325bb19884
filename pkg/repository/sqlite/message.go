package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tasklens/pkg/domain/interfaces"
	"github.com/secmon-lab/tasklens/pkg/domain/model"
)

type messageRepository struct {
	db *sql.DB
}

var _ interfaces.MessageRepository = &messageRepository{}

const messageColumns = `id, channel_id, ts, user_id, display_name, text, thread_ts, posted_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (*model.Message, error) {
	var (
		msg         model.Message
		displayName sql.NullString
		threadTS    sql.NullString
		postedAt    int64
	)
	if err := row.Scan(&msg.ID, &msg.ChannelID, &msg.TS, &msg.UserID, &displayName, &msg.Text, &threadTS, &postedAt); err != nil {
		return nil, err
	}
	msg.DisplayName = displayName.String
	msg.ThreadTS = threadTS.String
	msg.PostedAt = fromUnixNano(postedAt)
	return &msg, nil
}

func (r *messageRepository) SaveMany(ctx context.Context, msgs []*model.Message) (int, error) {
	if len(msgs) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	insert, err := tx.PrepareContext(ctx, `INSERT INTO messages
		(channel_id, ts, user_id, display_name, text, thread_ts, posted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (channel_id, ts) DO NOTHING`)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to prepare insert")
	}
	defer func() { _ = insert.Close() }()

	inserted := 0
	for _, msg := range msgs {
		threadTS := ""
		if msg.IsReply() {
			threadTS = msg.ThreadTS
		}
		res, err := insert.ExecContext(ctx, msg.ChannelID, msg.TS, msg.UserID, nullString(msg.DisplayName),
			msg.Text, nullString(threadTS), toUnixNano(msg.PostedAt))
		if err != nil {
			return 0, goerr.Wrap(err, "failed to insert message",
				goerr.V("channel_id", msg.ChannelID), goerr.V("ts", msg.TS))
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, goerr.Wrap(err, "failed to get affected rows")
		}
		if n == 0 {
			continue
		}
		id, err := res.LastInsertId()
		if err != nil {
			return 0, goerr.Wrap(err, "failed to get inserted message ID")
		}
		msg.ID = model.MessageID(id)
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, goerr.Wrap(err, "failed to commit messages")
	}
	return inserted, nil
}

func (r *messageRepository) Get(ctx context.Context, id model.MessageID) (*model.Message, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+messageColumns+` FROM messages WHERE id = ?`, id)
	msg, err := scanMessage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(model.ErrNotFound, "message not found", goerr.V(model.MessageIDKey, id))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get message", goerr.V(model.MessageIDKey, id))
	}
	return msg, nil
}

func (r *messageRepository) List(ctx context.Context, channelID string) ([]*model.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages`
	var args []any
	if channelID != "" {
		query += ` WHERE channel_id = ?`
		args = append(args, channelID)
	}
	query += ` ORDER BY posted_at, ts, id`

	return r.query(ctx, query, args...)
}

func (r *messageRepository) ListThreadAncestors(ctx context.Context, channelID, threadTS string, before *model.Message, limit int) ([]*model.Message, error) {
	if threadTS == "" || limit <= 0 || before == nil {
		return nil, nil
	}

	return r.query(ctx, `SELECT `+messageColumns+` FROM messages
		WHERE channel_id = ?
		  AND (ts = ? OR thread_ts = ?)
		  AND posted_at < ?
		  AND id != ?
		ORDER BY posted_at, ts, id
		LIMIT ?`,
		channelID, threadTS, threadTS, toUnixNano(before.PostedAt), before.ID, limit)
}

func (r *messageRepository) UpdateDisplayNames(ctx context.Context, names map[string]string) (int, error) {
	if len(names) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	updated := 0
	for userID, name := range names {
		if name == "" {
			continue
		}
		res, err := tx.ExecContext(ctx, `UPDATE messages SET display_name = ?
			WHERE user_id = ? AND (display_name IS NULL OR display_name = '')`, name, userID)
		if err != nil {
			return 0, goerr.Wrap(err, "failed to update display name", goerr.V("user_id", userID))
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, goerr.Wrap(err, "failed to get affected rows")
		}
		updated += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, goerr.Wrap(err, "failed to commit display names")
	}
	return updated, nil
}

func (r *messageRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&n); err != nil {
		return 0, goerr.Wrap(err, "failed to count messages")
	}
	return n, nil
}

func (r *messageRepository) query(ctx context.Context, query string, args ...any) ([]*model.Message, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query messages")
	}
	defer func() { _ = rows.Close() }()

	var msgs []*model.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan message")
		}
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate messages")
	}
	return msgs, nil
}
