package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tasklens/pkg/domain/interfaces"
	"github.com/secmon-lab/tasklens/pkg/domain/model"
	"github.com/secmon-lab/tasklens/pkg/domain/types"
)

type actionItemRepository struct {
	db *sql.DB
}

var _ interfaces.ActionItemRepository = &actionItemRepository{}

const actionItemColumns = `ai.id, ai.message_id, ai.run_id, ai.task, ai.assignee, ai.assigner,
	ai.mentioned_date, ai.status, ai.urgency, ai.context_quote, ai.confidence, ai.extracted_at,
	m.channel_id, m.posted_at`

const actionItemFrom = ` FROM action_items ai JOIN messages m ON m.id = ai.message_id`

func scanActionItem(row rowScanner) (*model.ActionItem, error) {
	var (
		item          model.ActionItem
		mentionedDate sql.NullString
		status        string
		urgency       string
		extractedAt   int64
		postedAt      int64
	)
	if err := row.Scan(&item.ID, &item.MessageID, &item.RunID, &item.Task, &item.Assignee, &item.Assigner,
		&mentionedDate, &status, &urgency, &item.ContextQuote, &item.Confidence, &extractedAt,
		&item.ChannelID, &postedAt); err != nil {
		return nil, err
	}

	item.Status = types.ActionStatus(status)
	item.Urgency = types.Urgency(urgency)
	item.ExtractedAt = fromUnixNano(extractedAt)
	item.SourcePostedAt = fromUnixNano(postedAt)
	if mentionedDate.Valid {
		if d, err := time.Parse(model.MentionedDateLayout, mentionedDate.String); err == nil {
			item.MentionedDate = d
		}
	}
	return &item, nil
}

func (r *actionItemRepository) CreateMany(ctx context.Context, items []*model.ActionItem) ([]*model.ActionItem, error) {
	if len(items) == 0 {
		return nil, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	insert, err := tx.PrepareContext(ctx, `INSERT INTO action_items
		(message_id, run_id, task, assignee, assigner, mentioned_date, status, urgency, context_quote, confidence, extracted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to prepare insert")
	}
	defer func() { _ = insert.Close() }()

	created := make([]*model.ActionItem, 0, len(items))
	for _, item := range items {
		var mentioned sql.NullString
		if !item.MentionedDate.IsZero() {
			mentioned = sql.NullString{String: item.MentionedDate.Format(model.MentionedDateLayout), Valid: true}
		}

		res, err := insert.ExecContext(ctx, item.MessageID, item.RunID, item.Task, item.Assignee, item.Assigner,
			mentioned, item.Status.String(), item.Urgency.String(), item.ContextQuote,
			model.ClampConfidence(item.Confidence), toUnixNano(item.ExtractedAt))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to insert action item", goerr.V(model.MessageIDKey, item.MessageID))
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, goerr.Wrap(err, "failed to get inserted action item ID")
		}

		saved := *item
		saved.ID = model.ActionItemID(id)
		saved.Confidence = model.ClampConfidence(item.Confidence)
		created = append(created, &saved)
	}

	if err := tx.Commit(); err != nil {
		return nil, goerr.Wrap(err, "failed to commit action items")
	}
	return created, nil
}

func (r *actionItemRepository) List(ctx context.Context) ([]*model.ActionItem, error) {
	return queryActionItems(ctx, r.db, `SELECT `+actionItemColumns+actionItemFrom+` ORDER BY ai.extracted_at, ai.id`)
}

func (r *actionItemRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM action_items`).Scan(&n); err != nil {
		return 0, goerr.Wrap(err, "failed to count action items")
	}
	return n, nil
}

func queryActionItems(ctx context.Context, db *sql.DB, query string, args ...any) ([]*model.ActionItem, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query action items")
	}
	defer func() { _ = rows.Close() }()

	var items []*model.ActionItem
	for rows.Next() {
		item, err := scanActionItem(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan action item")
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate action items")
	}
	return items, nil
}
