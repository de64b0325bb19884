package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tasklens/pkg/domain/interfaces"
	"github.com/secmon-lab/tasklens/pkg/domain/model"
)

type participantRepository struct {
	db *sql.DB
}

var _ interfaces.ParticipantRepository = &participantRepository{}

func scanParticipant(row rowScanner) (*model.Participant, error) {
	var (
		p         model.Participant
		updatedAt int64
	)
	if err := row.Scan(&p.ID, &p.Name, &p.RealName, &p.DisplayName, &updatedAt); err != nil {
		return nil, err
	}
	p.UpdatedAt = fromUnixNano(updatedAt)
	return &p, nil
}

func (r *participantRepository) GetAll(ctx context.Context) ([]*model.Participant, error) {
	return r.query(ctx, `SELECT id, name, real_name, display_name, updated_at FROM participants ORDER BY id`)
}

func (r *participantRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*model.Participant, error) {
	result := make(map[string]*model.Participant, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	list, err := r.query(ctx, `SELECT id, name, real_name, display_name, updated_at FROM participants
		WHERE id IN (`+strings.Join(placeholders, ", ")+`)`, args...)
	if err != nil {
		return nil, err
	}
	for _, p := range list {
		result[p.ID] = p
	}
	return result, nil
}

func (r *participantRepository) SaveMany(ctx context.Context, participants []*model.Participant) error {
	if len(participants) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO participants (id, name, real_name, display_name, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			real_name = excluded.real_name,
			display_name = excluded.display_name,
			updated_at = excluded.updated_at`)
	if err != nil {
		return goerr.Wrap(err, "failed to prepare upsert")
	}
	defer func() { _ = stmt.Close() }()

	for _, p := range participants {
		if _, err := stmt.ExecContext(ctx, p.ID, p.Name, p.RealName, p.DisplayName, toUnixNano(p.UpdatedAt)); err != nil {
			return goerr.Wrap(err, "failed to save participant", goerr.V("participant_id", p.ID))
		}
	}

	if err := tx.Commit(); err != nil {
		return goerr.Wrap(err, "failed to commit participants")
	}
	return nil
}

func (r *participantRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM participants`); err != nil {
		return goerr.Wrap(err, "failed to delete participants")
	}
	return nil
}

func (r *participantRepository) GetMetadata(ctx context.Context) (*model.ParticipantMetadata, error) {
	var (
		meta             model.ParticipantMetadata
		success, attempt int64
	)
	err := r.db.QueryRowContext(ctx, `SELECT last_refresh_success, last_refresh_attempt, count, source
		FROM participant_metadata WHERE id = 1`).Scan(&success, &attempt, &meta.Count, &meta.Source)
	if errors.Is(err, sql.ErrNoRows) {
		return &model.ParticipantMetadata{}, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get participant metadata")
	}
	meta.LastRefreshSuccess = fromUnixNano(success)
	meta.LastRefreshAttempt = fromUnixNano(attempt)
	return &meta, nil
}

func (r *participantRepository) SaveMetadata(ctx context.Context, metadata *model.ParticipantMetadata) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO participant_metadata
		(id, last_refresh_success, last_refresh_attempt, count, source) VALUES (1, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			last_refresh_success = excluded.last_refresh_success,
			last_refresh_attempt = excluded.last_refresh_attempt,
			count = excluded.count,
			source = excluded.source`,
		toUnixNano(metadata.LastRefreshSuccess), toUnixNano(metadata.LastRefreshAttempt), metadata.Count, metadata.Source)
	if err != nil {
		return goerr.Wrap(err, "failed to save participant metadata")
	}
	return nil
}

func (r *participantRepository) query(ctx context.Context, query string, args ...any) ([]*model.Participant, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query participants")
	}
	defer func() { _ = rows.Close() }()

	var list []*model.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan participant")
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate participants")
	}
	return list, nil
}
