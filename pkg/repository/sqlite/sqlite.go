package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tasklens/pkg/domain/interfaces"
	"github.com/secmon-lab/tasklens/pkg/domain/model"
	"github.com/secmon-lab/tasklens/pkg/utils/logging"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Repository is the relational message and item store backed by a SQLite file
type Repository struct {
	db          *sql.DB
	path        string
	message     *messageRepository
	actionItem  *actionItemRepository
	participant *participantRepository
}

var _ interfaces.Repository = &Repository{}

// writeDSN enables WAL so readers are never blocked behind a writer. Pragmas are set
// through the DSN so every pooled connection gets them.
func writeDSN(path string) string {
	return "file:" + path +
		"?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}

func readOnlyDSN(path string) string {
	return "file:" + path + "?mode=ro&_pragma=query_only(1)&_pragma=busy_timeout(5000)"
}

// New opens (creating if needed) the database at path and applies the schema
func New(ctx context.Context, path string) (*Repository, error) {
	db, err := sql.Open("sqlite", writeDSN(path))
	if err != nil {
		return nil, goerr.Wrap(model.ErrStoreUnavailable, "failed to open database",
			goerr.V(model.PathKey, path), goerr.V("error", err.Error()))
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(model.ErrStoreUnavailable, "failed to connect database",
			goerr.V(model.PathKey, path), goerr.V("error", err.Error()))
	}

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to apply schema", goerr.V(model.PathKey, path))
	}

	logging.From(ctx).Debug("SQLite repository opened", "path", path)

	return &Repository{
		db:          db,
		path:        path,
		message:     &messageRepository{db: db},
		actionItem:  &actionItemRepository{db: db},
		participant: &participantRepository{db: db},
	}, nil
}

func (r *Repository) Message() interfaces.MessageRepository {
	return r.message
}

func (r *Repository) ActionItem() interfaces.ActionItemRepository {
	return r.actionItem
}

func (r *Repository) Participant() interfaces.ParticipantRepository {
	return r.participant
}

// OpenReadOnly opens a separate read-only connection to the same file
func (r *Repository) OpenReadOnly(ctx context.Context) (interfaces.ReadOnlyStore, error) {
	return OpenReadOnly(ctx, r.path)
}

// Close closes the underlying database
func (r *Repository) Close() error {
	if err := r.db.Close(); err != nil {
		return goerr.Wrap(err, "failed to close database", goerr.V(model.PathKey, r.path))
	}
	return nil
}

// OpenReadOnly opens the database at path with mode=ro and query_only. Any failure,
// including a missing file, is reported as model.ErrStoreUnavailable.
func OpenReadOnly(ctx context.Context, path string) (interfaces.ReadOnlyStore, error) {
	db, err := sql.Open("sqlite", readOnlyDSN(path))
	if err != nil {
		return nil, goerr.Wrap(model.ErrStoreUnavailable, "failed to open read-only database",
			goerr.V(model.PathKey, path), goerr.V("error", err.Error()))
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(model.ErrStoreUnavailable, "failed to connect read-only database",
			goerr.V(model.PathKey, path), goerr.V("error", err.Error()))
	}

	return &readOnlyStore{db: db}, nil
}

func toUnixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnixNano(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
