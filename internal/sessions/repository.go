package sessions

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/proctor/internal/engine"
	"github.com/JaimeStill/proctor/pkg/integrity"
	"github.com/JaimeStill/proctor/pkg/pagination"
	"github.com/JaimeStill/proctor/pkg/query"
	"github.com/JaimeStill/proctor/pkg/repository"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a session repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "sessions"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[engine.Session], error) {
	if err := filters.Validate(); err != nil {
		return nil, err
	}
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(sessionProjection, defaultSessionSort).
		WhereSearch(page.Search, "CandidateName")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	total, err := repository.QueryCount(ctx, r.db, countSQL, countArgs)
	if err != nil {
		return nil, fmt.Errorf("count sessions: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	records, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanSession)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}

	result := pagination.NewPageResult(records, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*engine.Session, error) {
	q, args := query.NewBuilder(sessionProjection).BuildSingle("ID", id)

	s, err := repository.QueryOne(ctx, r.db, q, args, scanSession)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &s, nil
}

// Events returns the session's events in timestamp order. The session row is
// only looked up when no events match, to tell an unknown session from an
// empty result.
func (r *repo) Events(ctx context.Context, id uuid.UUID, filters EventFilters) ([]engine.Event, error) {
	qb := query.
		NewBuilder(eventProjection, eventOrder...).
		WhereEquals("SessionID", id)

	filters.Apply(qb)

	q, args := qb.Build()
	events, err := repository.QueryMany(ctx, r.db, q, args, scanEvent)
	if err != nil {
		return nil, fmt.Errorf("query session events: %w", err)
	}

	if len(events) == 0 {
		if _, err := r.Find(ctx, id); err != nil {
			return nil, err
		}
	}
	return events, nil
}

// SessionStarted inserts the session row. Redelivery of the same session is a no-op.
func (r *repo) SessionStarted(ctx context.Context, s engine.Session) error {
	q := `
		INSERT INTO sessions(id, candidate_name, start_time, integrity_score)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, q, s.ID, s.CandidateName, s.StartTime, s.IntegrityScore); err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Debug("session persisted", "id", s.ID)
	return nil
}

// EventRecorded inserts the event and deducts its penalty from the stored
// score in one transaction, so the persisted score tracks the live score
// while the session is active.
func (r *repo) EventRecorded(ctx context.Context, e engine.Event) error {
	metadata, err := json.Marshal(e.Metadata)
	if err != nil {
		return fmt.Errorf("encode event metadata: %w", err)
	}

	insert := `
		INSERT INTO events(id, session_id, kind, severity, label, description, occurred_at, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING`

	deduct := `
		UPDATE sessions
		SET integrity_score = GREATEST($2, integrity_score - $3)
		WHERE id = $1 AND end_time IS NULL`

	err = repository.InTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, insert,
			e.ID,
			e.SessionID,
			e.Kind,
			e.Severity,
			e.Label,
			e.Description,
			e.Timestamp,
			metadata,
		)
		if err != nil {
			return err
		}

		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}

		_, err = tx.ExecContext(ctx, deduct, e.SessionID, integrity.MinScore, integrity.Penalty(e.Severity))
		return err
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return nil
}

// SessionEnded stamps the end time and the final score computed by the engine.
func (r *repo) SessionEnded(ctx context.Context, s engine.Session) error {
	if s.EndTime == nil {
		return fmt.Errorf("%w: ended session %s has no end time", engine.ErrInvalidInput, s.ID)
	}

	err := repository.ExecExpectOne(ctx, r.db,
		"UPDATE sessions SET end_time = $2, integrity_score = $3 WHERE id = $1",
		s.ID, *s.EndTime, s.IntegrityScore,
	)
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("session closed", "id", s.ID, "score", s.IntegrityScore)
	return nil
}
