package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/legadoapp/legado/internal/model"
)

// PostgresEventRepo はPostgreSQLを使用したイベントリポジトリ。
type PostgresEventRepo struct {
	db *sql.DB
}

// NewPostgresEventRepo はPostgresEventRepoを生成する。
func NewPostgresEventRepo(db *sql.DB) *PostgresEventRepo {
	return &PostgresEventRepo{db: db}
}

const eventColumns = `id, title, COALESCE(description, ''), COALESCE(location, ''),
	start_at, end_at, COALESCE(created_by::text, ''), created_at, updated_at`

func scanEvent(row interface {
	Scan(dest ...any) error
}) (*model.Event, error) {
	e := &model.Event{}
	var endAt sql.NullTime

	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.Location,
		&e.StartAt, &endAt, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if endAt.Valid {
		t := endAt.Time
		e.EndAt = &t
	}

	return e, nil
}

// FindByID は指定IDのイベントを取得する。見つからない場合はnilを返す。
func (r *PostgresEventRepo) FindByID(ctx context.Context, id string) (*model.Event, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`,
		id,
	)

	e, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find event: %w", err)
	}

	return e, nil
}

// ListBetween はstart_atが[from, until)に入るイベントを開始日時順で取得する。
// untilがnilの場合は上限なし。
func (r *PostgresEventRepo) ListBetween(ctx context.Context, from time.Time, until *time.Time) ([]*model.Event, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if until != nil {
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+eventColumns+` FROM events
			 WHERE start_at >= $1 AND start_at < $2
			 ORDER BY start_at ASC`,
			from, *until,
		)
	} else {
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+eventColumns+` FROM events
			 WHERE start_at >= $1
			 ORDER BY start_at ASC`,
			from,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}

	return events, nil
}

// Create はイベントを作成する。
func (r *PostgresEventRepo) Create(ctx context.Context, event *model.Event) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO events (id, title, description, location, start_at, end_at, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, '')::uuid, $8, $9)`,
		event.ID, event.Title, nullString(event.Description), nullString(event.Location),
		event.StartAt, event.EndAt, event.CreatedBy, event.CreatedAt, event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// Update はイベントを更新する。
func (r *PostgresEventRepo) Update(ctx context.Context, event *model.Event) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE events SET
		     title = $1, description = $2, location = $3,
		     start_at = $4, end_at = $5, updated_at = now()
		 WHERE id = $6`,
		event.Title, nullString(event.Description), nullString(event.Location),
		event.StartAt, event.EndAt, event.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("event not found: %s", event.ID)
	}
	return nil
}

// DeleteByID は指定IDのイベントを削除する。
func (r *PostgresEventRepo) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM events WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

// compile-time interface check
var _ EventRepository = (*PostgresEventRepo)(nil)
