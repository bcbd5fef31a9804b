package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gautambamne/ECom-sub000/internal/model"
)

// SessionRepository tracks issued refresh credentials. Sessions are not
// cached: logout correctness is safety-critical, so every refresh/logout
// check reads the durable store.
type SessionRepository interface {
	Create(ctx context.Context, s *model.Session) error
	GetByID(ctx context.Context, id string) (*model.Session, error)
	GetByRefreshToken(ctx context.Context, token string) (*model.Session, error)
	GetByUserID(ctx context.Context, userID string) ([]*model.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteByUserID(ctx context.Context, userID string) error
	DeleteByUserIDExcept(ctx context.Context, userID, keepID string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// PostgresSessionRepository is the durable session registry.
type PostgresSessionRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresSessionRepository(pool *pgxpool.Pool) *PostgresSessionRepository {
	return &PostgresSessionRepository{pool: pool}
}

const sessionColumns = `id, user_id, refresh_token, ip, user_agent, expires_at, created_at`

func scanSession(row pgx.Row) (*model.Session, error) {
	s := &model.Session{}
	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.RefreshToken,
		&s.IP,
		&s.UserAgent,
		&s.ExpiresAt,
		&s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}

func (r *PostgresSessionRepository) Create(ctx context.Context, s *model.Session) error {
	query := `
		INSERT INTO sessions (` + sessionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		s.ID,
		s.UserID,
		s.RefreshToken,
		s.IP,
		s.UserAgent,
		s.ExpiresAt,
		s.CreatedAt,
	)
	return err
}

func (r *PostgresSessionRepository) GetByID(ctx context.Context, id string) (*model.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`
	return scanSession(r.pool.QueryRow(ctx, query, id))
}

func (r *PostgresSessionRepository) GetByRefreshToken(ctx context.Context, token string) (*model.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE refresh_token = $1`
	return scanSession(r.pool.QueryRow(ctx, query, token))
}

func (r *PostgresSessionRepository) GetByUserID(ctx context.Context, userID string) ([]*model.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*model.Session
	for rows.Next() {
		s := &model.Session{}
		if err := rows.Scan(
			&s.ID,
			&s.UserID,
			&s.RefreshToken,
			&s.IP,
			&s.UserAgent,
			&s.ExpiresAt,
			&s.CreatedAt,
		); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (r *PostgresSessionRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

func (r *PostgresSessionRepository) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
	return err
}

func (r *PostgresSessionRepository) DeleteByUserIDExcept(ctx context.Context, userID, keepID string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM sessions WHERE user_id = $1 AND id <> $2`, userID, keepID)
	return err
}

// DeleteExpired purges every session past its expiry. Refresh removes
// expired rows lazily as they are presented; this sweep catches the rest.
func (r *PostgresSessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
