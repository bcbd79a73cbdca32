package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"ghostauth/internal/domain"
)

// GhostRepository persiste registros de registro pendiente. No reserva
// unicidad de email ni username: dos registros fantasma concurrentes para el
// mismo email pueden coexistir y la carrera se re-chequea al confirmar.
type GhostRepository interface {
	Create(ctx context.Context, ghost domain.PendingRegistration) error
	GetByID(ctx context.Context, id string) (domain.PendingRegistration, error)
	LinkToUser(ctx context.Context, id, userID string) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// PgGhostRepository implementa GhostRepository usando pgxpool.
type PgGhostRepository struct {
	pool *pgxpool.Pool
}

func NewPgGhostRepository(pool *pgxpool.Pool) *PgGhostRepository {
	return &PgGhostRepository{pool: pool}
}

func (r *PgGhostRepository) Create(ctx context.Context, ghost domain.PendingRegistration) error {
	const query = `
		INSERT INTO register_ghosts (id, username, email, password_hash, verification_code, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		ghost.ID,
		ghost.Username,
		ghost.Email,
		ghost.PasswordHash,
		ghost.VerificationCode,
		ghost.CreatedAt,
	)
	return err
}

func (r *PgGhostRepository) GetByID(ctx context.Context, id string) (domain.PendingRegistration, error) {
	const query = `
		SELECT id, username, email, password_hash, verification_code, COALESCE(linked_user_id, ''), created_at
		FROM register_ghosts
		WHERE id = $1
	`
	var g domain.PendingRegistration
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&g.ID,
		&g.Username,
		&g.Email,
		&g.PasswordHash,
		&g.VerificationCode,
		&g.LinkedUserID,
		&g.CreatedAt,
	)
	if err != nil {
		return domain.PendingRegistration{}, err
	}
	return g, nil
}

func (r *PgGhostRepository) LinkToUser(ctx context.Context, id, userID string) error {
	const query = `UPDATE register_ghosts SET linked_user_id = $2 WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id, userID)
	return err
}

func (r *PgGhostRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `DELETE FROM register_ghosts WHERE created_at < $1 AND linked_user_id IS NULL`
	tag, err := r.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
