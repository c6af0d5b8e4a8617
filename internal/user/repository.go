package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound          = errors.New("user not found")
	ErrDuplicateIdentity = errors.New("external identity already registered")
)

type Repository interface {
	Create(ctx context.Context, u *User) (*User, error)
	GetByExternalID(ctx context.Context, externalID string) (*User, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, u *User) (*User, error) {
	query := `
		INSERT INTO users (external_id, email, name)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query, u.ExternalID, u.Email, u.Name).
		Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("repository: failed to insert user: %w", err)
	}

	return u, nil
}

func (r *postgresRepository) GetByExternalID(ctx context.Context, externalID string) (*User, error) {
	query := `
		SELECT id, external_id, email, name, created_at
		FROM users
		WHERE external_id = $1
	`

	var u User
	err := r.db.QueryRow(ctx, query, externalID).
		Scan(&u.ID, &u.ExternalID, &u.Email, &u.Name, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select user by external id %s: %w", externalID, err)
	}

	return &u, nil
}
