package persist

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

type AccountRow struct {
	Name         string
	PasswordHash string
	Banned       bool
	CreatedAt    time.Time
	LastLogin    *time.Time
}

// AccountRepo is the Login process's credential store.
type AccountRepo struct {
	db *DB
}

func NewAccountRepo(db *DB) *AccountRepo {
	return &AccountRepo{db: db}
}

// Load returns the account row, or (nil, nil) when the account is unknown.
func (r *AccountRepo) Load(ctx context.Context, name string) (*AccountRow, error) {
	row := &AccountRow{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT name, password_hash, banned, created_at, last_login
		 FROM accounts WHERE name = $1`, name,
	).Scan(&row.Name, &row.PasswordHash, &row.Banned, &row.CreatedAt, &row.LastLogin)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}

// Create inserts a new account with a bcrypt hash of rawPassword.
func (r *AccountRepo) Create(ctx context.Context, name, rawPassword string) (*AccountRow, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(rawPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	row := &AccountRow{
		Name:         name,
		PasswordHash: string(hash),
		CreatedAt:    now,
		LastLogin:    &now,
	}
	_, err = r.db.Pool.Exec(ctx,
		`INSERT INTO accounts (name, password_hash, last_login)
		 VALUES ($1, $2, $3)`,
		row.Name, row.PasswordHash, row.LastLogin,
	)
	if err != nil {
		return nil, err
	}
	return row, nil
}

// TouchLastLogin stamps a successful login.
func (r *AccountRepo) TouchLastLogin(ctx context.Context, name string) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE accounts SET last_login = now() WHERE name = $1`, name)
	return err
}

// ValidatePassword checks rawPassword against a stored bcrypt hash.
func (r *AccountRepo) ValidatePassword(hash string, rawPassword string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(rawPassword)) == nil
}
