// Package postgres provides the pgx-backed credential store.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads third-party credentials from the omh_credentials table.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Credentials returns every stored key/value pair for the domain. An
// unknown domain yields an empty map, not an error.
func (r *Repository) Credentials(ctx context.Context, domain string) (map[string]string, error) {
	const query = `SELECT key, value FROM omh_credentials WHERE domain=$1`

	rows, err := r.pool.Query(ctx, query, domain)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	creds := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		creds[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return creds, nil
}

// Store upserts one credential under a domain. Used by account-link
// provisioning and by tests.
func (r *Repository) Store(ctx context.Context, domain, key, value string) error {
	const stmt = `INSERT INTO omh_credentials (domain, key, value)
        VALUES ($1,$2,$3)
        ON CONFLICT (domain, key) DO UPDATE SET value = EXCLUDED.value`

	_, err := r.pool.Exec(ctx, stmt, domain, key, value)
	return err
}
