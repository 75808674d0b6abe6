// internal/database/player.go
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// ErrPlayerNotFound indicates no credential row exists for a player name.
var ErrPlayerNotFound = errors.New("player name not claimed")

// UpsertPlayerCredential stores the argon2id hash protecting a claimed player
// name.
func UpsertPlayerCredential(ctx context.Context, name, passwordHash string) error {
	if DB == nil {
		return nil
	}
	q := `
		INSERT INTO players (name, password_hash)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET password_hash = EXCLUDED.password_hash
	`
	if _, err := DB.Exec(ctx, q, name, passwordHash); err != nil {
		return fmt.Errorf("upsert credential for player %s: %w", name, err)
	}
	return nil
}

// GetPlayerCredential returns the stored hash for a claimed name, or
// ErrPlayerNotFound if the name is unclaimed.
func GetPlayerCredential(ctx context.Context, name string) (string, error) {
	if DB == nil {
		return "", ErrPlayerNotFound
	}
	var hash string
	q := `SELECT password_hash FROM players WHERE name = $1`
	err := DB.QueryRow(ctx, q, name).Scan(&hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrPlayerNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get credential for player %s: %w", name, err)
	}
	return hash, nil
}
