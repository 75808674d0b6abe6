// internal/database/game.go
package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
)

// UpsertInitialGameState saves the deal snapshot (deck order + opening hands)
// into games.initial_game_state, keyed by game name. A replay can reconstruct
// the original deck and hands from it. Safe to call with no pool connected.
func UpsertInitialGameState(gameName string, initialData interface{}) {
	if DB == nil {
		return
	}
	ctx := context.Background()
	dataBytes, err := json.Marshal(initialData)
	if err != nil {
		log.Printf("failed to marshal initial game state for game %s: %v", gameName, err)
		return
	}
	_ = pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		q := `
			INSERT INTO games (name, status, initial_game_state, start_time)
			VALUES ($1, 'in_progress', $2, NOW())
			ON CONFLICT (name)
			DO UPDATE SET initial_game_state = EXCLUDED.initial_game_state, status='in_progress'
		`
		_, e := tx.Exec(ctx, q, gameName, dataBytes)
		return e
	})
}

// MarkGameCompleted flips a game row to completed once its session is torn
// down.
func MarkGameCompleted(ctx context.Context, gameName string) error {
	if DB == nil {
		return nil
	}
	q := `UPDATE games SET status = 'completed', end_time = NOW() WHERE name = $1`
	if _, err := DB.Exec(ctx, q, gameName); err != nil {
		return fmt.Errorf("mark game %s completed: %w", gameName, err)
	}
	return nil
}
