// internal/database/db.go
package database

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// DB is the global connection pool. Connect it once at application startup;
// the nil-tolerant helpers in this package keep the rest of the code runnable
// without it.
var DB *pgxpool.Pool

// ConnectDB opens the pgx pool from the POSTGRES_* environment and verifies
// it with a ping. Both the game server and the historian call this before
// serving; a misconfigured database is fatal.
func ConnectDB() {
	host := getEnv("POSTGRES_HOST", "localhost")
	port := getEnv("POSTGRES_PORT", "5432")
	dbName := getEnv("POSTGRES_DB", "dealer")

	connStr := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		getEnv("POSTGRES_USER", "postgres"),
		os.Getenv("POSTGRES_PASSWORD"),
		host, port, dbName,
	)

	config, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		logrus.Fatalf("invalid postgres config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		logrus.Fatalf("failed to create postgres pool: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		logrus.Fatalf("postgres ping failed for %s:%s/%s: %v", host, port, dbName, err)
	}

	DB = pool
	// The DSN carries the password; log only where we connected.
	logrus.Infof("connected to postgres at %s:%s/%s", host, port, dbName)
}

// getEnv reads an environment variable or returns a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}
