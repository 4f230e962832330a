package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/davicafu/hexaquery/internal/listing/infra/outbound/db/sqlstore"

	_ "github.com/jackc/pgx/v5/stdlib" // Driver de PostgreSQL
)

// Open abre la conexión con el DSN dado y hace ping.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open Postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping Postgres: %w", err)
	}
	return db, nil
}

// NewRowStore crea el store de listados sobre PostgreSQL.
func NewRowStore(db *sql.DB, log *zap.Logger) *sqlstore.Store {
	return sqlstore.NewStore(db, sqlstore.Postgres, log)
}
