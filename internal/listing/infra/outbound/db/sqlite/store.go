package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/davicafu/hexaquery/internal/listing/infra/outbound/db/sqlstore"

	_ "modernc.org/sqlite" // Driver SQLite en Go puro (sin cgo)
)

// Open abre la base SQLite y comprueba la conexión.
// Con ":memory:" se limita a una conexión para que todas vean la misma base.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite: %w", err)
	}
	return db, nil
}

// NewRowStore crea el store de listados sobre SQLite.
func NewRowStore(db *sql.DB, log *zap.Logger) *sqlstore.Store {
	return sqlstore.NewStore(db, sqlstore.SQLite, log)
}

// ExecScript ejecuta un script SQL completo (por ejemplo, datos de demostración).
func ExecScript(ctx context.Context, db *sql.DB, path string) error {
	script, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read sql script: %w", err)
	}
	if _, err := db.ExecContext(ctx, string(script)); err != nil {
		return fmt.Errorf("exec sql script %s: %w", path, err)
	}
	return nil
}
