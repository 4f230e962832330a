package clickhouse

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"

	"github.com/davicafu/hexaquery/internal/listing/domain"
	sharedEvents "github.com/davicafu/hexaquery/shared/events"
)

// QueryLogRepo guarda los eventos de consulta en ClickHouse y responde a la analítica.
type QueryLogRepo struct {
	db *sql.DB
}

var (
	_ domain.QueryLogRepository = (*QueryLogRepo)(nil)
	_ domain.QueryStatsReader   = (*QueryLogRepo)(nil)
)

// NewQueryLogRepo abre la conexión y hace ping.
func NewQueryLogRepo(ctx context.Context, addr string, dbName string) (*QueryLogRepo, error) {
	conn := clickhouse.OpenDB(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: dbName,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
	})

	if err := conn.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("could not ping clickhouse: %w", err)
	}

	return &QueryLogRepo{db: conn}, nil
}

func (r *QueryLogRepo) Close() error {
	return r.db.Close()
}

// LogBatch inserta el lote en una sola transacción; si una fila falla se descarta todo.
func (r *QueryLogRepo) LogBatch(ctx context.Context, batch []sharedEvents.QueryExecuted) error {
	if len(batch) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO query_log (
		id, entity, format, strategy, filter_fields, sort_fields, searched,
		row_count, duration_ms, cache_hit, occurred_at)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, evt := range batch {
		if _, err := stmt.ExecContext(ctx,
			evt.ID,
			evt.Entity,
			evt.Format,
			evt.Strategy,
			nonNil(evt.FilterFields),
			nonNil(evt.SortFields),
			evt.Searched,
			uint32(evt.RowCount),
			evt.DurationMillis,
			evt.CacheHit,
			evt.OccurredAt,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to exec statement for event %s: %w", evt.ID, err)
		}
	}

	return tx.Commit()
}

// TopFilteredFields devuelve los campos más filtrados de la entidad desde 'since'.
func (r *QueryLogRepo) TopFilteredFields(ctx context.Context, entity string, since time.Time, limit int) ([]domain.FieldUsage, error) {
	query := `
		SELECT field, count() AS queries
		FROM query_log
		ARRAY JOIN filter_fields AS field
		WHERE entity = ? AND occurred_at >= ?
		GROUP BY field
		ORDER BY queries DESC, field ASC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, entity, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.FieldUsage{}
	for rows.Next() {
		var u domain.FieldUsage
		if err := rows.Scan(&u.Field, &u.Queries); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// InitSchema crea la tabla query_log si no existe.
// Se particiona por mes y se ordena por entidad y tiempo.
func (r *QueryLogRepo) InitSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS query_log (
			id            UUID,
			entity        LowCardinality(String),
			format        LowCardinality(String),
			strategy      LowCardinality(String),
			filter_fields Array(String),
			sort_fields   Array(String),
			searched      Bool,
			row_count     UInt32,
			duration_ms   Int64,
			cache_hit     Bool,
			occurred_at   DateTime64(3)
		) ENGINE = MergeTree()
		PARTITION BY toYYYYMM(occurred_at)
		ORDER BY (entity, occurred_at);
	`
	_, err := r.db.ExecContext(ctx, query)
	return err
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
