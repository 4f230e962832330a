package events

import (
	"time"

	"github.com/google/uuid"
)

// Las constantes de los tipos de evento se definen aquí, como valores string.
const (
	QueryExecutedType = "listing.query.executed"
	QueryTopic        = "listing-queries"
)

// QueryExecuted describe un listado ya resuelto. Lo consume la analítica.
type QueryExecuted struct {
	ID             uuid.UUID `json:"id"`
	Entity         string    `json:"entity"`
	Format         string    `json:"format"`
	Strategy       string    `json:"strategy"` // "offset" | "cursor"
	FilterFields   []string  `json:"filterFields"`
	SortFields     []string  `json:"sortFields"`
	Searched       bool      `json:"searched"`
	RowCount       int       `json:"rowCount"`
	DurationMillis int64     `json:"durationMillis"`
	CacheHit       bool      `json:"cacheHit"`
	OccurredAt     time.Time `json:"occurredAt"`
}

// PartitionKey agrupa los eventos por entidad.
func (e *QueryExecuted) PartitionKey() string {
	return e.Entity
}

func (e *QueryExecuted) EventType() string {
	return QueryExecutedType
}
