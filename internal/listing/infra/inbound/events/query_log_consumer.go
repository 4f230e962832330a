package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/davicafu/hexaquery/internal/listing/domain"
	sharedEvents "github.com/davicafu/hexaquery/shared/events"
	sharedUtils "github.com/davicafu/hexaquery/shared/utils"
)

const (
	DefaultBatchSize     = 100
	DefaultFlushInterval = 5 * time.Second
)

// QueryLogConsumer acumula eventos de consulta y los vuelca por lotes en la analítica.
// Un lote que falla se conserva para el siguiente intento.
type QueryLogConsumer struct {
	repo      domain.QueryLogRepository
	batchSize int
	interval  time.Duration
	mu        sync.Mutex
	buffer    []sharedEvents.QueryExecuted
	pending   map[uuid.UUID]struct{}
	log       *zap.Logger
}

func NewQueryLogConsumer(repo domain.QueryLogRepository, batchSize int, interval time.Duration, log *zap.Logger) *QueryLogConsumer {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if interval <= 0 {
		interval = DefaultFlushInterval
	}
	return &QueryLogConsumer{
		repo:      repo,
		batchSize: batchSize,
		interval:  interval,
		pending:   make(map[uuid.UUID]struct{}),
		log:       log,
	}
}

func (c *QueryLogConsumer) HandleMessage(ctx context.Context, key string, payload []byte) {
	var base sharedEvents.IntegrationEvent
	if err := json.Unmarshal(payload, &base); err != nil {
		c.log.Warn("Failed to unmarshal integration event", zap.String("key", key), zap.Error(err))
		return
	}

	switch base.Type {
	case sharedEvents.QueryExecutedType:
		sharedUtils.UnmarshalAndHandle(c.log, base.Data, func(evt sharedEvents.QueryExecuted) {
			if c.add(evt) {
				c.Flush(ctx)
			}
		})
	default:
		c.log.Debug("Ignoring event type", zap.String("type", base.Type))
	}
}

// add encola el evento; devuelve true cuando el lote está completo.
// Los duplicados (misma ID aún sin volcar) se ignoran.
func (c *QueryLogConsumer) add(evt sharedEvents.QueryExecuted) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, dup := c.pending[evt.ID]; dup {
		c.log.Info("Evento 'QueryExecuted' duplicado ignorado", zap.String("event_id", evt.ID.String()))
		return false
	}
	c.pending[evt.ID] = struct{}{}
	c.buffer = append(c.buffer, evt)
	return len(c.buffer) >= c.batchSize
}

// Pending devuelve el número de eventos aún sin volcar.
func (c *QueryLogConsumer) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.buffer)
}

// Flush vuelca el lote actual. Si el repositorio falla, los eventos vuelven al buffer.
func (c *QueryLogConsumer) Flush(ctx context.Context) {
	c.mu.Lock()
	batch := c.buffer
	c.buffer = nil
	c.mu.Unlock()

	if len(batch) == 0 {
		return
	}

	if err := c.repo.LogBatch(ctx, batch); err != nil {
		c.log.Error("Failed to store query log batch", zap.Int("events", len(batch)), zap.Error(err))
		c.mu.Lock()
		c.buffer = append(batch, c.buffer...)
		c.mu.Unlock()
		return
	}

	c.mu.Lock()
	for _, evt := range batch {
		delete(c.pending, evt.ID)
	}
	c.mu.Unlock()
	c.log.Debug("Query log batch stored", zap.Int("events", len(batch)))
}

// Run vuelca periódicamente hasta que ctx se cancela; al salir hace un último volcado.
func (c *QueryLogConsumer) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.Flush(ctx)
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			c.Flush(shutdownCtx)
			cancel()
			return
		}
	}
}
