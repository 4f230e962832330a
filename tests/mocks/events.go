package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/davicafu/hexaquery/internal/listing/domain"
	"github.com/davicafu/hexaquery/shared/events"
	"github.com/davicafu/hexaquery/shared/platform/bus"
	"github.com/stretchr/testify/mock"
)

// CapturingPublisher guarda los eventos publicados para inspeccionarlos.
type CapturingPublisher struct {
	Events []interface{}
	Err    error
	mu     sync.Mutex
}

var _ bus.EventPublisher = (*CapturingPublisher)(nil)

func (p *CapturingPublisher) Publish(ctx context.Context, event interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.Events = append(p.Events, event)
	return nil
}

// QueryEvents devuelve solo los eventos de consulta ejecutada.
func (p *CapturingPublisher) QueryEvents() []*events.QueryExecuted {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []*events.QueryExecuted
	for _, e := range p.Events {
		if qe, ok := e.(*events.QueryExecuted); ok {
			out = append(out, qe)
		}
	}
	return out
}

// MockQueryLogRepository simula la persistencia analítica.
type MockQueryLogRepository struct {
	mock.Mock
}

func (m *MockQueryLogRepository) LogBatch(ctx context.Context, batch []events.QueryExecuted) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

// MockQueryStatsReader simula la lectura de analítica agregada.
type MockQueryStatsReader struct {
	mock.Mock
}

func (m *MockQueryStatsReader) TopFilteredFields(ctx context.Context, entity string, since time.Time, limit int) ([]domain.FieldUsage, error) {
	args := m.Called(ctx, entity, since, limit)
	if usage, ok := args.Get(0).([]domain.FieldUsage); ok {
		return usage, args.Error(1)
	}
	return nil, args.Error(1)
}
