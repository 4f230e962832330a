package application

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/davicafu/hexaquery/internal/listing/application/envelope"
	"github.com/davicafu/hexaquery/internal/listing/application/paging"
	"github.com/davicafu/hexaquery/internal/listing/application/parsing"
	"github.com/davicafu/hexaquery/internal/listing/application/translate"
	"github.com/davicafu/hexaquery/internal/listing/application/validation"
	"github.com/davicafu/hexaquery/internal/listing/domain"
	"github.com/davicafu/hexaquery/shared/events"
	"github.com/davicafu/hexaquery/shared/platform/bus"
	sharedCache "github.com/davicafu/hexaquery/shared/platform/cache"
	sharedUtils "github.com/davicafu/hexaquery/shared/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Códigos de error de nivel petición (los de validación van en los detalles).
const (
	CodeUnknownEntity    = "unknown_entity"
	CodeValidationFailed = "validation_failed"
	CodeInternal         = "internal_error"
	CodeCanceled         = "request_canceled"
)

const (
	storeAttempts = 3
	storeDelay    = 100 * time.Millisecond
)

// Options agrupa los ajustes del servicio que llegan de la configuración.
type Options struct {
	Policy       validation.Policy
	PageWindow   int
	CacheTTLSecs int
	Clock        domain.Clock
}

// ListService orquesta el pipeline completo de un listado.
// No guarda estado por petición; es seguro para uso concurrente.
type ListService struct {
	registry  domain.SchemaRegistry
	store     domain.RowStore
	detector  *parsing.Detector
	validator *validation.Validator
	planner   *paging.Planner
	formatter *envelope.Formatter
	cache     sharedCache.Cache
	events    bus.EventPublisher
	clock     domain.Clock
	cacheTTL  int
	log       *zap.Logger
}

// NewListService: cache y events pueden ser nil.
func NewListService(
	registry domain.SchemaRegistry,
	store domain.RowStore,
	codec domain.CursorCodec,
	cache sharedCache.Cache,
	publisher bus.EventPublisher,
	opts Options,
	log *zap.Logger,
) *ListService {
	clock := opts.Clock
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &ListService{
		registry:  registry,
		store:     store,
		detector:  parsing.NewDetector(log),
		validator: validation.NewValidator(opts.Policy, codec, log),
		planner:   paging.NewPlanner(codec, opts.PageWindow, log),
		formatter: envelope.NewFormatter(clock),
		cache:     cache,
		events:    publisher,
		clock:     clock,
		cacheTTL:  opts.CacheTTLSecs,
		log:       log,
	}
}

// Handle resuelve un listado. La respuesta siempre es presentable al cliente;
// el error solo se devuelve para fallos internos o cancelación, para que el llamante lo registre.
func (s *ListService) Handle(ctx context.Context, entity string, raw url.Values, path string) (envelope.Response, error) {
	started := s.clock.Now()
	shape := envelope.ShapeFor(s.detector.Detect(raw).Format(), false)

	// 1. Esquema antes de parsear: sin esquema no hay nada que interpretar
	schema, err := s.registry.Lookup(entity)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownEntity) {
			return s.formatter.FormatError(shape, http.StatusNotFound, CodeUnknownEntity, err.Error(), nil), nil
		}
		s.log.Error("Schema lookup failed", zap.String("entity", entity), zap.Error(err))
		return s.internalError(shape), err
	}
	if err := ctx.Err(); err != nil {
		return s.canceled(shape), err
	}

	// 2. Parseo y validación
	parsed := s.detector.Parse(raw)
	shape = envelope.ShapeFor(parsed.Format, parsed.Pagination.Style == domain.StyleCursor)

	req, verrs := s.validator.Validate(schema, parsed)
	if req == nil {
		return s.formatter.FormatError(shape, http.StatusBadRequest, CodeValidationFailed,
			verrs.Error(), verrs.Entries()), nil
	}
	if err := ctx.Err(); err != nil {
		return s.canceled(shape), err
	}

	// 3. Plan y ejecución (con caché)
	plan, err := s.planner.Plan(schema, req)
	if err != nil {
		s.log.Error("Pagination plan failed", zap.String("entity", entity), zap.Error(err))
		return s.internalError(shape), err
	}
	shape = envelope.ShapeFor(req.Format, plan.IsCursor())

	page, hit, err := s.fetch(ctx, schema, req, plan)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return s.canceled(shape), ctxErr
		}
		s.log.Error("Store query failed", zap.String("entity", entity), zap.Error(err))
		return s.internalError(shape), err
	}

	// 4. Formato
	resp := s.formatter.Format(envelope.Result{
		Request:  req,
		Page:     page,
		Warnings: verrs.Warnings(),
		Path:     path,
		Query:    raw,
	})

	s.publish(ctx, req, plan, len(page.Rows), hit, started)
	return resp, nil
}

// fetch aplica cache-aside sobre la ejecución contra el store.
func (s *ListService) fetch(ctx context.Context, schema *domain.EntitySchema, req *domain.ValidatedRequest, plan paging.Plan) (paging.Page, bool, error) {
	key := ""
	if s.cache != nil {
		if digest, err := req.Digest(); err == nil {
			key = cacheKey(req.Entity, digest)
			var cached cachedPage
			if sharedCache.GetOrMiss(ctx, s.cache, key, &cached, s.log) {
				s.log.Debug("List cache hit", zap.String("entity", req.Entity))
				return cached.toPage(), true, nil
			}
		}
	}

	page, err := s.execute(ctx, schema, req, plan)
	if err != nil {
		return paging.Page{}, false, err
	}
	if key != "" {
		sharedCache.AsyncCacheSet(s.cache, key, page, s.cacheTTL, s.log)
	}
	return page, false, nil
}

func (s *ListService) execute(ctx context.Context, schema *domain.EntitySchema, req *domain.ValidatedRequest, plan paging.Plan) (paging.Page, error) {
	q := s.store.NewQuery(schema)
	if err := translate.Translate(schema, req, plan, q); err != nil {
		return paging.Page{}, err
	}

	var rows []domain.Row
	err := sharedUtils.Retry(ctx, storeAttempts, storeDelay, func() error {
		var err error
		rows, err = q.Rows(ctx)
		return err
	})
	if err != nil {
		return paging.Page{}, err
	}

	if plan.IsCursor() {
		return s.planner.CursorPage(schema, plan, rows)
	}

	// El total solo se calcula con la estrategia offset
	cq := s.store.NewQuery(schema)
	if err := translate.TranslateCount(req, cq); err != nil {
		return paging.Page{}, err
	}
	var total int64
	err = sharedUtils.Retry(ctx, storeAttempts, storeDelay, func() error {
		var err error
		total, err = cq.Count(ctx)
		return err
	})
	if err != nil {
		return paging.Page{}, err
	}
	return s.planner.OffsetPage(plan, rows, total), nil
}

// publish emite el evento de analítica. Un fallo no afecta a la respuesta.
func (s *ListService) publish(ctx context.Context, req *domain.ValidatedRequest, plan paging.Plan, rowCount int, hit bool, started time.Time) {
	if s.events == nil {
		return
	}
	evt := &events.QueryExecuted{
		ID:             uuid.New(),
		Entity:         req.Entity,
		Format:         string(req.Format),
		Strategy:       string(plan.Strategy),
		FilterFields:   req.FilterFields(),
		SortFields:     req.SortFields(),
		Searched:       req.Search != nil,
		RowCount:       rowCount,
		DurationMillis: s.clock.Now().Sub(started).Milliseconds(),
		CacheHit:       hit,
		OccurredAt:     s.clock.Now(),
	}
	if err := s.events.Publish(ctx, evt); err != nil {
		s.log.Warn("Failed to publish query event",
			zap.String("entity", req.Entity),
			zap.Error(err))
	}
}

func (s *ListService) internalError(shape envelope.Shape) envelope.Response {
	return s.formatter.FormatError(shape, http.StatusInternalServerError, CodeInternal, "the listing could not be produced", nil)
}

func (s *ListService) canceled(shape envelope.Shape) envelope.Response {
	return s.formatter.FormatError(shape, http.StatusServiceUnavailable, CodeCanceled, "the request was canceled", nil)
}

// ---------------- Caché ----------------

func cacheKey(entity, digest string) string {
	return "listing:" + entity + ":" + digest
}

// cachedPage conserva las filas como JSON crudo: al volver a serializarlas
// la respuesta es idéntica a la original.
type cachedPage struct {
	Rows    []map[string]json.RawMessage `json:"Rows"`
	Cursors []string                     `json:"Cursors"`
	Meta    paging.PageMeta              `json:"Meta"`
}

func (c cachedPage) toPage() paging.Page {
	rows := make([]domain.Row, len(c.Rows))
	for i, r := range c.Rows {
		row := make(domain.Row, len(r))
		for k, v := range r {
			row[k] = v
		}
		rows[i] = row
	}
	return paging.Page{Rows: rows, Cursors: c.Cursors, Meta: c.Meta}
}
