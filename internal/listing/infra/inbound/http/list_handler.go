package http

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/davicafu/hexaquery/internal/listing/application"
	"github.com/davicafu/hexaquery/internal/listing/application/envelope"
	"github.com/davicafu/hexaquery/internal/listing/domain"
	"github.com/davicafu/hexaquery/pkg/utils"
)

const (
	defaultStatsDays  = 7
	defaultStatsLimit = 10
	maxStatsLimit     = 100
)

// ListingService es lo que el handler necesita de la capa de aplicación.
type ListingService interface {
	Handle(ctx context.Context, entity string, raw url.Values, path string) (envelope.Response, error)
	Capabilities(entity string) (*application.Capabilities, error)
}

// ListHandler encapsula los endpoints HTTP de listados.
type ListHandler struct {
	service ListingService
	stats   domain.QueryStatsReader
	clock   domain.Clock
	log     *zap.Logger
}

// NewListHandler crea el handler. stats puede ser nil si la analítica está desactivada.
func NewListHandler(service ListingService, stats domain.QueryStatsReader, clock domain.Clock, log *zap.Logger) *ListHandler {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &ListHandler{service: service, stats: stats, clock: clock, log: log}
}

// ---------------- Handlers ----------------

// List endpoint GET {base}/:entity
// El servicio siempre devuelve un sobre; el error solo se registra.
func (h *ListHandler) List(c *gin.Context) {
	entity := c.Param("entity")
	resp, err := h.service.Handle(c.Request.Context(), entity, c.Request.URL.Query(), c.Request.URL.Path)
	if err != nil {
		h.log.Warn("List request failed",
			zap.String("entity", entity),
			zap.Int("status", resp.Status),
			zap.Error(err))
	}
	utils.SendBody(c, resp.Status, resp.Body)
}

// Capabilities endpoint GET {base}/:entity/_capabilities
func (h *ListHandler) Capabilities(c *gin.Context) {
	caps, err := h.service.Capabilities(c.Param("entity"))
	if err != nil {
		if errors.Is(err, domain.ErrUnknownEntity) {
			utils.SendError(c, http.StatusNotFound, application.CodeUnknownEntity, err.Error())
			return
		}
		h.log.Error("Capabilities failed", zap.Error(err))
		utils.SendInternalServerError(c, "could not describe entity")
		return
	}
	utils.SendSuccess(c, http.StatusOK, caps)
}

// Stats endpoint GET {base}/:entity/_stats?days=7&limit=10
func (h *ListHandler) Stats(c *gin.Context) {
	if h.stats == nil {
		utils.SendNotFound(c, "query analytics is disabled")
		return
	}
	entity := c.Param("entity")
	if _, err := h.service.Capabilities(entity); err != nil {
		if errors.Is(err, domain.ErrUnknownEntity) {
			utils.SendError(c, http.StatusNotFound, application.CodeUnknownEntity, err.Error())
			return
		}
		utils.SendInternalServerError(c, "could not describe entity")
		return
	}

	days, err := positiveInt(c.Query("days"), defaultStatsDays)
	if err != nil {
		utils.SendBadRequest(c, "days must be a positive integer")
		return
	}
	limit, err := positiveInt(c.Query("limit"), defaultStatsLimit)
	if err != nil {
		utils.SendBadRequest(c, "limit must be a positive integer")
		return
	}
	limit = min(limit, maxStatsLimit)

	since := h.clock.Now().Add(-time.Duration(days) * 24 * time.Hour)
	usage, err := h.stats.TopFilteredFields(c.Request.Context(), entity, since, limit)
	if err != nil {
		h.log.Error("Query stats failed", zap.String("entity", entity), zap.Error(err))
		utils.SendInternalServerError(c, "could not read query stats")
		return
	}
	utils.SendSuccess(c, http.StatusOK, gin.H{
		"entity":        entity,
		"since":         since,
		"filteredFields": usage,
	})
}

func positiveInt(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, errors.New("not a positive integer")
	}
	return n, nil
}
