package main

import (
	"context"
	"crypto/rand"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	config "github.com/davicafu/hexaquery/internal/config"
	listingApp "github.com/davicafu/hexaquery/internal/listing/application"
	"github.com/davicafu/hexaquery/internal/listing/application/paging"
	"github.com/davicafu/hexaquery/internal/listing/application/validation"
	"github.com/davicafu/hexaquery/internal/listing/domain"
	listingEvents "github.com/davicafu/hexaquery/internal/listing/infra/inbound/events"
	listingHttp "github.com/davicafu/hexaquery/internal/listing/infra/inbound/http"
	"github.com/davicafu/hexaquery/internal/listing/infra/outbound/analytics/clickhouse"
	listingCache "github.com/davicafu/hexaquery/internal/listing/infra/outbound/cache"
	"github.com/davicafu/hexaquery/internal/listing/infra/outbound/db/mongodb"
	"github.com/davicafu/hexaquery/internal/listing/infra/outbound/db/postgre"
	"github.com/davicafu/hexaquery/internal/listing/infra/outbound/db/sqlite"
	outboundEvents "github.com/davicafu/hexaquery/internal/listing/infra/outbound/events"
	"github.com/davicafu/hexaquery/internal/listing/infra/outbound/schema"
	"github.com/davicafu/hexaquery/pkg/logger"
	sharedEvents "github.com/davicafu/hexaquery/shared/events"
	sharedBus "github.com/davicafu/hexaquery/shared/platform/bus"
	sharedCache "github.com/davicafu/hexaquery/shared/platform/cache"
)

const consumerGroup = "hexaquery-query-log"

// ---------------- Main ----------------
func main() {
	cfg := config.LoadConfig()

	logger.Init(cfg.LogLevel) // inicializa zap
	log := logger.Logger()    // obtiene logger estructurado
	defer log.Sync()          // flush buffers al salir

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---------------- Schemas ----------------
	registry, err := schema.LoadFile(cfg.SchemaPath)
	if err != nil {
		log.Fatal("failed to load entity schemas", zap.String("path", cfg.SchemaPath), zap.Error(err))
	}
	log.Info("📚 Esquemas cargados", zap.Strings("entities", registry.Entities()))

	// ---------------- DB ----------------
	store, closeStore := openStore(ctx, cfg, log)
	defer closeStore()

	// ---------------- Cursor ----------------
	secret := []byte(cfg.CursorSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			log.Fatal("failed to generate cursor secret", zap.Error(err))
		}
		log.Warn("⚠️ CURSOR_SECRET no definido, clave aleatoria: los cursores no sobreviven a un reinicio")
	}
	codec, err := paging.NewCursorCodec(secret)
	if err != nil {
		log.Fatal("invalid cursor secret", zap.Error(err))
	}

	// ---------------- Cache ----------------
	var cacheInstance sharedCache.Cache
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("⚠️ Redis no disponible, cache en memoria:", zap.Error(err))
		memCache := listingCache.NewInMemoryCache(cfg.CacheTTL, 3*cfg.CacheTTL, 10000)
		defer memCache.Stop()
		cacheInstance = memCache
	} else {
		defer rdb.Close()
		cacheInstance = listingCache.NewRedisCache(rdb, "hexaquery:", cfg.CacheTTL)
		log.Info("✅ Redis conectado, cache habilitado")
	}

	// ---------------- Analytics ----------------
	var stats domain.QueryStatsReader
	var queryLog *listingEvents.QueryLogConsumer
	if cfg.ClickHouseAddr != "" {
		repo, err := clickhouse.NewQueryLogRepo(ctx, cfg.ClickHouseAddr, cfg.ClickHouseDB)
		if err != nil {
			log.Warn("⚠️ ClickHouse no disponible, sin registro de consultas", zap.Error(err))
		} else if err := repo.InitSchema(ctx); err != nil {
			log.Warn("⚠️ No se pudo crear query_log en ClickHouse", zap.Error(err))
			repo.Close()
		} else {
			defer repo.Close()
			stats = repo
			queryLog = listingEvents.NewQueryLogConsumer(repo, listingEvents.DefaultBatchSize, listingEvents.DefaultFlushInterval, log)
			log.Info("✅ ClickHouse conectado, registro de consultas habilitado")
		}
	}

	// ---------------- Events ---------------
	var publisher sharedBus.EventPublisher

	if cfg.UseKafka {
		log.Info("🚀 Usando Kafka como bus de eventos", zap.String("topic", cfg.KafkaTopicQueries))

		writer := outboundEvents.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopicQueries)
		defer writer.Close()
		publisher = outboundEvents.NewKafkaPublisher(writer, log)

		if queryLog != nil {
			reader := listingEvents.NewKafkaReader(cfg.KafkaBrokers, cfg.KafkaTopicQueries, consumerGroup)
			defer reader.Close()
			listingEvents.NewConsumerAdapter(reader, queryLog, log).Start(ctx)
		}
	} else {
		log.Info("⚡️Usando bus de eventos en memoria (canales de Go)")

		bus := outboundEvents.NewInMemoryEventBus(sharedEvents.QueryTopic, log)
		defer bus.Close()
		publisher = bus

		if queryLog != nil {
			log.Info("🎧 Iniciando listener en memoria para eventos de consulta")
			listingEvents.BackgroundConsumerChan(ctx, bus.Subscribe(256), queryLog)
		}
	}

	if queryLog != nil {
		go queryLog.Run(ctx)
	}

	// --------------- Servicio --------------
	service := listingApp.NewListService(registry, store, codec, cacheInstance, publisher, listingApp.Options{
		Policy: validation.Policy{
			DefaultPageSize: cfg.DefaultPageSize,
			MaxPageSize:     cfg.MaxPageSize,
			MaxSortFields:   cfg.MaxSortFields,
			MaxSearchLength: cfg.MaxSearchLength,
			MaxInValues:     cfg.MaxInValues,
		},
		PageWindow:   cfg.PageWindow,
		CacheTTLSecs: int(cfg.CacheTTL / time.Second),
	}, log)

	// ---------------- HTTP ----------------
	handler := listingHttp.NewListHandler(service, stats, domain.SystemClock{}, log)
	router := gin.Default()
	listingHttp.RegisterHealth(router)
	listingHttp.RegisterListingRoutes(router, cfg.APIBasePath, handler)

	srv := &http.Server{Addr: ":" + cfg.HTTPPort, Handler: router}
	go func() {
		log.Info("🚀 Server running",
			zap.String("url", "http://localhost:"+cfg.HTTPPort+cfg.APIBasePath),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("🛑 Apagando servidor...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}

// openStore abre el backend elegido en STORE_DRIVER y devuelve su función de cierre.
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (domain.RowStore, func()) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal("failed to open Postgres", zap.Error(err))
		}
		log.Info("✅ PostgreSQL conectado")
		return postgres.NewRowStore(db, log), func() { db.Close() }

	case config.DriverMongo:
		client, err := mongodb.Connect(ctx, cfg.MongoURI)
		if err != nil {
			log.Fatal("failed to connect MongoDB", zap.Error(err))
		}
		log.Info("✅ MongoDB conectado", zap.String("db", cfg.MongoDB))
		return mongodb.NewStore(client.Database(cfg.MongoDB), log), func() {
			_ = client.Disconnect(context.Background())
		}

	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			log.Fatal("failed to open SQLite", zap.Error(err))
		}
		if cfg.SeedSQL != "" {
			if err := sqlite.ExecScript(ctx, db, cfg.SeedSQL); err != nil {
				log.Fatal("failed to seed SQLite", zap.Error(err))
			}
			log.Info("🌱 SQLite inicializado", zap.String("script", cfg.SeedSQL))
		}
		return sqlite.NewRowStore(db, log), func() { db.Close() }
	}

	log.Fatal("unknown STORE_DRIVER", zap.String("driver", cfg.StoreDriver))
	return nil, nil
}
