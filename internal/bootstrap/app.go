package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/storage"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"legaldoc-ai/internal/ai"
	"legaldoc-ai/internal/app"
	"legaldoc-ai/internal/config"
	"legaldoc-ai/internal/extract"
	"legaldoc-ai/internal/knowledge"
	"legaldoc-ai/internal/metadata"
	gcpClient "legaldoc-ai/internal/platform/gcp"
	mysqlClient "legaldoc-ai/internal/platform/mysql"
	postgresClient "legaldoc-ai/internal/platform/postgres"
	rabbitmqClient "legaldoc-ai/internal/platform/rabbitmq"
	redisClient "legaldoc-ai/internal/platform/redis"
	sqliteClient "legaldoc-ai/internal/platform/sqlite"
	"legaldoc-ai/internal/repository"
	objectstore "legaldoc-ai/internal/storage"
	"legaldoc-ai/internal/worker"
)

type App struct {
	Config *config.Config
	Logger *slog.Logger

	Storage    *storage.Client
	BigQuery   *bigquery.Client
	Vision     *gcpClient.VisionOCR
	MySQL      *gorm.DB
	Postgres   *pgxpool.Pool
	SQLite     *sql.DB
	Redis      *redis.Client
	MQConn     *amqp.Connection
	MetaWorker *worker.MetadataPersistWorker

	AnalysisService *app.AnalysisService
	ChatService     *app.ChatService

	StartedAt time.Time
}

// New wires every component from configuration. Missing model or cloud
// credentials do not stop start-up; the endpoints that need them report it.
func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}
	logger := NewLogger(os.Stdout, cfg.App.LogLevel)
	a := &App{Config: cfg, Logger: logger, StartedAt: time.Now()}

	if err := a.init(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) init(ctx context.Context) error {
	cfg, logger := a.Config, a.Logger

	kb, err := knowledge.Load(logger, cfg.Knowledge.BNSPath, cfg.Knowledge.ConstitutionPath)
	if err != nil {
		return err
	}
	if bns, constitution := kb.Loaded(); !bns || !constitution {
		logger.Warn("legal knowledge base incomplete", "bns", bns, "constitution", constitution)
	}

	client, err := ai.New(ctx, cfg.LLM)
	switch {
	case errors.Is(err, ai.ErrNotConfigured):
		logger.Warn("model api key missing, analysis and chat are disabled")
		client = nil
	case err != nil:
		return err
	}

	store, err := a.objectStore(ctx)
	if err != nil {
		return err
	}

	var ocr extract.OCR
	if cfg.GCPConfigured() {
		vision, err := gcpClient.NewVisionOCR(ctx, cfg.GCP)
		if err != nil {
			logger.Warn("vision client unavailable, image uploads are disabled", "error", err)
		} else {
			a.Vision = vision
			ocr = vision
		}
	}
	registry, err := extract.NewDefaultRegistry(ctx, ocr, extract.ImageLimits{
		MaxDimension: cfg.OCR.MaxImageDimension,
		MaxPixels:    cfg.OCR.MaxPixels,
	}, logger)
	if err != nil {
		return err
	}

	sink, err := a.metadataSink(ctx)
	if err != nil {
		return err
	}
	if cfg.RabbitMQ.URL != "" {
		if sink, err = a.queueMetadata(ctx, sink); err != nil {
			return err
		}
	}

	a.AnalysisService = app.NewAnalysisService(
		client,
		store,
		metadata.NewLogger(sink, logger),
		registry,
		kb,
		app.AnalysisOptions{
			MaxBytes:         cfg.Upload.MaxBytes,
			TempDir:          cfg.Upload.TempDir,
			MaxDocumentChars: cfg.Analysis.MaxDocumentChars,
			DefaultLanguage:  cfg.Analysis.DefaultLanguage,
		},
		logger,
	)
	a.ChatService = app.NewChatService(client, cfg.Analysis.DefaultLanguage, logger)
	return nil
}

// objectStore returns nil without error when cloud storage is selected but
// not configured.
func (a *App) objectStore(ctx context.Context) (objectstore.ObjectStore, error) {
	cfg := a.Config
	switch cfg.Storage.Backend {
	case "local":
		return objectstore.NewLocalStore(cfg.Storage.LocalDir)
	case "gcs":
		if !cfg.GCPConfigured() {
			a.Logger.Warn("gcp project or bucket missing, uploads are disabled")
			return nil, nil
		}
		client, err := gcpClient.NewStorage(ctx, cfg.GCP)
		if err != nil {
			a.Logger.Warn("storage client unavailable, uploads are disabled", "error", err)
			return nil, nil
		}
		a.Storage = client
		return objectstore.NewGCSStore(client, cfg.GCP.BucketName), nil
	default:
		return nil, nil
	}
}

func (a *App) metadataSink(ctx context.Context) (metadata.Sink, error) {
	cfg := a.Config
	switch cfg.Metadata.Backend {
	case "bigquery":
		if cfg.GCP.ProjectID == "" {
			a.Logger.Warn("gcp project missing, metadata is not recorded")
			return metadata.Discard{}, nil
		}
		client, err := gcpClient.NewBigQuery(ctx, cfg.GCP)
		if err != nil {
			a.Logger.Warn("bigquery unavailable, metadata is not recorded", "error", err)
			return metadata.Discard{}, nil
		}
		a.BigQuery = client
		return metadata.NewBigQuerySink(client, cfg.GCP.Dataset, cfg.GCP.Table), nil
	case "mysql":
		db, err := mysqlClient.New(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, err
		}
		a.MySQL = db
		repo := repository.NewDocumentMetadataRepository(db)
		if err := repo.AutoMigrate(); err != nil {
			return nil, err
		}
		return metadata.NewGormSink(repo), nil
	case "postgres":
		pool, err := postgresClient.New(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, err
		}
		a.Postgres = pool
		sink := metadata.NewPostgresSink(pool, cfg.Postgres.Table)
		if err := sink.EnsureTable(ctx); err != nil {
			return nil, err
		}
		return sink, nil
	case "sqlite":
		db, err := sqliteClient.New(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		a.SQLite = db
		return metadata.NewSQLiteSink(ctx, db)
	case "redis":
		client, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		a.Redis = client
		return metadata.NewRedisStreamSink(client, cfg.Redis.Stream, cfg.Redis.MaxLen), nil
	default:
		return metadata.Discard{}, nil
	}
}

// queueMetadata routes records through RabbitMQ; the worker writes them to
// target.
func (a *App) queueMetadata(ctx context.Context, target metadata.Sink) (metadata.Sink, error) {
	conn, err := rabbitmqClient.New(ctx, a.Config.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}
	a.MQConn = conn

	queue := a.Config.RabbitMQ.MetadataQueue
	w := worker.NewMetadataPersistWorker(conn, target, queue, a.Logger)
	// the worker outlives the start-up context
	if err := w.Start(context.WithoutCancel(ctx)); err != nil {
		return nil, fmt.Errorf("start metadata worker failed: %w", err)
	}
	a.MetaWorker = w
	return metadata.NewQueueSink(rabbitmqClient.NewMetadataPublisher(conn, queue), target.Name()), nil
}

// HealthChecks returns a probe for every connected backend.
func (a *App) HealthChecks() map[string]func(ctx context.Context) error {
	checks := map[string]func(ctx context.Context) error{}
	if a.MySQL != nil {
		checks["mysql"] = func(ctx context.Context) error {
			sqlDB, err := a.MySQL.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}
	if a.Postgres != nil {
		checks["postgres"] = a.Postgres.Ping
	}
	if a.SQLite != nil {
		checks["sqlite"] = a.SQLite.PingContext
	}
	if a.Redis != nil {
		checks["redis"] = func(ctx context.Context) error { return a.Redis.Ping(ctx).Err() }
	}
	if a.MQConn != nil {
		checks["rabbitmq"] = func(context.Context) error {
			if a.MQConn.IsClosed() {
				return errors.New("connection closed")
			}
			return nil
		}
	}
	if a.Storage != nil {
		checks["gcs"] = func(ctx context.Context) error {
			return gcpClient.CheckBucket(ctx, a.Storage, a.Config.GCP.BucketName)
		}
	}
	return checks
}

func (a *App) Close() error {
	var closeErr error
	keep := func(err error) {
		if err != nil {
			closeErr = err
		}
	}
	if a.MetaWorker != nil {
		a.MetaWorker.Close()
	}
	if a.MQConn != nil {
		keep(a.MQConn.Close())
	}
	if a.Redis != nil {
		keep(a.Redis.Close())
	}
	if a.MySQL != nil {
		if sqlDB, err := a.MySQL.DB(); err == nil {
			keep(sqlDB.Close())
		}
	}
	if a.Postgres != nil {
		a.Postgres.Close()
	}
	if a.SQLite != nil {
		keep(a.SQLite.Close())
	}
	if a.Vision != nil {
		keep(a.Vision.Close())
	}
	if a.BigQuery != nil {
		keep(a.BigQuery.Close())
	}
	if a.Storage != nil {
		keep(a.Storage.Close())
	}
	return closeErr
}
