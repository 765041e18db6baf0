// Package container builds the application graph once at startup and hands it
// to the router. Nothing in here is global.
package container

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/oksasatya/go-article-feed/config"
	"github.com/oksasatya/go-article-feed/internal/application"
	"github.com/oksasatya/go-article-feed/internal/domain/repository"
	"github.com/oksasatya/go-article-feed/internal/infrastructure/memory"
	"github.com/oksasatya/go-article-feed/internal/infrastructure/messaging"
	mongoinfra "github.com/oksasatya/go-article-feed/internal/infrastructure/mongodb"
	"github.com/oksasatya/go-article-feed/internal/infrastructure/objectstore"
	pginfra "github.com/oksasatya/go-article-feed/internal/infrastructure/postgres"
	"github.com/oksasatya/go-article-feed/internal/infrastructure/search"
	"github.com/oksasatya/go-article-feed/pkg/helpers"
)

type Container struct {
	Config *config.Config
	Logger *logrus.Logger
	JWT    *helpers.JWTManager
	// Redis is nil when rate limiting is disabled.
	Redis *redis.Client

	UserRepo    repository.UserRepository
	ArticleRepo repository.ArticleRepository
	Images      repository.ImageStorage
	Index       repository.ArticleIndex
	Events      repository.EventPublisher
	Audit       repository.AuditRepository

	Users    *application.UserService
	Auth     *application.AuthService
	Articles *application.ArticleService

	closers []func()
}

// Build connects every backend selected in cfg and wires the services.
// On error, whatever was already opened is closed.
func Build(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (c *Container, err error) {
	c = &Container{
		Config: cfg,
		Logger: logger,
		JWT:    helpers.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL, cfg.AppName),
	}
	defer func() {
		if err != nil {
			c.Close()
			c = nil
		}
	}()

	if err = c.buildStore(ctx); err != nil {
		return c, err
	}
	if err = c.buildImages(ctx); err != nil {
		return c, err
	}
	if err = c.buildOptional(ctx); err != nil {
		return c, err
	}

	c.Users = application.NewUserService(c.UserRepo, c.Images, c.Events, c.Audit, logger)
	c.Auth = application.NewAuthService(c.Users, c.JWT, c.Events, c.Audit, logger)
	c.Articles = application.NewArticleService(c.ArticleRepo, c.Images, c.Index, c.Events, logger, cfg.OwnershipChecks)
	return c, nil
}

func (c *Container) buildStore(ctx context.Context) error {
	cfg := c.Config
	switch cfg.StoreDriver {
	case "memory":
		c.Logger.Warn("STORE_DRIVER=memory: data is lost on restart")
		c.UserRepo = memory.NewUserRepository()
		c.ArticleRepo = memory.NewArticleRepository()
		return nil
	case "mongo", "mongodb":
		client, err := mongoinfra.NewClient(ctx, cfg.MongoURI, cfg.MongoMaxPool, cfg.MongoTimeout)
		if err != nil {
			return fmt.Errorf("connect mongo: %w", err)
		}
		c.onClose(func() { _ = client.Disconnect(context.Background()) })
		db := client.Database(cfg.MongoDatabase)
		if cfg.EnsureIndexes {
			if err := mongoinfra.EnsureIndexes(ctx, db); err != nil {
				return fmt.Errorf("ensure mongo indexes: %w", err)
			}
		}
		c.useMongo(db)
		return nil
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}

func (c *Container) useMongo(db *mongo.Database) {
	c.UserRepo = mongoinfra.NewUserRepository(db)
	c.ArticleRepo = mongoinfra.NewArticleRepository(db)
}

func (c *Container) buildImages(ctx context.Context) error {
	cfg := c.Config
	switch cfg.ObjectStorageDriver {
	case "memory":
		c.Images = memory.NewImageStore("")
	case "s3", "minio":
		store, err := objectstore.NewS3Store(ctx, objectstore.S3Config{
			Endpoint:      cfg.S3Endpoint,
			Region:        cfg.S3Region,
			AccessKeyID:   cfg.S3AccessKeyID,
			SecretKey:     cfg.S3SecretKey,
			Bucket:        cfg.S3Bucket,
			UseSSL:        cfg.S3UseSSL,
			PublicBaseURL: cfg.S3PublicBaseURL,
		})
		if err != nil {
			return err
		}
		c.Images = store
	case "gcs":
		client, err := objectstore.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			return fmt.Errorf("init gcs client: %w", err)
		}
		c.onClose(func() { _ = client.Close() })
		c.Images = objectstore.NewGCSStore(client, cfg.GCSBucket)
	default:
		return fmt.Errorf("unknown OBJECT_STORAGE_DRIVER %q", cfg.ObjectStorageDriver)
	}
	return nil
}

// buildOptional connects the side systems. Search, events and audit are
// left nil when disabled so the services skip them.
func (c *Container) buildOptional(ctx context.Context) error {
	cfg := c.Config

	if cfg.RedisEnabled {
		rdb, err := helpers.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			helpers.LogWarn(c.Logger, "redis unavailable, rate limiting disabled", err, logrus.Fields{"addr": cfg.RedisAddr})
		} else {
			c.Redis = rdb
			c.onClose(func() { _ = rdb.Close() })
		}
	}

	if cfg.SearchEnabled {
		es, err := helpers.NewESClient(ctx, cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			return fmt.Errorf("connect elasticsearch: %w", err)
		}
		idx := search.NewArticleIndex(es, cfg.ESArticlesIndex)
		if err := idx.EnsureIndex(ctx); err != nil {
			return fmt.Errorf("ensure search index: %w", err)
		}
		c.Index = idx
	} else if cfg.StoreDriver == "memory" {
		c.Index = memory.NewArticleIndex()
	}

	if cfg.EventsEnabled {
		pub, err := messaging.NewPublisher(cfg.RabbitMQURL, cfg.EventsQueue)
		if err != nil {
			return fmt.Errorf("connect rabbitmq: %w", err)
		}
		c.onClose(pub.Close)
		c.Events = pub
	}

	if cfg.AuditEnabled {
		if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, c.Logger); err != nil {
			return fmt.Errorf("audit migrations: %w", err)
		}
		pool, err := pginfra.NewPool(ctx, pginfra.PoolConfig{
			DSN:             cfg.PostgresDSN(),
			MaxConns:        cfg.DBMaxConns,
			MinConns:        cfg.DBMinConns,
			MaxConnLifetime: cfg.DBMaxConnLife,
			ApplicationName: cfg.AppName,
		})
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		c.onClose(pool.Close)
		c.Audit = pginfra.NewAuditRepository(pool)
	}
	return nil
}

func (c *Container) onClose(fn func()) {
	c.closers = append(c.closers, fn)
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
