package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-redis/redis"

	"github.com/sputnik-dev/sputnik/internal/config"
	serrors "github.com/sputnik-dev/sputnik/internal/errors"
	"github.com/sputnik-dev/sputnik/pkg/likes"
	"github.com/sputnik-dev/sputnik/pkg/server"
	"github.com/sputnik-dev/sputnik/pkg/session"
)

// backends holds the external services selected by the config.
type backends struct {
	store    session.Store
	recorder likes.Recorder

	// counter reads like totals back. It is the first recorder that keeps
	// a count, or nil.
	counter server.LikeCounter

	// closers run in reverse order.
	closers []func() error
}

// sharedRedis lets the session store and the like counter share one client.
// The store's Close is a no-op; backends closes the client itself.
type sharedRedis struct {
	*redis.Client
}

func (sharedRedis) Close() error { return nil }

func openBackends(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*backends, error) {
	b := &backends{recorder: likes.Discard}
	if err := b.open(ctx, cfg, logger); err != nil {
		_ = b.Close()
		return nil, err
	}
	return b, nil
}

func (b *backends) open(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	var rdb *redis.Client
	if cfg.Session.Store == config.StoreRedis || cfg.HasRecorder(config.RecorderRedis) {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		b.closers = append(b.closers, rdb.Close)
		if err := rdb.Ping().Err(); err != nil {
			return backendError("redis", cfg.Redis.Addr, err)
		}
		logger.Info("connected to redis", "addr", cfg.Redis.Addr)
	}

	switch cfg.Session.Store {
	case config.StoreRedis:
		var opts []session.RedisStoreOption
		if cfg.Redis.Prefix != "" {
			opts = append(opts, session.WithRedisPrefix(cfg.Redis.Prefix))
		}
		b.store = session.NewRedisStore(sharedRedis{rdb}, opts...)
	case config.StoreS3:
		client := session.NewS3Client(session.S3Config{
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			UsePathStyle:    cfg.S3.UsePathStyle,
		})
		b.store = session.NewS3Store(client, cfg.S3.Bucket, cfg.S3.Prefix)
	default:
		b.store = session.NewMemoryStore(session.WithCleanupInterval(cfg.Session.CleanupInterval))
	}
	logger.Info("session store ready", "store", cfg.Session.Store)

	var recorders []likes.Recorder
	for _, kind := range cfg.Likes.Recorders {
		switch kind {
		case config.RecorderRedis:
			rc := likes.NewRedisCounter(rdb).WithPrefix(cfg.Likes.RedisPrefix)
			b.setCounter(rc)
			recorders = append(recorders, rc)

		case config.RecorderAMQP:
			pub, err := likes.DialAMQP(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue)
			if err != nil {
				return backendError("rabbitmq", cfg.RabbitMQ.Queue, err)
			}
			b.closers = append(b.closers, pub.Close)
			recorders = append(recorders, pub)
			logger.Info("publishing likes to rabbitmq", "queue", pub.Queue())

		case config.RecorderMySQL:
			db, err := likes.OpenMySQL(cfg.Database.DSN, cfg.Database.MaxIdleConns, cfg.Database.MaxOpenConns)
			if err != nil {
				return backendError("mysql", "", err)
			}
			if sqlDB, err := db.DB(); err == nil {
				b.closers = append(b.closers, sqlDB.Close)
			}
			ledger := likes.NewGormLedger(db)
			if err := ledger.Migrate(ctx); err != nil {
				return backendError("mysql", "migrate", err)
			}
			b.setCounter(ledger)
			recorders = append(recorders, ledger)
		}
		logger.Info("like recorder ready", "recorder", kind)
	}

	if len(recorders) > 0 {
		async := likes.NewAsync(likes.Multi(recorders...), likes.AsyncConfig{
			Buffer:  cfg.Likes.Buffer,
			Timeout: cfg.Likes.Timeout,
		}, logger)
		b.closers = append(b.closers, async.Close)
		b.recorder = async
	}
	return nil
}

func (b *backends) setCounter(c server.LikeCounter) {
	if b.counter == nil {
		b.counter = c
	}
}

// Close drains the like recorder, then closes connections.
func (b *backends) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	b.closers = nil
	return errors.Join(errs...)
}

func backendError(service, detail string, err error) error {
	se := serrors.New("E402").Wrap(err)
	if detail != "" {
		return se.WithDetail(fmt.Sprintf("%s (%s)", service, detail))
	}
	return se.WithDetail(service)
}
