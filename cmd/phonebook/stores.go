package main

import (
	"context"
	"database/sql"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/redmath/phonebook/internal/core/ports"
	"github.com/redmath/phonebook/internal/infrastructure/config"
	"github.com/redmath/phonebook/internal/infrastructure/db/memory"
	"github.com/redmath/phonebook/internal/infrastructure/db/mongo"
	"github.com/redmath/phonebook/internal/infrastructure/db/postgres"
	"github.com/redmath/phonebook/internal/infrastructure/db/redis"
	"github.com/redmath/phonebook/internal/infrastructure/http/handlers"
)

// stores holds the repositories selected by configuration and the
// connections that must be closed on exit.
type stores struct {
	users    ports.UserRepository
	contacts ports.ContactRepository
	states   ports.StateStore
	pingers  map[string]handlers.Pinger
	closers  []func()
}

func (s *stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	s := &stores{pingers: make(map[string]handlers.Pinger)}

	if err := s.openRecords(ctx, cfg, log); err != nil {
		s.Close()
		return nil, err
	}
	if err := s.openStates(ctx, cfg, log); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *stores) openRecords(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		client, db, err := mongo.Connect(ctx, mongo.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			Timeout:  cfg.Mongo.Timeout,
		})
		if err != nil {
			return err
		}
		s.closers = append(s.closers, func() { disconnectMongo(client, log) })
		if err := mongo.EnsureIndexes(ctx, db); err != nil {
			return fmt.Errorf("mongo indexes: %w", err)
		}
		s.users = mongo.NewUserRepository(db)
		s.contacts = mongo.NewContactRepository(db)
		s.pingers["mongo"] = mongo.Pinger{Client: client}

	case config.DriverPostgres:
		db, err := postgres.Connect(ctx, cfg.Postgres.DSN)
		if err != nil {
			return err
		}
		s.closers = append(s.closers, func() { closeSQL(db, log) })
		if err := postgres.RunMigrations(ctx, db); err != nil {
			return err
		}
		s.users = postgres.NewUserRepository(db)
		s.contacts = postgres.NewContactRepository(db)
		s.pingers["postgres"] = handlers.PingFunc(db.PingContext)

	default:
		users := memory.NewUserRepository()
		s.users = users
		s.contacts = memory.NewContactRepository()
		s.pingers["memory"] = users
		log.Warn().Msg("using the in-memory store, data is lost on restart")
	}

	log.Info().Str("driver", cfg.StoreDriver).Msg("record store ready")
	return nil
}

func (s *stores) openStates(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	if cfg.Redis.Addr == "" {
		s.states = memory.NewStateStore()
		return nil
	}

	client, err := redis.Connect(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err != nil {
		return err
	}
	s.closers = append(s.closers, func() { closeRedis(client, log) })
	s.states = redis.NewStateStore(client)
	s.pingers["redis"] = redis.Pinger{Client: client}
	log.Info().Str("addr", cfg.Redis.Addr).Msg("oauth state store ready")
	return nil
}

func disconnectMongo(client *mongodriver.Client, log zerolog.Logger) {
	if err := client.Disconnect(context.Background()); err != nil {
		log.Error().Err(err).Msg("mongo disconnect failed")
	}
}

func closeSQL(db *sql.DB, log zerolog.Logger) {
	if err := db.Close(); err != nil {
		log.Error().Err(err).Msg("postgres close failed")
	}
}

func closeRedis(client *goredis.Client, log zerolog.Logger) {
	if err := client.Close(); err != nil {
		log.Error().Err(err).Msg("redis close failed")
	}
}
