package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Lelo88/computacion-api-golang/internal/computacion"
	"github.com/Lelo88/computacion-api-golang/internal/config"
	"github.com/Lelo88/computacion-api-golang/internal/db"
	"github.com/Lelo88/computacion-api-golang/internal/logging"
)

// Hooks para tests.
var (
	newMongoClientFn = db.NewMongoClient
	newPoolFn        = db.NewPool
)

type mongoAppStore struct {
	*computacion.MongoStore
	client *mongo.Client
}

func (store *mongoAppStore) Close(ctx context.Context) {
	if err := db.CloseMongoClient(ctx, store.client); err != nil {
		logging.FromContext(ctx).Warn().Err(err).Msg("mongo disconnect failed")
	}
}

type postgresAppStore struct {
	*computacion.PostgresStore
	pool *pgxpool.Pool
}

func (store *postgresAppStore) Close(ctx context.Context) {
	store.pool.Close()
}

// openStore conecta el backend que indica el esquema de DATABASE_URL.
func openStore(ctx context.Context, cfg config.Config) (appStore, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		client, err := newMongoClientFn(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return &mongoAppStore{
			MongoStore: computacion.NewMongoStore(client, cfg.DatabaseName),
			client:     client,
		}, nil

	case config.DriverPostgres:
		pool, err := newPoolFn(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		store := computacion.NewPostgresStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		return &postgresAppStore{PostgresStore: store, pool: pool}, nil

	default:
		return nil, fmt.Errorf("unsupported driver %q", cfg.Driver)
	}
}
