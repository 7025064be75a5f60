package config

import (
	"context"
	"fmt"
	"time"

	"astro_consult/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.uber.org/zap"
)

// DBConfig holds database connection parameters
type DBConfig struct {
	DSN string
}

// loadDBConfig builds the Postgres DSN from DATABASE_URL or the DB_* variables
func loadDBConfig(v *viper.Viper) (*DBConfig, error) {
	if url := v.GetString("DATABASE_URL"); url != "" {
		return &DBConfig{DSN: url}, nil
	}

	dbHost := v.GetString("DB_HOST")
	dbPort := v.GetString("DB_PORT")
	dbUser := v.GetString("DB_USER")
	dbPassword := v.GetString("DB_PASSWORD")
	dbName := v.GetString("DB_NAME")

	if dbHost == "" || dbPort == "" || dbUser == "" || dbName == "" {
		return nil, fmt.Errorf("database environment variables not set (DATABASE_URL or DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME)")
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		dbHost, dbPort, dbUser, dbPassword, dbName)

	return &DBConfig{DSN: dsn}, nil
}

// retry runs connect until it succeeds or attempts are exhausted
func retry(ctx context.Context, log *zap.Logger, what string, attempts int, interval time.Duration, connect func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = connect(); err == nil {
			return nil
		}
		log.Warn("failed to connect",
			zap.String("store", what), zap.Int("attempt", i+1), zap.Int("max_attempts", attempts),
			zap.Duration("retry_in", interval), zap.Error(err))
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
	return fmt.Errorf("unable to connect to %s after %d attempts: %w", what, attempts, err)
}

// ConnectDB establishes a connection pool to PostgreSQL
func ConnectDB(ctx context.Context, cfg *Config, log *zap.Logger) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	err := retry(ctx, log, "postgres", cfg.ConnectRetries, cfg.RetryInterval, func() error {
		p, err := pgxpool.New(ctx, cfg.Postgres.DSN)
		if err != nil {
			return err
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			return err
		}
		pool = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info("connected to PostgreSQL")
	return pool, nil
}

// ConnectMongo establishes a MongoDB client and verifies it with a ping
func ConnectMongo(ctx context.Context, cfg *Config, log *zap.Logger) (*mongo.Client, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return nil, fmt.Errorf("invalid mongo configuration: %w", err)
	}

	err = retry(ctx, log, "mongo", cfg.ConnectRetries, cfg.RetryInterval, func() error {
		return client.Ping(ctx, readpref.Primary())
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	log.Info("connected to MongoDB", zap.String("database", cfg.Mongo.Database))
	return client, nil
}

// AutoMigrate creates the Postgres tables if they don't exist
func AutoMigrate(ctx context.Context, db repository.DBTX) error {
	sql := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL CHECK (role IN ('user', 'astrologer')) DEFAULT 'user',
		rate_per_min DOUBLE PRECISION CHECK (rate_per_min >= 0),
		bio TEXT,
		skills TEXT[],
		rating DOUBLE PRECISION CHECK (rating >= 0 AND rating <= 5),
		avatar_url TEXT,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL, -- written before the user row on register
		token TEXT UNIQUE NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL,
		expires_at TIMESTAMP WITH TIME ZONE NOT NULL
	);

	CREATE TABLE IF NOT EXISTS chats (
		id TEXT PRIMARY KEY,
		user_id TEXT, -- set by the first message
		astrologer_id TEXT NOT NULL REFERENCES users(id),
		status TEXT NOT NULL CHECK (status IN ('active', 'closed')) DEFAULT 'active',
		min_fee DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (min_fee >= 0),
		created_at TIMESTAMP WITH TIME ZONE NOT NULL,
		updated_at TIMESTAMP WITH TIME ZONE NOT NULL
	);

	CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		chat_id TEXT NOT NULL REFERENCES chats(id),
		sender_id TEXT NOT NULL,
		content TEXT NOT NULL,
		msg_type TEXT NOT NULL CHECK (msg_type IN ('text', 'system')) DEFAULT 'text',
		created_at TIMESTAMP WITH TIME ZONE NOT NULL
	);

	-- status is free text on purpose, updates store it verbatim
	CREATE TABLE IF NOT EXISTS calls (
		id TEXT PRIMARY KEY,
		chat_id TEXT,
		caller_id TEXT,
		callee_id TEXT NOT NULL,
		call_type TEXT NOT NULL CHECK (call_type IN ('audio', 'video')),
		status TEXT NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL,
		updated_at TIMESTAMP WITH TIME ZONE
	);

	CREATE INDEX IF NOT EXISTS idx_users_role ON users(role);
	CREATE INDEX IF NOT EXISTS idx_messages_chat_created ON messages(chat_id, created_at, id);
	`
	if _, err := db.Exec(ctx, sql); err != nil {
		return fmt.Errorf("unable to apply migrations: %w", err)
	}
	return nil
}

// EnsureMongoIndexes creates the unique and lookup indexes of the document store
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		repository.CollectionUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "role", Value: 1}}},
		},
		repository.CollectionSessions: {
			{Keys: bson.D{{Key: "token", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		repository.CollectionMessages: {
			{Keys: bson.D{{Key: "chat_id", Value: 1}, {Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}},
		},
	}

	for coll, models := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("unable to create indexes on %s: %w", coll, err)
		}
	}
	return nil
}
