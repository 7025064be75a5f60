package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// ErrDuplicate is returned when an insert violates a unique index (user email, session token)
var ErrDuplicate = errors.New("duplicate key")

// uniqueViolation is the Postgres SQLSTATE for unique_violation
const uniqueViolation = "23505"

// DBTX is the subset of pgxpool.Pool the Postgres repositories need.
// pgxmock's pool satisfies it as well.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgxPool adds connectivity checks on top of DBTX
type PgxPool interface {
	DBTX
	Ping(ctx context.Context) error
}

// StoreInspector reports on the backing store for health endpoints
type StoreInspector interface {
	Ping(ctx context.Context) error
	CollectionNames(ctx context.Context) ([]string, error)
}

// Repositories bundles one implementation of every collection
type Repositories struct {
	Users    UserRepository
	Sessions SessionRepository
	Chats    ChatRepository
	Messages MessageRepository
	Calls    CallRepository
	Store    StoreInspector
}

// NewPostgresRepositories wires every repository to a Postgres pool
func NewPostgresRepositories(db PgxPool) *Repositories {
	return &Repositories{
		Users:    NewUserRepository(db),
		Sessions: NewSessionRepository(db),
		Chats:    NewChatRepository(db),
		Messages: NewMessageRepository(db),
		Calls:    NewCallRepository(db),
		Store:    &pgInspector{db: db},
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// Postgres stores ObjectIDs as their hex form

func parseStoredID(s string) (bson.ObjectID, error) {
	id, err := bson.ObjectIDFromHex(s)
	if err != nil {
		return bson.NilObjectID, fmt.Errorf("stored id %q is not an ObjectID: %w", s, err)
	}
	return id, nil
}

func parseStoredOptionalID(s *string) (*bson.ObjectID, error) {
	if s == nil {
		return nil, nil
	}
	id, err := parseStoredID(*s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func optionalHex(id *bson.ObjectID) *string {
	if id == nil {
		return nil
	}
	s := id.Hex()
	return &s
}

type pgInspector struct {
	db PgxPool
}

func (i *pgInspector) Ping(ctx context.Context) error {
	return i.db.Ping(ctx)
}

// CollectionNames lists the tables of the public schema
func (i *pgInspector) CollectionNames(ctx context.Context) ([]string, error) {
	rows, err := i.db.Query(ctx, `SELECT table_name FROM information_schema.tables WHERE table_schema = 'public' ORDER BY table_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating table names: %w", err)
	}
	return names, nil
}
