package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"astro_consult/internal/model"

	"github.com/jackc/pgx/v5"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// CallRepository defines operations for call status records
type CallRepository interface {
	Create(ctx context.Context, call *model.Call) error
	FindByID(ctx context.Context, id bson.ObjectID) (*model.Call, error)
	// UpdateStatus overwrites status verbatim and reports whether a call matched
	UpdateStatus(ctx context.Context, id bson.ObjectID, status string, at time.Time) (bool, error)
}

type callRepository struct {
	db DBTX
}

func NewCallRepository(db DBTX) CallRepository {
	return &callRepository{db: db}
}

func (r *callRepository) Create(ctx context.Context, c *model.Call) error {
	sql := `INSERT INTO calls (id, chat_id, caller_id, callee_id, call_type, status, created_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.Exec(ctx, sql, c.ID.Hex(), optionalHex(c.ChatID), optionalHex(c.CallerID), c.CalleeID.Hex(), c.CallType, c.Status, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create call: %w", err)
	}
	return nil
}

func (r *callRepository) FindByID(ctx context.Context, id bson.ObjectID) (*model.Call, error) {
	var (
		c                model.Call
		callID, callee   string
		chatID, callerID *string
	)
	sql := `SELECT id, chat_id, caller_id, callee_id, call_type, status, created_at, updated_at FROM calls WHERE id = $1`
	err := r.db.QueryRow(ctx, sql, id.Hex()).Scan(&callID, &chatID, &callerID, &callee, &c.CallType, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find call by ID: %w", err)
	}
	if c.ID, err = parseStoredID(callID); err != nil {
		return nil, err
	}
	if c.CalleeID, err = parseStoredID(callee); err != nil {
		return nil, err
	}
	if c.ChatID, err = parseStoredOptionalID(chatID); err != nil {
		return nil, err
	}
	if c.CallerID, err = parseStoredOptionalID(callerID); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *callRepository) UpdateStatus(ctx context.Context, id bson.ObjectID, status string, at time.Time) (bool, error) {
	cmdTag, err := r.db.Exec(ctx, `UPDATE calls SET status = $1, updated_at = $2 WHERE id = $3`, status, at, id.Hex())
	if err != nil {
		return false, fmt.Errorf("failed to update call status: %w", err)
	}
	return cmdTag.RowsAffected() > 0, nil
}
