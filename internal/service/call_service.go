package service

import (
	"context"
	"fmt"
	"time"

	"astro_consult/internal/model"
	"astro_consult/internal/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"
)

// CallService records call attempts. There is no signaling transport behind it.
type CallService interface {
	InitCall(ctx context.Context, calleeID, callType string, chatID *string) (string, error)
	GetCall(ctx context.Context, callID string) (*model.Call, error)
	UpdateCallStatus(ctx context.Context, callID, status string) (string, error)
}

type callService struct {
	repo repository.CallRepository
	log  *zap.Logger
}

func NewCallService(repo repository.CallRepository, log *zap.Logger) CallService {
	return &callService{repo: repo, log: log}
}

func (s *callService) InitCall(ctx context.Context, calleeID, callType string, chatID *string) (string, error) {
	callee, err := parseID(calleeID)
	if err != nil {
		return "", err
	}
	chat, err := parseOptionalID(chatID)
	if err != nil {
		return "", err
	}
	if callType == "" {
		callType = model.CallTypeAudio
	}
	if callType != model.CallTypeAudio && callType != model.CallTypeVideo {
		return "", ErrInvalidCallType
	}

	call := &model.Call{
		ID:        bson.NewObjectID(),
		ChatID:    chat,
		CalleeID:  callee,
		CallType:  callType,
		Status:    model.CallStatusInitiated,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, call); err != nil {
		return "", fmt.Errorf("failed to create call in repo: %w", err)
	}
	return call.ID.Hex(), nil
}

func (s *callService) GetCall(ctx context.Context, callID string) (*model.Call, error) {
	id, err := parseID(callID)
	if err != nil {
		return nil, err
	}
	call, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find call: %w", err)
	}
	if call == nil {
		return nil, ErrCallNotFound
	}
	return call, nil
}

// UpdateCallStatus stores status verbatim. Values outside the declared call states are
// accepted, and an unknown call id is not reported.
func (s *callService) UpdateCallStatus(ctx context.Context, callID, status string) (string, error) {
	id, err := parseID(callID)
	if err != nil {
		return "", err
	}
	if status == "" {
		return "", ErrStatusRequired
	}

	matched, err := s.repo.UpdateStatus(ctx, id, status, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("failed to update call status: %w", err)
	}
	if !matched {
		s.log.Debug("call status update matched no call", zap.String("call_id", callID))
	}
	return status, nil
}
