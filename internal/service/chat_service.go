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

// ChatService manages chat threads and their messages
type ChatService interface {
	CreateChat(ctx context.Context, astrologerID string, minFee float64) (string, error)
	SendMessage(ctx context.Context, chatID, senderID, content string) error
	ListMessages(ctx context.Context, chatID string) ([]model.MessageView, error)
}

type chatService struct {
	userRepo    repository.UserRepository
	chatRepo    repository.ChatRepository
	messageRepo repository.MessageRepository
	log         *zap.Logger
}

// NewChatService creates a new ChatService
func NewChatService(userRepo repository.UserRepository, chatRepo repository.ChatRepository, messageRepo repository.MessageRepository, log *zap.Logger) ChatService {
	return &chatService{
		userRepo:    userRepo,
		chatRepo:    chatRepo,
		messageRepo: messageRepo,
		log:         log,
	}
}

// CreateChat opens a thread with an astrologer. The client side stays unset until the first message.
func (s *chatService) CreateChat(ctx context.Context, astrologerID string, minFee float64) (string, error) {
	astroID, err := parseID(astrologerID)
	if err != nil {
		return "", err
	}
	if minFee < 0 {
		return "", ErrNegativeAmount
	}

	astrologer, err := s.userRepo.FindByID(ctx, astroID)
	if err != nil {
		return "", fmt.Errorf("failed to find astrologer: %w", err)
	}
	if astrologer == nil || astrologer.Role != model.RoleAstrologer {
		return "", ErrAstrologerNotFound
	}

	now := time.Now().UTC()
	chat := &model.Chat{
		ID:           bson.NewObjectID(),
		AstrologerID: astroID,
		Status:       model.ChatStatusActive,
		MinFee:       minFee,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.chatRepo.Create(ctx, chat); err != nil {
		return "", fmt.Errorf("failed to create chat in repo: %w", err)
	}
	return chat.ID.Hex(), nil
}

// SendMessage appends a text message. The first sender of a chat becomes its user.
func (s *chatService) SendMessage(ctx context.Context, chatID, senderID, content string) error {
	cid, err := parseID(chatID)
	if err != nil {
		return err
	}
	sid, err := parseID(senderID)
	if err != nil {
		return err
	}

	chat, err := s.chatRepo.FindByID(ctx, cid)
	if err != nil {
		return fmt.Errorf("failed to find chat: %w", err)
	}
	if chat == nil {
		return ErrChatNotFound
	}

	now := time.Now().UTC()
	if chat.UserID == nil {
		assigned, err := s.chatRepo.AssignUser(ctx, cid, sid, now)
		if err != nil {
			return fmt.Errorf("failed to set chat user: %w", err)
		}
		if !assigned {
			s.log.Debug("chat user already set by a concurrent sender", zap.String("chat_id", chatID))
		}
	}

	msg := &model.Message{
		ID:        bson.NewObjectID(),
		ChatID:    cid,
		SenderID:  sid,
		Content:   content,
		MsgType:   model.MessageTypeText,
		CreatedAt: now,
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return fmt.Errorf("failed to store message: %w", err)
	}
	return nil
}

// ListMessages returns a chat's messages oldest first. An unknown chat yields an empty list.
func (s *chatService) ListMessages(ctx context.Context, chatID string) ([]model.MessageView, error) {
	cid, err := parseID(chatID)
	if err != nil {
		return nil, err
	}

	messages, err := s.messageRepo.FindByChat(ctx, cid)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	views := make([]model.MessageView, 0, len(messages))
	for i := range messages {
		views = append(views, messages[i].View())
	}
	return views, nil
}
