package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"astro_consult/internal/model"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// memoryStore keeps every collection in process memory. Used for local runs and tests.
type memoryStore struct {
	mu       sync.RWMutex
	users    map[bson.ObjectID]model.User
	order    []bson.ObjectID // user insertion order, the "store default" order
	sessions map[string]model.Session
	chats    map[bson.ObjectID]model.Chat
	messages map[bson.ObjectID][]model.Message
	calls    map[bson.ObjectID]model.Call
}

// NewMemoryRepositories returns repositories sharing one in-memory store
func NewMemoryRepositories() *Repositories {
	s := &memoryStore{
		users:    make(map[bson.ObjectID]model.User),
		sessions: make(map[string]model.Session),
		chats:    make(map[bson.ObjectID]model.Chat),
		messages: make(map[bson.ObjectID][]model.Message),
		calls:    make(map[bson.ObjectID]model.Call),
	}
	return &Repositories{
		Users:    &memUserRepository{s},
		Sessions: &memSessionRepository{s},
		Chats:    &memChatRepository{s},
		Messages: &memMessageRepository{s},
		Calls:    &memCallRepository{s},
		Store:    s,
	}
}

func (s *memoryStore) Ping(ctx context.Context) error {
	return nil
}

func (s *memoryStore) CollectionNames(ctx context.Context) ([]string, error) {
	return []string{CollectionCalls, CollectionChats, CollectionMessages, CollectionSessions, CollectionUsers}, nil
}

type memUserRepository struct{ s *memoryStore }

func (r *memUserRepository) Create(ctx context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == user.Email {
			return ErrDuplicate
		}
	}
	r.s.users[user.ID] = *user
	r.s.order = append(r.s.order, user.ID)
	return nil
}

func (r *memUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *memUserRepository) FindByID(ctx context.Context, id bson.ObjectID) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *memUserRepository) FindByRole(ctx context.Context, role string, limit int64) ([]model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	users := []model.User{}
	for _, id := range r.s.order {
		if int64(len(users)) >= limit {
			break
		}
		if u := r.s.users[id]; u.Role == role {
			users = append(users, u)
		}
	}
	return users, nil
}

type memSessionRepository struct{ s *memoryStore }

func (r *memSessionRepository) Create(ctx context.Context, session *model.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.sessions[session.Token]; exists {
		return ErrDuplicate
	}
	r.s.sessions[session.Token] = *session
	return nil
}

func (r *memSessionRepository) FindByToken(ctx context.Context, token string) (*model.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	sess, ok := r.s.sessions[token]
	if !ok {
		return nil, nil
	}
	return &sess, nil
}

type memChatRepository struct{ s *memoryStore }

func (r *memChatRepository) Create(ctx context.Context, chat *model.Chat) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.chats[chat.ID] = *chat
	return nil
}

func (r *memChatRepository) FindByID(ctx context.Context, id bson.ObjectID) (*model.Chat, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.chats[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *memChatRepository) AssignUser(ctx context.Context, chatID, userID bson.ObjectID, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.chats[chatID]
	if !ok || c.UserID != nil {
		return false, nil
	}
	c.UserID = &userID
	c.UpdatedAt = at
	r.s.chats[chatID] = c
	return true, nil
}

type memMessageRepository struct{ s *memoryStore }

func (r *memMessageRepository) Create(ctx context.Context, msg *model.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.messages[msg.ChatID] = append(r.s.messages[msg.ChatID], *msg)
	return nil
}

func (r *memMessageRepository) FindByChat(ctx context.Context, chatID bson.ObjectID) ([]model.Message, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	messages := make([]model.Message, len(r.s.messages[chatID]))
	copy(messages, r.s.messages[chatID])
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})
	return messages, nil
}

type memCallRepository struct{ s *memoryStore }

func (r *memCallRepository) Create(ctx context.Context, call *model.Call) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.calls[call.ID] = *call
	return nil
}

func (r *memCallRepository) FindByID(ctx context.Context, id bson.ObjectID) (*model.Call, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.calls[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *memCallRepository) UpdateStatus(ctx context.Context, id bson.ObjectID, status string, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.calls[id]
	if !ok {
		return false, nil
	}
	c.Status = status
	c.UpdatedAt = &at
	r.s.calls[id] = c
	return true, nil
}
