package service

import (
	"context"
	"time"

	"astro_consult/internal/model"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id bson.ObjectID) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *mockUserRepo) FindByRole(ctx context.Context, role string, limit int64) ([]model.User, error) {
	args := m.Called(ctx, role, limit)
	users, _ := args.Get(0).([]model.User)
	return users, args.Error(1)
}

type mockSessionRepo struct{ mock.Mock }

func (m *mockSessionRepo) Create(ctx context.Context, session *model.Session) error {
	return m.Called(ctx, session).Error(0)
}

func (m *mockSessionRepo) FindByToken(ctx context.Context, token string) (*model.Session, error) {
	args := m.Called(ctx, token)
	s, _ := args.Get(0).(*model.Session)
	return s, args.Error(1)
}

type mockCallRepo struct{ mock.Mock }

func (m *mockCallRepo) Create(ctx context.Context, call *model.Call) error {
	return m.Called(ctx, call).Error(0)
}

func (m *mockCallRepo) FindByID(ctx context.Context, id bson.ObjectID) (*model.Call, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*model.Call)
	return c, args.Error(1)
}

func (m *mockCallRepo) UpdateStatus(ctx context.Context, id bson.ObjectID, status string, at time.Time) (bool, error) {
	args := m.Called(ctx, id, status, at)
	return args.Bool(0), args.Error(1)
}
