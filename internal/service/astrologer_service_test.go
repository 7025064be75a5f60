package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"astro_consult/internal/model"
	"astro_consult/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestListAstrologers_CappedAndFiltered(t *testing.T) {
	repos := repository.NewMemoryRepositories()
	ctx := context.Background()
	rate := 3.0

	for i := 0; i < DirectoryLimit+5; i++ {
		require.NoError(t, repos.Users.Create(ctx, &model.User{
			ID: bson.NewObjectID(), Name: fmt.Sprintf("astro-%d", i), Email: fmt.Sprintf("a%d@x.io", i),
			PasswordHash: "secret-hash", Role: model.RoleAstrologer, RatePerMin: &rate,
		}))
	}
	require.NoError(t, repos.Users.Create(ctx, &model.User{ID: bson.NewObjectID(), Email: "u@x.io", Role: model.RoleUser}))

	list, err := NewAstrologerService(repos.Users).ListAstrologers(ctx)
	require.NoError(t, err)
	assert.Len(t, list, DirectoryLimit)
	assert.Equal(t, "astro-0", list[0].Name)
	require.NotNil(t, list[0].RatePerMin)
	assert.Equal(t, 3.0, *list[0].RatePerMin)
}

func TestListAstrologers_Empty(t *testing.T) {
	list, err := NewAstrologerService(repository.NewMemoryRepositories().Users).ListAstrologers(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestListAstrologers_StoreFailure(t *testing.T) {
	users := new(mockUserRepo)
	users.On("FindByRole", mock.Anything, model.RoleAstrologer, int64(DirectoryLimit)).Return(nil, errors.New("timeout"))

	_, err := NewAstrologerService(users).ListAstrologers(context.Background())
	assert.ErrorContains(t, err, "timeout")
}
