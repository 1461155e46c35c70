package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

func TestRepositoryCreateAndFind(t *testing.T) {
	client := dbtest.Open(t)
	repo := NewRepository(client.DB())
	ctx := context.Background()

	user, err := repo.Create(ctx, CreateUserDTO{Name: "Ann", Email: "ann@x.com", PasswordHash: "hash"})
	require.NoError(t, err)
	require.NotZero(t, user.ID)
	require.Equal(t, enums.RoleBuyer, user.Role)

	found, err := repo.FindByEmail(ctx, "ann@x.com")
	require.NoError(t, err)
	require.Equal(t, user.ID, found.ID)

	exists, err := repo.Exists(ctx, user.ID)
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = repo.Exists(ctx, user.ID+1)
	require.NoError(t, err)
	require.False(t, exists)

	_, err = repo.Create(ctx, CreateUserDTO{Name: "Dup", Email: "ann@x.com", PasswordHash: "hash"})
	require.Error(t, err)
	require.True(t, db.IsUniqueViolation(err, ""))
}

func TestServiceGetUser(t *testing.T) {
	client := dbtest.Open(t)
	repo := NewRepository(client.DB())
	ctx := context.Background()

	created, err := repo.Create(ctx, CreateUserDTO{Name: "Ann", Email: "ann@x.com", PasswordHash: "hash", Role: enums.RoleAdmin})
	require.NoError(t, err)

	svc, err := NewService(repo)
	require.NoError(t, err)

	user, err := svc.GetUser(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Ann", user.Name)
	require.Equal(t, enums.RoleAdmin, user.Role)

	_, err = svc.GetUser(ctx, created.ID+99)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	require.Equal(t, "user not found", pkgerrors.As(err).Message())
}

func TestNewServiceRequiresRepo(t *testing.T) {
	_, err := NewService(nil)
	require.Error(t, err)
}
