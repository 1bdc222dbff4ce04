package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/sweetshop/api/internal/core/domain"
)

func TestAuthRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	ctx := context.Background()
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	mt.Run("create", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo := NewAuthRepository(mt.DB)

		got, err := repo.Create(ctx, &domain.User{Username: "alice", Email: "a@x.io", PasswordHash: "h", Role: domain.RoleUser, CreatedAt: now})
		require.NoError(mt, err)
		assert.Len(mt, got.ID, 24)
		assert.Equal(mt, "alice", got.Username)
	})

	mt.Run("duplicate username or email", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error",
		}))
		repo := NewAuthRepository(mt.DB)

		_, err := repo.Create(ctx, &domain.User{Username: "alice", Email: "a@x.io"})
		assert.ErrorIs(mt, err, domain.ErrUserExists)
	})

	mt.Run("find by email", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.users", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "username", Value: "alice"},
			{Key: "email", Value: "a@x.io"},
			{Key: "password", Value: "hash"},
			{Key: "role", Value: "admin"},
			{Key: "createdAt", Value: now},
			{Key: "updatedAt", Value: now},
		}))
		repo := NewAuthRepository(mt.DB)

		got, err := repo.FindByEmail(ctx, "a@x.io")
		require.NoError(mt, err)
		assert.Equal(mt, id.Hex(), got.ID)
		assert.Equal(mt, "hash", got.PasswordHash)
		assert.Equal(mt, domain.RoleAdmin, got.Role)
	})

	mt.Run("find by email with no match", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.users", mtest.FirstBatch))
		repo := NewAuthRepository(mt.DB)

		_, err := repo.FindByEmail(ctx, "nobody@x.io")
		assert.ErrorIs(mt, err, domain.ErrUserNotFound)
	})

	mt.Run("update role", func(mt *mtest.T) {
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "value", Value: bson.D{
				{Key: "_id", Value: primitive.NewObjectID()},
				{Key: "username", Value: "adminsuper"},
				{Key: "role", Value: "admin"},
			}},
		})
		repo := NewAuthRepository(mt.DB)

		got, err := repo.UpdateRole(ctx, "adminsuper", domain.RoleAdmin)
		require.NoError(mt, err)
		assert.Equal(mt, domain.RoleAdmin, got.Role)
	})
}
