package service

import (
	"context"
	"testing"

	"habit-garden/internal/clock"
	"habit-garden/internal/domain/entity"
	"habit-garden/internal/domain/service"
	"habit-garden/internal/infrastructure/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newFriendService() service.FriendService {
	return NewFriendService(memory.NewUserRepository(), clock.NewFixed("2024-01-01"), zap.NewNop())
}

func TestEnsureProfile_Idempotent(t *testing.T) {
	svc := newFriendService()
	ctx := context.Background()
	id := uuid.New()

	u, err := svc.EnsureProfile(ctx, id, " Alice@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, "alice", u.Name)

	again, err := svc.EnsureProfile(ctx, id, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.CreatedAt, again.CreatedAt)

	_, err = svc.EnsureProfile(ctx, uuid.New(), "not-an-email")
	assert.ErrorIs(t, err, entity.ErrInvalidInput)
}

func TestAddFriendByEmail(t *testing.T) {
	svc := newFriendService()
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()

	_, err := svc.EnsureProfile(ctx, alice, "alice@example.com")
	require.NoError(t, err)
	_, err = svc.EnsureProfile(ctx, bob, "bob@example.com")
	require.NoError(t, err)

	friend, err := svc.AddFriendByEmail(ctx, alice, "BOB@example.com")
	require.NoError(t, err)
	assert.Equal(t, bob, friend.ID)
	assert.Contains(t, friend.Friends, alice)

	aliceFriends, err := svc.ListFriends(ctx, alice)
	require.NoError(t, err)
	require.Len(t, aliceFriends, 1)
	assert.Equal(t, bob, aliceFriends[0].ID)

	bobFriends, err := svc.ListFriends(ctx, bob)
	require.NoError(t, err)
	require.Len(t, bobFriends, 1)
	assert.Equal(t, alice, bobFriends[0].ID)

	_, err = svc.AddFriendByEmail(ctx, alice, "bob@example.com")
	assert.ErrorIs(t, err, entity.ErrAlreadyFriends)
	_, err = svc.AddFriendByEmail(ctx, bob, "alice@example.com")
	assert.ErrorIs(t, err, entity.ErrAlreadyFriends)
}

func TestAddFriendByEmail_Errors(t *testing.T) {
	svc := newFriendService()
	ctx := context.Background()
	alice := uuid.New()
	_, err := svc.EnsureProfile(ctx, alice, "alice@example.com")
	require.NoError(t, err)

	_, err = svc.AddFriendByEmail(ctx, alice, "alice@example.com")
	assert.ErrorIs(t, err, entity.ErrSelfFriend)

	_, err = svc.AddFriendByEmail(ctx, alice, "nobody@example.com")
	assert.ErrorIs(t, err, entity.ErrUserNotFound)

	_, err = svc.AddFriendByEmail(ctx, uuid.New(), "alice@example.com")
	assert.ErrorIs(t, err, entity.ErrUserNotFound)

	friends, err := svc.ListFriends(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, friends)
}
