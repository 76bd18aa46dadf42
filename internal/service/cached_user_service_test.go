package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xeppelin/user-service/internal/cache"
	"github.com/xeppelin/user-service/internal/domain"
	"github.com/xeppelin/user-service/internal/events"
	"github.com/xeppelin/user-service/internal/service"
	apperrors "github.com/xeppelin/user-service/pkg/util"
)

func newCachedService(t *testing.T) (*service.CachedUserService, *fakeUserRepo, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := newFakeUserRepo()
	inner := service.NewUserService(repo, events.NewInMemoryDispatcher(), zap.NewNop())
	userCache := cache.NewUserCache(client, time.Minute, zap.NewNop())

	return service.NewCachedUserService(inner, userCache), repo, mr
}

func TestCachedUserServiceReadThrough(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newCachedService(t)

	created, err := svc.Create(ctx, candidateUser(t))
	require.NoError(t, err)

	// drop the backing row; create already populated the cache
	require.NoError(t, repo.DeleteByID(ctx, created.ID))

	byID, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byID.ID)

	byEmail, err := svc.GetByEmail(ctx, created.Email)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	byPhone, err := svc.GetByPhoneNumber(ctx, created.Address.PhoneNumber)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byPhone.ID)
}

func TestCachedUserServiceMissFallsThrough(t *testing.T) {
	ctx := context.Background()
	svc, _, mr := newCachedService(t)

	created, err := svc.Create(ctx, candidateUser(t))
	require.NoError(t, err)

	// wipe the cache: the next read must hit the repository and repopulate
	mr.FlushAll()

	found, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Email, found.Email)

	assert.True(t, mr.Exists("user:id:"+created.ID.String()))
}

func TestCachedUserServiceUpdateRefreshesKeys(t *testing.T) {
	ctx := context.Background()
	svc, _, mr := newCachedService(t)

	created, err := svc.Create(ctx, candidateUser(t))
	require.NoError(t, err)

	incoming := candidateUser(t)
	incoming.Email = "john.updated@example.com"
	incoming.Status = domain.StatusActive
	incoming.Address.PhoneNumber = "(999) 555-0000"

	updated, err := svc.Update(ctx, created.ID, incoming)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)

	// stale keys are gone, new keys resolve
	assert.False(t, mr.Exists("user:email:john@example.com"))
	assert.False(t, mr.Exists("user:phone:+1-555-123-4567"))
	assert.True(t, mr.Exists("user:email:john.updated@example.com"))
	assert.True(t, mr.Exists("user:id:"+created.ID.String()))

	byEmail, err := svc.GetByEmail(ctx, "john.updated@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
}

func TestCachedUserServiceDeleteEvicts(t *testing.T) {
	ctx := context.Background()
	svc, _, mr := newCachedService(t)

	created, err := svc.Create(ctx, candidateUser(t))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))

	assert.False(t, mr.Exists("user:id:"+created.ID.String()))
	assert.False(t, mr.Exists("user:email:"+created.Email))

	_, err = svc.GetByID(ctx, created.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCachedUserServiceSurvivesRedisOutage(t *testing.T) {
	ctx := context.Background()
	svc, _, mr := newCachedService(t)

	created, err := svc.Create(ctx, candidateUser(t))
	require.NoError(t, err)

	mr.Close()

	// cache failures degrade to repository reads
	found, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
}
