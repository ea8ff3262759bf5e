package ratecards

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentbridge/sales-crm-platform/internal/faults"
)

func validCard(version string) *RateCard {
	return &RateCard{
		Version: version,
		Items: []Item{
			{Name: "Senior Engineer", Category: CategoryIT, BasePrice: 12000, DiscountLimit: 10, Unit: "per hire", Active: true},
		},
	}
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(NewInMemoryRepository(), nil, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, &RateCard{})
	require.Error(t, err)
	assert.True(t, faults.IsValidation(err))

	bad := validCard("v1")
	bad.Items[0].DiscountLimit = 130
	_, err = svc.Create(ctx, bad)
	require.Error(t, err)
	assert.True(t, faults.IsValidation(err))
}

func TestActivateSingleActiveInvariant(t *testing.T) {
	svc := NewService(NewInMemoryRepository(), nil, nil)
	ctx := context.Background()

	var ids []string
	for _, v := range []string{"v1", "v2", "v3"} {
		rc, err := svc.Create(ctx, validCard(v))
		require.NoError(t, err)
		assert.False(t, rc.Active, "cards start inactive")
		ids = append(ids, rc.ID)
	}

	// Activate each in turn; exactly one is active afterwards every time.
	for _, id := range ids {
		activated, err := svc.Activate(ctx, id)
		require.NoError(t, err)
		assert.True(t, activated.Active)

		active, err := svc.GetActive(ctx)
		require.NoError(t, err)
		assert.Equal(t, id, active.ID)

		all, err := svc.List(ctx)
		require.NoError(t, err)
		count := 0
		for _, rc := range all {
			if rc.Active {
				count++
			}
		}
		assert.Equal(t, 1, count)
	}
}

func TestActivateUnknownCard(t *testing.T) {
	svc := NewService(NewInMemoryRepository(), nil, nil)

	_, err := svc.Activate(context.Background(), "ghost")
	assert.True(t, faults.IsNotFound(err))
}

func TestGetActiveUsesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewCache(redisClient, time.Minute)

	repo := NewInMemoryRepository()
	svc := NewService(repo, cache, nil)
	ctx := context.Background()

	rc, err := svc.Create(ctx, validCard("v1"))
	require.NoError(t, err)
	_, err = svc.Activate(ctx, rc.ID)
	require.NoError(t, err)

	// The activation populated the cache; a repo-level delete is invisible
	// until invalidation.
	require.NoError(t, repo.Delete(ctx, rc.ID))
	active, err := svc.GetActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, rc.ID, active.ID)

	require.NoError(t, cache.Invalidate(ctx))
	_, err = svc.GetActive(ctx)
	assert.True(t, faults.IsNotFound(err))
}

func TestUpdateInvalidatesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewCache(redisClient, time.Minute)

	svc := NewService(NewInMemoryRepository(), cache, nil)
	ctx := context.Background()

	rc, err := svc.Create(ctx, validCard("v1"))
	require.NoError(t, err)
	_, err = svc.Activate(ctx, rc.ID)
	require.NoError(t, err)

	rc.Version = "v1.1"
	_, err = svc.Update(ctx, rc)
	require.NoError(t, err)

	active, err := svc.GetActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v1.1", active.Version)
}
