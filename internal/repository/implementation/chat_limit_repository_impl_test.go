package implementation

import (
	"context"
	"sync"
	"testing"
	"time"

	"haley-companion-be/internal/entity"
	"haley-companion-be/internal/repository/contract"
	"haley-companion-be/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const window = 24 * time.Hour

func TestChatLimitIncrementInitialisesRecord(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewChatLimitRepository(db)
	userId := testutil.SeedUser(t, db, "first@haley.test")
	now := testutil.Epoch

	rec, admitted, err := repo.Increment(context.Background(), userId, now, window, contract.NoCap)
	require.NoError(t, err)
	require.NotNil(t, rec)

	assert.True(t, admitted)
	assert.Equal(t, 1, rec.MessagesSent)
	assert.Equal(t, entity.PlanFree, rec.PlanType)
	assert.WithinDuration(t, now.Add(window), rec.LimitResetAt, time.Millisecond)
}

func TestChatLimitIncrementWithinWindowKeepsReset(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewChatLimitRepository(db)
	userId := testutil.SeedUser(t, db, "window@haley.test")
	ctx := context.Background()
	now := testutil.Epoch

	_, _, err := repo.Increment(ctx, userId, now, window, contract.NoCap)
	require.NoError(t, err)

	rec, admitted, err := repo.Increment(ctx, userId, now.Add(3*time.Hour), window, contract.NoCap)
	require.NoError(t, err)

	assert.True(t, admitted)
	assert.Equal(t, 2, rec.MessagesSent)
	assert.WithinDuration(t, now.Add(window), rec.LimitResetAt, time.Millisecond)
}

func TestChatLimitIncrementRollsExpiredWindow(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewChatLimitRepository(db)
	userId := testutil.SeedUser(t, db, "rollover@haley.test")
	ctx := context.Background()
	now := testutil.Epoch

	for i := 0; i < 4; i++ {
		_, _, err := repo.Increment(ctx, userId, now, window, contract.NoCap)
		require.NoError(t, err)
	}

	later := now.Add(window)
	rec, admitted, err := repo.Increment(ctx, userId, later, window, 5)
	require.NoError(t, err)

	assert.True(t, admitted)
	assert.Equal(t, 1, rec.MessagesSent)
	assert.WithinDuration(t, later.Add(window), rec.LimitResetAt, time.Millisecond)
}

func TestChatLimitIncrementRespectsCap(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewChatLimitRepository(db)
	userId := testutil.SeedUser(t, db, "cap@haley.test")
	ctx := context.Background()
	now := testutil.Epoch

	for i := 0; i < 2; i++ {
		_, admitted, err := repo.Increment(ctx, userId, now, window, 2)
		require.NoError(t, err)
		require.True(t, admitted)
	}

	rec, admitted, err := repo.Increment(ctx, userId, now, window, 2)
	require.NoError(t, err)
	assert.False(t, admitted)
	assert.Equal(t, 2, rec.MessagesSent)

	rec, admitted, err = repo.Increment(ctx, userId, now, window, contract.NoCap)
	require.NoError(t, err)
	assert.True(t, admitted)
	assert.Equal(t, 3, rec.MessagesSent)
}

func TestChatLimitPaidPlanSkipsCap(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewChatLimitRepository(db)
	userId := testutil.SeedUser(t, db, "pro@haley.test")
	ctx := context.Background()
	now := testutil.Epoch

	rec, err := repo.SetPlan(ctx, userId, entity.PlanPro, now)
	require.NoError(t, err)
	assert.Equal(t, entity.PlanPro, rec.PlanType)
	assert.Equal(t, 0, rec.MessagesSent)

	for i := 0; i < 3; i++ {
		_, admitted, err := repo.Increment(ctx, userId, now, window, 1)
		require.NoError(t, err)
		assert.True(t, admitted)
	}

	rec, err = repo.FindByUserId(ctx, userId)
	require.NoError(t, err)
	assert.Equal(t, 3, rec.MessagesSent)
	assert.Equal(t, entity.PlanPro, rec.PlanType)
}

func TestChatLimitSetPlanKeepsCounter(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewChatLimitRepository(db)
	userId := testutil.SeedUser(t, db, "upgrade@haley.test")
	ctx := context.Background()
	now := testutil.Epoch

	_, _, err := repo.Increment(ctx, userId, now, window, contract.NoCap)
	require.NoError(t, err)

	rec, err := repo.SetPlan(ctx, userId, entity.PlanPro, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, entity.PlanPro, rec.PlanType)
	assert.Equal(t, 1, rec.MessagesSent)
	assert.WithinDuration(t, now.Add(window), rec.LimitResetAt, time.Millisecond)
}

func TestChatLimitConcurrentIncrementAdmitsExactlyCap(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewChatLimitRepository(db)
	userId := testutil.SeedUser(t, db, "race@haley.test")
	now := testutil.Epoch

	const attempts = 20
	const limit = 5

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		admitted int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok, err := repo.Increment(context.Background(), userId, now, window, limit)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, limit, admitted)

	rec, err := repo.FindByUserId(context.Background(), userId)
	require.NoError(t, err)
	assert.Equal(t, limit, rec.MessagesSent)
}

func TestChatLimitFindByUserIdMissing(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewChatLimitRepository(db)
	userId := testutil.SeedUser(t, db, "none@haley.test")

	rec, err := repo.FindByUserId(context.Background(), userId)
	require.NoError(t, err)
	assert.Nil(t, rec)
}
