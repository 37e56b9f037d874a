package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"haley-companion-be/internal/dto"
	"haley-companion-be/internal/entity"
	"haley-companion-be/internal/model"
	"haley-companion-be/internal/testutil"
	"haley-companion-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQuotaService(env *testEnv) IQuotaService {
	return NewQuotaService(env.uowFactory, env.ledger, env.publisher, env.metrics)
}

func loadLimit(t *testing.T, env *testEnv, userId uuid.UUID) model.ChatLimit {
	t.Helper()
	var row model.ChatLimit
	require.NoError(t, env.db.Where("user_id = ?", userId).First(&row).Error)
	return row
}

func TestQuota_FreshUser(t *testing.T) {
	env := newTestEnv(t)
	svc := newQuotaService(env)

	// No record and no user row: reads never touch storage beyond the lookup.
	state, err := svc.GetQuotaState(context.Background(), uuid.New())
	require.NoError(t, err)

	assert.Equal(t, 5, state.Limit)
	require.NotNil(t, state.Remaining)
	assert.Equal(t, 5, *state.Remaining)
	assert.True(t, state.CanSend)
	assert.False(t, state.Unlimited)
}

func TestQuota_RemainingDecreasesPerSend(t *testing.T) {
	env := newTestEnv(t)
	svc := newQuotaService(env)
	ctx := context.Background()
	userId := testutil.SeedUser(t, env.db, "count@haley.test")

	for n := 1; n <= testFreeLimit; n++ {
		_, err := svc.TryIncrement(ctx, userId)
		require.NoError(t, err)
		env.clock.Advance(time.Minute)

		state, err := svc.GetQuotaState(ctx, userId)
		require.NoError(t, err)
		assert.Equal(t, testFreeLimit-n, *state.Remaining, "after %d sends", n)
	}
}

func TestQuota_CapReachedBlocksSends(t *testing.T) {
	env := newTestEnv(t)
	svc := newQuotaService(env)
	ctx := context.Background()
	userId := testutil.SeedUser(t, env.db, "cap@haley.test")

	for i := 0; i < testFreeLimit; i++ {
		_, err := svc.Consume(ctx, userId)
		require.NoError(t, err)
	}

	state, err := svc.GetQuotaState(ctx, userId)
	require.NoError(t, err)
	assert.False(t, state.CanSend)
	assert.Equal(t, 0, *state.Remaining)

	_, err = svc.Consume(ctx, userId)
	var limitErr *dto.LimitExceededError
	require.True(t, errors.As(err, &limitErr))
	assert.Equal(t, testFreeLimit, limitErr.Limit)
	assert.Equal(t, testFreeLimit, limitErr.Used)
	assert.True(t, testutil.Epoch.Add(testWindow).Equal(limitErr.ResetAfter))

	// The refused send changed nothing.
	assert.Equal(t, testFreeLimit, loadLimit(t, env, userId).MessagesSent)
}

func TestQuota_TryIncrementDoesNotCap(t *testing.T) {
	env := newTestEnv(t)
	svc := newQuotaService(env)
	ctx := context.Background()
	userId := testutil.SeedUser(t, env.db, "uncapped@haley.test")

	for i := 0; i < testFreeLimit+2; i++ {
		_, err := svc.TryIncrement(ctx, userId)
		require.NoError(t, err)
	}

	state, err := svc.GetQuotaState(ctx, userId)
	require.NoError(t, err)
	assert.Equal(t, testFreeLimit+2, state.MessagesSent)
	assert.Equal(t, 0, *state.Remaining)
	assert.False(t, state.CanSend)
}

func TestQuota_ExpiredWindowRollsOverOnWrite(t *testing.T) {
	env := newTestEnv(t)
	svc := newQuotaService(env)
	ctx := context.Background()
	userId := testutil.SeedUser(t, env.db, "rollover@haley.test")

	for i := 0; i < 3; i++ {
		_, err := svc.TryIncrement(ctx, userId)
		require.NoError(t, err)
	}

	// Push the stored window into the past.
	past := testutil.Epoch.Add(-time.Hour)
	require.NoError(t, env.db.Model(&model.ChatLimit{}).Where("user_id = ?", userId).
		Update("limit_reset_at", past).Error)

	// Reads report a fresh window without rewriting the row.
	state, err := svc.GetQuotaState(ctx, userId)
	require.NoError(t, err)
	assert.Equal(t, 5, *state.Remaining)
	assert.True(t, state.CanSend)
	assert.Equal(t, 3, loadLimit(t, env, userId).MessagesSent)

	env.clock.Advance(2 * time.Hour)
	res, err := svc.TryIncrement(ctx, userId)
	require.NoError(t, err)
	assert.Equal(t, 1, res.MessagesSent)

	row := loadLimit(t, env, userId)
	assert.Equal(t, 1, row.MessagesSent)
	assert.True(t, env.clock.Now().Add(testWindow).Equal(row.LimitResetAt.UTC()))
}

func TestQuota_ExpiredWindowAdmitsCappedUser(t *testing.T) {
	env := newTestEnv(t)
	svc := newQuotaService(env)
	ctx := context.Background()
	userId := testutil.SeedUser(t, env.db, "nextday@haley.test")

	for i := 0; i < testFreeLimit; i++ {
		_, err := svc.Consume(ctx, userId)
		require.NoError(t, err)
	}

	env.clock.Advance(testWindow)
	res, err := svc.Consume(ctx, userId)
	require.NoError(t, err)
	assert.Equal(t, testFreeLimit-1, *res.Remaining)
}

func TestQuota_PaidPlanIsUnlimited(t *testing.T) {
	env := newTestEnv(t)
	svc := newQuotaService(env)
	ctx := context.Background()
	userId := testutil.SeedUser(t, env.db, "pro@haley.test")

	for i := 0; i < testFreeLimit; i++ {
		_, err := svc.Consume(ctx, userId)
		require.NoError(t, err)
	}

	res, err := svc.SetPlan(ctx, userId, &dto.UpdatePlanRequest{PlanType: entity.PlanPro})
	require.NoError(t, err)
	assert.True(t, res.Unlimited)
	assert.Nil(t, res.Remaining)

	for i := 0; i < 3; i++ {
		_, err := svc.Consume(ctx, userId)
		require.NoError(t, err)
	}

	state, err := svc.GetQuotaState(ctx, userId)
	require.NoError(t, err)
	assert.True(t, state.CanSend)
	assert.True(t, state.Unlimited)
	assert.Nil(t, state.Remaining)
	assert.Equal(t, testFreeLimit+3, state.MessagesSent)
}

func TestQuota_ConcurrentConsumeNeverExceedsCap(t *testing.T) {
	env := newTestEnv(t)
	svc := newQuotaService(env)
	userId := testutil.SeedUser(t, env.db, "tabs@haley.test")

	var admitted, rejected atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Consume(context.Background(), userId)
			var limitErr *dto.LimitExceededError
			switch {
			case err == nil:
				admitted.Add(1)
			case errors.As(err, &limitErr):
				rejected.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(testFreeLimit), admitted.Load())
	assert.Equal(t, int32(20-testFreeLimit), rejected.Load())
	assert.Equal(t, testFreeLimit, loadLimit(t, env, userId).MessagesSent)
}

func TestQuota_PublishesQuotaUpdated(t *testing.T) {
	env := newTestEnv(t)
	svc := newQuotaService(env)
	messages := env.subscribe(t)
	userId := testutil.SeedUser(t, env.db, "events@haley.test")

	_, err := svc.Consume(context.Background(), userId)
	require.NoError(t, err)

	e := nextEvent(t, messages)
	assert.Equal(t, events.QuotaUpdated, e.Type)
	assert.Equal(t, userId.String(), e.UserID)
	assert.Equal(t, float64(4), e.Data["remaining"])
	assert.Equal(t, true, e.Data["can_send"])
}

func TestQuota_RejectedConsumePublishesNothing(t *testing.T) {
	env := newTestEnv(t)
	svc := newQuotaService(env)
	userId := testutil.SeedUser(t, env.db, "quiet@haley.test")
	ctx := context.Background()

	for i := 0; i < testFreeLimit; i++ {
		_, err := svc.TryIncrement(ctx, userId)
		require.NoError(t, err)
	}

	messages := env.subscribe(t)
	_, err := svc.Consume(ctx, userId)
	require.Error(t, err)
	noEvent(t, messages)
}
