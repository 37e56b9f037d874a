package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"haley-companion-be/internal/dto"
	"haley-companion-be/internal/model"
	"haley-companion-be/internal/pkg/apperror"
	"haley-companion-be/internal/repository/memory"
	"haley-companion-be/internal/testutil"
	"haley-companion-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type welcomeMail struct {
	to, name string
}

type fakeEmailService struct {
	sent chan welcomeMail
	err  error
}

func newFakeEmailService() *fakeEmailService {
	return &fakeEmailService{sent: make(chan welcomeMail, 8)}
}

func (f *fakeEmailService) SendWelcome(toEmail, displayName string) error {
	f.sent <- welcomeMail{to: toEmail, name: displayName}
	return f.err
}

func strPtr(s string) *string { return &s }

func newUserService(env *testEnv, mail *fakeEmailService) IUserService {
	return NewUserService(env.uowFactory, mail, env.publisher, nil, env.clock, env.log)
}

func TestUser_CreateAndGet(t *testing.T) {
	env := newTestEnv(t)
	mail := newFakeEmailService()
	svc := newUserService(env, mail)
	ctx := context.Background()

	created, err := svc.Create(ctx, &dto.CreateUserRequest{
		Email:       "  Haley.Fan@Example.com ",
		DisplayName: strPtr("Haley Fan"),
	})
	require.NoError(t, err)

	assert.Equal(t, "haley.fan@example.com", created.Email)
	assert.Equal(t, "user", created.Role)
	assert.True(t, testutil.Epoch.Equal(created.CreatedAt))

	byId, err := svc.GetById(ctx, created.Id)
	require.NoError(t, err)
	assert.Equal(t, created.Email, byId.Email)

	byEmail, err := svc.GetByEmail(ctx, "HALEY.FAN@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.Id, byEmail.Id)

	select {
	case m := <-mail.sent:
		assert.Equal(t, "haley.fan@example.com", m.to)
		assert.Equal(t, "Haley Fan", m.name)
	case <-time.After(2 * time.Second):
		t.Fatal("welcome email not sent")
	}
}

func TestUser_CreateDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	svc := newUserService(env, newFakeEmailService())
	ctx := context.Background()

	_, err := svc.Create(ctx, &dto.CreateUserRequest{Email: "dup@haley.test"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, &dto.CreateUserRequest{Email: "DUP@haley.test"})
	assert.True(t, errors.Is(err, apperror.ErrDuplicateKey))
}

func TestUser_MailFailureDoesNotFailSignup(t *testing.T) {
	env := newTestEnv(t)
	mail := newFakeEmailService()
	mail.err = errors.New("smtp down")
	svc := newUserService(env, mail)

	_, err := svc.Create(context.Background(), &dto.CreateUserRequest{Email: "nomail@haley.test"})
	require.NoError(t, err)
	<-mail.sent
}

func TestUser_GetUnknown(t *testing.T) {
	env := newTestEnv(t)
	svc := newUserService(env, newFakeEmailService())

	_, err := svc.GetById(context.Background(), uuid.New())
	assert.True(t, apperror.IsNotFound(err))

	_, err = svc.GetByEmail(context.Background(), "nobody@haley.test")
	assert.True(t, apperror.IsNotFound(err))
}

func TestUser_PartialUpdate(t *testing.T) {
	env := newTestEnv(t)
	svc := newUserService(env, newFakeEmailService())
	ctx := context.Background()

	created, err := svc.Create(ctx, &dto.CreateUserRequest{
		Email:       "patch@haley.test",
		Username:    strPtr("patchy"),
		DisplayName: strPtr("Patch"),
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.Id, &dto.UpdateUserRequest{DisplayName: strPtr("Patched")})
	require.NoError(t, err)

	assert.Equal(t, "Patched", *updated.DisplayName)
	assert.Equal(t, "patchy", *updated.Username)
	assert.Equal(t, "patch@haley.test", updated.Email)

	// Nothing to change still reports the current profile.
	same, err := svc.Update(ctx, created.Id, &dto.UpdateUserRequest{})
	require.NoError(t, err)
	assert.Equal(t, "Patched", *same.DisplayName)
}

func TestUser_UpdateUnknown(t *testing.T) {
	env := newTestEnv(t)
	svc := newUserService(env, newFakeEmailService())

	_, err := svc.Update(context.Background(), uuid.New(), &dto.UpdateUserRequest{DisplayName: strPtr("x")})
	assert.True(t, apperror.IsNotFound(err))
}

func TestUser_UpdateEmailToTakenAddress(t *testing.T) {
	env := newTestEnv(t)
	svc := newUserService(env, newFakeEmailService())
	ctx := context.Background()

	_, err := svc.Create(ctx, &dto.CreateUserRequest{Email: "taken@haley.test"})
	require.NoError(t, err)
	other, err := svc.Create(ctx, &dto.CreateUserRequest{Email: "other@haley.test"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, other.Id, &dto.UpdateUserRequest{Email: strPtr("taken@haley.test")})
	assert.True(t, errors.Is(err, apperror.ErrDuplicateKey))
}

func countRows(t *testing.T, env *testEnv, m interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, env.db.Model(m).Where(query, args...).Count(&n).Error)
	return n
}

func TestUser_DeleteCascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	users := newUserService(env, newFakeEmailService())
	chat := NewChatService(env.uowFactory, env.ledger, env.publisher, env.clock, env.metrics)
	messagesSvc := NewMessageService(env.uowFactory, env.publisher, env.clock)
	thumbs := NewThumbnailService(env.uowFactory, nil, nil, env.clock, env.metrics)

	victim := testutil.SeedUser(t, env.db, "victim@haley.test")
	bystander := testutil.SeedUser(t, env.db, "bystander@haley.test")

	for _, u := range []uuid.UUID{victim, bystander} {
		sent, err := chat.Send(ctx, u, &dto.SendMessageRequest{Content: "hello"})
		require.NoError(t, err)
		// Assistant turns carry no user id of their own.
		_, err = messagesSvc.Create(ctx, &u, &dto.CreateMessageRequest{
			SessionId: &sent.Session.Id,
			Role:      "assistant",
			Content:   "hi!",
		})
		require.NoError(t, err)
		_, err = thumbs.Create(ctx, u, &dto.CreateThumbnailRequest{VideoTitle: strPtr("clip")})
		require.NoError(t, err)
	}

	eventsCh := env.subscribe(t)
	require.NoError(t, users.Delete(ctx, victim))

	assert.Zero(t, countRows(t, env, &model.User{}, "id = ?", victim))
	assert.Zero(t, countRows(t, env, &model.ChatSession{}, "user_id = ?", victim))
	assert.Zero(t, countRows(t, env, &model.Message{}, "user_id = ?", victim))
	assert.Zero(t, countRows(t, env, &model.Thumbnail{}, "user_id = ?", victim))
	assert.Zero(t, countRows(t, env, &model.ChatLimit{}, "user_id = ?", victim))

	// No orphaned assistant turns either: only the bystander's two messages remain.
	assert.Equal(t, int64(2), countRows(t, env, &model.Message{}, "1 = 1"))
	assert.Equal(t, int64(1), countRows(t, env, &model.ChatSession{}, "user_id = ?", bystander))
	assert.Equal(t, int64(1), countRows(t, env, &model.Thumbnail{}, "user_id = ?", bystander))
	assert.Equal(t, int64(1), countRows(t, env, &model.ChatLimit{}, "user_id = ?", bystander))

	e := nextEvent(t, eventsCh)
	assert.Equal(t, events.UserDeleted, e.Type)
	assert.Equal(t, victim.String(), e.UserID)
}

func TestUser_DeleteDropsPublicThumbnailsFromFeed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	cache := memory.NewFeedCache(time.Minute)
	users := NewUserService(env.uowFactory, newFakeEmailService(), env.publisher, cache, env.clock, env.log)
	thumbs := NewThumbnailService(env.uowFactory, cache, nil, env.clock, env.metrics)

	owner := testutil.SeedUser(t, env.db, "gone@haley.test")
	other := testutil.SeedUser(t, env.db, "stays@haley.test")
	_, err := thumbs.Create(ctx, owner, &dto.CreateThumbnailRequest{IsPublic: boolPtr(true)})
	require.NoError(t, err)
	kept, err := thumbs.Create(ctx, other, &dto.CreateThumbnailRequest{IsPublic: boolPtr(true)})
	require.NoError(t, err)

	feed, err := thumbs.ListPublic(ctx)
	require.NoError(t, err)
	require.Len(t, feed, 2)

	require.NoError(t, users.Delete(ctx, owner))

	feed, err = thumbs.ListPublic(ctx)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, kept.Uuid, feed[0].Uuid)
}

func TestUser_DeleteUnknown(t *testing.T) {
	env := newTestEnv(t)
	svc := newUserService(env, newFakeEmailService())
	eventsCh := env.subscribe(t)

	err := svc.Delete(context.Background(), uuid.New())
	assert.True(t, apperror.IsNotFound(err))
	noEvent(t, eventsCh)
}
