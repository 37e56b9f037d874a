package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"haley-companion-be/internal/dto"
	"haley-companion-be/internal/handler"
	"haley-companion-be/internal/pkg/clock"
	"haley-companion-be/internal/pkg/logger"
	"haley-companion-be/internal/pkg/metrics"
	"haley-companion-be/internal/pkg/serverutils"
	"haley-companion-be/internal/repository/memory"
	"haley-companion-be/internal/repository/unitofwork"
	"haley-companion-be/internal/service"
	"haley-companion-be/internal/testutil"
	"haley-companion-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

type apiOptions struct {
	authRequired bool
	viewsPerMin  int
	viewsBurst   int
}

type testAPI struct {
	app   *fiber.App
	db    *gorm.DB
	clock *clock.Fixed
}

// newTestAPI wires every controller over an in-memory database the same way
// the server does, without brokers.
func newTestAPI(t *testing.T, opts apiOptions) *testAPI {
	t.Helper()

	db := testutil.NewDB(t)
	clk := clock.NewFixed(testutil.Epoch)
	log := logger.NewNopLogger()
	m := metrics.NewMetrics()
	uowFactory := unitofwork.NewRepositoryFactory(db)

	ledger := service.NewQuotaLedger(clk, 5, 24*time.Hour)
	publisher := service.NewPublisherService(nil, clk, log, m)
	quota := service.NewQuotaService(uowFactory, ledger, publisher, m)
	requester := serverutils.NewRequester(testSecret, opts.authRequired)

	var viewsLimiter fiber.Handler
	if opts.viewsPerMin > 0 {
		viewsLimiter = serverutils.NewKeyedRateLimiter(opts.viewsPerMin, opts.viewsBurst).Middleware(m)
	}

	app := fiber.New(fiber.Config{ErrorHandler: serverutils.ErrorHandler(log)})
	api := app.Group("/api", requester.JwtMiddleware)

	feedCache := memory.NewFeedCache(time.Minute)
	NewUserController(service.NewUserService(uowFactory, nil, publisher, feedCache, clk, log), requester).RegisterRoutes(api)
	NewChatSessionController(service.NewChatSessionService(uowFactory, clk), requester).RegisterRoutes(api)
	NewMessageController(service.NewMessageService(uowFactory, publisher, clk), requester).RegisterRoutes(api)
	NewChatController(service.NewChatService(uowFactory, ledger, publisher, clk, m), requester).RegisterRoutes(api)
	NewChatLimitController(quota, requester).RegisterRoutes(api)
	NewThumbnailController(
		service.NewThumbnailService(uowFactory, feedCache, nil, clk, m),
		requester,
		viewsLimiter,
	).RegisterRoutes(api)
	NewExportController(service.NewExportService(uowFactory, clk, 10000), requester).RegisterRoutes(api)
	handler.NewRealtimeHandler(quota, websocket.NewHub(nil, log, m), requester, log).RegisterRoutes(api)

	return &testAPI{app: app, db: db, clock: clk}
}

type result struct {
	status int
	header http.Header
	body   []byte
}

func (a *testAPI) call(t *testing.T, method, path string, body interface{}, token string) result {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return result{status: resp.StatusCode, header: resp.Header, body: raw}
}

func decode[T any](t *testing.T, r result) serverutils.BaseResponse[T] {
	t.Helper()
	var res serverutils.BaseResponse[T]
	require.NoError(t, json.Unmarshal(r.body, &res), string(r.body))
	return res
}

func (a *testAPI) createUser(t *testing.T, email string) uuid.UUID {
	t.Helper()
	r := a.call(t, "POST", "/api/users", map[string]string{"email": email}, "")
	require.Equal(t, fiber.StatusCreated, r.status, string(r.body))
	return decode[dto.UserResponse](t, r).Data.Id
}

func TestUserEndpoints(t *testing.T) {
	api := newTestAPI(t, apiOptions{})
	userId := api.createUser(t, "Fan@Haley.test")

	r := api.call(t, "POST", "/api/users", map[string]string{"email": "fan@haley.test"}, "")
	assert.Equal(t, fiber.StatusBadRequest, r.status)
	assert.Equal(t, "email already registered", decode[any](t, r).Error)

	r = api.call(t, "POST", "/api/users", map[string]string{"email": "not-an-email"}, "")
	assert.Equal(t, fiber.StatusBadRequest, r.status)

	r = api.call(t, "GET", "/api/users/"+userId.String(), nil, "")
	require.Equal(t, fiber.StatusOK, r.status)
	assert.Equal(t, "fan@haley.test", decode[dto.UserResponse](t, r).Data.Email)

	r = api.call(t, "GET", "/api/users?email=FAN@haley.test", nil, "")
	require.Equal(t, fiber.StatusOK, r.status)
	assert.Equal(t, userId, decode[dto.UserResponse](t, r).Data.Id)

	r = api.call(t, "PUT", "/api/users/"+userId.String(), map[string]string{"display_name": "Haley Fan"}, "")
	require.Equal(t, fiber.StatusOK, r.status)
	assert.Equal(t, "Haley Fan", *decode[dto.UserResponse](t, r).Data.DisplayName)

	assert.Equal(t, fiber.StatusNotFound, api.call(t, "GET", "/api/users/not-a-uuid", nil, "").status)
	assert.Equal(t, fiber.StatusNotFound, api.call(t, "GET", "/api/users/"+uuid.NewString(), nil, "").status)

	assert.Equal(t, fiber.StatusOK, api.call(t, "DELETE", "/api/users/"+userId.String(), nil, "").status)
	assert.Equal(t, fiber.StatusNotFound, api.call(t, "DELETE", "/api/users/"+userId.String(), nil, "").status)
}

func TestChatLimitEndpoints(t *testing.T) {
	api := newTestAPI(t, apiOptions{})
	userId := api.createUser(t, "quota@haley.test")
	base := "/api/chat-limits/" + userId.String()

	r := api.call(t, "GET", base, nil, "")
	require.Equal(t, fiber.StatusOK, r.status)
	fresh := decode[dto.QuotaStateResponse](t, r).Data
	assert.Equal(t, 5, fresh.Limit)
	assert.Equal(t, 5, *fresh.Remaining)
	assert.True(t, fresh.CanSend)

	for i := 0; i < 5; i++ {
		r = api.call(t, "POST", base+"/increment", nil, "")
		require.Equal(t, fiber.StatusOK, r.status, string(r.body))
		assert.True(t, decode[dto.IncrementResponse](t, r).Data.Success)
	}

	r = api.call(t, "POST", base+"/increment", nil, "")
	require.Equal(t, fiber.StatusTooManyRequests, r.status)
	limited := decode[dto.LimitExceededData](t, r)
	assert.False(t, limited.Success)
	assert.Equal(t, 5, limited.Data.Limit)
	assert.Equal(t, 0, limited.Data.Remaining)
	assert.True(t, testutil.Epoch.Add(24*time.Hour).Equal(limited.Data.ResetAfter))

	r = api.call(t, "PUT", base+"/plan", map[string]string{"plan_type": "gold"}, "")
	assert.Equal(t, fiber.StatusBadRequest, r.status)

	r = api.call(t, "PUT", base+"/plan", map[string]string{"plan_type": "pro"}, "")
	require.Equal(t, fiber.StatusOK, r.status)
	pro := decode[dto.QuotaStateResponse](t, r).Data
	assert.Nil(t, pro.Remaining)
	assert.True(t, pro.Unlimited)
	assert.True(t, pro.CanSend)

	assert.Equal(t, fiber.StatusOK, api.call(t, "POST", base+"/increment", nil, "").status)
}

func TestChatSendEndpoint(t *testing.T) {
	api := newTestAPI(t, apiOptions{})
	userId := api.createUser(t, "send@haley.test")

	for i := 0; i < 5; i++ {
		r := api.call(t, "POST", "/api/chat/send", map[string]string{"user_id": userId.String(), "content": "hi"}, "")
		require.Equal(t, fiber.StatusCreated, r.status, string(r.body))
	}

	r := api.call(t, "POST", "/api/chat/send", map[string]string{"user_id": userId.String(), "content": "hi"}, "")
	assert.Equal(t, fiber.StatusTooManyRequests, r.status)

	r = api.call(t, "POST", "/api/chat/send", map[string]string{"user_id": userId.String()}, "")
	assert.Equal(t, fiber.StatusBadRequest, r.status)

	r = api.call(t, "POST", "/api/chat/send", map[string]string{"content": "who am i"}, "")
	assert.Equal(t, fiber.StatusBadRequest, r.status)
}

func TestSessionAndMessageEndpoints(t *testing.T) {
	api := newTestAPI(t, apiOptions{})
	owner := api.createUser(t, "owner@haley.test")
	other := api.createUser(t, "other@haley.test")

	r := api.call(t, "POST", "/api/sessions", map[string]string{"user_id": owner.String()}, "")
	require.Equal(t, fiber.StatusCreated, r.status)
	session := decode[dto.SessionResponse](t, r).Data
	assert.Equal(t, "New Chat", session.SessionName)

	sessionPath := fmt.Sprintf("/api/sessions/%s?userId=%s", session.Id, other)
	r = api.call(t, "PUT", sessionPath, map[string]string{"session_name": "mine now"}, "")
	assert.Equal(t, fiber.StatusNotFound, r.status)

	r = api.call(t, "POST", "/api/messages", map[string]interface{}{
		"user_id":    owner.String(),
		"session_id": session.Id,
		"role":       "system",
		"content":    "x",
	}, "")
	assert.Equal(t, fiber.StatusBadRequest, r.status)

	r = api.call(t, "POST", "/api/messages", map[string]interface{}{
		"user_id":    owner.String(),
		"session_id": session.Id,
		"role":       "user",
		"content":    "hello",
		"metadata":   map[string]string{"mood": "happy"},
	}, "")
	require.Equal(t, fiber.StatusCreated, r.status, string(r.body))
	message := decode[dto.MessageResponse](t, r).Data

	r = api.call(t, "GET", "/api/messages?sessionId="+session.Id.String(), nil, "")
	require.Equal(t, fiber.StatusOK, r.status)
	assert.Len(t, decode[[]dto.MessageResponse](t, r).Data, 1)

	r = api.call(t, "GET", "/api/messages?userId="+owner.String()+"&limit=-1", nil, "")
	assert.Equal(t, fiber.StatusBadRequest, r.status)
	r = api.call(t, "GET", "/api/messages?userId="+owner.String()+"&limit=abc", nil, "")
	assert.Equal(t, fiber.StatusBadRequest, r.status)
	r = api.call(t, "GET", "/api/messages", nil, "")
	assert.Equal(t, fiber.StatusBadRequest, r.status)

	r = api.call(t, "DELETE", fmt.Sprintf("/api/messages/%s?userId=%s", message.Id, other), nil, "")
	assert.Equal(t, fiber.StatusNotFound, r.status)
	r = api.call(t, "DELETE", fmt.Sprintf("/api/messages/%s?userId=%s", message.Id, owner), nil, "")
	assert.Equal(t, fiber.StatusOK, r.status)
	assert.True(t, decode[any](t, r).Success)

	r = api.call(t, "GET", "/api/sessions?userId="+owner.String(), nil, "")
	require.Equal(t, fiber.StatusOK, r.status)
	assert.Len(t, decode[[]dto.SessionResponse](t, r).Data, 1)

	r = api.call(t, "DELETE", fmt.Sprintf("/api/sessions/%s?userId=%s", session.Id, owner), nil, "")
	assert.Equal(t, fiber.StatusOK, r.status)
}

func TestThumbnailEndpoints(t *testing.T) {
	api := newTestAPI(t, apiOptions{viewsPerMin: 1, viewsBurst: 2})
	owner := api.createUser(t, "thumbs@haley.test")

	r := api.call(t, "POST", "/api/thumbnails", map[string]interface{}{
		"user_id":     owner.String(),
		"video_title": "Opening",
		"is_public":   true,
	}, "")
	require.Equal(t, fiber.StatusCreated, r.status, string(r.body))
	thumb := decode[dto.ThumbnailResponse](t, r).Data
	assert.Equal(t, "en", thumb.Language)
	assert.Equal(t, []string{}, thumb.Tags)

	r = api.call(t, "GET", "/api/thumbnails?public=true", nil, "")
	require.Equal(t, fiber.StatusOK, r.status)
	assert.Len(t, decode[[]dto.ThumbnailResponse](t, r).Data, 1)

	r = api.call(t, "PUT", "/api/thumbnails/"+thumb.Uuid.String(), map[string]interface{}{
		"user_id": uuid.NewString(),
		"rating":  4,
	}, "")
	assert.Equal(t, fiber.StatusNotFound, r.status)

	r = api.call(t, "PUT", "/api/thumbnails/"+thumb.Uuid.String(), map[string]interface{}{
		"user_id": owner.String(),
		"rating":  9,
	}, "")
	assert.Equal(t, fiber.StatusBadRequest, r.status)

	viewPath := "/api/thumbnails/" + thumb.Uuid.String() + "/views"
	assert.Equal(t, fiber.StatusOK, api.call(t, "POST", viewPath, nil, "").status)
	assert.Equal(t, fiber.StatusNotFound, api.call(t, "POST", "/api/thumbnails/"+uuid.NewString()+"/views", nil, "").status)
	// Burst of two is spent.
	assert.Equal(t, fiber.StatusTooManyRequests, api.call(t, "POST", viewPath, nil, "").status)

	r = api.call(t, "POST", "/api/thumbnails/signed-url", map[string]string{"user_id": owner.String(), "filename": "a.png"}, "")
	assert.Equal(t, fiber.StatusServiceUnavailable, r.status)
}

func TestExportEndpoint(t *testing.T) {
	api := newTestAPI(t, apiOptions{})
	owner := api.createUser(t, "export@haley.test")

	r := api.call(t, "POST", "/api/messages", map[string]string{"user_id": owner.String(), "role": "user", "content": "Hi"}, "")
	require.Equal(t, fiber.StatusCreated, r.status)

	r = api.call(t, "GET", "/api/export-messages/"+owner.String()+"?format=txt", nil, "")
	require.Equal(t, fiber.StatusOK, r.status)
	assert.Equal(t, "text/plain; charset=utf-8", r.header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="haley-messages-1740819600000.txt"`, r.header.Get("Content-Disposition"))
	assert.Equal(t, "[3/1/2025, 9:00:00 AM] USER:\nHi\n\n", string(r.body))

	r = api.call(t, "GET", "/api/export-messages/"+owner.String(), nil, "")
	require.Equal(t, fiber.StatusOK, r.status)
	assert.True(t, strings.HasSuffix(r.header.Get("Content-Disposition"), `.json"`))

	r = api.call(t, "GET", "/api/export-messages/"+owner.String()+"?format=csv", nil, "")
	assert.Equal(t, fiber.StatusBadRequest, r.status)
	assert.Equal(t, "Invalid format. Use ?format=json or ?format=txt", decode[any](t, r).Error)

	r = api.call(t, "GET", "/api/export-messages/"+owner.String()+"?format=TXT", nil, "")
	assert.Equal(t, fiber.StatusBadRequest, r.status)
}

func TestAuthRequiredBindsRequester(t *testing.T) {
	api := newTestAPI(t, apiOptions{authRequired: true})
	owner := testutil.SeedUser(t, api.db, "bound@haley.test")
	token, err := serverutils.IssueToken(testSecret, owner, time.Hour)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusUnauthorized, api.call(t, "GET", "/api/sessions", nil, "").status)
	assert.Equal(t, fiber.StatusUnauthorized, api.call(t, "GET", "/api/sessions", nil, "garbage").status)

	r := api.call(t, "GET", "/api/sessions", nil, token)
	assert.Equal(t, fiber.StatusOK, r.status)

	r = api.call(t, "GET", "/api/sessions?userId="+uuid.NewString(), nil, token)
	assert.Equal(t, fiber.StatusForbidden, r.status)

	r = api.call(t, "GET", "/api/chat-limits/"+owner.String(), nil, token)
	assert.Equal(t, fiber.StatusOK, r.status)
}

func TestRealtimeRequiresUpgrade(t *testing.T) {
	api := newTestAPI(t, apiOptions{})
	owner := api.createUser(t, "ws@haley.test")

	r := api.call(t, "GET", "/api/ws/quota?userId="+owner.String(), nil, "")
	assert.Equal(t, fiber.StatusUpgradeRequired, r.status)

	r = api.call(t, "GET", "/api/ws/quota", nil, "")
	assert.Equal(t, fiber.StatusBadRequest, r.status)
}
