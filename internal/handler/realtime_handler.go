package handler

import (
	"haley-companion-be/internal/pkg/logger"
	"haley-companion-be/internal/pkg/serverutils"
	"haley-companion-be/internal/service"
	internalWS "haley-companion-be/internal/websocket"
	"haley-companion-be/pkg/events"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type RealtimeHandler struct {
	quota     service.IQuotaService
	hub       *internalWS.Hub
	requester *serverutils.Requester
	logger    logger.ILogger
}

func NewRealtimeHandler(quota service.IQuotaService, hub *internalWS.Hub, requester *serverutils.Requester, log logger.ILogger) *RealtimeHandler {
	return &RealtimeHandler{
		quota:     quota,
		hub:       hub,
		requester: requester,
		logger:    log,
	}
}

// ServeQuota upgrades to a websocket that streams QUOTA_UPDATED events for
// one user. The first frame is the current quota state.
func (h *RealtimeHandler) ServeQuota(c *fiber.Ctx) error {
	// Browsers cannot set headers on the handshake, so the token may come as ?token=.
	if token := c.Query("token"); token != "" {
		if err := h.requester.Authenticate(c, token); err != nil {
			h.logger.Warn("RealtimeHandler", "Invalid token in WS handshake", map[string]interface{}{"error": err.Error()})
			return err
		}
	}

	userID, err := h.requester.Resolve(c, c.Query("userId"))
	if err != nil {
		return err
	}

	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	state, err := h.quota.GetQuotaState(c.UserContext(), userID)
	if err != nil {
		return err
	}
	greeting, err := internalWS.Frame(events.QuotaUpdated, service.QuotaEventData(state))
	if err != nil {
		return err
	}

	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("RealtimeHandler", "Starting WebSocket session", map[string]interface{}{"user_id": userID})
		internalWS.ServeWs(h.hub, conn, userID, greeting)
		h.logger.Info("RealtimeHandler", "WebSocket session ended", map[string]interface{}{"user_id": userID})
	})(c)
}

func (h *RealtimeHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws/quota", h.ServeQuota)
}
