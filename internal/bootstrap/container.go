package bootstrap

import (
	"context"
	"log"
	"time"

	"haley-companion-be/internal/config"
	"haley-companion-be/internal/controller"
	"haley-companion-be/internal/handler"
	"haley-companion-be/internal/pkg/clock"
	"haley-companion-be/internal/pkg/logger"
	"haley-companion-be/internal/pkg/mailer"
	"haley-companion-be/internal/pkg/metrics"
	"haley-companion-be/internal/pkg/objectstore"
	"haley-companion-be/internal/pkg/serverutils"
	"haley-companion-be/internal/repository/memory"
	"haley-companion-be/internal/repository/unitofwork"
	"haley-companion-be/internal/service"
	"haley-companion-be/internal/websocket"
	"haley-companion-be/pkg/events"
	pktNats "haley-companion-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	UserController        controller.IUserController
	ChatSessionController controller.IChatSessionController
	MessageController     controller.IMessageController
	ChatController        controller.IChatController
	ChatLimitController   controller.IChatLimitController
	ThumbnailController   controller.IThumbnailController
	ExportController      controller.IExportController

	// Shared HTTP plumbing
	Requester *serverutils.Requester
	Metrics   *metrics.Metrics
	Logger    logger.ILogger

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	ViewLimiter     *serverutils.KeyedRateLimiter

	// WebSockets
	RealtimeHandler *handler.RealtimeHandler
	WebSocketHub    *websocket.Hub

	closers []func()
}

func NewContainer(ctx context.Context, db *gorm.DB, cfg *config.Config) *Container {
	c := &Container{}

	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	clk := clock.New()
	m := metrics.NewMetrics()
	c.closers = append(c.closers, func() { _ = sysLogger.Sync() })

	var emailService mailer.IEmailService
	if cfg.SMTP.Host != "" {
		emailService = mailer.NewEmailService(
			cfg.SMTP.Host,
			cfg.SMTP.Port,
			cfg.SMTP.Email,
			cfg.SMTP.Password,
			cfg.SMTP.SenderName,
			cfg.App.BaseURL,
		)
	} else {
		log.Println("[INFO] SMTP_HOST not set, welcome emails are disabled")
		emailService = mailer.NewNoopEmailService()
	}

	// 2. Event Bus
	bus := events.NewBus(events.DefaultTopic, watermill.NewStdLogger(false, false))
	c.closers = append(c.closers, func() { _ = bus.Close() })

	// 3. Infrastructure (optional in development)
	var external events.Publisher
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			external = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}
	}

	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(ctx).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}

	var presigner objectstore.Presigner
	if cfg.Storage.AwsRegion != "" {
		store, err := objectstore.NewS3Store(ctx,
			cfg.Storage.AwsRegion,
			cfg.Storage.AwsAccessKey,
			cfg.Storage.AwsSecretKey,
			cfg.Storage.ThumbnailBucket,
			cfg.Storage.PresignTTL,
		)
		if err != nil {
			log.Printf("[WARN] Thumbnail storage disabled: %v", err)
		} else {
			presigner = store
		}
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger(cfg.App.WsLogFilePath)
	wsHub := websocket.NewHub(rdb, wsLogger, m)
	go wsHub.Run(ctx)

	// 4. Services
	ledger := service.NewQuotaLedger(clk, cfg.Quota.FreeDailyLimit, cfg.Quota.Window)
	publisherService := service.NewPublisherService(bus, clk, sysLogger, m)
	consumerService := service.NewConsumerService(bus, wsHub, external, sysLogger, m)

	quotaService := service.NewQuotaService(uowFactory, ledger, publisherService, m)
	feedCache := memory.NewFeedCache(cfg.Cache.PublicFeedTTL)
	userService := service.NewUserService(uowFactory, emailService, publisherService, feedCache, clk, sysLogger)
	sessionService := service.NewChatSessionService(uowFactory, clk)
	messageService := service.NewMessageService(uowFactory, publisherService, clk)
	chatService := service.NewChatService(uowFactory, ledger, publisherService, clk, m)
	thumbnailService := service.NewThumbnailService(uowFactory, feedCache, presigner, clk, m)
	exportService := service.NewExportService(uowFactory, clk, cfg.Export.MaxMessages)

	// 5. HTTP
	requester := serverutils.NewRequester(cfg.Auth.JwtSecret, cfg.Auth.Required)
	viewLimiter := serverutils.NewKeyedRateLimiter(cfg.RateLimit.ViewsPerMinute, cfg.RateLimit.ViewsBurst)

	c.UserController = controller.NewUserController(userService, requester)
	c.ChatSessionController = controller.NewChatSessionController(sessionService, requester)
	c.MessageController = controller.NewMessageController(messageService, requester)
	c.ChatController = controller.NewChatController(chatService, requester)
	c.ChatLimitController = controller.NewChatLimitController(quotaService, requester)
	c.ThumbnailController = controller.NewThumbnailController(thumbnailService, requester, viewLimiter.Middleware(m))
	c.ExportController = controller.NewExportController(exportService, requester)
	c.RealtimeHandler = handler.NewRealtimeHandler(quotaService, wsHub, requester, wsLogger)

	c.Requester = requester
	c.Metrics = m
	c.Logger = sysLogger
	c.ConsumerService = consumerService
	c.ViewLimiter = viewLimiter
	c.WebSocketHub = wsHub

	return c
}

// StartBackground runs the event consumer and the rate limiter sweeper until
// ctx is cancelled.
func (c *Container) StartBackground(ctx context.Context) error {
	if err := c.ConsumerService.Consume(ctx); err != nil {
		return err
	}
	go c.ViewLimiter.RunSweeper(time.Minute, ctx.Done())
	return nil
}

// Close releases broker and cache connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}
