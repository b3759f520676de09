package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"course-classroom/internal/dto"
	"course-classroom/internal/events"
	httpHandler "course-classroom/internal/handler/http"
	wsHandler "course-classroom/internal/handler/websocket"
	"course-classroom/internal/hub"
	"course-classroom/internal/infra/blob"
	gormpersistence "course-classroom/internal/infra/persistence/gorm"
	redispubsub "course-classroom/internal/infra/pubsub/redis"
	"course-classroom/internal/infra/setup"
	"course-classroom/internal/middleware"
	"course-classroom/internal/repository"
	"course-classroom/internal/service"
	"course-classroom/internal/tasks"
	"course-classroom/internal/worker"
)

// App 结构体包含应用的所有组件和配置
type App struct {
	Config      *Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	AsynqClient *asynq.Client
	Worker      *worker.WorkerServer
	Hub         *hub.Hub
	Broadcasts  *service.BroadcastService
	HttpServer  *http.Server
}

// NewApp 创建并初始化应用的所有组件
func NewApp(cfg *Config, log *logrus.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// 1. 基础设施
	log.Info("Initializing infrastructure...")
	db, err := setup.InitDB(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to init DB: %w", err)
	}
	if err := setup.MigrateDB(db); err != nil {
		return nil, fmt.Errorf("failed to migrate DB: %w", err)
	}
	log.Info("Database initialized and migrated")

	redisClient, err := setup.InitRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, fmt.Errorf("failed to init Redis: %w", err)
	}
	redisClientOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
	asynqClient := asynq.NewClient(redisClientOpt)

	blobs, err := blob.NewOSStore(cfg.BlobRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to init blob store: %w", err)
	}
	log.Info("Infrastructure initialized successfully")

	// 2. Repositories
	userRepo := gormpersistence.NewGormUserRepository(db)
	courseRepo := gormpersistence.NewGormCourseRepository(db)
	chatRepo := gormpersistence.NewGormChatRepository(db)
	transactor := gormpersistence.NewGormTransactor(db)

	// 3. Hub 和 Services
	roomHub := hub.NewHub(redispubsub.NewBroker(redisClient, cfg.KeyPrefix))
	identities, err := service.NewIdentityResolver(userRepo, cfg.JWTSecret, cfg.JWTExpiryHours)
	if err != nil {
		return nil, fmt.Errorf("failed to create IdentityResolver: %w", err)
	}
	authorizer := service.NewRoomAuthorizer(courseRepo, chatRepo)
	broadcasts := service.NewBroadcastService(roomHub)

	// 4. 事件分发
	dispatcher := NewDispatcher(roomHub, transactor, blobs)

	// 5. Handlers 和路由
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(log))
	router.Use(CORSMiddleware(cfg.CORSAllowedOrigin))
	router.Use(middleware.RateLimit(redisClient, cfg.KeyPrefix, cfg.RateLimitMax, cfg.RateLimitWindow))

	health := httpHandler.NewHealthHandler(roomHub)
	broadcastHandler := httpHandler.NewBroadcastHandler(broadcasts, authorizer, tasks.NewEnqueuer(asynqClient))
	socketHandler := wsHandler.NewWebSocketHandler(roomHub, dispatcher, identities, authorizer, cfg.CORSAllowedOrigin, hub.Options{
		MaxMessageSize: cfg.WSMaxMessageSize,
		SendBuffer:     cfg.HubSendBuffer,
	})

	router.GET("/ping", health.Ping)
	api := router.Group("/api").Use(middleware.Auth(identities))
	{
		api.POST("/courses/:courseId/events", broadcastHandler.Publish)
	}
	// 凭证在 Session 授权阶段校验，这里不挂 Auth 中间件
	router.GET("/ws/course/:courseId", socketHandler.HandleConnection)

	app := &App{
		Config:      cfg,
		Log:         log,
		DB:          db,
		RedisClient: redisClient,
		AsynqClient: asynqClient,
		Worker:      worker.NewWorkerServer(redisClientOpt, broadcasts, cfg.WorkerConcurrency, log),
		Hub:         roomHub,
		Broadcasts:  broadcasts,
		HttpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
	log.Info("Application assembled successfully")
	return app, nil
}

// NewDispatcher 创建注册了所有事件处理器的 Dispatcher。
// announcement 等类型没有处理器，收到后什么也不做。
func NewDispatcher(rooms events.RoomBroadcaster, tx repository.Transactor, blobs repository.BlobStore) *events.Dispatcher {
	dispatcher := events.NewDispatcher(rooms)
	dispatcher.Register(dto.EventChat, events.NewChatHandler(tx, blobs))
	dispatcher.Register(dto.EventQuestionComment, events.NewQuestionCommentHandler(tx))
	return dispatcher
}

// Run 启动 HTTP 服务器、Hub 订阅和 Worker，阻塞到 ctx 结束或任一组件失败
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Log.Info("Hub starting...")
		return a.Hub.Run(gctx)
	})
	g.Go(func() error {
		return a.Worker.Run(gctx)
	})
	g.Go(func() error {
		a.Log.Infof("HTTP server starting to listen on %s", a.HttpServer.Addr)
		if err := a.HttpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		a.Log.Info("HTTP server stopped listening.")
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.Log.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := a.HttpServer.Shutdown(shutdownCtx)
		// 被劫持的 WebSocket 连接不受 Shutdown 管理，需要单独关闭
		a.Hub.CloseAll()
		return err
	})

	return g.Wait()
}

// Close 释放外部连接
func (a *App) Close() {
	if a.AsynqClient != nil {
		if err := a.AsynqClient.Close(); err != nil {
			a.Log.Errorf("Error closing Asynq client: %v", err)
		}
	}
	if a.RedisClient != nil {
		if err := a.RedisClient.Close(); err != nil {
			a.Log.Errorf("Error closing Redis connection: %v", err)
		}
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				a.Log.Errorf("Error closing database connection: %v", err)
			}
		}
	}
	a.Log.Info("Application shutdown complete.")
}
