package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"asset_borrow_tracker/config"
	"asset_borrow_tracker/db"
	"asset_borrow_tracker/lifecycle"
	"asset_borrow_tracker/notify"
	"asset_borrow_tracker/session"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// 简化别名，便于 handlers 调用
type Ctx = gin.Context
type H = gin.H

// App 聚合各依赖
type App struct {
	Router *gin.Engine
	DB     *gorm.DB
	RDB    *redis.Client
	Repo   *db.Repo
	Config config.Config

	Broker     *notify.RedisBroker
	Dispatcher *notify.Dispatcher
	Engine     *lifecycle.Engine
	Tokens     *TokenIssuer

	appSess *session.AppSessionStore
}

func (a *App) AppSessions() *session.AppSessionStore { return a.appSess }

func New(cfg config.Config) (*App, error) {
	// --- DB: Postgres ---
	dbConn, err := db.ConnectDB(cfg)
	if err != nil {
		return nil, err
	}
	repo := db.NewRepo(dbConn)

	// --- Redis ---
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPwd, DB: 0})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}

	// --- 通知：异步队列 → Redis Pub/Sub ---
	broker := notify.NewRedisBroker(rdb)
	dispatcher := notify.NewDispatcher(broker, cfg.NotifyQueueSize)
	engine := lifecycle.New(repo, dispatcher, lifecycle.WithLogger(slog.Default().With("component", "lifecycle")))

	if err := BootstrapFirstAdmin(ctx, cfg.BootstrapAdminEmail, repo); err != nil {
		slog.Warn("bootstrap admin failed", "err", err)
	}

	// --- Gin ---
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), RequestLog())
	useCORS(r, cfg.WebOrigin)

	return &App{
		Router: r, DB: dbConn, RDB: rdb, Repo: repo, Config: cfg,
		Broker:     broker,
		Dispatcher: dispatcher,
		Engine:     engine,
		Tokens:     NewTokenIssuer(cfg.JWTSecret, cfg.SessionTTL),
		appSess:    session.NewAppSessionStore(rdb, cfg.SessionTTL),
	}, nil
}

func MustNew(cfg config.Config) *App {
	a, err := New(cfg)
	if err != nil {
		slog.Error("init app failed", "err", err)
		panic(err)
	}
	return a
}

// Close 先排空通知队列，再断开连接
func (a *App) Close() {
	a.Dispatcher.Close()
	_ = a.RDB.Close()
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
