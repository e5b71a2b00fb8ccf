package server

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nipaputil/config"
	"nipaputil/internal/db"
	"nipaputil/internal/health"
	"nipaputil/internal/ipam"
	"nipaputil/internal/logs"
	"nipaputil/internal/middleware"
	"nipaputil/internal/nipap"
	"nipaputil/internal/vlan"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type App struct {
	cfg        *config.Config
	Router     *mux.Router
	httpServer *http.Server

	db     *gorm.DB
	nipap  *nipap.Client
	ctx    context.Context
	cancel context.CancelFunc
}

func (a *App) Initialize(ctx context.Context, cfg *config.Config) error {
	a.cfg = cfg

	// 1) Логи
	logs.Init(logs.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	})

	// 2) БД NIPAP для psb_vlan (опционально)
	d, err := db.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return err
	}
	if d != nil {
		if err := db.MigrateVlanTable(d); err != nil {
			logs.Logger.Warnf("psb_vlan migration: %v", err)
		}
	}

	// 3) XML-RPC NIPAP: недоступный хост: сразу ошибка
	c, err := nipap.Dial(ctx, nipap.Options{
		URI:          cfg.Nipap.URI,
		Host:         cfg.Nipap.Addr(),
		ClientName:   cfg.Nipap.ClientName,
		ProbeTimeout: cfg.Nipap.ProbeTimeout,
	})
	if err != nil {
		return err
	}

	a.Mount(c, d)
	return nil
}

// Mount собирает роутер вокруг готовых зависимостей; gdb может быть nil.
func (a *App) Mount(c *nipap.Client, gdb *gorm.DB) {
	a.nipap = c
	a.db = gdb

	a.Router = mux.NewRouter()
	a.Router.Use(middleware.RequestID)
	a.Router.Use(middleware.Recoverer)
	a.Router.Use(middleware.LoggerMW)

	var pinger health.Pinger
	if c != nil {
		pinger = c
	}
	health.RegisterRoutesWithDeps(a.Router, gdb, pinger)

	if c != nil {
		ipam.NewHTTP(c).RegisterRoutes(a.Router)
	}
	// без БД ручки отвечают 503 (KindStore)
	vlan.NewHTTP(vlan.NewStore(gdb)).RegisterRoutes(a.Router)

	_ = a.Router.Walk(func(rt *mux.Route, r *mux.Router, ancestors []*mux.Route) error {
		path, _ := rt.GetPathTemplate()
		methods, _ := rt.GetMethods()
		logs.Logger.Debugf("route: %-6v %s", methods, path)
		return nil
	})
}

func (a *App) Run() error {
	if a.Router == nil || a.cfg == nil {
		return ErrNotInitialized
	}
	bind := net.JoinHostPort(a.cfg.Server.Address, a.cfg.Server.HTTPPort)

	a.ctx, a.cancel = context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() { <-sigs; a.cancel() }()

	a.httpServer = &http.Server{
		Addr:         bind,
		Handler:      a.Router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logs.Logger.Infof("HTTP listening on %s", bind)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
			a.cancel()
		}
	}()

	<-a.ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = a.httpServer.Shutdown(ctx)
	a.closeDB()

	select {
	case err := <-errc:
		return err
	default:
		return nil
	}
}

func (a *App) closeDB() {
	if a.db == nil {
		return
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

var ErrNotInitialized = &initError{"server not initialized (call Initialize(cfg) first)"}

type initError struct{ s string }

func (e *initError) Error() string { return e.s }
