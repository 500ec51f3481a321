package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"forumcore/internal/config"
	"forumcore/internal/db"
	"forumcore/internal/events"
	"forumcore/internal/handlers"
	"forumcore/internal/metrics"
	"forumcore/internal/router"
	"forumcore/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/rueidis"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const version = "0.1.0"

func main() {
	cliApp := &cli.App{
		Name:    "forumcore",
		Usage:   "社区互动服务：投票、打赏、评论树、举报、收藏与积分",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "env-file",
				Aliases: []string{"e"},
				Usage:   "Load environment from `FILE` before reading config",
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
			rerankCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "启动 HTTP 服务",
		Action: func(c *cli.Context) error {
			rt, err := bootstrap(c)
			if err != nil {
				return err
			}
			defer rt.close()

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

			publisher, closePublisher, err := newPublisher(rt.cfg, rt.db, rt.log)
			if err != nil {
				return err
			}
			defer closePublisher()

			svcs, err := rt.services(publisher, metrics.New(reg))
			if err != nil {
				return err
			}

			if rt.cfg.Env == config.EnvProd {
				gin.SetMode(gin.ReleaseMode)
			}
			r := gin.New()
			r.Use(gin.Recovery())

			store := cookie.NewStore([]byte(rt.cfg.HTTP.SessionSecret))
			r.Use(sessions.Sessions(rt.cfg.HTTP.SessionName, store))

			router.RegisterRoutes(r, handlers.NewSet(svcs, rt.log), reg)

			srv := &http.Server{
				Addr:              rt.cfg.HTTP.Addr,
				Handler:           r,
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				rt.log.Info("HTTP 服务已启动", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return fmt.Errorf("listen: %w", err)
			case <-ctx.Done():
			}

			rt.log.Info("正在关闭 HTTP 服务")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "执行数据库迁移后退出",
		Action: func(c *cli.Context) error {
			rt, err := bootstrap(c)
			if err != nil {
				return err
			}
			defer rt.close()
			rt.log.Info("数据库迁移完成")
			return nil
		},
	}
}

func rerankCommand() *cli.Command {
	return &cli.Command{
		Name:  "rerank",
		Usage: "重新计算近期帖子的热度分",
		Flags: []cli.Flag{
			&cli.DurationFlag{Name: "window", Usage: "只处理该时间窗口内发布的帖子，默认取配置"},
			&cli.IntFlag{Name: "top", Usage: "最多处理的帖子数，默认取配置"},
		},
		Action: func(c *cli.Context) error {
			rt, err := bootstrap(c)
			if err != nil {
				return err
			}
			defer rt.close()

			window, top := rt.cfg.Ranking.Window, rt.cfg.Ranking.TopN
			if c.IsSet("window") {
				window = c.Duration("window")
			}
			if c.IsSet("top") {
				top = c.Int("top")
			}

			svcs, err := rt.services(events.NewLogPublisher(rt.log), nil)
			if err != nil {
				return err
			}
			n, err := svcs.Ranking.RefreshRecent(c.Context, window, top)
			if err != nil {
				return err
			}
			rt.log.Info("热度分已更新", zap.Int("posts", n), zap.Duration("window", window))
			return nil
		},
	}
}

// app 各子命令共享的启动结果
type app struct {
	cfg *config.Config
	log *zap.Logger
	db  *gorm.DB
}

func bootstrap(c *cli.Context) (*app, error) {
	cfg, err := config.Load(c.StringSlice("env-file")...)
	if err != nil {
		return nil, err
	}

	log, err := newLogger(cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	gdb, err := db.Open(cfg.DB.URL, cfg.Env == config.EnvLocal)
	if err != nil {
		_ = log.Sync()
		return nil, err
	}
	if err := db.Migrate(gdb, log); err != nil {
		_ = log.Sync()
		return nil, err
	}
	return &app{cfg: cfg, log: log, db: gdb}, nil
}

func (rt *app) services(publisher events.Publisher, m *metrics.Metrics) (*services.Services, error) {
	return services.New(services.Deps{
		DB:        rt.db,
		Log:       rt.log,
		Publisher: publisher,
		Metrics:   m,
	}, services.Options{
		Comments: services.CommentOptions{
			MaxDepth:     rt.cfg.Comments.MaxDepth,
			DefaultLimit: rt.cfg.Comments.DefaultLimit,
			MaxLimit:     rt.cfg.Comments.MaxLimit,
		},
		DisableSelfKarma: rt.cfg.Karma.DisableSelfKarma,
		CacheSize:        rt.cfg.Cache.Size,
		CacheTTL:         rt.cfg.Cache.TTL,
	})
}

func (rt *app) close() {
	if sqlDB, err := rt.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = rt.log.Sync()
}

func newLogger(env string) (*zap.Logger, error) {
	if env == config.EnvProd {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// newPublisher 通知表和日志总是开启，Redis 按配置接入
func newPublisher(cfg *config.Config, gdb *gorm.DB, log *zap.Logger) (events.Publisher, func(), error) {
	pubs := events.Multi{
		events.NewNotificationPublisher(gdb),
		events.NewLogPublisher(log),
	}
	if !cfg.Redis.Enabled {
		return pubs, func() {}, nil
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress: []string{cfg.Redis.Addr},
		Password:    cfg.Redis.Password,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create Redis client: %w", err)
	}
	log.Info("已连接 Redis 事件队列", zap.String("addr", cfg.Redis.Addr), zap.String("prefix", cfg.Redis.Prefix))
	return append(pubs, events.NewRedisPublisher(client, cfg.Redis.Prefix)), client.Close, nil
}
