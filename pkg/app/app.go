// Package app 提供应用程序的初始化和启动功能.
package app

import (
	contextPkg "context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/yeisme/artvault/pkg/api"
	"github.com/yeisme/artvault/pkg/configs"
	"github.com/yeisme/artvault/pkg/internal/jobs"
	"github.com/yeisme/artvault/pkg/internal/model"
	"github.com/yeisme/artvault/pkg/internal/storage"
	"github.com/yeisme/artvault/pkg/log"
	"github.com/yeisme/artvault/pkg/metrics"
	"github.com/yeisme/artvault/pkg/middleware"
	"github.com/yeisme/artvault/pkg/scheduler"
	"github.com/yeisme/artvault/pkg/tracing"
)

// streamPathPattern 匹配返回原始字节的路由，这些响应不做 gzip 压缩.
var streamPathPatterns = []string{
	`^/api/v1/artifacts/[^/]+$`,
	`^/api/v1/artifacts/[^/]+/thumbnail$`,
}

type App struct {
	Engine *gin.Engine
	config *configs.AppConfig
	sched  *scheduler.Scheduler
}

func NewApp(configPath string) *App {
	ctx := contextPkg.Background()

	// 初始化配置
	if err := configs.InitConfig(configPath); err != nil {
		fmt.Printf("Error initializing config: %v\n", err)
		os.Exit(1)
	}

	log.Init()

	config := configs.GetConfig()

	// 初始化追踪
	if config.Tracing.Enabled {
		if err := tracing.InitTracer(config.Tracing); err != nil {
			fmt.Printf("Error initializing tracing: %v\n", err)
			os.Exit(1)
		}
	}

	// 初始化监控
	if err := metrics.InitMetrics(config.Metrics); err != nil {
		fmt.Printf("Error initializing metrics: %v\n", err)
		os.Exit(1)
	}

	manager, err := storage.Init(ctx)
	if err != nil {
		fmt.Printf("Error initializing storage: %v\n", err)
		os.Exit(1)
	}

	if err := manager.GetDBClient().AutoMigrate(&model.Artifact{}); err != nil {
		fmt.Printf("Error migrating schema: %v\n", err)
		os.Exit(1)
	}

	l := log.Logger()
	gin.DefaultWriter = log.NewGinWriter(l, zerolog.InfoLevel)
	gin.DefaultErrorWriter = log.NewGinWriter(l, zerolog.ErrorLevel)

	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		middleware.CORSMiddleware(config.Server),
		middleware.GinLoggerMiddleware(),
		middleware.PrometheusMiddleware(),
		middleware.StorageMiddleware(manager),
	)

	if config.Tracing.Enabled {
		engine.Use(middleware.TracingMiddleware())
	}

	if config.RateLimit.Enabled {
		engine.Use(middleware.RateLimitMiddleware(config.RateLimit))
	}

	// 原始字节路由不压缩，其余 JSON 响应走 gzip
	engine.Use(gzip.Gzip(gzip.DefaultCompression,
		gzip.WithExcludedPathsRegexs(streamPathPatterns)))

	if config.Auth.Enabled {
		engine.Use(middleware.AuthMiddleware(config.Auth))
	}

	sched, err := scheduler.New()
	if err != nil {
		fmt.Printf("Error initializing scheduler: %v\n", err)
		os.Exit(1)
	}

	if err := jobs.RegisterSweep(ctx, sched, manager); err != nil {
		fmt.Printf("Error registering sweep job: %v\n", err)
		os.Exit(1)
	}

	engine.Use(middleware.SchedulerMiddleware(sched))

	// 写操作路由挂熔断，读路径不受影响
	var groupMws []gin.HandlerFunc
	if config.CircuitBreaker.Enabled {
		cb := middleware.CircuitBreakerMiddleware(config.CircuitBreaker)
		groupMws = append(groupMws, func(c *gin.Context) {
			if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
				c.Next()

				return
			}

			cb(c)
		})
	}

	api.RegisterGroup(engine, groupMws...)

	if config.Metrics.Enabled {
		_ = metrics.StartMetricsServer(config.Metrics, engine)
	}

	return &App{
		Engine: engine,
		config: config,
		sched:  sched,
	}
}

// Run 启动 HTTP 服务与调度器，收到 SIGINT/SIGTERM 后优雅退出.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(contextPkg.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.config.Server.Host, a.config.Server.Port),
		Handler:           a.Engine,
		ReadHeaderTimeout: a.config.Server.GetTimeoutDuration(),
	}

	a.sched.Start()

	l := log.Logger()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		l.Info().Str("addr", srv.Addr).Msg("http server listening")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		l.Info().Msg("shutting down")

		shutdownCtx, cancel := contextPkg.WithTimeout(contextPkg.Background(),
			a.config.Server.GetShutdownTimeout())
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			l.Error().Err(err).Msg("http server shutdown")
		}

		if err := a.sched.Stop(); err != nil {
			l.Error().Err(err).Msg("scheduler shutdown")
		}

		if a.config.Tracing.Enabled {
			if err := tracing.ShutdownTracer(shutdownCtx); err != nil {
				l.Error().Err(err).Msg("tracer shutdown")
			}
		}

		return nil
	})

	return g.Wait()
}
