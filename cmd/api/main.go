package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xiebiao/bookshelf/internal/infrastructure/config"
	"github.com/xiebiao/bookshelf/pkg/logger"
	"github.com/xiebiao/bookshelf/pkg/metrics"
	"github.com/xiebiao/bookshelf/pkg/mq"
	"github.com/xiebiao/bookshelf/pkg/tracing"
)

const shutdownTimeout = 10 * time.Second

// @title        Bookshelf API
// @version      1.0
// @description  个人图书追踪：外部目录搜索、图书入库、书架与书评
// @BasePath     /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("加载配置失败: %v", err)
	}

	// 2. 日志
	log, err := logger.Init(logger.Config{
		Level:        cfg.Log.Level,
		Format:       cfg.Log.Format,
		Output:       cfg.Log.Output,
		EnableCaller: cfg.Log.EnableCaller,
	})
	if err != nil {
		logrus.Fatalf("初始化日志失败: %v", err)
	}

	// 3. 链路追踪与指标
	shutdownTracer, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.Endpoint)
	if err != nil {
		log.Fatalf("初始化链路追踪失败: %v", err)
	}
	if cfg.Metrics.Enabled {
		metrics.InitMetrics()
	}

	// 4. 事件发布
	publisher, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange)
	if err != nil {
		log.Fatalf("初始化事件发布失败: %v", err)
	}

	// 5. 依赖注入
	engine, cleanup, err := InitializeApp(cfg, publisher)
	if err != nil {
		log.Fatalf("初始化应用失败: %v", err)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.WithFields(logrus.Fields{
			"addr": srv.Addr,
			"mode": cfg.Server.Mode,
		}).Info("服务启动")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("启动服务失败: %v", err)
		}
	}()

	// 6. 优雅关闭：停止接收请求 → 关闭连接 → 刷新Span
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	log.Info("收到退出信号，开始关闭服务")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("关闭HTTP服务失败")
	}
	cleanup()
	if err := publisher.Close(); err != nil {
		log.WithError(err).Warn("关闭事件发布者失败")
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		log.WithError(err).Warn("关闭链路追踪失败")
	}
	log.Info("服务已退出")
}
