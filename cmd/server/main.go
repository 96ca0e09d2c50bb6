package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sellerhub/internal/config"
	"sellerhub/internal/handler"
	"sellerhub/internal/infrastructure/cache"
	"sellerhub/internal/infrastructure/chat"
	"sellerhub/internal/infrastructure/database"
	"sellerhub/internal/infrastructure/lock"
	"sellerhub/internal/infrastructure/logger"
	"sellerhub/internal/infrastructure/mq"
	"sellerhub/internal/job"
	"sellerhub/internal/service"
	"sellerhub/pkg/idgen"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "配置文件路径")
	flag.Parse()

	// 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(&cfg.Log)
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	// 初始化 ID 生成器
	if err := idgen.Init(1); err != nil {
		log.Fatal("初始化 ID 生成器失败", zap.Error(err))
	}

	// 初始化 MySQL
	db, err := database.InitMySQL(&cfg.MySQL, &cfg.Log, log)
	if err != nil {
		log.Fatal("初始化 MySQL 失败", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Warn("关闭 MySQL 失败", zap.Error(err))
		}
	}()

	// Redis 只用于分布式锁，连接失败时降级为仅依赖数据库条件更新
	var locker lock.Locker
	redisClient, err := cache.InitRedis(&cfg.Redis, log)
	if err != nil {
		log.Warn("Redis 不可用，不使用分布式锁", zap.Error(err))
	} else {
		defer redisClient.Close()
		locker = lock.NewRedisLocker(redisClient)
	}
	stockLocker := locker
	if !cfg.Business.StockLockEnabled {
		stockLocker = nil
	}

	// 通知通道
	var senders []job.Sender
	if cfg.Kafka.Enabled {
		producer, err := mq.InitKafka(&cfg.Kafka, log)
		if err != nil {
			log.Fatal("初始化 Kafka 失败", zap.Error(err))
		}
		defer producer.Close()
		senders = append(senders, job.NewKafkaSender(producer))
	}
	if cfg.Chat.Enabled {
		senders = append(senders, job.NewChatSender(chat.NewClient(&cfg.Chat)))
	}
	if len(senders) == 0 {
		senders = append(senders, job.NewLogSender(log))
	}
	notifier := service.NewOutboxNotifier(db, cfg.Kafka.Topic.Notification)

	// 创建上下文（用于优雅关闭）
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 启动后台任务
	outboxSender := job.NewOutboxSender(db, job.Senders(senders...), log, cfg.Business.OutboxInterval(), cfg.Business.MaxRetryCount)
	go outboxSender.Start(ctx)

	confirmJob := job.NewPurchaseConfirmJob(
		service.NewProgressService(db, log, notifier),
		locker,
		log,
		cfg.Business.PurchaseConfirmSpec,
		cfg.Business.PurchaseConfirmDelay(),
		cfg.Business.SystemAccountID,
		cfg.Business.SweepBatchSize,
	)
	if err := confirmJob.Start(ctx); err != nil {
		log.Fatal("启动购买确认任务失败", zap.Error(err))
	}

	// 设置路由
	h := handler.NewHandler(db, stockLocker, notifier, cfg, log)
	router := handler.SetupRouter(h, log, cfg.Server.Mode)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Info("服务启动", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("服务启动失败", zap.Error(err))
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("正在关闭服务...")

	// 先停止接收请求，再停止后台任务
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("服务关闭异常", zap.Error(err))
	}

	confirmJob.Stop()
	cancel()

	log.Info("服务已关闭")
}
