package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"

	"balance_watcher/internal/app/service"
	"balance_watcher/internal/infrastructure/configloader"
	"balance_watcher/internal/infrastructure/network/client"
	"balance_watcher/internal/infrastructure/network/definition"
	"balance_watcher/internal/infrastructure/notifier"
	"balance_watcher/internal/infrastructure/restapi"
	"balance_watcher/internal/infrastructure/walletloader"
	"balance_watcher/internal/pkg/logger"
	"balance_watcher/internal/pkg/utils"
	"balance_watcher/pkg/metrics"
)

func main() {
	// Bootstrap logger for the phase before config is loaded.
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(logrus.InfoLevel)

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize zap logger: %v", err)
	}
	defer zapLogger.Sync()

	// Bridge slog into zap and tee everything into the ring buffer that backs
	// the operator /logs endpoint.
	slogHandler := zapslog.NewHandler(zapLogger.Core())
	logger.InitWithHandler(logger.NewRingHandler(slogHandler))
	appLog := logger.NewSlogAdapter()

	cfgPath := utils.GetEnv("CONFIG_PATH", "config/config.yml")
	cfg, err := configloader.Load(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		log.Warnf("Invalid log level in config: %s. Defaulting to Info.", cfg.Logging.Level)
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	appLog.Info("Configuration loaded", "path", cfgPath)

	metrics.MustRegisterMetrics()

	// Wire the watching pipeline.
	networkProvider := definition.NewNetworkDefinitionProvider(appLog, cfg.Watcher.TrackedNetworkIdentifiers)
	endpointProvider := client.NewEndpointProvider(cfg, appLog)
	snapshotService := service.NewSnapshotService(networkProvider, endpointProvider, appLog)

	threshold := service.ThresholdMicroUnits(cfg.Watcher.DeltaUSD)
	tracker := service.NewWalletTracker(snapshotService, threshold, cfg.Watcher.ErrorTolerant, appLog)

	notif := notifier.FromConfig(cfg, appLog)
	aggregator := service.NewNotificationAggregator(notif, tracker, cfg.Notification.DefaultRecipient, appLog)

	walletProvider := walletloader.NewWalletFileLoader(cfg.Watcher.WalletsFilePath, appLog)
	watcher := service.NewWatcherService(
		walletProvider,
		tracker,
		aggregator,
		time.Duration(cfg.Watcher.IntervalSeconds)*time.Second,
		cfg.Watcher.MaxConcurrentWallets,
		appLog,
	)

	watchCtx, cancelWatch := context.WithCancel(context.Background())
	defer cancelWatch()

	go func() {
		if err := watcher.Run(watchCtx); err != nil {
			appLog.Error("Watcher terminated", "error", err)
			// A watcher that cannot even start has nothing to serve.
			zapLogger.Sync()
			os.Exit(1)
		}
	}()

	// Operator HTTP surface.
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))
	router.Use(gin.Recovery())

	restapi.RegisterRoutes(router, restapi.NewWatcherHandler(watcher))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	pprofRouter := router.Group("/debug/pprof")
	{
		pprofRouter.GET("/", gin.WrapF(pprof.Index))
		pprofRouter.GET("/cmdline", gin.WrapF(pprof.Cmdline))
		pprofRouter.GET("/profile", gin.WrapF(pprof.Profile))
		pprofRouter.GET("/symbol", gin.WrapF(pprof.Symbol))
		pprofRouter.GET("/trace", gin.WrapF(pprof.Trace))
		pprofRouter.GET("/goroutine", gin.WrapH(pprof.Handler("goroutine")))
		pprofRouter.GET("/heap", gin.WrapH(pprof.Handler("heap")))
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		appLog.Info(fmt.Sprintf("Server starting on port %s", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down...")

	cancelWatch()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		appLog.Error("Server forced to shutdown", "error", err)
	}

	appLog.Info("Server exiting")
}
