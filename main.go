package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/middleware"

	"github.com/sbgaming/cafedesk/internal/archive"
	"github.com/sbgaming/cafedesk/internal/catalog"
	"github.com/sbgaming/cafedesk/internal/events"
	"github.com/sbgaming/cafedesk/internal/mongo"
	"github.com/sbgaming/cafedesk/internal/session"
	"github.com/sbgaming/cafedesk/internal/sms"
)

const (
	appNamespace = "CAFEDESK"
	appName      = "cafedesk"
	appVersion   = "0.1.0"
)

func main() {
	config, err := apt.LoadConfig(appNamespace, os.Args[1:])
	if err != nil {
		log.Fatalf("%s(%s) cannot setup: %v", appName, appVersion, err)
	}

	logLevel, _ := config.GetString("log.level")
	logger := apt.NewLogger(logLevel)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer stop()

	entryRepo := mongo.NewEntryRepo(config, logger)

	natsURL := config.GetStringOrDef("nats.url", "nats://localhost:4222")

	publisher, err := events.NewNATSPublisher(natsURL, logger)
	if err != nil {
		log.Fatalf("%s(%s) cannot connect to NATS publisher: %v", appName, appVersion, err)
	}

	subscriber, err := events.NewNATSSubscriber(natsURL, logger)
	if err != nil {
		log.Fatalf("%s(%s) cannot connect to NATS subscriber: %v", appName, appVersion, err)
	}

	rate := catalog.PerPersonRate(config)
	store := session.NewStore(entryRepo, publisher, subscriber, rate, logger)

	smsClient := sms.NewClient(config, logger)
	monitor := session.NewMonitor(store.Snapshot(), store, smsClient, monitorInterval(config), logger)

	archiveDir := config.GetStringOrDef("archive.dir", "archives")
	sweeper := archive.NewSweeper(entryRepo, archiveDir, retentionMonths(config), store.NotifyPurged, logger)

	handler := session.NewHandler(store, rate, config, logger)
	archiveHandler := archive.NewHandler(sweeper, logger)

	stack := middleware.DefaultStack(middleware.StackOptions{
		Logger: logger,
	})

	// The sweep runs once per process start, the trigger the dashboard always
	// had. Data older than the retention window therefore only moves out when
	// the process restarts or an operator posts /archive/sweep.
	sweepOnStart := apt.LifecycleHooks{
		OnStart: func(ctx context.Context) error {
			result, err := sweeper.Sweep(ctx, time.Now())
			if err != nil {
				logger.Errorf("Startup archival failed (non-fatal): %v", err)
				return nil
			}
			if result.Status == archive.StatusSuccess {
				logger.Infof("Startup archival exported %d sessions to %s", result.ExportedCount, result.FileName)
			}
			return nil
		},
	}

	publisherLifecycle := apt.LifecycleHooks{
		OnStop: func(context.Context) error { return publisher.Close() },
	}
	subscriberLifecycle := apt.LifecycleHooks{
		OnStop: func(context.Context) error { return subscriber.Close() },
	}

	options := []apt.Option{
		apt.WithConfig(config),
		apt.WithLogger(logger),
		apt.WithHTTPMiddleware(stack...),
		apt.WithHTTPServerModules("web.port", handler, archiveHandler),
		apt.WithLifecycle(entryRepo, store, monitor, sweepOnStart, publisherLifecycle, subscriberLifecycle),
		apt.WithHealthChecks(appName),
	}

	ms := apt.NewMicro(options...)
	logger.Infof("Starting %s(%s)", appName, appVersion)

	if err := ms.Run(ctx); err != nil {
		log.Fatalf("%s(%s) stopped with error: %v", appName, appVersion, err)
	}

	logger.Infof("%s(%s) stopped", appName, appVersion)
}

func monitorInterval(config *apt.Config) time.Duration {
	raw := config.GetStringOrDef("monitor.interval.seconds", "")
	if raw == "" {
		return session.DefaultMonitorInterval
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		return session.DefaultMonitorInterval
	}
	return time.Duration(seconds) * time.Second
}

func retentionMonths(config *apt.Config) int {
	raw := config.GetStringOrDef("archive.retention.months", "")
	if raw == "" {
		return archive.DefaultRetentionMonths
	}
	months, err := strconv.Atoi(raw)
	if err != nil || months <= 0 {
		return archive.DefaultRetentionMonths
	}
	return months
}
