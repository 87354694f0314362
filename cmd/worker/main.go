package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"gomical/app"
	"gomical/infra/postgres"
	"gomical/infra/rabbitmq"
	"gomical/pkg/archive"
	"gomical/pkg/config"
	"gomical/pkg/events"
)

// The backup worker keeps off-database snapshot copies: a nightly scheduled
// export plus an export after every catalog change event.
func main() {
	zapConfig := zap.NewDevelopmentConfig()
	zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	logger, _ := zapConfig.Build()
	zap.ReplaceGlobals(logger)
	defer logger.Sync()

	zap.L().Info("Backup worker starting...")

	appConfig := config.Read()

	if appConfig.AWSBucket == "" {
		zap.L().Fatal("AWS_BUCKET is required for the backup worker")
	}

	pgRepository := postgres.NewPgRepository(
		appConfig.PostgresHost,
		appConfig.PostgresDatabase,
		appConfig.PostgresUsername,
		appConfig.PostgresPassword,
		appConfig.PostgresPort,
	)
	defer pgRepository.Close()

	archiver := archive.NewS3Archive(
		appConfig.AWSEndpoint,
		appConfig.AWSBucket,
		appConfig.AWSDefaultRegion,
		appConfig.AWSAccessKey,
		appConfig.AWSSecretKey,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backup := func() {
		if err := archiveSnapshot(ctx, pgRepository, archiver); err != nil {
			zap.L().Error("Snapshot backup failed", zap.Error(err))
		}
	}

	scheduler := cron.New()
	spec, err := dailySpec(appConfig.BackupTime)
	if err != nil {
		zap.L().Fatal("Invalid BACKUP_TIME", zap.String("backupTime", appConfig.BackupTime), zap.Error(err))
	}
	if _, err := scheduler.AddFunc(spec, backup); err != nil {
		zap.L().Fatal("Failed to schedule nightly backup", zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()
	zap.L().Info("Nightly backup scheduled", zap.String("time", appConfig.BackupTime))

	// Connection pool monitoring
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				stats := pgRepository.GetPoolStats()
				zap.L().Info("Connection pool stats",
					zap.Int("max_open", stats["max_open_connections"].(int)),
					zap.Int("open", stats["open_connections"].(int)),
					zap.Int("in_use", stats["in_use"].(int)),
					zap.Int("idle", stats["idle"].(int)),
					zap.Int64("wait_count", stats["wait_count"].(int64)),
					zap.Int64("wait_duration_ms", stats["wait_duration_ms"].(int64)),
				)
			}
		}
	}()

	if appConfig.RabbitMQURL != "" {
		consumer, err := rabbitmq.NewConsumer(appConfig.RabbitMQURL, rabbitmq.ConsumerConfig{
			Exchange:  events.CatalogExchange,
			QueueName: "gomical.catalog.backup.v1",
			RoutingKeys: []string{
				"catalog.category.*.v1",
				"catalog.imported.v1",
				"catalog.reset.v1",
			},
		})
		if err != nil {
			zap.L().Fatal("Failed to create catalog consumer", zap.Error(err))
		}
		defer consumer.Close()

		go func() {
			zap.L().Info("Consuming catalog change events...")
			err := consumer.Consume(ctx, func(ctx context.Context, event *events.Event) error {
				zap.L().Info("Catalog changed, archiving snapshot", zap.String("event", event.Event))
				return archiveSnapshot(ctx, pgRepository, archiver)
			})
			if err != nil && err != context.Canceled {
				zap.L().Error("Catalog consumer stopped", zap.Error(err))
			}
		}()
	} else {
		zap.L().Warn("RABBITMQ_URL not set, on-change backups disabled")
	}

	zap.L().Info("Backup worker started. Press Ctrl+C to stop...")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	zap.L().Info("Shutdown signal received, stopping backup worker...")
	cancel()
	zap.L().Info("Backup worker stopped gracefully")
}

func archiveSnapshot(ctx context.Context, repository app.Repository, archiver app.Archiver) error {
	now := time.Now().UTC()

	doc, err := app.BuildExportDocument(ctx, repository, now)
	if err != nil {
		return fmt.Errorf("build export document: %w", err)
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal export document: %w", err)
	}

	key := archive.BackupKey(now)
	if err := archiver.Save(key, raw); err != nil {
		return fmt.Errorf("save backup %s: %w", key, err)
	}

	zap.L().Info("Snapshot archived",
		zap.String("key", key),
		zap.Int("categories", doc.Metadata.TotalCategories),
		zap.Int("garbageTypes", doc.Metadata.TotalTypes),
	)
	return nil
}

// dailySpec converts an HH:MM time into a cron expression.
func dailySpec(timeStr string) (string, error) {
	parts := strings.Split(timeStr, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid time %q, expected HH:MM", timeStr)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid hour in %q", timeStr)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid minute in %q", timeStr)
	}
	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}
