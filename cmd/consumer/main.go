package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/thep200/gitshare/cfg"
	"github.com/thep200/gitshare/internal/model"
	"github.com/thep200/gitshare/pkg/db"
	"github.com/thep200/gitshare/pkg/kafka"
	"github.com/thep200/gitshare/pkg/log"
)

func main() {
	// Load configuration
	loader, _ := cfg.NewViperLoader()
	config, err := loader.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger, _ := log.NewCslLogger()

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup database
	connector, err := db.FactoryConnector(config)
	if err != nil {
		logger.Error(ctx, "Failed to create database connector: %v", err)
		os.Exit(1)
	}

	activityModel, _ := model.NewActivity(config, logger, connector)
	if err := connector.Migrate(activityModel); err != nil {
		logger.Error(ctx, "Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Setup signal handling for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	startActivityConsumer(ctx, config, logger, activityModel)

	// Wait for termination signal
	<-sigCh
	logger.Info(ctx, "Received shutdown signal, gracefully shutting down...")
	cancel()
}

func startActivityConsumer(ctx context.Context, config *cfg.Config, logger log.Logger, activityModel *model.Activity) {
	consumer, err := kafka.NewConsumer(config, logger, config.Kafka.Producer.TopicActivity, "activity-consumer-group")
	if err != nil {
		logger.Error(ctx, "Failed to create consumer: %v", err)
		os.Exit(1)
	}

	// Channel for collecting messages in batches
	batchSize := 100
	batchTimeout := 5 * time.Second
	messages := make(chan model.ActivityMessage, batchSize*2)

	// Batch processor
	go processBatchedActivities(ctx, messages, batchSize, batchTimeout, logger, activityModel)

	// Register handler for activity messages
	consumer.RegisterHandler("activity", func(data []byte) error {
		var msg model.ActivityMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return fmt.Errorf("failed to unmarshal activity message: %w", err)
		}

		select {
		case messages <- msg:
			// Message added to batch
		case <-ctx.Done():
			return ctx.Err()
		}

		return nil
	})

	// Start consumer in a goroutine
	go func() {
		if err := consumer.Start(ctx); err != nil {
			logger.Error(ctx, "Activity consumer error: %v", err)
		}
	}()

	logger.Info(ctx, "Activity consumer started successfully")
}

// processBatchedActivities gom message thành lô rồi ghi một lần
func processBatchedActivities(ctx context.Context, messages <-chan model.ActivityMessage, batchSize int,
	batchTimeout time.Duration, logger log.Logger, activityModel *model.Activity) {

	var batch []model.ActivityMessage
	timer := time.NewTimer(batchTimeout)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := activityModel.CreateBatch(batch); err != nil {
			logger.Error(ctx, "Failed to save batch of activities: %v", err)
		} else {
			logger.Info(ctx, "Saved batch of %d activities", len(batch))
		}
		batch = nil
	}

	for {
		select {
		case <-ctx.Done():
			// Process remaining messages before exiting
			flush()
			return

		case msg := <-messages:
			batch = append(batch, msg)
			if len(batch) >= batchSize {
				flush()
				timer.Reset(batchTimeout)
			}

		case <-timer.C:
			flush()
			timer.Reset(batchTimeout)
		}
	}
}
