package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"video-tracking-system/internal/kafka"
	"video-tracking-system/internal/repository"
	"video-tracking-system/internal/services"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var consumeCmd = &cobra.Command{
	Use:   "consume",
	Short: "Apply watch reports from the Kafka ingest topic",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap()
		if err != nil {
			return err
		}
		defer rt.close()
		cfg, log := rt.cfg, rt.log

		videoCache := rt.videoCache()
		defer videoCache.Close()

		publisher, stopFanout := rt.eventFanout()
		defer stopFanout()

		videoRepo := repository.NewVideoRepository(rt.db, log)
		analytics := services.NewAnalyticsService(videoRepo, publisher, videoCache, log)

		consumer := kafka.NewConsumer(cfg.Kafka.Broker, cfg.Kafka.IngestTopic, cfg.Kafka.GroupID, log)
		defer func() {
			if err := consumer.Close(); err != nil {
				log.WithError(err).Error("Failed to close Kafka reader")
			}
		}()

		log.WithFields(logrus.Fields{
			"broker":   cfg.Kafka.Broker,
			"topic":    cfg.Kafka.IngestTopic,
			"group_id": cfg.Kafka.GroupID,
		}).Info("Consuming watch reports")

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return services.NewIngestWorker(consumer, analytics, log).Run(ctx)
	},
}
