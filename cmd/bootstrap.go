package cmd

import (
	"context"
	"sync"

	"video-tracking-system/internal/cache"
	"video-tracking-system/internal/config"
	"video-tracking-system/internal/database"
	"video-tracking-system/internal/kafka"
	"video-tracking-system/internal/logger"
	"video-tracking-system/internal/services"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type app struct {
	cfg *config.Config
	log *logrus.Logger
	db  *gorm.DB
}

func bootstrap() (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	log := logger.SetupLogger(cfg.LogLevel)

	db, err := database.SetupDatabase(cfg.Database.URL, database.PoolConfig{
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, log)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, log: log, db: db}, nil
}

func (rt *app) close() {
	if err := database.Close(rt.db); err != nil {
		rt.log.WithError(err).Error("Failed to close database")
	}
}

func (rt *app) videoCache() *cache.VideoCache {
	if !rt.cfg.Redis.Enabled {
		return cache.NewDisabled()
	}
	c, err := cache.NewVideoCache(rt.cfg.Redis.Addr, rt.cfg.Redis.Password, rt.cfg.Redis.DB, rt.cfg.Redis.TTL)
	if err != nil {
		rt.log.WithError(err).Warn("Redis unavailable, video metadata cache disabled")
		return cache.NewDisabled()
	}
	return c
}

// eventFanout starts the Kafka publish queue when enabled. The returned stop
// function flushes the queue and closes the writer; it is safe to call when
// fan-out is disabled.
func (rt *app) eventFanout() (services.EventPublisher, func()) {
	if !rt.cfg.Kafka.Enabled {
		return nil, func() {}
	}

	producer := kafka.NewProducer(kafka.NewKafkaWriter(rt.cfg.Kafka.Broker, rt.cfg.Kafka.Topic))
	queue := services.NewEventQueue(producer, rt.log, rt.cfg.Kafka.QueueSize, rt.cfg.Kafka.BatchSize, rt.cfg.Kafka.BatchTimeout)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		queue.StartProcessor(ctx)
	}()

	rt.log.WithFields(logrus.Fields{
		"broker": rt.cfg.Kafka.Broker,
		"topic":  rt.cfg.Kafka.Topic,
	}).Info("Analytics event fan-out enabled")

	return queue, func() {
		cancel()
		wg.Wait()
		if err := producer.Close(); err != nil {
			rt.log.WithError(err).Error("Failed to close Kafka writer")
		}
	}
}
