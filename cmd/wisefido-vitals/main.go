package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wisefido-vitals/internal/cloud"
	"wisefido-vitals/internal/config"
	"wisefido-vitals/internal/history"
	"wisefido-vitals/internal/httpapi"
	"wisefido-vitals/internal/hub"
	"wisefido-vitals/internal/mqtt"
	"wisefido-vitals/internal/service"
	"wisefido-vitals/internal/stream"
	"wisefido-vitals/internal/vitals"
	"wisefido-vitals/pkg/logger"

	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// 1. Load configuration
	cfg := config.Load()

	// 2. Initialize logging
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "wisefido-vitals")
	if err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Vital Signs Monitor",
		zap.String("addr", cfg.HTTP.Addr),
		zap.String("history_backend", cfg.History.Backend),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Durable history log
	durableLog, dbCloser, err := openDurableLog(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to open history backend", zap.Error(err))
	}
	if dbCloser != nil {
		defer dbCloser.Close()
	}
	store := history.NewStore(ctx, durableLog, log)

	// 4. Realtime fan-out hub (needs the engine's snapshot for replay, so
	// the engine is created first without sinks and the hub attached after)
	var snapshotSinks []vitals.SnapshotSink
	var recordSinks []service.RecordSink

	// 5. Optional Redis Stream publisher
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Fatal("Failed to connect to Redis", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		defer client.Close()

		publisher := stream.NewPublisher(client, cfg.Redis.Stream, log)
		go publisher.Run(ctx)
		snapshotSinks = append(snapshotSinks, publisher)
		recordSinks = append(recordSinks, publisher)
	}

	// 6. Optional cloud webhook forwarder
	if cfg.Cloud.Enabled {
		if cfg.Cloud.WebhookURL == "" {
			log.Fatal("CLOUD_WEBHOOK_URL is required when cloud forwarding is enabled")
		}
		recordSinks = append(recordSinks, cloud.NewForwarder(cfg.Cloud.WebhookURL, cfg.Cloud.Timeout, log))
	}

	// 7. Ingestion engine, hub and liveness monitor
	engine := vitals.NewEngine(vitals.NewTimeSeriesBuffer(vitals.DefaultBufferCapacity), log, snapshotSinks...)
	h := hub.NewHub(engine.Snapshot, store.Recent, log)
	go h.Run(ctx)
	engine.AddSink(h)
	recordSinks = append(recordSinks, h)

	monitor := vitals.NewMonitor(engine, cfg.Liveness.PollInterval, cfg.Liveness.Timeout, log)
	go monitor.Run(ctx)

	records := service.NewRecordService(store, log, recordSinks...)

	// 8. Optional MQTT ingest source
	if cfg.MQTT.Enabled {
		source := mqtt.NewSource(mqtt.Options{
			Broker:   cfg.MQTT.Broker,
			ClientID: cfg.MQTT.ClientID,
			Username: cfg.MQTT.Username,
			Password: cfg.MQTT.Password,
			Topic:    cfg.MQTT.Topic,
			QoS:      cfg.MQTT.QoS,
		}, engine, log)
		if err := source.Start(); err != nil {
			log.Fatal("Failed to start MQTT ingest source", zap.Error(err))
		}
		defer source.Stop()
	}

	// 9. HTTP API
	handler := httpapi.NewVitalsHandler(engine, store, records, h, log)
	router := httpapi.NewRouter(log)
	router.RegisterVitalsRoutes(handler)

	server := service.NewServer(cfg.HTTP.Addr, router, log)
	serverErrChan := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	log.Info("Vital Signs Monitor ready",
		zap.String("dashboard", "http://localhost"+cfg.HTTP.Addr+"/"),
		zap.String("live_api", "http://localhost"+cfg.HTTP.Addr+"/api/vital_signs"),
		zap.String("history_api", "http://localhost"+cfg.HTTP.Addr+"/api/vitals_history"),
		zap.String("realtime", "ws://localhost"+cfg.HTTP.Addr+"/ws"),
	)

	// 10. Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info("Received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-serverErrChan:
		log.Fatal("HTTP server error", zap.Error(err))
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Stop(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", zap.Error(err))
	}

	log.Info("Vital Signs Monitor stopped")
}

// openDurableLog selects the history backend. The returned closer is non-nil
// only for the postgres backend.
func openDurableLog(ctx context.Context, cfg *config.Config, log *zap.Logger) (history.DurableLog, *sql.DB, error) {
	switch cfg.History.Backend {
	case "postgres":
		db, err := sql.Open("postgres", cfg.Database.DSN())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to ping database: %w", err)
		}
		pgLog := history.NewPostgresLog(db, log)
		if err := pgLog.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return pgLog, db, nil
	case "file", "":
		return history.NewFileLog(cfg.History.File), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown history backend %q", cfg.History.Backend)
	}
}
