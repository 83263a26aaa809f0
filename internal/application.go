package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/onitama-backend/internal/ai"
	"github.com/rocketscienceinc/onitama-backend/internal/config"
	"github.com/rocketscienceinc/onitama-backend/internal/coordinator"
	"github.com/rocketscienceinc/onitama-backend/internal/game"
	"github.com/rocketscienceinc/onitama-backend/internal/onitama"
	"github.com/rocketscienceinc/onitama-backend/internal/repository"
	"github.com/rocketscienceinc/onitama-backend/internal/repository/storage"
	"github.com/rocketscienceinc/onitama-backend/transport/rest"
	"github.com/rocketscienceinc/onitama-backend/transport/websocket"
)

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	// the match archive is optional: without a redis address finished games
	// are simply not recorded
	var matchRepo repository.MatchRepository
	if addr := conf.Redis.GetRedisAddr(); addr != "" {
		redisClient, err := storage.New(ctx, addr)
		if err != nil {
			return fmt.Errorf("could not connect to redis storage: %w", err)
		}

		defer func() {
			if err = redisClient.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}()

		matchRepo = repository.NewMatchRepository(redisClient)
	} else {
		log.Info("match archive disabled, no redis address configured")
	}

	aiPool := ai.NewPool(logger, onitama.NewAgent(), conf.AIWorkers, conf.AIBacklog)
	defer aiPool.Close()

	coord := coordinator.New(logger, onitama.NewEngine, game.Identity, aiPool, matchRepo)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.Start(ctx, conf.HTTPPort); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, coord)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err := <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err := <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}
