package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tictactoe/internal/config"
	"github.com/rocketscienceinc/tictactoe/internal/entity"
	"github.com/rocketscienceinc/tictactoe/internal/identity"
	"github.com/rocketscienceinc/tictactoe/internal/repository"
	"github.com/rocketscienceinc/tictactoe/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe/internal/service"
	"github.com/rocketscienceinc/tictactoe/internal/usecase"
	"github.com/rocketscienceinc/tictactoe/transport/console"
	"github.com/rocketscienceinc/tictactoe/transport/rest"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

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

	gameRepo, closeStore, err := newGameRepository(ctx, conf)
	if err != nil {
		return err
	}

	defer func() {
		if err = closeStore(); err != nil {
			log.Error("could not close storage", "error", err)
		}
	}()

	gameManager := usecase.NewGameManager(logger, gameRepo)

	switch conf.AppMode {
	case config.ConsoleMode:
		return runConsole(ctx, logger, conf, gameManager)
	default:
		return runServer(ctx, logger, conf, gameManager)
	}
}

func runServer(ctx context.Context, logger *slog.Logger, conf *config.Config, gameManager *usecase.GameManager) error {
	log := logger.With("component", "app")

	handlers := rest.NewHandlers(logger, gameManager, conf.PublicURL)

	log.Info("Starting HTTP server", "port", conf.HTTPPort)

	if err := rest.Start(ctx, conf.HTTPPort, rest.NewRouter(logger, handlers)); err != nil {
		return fmt.Errorf("HTTP server error: %w", err)
	}

	log.Info("Application context canceled, shutting down")

	return nil
}

func runConsole(ctx context.Context, logger *slog.Logger, conf *config.Config, gameManager *usecase.GameManager) error {
	difficulty, err := entity.ParseDifficulty(conf.Bot.Difficulty)
	if err != nil {
		return fmt.Errorf("invalid bot difficulty: %w", err)
	}

	player, err := identity.Resolve(conf.PlayerID, identity.DefaultStateFile)
	if err != nil {
		return fmt.Errorf("failed to resolve player identity: %w", err)
	}

	localGame := usecase.NewLocalGame(logger, service.NewBotService())
	if err = localGame.SetDifficulty(difficulty); err != nil {
		return err
	}

	cons := console.New(logger, os.Stdout, localGame, conf.PublicURL)

	remoteGame := usecase.NewRemoteGame(logger, gameManager, player.Identity(), conf.PollInterval,
		usecase.WithOnUpdate(cons.OnRemoteUpdate))
	cons.SetRemote(remoteGame)

	if err = cons.Run(ctx, os.Stdin); err != nil {
		return fmt.Errorf("console error: %w", err)
	}

	return nil
}

// newGameRepository - picks the store from config. The memory store only connects clients of the same process.
func newGameRepository(ctx context.Context, conf *config.Config) (repository.GameRepository, func() error, error) {
	if conf.Storage == config.MemoryStorage {
		return repository.NewMemoryGameRepository(), func() error { return nil }, nil
	}

	redisAddrString := conf.Redis.GetRedisAddr()
	if conf.Redis.Host == "" {
		return nil, nil, ErrAddrNotFound
	}

	client, err := storage.NewRedisClient(ctx, storage.RedisOptions{
		Addr:     redisAddrString,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	return repository.NewGameRepository(client, conf.Redis.SessionTTL), client.Close, nil
}
