package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe/internal/apperror"
	"github.com/rocketscienceinc/tictactoe/internal/entity"
)

type gameSession interface {
	CreateGame(ctx context.Context, identity string) (*entity.Game, error)
	JoinGame(ctx context.Context, gameID, identity string) (*entity.Game, error)
	GetGame(ctx context.Context, gameID string) (*entity.Game, error)
	MakeTurn(ctx context.Context, gameID, identity string, cell int) (*entity.Game, error)
}

type RemoteGameOption func(*RemoteGame)

// WithOnUpdate - fn is called from the poll goroutine whenever a newer version is observed.
func WithOnUpdate(fn func(game *entity.Game)) RemoteGameOption {
	return func(that *RemoteGame) {
		that.onUpdate = fn
	}
}

// RemoteGame is one client's handle on a two-device game. It keeps a cached copy of the record
// and refreshes it by polling, there is no push channel.
type RemoteGame struct {
	logger   *slog.Logger
	session  gameSession
	identity string
	interval time.Duration
	onUpdate func(game *entity.Game)

	mu     sync.Mutex
	game   *entity.Game
	cancel context.CancelFunc
	done   chan struct{}
}

func NewRemoteGame(logger *slog.Logger, session gameSession, identity string, interval time.Duration, opts ...RemoteGameOption) *RemoteGame {
	that := &RemoteGame{
		logger:   logger.With("component", "remote_game"),
		session:  session,
		identity: identity,
		interval: interval,
		onUpdate: func(*entity.Game) {},
	}

	for _, opt := range opts {
		opt(that)
	}

	return that
}

// Create - opens a new game as X and starts polling it. A game already held is left first.
func (that *RemoteGame) Create(ctx context.Context) (*entity.Game, error) {
	that.Leave()

	game, err := that.session.CreateGame(ctx, that.identity)
	if err != nil {
		return nil, fmt.Errorf("failed to create remote game: %w", err)
	}

	that.start(game)

	return game.Clone(), nil
}

// Join - takes the O seat if it is free and starts polling. When both seats are taken the
// client follows the game read-only.
func (that *RemoteGame) Join(ctx context.Context, gameID string) (*entity.Game, error) {
	that.Leave()

	game, err := that.session.JoinGame(ctx, gameID, that.identity)
	if err != nil {
		return nil, fmt.Errorf("failed to join remote game: %w", err)
	}

	that.start(game)

	return game.Clone(), nil
}

// PlayCell - attempts a move in the held game. Protocol errors are returned as is,
// the cache is refreshed whenever the manager hands back a record.
func (that *RemoteGame) PlayCell(ctx context.Context, cell int) error {
	that.mu.Lock()
	game := that.game
	that.mu.Unlock()

	if game == nil {
		return apperror.ErrNoRemoteGame
	}

	updated, err := that.session.MakeTurn(ctx, game.ID, that.identity, cell)
	if updated != nil {
		that.store(updated)
	}

	if err != nil {
		return fmt.Errorf("failed to play cell %d: %w", cell, err)
	}

	return nil
}

// Leave - stops polling and forgets the game. The shared record is left as it is.
func (that *RemoteGame) Leave() {
	that.mu.Lock()
	cancel, done := that.cancel, that.done
	that.cancel, that.done = nil, nil
	that.game = nil
	that.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	<-done
}

// State - the cached game, the caller's mark in it and whether a game is held.
func (that *RemoteGame) State() (*entity.Game, entity.Mark, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.game == nil {
		return nil, entity.EmptyCell, false
	}

	return that.game.Clone(), that.game.MarkOf(that.identity), true
}

func (that *RemoteGame) Identity() string {
	return that.identity
}

func (that *RemoteGame) start(game *entity.Game) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	that.mu.Lock()
	that.game = game.Clone()
	that.cancel = cancel
	that.done = done
	that.mu.Unlock()

	go that.poll(ctx, game.ID, done)
}

func (that *RemoteGame) poll(ctx context.Context, gameID string, done chan<- struct{}) {
	defer close(done)

	log := that.logger.With("method", "poll", "game_id", gameID)

	ticker := time.NewTicker(that.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug("polling stopped")
			return
		case <-ticker.C:
		}

		game, err := that.session.GetGame(ctx, gameID)
		if err != nil {
			// transient, the next tick retries
			log.Debug("failed to refresh game", "error", err)
			continue
		}

		if that.store(game) {
			that.onUpdate(game.Clone())
		}
	}
}

// store - replaces the cache if game is newer, reports whether it did.
func (that *RemoteGame) store(game *entity.Game) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.game == nil || that.game.ID != game.ID || game.Version <= that.game.Version {
		return false
	}

	that.game = game.Clone()

	return true
}
