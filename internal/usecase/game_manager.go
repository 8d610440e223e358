package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe/internal/apperror"
	"github.com/rocketscienceinc/tictactoe/internal/entity"
	"github.com/rocketscienceinc/tictactoe/internal/pkg"
	"github.com/rocketscienceinc/tictactoe/internal/tictactoe"
)

type gameRepo interface {
	Create(ctx context.Context, game *entity.Game) (*entity.Game, error)
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	Update(ctx context.Context, game *entity.Game, expectedVersion int64) (*entity.Game, error)
}

// GameManager enforces the two-device protocol on top of the shared store.
// Every operation does one read and at most one conditional write.
type GameManager struct {
	logger   *slog.Logger
	gameRepo gameRepo
	newID    func() string
}

func NewGameManager(logger *slog.Logger, gameRepo gameRepo) *GameManager {
	return &GameManager{
		logger:   logger.With("component", "game_manager"),
		gameRepo: gameRepo,
		newID:    pkg.GenerateGameID,
	}
}

// CreateGame - opens a game with the caller seated as X.
func (that *GameManager) CreateGame(ctx context.Context, identity string) (*entity.Game, error) {
	log := that.logger.With("method", "CreateGame")

	if identity == "" {
		return nil, fmt.Errorf("%w: empty identity", apperror.ErrNotAPlayer)
	}

	game, err := that.gameRepo.Create(ctx, entity.NewGame(that.newID(), identity))
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	log.Info("game created", "game_id", game.ID)

	return game, nil
}

// JoinGame - seats the caller as O if the seat is free. Joining again, or joining your own game,
// returns the record unchanged.
func (that *GameManager) JoinGame(ctx context.Context, gameID, identity string) (*entity.Game, error) {
	log := that.logger.With("method", "JoinGame", "game_id", gameID)

	if identity == "" {
		return nil, fmt.Errorf("%w: empty identity", apperror.ErrNotAPlayer)
	}

	game, err := that.getGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	if game.HasOpponent() || game.PlayerX == identity {
		return game, nil
	}

	joined := game.Clone()
	joined.PlayerO = identity

	updated, err := that.gameRepo.Update(ctx, joined, game.Version)
	if errors.Is(err, apperror.ErrStaleState) {
		// somebody else wrote first, whoever holds the seat now is authoritative
		log.Debug("join raced with another write")
		return that.getGame(ctx, gameID)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	log.Info("player joined")

	return updated, nil
}

// GetGame - unconditional read, used by pollers and spectators.
func (that *GameManager) GetGame(ctx context.Context, gameID string) (*entity.Game, error) {
	return that.getGame(ctx, gameID)
}

// MakeTurn - places the caller's mark on cell. On a lost race the fresh record is returned
// together with ErrStaleState so the caller can redraw.
func (that *GameManager) MakeTurn(ctx context.Context, gameID, identity string, cell int) (*entity.Game, error) {
	log := that.logger.With("method", "MakeTurn", "game_id", gameID, "cell", cell)

	game, err := that.getGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	if !game.IsActive() {
		return game, apperror.ErrNotActive
	}

	mark := game.MarkOf(identity)
	if mark == entity.EmptyCell {
		return game, apperror.ErrNotAPlayer
	}

	if mark != game.Turn {
		return game, apperror.ErrNotYourTurn
	}

	board, err := tictactoe.Apply(game.Board, cell, mark)
	if err != nil {
		return game, fmt.Errorf("failed to make turn: %w", err)
	}

	next := game.Clone()
	next.Board = board

	if outcome := tictactoe.Outcome(board); outcome.IsTerminal() {
		next.Status = entity.StatusFinished
	} else {
		next.Turn = tictactoe.NextMark(mark)
	}

	updated, err := that.gameRepo.Update(ctx, next, game.Version)
	if errors.Is(err, apperror.ErrStaleState) {
		log.Debug("turn raced with another write")

		fresh, readErr := that.getGame(ctx, gameID)
		if readErr != nil {
			return nil, readErr
		}

		return fresh, apperror.ErrStaleState
	}

	if err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	if updated.IsFinished() {
		log.Info("game finished", "outcome", tictactoe.Outcome(updated.Board))
	}

	return updated, nil
}

func (that *GameManager) getGame(ctx context.Context, gameID string) (*entity.Game, error) {
	game, err := that.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}
