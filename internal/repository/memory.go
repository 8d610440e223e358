package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe/internal/apperror"
	"github.com/rocketscienceinc/tictactoe/internal/entity"
)

// memoryGame keeps games in process. Used by the console when no Redis is configured
// and by tests; two clients only see each other when they share the instance.
type memoryGame struct {
	mu    sync.Mutex
	games map[string]*entity.Game
}

func NewMemoryGameRepository() GameRepository {
	return &memoryGame{
		games: make(map[string]*entity.Game),
	}
}

func (that *memoryGame) Create(_ context.Context, game *entity.Game) (*entity.Game, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.games[game.ID]; ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrGameAlreadyExists, game.ID)
	}

	stored := game.Clone()
	stored.Version = 1
	stored.UpdatedAt = time.Now().UTC()

	that.games[stored.ID] = stored

	return stored.Clone(), nil
}

func (that *memoryGame) GetByID(_ context.Context, id string) (*entity.Game, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	game, ok := that.games[id]
	if !ok {
		return nil, apperror.ErrGameNotFound
	}

	return game.Clone(), nil
}

func (that *memoryGame) Update(_ context.Context, game *entity.Game, expectedVersion int64) (*entity.Game, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	current, ok := that.games[game.ID]
	if !ok {
		return nil, apperror.ErrGameNotFound
	}

	if current.Version != expectedVersion {
		return nil, apperror.ErrStaleState
	}

	stored := game.Clone()
	stored.Version = expectedVersion + 1
	stored.UpdatedAt = time.Now().UTC()

	that.games[stored.ID] = stored

	return stored.Clone(), nil
}
