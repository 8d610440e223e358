package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/tictactoe/internal/apperror"
	"github.com/rocketscienceinc/tictactoe/internal/entity"
)

const gameKeyPrefix = "game:"

// GameRepository is the shared record store both clients of a game talk to.
// Version is owned by the store: Create sets it to 1, Update bumps it only when expectedVersion matches.
type GameRepository interface {
	Create(ctx context.Context, game *entity.Game) (*entity.Game, error)
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	Update(ctx context.Context, game *entity.Game, expectedVersion int64) (*entity.Game, error)
}

type dbGame struct {
	client *redis.Client
	ttl    time.Duration
}

// NewGameRepository - a ttl of zero keeps games forever.
func NewGameRepository(client *redis.Client, ttl time.Duration) GameRepository {
	return &dbGame{
		client: client,
		ttl:    ttl,
	}
}

func gameKey(id string) string {
	return gameKeyPrefix + id
}

func (that *dbGame) Create(ctx context.Context, game *entity.Game) (*entity.Game, error) {
	stored := game.Clone()
	stored.Version = 1
	stored.UpdatedAt = time.Now().UTC()

	gameJSON, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("could not marshal game: %w", err)
	}

	created, err := that.client.SetNX(ctx, gameKey(stored.ID), gameJSON, that.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to set game: %w", err)
	}

	if !created {
		return nil, fmt.Errorf("%w: %s", apperror.ErrGameAlreadyExists, stored.ID)
	}

	return stored, nil
}

func (that *dbGame) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	return readGame(ctx, that.client, id)
}

// Update - writes game only if the stored version still equals expectedVersion.
// The key is watched, so a write racing between the read and EXEC aborts the transaction.
func (that *dbGame) Update(ctx context.Context, game *entity.Game, expectedVersion int64) (*entity.Game, error) {
	key := gameKey(game.ID)

	var stored *entity.Game

	txf := func(tx *redis.Tx) error {
		current, err := readGame(ctx, tx, game.ID)
		if err != nil {
			return err
		}

		if current.Version != expectedVersion {
			return apperror.ErrStaleState
		}

		next := game.Clone()
		next.Version = expectedVersion + 1
		next.UpdatedAt = time.Now().UTC()

		gameJSON, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("could not marshal game: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, gameJSON, that.ttl)
			return nil
		})
		if err != nil {
			return err
		}

		stored = next

		return nil
	}

	err := that.client.Watch(ctx, txf, key)
	switch {
	case errors.Is(err, redis.TxFailedErr):
		return nil, apperror.ErrStaleState
	case errors.Is(err, apperror.ErrStaleState), errors.Is(err, apperror.ErrGameNotFound):
		return nil, err
	case err != nil:
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	return stored, nil
}

// getter is satisfied by both the client and a watched transaction.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readGame(ctx context.Context, cmd getter, id string) (*entity.Game, error) {
	response, err := cmd.Get(ctx, gameKey(id)).Result()

	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrGameNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	var existingGame entity.Game
	if err = json.Unmarshal([]byte(response), &existingGame); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game: %w", err)
	}

	return &existingGame, nil
}
