package repository

import (
	"context"
	"testing"

	"github.com/rocketscienceinc/tictactoe/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameRepository_Memory(t *testing.T) {
	testGameRepository(context.Background(), t, NewMemoryGameRepository)
}

func TestGameRepository_MemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	gameRepo := NewMemoryGameRepository()

	created, err := gameRepo.Create(ctx, entity.NewGame("copy", "alice"))
	require.NoError(t, err)

	// When: the caller mutates what it got back
	created.Board[0] = entity.PlayerO
	created.PlayerO = "mallory"

	// Then: the stored record is unaffected
	stored, err := gameRepo.GetByID(ctx, "copy")
	require.NoError(t, err)
	assert.Equal(t, entity.EmptyCell, stored.Board[0])
	assert.Empty(t, stored.PlayerO)
}
