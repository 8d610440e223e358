package tictactoe

import (
	"testing"

	"github.com/rocketscienceinc/tictactoe/internal/apperror"
	"github.com/rocketscienceinc/tictactoe/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allBoards - every assignment of {empty, X, O} to the nine cells, reachable or not.
func allBoards() []entity.Board {
	marks := [3]entity.Mark{entity.EmptyCell, entity.PlayerX, entity.PlayerO}
	boards := make([]entity.Board, 0, 19683)

	var fill func(board entity.Board, cell int)
	fill = func(board entity.Board, cell int) {
		if cell == entity.BoardSize {
			boards = append(boards, board)
			return
		}
		for _, mark := range marks {
			board[cell] = mark
			fill(board, cell+1)
		}
	}
	fill(entity.Board{}, 0)

	return boards
}

func winningMarks(board entity.Board) map[entity.Mark]bool {
	winners := make(map[entity.Mark]bool)
	for _, combo := range WinCombos {
		a := board[combo[0]]
		if a != entity.EmptyCell && a == board[combo[1]] && a == board[combo[2]] {
			winners[a] = true
		}
	}
	return winners
}

func TestApply(t *testing.T) {
	t.Run("Places the mark on an empty cell", func(t *testing.T) {
		// Given: an empty board
		board := entity.Board{}

		// When: X plays the center
		next, err := Apply(board, 4, entity.PlayerX)

		// Then: only the center changes and the input board stays untouched
		require.NoError(t, err)
		assert.Equal(t, entity.MustParseBoard("....X...."), next)
		assert.Equal(t, entity.Board{}, board)
	})

	t.Run("Error on Cell Already Occupied", func(t *testing.T) {
		// Given: a board where cell 0 is taken
		board := entity.MustParseBoard("X........")

		// When: O tries to play the same cell
		next, err := Apply(board, 0, entity.PlayerO)

		// Then: the move is illegal and the board is returned unchanged
		require.ErrorIs(t, err, apperror.ErrCellOccupied)
		require.ErrorIs(t, err, apperror.ErrIllegalMove)
		assert.Equal(t, board, next)
	})

	t.Run("Error on Invalid Cell Index", func(t *testing.T) {
		for _, cell := range []int{-1, 9, 20} {
			_, err := Apply(entity.Board{}, cell, entity.PlayerX)

			assert.ErrorIs(t, err, apperror.ErrInvalidCell, "cell %d", cell)
			assert.ErrorIs(t, err, apperror.ErrIllegalMove, "cell %d", cell)
		}
	})

	t.Run("Error on empty mark", func(t *testing.T) {
		_, err := Apply(entity.Board{}, 0, entity.EmptyCell)

		assert.ErrorIs(t, err, apperror.ErrInvalidMark)
	})

	t.Run("Rejects every occupied cell of every board", func(t *testing.T) {
		for _, board := range allBoards() {
			for cell, current := range board {
				if current == entity.EmptyCell {
					continue
				}

				next, err := Apply(board, cell, entity.PlayerX)
				if !assert.ErrorIs(t, err, apperror.ErrCellOccupied, "board %s cell %d", board, cell) {
					return
				}
				assert.Equal(t, board, next)
			}
		}
	})
}

func TestLegalMoves(t *testing.T) {
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8}, LegalMoves(entity.Board{}))
	assert.Equal(t, []int{1, 5, 7}, LegalMoves(entity.MustParseBoard("X.OOX.X.O")))
	assert.Empty(t, LegalMoves(entity.MustParseBoard("XOXXOOOXX")))
}

func TestOutcome(t *testing.T) {
	t.Run("Returns a win for every completed line", func(t *testing.T) {
		for _, combo := range WinCombos {
			for _, mark := range []entity.Mark{entity.PlayerX, entity.PlayerO} {
				// Given: a board where only the line is filled
				var board entity.Board
				for _, cell := range combo {
					board[cell] = mark
				}

				// Then: the mark on the line wins
				assert.Equal(t, entity.WinOutcome(mark), Outcome(board), "line %v", combo)
			}
		}
	})

	t.Run("Agrees with the line definition on every board", func(t *testing.T) {
		for _, board := range allBoards() {
			winners := winningMarks(board)
			outcome := Outcome(board)

			switch {
			case len(winners) == 1:
				assert.True(t, winners[outcome.Winner()], "board %s", board)
			case len(winners) == 0 && len(LegalMoves(board)) == 0:
				assert.Equal(t, entity.OutcomeDraw, outcome, "board %s", board)
			case len(winners) == 0:
				assert.Equal(t, entity.OutcomeInProgress, outcome, "board %s", board)
			}
		}
	})

	t.Run("Column win with cells left", func(t *testing.T) {
		// Given: X holds the left column (cells 0, 3, 6)
		board := entity.MustParseBoard("XXOXO.X..")

		// Then: X wins
		assert.Equal(t, entity.OutcomeXWins, Outcome(board))
	})

	t.Run("Main diagonal win", func(t *testing.T) {
		// Given: X holds cells 0, 4 and 8 and nothing else
		board := entity.MustParseBoard("X...X...X")

		assert.Equal(t, entity.OutcomeXWins, Outcome(board))
	})

	t.Run("Alternating fill completes both diagonals", func(t *testing.T) {
		// Given: XOXOXOXOX puts X on 0,4,8 and 2,4,6
		board := entity.MustParseBoard("XOXOXOXOX")

		// Then: it is a win for X, not a draw
		assert.Equal(t, entity.OutcomeXWins, Outcome(board))
	})

	t.Run("Full board without a line is a draw", func(t *testing.T) {
		board := entity.MustParseBoard("XOXXOOOXX")

		assert.Equal(t, entity.OutcomeDraw, Outcome(board))
	})

	t.Run("Empty board is in progress", func(t *testing.T) {
		assert.Equal(t, entity.OutcomeInProgress, Outcome(entity.Board{}))
	})
}

func TestNextMark(t *testing.T) {
	assert.Equal(t, entity.PlayerO, NextMark(entity.PlayerX))
	assert.Equal(t, entity.PlayerX, NextMark(entity.PlayerO))
}
