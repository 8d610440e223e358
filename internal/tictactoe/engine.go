package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe/internal/apperror"
	"github.com/rocketscienceinc/tictactoe/internal/entity"
)

// WinCombos - every row, column and diagonal of the board.
var WinCombos = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Apply - returns a copy of board with mark placed on cell. The input board is not modified.
func Apply(board entity.Board, cell int, mark entity.Mark) (entity.Board, error) {
	if !mark.IsValid() {
		return board, fmt.Errorf("%w: %q", apperror.ErrInvalidMark, mark)
	}

	if cell < 0 || cell >= len(board) {
		return board, fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	if board[cell] != entity.EmptyCell {
		return board, fmt.Errorf("%w: cell %d", apperror.ErrCellOccupied, cell)
	}

	next := board
	next[cell] = mark

	return next, nil
}

// LegalMoves - empty cells in ascending order.
func LegalMoves(board entity.Board) []int {
	moves := make([]int, 0, len(board))
	for i, cell := range board {
		if cell == entity.EmptyCell {
			moves = append(moves, i)
		}
	}

	return moves
}

// Outcome - checks the winning lines, then whether any cell is left.
// Two different winning marks cannot appear under legal alternating play, so the first line found wins.
func Outcome(board entity.Board) entity.Outcome {
	for _, combo := range WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != entity.EmptyCell && a == b && b == c {
			return entity.WinOutcome(a)
		}
	}

	// the game will continue until all the squares are full
	for _, cell := range board {
		if cell == entity.EmptyCell {
			return entity.OutcomeInProgress
		}
	}

	return entity.OutcomeDraw
}

// NextMark - the mark that moves after currentMark.
func NextMark(currentMark entity.Mark) entity.Mark {
	if currentMark == entity.PlayerX {
		return entity.PlayerO
	}
	return entity.PlayerX
}
