package entity

import (
	"fmt"
	"strings"

	"github.com/rocketscienceinc/tictactoe/internal/apperror"
)

type Mark string

const (
	PlayerX   Mark = "X"
	PlayerO   Mark = "O"
	EmptyCell Mark = ""
)

// BoardSize is the number of cells on the 3x3 grid.
const BoardSize = 9

const emptyRune = '.'

// Board holds the cells in row-major order, index 0 is the top-left cell.
type Board [BoardSize]Mark

func (that Mark) IsValid() bool {
	return that == PlayerX || that == PlayerO
}

// Opponent - returns the other mark, empty for an empty mark.
func (that Mark) Opponent() Mark {
	switch that {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	default:
		return EmptyCell
	}
}

func ParseMark(s string) (Mark, error) {
	mark := Mark(strings.ToUpper(strings.TrimSpace(s)))
	if !mark.IsValid() {
		return EmptyCell, fmt.Errorf("%w: %q", apperror.ErrInvalidMark, s)
	}

	return mark, nil
}

// String - renders the board as nine characters, '.' for empty cells.
func (that Board) String() string {
	var sb strings.Builder
	sb.Grow(BoardSize)

	for _, cell := range that {
		if cell == EmptyCell {
			sb.WriteRune(emptyRune)
			continue
		}
		sb.WriteString(string(cell))
	}

	return sb.String()
}

// ParseBoard - reads the nine character form produced by Board.String.
func ParseBoard(s string) (Board, error) {
	var board Board

	if len(s) != BoardSize {
		return board, fmt.Errorf("board must have %d cells, got %d", BoardSize, len(s))
	}

	for i, r := range s {
		switch r {
		case emptyRune:
			board[i] = EmptyCell
		case 'X', 'x':
			board[i] = PlayerX
		case 'O', 'o':
			board[i] = PlayerO
		default:
			return board, fmt.Errorf("%w: %q at cell %d", apperror.ErrInvalidMark, r, i)
		}
	}

	return board, nil
}

// MustParseBoard - like ParseBoard but panics, for fixtures.
func MustParseBoard(s string) Board {
	board, err := ParseBoard(s)
	if err != nil {
		panic(err)
	}

	return board
}
