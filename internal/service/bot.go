package service

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe/internal/apperror"
	"github.com/rocketscienceinc/tictactoe/internal/entity"
	"github.com/rocketscienceinc/tictactoe/internal/tictactoe"
)

// MediumRandomRate - share of medium moves that are picked at random instead of searched.
const MediumRandomRate = 0.35

const (
	scoreWin  = 1
	scoreDraw = 0
	scoreLoss = -1
)

// Random is the source of randomness for the easy and medium tiers. *math/rand/v2.Rand satisfies it.
type Random interface {
	IntN(n int) int
	Float64() float64
}

type BotService interface {
	ChooseMove(rng Random, board entity.Board, mark entity.Mark, difficulty entity.Difficulty) (int, error)
}

type botService struct{}

func NewBotService() BotService {
	return &botService{}
}

// ChooseMove - picks a legal cell for mark according to difficulty.
func (that *botService) ChooseMove(rng Random, board entity.Board, mark entity.Mark, difficulty entity.Difficulty) (int, error) {
	if !mark.IsValid() {
		return 0, fmt.Errorf("%w: %q", apperror.ErrInvalidMark, mark)
	}

	availableCells := tictactoe.LegalMoves(board)
	if len(availableCells) == 0 {
		return 0, apperror.ErrNoLegalMove
	}

	switch difficulty {
	case entity.EasyDifficulty:
		return randomCell(rng, availableCells), nil
	case entity.MediumDifficulty:
		if rng.Float64() < MediumRandomRate {
			return randomCell(rng, availableCells), nil
		}
		return bestCell(board, mark), nil
	case entity.HardDifficulty:
		return bestCell(board, mark), nil
	default:
		return 0, fmt.Errorf("%w: %q", apperror.ErrUnknownDifficulty, difficulty)
	}
}

func randomCell(rng Random, cells []int) int {
	return cells[rng.IntN(len(cells))]
}

// bestCell - full minimax from board with bot to move. Ties keep the lowest index.
func bestCell(board entity.Board, bot entity.Mark) int {
	search := &minimax{bot: bot, memo: make(map[entity.Board]int)}

	bestMove, bestScore := -1, scoreLoss-1
	for _, cell := range tictactoe.LegalMoves(board) {
		next := board
		next[cell] = bot

		score := search.value(next, bot.Opponent())
		if score > bestScore {
			bestMove, bestScore = cell, score
		}
	}

	return bestMove
}

// minimax scores positions from the bot's point of view.
// The side to move is implied by the board, so the board alone keys the memo table.
type minimax struct {
	bot  entity.Mark
	memo map[entity.Board]int
}

func (that *minimax) value(board entity.Board, turn entity.Mark) int {
	if score, ok := that.memo[board]; ok {
		return score
	}

	var score int
	switch outcome := tictactoe.Outcome(board); {
	case outcome == entity.OutcomeDraw:
		score = scoreDraw
	case outcome.IsTerminal() && outcome.Winner() == that.bot:
		score = scoreWin
	case outcome.IsTerminal():
		score = scoreLoss
	default:
		score = that.expand(board, turn)
	}

	that.memo[board] = score

	return score
}

func (that *minimax) expand(board entity.Board, turn entity.Mark) int {
	maximizing := turn == that.bot

	best := scoreWin + 1
	if maximizing {
		best = scoreLoss - 1
	}

	for _, cell := range tictactoe.LegalMoves(board) {
		next := board
		next[cell] = turn

		score := that.value(next, turn.Opponent())
		if maximizing && score > best || !maximizing && score < best {
			best = score
		}
	}

	return best
}
