package usecase

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/rocketscienceinc/tictactoe/internal/apperror"
	"github.com/rocketscienceinc/tictactoe/internal/entity"
	"github.com/rocketscienceinc/tictactoe/internal/service"
	"github.com/rocketscienceinc/tictactoe/internal/tictactoe"
)

type botService interface {
	ChooseMove(rng service.Random, board entity.Board, mark entity.Mark, difficulty entity.Difficulty) (int, error)
}

type LocalGameOption func(*LocalGame)

// WithRandom - sets the random source handed to the bot, tests use a seeded one.
func WithRandom(rng service.Random) LocalGameOption {
	return func(that *LocalGame) {
		that.rng = rng
	}
}

// LocalGame owns a single-device game: two humans on one board, or a human against the bot.
type LocalGame struct {
	logger *slog.Logger
	bot    botService
	rng    service.Random

	mu         sync.Mutex
	mode       entity.Mode
	difficulty entity.Difficulty
	humanMark  entity.Mark
	board      entity.Board
	turn       entity.Mark
}

func NewLocalGame(logger *slog.Logger, bot botService, opts ...LocalGameOption) *LocalGame {
	that := &LocalGame{
		logger: logger.With("component", "local_game"),
		bot:    bot,
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())), //nolint: gosec // game randomness

		mode:       entity.LocalMode,
		difficulty: entity.MediumDifficulty,
		humanMark:  entity.PlayerX,
	}

	for _, opt := range opts {
		opt(that)
	}

	that.reset()

	return that
}

// Configure - replaces the whole configuration and starts a new game.
func (that *LocalGame) Configure(mode entity.Mode, difficulty entity.Difficulty, humanMark entity.Mark) error {
	if _, err := entity.ParseMode(string(mode)); err != nil {
		return err
	}

	if _, err := entity.ParseDifficulty(string(difficulty)); err != nil {
		return err
	}

	if !humanMark.IsValid() {
		return fmt.Errorf("%w: %q", apperror.ErrInvalidMark, humanMark)
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	that.mode = mode
	that.difficulty = difficulty
	that.humanMark = humanMark
	that.reset()

	return nil
}

// SetMode - switches mode and starts a new game.
func (that *LocalGame) SetMode(mode entity.Mode) error {
	that.mu.Lock()
	difficulty, humanMark := that.difficulty, that.humanMark
	that.mu.Unlock()

	return that.Configure(mode, difficulty, humanMark)
}

// SetHumanMark - switches the human's side and starts a new game.
func (that *LocalGame) SetHumanMark(humanMark entity.Mark) error {
	that.mu.Lock()
	mode, difficulty := that.mode, that.difficulty
	that.mu.Unlock()

	return that.Configure(mode, difficulty, humanMark)
}

// SetDifficulty - applies from the bot's next move, the current game keeps going.
func (that *LocalGame) SetDifficulty(difficulty entity.Difficulty) error {
	if _, err := entity.ParseDifficulty(string(difficulty)); err != nil {
		return err
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	that.difficulty = difficulty

	return nil
}

// NewGame - clears the board and keeps the configuration.
func (that *LocalGame) NewGame() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.reset()
}

// PlayCell - attempts a move for whoever is to move. Illegal or out of turn attempts are ignored
// and reported as false. In bot mode the bot replies before PlayCell returns.
func (that *LocalGame) PlayCell(cell int) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	log := that.logger.With("method", "PlayCell", "cell", cell)

	if tictactoe.Outcome(that.board).IsTerminal() {
		log.Debug("game is already over")
		return false
	}

	if that.mode == entity.BotMode && that.turn != that.humanMark {
		log.Debug("not the human's turn")
		return false
	}

	board, err := tictactoe.Apply(that.board, cell, that.turn)
	if err != nil {
		log.Debug("move ignored", "error", err)
		return false
	}

	that.board = board

	if tictactoe.Outcome(that.board).IsTerminal() {
		return true
	}

	if that.mode == entity.LocalMode {
		that.turn = tictactoe.NextMark(that.turn)
		return true
	}

	that.botMove()
	that.turn = that.humanMark

	return true
}

// State - a snapshot for rendering.
func (that *LocalGame) State() entity.LocalState {
	that.mu.Lock()
	defer that.mu.Unlock()

	return entity.LocalState{
		Board:      that.board,
		Turn:       that.turn,
		Outcome:    tictactoe.Outcome(that.board),
		Mode:       that.mode,
		HumanMark:  that.humanMark,
		BotMark:    that.humanMark.Opponent(),
		Difficulty: that.difficulty,
	}
}

// reset - must be called with mu held.
func (that *LocalGame) reset() {
	that.board = entity.Board{}
	that.turn = entity.PlayerX

	if that.mode == entity.BotMode && that.humanMark == entity.PlayerO {
		that.turn = that.humanMark.Opponent()
		that.botMove()
		that.turn = that.humanMark
	}
}

// botMove - plays for the bot on the current board. Callers have checked that the game is not over,
// so a missing move is a broken invariant.
func (that *LocalGame) botMove() {
	botMark := that.humanMark.Opponent()

	cell, err := that.bot.ChooseMove(that.rng, that.board, botMark, that.difficulty)
	if err != nil {
		panic(fmt.Errorf("bot failed to choose a move: %w", err))
	}

	board, err := tictactoe.Apply(that.board, cell, botMark)
	if err != nil {
		panic(fmt.Errorf("bot chose an illegal move: %w", err))
	}

	that.board = board

	that.logger.Debug("bot moved", "cell", cell, "mark", botMark, "difficulty", that.difficulty)
}
