package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/rocketscienceinc/tictactoe/internal/apperror"
)

const (
	StatusActive   = "active"
	StatusFinished = "finished"
)

type Outcome string

const (
	OutcomeInProgress Outcome = "in_progress"
	OutcomeXWins      Outcome = "x_wins"
	OutcomeOWins      Outcome = "o_wins"
	OutcomeDraw       Outcome = "draw"
)

func (that Outcome) IsTerminal() bool {
	return that == OutcomeXWins || that == OutcomeOWins || that == OutcomeDraw
}

// Winner - returns the winning mark, empty for a draw or a game in progress.
func (that Outcome) Winner() Mark {
	switch that {
	case OutcomeXWins:
		return PlayerX
	case OutcomeOWins:
		return PlayerO
	default:
		return EmptyCell
	}
}

// WinOutcome - maps a mark to its winning outcome.
func WinOutcome(mark Mark) Outcome {
	if mark == PlayerO {
		return OutcomeOWins
	}
	return OutcomeXWins
}

type Difficulty string

const (
	EasyDifficulty   Difficulty = "easy"
	MediumDifficulty Difficulty = "medium"
	HardDifficulty   Difficulty = "hard"
)

func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(s))); d {
	case EasyDifficulty, MediumDifficulty, HardDifficulty:
		return d, nil
	default:
		return "", fmt.Errorf("%w: %q", apperror.ErrUnknownDifficulty, s)
	}
}

type Mode string

const (
	LocalMode Mode = "local"
	BotMode   Mode = "bot"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case LocalMode, BotMode:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", apperror.ErrUnknownMode, s)
	}
}

// Game is a networked session shared by two clients through the record store.
// The outcome is not stored, it is derived from Board on every read.
type Game struct {
	ID        string    `json:"id"`
	Board     Board     `json:"board"`
	Turn      Mark      `json:"turn"`
	Status    string    `json:"status"`
	PlayerX   string    `json:"player_x"`
	PlayerO   string    `json:"player_o,omitempty"`
	Version   int64     `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewGame(id, creator string) *Game {
	return &Game{
		ID:      id,
		Turn:    PlayerX,
		Status:  StatusActive,
		PlayerX: creator,
	}
}

func (that *Game) IsActive() bool {
	return that.Status == StatusActive
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

// HasOpponent - reports whether the second seat is taken.
func (that *Game) HasOpponent() bool {
	return that.PlayerO != ""
}

// MarkOf - resolves the mark owned by identity, empty if identity is not seated.
func (that *Game) MarkOf(identity string) Mark {
	switch {
	case identity == "":
		return EmptyCell
	case that.PlayerX == identity:
		return PlayerX
	case that.PlayerO == identity:
		return PlayerO
	default:
		return EmptyCell
	}
}

// Clone - returns a copy that can be mutated without touching the receiver.
func (that *Game) Clone() *Game {
	clone := *that
	return &clone
}

// LocalState is a read-only snapshot of a single-device game.
type LocalState struct {
	Board      Board
	Turn       Mark
	Outcome    Outcome
	Mode       Mode
	HumanMark  Mark
	BotMark    Mark
	Difficulty Difficulty
}
