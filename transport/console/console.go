package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/rocketscienceinc/tictactoe/internal/apperror"
	"github.com/rocketscienceinc/tictactoe/internal/entity"
	"github.com/rocketscienceinc/tictactoe/internal/pkg"
	"github.com/rocketscienceinc/tictactoe/internal/tictactoe"
)

const helpText = `commands:
  1-9                       play a cell, numbered left to right, top to bottom
  mode local|bot            two players on this terminal, or against the computer
  difficulty easy|medium|hard
  symbol X|O                your mark against the computer
  new                       restart the current local game
  create                    open a game for a second device and print its link
  join <id|link>            join a game opened on another device
  leave                     stop following the remote game
  show                      print the board again
  help                      this text
  quit`

var errUnknownCommand = errors.New("unknown command, type help")

type localGame interface {
	SetMode(mode entity.Mode) error
	SetDifficulty(difficulty entity.Difficulty) error
	SetHumanMark(humanMark entity.Mark) error
	NewGame()
	PlayCell(cell int) bool
	State() entity.LocalState
}

type remoteGame interface {
	Create(ctx context.Context) (*entity.Game, error)
	Join(ctx context.Context, gameID string) (*entity.Game, error)
	PlayCell(ctx context.Context, cell int) error
	Leave()
	State() (*entity.Game, entity.Mark, bool)
}

// Console is a line oriented client for all three ways of playing.
// Remote updates arrive from the poll goroutine, so every write goes through mu.
type Console struct {
	logger    *slog.Logger
	local     localGame
	remote    remoteGame
	publicURL string

	mu  sync.Mutex
	out io.Writer
}

func New(logger *slog.Logger, out io.Writer, local localGame, publicURL string) *Console {
	return &Console{
		logger:    logger.With("component", "console"),
		local:     local,
		publicURL: publicURL,
		out:       out,
	}
}

// SetRemote - enables create and join. Without it the console only plays locally.
func (that *Console) SetRemote(remote remoteGame) {
	that.remote = remote
}

// Run - reads commands from in until quit, end of input or ctx is done.
func (that *Console) Run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	readErr := make(chan error, 1)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	defer that.leaveRemote()

	that.println("tic-tac-toe, type help for commands")
	that.showLocal()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					if err != nil {
						return fmt.Errorf("failed to read input: %w", err)
					}
				default:
				}
				return nil
			}

			quit, err := that.Execute(ctx, line)
			if err != nil {
				that.println("error: " + err.Error())
			}

			if quit {
				return nil
			}
		}
	}
}

// Execute - runs one command line. It reports whether the user asked to quit.
func (that *Console) Execute(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}

	command, args := strings.ToLower(fields[0]), fields[1:]

	if cell, err := strconv.Atoi(command); err == nil {
		return false, that.play(ctx, cell-1)
	}

	switch command {
	case "quit", "exit":
		return true, nil
	case "help":
		that.println(helpText)
	case "show":
		that.show()
	case "new":
		that.leaveRemote()
		that.local.NewGame()
		that.showLocal()
	case "mode":
		return false, that.withArg(args, func(arg string) error {
			mode, err := entity.ParseMode(arg)
			if err != nil {
				return err
			}
			that.leaveRemote()
			if err = that.local.SetMode(mode); err != nil {
				return err
			}
			that.showLocal()
			return nil
		})
	case "difficulty":
		return false, that.withArg(args, func(arg string) error {
			difficulty, err := entity.ParseDifficulty(arg)
			if err != nil {
				return err
			}
			if err = that.local.SetDifficulty(difficulty); err != nil {
				return err
			}
			that.println("difficulty set to " + string(difficulty))
			return nil
		})
	case "symbol":
		return false, that.withArg(args, func(arg string) error {
			mark, err := entity.ParseMark(arg)
			if err != nil {
				return err
			}
			that.leaveRemote()
			if err = that.local.SetHumanMark(mark); err != nil {
				return err
			}
			that.showLocal()
			return nil
		})
	case "create":
		return false, that.create(ctx)
	case "join":
		return false, that.withArg(args, func(arg string) error {
			return that.join(ctx, arg)
		})
	case "leave":
		if !that.leaveRemote() {
			that.println("not in a remote game")
			return false, nil
		}
		that.println("left the remote game")
		that.showLocal()
	default:
		return false, errUnknownCommand
	}

	return false, nil
}

// OnRemoteUpdate - hook for the remote poller, redraws when the opponent moved.
// Updates that arrive after leave are dropped.
func (that *Console) OnRemoteUpdate(game *entity.Game) {
	if that.remote == nil {
		return
	}

	held, mark, ok := that.remote.State()
	if !ok || held.ID != game.ID {
		return
	}

	that.renderRemote(game, mark)
}

func (that *Console) play(ctx context.Context, cell int) error {
	if that.remote != nil {
		if _, _, ok := that.remote.State(); ok {
			err := that.remote.PlayCell(ctx, cell)
			if game, mark, held := that.remote.State(); held && (err == nil || errors.Is(err, apperror.ErrStaleState)) {
				that.renderRemote(game, mark)
			}
			return err
		}
	}

	if !that.local.PlayCell(cell) {
		that.println("move ignored")
		return nil
	}

	that.showLocal()

	return nil
}

func (that *Console) create(ctx context.Context) error {
	if that.remote == nil {
		return apperror.ErrNoRemoteGame
	}

	game, err := that.remote.Create(ctx)
	if err != nil {
		return err
	}

	link, err := pkg.ShareLink(that.publicURL, game.ID)
	if err != nil {
		that.logger.Warn("failed to build share link", "error", err)
		link = game.ID
	}

	that.println("game created, share this with your opponent: " + link)
	that.renderRemote(game, entity.PlayerX)

	return nil
}

func (that *Console) join(ctx context.Context, raw string) error {
	if that.remote == nil {
		return apperror.ErrNoRemoteGame
	}

	gameID, err := pkg.ParseShareLink(raw)
	if err != nil {
		return err
	}

	if _, err = that.remote.Join(ctx, gameID); err != nil {
		return err
	}

	game, mark, _ := that.remote.State()
	if mark == entity.EmptyCell {
		that.println("both seats are taken, following the game")
	}
	that.renderRemote(game, mark)

	return nil
}

func (that *Console) leaveRemote() bool {
	if that.remote == nil {
		return false
	}

	if _, _, ok := that.remote.State(); !ok {
		return false
	}

	that.remote.Leave()

	return true
}

func (that *Console) withArg(args []string, fn func(arg string) error) error {
	if len(args) != 1 {
		return errUnknownCommand
	}

	return fn(args[0])
}

func (that *Console) show() {
	if that.remote != nil {
		if game, mark, ok := that.remote.State(); ok {
			that.renderRemote(game, mark)
			return
		}
	}

	that.showLocal()
}

func (that *Console) showLocal() {
	state := that.local.State()

	header := "local game, two players"
	if state.Mode == entity.BotMode {
		header = fmt.Sprintf("against the computer (%s), you play %s", state.Difficulty, state.HumanMark)
	}

	that.println(header + "\n" + renderBoard(state.Board) + "\n" + statusLine(state.Outcome, state.Turn))
}

func (that *Console) renderRemote(game *entity.Game, mark entity.Mark) {
	header := fmt.Sprintf("game %s, spectating", game.ID)
	if mark != entity.EmptyCell {
		header = fmt.Sprintf("game %s, you play %s", game.ID, mark)
	}

	status := statusLine(tictactoe.Outcome(game.Board), game.Turn)
	if !game.HasOpponent() && game.IsActive() {
		status += ", waiting for an opponent"
	}

	that.println(header + "\n" + renderBoard(game.Board) + "\n" + status)
}

func (that *Console) println(s string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, err := fmt.Fprintln(that.out, s); err != nil {
		that.logger.Error("failed to write output", "error", err)
	}
}

// renderBoard - empty cells show the number that plays them.
func renderBoard(board entity.Board) string {
	var sb strings.Builder

	for row := range 3 {
		if row > 0 {
			sb.WriteString("\n---+---+---\n")
		}

		for col := range 3 {
			cell := row*3 + col
			if col > 0 {
				sb.WriteString("|")
			}

			symbol := string(board[cell])
			if board[cell] == entity.EmptyCell {
				symbol = strconv.Itoa(cell + 1)
			}

			sb.WriteString(" " + symbol + " ")
		}
	}

	return sb.String()
}

func statusLine(outcome entity.Outcome, turn entity.Mark) string {
	switch {
	case outcome == entity.OutcomeDraw:
		return "draw"
	case outcome.IsTerminal():
		return string(outcome.Winner()) + " wins"
	default:
		return string(turn) + " to move"
	}
}
