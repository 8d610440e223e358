package console

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rocketscienceinc/tictactoe/internal/entity"
	"github.com/rocketscienceinc/tictactoe/internal/repository"
	"github.com/rocketscienceinc/tictactoe/internal/service"
	"github.com/rocketscienceinc/tictactoe/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer lets the poll goroutine and the test read the output safely.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (that *syncBuffer) Write(p []byte) (int, error) {
	that.mu.Lock()
	defer that.mu.Unlock()
	return that.buf.Write(p)
}

func (that *syncBuffer) String() string {
	that.mu.Lock()
	defer that.mu.Unlock()
	return that.buf.String()
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newLocalConsole(out io.Writer) *Console {
	rng := rand.New(rand.NewPCG(3, 4)) //nolint: gosec // deterministic test source
	local := usecase.NewLocalGame(testLogger(), service.NewBotService(), usecase.WithRandom(rng))

	return New(testLogger(), out, local, "http://localhost:9090/join")
}

func TestConsole_LocalSession(t *testing.T) {
	out := &syncBuffer{}
	c := newLocalConsole(out)

	// Given: X takes the top row while O plays the middle row
	script := "1\n4\n2\n5\n3\n6\nquit\n"

	// When: the script is played
	err := c.Run(context.Background(), strings.NewReader(script))

	// Then: X wins and the extra move is ignored
	require.NoError(t, err)
	assert.Contains(t, out.String(), "X wins")
	assert.Contains(t, out.String(), "move ignored")
}

func TestConsole_BotSession(t *testing.T) {
	out := &syncBuffer{}
	c := newLocalConsole(out)

	ctx := context.Background()

	_, err := c.Execute(ctx, "difficulty hard")
	require.NoError(t, err)
	_, err = c.Execute(ctx, "mode bot")
	require.NoError(t, err)

	// When: the human opens in the corner
	_, err = c.Execute(ctx, "1")
	require.NoError(t, err)

	// Then: the bot answers in the center
	assert.Contains(t, out.String(), " X | 2 | 3 \n---+---+---\n 4 | O | 6 ")

	// When: the human switches to O
	_, err = c.Execute(ctx, "symbol o")
	require.NoError(t, err)

	// Then: the bot opens
	assert.Contains(t, out.String(), "you play O")
}

func TestConsole_Commands(t *testing.T) {
	ctx := context.Background()

	t.Run("Unknown command", func(t *testing.T) {
		c := newLocalConsole(&syncBuffer{})

		_, err := c.Execute(ctx, "castle")

		require.ErrorIs(t, err, errUnknownCommand)
	})

	t.Run("Bad difficulty", func(t *testing.T) {
		c := newLocalConsole(&syncBuffer{})

		_, err := c.Execute(ctx, "difficulty nightmare")

		require.Error(t, err)
	})

	t.Run("Quit", func(t *testing.T) {
		c := newLocalConsole(&syncBuffer{})

		quit, err := c.Execute(ctx, "quit")

		require.NoError(t, err)
		assert.True(t, quit)
	})

	t.Run("Blank line", func(t *testing.T) {
		c := newLocalConsole(&syncBuffer{})

		quit, err := c.Execute(ctx, "   ")

		require.NoError(t, err)
		assert.False(t, quit)
	})

	t.Run("Create without a remote", func(t *testing.T) {
		c := newLocalConsole(&syncBuffer{})

		_, err := c.Execute(ctx, "create")

		require.Error(t, err)
	})

	t.Run("Help", func(t *testing.T) {
		out := &syncBuffer{}
		c := newLocalConsole(out)

		_, err := c.Execute(ctx, "help")

		require.NoError(t, err)
		assert.Contains(t, out.String(), "join <id|link>")
	})
}

// leftRemote is a remote handle that holds no game, as after leave.
type leftRemote struct {
	remoteGame
}

func (that leftRemote) State() (*entity.Game, entity.Mark, bool) {
	return nil, entity.EmptyCell, false
}

func TestConsole_OnRemoteUpdateAfterLeave(t *testing.T) {
	out := &syncBuffer{}
	c := newLocalConsole(out)
	c.SetRemote(leftRemote{})

	// When: a poll result lands after the game was left
	c.OnRemoteUpdate(entity.NewGame("g1", "alice"))

	// Then: nothing is drawn
	assert.Empty(t, out.String())
}

func TestConsole_RemoteSession(t *testing.T) {
	ctx := context.Background()
	manager := usecase.NewGameManager(testLogger(), repository.NewMemoryGameRepository())

	newRemoteConsole := func(identity string) (*Console, *syncBuffer, *usecase.RemoteGame) {
		out := &syncBuffer{}
		c := newLocalConsole(out)
		remote := usecase.NewRemoteGame(testLogger(), manager, identity, 5*time.Millisecond,
			usecase.WithOnUpdate(c.OnRemoteUpdate))
		c.SetRemote(remote)
		t.Cleanup(remote.Leave)

		return c, out, remote
	}

	host, hostOut, hostRemote := newRemoteConsole("alice")
	guest, guestOut, _ := newRemoteConsole("bob")

	// Given: alice creates and bob joins through the link
	_, err := host.Execute(ctx, "create")
	require.NoError(t, err)
	assert.Contains(t, hostOut.String(), "waiting for an opponent")

	game, _, ok := hostRemote.State()
	require.True(t, ok)

	_, err = guest.Execute(ctx, "join http://localhost:9090/join?game="+game.ID)
	require.NoError(t, err)
	assert.Contains(t, guestOut.String(), "you play O")

	// When: bob tries to move first
	_, err = guest.Execute(ctx, "5")

	// Then: it is refused
	require.Error(t, err)

	// When: alice plays the center
	_, err = host.Execute(ctx, "5")
	require.NoError(t, err)

	// Then: bob's screen is redrawn by the poller
	assert.Eventually(t, func() bool {
		return strings.Contains(guestOut.String(), " 4 | X | 6 ")
	}, time.Second, 5*time.Millisecond)

	// When: bob leaves
	_, err = guest.Execute(ctx, "leave")
	require.NoError(t, err)

	// Then: his cells go to the local game again
	_, err = guest.Execute(ctx, "1")
	require.NoError(t, err)
	assert.Contains(t, guestOut.String(), "left the remote game")

	stored, err := manager.GetGame(ctx, game.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.EmptyCell, stored.Board[0])
}
