package identity

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/rocketscienceinc/tictactoe/internal/pkg"
)

// DefaultStateFile - where the console keeps its generated identity, relative to XDG_STATE_HOME.
const DefaultStateFile = "tictactoe/player-id"

// Provider tells the remote protocol who is calling.
type Provider interface {
	Identity() string
}

// Static is an identity taken from configuration.
type Static string

func (that Static) Identity() string {
	return string(that)
}

// Persistent is a generated identity that survives restarts, so a player can
// reopen the console and continue a game they already sit in.
type Persistent struct {
	id   string
	path string
}

func (that *Persistent) Identity() string {
	return that.id
}

// Path - file the identity is stored in.
func (that *Persistent) Path() string {
	return that.path
}

// NewPersistent - resolves relPath under the XDG state directory and loads or creates the identity there.
func NewPersistent(relPath string) (*Persistent, error) {
	path, err := xdg.SearchStateFile(relPath)
	if err != nil {
		if path, err = xdg.StateFile(relPath); err != nil {
			return nil, fmt.Errorf("failed to resolve state file: %w", err)
		}
	}

	return LoadOrCreate(path)
}

// LoadOrCreate - reads the identity at path, writing a fresh one if the file is missing or empty.
func LoadOrCreate(path string) (*Persistent, error) {
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read identity: %w", err)
	}

	if id := strings.TrimSpace(string(data)); id != "" {
		return &Persistent{id: id, path: path}, nil
	}

	id := pkg.GenerateNewSessionID()

	if err = os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	if err = os.WriteFile(path, []byte(id+"\n"), 0o600); err != nil {
		return nil, fmt.Errorf("failed to write identity: %w", err)
	}

	return &Persistent{id: id, path: path}, nil
}

// Resolve - a configured id wins, otherwise the persisted one is used.
func Resolve(configured, relPath string) (Provider, error) {
	if configured = strings.TrimSpace(configured); configured != "" {
		return Static(configured), nil
	}

	return NewPersistent(relPath)
}
