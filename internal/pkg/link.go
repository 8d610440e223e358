package pkg

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// GameQueryParam - query parameter that carries the game id in a share link.
const GameQueryParam = "game"

var ErrNoGameInLink = errors.New("link does not reference a game")

// ShareLink - builds the link a player sends to the opponent.
func ShareLink(baseURL, gameID string) (string, error) {
	link, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse base url: %w", err)
	}

	query := link.Query()
	query.Set(GameQueryParam, gameID)
	link.RawQuery = query.Encode()

	return link.String(), nil
}

// ParseShareLink - extracts the game id from a share link. A bare id is returned as is.
func ParseShareLink(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrNoGameInLink
	}

	if !strings.ContainsAny(raw, "?/=") {
		return raw, nil
	}

	link, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("failed to parse link: %w", err)
	}

	gameID := strings.TrimSpace(link.Query().Get(GameQueryParam))
	if gameID == "" {
		return "", ErrNoGameInLink
	}

	return gameID, nil
}
