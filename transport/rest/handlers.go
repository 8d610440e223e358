package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rocketscienceinc/tictactoe/internal/apperror"
	"github.com/rocketscienceinc/tictactoe/internal/entity"
	"github.com/rocketscienceinc/tictactoe/internal/pkg"
	"github.com/rocketscienceinc/tictactoe/internal/tictactoe"
)

const (
	sessionCookie  = "user_session"
	playerIDHeader = "X-Player-ID"
	sessionMaxAge  = 30 * 24 * time.Hour
)

type Handlers interface {
	PingHandler(w http.ResponseWriter, _ *http.Request)

	CreateGame(w http.ResponseWriter, r *http.Request)
	GetGame(w http.ResponseWriter, r *http.Request)
	JoinGame(w http.ResponseWriter, r *http.Request)
	MakeTurn(w http.ResponseWriter, r *http.Request)
	JoinByLink(w http.ResponseWriter, r *http.Request)
}

type gameManager interface {
	CreateGame(ctx context.Context, identity string) (*entity.Game, error)
	JoinGame(ctx context.Context, gameID, identity string) (*entity.Game, error)
	GetGame(ctx context.Context, gameID string) (*entity.Game, error)
	MakeTurn(ctx context.Context, gameID, identity string, cell int) (*entity.Game, error)
}

type handlers struct {
	logger    *slog.Logger
	games     gameManager
	publicURL string
}

func NewHandlers(logger *slog.Logger, games gameManager, publicURL string) Handlers {
	return &handlers{
		logger:    logger.With("component", "rest"),
		games:     games,
		publicURL: publicURL,
	}
}

type gameResponse struct {
	*entity.Game
	Outcome   entity.Outcome `json:"outcome"`
	YourMark  entity.Mark    `json:"your_mark,omitempty"`
	ShareLink string         `json:"share_link,omitempty"`
}

type errorResponse struct {
	Error string        `json:"error"`
	Game  *gameResponse `json:"game,omitempty"`
}

type turnRequest struct {
	Cell *int `json:"cell"`
}

func (that *handlers) PingHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

func (that *handlers) CreateGame(w http.ResponseWriter, r *http.Request) {
	identity := that.sessionIdentity(w, r)

	game, err := that.games.CreateGame(r.Context(), identity)
	if err != nil {
		that.writeError(w, "CreateGame", err, nil, identity)
		return
	}

	response := that.toResponse(game, identity)

	link, err := pkg.ShareLink(that.publicURL, game.ID)
	if err != nil {
		that.logger.Warn("failed to build share link", "method", "CreateGame", "error", err)
	} else {
		response.ShareLink = link
	}

	writeJSON(w, http.StatusCreated, response)
}

func (that *handlers) GetGame(w http.ResponseWriter, r *http.Request) {
	identity := requestIdentity(r)

	game, err := that.games.GetGame(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, "GetGame", err, nil, identity)
		return
	}

	writeJSON(w, http.StatusOK, that.toResponse(game, identity))
}

func (that *handlers) JoinGame(w http.ResponseWriter, r *http.Request) {
	that.join(w, r, chi.URLParam(r, "id"))
}

// JoinByLink - target of the share link, the game id comes in the query.
func (that *handlers) JoinByLink(w http.ResponseWriter, r *http.Request) {
	gameID, err := pkg.ParseShareLink(r.URL.RequestURI())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	that.join(w, r, gameID)
}

func (that *handlers) MakeTurn(w http.ResponseWriter, r *http.Request) {
	identity := that.sessionIdentity(w, r)

	var payload turnRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Cell == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid payload"})
		return
	}

	game, err := that.games.MakeTurn(r.Context(), chi.URLParam(r, "id"), identity, *payload.Cell)
	if err != nil {
		that.writeError(w, "MakeTurn", err, game, identity)
		return
	}

	writeJSON(w, http.StatusOK, that.toResponse(game, identity))
}

func (that *handlers) join(w http.ResponseWriter, r *http.Request, gameID string) {
	identity := that.sessionIdentity(w, r)

	game, err := that.games.JoinGame(r.Context(), gameID, identity)
	if err != nil {
		that.writeError(w, "JoinGame", err, nil, identity)
		return
	}

	writeJSON(w, http.StatusOK, that.toResponse(game, identity))
}

func (that *handlers) toResponse(game *entity.Game, identity string) *gameResponse {
	return &gameResponse{
		Game:     game,
		Outcome:  tictactoe.Outcome(game.Board),
		YourMark: game.MarkOf(identity),
	}
}

// writeError - maps protocol errors to statuses. A game handed back with the error
// (turn races, rejected moves) is included so the client can redraw without another request.
func (that *handlers) writeError(w http.ResponseWriter, method string, err error, game *entity.Game, identity string) {
	status := errorStatus(err)

	if status == http.StatusInternalServerError {
		that.logger.Error("request failed", "method", method, "error", err)
		writeJSON(w, status, errorResponse{Error: "internal error"})
		return
	}

	that.logger.Debug("request rejected", "method", method, "status", status, "error", err)

	response := errorResponse{Error: err.Error()}
	if game != nil {
		response.Game = that.toResponse(game, identity)
	}

	writeJSON(w, status, response)
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, apperror.ErrGameNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrIllegalMove), errors.Is(err, apperror.ErrInvalidMark):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrNotAPlayer):
		return http.StatusForbidden
	case errors.Is(err, apperror.ErrNotYourTurn), errors.Is(err, apperror.ErrNotActive),
		errors.Is(err, apperror.ErrStaleState), errors.Is(err, apperror.ErrGameAlreadyExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// requestIdentity - the caller's identity without issuing a new one, empty for anonymous readers.
func requestIdentity(r *http.Request) string {
	if id := r.Header.Get(playerIDHeader); id != "" {
		return id
	}

	if cookie, err := r.Cookie(sessionCookie); err == nil {
		return cookie.Value
	}

	return ""
}

// sessionIdentity - like requestIdentity, but a first time browser gets a session cookie.
func (that *handlers) sessionIdentity(w http.ResponseWriter, r *http.Request) string {
	if id := requestIdentity(r); id != "" {
		return id
	}

	id := pkg.GenerateNewSessionID()

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		Expires:  time.Now().Add(sessionMaxAge),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return id
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
