package handlers

import (
	"net/http"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/NicoBaldowine/pickleplay/services"
)

type GameHandler struct {
	gameService    services.GameService
	clock          clock.Clock
	locationMaxAge time.Duration
}

func NewGameHandler(gs services.GameService, clk clock.Clock, locationMaxAge time.Duration) *GameHandler {
	return &GameHandler{gameService: gs, clock: clk, locationMaxAge: locationMaxAge}
}

// ListAvailable returns open games by other players that pass the filter
// query parameters, earliest first.
func (h *GameHandler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filters, err := filtersFromQuery(q)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	fix, err := fixFromQuery(q, h.clock.Now(), h.locationMaxAge)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	games, err := h.gameService.SearchGames(r.Context(), userID, filters, fix)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"games": games}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *GameHandler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	games, err := h.gameService.GetUserSchedules(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"games": games}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *GameHandler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	gameID, err := getIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.gameService.DeleteSchedule(r.Context(), userID, gameID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
