package handlers

import (
	"net/http"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/NicoBaldowine/pickleplay/services"
)

type CourtHandler struct {
	courtService   services.CourtService
	clock          clock.Clock
	locationMaxAge time.Duration
}

func NewCourtHandler(cs services.CourtService, clk clock.Clock, locationMaxAge time.Duration) *CourtHandler {
	return &CourtHandler{courtService: cs, clock: clk, locationMaxAge: locationMaxAge}
}

func (h *CourtHandler) ListCourts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	fix, err := fixFromQuery(q, h.clock.Now(), h.locationMaxAge)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	courts, err := h.courtService.GetCourtsByCity(r.Context(), q.Get("city"), fix)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"courts": courts}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CourtHandler) GetCourt(w http.ResponseWriter, r *http.Request) {
	courtID, err := getIDFromURL(r, "courtID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	court, err := h.courtService.GetCourt(r.Context(), courtID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"court": court}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
