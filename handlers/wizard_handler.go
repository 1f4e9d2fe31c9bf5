package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/NicoBaldowine/pickleplay/wizard"
)

type WizardHandler struct {
	registry *wizard.Registry
}

func NewWizardHandler(registry *wizard.Registry) *WizardHandler {
	return &WizardHandler{registry: registry}
}

type wizardEventInput struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func (h *WizardHandler) OpenSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	id, c := h.registry.Open(userID)
	response := jsonResponse{"session_id": id, "screen": c.Screen()}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *WizardHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	c, err := h.registry.Get(chi.URLParam(r, "sessionID"), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"screen": c.Screen()}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// PostEvent applies one action, e.g. {"action":"select_type",
// "payload":{"game_type":"doubles"}}, and returns the resulting screen. A
// rejected action leaves the session unchanged.
func (h *WizardHandler) PostEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	c, err := h.registry.Get(chi.URLParam(r, "sessionID"), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	var input wizardEventInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Action == "" {
		badRequestResponse(w, r, errors.New("action is required"))
		return
	}

	if err := c.Dispatch(r.Context(), input.Action, input.Payload); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"screen": c.Screen()}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *WizardHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	if err := h.registry.Close(chi.URLParam(r, "sessionID"), userID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
