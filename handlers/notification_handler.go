package handlers

import (
	"net/http"

	"github.com/NicoBaldowine/pickleplay/services"
)

type NotificationHandler struct {
	notificationService services.NotificationService
}

func NewNotificationHandler(ns services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: ns}
}

func (h *NotificationHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	prefs, err := h.notificationService.GetPreferences(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"preferences": prefs}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdatePreferences takes a partial object, e.g. {"game_updates": false}.
func (h *NotificationHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var changes map[string]bool
	if err := readJSON(w, r, &changes); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	prefs, err := h.notificationService.UpdatePreferences(r.Context(), userID, changes)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"preferences": prefs}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
