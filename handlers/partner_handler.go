package handlers

import (
	"net/http"

	"github.com/NicoBaldowine/pickleplay/models"
	"github.com/NicoBaldowine/pickleplay/services"
)

type PartnerHandler struct {
	partnerService services.PartnerService
}

func NewPartnerHandler(ps services.PartnerService) *PartnerHandler {
	return &PartnerHandler{partnerService: ps}
}

func (h *PartnerHandler) ListPartners(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	partners, err := h.partnerService.GetPartners(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"partners": partners}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PartnerHandler) CreatePartner(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var input models.PartnerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	partner, err := h.partnerService.CreatePartner(r.Context(), userID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"partner": partner}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PartnerHandler) DeletePartner(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	partnerID, err := getIDFromURL(r, "partnerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.partnerService.DeletePartner(r.Context(), userID, partnerID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
