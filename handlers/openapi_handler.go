package handlers

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/NicoBaldowine/pickleplay/models"
	"github.com/NicoBaldowine/pickleplay/services"
	"github.com/NicoBaldowine/pickleplay/wizard"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	Field string `json:"field,omitempty"`
	Hint  string `json:"hint,omitempty"`
}

type authResponse struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

type userResponse struct {
	User models.User `json:"user"`
}

type courtsResponse struct {
	Courts []models.Court `json:"courts"`
}

type courtResponse struct {
	Court models.Court `json:"court"`
}

type gamesResponse struct {
	Games []models.GameWithPlayers `json:"games"`
}

type partnersResponse struct {
	Partners []models.Partner `json:"partners"`
}

type partnerResponse struct {
	Partner models.Partner `json:"partner"`
}

type preferencesResponse struct {
	Preferences models.NotificationPreferences `json:"preferences"`
}

type wizardResponse struct {
	SessionID string        `json:"session_id,omitempty"`
	Screen    wizard.Screen `json:"screen"`
}

type courtsQuery struct {
	City    string  `query:"city"`
	Lat     float64 `query:"lat"`
	Lng     float64 `query:"lng"`
	FixedAt string  `query:"fixed_at" description:"RFC 3339 time the position was captured"`
}

type gamesQuery struct {
	GameType   string  `query:"game_type" description:"comma separated: singles, doubles or all"`
	SkillLevel string  `query:"skill_level" description:"comma separated: beginner, intermediate, advanced, expert or all"`
	Time       string  `query:"time" description:"comma separated: soon, today, this_week or all"`
	Radius     float64 `query:"radius" description:"miles, 0 for no limit"`
	Lat        float64 `query:"lat"`
	Lng        float64 `query:"lng"`
	FixedAt    string  `query:"fixed_at"`
}

type courtPath struct {
	CourtID int `path:"courtID"`
}

type gamePath struct {
	GameID int `path:"gameID"`
}

type partnerPath struct {
	PartnerID int `path:"partnerID"`
}

type sessionPath struct {
	SessionID string `path:"sessionID"`
}

type wizardEventRequest struct {
	sessionPath
	wizardEventInput
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "PicklePlay API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Create pickleball games and find games and courts nearby.")

	type op struct {
		method, path, summary string
		req                   any
		resp                  any
		status                int
		errors                []int
	}
	ops := []op{
		{http.MethodGet, "/healthz", "Health check", nil, HealthResponse{}, http.StatusOK, []int{http.StatusServiceUnavailable}},
		{http.MethodPost, "/api/auth/register", "Create an account", services.RegisterInput{}, authResponse{}, http.StatusCreated, []int{http.StatusBadRequest, http.StatusConflict}},
		{http.MethodPost, "/api/auth/login", "Sign in", services.LoginInput{}, authResponse{}, http.StatusOK, []int{http.StatusUnauthorized}},
		{http.MethodGet, "/api/me", "Current profile", nil, userResponse{}, http.StatusOK, []int{http.StatusUnauthorized}},
		{http.MethodPut, "/api/me", "Update profile", services.UpdateProfileInput{}, userResponse{}, http.StatusOK, []int{http.StatusBadRequest, http.StatusUnauthorized}},
		{http.MethodPut, "/api/me/password", "Change password", services.UpdatePasswordInput{}, nil, http.StatusNoContent, []int{http.StatusBadRequest, http.StatusUnauthorized}},
		{http.MethodPost, "/api/me/avatar", "Upload avatar (multipart field \"avatar\")", nil, userResponse{}, http.StatusOK, []int{http.StatusBadRequest, http.StatusBadGateway, http.StatusGatewayTimeout}},
		{http.MethodGet, "/api/me/notification-preferences", "Notification toggles", nil, preferencesResponse{}, http.StatusOK, []int{http.StatusUnauthorized}},
		{http.MethodPatch, "/api/me/notification-preferences", "Change notification toggles", models.NotificationPreferences{}, preferencesResponse{}, http.StatusOK, []int{http.StatusBadRequest}},
		{http.MethodGet, "/api/courts", "Courts by city, nearest first", courtsQuery{}, courtsResponse{}, http.StatusOK, []int{http.StatusBadRequest}},
		{http.MethodGet, "/api/courts/{courtID}", "Court details", courtPath{}, courtResponse{}, http.StatusOK, []int{http.StatusNotFound}},
		{http.MethodGet, "/api/games/available", "Search open games", gamesQuery{}, gamesResponse{}, http.StatusOK, []int{http.StatusBadRequest, http.StatusUnauthorized}},
		{http.MethodGet, "/api/games/schedules", "My scheduled games", nil, gamesResponse{}, http.StatusOK, []int{http.StatusUnauthorized}},
		{http.MethodDelete, "/api/games/schedules/{gameID}", "Cancel one of my games", gamePath{}, nil, http.StatusNoContent, []int{http.StatusForbidden, http.StatusNotFound}},
		{http.MethodGet, "/api/partners", "Saved partners", nil, partnersResponse{}, http.StatusOK, []int{http.StatusUnauthorized}},
		{http.MethodPost, "/api/partners", "Save a partner", models.PartnerInput{}, partnerResponse{}, http.StatusCreated, []int{http.StatusBadRequest, http.StatusConflict}},
		{http.MethodDelete, "/api/partners/{partnerID}", "Remove a partner", partnerPath{}, nil, http.StatusNoContent, []int{http.StatusNotFound}},
		{http.MethodPost, "/api/wizard/sessions", "Start creating a game", nil, wizardResponse{}, http.StatusCreated, []int{http.StatusUnauthorized}},
		{http.MethodGet, "/api/wizard/sessions/{sessionID}", "Current wizard screen", sessionPath{}, wizardResponse{}, http.StatusOK, []int{http.StatusNotFound}},
		{http.MethodPost, "/api/wizard/sessions/{sessionID}/events", "Apply a wizard action", wizardEventRequest{}, wizardResponse{}, http.StatusOK, []int{http.StatusBadRequest, http.StatusConflict, http.StatusGone, http.StatusBadGateway}},
		{http.MethodDelete, "/api/wizard/sessions/{sessionID}", "Abandon the wizard", sessionPath{}, nil, http.StatusNoContent, []int{http.StatusNotFound}},
	}

	for _, o := range ops {
		oc, err := r.NewOperationContext(o.method, o.path)
		if err != nil {
			continue
		}
		oc.SetSummary(o.summary)
		if o.req != nil {
			oc.AddReqStructure(o.req)
		}
		oc.AddRespStructure(o.resp, openapi.WithHTTPStatus(o.status))
		for _, status := range o.errors {
			oc.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(status))
		}
		_ = r.AddOperation(oc)
	}

	ws, _ := r.NewOperationContext(http.MethodGet, "/ws/games")
	ws.SetSummary("Listing updates")
	ws.SetDescription("Upgrades to a WebSocket that pushes GAMES_CHANGED messages. Pass ?city= to follow one city.")
	ws.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols), openapi.WithContentType("text/plain"))
	_ = r.AddOperation(ws)

	return r.Spec
}

// OpenAPI serves the generated API description.
func OpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
