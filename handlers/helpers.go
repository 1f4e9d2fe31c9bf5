package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/NicoBaldowine/pickleplay/apperr"
	"github.com/NicoBaldowine/pickleplay/middleware"
	"github.com/NicoBaldowine/pickleplay/wizard"
)

type jsonResponse map[string]interface{}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err)
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func errorResponse(w http.ResponseWriter, r *http.Request, status int, env jsonResponse) {
	if err := writeJSON(w, status, env, nil); err != nil {
		slog.ErrorContext(r.Context(), "failed to write error response", slog.Any("error", err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "internal server error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err))
	message := "the server encountered a problem and could not process your request"
	errorResponse(w, r, http.StatusInternalServerError, jsonResponse{"error": message})
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, jsonResponse{"error": err.Error()})
}

func unauthorizedResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusUnauthorized, jsonResponse{"error": message, "code": "unauthorized"})
}

// mapServiceErrorToHTTP turns a service error into a response by its kind.
// Internal errors are logged and hidden from the client.
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, wizard.ErrSessionNotFound):
		errorResponse(w, r, http.StatusNotFound, jsonResponse{"error": "wizard session not found", "code": "not_found"})
		return
	case errors.Is(err, wizard.ErrSessionClosed), errors.Is(err, wizard.ErrStaleSession):
		errorResponse(w, r, http.StatusGone, jsonResponse{"error": "wizard session is closed", "code": "session_closed"})
		return
	case errors.Is(err, wizard.ErrInvalidTransition),
		errors.Is(err, wizard.ErrNoPreviousStep),
		errors.Is(err, wizard.ErrFinished):
		errorResponse(w, r, http.StatusConflict, jsonResponse{"error": err.Error(), "code": "invalid_step"})
		return
	}

	var e *apperr.Error
	if !errors.As(err, &e) {
		serverErrorResponse(w, r, err)
		return
	}

	env := jsonResponse{"error": e.Message}
	var status int
	switch e.Kind {
	case apperr.KindValidation:
		status = http.StatusBadRequest
		env["code"] = "validation"
		if e.Field != "" {
			env["field"] = e.Field
		}
	case apperr.KindNotFound:
		status = http.StatusNotFound
		env["code"] = "not_found"
	case apperr.KindConflict:
		status = http.StatusConflict
		env["code"] = "conflict"
	case apperr.KindUnauthorized:
		status = http.StatusUnauthorized
		env["code"] = "unauthorized"
	case apperr.KindSessionExpired:
		status = http.StatusUnauthorized
		env["code"] = "session_expired"
	case apperr.KindForbidden:
		status = http.StatusForbidden
		env["code"] = "forbidden"
	case apperr.KindTimeout:
		status = http.StatusGatewayTimeout
		env["code"] = "timeout"
	case apperr.KindExternal:
		slog.WarnContext(r.Context(), "external dependency failed", slog.String("path", r.URL.Path), slog.Any("error", err))
		status = http.StatusBadGateway
		env["code"] = "external"
	default:
		serverErrorResponse(w, r, err)
		return
	}
	if hint := apperr.HintOf(err); hint != "" {
		env["hint"] = hint
	}
	errorResponse(w, r, status, env)
}

func getIDFromURL(r *http.Request, paramName string) (int, error) {
	idStr := chi.URLParam(r, paramName)
	if idStr == "" {
		return 0, fmt.Errorf("missing %s in URL path", paramName)
	}

	id, err := strconv.Atoi(idStr)
	if err != nil {
		return 0, fmt.Errorf("invalid %s format: %q", paramName, idStr)
	}
	if id <= 0 {
		return 0, fmt.Errorf("invalid %s value: %d", paramName, id)
	}
	return id, nil
}

// currentUserID writes a 401 and returns false when the request carries no
// authenticated user.
func currentUserID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return 0, false
	}
	return id, true
}
