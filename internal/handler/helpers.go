package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/JPedro1988/app-kidquest/internal/account"
	"github.com/JPedro1988/app-kidquest/internal/points"
	"github.com/JPedro1988/app-kidquest/internal/reward"
	"github.com/JPedro1988/app-kidquest/internal/task"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// queryInt64 parses an optional integer query parameter, returning 0
// when absent.
func queryInt64(r *http.Request, name string) (int64, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	return strconv.ParseInt(v, 10, 64)
}

// writeServiceError maps domain sentinel errors to HTTP statuses.
// Anything unrecognized is a 500 with a generic body; the details stay
// in the server log.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, account.ErrDuplicateEmail):
		writeError(w, http.StatusConflict, "email already registered")
	case errors.Is(err, account.ErrInvalidFamilyCode):
		writeError(w, http.StatusBadRequest, "family code not recognized")
	case errors.Is(err, account.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, task.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "task is not in a state that allows this")
	case errors.Is(err, task.ErrInvalidChild):
		writeError(w, http.StatusForbidden, "child does not belong to this family")
	case errors.Is(err, task.ErrNotFound), errors.Is(err, reward.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, points.ErrInsufficientPoints):
		writeError(w, http.StatusConflict, "not enough points")
	case errors.Is(err, reward.ErrAlreadyClaimed):
		writeError(w, http.StatusConflict, "reward already claimed")
	case errors.Is(err, reward.ErrExpired):
		writeError(w, http.StatusConflict, "reward has expired")
	case errors.Is(err, reward.ErrWrongFamily):
		writeError(w, http.StatusForbidden, "reward belongs to another family")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
