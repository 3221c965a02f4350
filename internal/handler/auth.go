package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/JPedro1988/app-kidquest/internal/account"
	"github.com/JPedro1988/app-kidquest/internal/auth"
	"github.com/JPedro1988/app-kidquest/internal/email"
	"github.com/JPedro1988/app-kidquest/internal/middleware"
	"github.com/JPedro1988/app-kidquest/internal/model"
	"github.com/JPedro1988/app-kidquest/internal/store"
	"github.com/JPedro1988/app-kidquest/internal/token"
)

const minPasswordLength = 8

type AuthHandler struct {
	accounts *account.Service
	sessions *store.SessionStore
	users    *store.UserStore
	verifier *token.Verifier
	invites  *email.Service
	secure   bool
	logger   *slog.Logger
}

func NewAuthHandler(as *account.Service, ss *store.SessionStore, us *store.UserStore, verifier *token.Verifier, invites *email.Service, secureCookies bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		accounts: as,
		sessions: ss,
		users:    us,
		verifier: verifier,
		invites:  invites,
		secure:   secureCookies,
		logger:   logger.With("component", "auth"),
	}
}

type registerRequest struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	FamilyCode string `json:"family_code"`
	Age        *int   `json:"age"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(req.Email)); err != nil {
		writeError(w, http.StatusBadRequest, "valid email is required")
		return
	}
	if len(req.Password) < minPasswordLength {
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	var (
		user *model.User
		err  error
	)
	switch req.Role {
	case model.RoleChild:
		if req.FamilyCode == "" {
			writeError(w, http.StatusBadRequest, "family code is required for child accounts")
			return
		}
		user, err = h.accounts.RegisterChild(req.Email, req.Name, req.Password, req.FamilyCode, req.Age)
	case model.RoleParent, "":
		user, err = h.accounts.RegisterParent(req.Email, req.Name, req.Password)
	default:
		writeError(w, http.StatusBadRequest, "role must be parent or child")
		return
	}
	if err != nil {
		h.logger.Warn("registration failed", "email", req.Email, "error", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	user, err := h.accounts.Authenticate(req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	sess, err := h.sessions.Create(user.ID)
	if err != nil {
		h.logger.Error("create session", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	bearer, err := h.verifier.Issue(user.ID, user.Role)
	if err != nil {
		h.logger.Error("issue token", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, loginResponse{User: user, Token: bearer})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())
	if ac.SessionID != 0 {
		if err := h.sessions.Delete(ac.SessionID); err != nil {
			h.logger.Error("delete session", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// Invite mails the caller's family code to a child's address.
func (h *AuthHandler) Invite(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(req.Email)); err != nil {
		writeError(w, http.StatusBadRequest, "valid email is required")
		return
	}

	parent, err := h.users.GetByID(auth.UserID(r.Context()))
	if err != nil || parent == nil || parent.FamilyCode == "" {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := h.invites.SendFamilyInvite(ctx, req.Email, parent.Name, parent.FamilyCode); err != nil {
		h.logger.Error("send invite", "error", err)
		writeError(w, http.StatusBadGateway, "could not send invite email")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "invite sent"})
}
