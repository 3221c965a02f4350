package middleware

import (
	"net/http"
	"strings"

	"github.com/JPedro1988/app-kidquest/internal/auth"
	"github.com/JPedro1988/app-kidquest/internal/model"
	"github.com/JPedro1988/app-kidquest/internal/store"
	"github.com/JPedro1988/app-kidquest/internal/token"
)

const SessionCookieName = "kidquest_session"

// RequireAuth accepts either a session cookie or a bearer token and
// populates AuthContext. API clients use Authorization: Bearer <jwt>;
// browsers use the cookie.
func RequireAuth(sessions *store.SessionStore, users *store.UserStore, verifier *token.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var userID, sessionID int64

			if bearer := bearerToken(r); bearer != "" {
				claims, err := verifier.Verify(bearer)
				if err != nil {
					unauthorized(w)
					return
				}
				userID = claims.UserID
			} else {
				cookie, err := r.Cookie(SessionCookieName)
				if err != nil || cookie.Value == "" {
					unauthorized(w)
					return
				}
				sess, err := sessions.GetByToken(cookie.Value)
				if err != nil || sess == nil {
					unauthorized(w)
					return
				}
				userID = sess.UserID
				sessionID = sess.ID
			}

			user, err := users.GetByID(userID)
			if err != nil || user == nil {
				unauthorized(w)
				return
			}

			// A parent anchors their own family; a child belongs to the
			// parent's.
			familyID := user.ID
			if user.Role == model.RoleChild && user.ParentID != nil {
				familyID = *user.ParentID
			}

			ac := auth.AuthContext{
				UserID:    user.ID,
				FamilyID:  familyID,
				Role:      user.Role,
				SessionID: sessionID,
			}

			ctx := auth.WithAuth(r.Context(), ac)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireParent gates management endpoints to the parent role.
func RequireParent(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.IsParent(r.Context()) {
			http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
}
