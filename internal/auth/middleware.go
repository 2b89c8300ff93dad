package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

type contextKey string

const SessionKey contextKey = "session"

// RequireTicket accepts a ticket from the ticket query parameter, which
// browsers can set on websocket upgrades, or a Bearer header. When the route
// has an {id} variable the ticket must be for that drawing.
func (s *Service) RequireTicket(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ticket := r.URL.Query().Get("ticket")
		if ticket == "" {
			parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
			if len(parts) == 2 && parts[0] == "Bearer" {
				ticket = parts[1]
			}
		}
		if ticket == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing ticket"})
			return
		}

		session, err := s.Validate(ticket)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid ticket"})
			return
		}
		if id, ok := mux.Vars(r)["id"]; ok && id != session.TemplateID {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "ticket is for another drawing"})
			return
		}

		ctx := context.WithValue(r.Context(), SessionKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func SessionFromContext(ctx context.Context) *Session {
	session, _ := ctx.Value(SessionKey).(*Session)
	return session
}
