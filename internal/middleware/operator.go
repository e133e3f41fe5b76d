package middleware

import (
	"net/http"
	"strings"

	"github.com/AdamBeresnev/beerpong/internal/audit"
	"github.com/alexedwards/scs/v2"
)

const operatorKey = "operator"

// LoadOperator copies the operator label from the session into the request
// context, where activity records pick it up.
func LoadOperator(sessionManager *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			operator := sessionManager.GetString(r.Context(), operatorKey)
			if operator == "" {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(audit.WithOperator(r.Context(), operator)))
		})
	}
}

// SetOperator stores the operator label in the session. An empty label clears it.
func SetOperator(sessionManager *scs.SessionManager, r *http.Request, operator string) error {
	operator = strings.TrimSpace(operator)
	if operator == "" {
		sessionManager.Remove(r.Context(), operatorKey)
		return nil
	}
	// New token on privilege change
	if err := sessionManager.RenewToken(r.Context()); err != nil {
		return err
	}
	sessionManager.Put(r.Context(), operatorKey, operator)
	return nil
}
