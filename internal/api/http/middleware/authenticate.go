package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/abenov/accounts-server/internal/logger"
	"github.com/abenov/accounts-server/internal/model"
)

// Authenticate rejects requests without a valid bearer token.
type Authenticate struct {
	verifier model.TokenVerifier
	logger   *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware.
func NewAuthenticate(verifier model.TokenVerifier, logger *logger.Logger) *Authenticate {
	return &Authenticate{
		verifier: verifier,
		logger:   logger,
	}
}

// Handle verifies the Authorization header before calling the next handler.
func (a *Authenticate) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			unauthorized(w, "authorization header missing")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			unauthorized(w, "invalid authorization header format")
			return
		}

		username, err := a.verifier.Verify(parts[1])
		if err != nil {
			a.logger.Info("Authenticate middleware: token rejected",
				"path", r.URL.Path,
				"error", err.Error())
			unauthorized(w, "invalid or expired token")
			return
		}

		r.Header.Set("X-Authenticated-Username", username)
		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
