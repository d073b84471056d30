package server

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/tutien/tutienbot/internal/logger"
)

// HeaderAPIKey is the header carrying the ops API key.
const HeaderAPIKey = "X-API-Key"

// publicPaths are reachable without a key: probes and the Prometheus
// scrape endpoint.
var publicPaths = []string{"/healthz", "/readyz", "/metrics"}

// AuthMiddleware validates the API key on every non-public route. An empty
// configured key disables the API routes entirely rather than leaving them
// open.
func AuthMiddleware(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, path := range publicPaths {
				if strings.HasPrefix(r.URL.Path, path) {
					next.ServeHTTP(w, r)
					return
				}
			}

			provided := r.Header.Get(HeaderAPIKey)
			if apiKey == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
				logger.FromContext(r.Context()).Warn("Unauthorized API request",
					"remote_addr", r.RemoteAddr,
					"path", r.URL.Path,
					"has_key", provided != "")
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
