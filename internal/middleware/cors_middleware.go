package middleware

import (
	"net/http"
	"strings"

	"synoptic-engine/internal/config"

	"github.com/rs/zerolog"
)

// CORSMiddleware applies the configured CORS policy. Origins are a
// comma-separated allowlist; "*" admits everything. Disallowed
// origins get no allow header and are logged.
func CORSMiddleware(cfg config.CORSConfig, log zerolog.Logger) func(http.Handler) http.Handler {
	origins := strings.Split(cfg.AllowedOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			allowed := false
			for _, o := range origins {
				if o == "*" || o == origin {
					allowed = true
					break
				}
			}

			if allowed {
				if origin != "" {
					w.Header().Set("Access-Control-Allow-Origin", origin)
				} else if cfg.AllowedOrigins == "*" {
					w.Header().Set("Access-Control-Allow-Origin", "*")
				}
			} else if origin != "" {
				log.Warn().
					Str("origin", origin).
					Str("path", r.URL.Path).
					Msg("origin not in allowlist")
			}

			w.Header().Set("Access-Control-Allow-Methods", cfg.AllowedMethods)
			w.Header().Set("Access-Control-Allow-Headers", cfg.AllowedHeaders)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Max-Age", "3600")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
