package chi

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ragate/internal/logger"
)

const bearerPrefix = "Bearer "

// exemptPaths bypass authentication so probes and scrapers need no key.
var exemptPaths = map[string]struct{}{
	"/health":             {},
	"/metrics":            {},
	"/metrics/prometheus": {},
}

// BearerAuthMiddleware validates "Authorization: Bearer <key>" against apiKeys.
// Empty keys are ignored; with no keys left the middleware is a pass-through.
func BearerAuthMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	keys := make([][]byte, 0, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			keys = append(keys, []byte(k))
		}
	}

	return func(next http.Handler) http.Handler {
		if len(keys) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			reason := checkBearer(r.Header.Get("Authorization"), keys)
			if reason != "" {
				logger.FromContext(r.Context()).Info("request rejected",
					zap.String("path", r.URL.Path),
					zap.String("reason", reason),
				)
				writeError(w, http.StatusUnauthorized, ErrorCodeUnauthorized, reason)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// checkBearer returns an empty string when the header carries a known key,
// otherwise the client-facing rejection reason.
func checkBearer(header string, keys [][]byte) string {
	if header == "" {
		return "missing authorization header"
	}
	token, ok := strings.CutPrefix(header, bearerPrefix)
	if !ok {
		return "authorization header must use Bearer scheme"
	}
	for _, k := range keys {
		if subtle.ConstantTimeCompare([]byte(token), k) == 1 {
			return ""
		}
	}
	return "invalid api key"
}
