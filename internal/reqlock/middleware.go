package reqlock

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"

	"github.com/mvaldes/almacen/internal/auth"
	pkghttp "github.com/mvaldes/almacen/pkg/http"
)

// Middleware rejects a mutating request while a structurally identical one
// is still in flight. GET and HEAD bypass the guard entirely. A duplicate is
// answered with 409 and a retry hint; the guarded handler never runs. The
// lock is released on every exit path, including handler panics, so a key
// cannot stay unusable until the sweep.
func Middleware(guard *Guard, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !mutating(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			key := requestKey(r, logger)

			if !guard.Acquire(key) {
				logger.Warn("duplicate request rejected",
					slog.String("key", key),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path))
				pkghttp.WriteConflict(w, "An identical request is already in progress, please retry shortly")
				return
			}
			defer guard.Release(key)

			next.ServeHTTP(w, r)
		})
	}
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// requestKey fingerprints the request. Any failure to read the body degrades
// to an empty key, which the guard treats as un-lockable (fail-open) — the
// guard must never turn a key-extraction problem into a failed request.
func requestKey(r *http.Request, logger *slog.Logger) string {
	var body []byte
	if r.Body != nil {
		var err error
		body, err = io.ReadAll(r.Body)
		if err != nil {
			logger.Warn("could not read body for request key, allowing request",
				slog.String("path", r.URL.Path),
				slog.Any("error", err))
			return ""
		}
		r.Body = io.NopCloser(bytes.NewReader(body))
	}

	actorID := AnonymousActor
	if claims := auth.GetUserFromContext(r); claims != nil {
		actorID = claims.UserID
	}

	return Key(actorID, r.Method, r.URL.Path, body)
}
