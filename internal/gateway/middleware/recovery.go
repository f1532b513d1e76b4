package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/bitsnaps/open-creator/internal/gateway/handlers"
	"github.com/bitsnaps/open-creator/pkg/logger"
)

// Recovery converts a handler panic into a 500 envelope instead of a
// dropped connection. Panics inside sandboxed code never reach here;
// the interpreter reports those as runtime faults in the result body.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			logger.Error().
				Interface("panic", v).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")

			handlers.SendError(w, http.StatusInternalServerError,
				handlers.ErrCodeInternalError, "internal server error")
		}()

		next.ServeHTTP(w, r)
	})
}
