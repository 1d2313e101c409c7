package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"docbook/pkg/logger"
)

// Recovery turns a handler panic into a plain-text 500. http.ErrAbortHandler
// is re-raised so the server still aborts the connection.
func Recovery(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Error("Panic recovered",
					"request_id", RequestID(r.Context()),
					"panic", fmt.Sprint(rec),
					"route", r.Method+" "+r.URL.Path,
					"stack", string(debug.Stack()),
				)
				writePlain(w, http.StatusInternalServerError, "Internal server error")
			}()

			next.ServeHTTP(w, r)
		})
	}
}
