// middleware/recovery.go
package middleware

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"assetperf/logging"
	"assetperf/utils"
)

// Recovery recovers from panics and answers 500 unless the handler had
// already started its response.
func Recovery(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			defer func() {
				if err := recover(); err != nil {
					entry := logging.FromContext(r.Context(), log).WithField("panic", err)
					// A started response cannot be replaced; the client sees it cut short.
					if rw.wroteHeader {
						entry.Error("panic recovered after response started")
						return
					}
					entry.Error("panic recovered")
					utils.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
				}
			}()

			next.ServeHTTP(rw, r)
		})
	}
}
