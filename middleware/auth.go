package middleware

import (
	"crypto/subtle"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"assetperf/logging"
	"assetperf/utils"
)

// BasicAuth gates every non-GET request on a single configured
// username/password pair. GET requests pass through unchecked.
type BasicAuth struct {
	username     string
	passwordHash []byte
	log          logrus.FieldLogger
}

// NewBasicAuth hashes password with the given bcrypt cost so the plain
// password is not kept in memory.
func NewBasicAuth(username, password string, cost int, log logrus.FieldLogger) (*BasicAuth, error) {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return nil, fmt.Errorf("hash auth password: %w", err)
	}
	return &BasicAuth{username: username, passwordHash: hash, log: log}, nil
}

func (a *BasicAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}

		username, password, ok := r.BasicAuth()
		if !ok || !a.valid(username, password) {
			logging.FromContext(r.Context(), a.log).
				WithField("username", username).
				Warn("rejected credentials")
			w.Header().Set("WWW-Authenticate", `Basic realm="assets"`)
			utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (a *BasicAuth) valid(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	// Always run the bcrypt check so a wrong username costs the same time.
	passOK := utils.CheckPasswordHash(password, a.passwordHash)
	return userOK && passOK
}
