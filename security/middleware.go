package security

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/Netcracker/qubership-code-review-agent/controller"
	"github.com/Netcracker/qubership-code-review-agent/exception"
	"github.com/Netcracker/qubership-code-review-agent/reqctx"
	log "github.com/sirupsen/logrus"
)

// NoSecure recovers handler panics into a 500 response. The service has no
// authentication.
func NoSecure(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Errorf("Request failed with panic: %v", err)
				log.Tracef("Stacktrace: %v", string(debug.Stack()))
				controller.RespondWithCustomError(w, &exception.CustomError{
					Status:  http.StatusInternalServerError,
					Message: http.StatusText(http.StatusInternalServerError),
					Debug:   fmt.Sprintf("%v", err),
				})
				return
			}
		}()
		next.ServeHTTP(w, r)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// LogRequests assigns a request id, echoes it in the X-Request-Id response
// header and logs every completed request.
func LogRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := reqctx.MakeRequestContext(r)
		r = r.WithContext(ctx)
		r.Header.Set(reqctx.RequestIdHeader, reqctx.GetRequestId(ctx))
		w.Header().Set(reqctx.RequestIdHeader, reqctx.GetRequestId(ctx))

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		reqctx.Logger(ctx).WithField("status", rec.status).Debugf("Request completed in %s", time.Since(start))
	})
}
