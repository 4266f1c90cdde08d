package reqctx

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const RequestIdHeader = "X-Request-Id"

type ctxKey string

const requestCtxKey ctxKey = "reqCtx"

type requestContextImpl struct {
	requestId string
	method    string
	path      string
	remote    string
}

// MakeRequestContext attaches request metadata to the request context. An
// incoming X-Request-Id is kept, otherwise a new one is generated.
func MakeRequestContext(r *http.Request) context.Context {
	requestId := r.Header.Get(RequestIdHeader)
	if requestId == "" {
		requestId = uuid.New().String()
	}
	return context.WithValue(r.Context(), requestCtxKey, requestContextImpl{
		requestId: requestId,
		method:    r.Method,
		path:      r.URL.Path,
		remote:    r.RemoteAddr,
	})
}

func GetRequestId(ctx context.Context) string {
	val, ok := ctx.Value(requestCtxKey).(requestContextImpl)
	if !ok {
		return ""
	}
	return val.requestId
}

// Logger returns a log entry carrying the request fields, or the standard
// logger entry when ctx has no request attached.
func Logger(ctx context.Context) *log.Entry {
	val, ok := ctx.Value(requestCtxKey).(requestContextImpl)
	if !ok {
		return log.NewEntry(log.StandardLogger())
	}
	return log.WithFields(log.Fields{
		"requestId": val.requestId,
		"method":    val.method,
		"path":      val.path,
		"remote":    val.remote,
	})
}
