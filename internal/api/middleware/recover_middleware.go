package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/RoyceAzure/lab/authkeeper/internal/api"
	"github.com/RoyceAzure/lab/authkeeper/internal/er"
	"github.com/rs/zerolog/log"
)

// RecoverMiddleware 攔截handler panic, 記錄stack後回標準500 envelope
func RecoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error().
					Str("request_id", getRequestID(r)).
					Str("path", r.URL.Path).
					Interface("panic", rec).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")

				api.ErrorJSON(w, int(er.InternalErrorCode), nil, er.ErrStrMap[er.InternalErrorCode])
			}
		}()

		next.ServeHTTP(w, r)
	})
}
