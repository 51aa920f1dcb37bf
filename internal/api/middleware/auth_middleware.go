package middleware

import (
	"net/http"

	"github.com/RoyceAzure/lab/authkeeper/internal/api"
	"github.com/RoyceAzure/lab/authkeeper/internal/constants"
	"github.com/RoyceAzure/lab/authkeeper/internal/er"
	"github.com/RoyceAzure/lab/authkeeper/internal/infra/auth/token"
)

// AuthMiddleware 驗證ctx是否有token payload
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := r.Context().Value(constants.AuthorizationPayloadKey).(*token.AccessPayload)
		if !ok {
			api.ErrorJSON(w, int(er.UnauthenticatedCode), er.New(er.UnauthenticatedCode, "unauthenticated"), er.ErrStrMap[er.UnauthenticatedCode])
			return
		}
		next.ServeHTTP(w, r)
	})
}
