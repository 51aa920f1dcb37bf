package middleware

import (
	"net/http"
	"slices"

	"github.com/RoyceAzure/lab/authkeeper/internal/api"
	"github.com/RoyceAzure/lab/authkeeper/internal/er"
	"github.com/RoyceAzure/lab/authkeeper/internal/util"
)

// RequirePermission 檢查access token內的permission快照
// permission在簽發當下決定, role調整後要等token換發才生效
func RequirePermission(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			payload := util.GetTokenPayloadFromContext(r.Context())
			if payload == nil {
				api.ErrorJSON(w, int(er.UnauthenticatedCode), er.New(er.UnauthenticatedCode, "unauthenticated"), er.ErrStrMap[er.UnauthenticatedCode])
				return
			}

			if !slices.Contains(payload.Permissions, permission) {
				api.ErrorJSON(w, int(er.UnauthorizedCode), er.New(er.UnauthorizedCode, "missing permission "+permission), er.ErrStrMap[er.UnauthorizedCode])
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
