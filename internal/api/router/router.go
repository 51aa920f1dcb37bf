package router

import (
	"fmt"
	"net/http"

	_ "github.com/RoyceAzure/lab/authkeeper/docs"
	"github.com/RoyceAzure/lab/authkeeper/internal/api/handler"
	m "github.com/RoyceAzure/lab/authkeeper/internal/api/middleware"
	"github.com/RoyceAzure/lab/authkeeper/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
)

func SetupRouter(server *handler.Server, authService service.IAuthService, logger *zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// 全局中間件

	r.Use(m.RequestIdMiddleware)
	r.Use(m.AuthPayloadMiddleware(authService))
	r.Use(middleware.RealIP)
	r.Use(m.DeviceInfoMiddleware)
	r.Use(m.LoggerMiddleware(logger))
	r.Use(m.RecoverMiddleware)

	// Swagger 文檔
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/", http.StatusMovedPermanently)
	})
	r.Get("/swagger/*", httpSwagger.Handler())

	// API 路由
	r.Route("/api/v1", func(r chi.Router) {
		//Auth相關路由
		r.Group(func(r chi.Router) {
			r.Route("/auth", func(r chi.Router) {
				r.Post("/register", server.AuthHandler.Register)
				r.Post("/login", server.AuthHandler.Login)
				r.Post("/login/google", server.AuthHandler.GoogleLogin)
				r.Post("/refresh-token", server.AuthHandler.RefreshToken)
				r.Post("/introspect", server.AuthHandler.Introspect)
				r.With(m.AuthMiddleware).Post("/logout", server.AuthHandler.Logout)
				r.With(m.AuthMiddleware).Get("/me", server.AuthHandler.Me)
				r.With(m.AuthMiddleware).Post("/change-password", server.AuthHandler.ChangePassword)
			})
		})

		//session管理路由, 需要登入與對應permission
		r.Group(func(r chi.Router) {
			r.Use(m.AuthMiddleware)
			r.Route("/sessions", func(r chi.Router) {
				r.With(m.RequirePermission("session:read")).Get("/", server.SessionHandler.ListSessions)
				r.With(m.RequirePermission("session:revoke")).Delete("/others", server.SessionHandler.RevokeOtherSessions)
				r.With(m.RequirePermission("session:revoke")).Delete("/{session_id}", server.SessionHandler.RevokeSession)
			})
		})
	})
	// 在設置完所有路由後打印路由樹
	fmt.Println(chi.Walk(r, func(method string, route string, handler http.Handler, middlewares ...func(http.Handler) http.Handler) error {
		fmt.Printf("%s %s\n", method, route)
		return nil
	}))
	return r
}
