package handler

type Server struct {
	AuthHandler    *AuthHandler
	SessionHandler *SessionHandler
}

func NewServer(
	authHandler *AuthHandler,
	sessionHandler *SessionHandler,
) *Server {
	return &Server{
		AuthHandler:    authHandler,
		SessionHandler: sessionHandler,
	}
}
