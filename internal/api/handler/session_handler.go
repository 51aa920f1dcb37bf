package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/authkeeper/internal/api"
	"github.com/RoyceAzure/lab/authkeeper/internal/api/dto"
	"github.com/RoyceAzure/lab/authkeeper/internal/er"
	"github.com/RoyceAzure/lab/authkeeper/internal/service"
	"github.com/RoyceAzure/lab/authkeeper/internal/util"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type SessionHandler struct {
	authService service.IAuthService
}

func NewSessionHandler(authService service.IAuthService) *SessionHandler {
	if authService == nil {
		panic("authService cannot be nil")
	}
	return &SessionHandler{
		authService: authService,
	}
}

// @Summary list sessions
// @Description list the caller's active sessions, newest activity first, is_current marks the calling session
// @Tags session
// @Produce json
// @Security BearerAuth
// @Success 200 {object} api.Response{data=[]dto.SessionDTO} "success"
// @Failure 401 {object} api.ResponseError "UnauthenticatedCode"
// @Failure 500 {object} api.ResponseError "Internal server error"
// @Router /sessions [get]
func (s *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	payload := util.GetTokenPayloadFromContext(r.Context())
	if payload == nil {
		api.ErrorJSON(w, int(er.UnauthenticatedCode), nil, er.ErrStrMap[er.UnauthenticatedCode])
		return
	}

	ctx := r.Context()

	sessions, err := s.authService.ListSessions(ctx, payload.UserID(), payload.SessionID)
	if err != nil {
		if anaErr, ok := err.(*er.AnaError); ok {
			api.ErrorJSON(w, int(anaErr.Code), anaErr, er.ErrStrMap[anaErr.Code])
		} else {
			api.ErrorJSON(w, int(er.InternalErrorCode), err, er.ErrStrMap[er.InternalErrorCode])
		}
		return
	}

	sessionDTOs := make([]dto.SessionDTO, 0, len(sessions))
	for i := range sessions {
		sessionDTOs = append(sessionDTOs, dto.NewSessionDTO(&sessions[i]))
	}

	api.SuccessJSON(w, sessionDTOs, nil)
}

// @Summary revoke session
// @Description revoke one of the caller's sessions by id, other users' sessions look like not found
// @Tags session
// @Produce json
// @Security BearerAuth
// @Param session_id path string true "session id"
// @Success 200 {object} api.Response "success"
// @Failure 401 {object} api.ResponseError "UnauthenticatedCode"
// @Failure 404 {object} api.ResponseError "session not found"
// @Failure 500 {object} api.ResponseError "Internal server error"
// @Router /sessions/{session_id} [delete]
func (s *SessionHandler) RevokeSession(w http.ResponseWriter, r *http.Request) {
	payload := util.GetTokenPayloadFromContext(r.Context())
	if payload == nil {
		api.ErrorJSON(w, int(er.UnauthenticatedCode), nil, er.ErrStrMap[er.UnauthenticatedCode])
		return
	}

	sessionID, err := uuid.Parse(chi.URLParam(r, "session_id"))
	if err != nil {
		api.ErrorJSON(w, int(er.InvalidArgumentCode), nil, er.ErrStrMap[er.InvalidArgumentCode])
		return
	}

	ctx := r.Context()

	if err := s.authService.RevokeSession(ctx, payload.UserID(), sessionID); err != nil {
		if anaErr, ok := err.(*er.AnaError); ok {
			api.ErrorJSON(w, int(anaErr.Code), anaErr, er.ErrStrMap[anaErr.Code])
		} else {
			api.ErrorJSON(w, int(er.InternalErrorCode), err, er.ErrStrMap[er.InternalErrorCode])
		}
		return
	}

	api.SuccessJSON(w, nil, nil)
}

// @Summary revoke other sessions
// @Description revoke every session of the caller except the current one
// @Tags session
// @Produce json
// @Security BearerAuth
// @Success 200 {object} api.Response "success"
// @Failure 401 {object} api.ResponseError "UnauthenticatedCode"
// @Failure 500 {object} api.ResponseError "Internal server error"
// @Router /sessions/others [delete]
func (s *SessionHandler) RevokeOtherSessions(w http.ResponseWriter, r *http.Request) {
	payload := util.GetTokenPayloadFromContext(r.Context())
	if payload == nil {
		api.ErrorJSON(w, int(er.UnauthenticatedCode), nil, er.ErrStrMap[er.UnauthenticatedCode])
		return
	}

	ctx := r.Context()

	if err := s.authService.RevokeOtherSessions(ctx, payload.UserID(), payload.SessionID); err != nil {
		if anaErr, ok := err.(*er.AnaError); ok {
			api.ErrorJSON(w, int(anaErr.Code), anaErr, er.ErrStrMap[anaErr.Code])
		} else {
			api.ErrorJSON(w, int(er.InternalErrorCode), err, er.ErrStrMap[er.InternalErrorCode])
		}
		return
	}

	api.SuccessJSON(w, nil, nil)
}
