package handler

import (
	"encoding/json"
	"net/http"

	"github.com/RoyceAzure/lab/authkeeper/internal/api"
	"github.com/RoyceAzure/lab/authkeeper/internal/api/dto"
	"github.com/RoyceAzure/lab/authkeeper/internal/er"
	"github.com/RoyceAzure/lab/authkeeper/internal/model"
	"github.com/RoyceAzure/lab/authkeeper/internal/service"
	"github.com/RoyceAzure/lab/authkeeper/internal/util"
)

type AuthHandler struct {
	authService service.IAuthService
}

func NewAuthHandler(authService service.IAuthService) *AuthHandler {
	if authService == nil {
		panic("authService cannot be nil")
	}
	return &AuthHandler{
		authService: authService,
	}
}

// @Summary register
// @Description create local account with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param registerInfo body dto.RegisterDTO true "email, password and name"
// @Success 200 {object} api.Response{data=dto.LoginResponse} "success"
// @Failure 409 {object} api.ResponseError "email already registered"
// @Failure 460 {object} api.ResponseError "password too weak"
// @Failure 500 {object} api.ResponseError "Internal server error"
// @Router /auth/register [post]
func (a *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var registerDTO dto.RegisterDTO
	if err := json.NewDecoder(r.Body).Decode(&registerDTO); err != nil {
		api.ErrorJSON(w, int(er.BadRequestCode), nil, er.ErrStrMap[er.BadRequestCode])
		return
	}

	ctx := r.Context()

	result, err := a.authService.Register(ctx, &model.CreateUserModel{
		Email:    registerDTO.Email,
		Password: registerDTO.Password,
		Name:     registerDTO.Name,
	})
	if err != nil {
		if anaErr, ok := err.(*er.AnaError); ok {
			api.ErrorJSON(w, int(anaErr.Code), anaErr, er.ErrStrMap[anaErr.Code])
		} else {
			api.ErrorJSON(w, int(er.InternalErrorCode), err, er.ErrStrMap[er.InternalErrorCode])
		}
		return
	}

	api.SuccessJSON(w, dto.NewLoginResponse(result), nil)
}

// @Summary email and password login
// @Description password login, issues access/refresh token pair and creates a session
// @Tags auth
// @Accept json
// @Produce json
// @Param loginInfo body dto.LoginDTO true "email and password"
// @Success 200 {object} api.Response{data=dto.LoginResponse} "success"
// @Failure 401 {object} api.ResponseError "UnauthenticatedCode"
// @Failure 429 {object} api.ResponseError "too many failed attempts"
// @Failure 500 {object} api.ResponseError "Internal server error"
// @Router /auth/login [post]
func (a *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var loginDTO dto.LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&loginDTO); err != nil {
		api.ErrorJSON(w, int(er.BadRequestCode), nil, er.ErrStrMap[er.BadRequestCode])
		return
	}

	ctx := r.Context()

	loginRes, err := a.authService.Login(ctx, &model.LoginModel{
		Email:      loginDTO.Email,
		Password:   loginDTO.Password,
		RememberMe: loginDTO.RememberMe,
	})
	if err != nil {
		if anaErr, ok := err.(*er.AnaError); ok {
			api.ErrorJSON(w, int(anaErr.Code), anaErr, er.ErrStrMap[anaErr.Code])
		} else {
			api.ErrorJSON(w, int(er.InternalErrorCode), err, er.ErrStrMap[er.InternalErrorCode])
		}
		return
	}

	api.SuccessJSON(w, dto.NewLoginResponse(loginRes), nil)
}

// @Summary google login
// @Description use google idtoken to login, creates account on first login
// @Tags auth
// @Accept json
// @Produce json
// @Param id_token body dto.GoogleLoginDTO true "google id token"
// @Success 200 {object} api.Response{data=dto.LoginResponse} "success"
// @Failure 401 {object} api.ResponseError "UnauthenticatedCode"
// @Failure 472 {object} api.ResponseError "user suspended"
// @Failure 500 {object} api.ResponseError "Internal server error"
// @Router /auth/login/google [post]
func (a *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var loginDTO dto.GoogleLoginDTO
	if err := json.NewDecoder(r.Body).Decode(&loginDTO); err != nil {
		api.ErrorJSON(w, int(er.BadRequestCode), nil, er.ErrStrMap[er.BadRequestCode])
		return
	}

	ctx := r.Context()

	loginRes, err := a.authService.SocialLogin(ctx, loginDTO.IdToken, loginDTO.RememberMe)
	if err != nil {
		if anaErr, ok := err.(*er.AnaError); ok {
			api.ErrorJSON(w, int(anaErr.Code), anaErr, er.ErrStrMap[anaErr.Code])
		} else {
			api.ErrorJSON(w, int(er.InternalErrorCode), err, er.ErrStrMap[er.InternalErrorCode])
		}
		return
	}

	api.SuccessJSON(w, dto.NewLoginResponse(loginRes), nil)
}

// @Summary refresh token
// @Description rotate refresh token, returns a brand new token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param refreshInfo body dto.RefreshTokenDTO true "refresh token"
// @Success 200 {object} api.Response{data=dto.TokenPairResponse} "success"
// @Failure 401 {object} api.ResponseError "UnauthenticatedCode"
// @Failure 500 {object} api.ResponseError "Internal server error"
// @Router /auth/refresh-token [post]
func (a *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var refreshDTO dto.RefreshTokenDTO
	if err := json.NewDecoder(r.Body).Decode(&refreshDTO); err != nil {
		api.ErrorJSON(w, int(er.BadRequestCode), nil, er.ErrStrMap[er.BadRequestCode])
		return
	}

	ctx := r.Context()

	pair, err := a.authService.RefreshToken(ctx, refreshDTO.RefreshToken)
	if err != nil {
		if anaErr, ok := err.(*er.AnaError); ok {
			api.ErrorJSON(w, int(anaErr.Code), anaErr, er.ErrStrMap[anaErr.Code])
		} else {
			api.ErrorJSON(w, int(er.InternalErrorCode), err, er.ErrStrMap[er.InternalErrorCode])
		}
		return
	}

	api.SuccessJSON(w, dto.NewTokenPairResponse(pair), nil)
}

// @Summary logout
// @Description revoke current session and blacklist the access token, all_devices revokes every session
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param logoutInfo body dto.LogoutDTO false "all_devices flag"
// @Success 200 {object} api.Response "success"
// @Failure 401 {object} api.ResponseError "UnauthenticatedCode"
// @Failure 500 {object} api.ResponseError "Internal server error"
// @Router /auth/logout [post]
func (a *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	payload := util.GetTokenPayloadFromContext(r.Context())
	if payload == nil {
		api.ErrorJSON(w, int(er.UnauthenticatedCode), nil, er.ErrStrMap[er.UnauthenticatedCode])
		return
	}

	//body可省略, 預設只登出當前裝置
	var logoutDTO dto.LogoutDTO
	_ = json.NewDecoder(r.Body).Decode(&logoutDTO)

	ctx := r.Context()

	if err := a.authService.Logout(ctx, payload, logoutDTO.AllDevices); err != nil {
		if anaErr, ok := err.(*er.AnaError); ok {
			api.ErrorJSON(w, int(anaErr.Code), anaErr, er.ErrStrMap[anaErr.Code])
		} else {
			api.ErrorJSON(w, int(er.InternalErrorCode), err, er.ErrStrMap[er.InternalErrorCode])
		}
		return
	}

	api.SuccessJSON(w, nil, nil)
}

// @Summary current user
// @Description get the user behind the access token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} api.Response{data=dto.UserDTO} "success"
// @Failure 401 {object} api.ResponseError "UnauthenticatedCode"
// @Failure 500 {object} api.ResponseError "Internal server error"
// @Router /auth/me [get]
func (a *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := a.authService.Me(ctx)
	if err != nil {
		if anaErr, ok := err.(*er.AnaError); ok {
			api.ErrorJSON(w, int(anaErr.Code), anaErr, er.ErrStrMap[anaErr.Code])
		} else {
			api.ErrorJSON(w, int(er.InternalErrorCode), err, er.ErrStrMap[er.InternalErrorCode])
		}
		return
	}

	api.SuccessJSON(w, dto.NewUserDTO(user), nil)
}

// @Summary change password
// @Description verify current password then set a new one, revokes all other sessions
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param passwordInfo body dto.ChangePasswordDTO true "current and new password"
// @Success 200 {object} api.Response "success"
// @Failure 401 {object} api.ResponseError "wrong current password"
// @Failure 460 {object} api.ResponseError "password too weak"
// @Failure 500 {object} api.ResponseError "Internal server error"
// @Router /auth/change-password [post]
func (a *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	payload := util.GetTokenPayloadFromContext(r.Context())
	if payload == nil {
		api.ErrorJSON(w, int(er.UnauthenticatedCode), nil, er.ErrStrMap[er.UnauthenticatedCode])
		return
	}

	var passwordDTO dto.ChangePasswordDTO
	if err := json.NewDecoder(r.Body).Decode(&passwordDTO); err != nil {
		api.ErrorJSON(w, int(er.BadRequestCode), nil, er.ErrStrMap[er.BadRequestCode])
		return
	}

	ctx := r.Context()

	err := a.authService.ChangePassword(ctx, &model.ChangePasswordModel{
		UserID:           payload.UserID(),
		CurrentPassword:  passwordDTO.CurrentPassword,
		NewPassword:      passwordDTO.NewPassword,
		CurrentSessionID: payload.SessionID,
	})
	if err != nil {
		if anaErr, ok := err.(*er.AnaError); ok {
			api.ErrorJSON(w, int(anaErr.Code), anaErr, er.ErrStrMap[anaErr.Code])
		} else {
			api.ErrorJSON(w, int(er.InternalErrorCode), err, er.ErrStrMap[er.InternalErrorCode])
		}
		return
	}

	api.SuccessJSON(w, nil, nil)
}

// @Summary introspect token
// @Description gateway token introspection, always 200 with active true/false
// @Tags auth
// @Accept json
// @Produce json
// @Param tokenInfo body dto.IntrospectDTO true "token to introspect"
// @Success 200 {object} api.Response{data=dto.IntrospectionResponse} "success"
// @Router /auth/introspect [post]
func (a *AuthHandler) Introspect(w http.ResponseWriter, r *http.Request) {
	var introspectDTO dto.IntrospectDTO
	if err := json.NewDecoder(r.Body).Decode(&introspectDTO); err != nil {
		api.ErrorJSON(w, int(er.BadRequestCode), nil, er.ErrStrMap[er.BadRequestCode])
		return
	}

	ctx := r.Context()

	result, err := a.authService.Introspect(ctx, introspectDTO.Token)
	if err != nil {
		//introspect不洩漏失敗原因, 任何錯誤都回active false
		api.SuccessJSON(w, dto.IntrospectionResponse{Active: false}, nil)
		return
	}

	api.SuccessJSON(w, dto.IntrospectionResponse{
		Active: result.Active,
		Claims: result.Claims,
	}, nil)
}
