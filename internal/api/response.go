package api

import (
	"encoding/json"
	"net/http"

	"github.com/RoyceAzure/lab/authkeeper/internal/er"
	"github.com/rs/zerolog/log"
)

// Response 成功回應封包
type Response struct {
	Data any `json:"data"`
	Meta any `json:"meta,omitempty"`
}

// ResponseError 錯誤回應封包
// code為業務代碼, message為對外安全的通用訊息
type ResponseError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// SuccessJSON 寫入成功回應
func SuccessJSON(w http.ResponseWriter, data any, meta any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(Response{
		Data: data,
		Meta: meta,
	})
}

// ErrorJSON 寫入錯誤回應
// err細節只進log, 對外只回業務代碼與通用訊息
func ErrorJSON(w http.ResponseWriter, code int, err error, msg string) {
	if err != nil {
		log.Error().Err(err).Int("code", code).Msg("request failed")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatusOf(code))
	_ = json.NewEncoder(w).Encode(ResponseError{
		Code:    code,
		Message: msg,
	})
}

// httpStatusOf 業務代碼轉http status, 46x/47x為自訂代碼需要映射
func httpStatusOf(code int) int {
	switch er.ErrorCode(code) {
	case er.InvalidArgumentCode:
		return http.StatusBadRequest
	case er.DataNotExistsCode, er.UserNotFoundCode:
		return http.StatusNotFound
	case er.UserDisabledCode, er.UserSuspendedCode:
		return http.StatusForbidden
	case er.InvalidOperationCode:
		return http.StatusConflict
	}
	if code >= 400 && code < 600 {
		return code
	}
	return http.StatusInternalServerError
}
