package er

import (
	"errors"
	"fmt"
)

type ErrorCode int32

// 錯誤代碼定義
// 4xx 對應http status code, 46x/47x 為業務自訂代碼
const (
	BadRequestCode       ErrorCode = 400
	UnauthenticatedCode  ErrorCode = 401
	UnauthorizedCode     ErrorCode = 403
	NotFoundCode         ErrorCode = 404
	InvalidOperationCode ErrorCode = 405
	RateLimitCode        ErrorCode = 429
	InvalidArgumentCode  ErrorCode = 460
	DataNotExistsCode    ErrorCode = 462
	UserNotFoundCode     ErrorCode = 470
	UserDisabledCode     ErrorCode = 471
	UserSuspendedCode    ErrorCode = 472
	InternalErrorCode    ErrorCode = 500
)

var ErrStrMap = map[ErrorCode]string{
	BadRequestCode:       "bad request",
	UnauthenticatedCode:  "unauthenticated",
	UnauthorizedCode:     "unauthorized",
	NotFoundCode:         "not found",
	InvalidOperationCode: "invalid operation",
	RateLimitCode:        "too many requests",
	InvalidArgumentCode:  "invalid argument",
	DataNotExistsCode:    "data not exists",
	UserNotFoundCode:     "user not found",
	UserDisabledCode:     "user disabled",
	UserSuspendedCode:    "user suspended",
	InternalErrorCode:    "internal error",
}

var (
	NotFoundError      = &AnaError{Code: NotFoundCode}
	DataNotExistsError = &AnaError{Code: DataNotExistsCode}
)

// AnaError 帶有業務代碼的錯誤
// handler依照Code決定http回應, Msg僅寫入log與audit, 不直接洩漏給呼叫端
type AnaError struct {
	Code ErrorCode
	Msg  string
}

func New(code ErrorCode, msg string) *AnaError {
	return &AnaError{
		Code: code,
		Msg:  msg,
	}
}

func (e *AnaError) Error() string {
	return fmt.Sprintf("[%d] %s", e.Code, e.Msg)
}

// Is 僅比較Code, 讓errors.Is可以用哨兵值判斷錯誤類別
func (e *AnaError) Is(target error) bool {
	var ana *AnaError
	if errors.As(target, &ana) {
		return e.Code == ana.Code
	}
	return false
}

// CodeOf 取出錯誤的業務代碼, 非AnaError一律視為內部錯誤
func CodeOf(err error) ErrorCode {
	var ana *AnaError
	if errors.As(err, &ana) {
		return ana.Code
	}
	return InternalErrorCode
}
