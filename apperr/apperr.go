// Package apperr 提供面向 HTTP 边界的统一错误定义。
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ByLCY/quire/layout"
	"github.com/ByLCY/quire/reader"
)

// ErrorCode 错误码类型
type ErrorCode string

// 预定义错误码
const (
	// 通用错误 (1xxx)
	CodeUnknown       ErrorCode = "1000"
	CodeInvalidParam  ErrorCode = "1001"
	CodeNotFound      ErrorCode = "1004"
	CodeConflict      ErrorCode = "1005"
	CodeInternalError ErrorCode = "1007"

	// 资源错误 (3xxx)
	CodeBookNotFound      ErrorCode = "3001"
	CodePageNotFound      ErrorCode = "3002"
	CodeNoSession         ErrorCode = "3003"
	CodeSummaryNotFound   ErrorCode = "3004"
	CodeReadingStateEmpty ErrorCode = "3005"

	// 布局错误 (4xxx)
	CodeInvalidLayoutConfig ErrorCode = "4001"
	CodeMeasurementFailed   ErrorCode = "4002"
	CodeStaleLayout         ErrorCode = "4003"

	// 外部服务错误 (5xxx)
	CodeStorageError ErrorCode = "5001"
)

// AppError 应用错误
type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Err        error     `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail 返回附带详细信息的副本，预定义错误不会被修改。
func (e *AppError) WithDetail(detail string) *AppError {
	cp := *e
	cp.Detail = detail
	return &cp
}

// New 创建新的应用错误
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

// Wrap 包装错误
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Err:        err,
	}
}

// codeToHTTPStatus 错误码转 HTTP 状态码
func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case CodeInvalidParam, CodeInvalidLayoutConfig:
		return http.StatusBadRequest
	case CodeNotFound, CodeBookNotFound, CodePageNotFound, CodeSummaryNotFound, CodeReadingStateEmpty:
		return http.StatusNotFound
	case CodeConflict, CodeNoSession, CodeStaleLayout:
		return http.StatusConflict
	case CodeMeasurementFailed, CodeStorageError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// 预定义错误
var (
	ErrInvalidParam  = New(CodeInvalidParam, "invalid parameter")
	ErrBookNotFound  = New(CodeBookNotFound, "book not found")
	ErrPageNotFound  = New(CodePageNotFound, "page not found")
	ErrSummaryAbsent = New(CodeSummaryNotFound, "summary not found")
	ErrStateAbsent   = New(CodeReadingStateEmpty, "no reading state saved")
)

// From 将任意错误映射为 AppError；已是 AppError 的原样返回。
func From(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, layout.ErrInvalidConfig):
		return Wrap(err, CodeInvalidLayoutConfig, "invalid layout configuration")
	case errors.Is(err, layout.ErrMeasurement):
		return Wrap(err, CodeMeasurementFailed, "content measurement failed")
	case errors.Is(err, reader.ErrStaleLayout):
		return Wrap(err, CodeStaleLayout, "layout superseded by a newer request")
	case errors.Is(err, reader.ErrNoSession):
		return Wrap(err, CodeNoSession, "no book is open")
	case errors.Is(err, reader.ErrBookNotFound):
		return Wrap(err, CodeBookNotFound, "book not found")
	}
	return Wrap(err, CodeInternalError, "internal error")
}
