package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ByLCY/quire/apperr"
	"github.com/ByLCY/quire/logger"
)

// Response 统一响应结构
type Response[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
	TraceID string `json:"trace_id,omitempty"`
}

// ErrorDetail 错误详情
type ErrorDetail struct {
	ErrorCode string `json:"error_code,omitempty"`
	Details   string `json:"details,omitempty"`
}

// ErrorResponse 错误响应结构
type ErrorResponse struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Error   *ErrorDetail `json:"error,omitempty"`
	TraceID string       `json:"trace_id,omitempty"`
}

// success 返回成功响应
func success[T any](c *gin.Context, data T) {
	c.JSON(http.StatusOK, Response[T]{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
		TraceID: c.GetString("trace_id"),
	})
}

// created 返回创建成功响应 (201)
func created[T any](c *gin.Context, data T) {
	c.JSON(http.StatusCreated, Response[T]{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
		TraceID: c.GetString("trace_id"),
	})
}

// fail 将错误映射为 AppError 并写出；5xx 记录日志。
func fail(c *gin.Context, err error) {
	app := apperr.From(err)
	if app.HTTPStatus >= http.StatusInternalServerError {
		logger.Error(c.Request.Context(), "request failed", err,
			"path", c.FullPath(), "code", string(app.Code))
	}
	detail := &ErrorDetail{ErrorCode: string(app.Code), Details: app.Detail}
	if detail.Details == "" && app.Err != nil {
		detail.Details = app.Err.Error()
	}
	c.AbortWithStatusJSON(app.HTTPStatus, ErrorResponse{
		Code:    app.HTTPStatus,
		Message: app.Message,
		Error:   detail,
		TraceID: c.GetString("trace_id"),
	})
}
