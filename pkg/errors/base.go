package errors

import (
	"net/http"

	"google.golang.org/grpc/codes"
)

// Errors shared by every service.
var (
	OK = NewBuilder(ServiceCommon, CategorySuccess, 0).
		HTTP(http.StatusOK).GRPC(codes.OK).
		Message("Success", "成功").MustBuild()

	ErrBadRequest = NewRequestError(ServiceCommon, 0).
			Message("Bad request", "请求错误").MustBuild()
	ErrInvalidParam = NewRequestError(ServiceCommon, 1).
			Message("Invalid parameter", "参数无效").MustBuild()
	ErrValidationFailed = NewRequestError(ServiceCommon, 4).
				Message("Validation failed", "验证失败").MustBuild()

	ErrNotFound = NewNotFoundError(ServiceCommon, 0).
			Message("Resource not found", "资源不存在").MustBuild()
	ErrRouteNotFound = NewNotFoundError(ServiceCommon, 4).
				Message("Route not found", "路由不存在").MustBuild()

	ErrInternal = NewBuilder(ServiceCommon, CategoryInternal, 0).
			Message("Internal server error", "服务器内部错误").MustBuild()
	// ErrPanic is answered when a handler panics.
	ErrPanic = NewBuilder(ServiceCommon, CategoryInternal, 2).
			Message("Service panic", "服务异常").MustBuild()

	ErrDatabase = NewDatabaseError(ServiceCommon, 0).
			Message("Database error", "数据库错误").MustBuild()
)
