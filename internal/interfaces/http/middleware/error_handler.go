package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/easayliu/smart-rename/internal/application/services/invoker"
	"github.com/easayliu/smart-rename/internal/infrastructure/filesystem"
	"github.com/easayliu/smart-rename/internal/infrastructure/repository"
	apperrors "github.com/easayliu/smart-rename/internal/shared/errors"
	"github.com/easayliu/smart-rename/pkg/logger"
	"github.com/easayliu/smart-rename/pkg/utils"
)

// ErrorHandlerMiddleware 统一错误处理中间件
// 捕获handler中通过 c.Error 设置的错误,转换为合适的HTTP响应
func ErrorHandlerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		serviceErr := ToServiceError(c.Errors.Last().Err)
		status := serviceErr.HTTPStatus()
		if status >= 500 {
			logger.Error("Request failed", "path", c.FullPath(), "code", serviceErr.Code, "error", serviceErr)
		}
		c.JSON(status, gin.H{
			"error":   serviceErr.Message,
			"code":    serviceErr.Code,
			"details": serviceErr.Details,
		})
	}
}

// ToServiceError 将下层错误映射为业务错误
func ToServiceError(err error) *apperrors.ServiceError {
	var serviceErr *apperrors.ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr
	}

	var pathErr *filesystem.PathValidationError
	if errors.As(err, &pathErr) {
		return apperrors.NewServiceErrorWithCause(apperrors.ErrorCodeInvalidRequest, pathErr.Error(), err)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewServiceErrorWithCause(apperrors.ErrorCodeNotFound, err.Error(), err)
	}

	var invokeErr *invoker.Error
	if errors.As(err, &invokeErr) {
		details := map[string]interface{}{
			"kind":     invokeErr.Kind,
			"attempts": invokeErr.Attempts,
			"retries":  invokeErr.Retries,
		}
		if !invokeErr.ResetAt.IsZero() {
			details["reset_at"] = invokeErr.ResetAt.Format(time.RFC3339)
		}
		code := apperrors.ErrorCodeInternalError
		switch invokeErr.Kind {
		case invoker.KindRateLimit:
			code = apperrors.ErrorCodeRateLimit
		case invoker.KindAuth:
			code = apperrors.ErrorCodeUnauthorized
		case invoker.KindNetwork:
			code = apperrors.ErrorCodeServiceUnavailable
		case invoker.KindCanceled:
			code = apperrors.ErrorCodeCanceled
		}
		return &apperrors.ServiceError{Code: code, Message: invokeErr.Error(), Details: details, Cause: err}
	}

	switch {
	case errors.Is(err, context.Canceled):
		return apperrors.NewServiceErrorWithCause(apperrors.ErrorCodeCanceled, "request canceled", err)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewServiceErrorWithCause(apperrors.ErrorCodeTimeout, "request timed out", err)
	}
	return apperrors.NewServiceErrorWithCause(apperrors.ErrorCodeInternalError, err.Error(), err)
}

// RecoverMiddleware 恢复中间件 - 捕获panic并转换为500错误
func RecoverMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Handler panicked", "path", c.FullPath(), "panic", r)
				utils.ErrorWithStatus(c, 500, 500, "Internal server error")
				c.Abort()
			}
		}()
		c.Next()
	}
}

// LoggerMiddleware 请求日志
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client_ip", c.ClientIP())
	}
}
