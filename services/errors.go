package services

import (
	"errors"
	"fmt"
)

// ErrKind 业务错误类别
type ErrKind int

const (
	KindNotFound ErrKind = iota + 1
	KindConflict
	KindBadRequest
	KindInternal
)

// Error 带类别的业务错误。NotFound/Conflict/BadRequest 携带面向用户的消息，
// Internal 对外只暴露笼统消息，原因挂在 Err 上供日志使用。
type Error struct {
	Kind    ErrKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound 实体不存在（或属于其他用户，两者对外不可区分）
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Conflict 唯一性冲突
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// BadRequest 参数或前置条件错误
func BadRequest(message string) *Error {
	return &Error{Kind: KindBadRequest, Message: message}
}

// Internal 意外失败，cause 只进日志
func Internal(message string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: cause}
}

// AsError 将任意错误归一为业务错误，未知错误按 Internal 处理
func AsError(err error) *Error {
	var serviceErr *Error
	if errors.As(err, &serviceErr) {
		return serviceErr
	}
	return Internal("服务器内部错误", err)
}
