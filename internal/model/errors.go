// Package model はドメインモデルを定義する。
package model

import (
	"fmt"
	"strings"
)

// APIError はクライアントへ返すエラーを表す。
// Code はHTTPステータスへのマッピングに使い、レスポンスには Message のみを含める。
type APIError struct {
	Code    string // エラーコード
	Message string // エラーメッセージ
	cause   error
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap は原因となったエラーを返す。
func (e *APIError) Unwrap() error {
	return e.cause
}

// 定義済みエラーコード
const (
	ErrCodeValidationFailed = "VALIDATION_FAILED"
	ErrCodeDuplicateTitle   = "DUPLICATE_TITLE"
	ErrCodeCourseNotFound   = "COURSE_NOT_FOUND"
	ErrCodeStoreUnavailable = "STORE_UNAVAILABLE"
	ErrCodeInvalidRequest   = "INVALID_REQUEST"
)

// FieldError は1フィールド分の検証エラー。
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// NewValidationFailedError は入力検証エラーを生成する。
func NewValidationFailedError(fields []FieldError) *APIError {
	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return &APIError{
		Code:    ErrCodeValidationFailed,
		Message: "Course validation failed: " + strings.Join(msgs, ", "),
	}
}

// NewDuplicateTitleError は同一タイトルの講座が既に存在する場合のエラーを生成する。
func NewDuplicateTitleError() *APIError {
	return &APIError{
		Code:    ErrCodeDuplicateTitle,
		Message: "Course already exists",
	}
}

// NewCourseNotFoundError は講座が見つからない場合のエラーを生成する。
func NewCourseNotFoundError() *APIError {
	return &APIError{
		Code:    ErrCodeCourseNotFound,
		Message: "Course not found",
	}
}

// NewStoreUnavailableError はストア操作の失敗を表すエラーを生成する。
// メッセージには原因エラーの文言をそのまま用いる。
func NewStoreUnavailableError(cause error) *APIError {
	return &APIError{
		Code:    ErrCodeStoreUnavailable,
		Message: cause.Error(),
		cause:   cause,
	}
}

// NewInvalidRequestError はリクエストボディが解析できない場合のエラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:    ErrCodeInvalidRequest,
		Message: "invalid request body: " + reason,
	}
}
