package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/courseapi/internal/middleware"
	"github.com/hitoshi/courseapi/internal/model"
)

// writeAPIErrorResponse は {"error": message} 形式でエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	middleware.WriteErrorResponse(w, statusCode, apiErr.Message)
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
// storeStatus はストア障害時に返すステータスで、ルートごとに異なる。
func handleServiceError(w http.ResponseWriter, err error, storeStatus int) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr, storeStatus), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError, storeStatus int) int {
	switch apiErr.Code {
	case model.ErrCodeValidationFailed, model.ErrCodeDuplicateTitle, model.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case model.ErrCodeCourseNotFound:
		return http.StatusNotFound
	case model.ErrCodeStoreUnavailable:
		return storeStatus
	default:
		return http.StatusInternalServerError
	}
}
