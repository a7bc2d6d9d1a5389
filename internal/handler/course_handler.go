package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/courseapi/internal/middleware"
	"github.com/hitoshi/courseapi/internal/model"
)

// maxRequestBodySize はリクエストボディの上限（1 MiB）。
const maxRequestBodySize = 1 << 20

// CourseServiceInterface は講座ハンドラーが必要とするサービスインターフェース。
type CourseServiceInterface interface {
	// Create は講座を作成する。
	Create(ctx context.Context, in model.CourseInput) (*model.Course, error)
	// List は全講座を挿入順に返す。
	List(ctx context.Context) ([]*model.Course, error)
	// Get は指定IDの講座を返す。
	Get(ctx context.Context, id string) (*model.Course, error)
	// Update は指定項目のみ上書きした講座を返す。
	Update(ctx context.Context, id string, patch model.CoursePatch) (*model.Course, error)
	// Delete は指定IDの講座を削除する。
	Delete(ctx context.Context, id string) error
}

// CourseHandler は講座管理のHTTPハンドラー。
type CourseHandler struct {
	service CourseServiceInterface
}

// NewCourseHandler はCourseHandlerを生成する。
func NewCourseHandler(service CourseServiceInterface) *CourseHandler {
	return &CourseHandler{service: service}
}

// deleteCourseResponse は講座削除成功時のレスポンス。
type deleteCourseResponse struct {
	Message string `json:"message"`
}

// CreateCourse は講座を作成する。
// POST /api/courses
func (h *CourseHandler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	var in model.CourseInput
	if err := decodeJSONBody(w, r, &in); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, err)
		return
	}

	c, err := h.service.Create(r.Context(), in)
	if err != nil {
		handleServiceError(w, err, http.StatusBadRequest)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, c)
}

// ListCourses は講座一覧を返す。
// GET /api/courses
func (h *CourseHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err, http.StatusInternalServerError)
		return
	}

	// 0件の場合もnullではなく空配列を返す
	if courses == nil {
		courses = []*model.Course{}
	}
	middleware.WriteJSON(w, http.StatusOK, courses)
}

// GetCourse は講座詳細を返す。
// GET /api/courses/:id
func (h *CourseHandler) GetCourse(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err, http.StatusInternalServerError)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, c)
}

// UpdateCourse は講座を部分更新する。
// PUT /api/courses/:id
func (h *CourseHandler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	var patch model.CoursePatch
	if err := decodeJSONBody(w, r, &patch); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, err)
		return
	}

	c, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		handleServiceError(w, err, http.StatusBadRequest)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, c)
}

// DeleteCourse は講座を削除する。
// DELETE /api/courses/:id
func (h *CourseHandler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err, http.StatusInternalServerError)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, deleteCourseResponse{Message: "Course deleted"})
}

// decodeJSONBody はリクエストボディをJSONとしてデコードする。
// 未知のフィールドは無視する。
func decodeJSONBody(w http.ResponseWriter, r *http.Request, v any) *model.APIError {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return model.NewInvalidRequestError("body too large")
		case errors.Is(err, io.EOF):
			return model.NewInvalidRequestError("body is empty")
		default:
			return model.NewInvalidRequestError(err.Error())
		}
	}
	return nil
}
