// Package course は講座管理のドメインロジックを提供する。
package course

import (
	"context"
	"log/slog"

	"github.com/hitoshi/courseapi/internal/model"
	"github.com/hitoshi/courseapi/internal/repository"
	"github.com/hitoshi/courseapi/internal/security"
)

// 操作名。ログとメトリクスのラベルに使う。
const (
	OpCreate = "create"
	OpList   = "list"
	OpGet    = "get"
	OpUpdate = "update"
	OpDelete = "delete"
)

// OperationRecorder は講座操作の結果を記録するインターフェース。
// metrics.Collectorが実装する。
type OperationRecorder interface {
	RecordCourseOperation(op string, err error)
}

// Service は講座管理のサービス層。
// 入力の正規化・検証、タイトルの事前重複チェック、未検出時のエラー判定を行う。
type Service struct {
	repo      repository.CourseRepository
	sanitizer security.TextSanitizer
	recorder  OperationRecorder
}

// NewService はServiceの新しいインスタンスを生成する。
// recorderはnilでもよい。
func NewService(
	repo repository.CourseRepository,
	sanitizer security.TextSanitizer,
	recorder OperationRecorder,
) *Service {
	return &Service{
		repo:      repo,
		sanitizer: sanitizer,
		recorder:  recorder,
	}
}

// Create は講座を作成する。
// 同一タイトルの講座が既にある場合はDuplicateTitleを返す。
// この事前チェックと挿入はアトミックではないため、同時作成では重複しうる。
func (s *Service) Create(ctx context.Context, in model.CourseInput) (c *model.Course, err error) {
	defer func() { s.record(OpCreate, err) }()

	in = s.sanitizeInput(in)
	if err := ValidateInput(in).Err(); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByTitle(ctx, in.Title)
	if err != nil {
		return nil, s.storeFailure(OpCreate, err)
	}
	if existing != nil {
		return nil, model.NewDuplicateTitleError()
	}

	c = &model.Course{
		Title:       in.Title,
		Description: in.Description,
		Instructor:  in.Instructor,
		Duration:    in.Duration,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, s.storeFailure(OpCreate, err)
	}

	slog.Info("course created",
		slog.String("course_id", c.ID),
		slog.String("title", c.Title),
	)

	return c, nil
}

// List は全講座を挿入順に返す。
func (s *Service) List(ctx context.Context) (courses []*model.Course, err error) {
	defer func() { s.record(OpList, err) }()

	courses, err = s.repo.List(ctx)
	if err != nil {
		return nil, s.storeFailure(OpList, err)
	}
	return courses, nil
}

// Get は指定IDの講座を返す。存在しない場合はNotFoundを返す。
func (s *Service) Get(ctx context.Context, id string) (c *model.Course, err error) {
	defer func() { s.record(OpGet, err) }()

	c, err = s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.storeFailure(OpGet, err)
	}
	if c == nil {
		return nil, model.NewCourseNotFoundError()
	}
	return c, nil
}

// Update は指定された項目だけを上書きし、更新後の講座を返す。
// 存在しない場合はNotFoundを返す。更新項目が空の場合は現在の講座を返す。
func (s *Service) Update(ctx context.Context, id string, patch model.CoursePatch) (c *model.Course, err error) {
	defer func() { s.record(OpUpdate, err) }()

	patch = s.sanitizePatch(patch)
	if err := ValidatePatch(patch).Err(); err != nil {
		return nil, err
	}

	if patch.IsEmpty() {
		c, err = s.repo.FindByID(ctx, id)
	} else {
		c, err = s.repo.Update(ctx, id, patch)
	}
	if err != nil {
		return nil, s.storeFailure(OpUpdate, err)
	}
	if c == nil {
		return nil, model.NewCourseNotFoundError()
	}

	slog.Info("course updated", slog.String("course_id", c.ID))

	return c, nil
}

// Delete は指定IDの講座を削除する。存在しない場合はNotFoundを返す。
func (s *Service) Delete(ctx context.Context, id string) (err error) {
	defer func() { s.record(OpDelete, err) }()

	deleted, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		return s.storeFailure(OpDelete, err)
	}
	if !deleted {
		return model.NewCourseNotFoundError()
	}

	slog.Info("course deleted", slog.String("course_id", id))

	return nil
}

func (s *Service) sanitizeInput(in model.CourseInput) model.CourseInput {
	return model.CourseInput{
		Title:       s.sanitizer.Sanitize(in.Title),
		Description: s.sanitizer.Sanitize(in.Description),
		Instructor:  s.sanitizer.Sanitize(in.Instructor),
		Duration:    s.sanitizer.Sanitize(in.Duration),
	}
}

func (s *Service) sanitizePatch(p model.CoursePatch) model.CoursePatch {
	clean := func(v *string) *string {
		if v == nil {
			return nil
		}
		out := s.sanitizer.Sanitize(*v)
		return &out
	}
	return model.CoursePatch{
		Title:       clean(p.Title),
		Description: clean(p.Description),
		Instructor:  clean(p.Instructor),
		Duration:    clean(p.Duration),
	}
}

// storeFailure はストアのエラーをログに記録し、StoreUnavailableに変換する。
func (s *Service) storeFailure(op string, err error) error {
	slog.Error("course store operation failed",
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
	return model.NewStoreUnavailableError(err)
}

func (s *Service) record(op string, err error) {
	if s.recorder != nil {
		s.recorder.RecordCourseOperation(op, err)
	}
}
