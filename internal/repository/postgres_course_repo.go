package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/hitoshi/courseapi/internal/model"
)

// courseDocument はcourses.documentカラムに保存するJSONドキュメント。
type courseDocument struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Instructor  string `json:"instructor"`
	Duration    string `json:"duration"`
}

// PostgresCourseRepo はPostgreSQLのJSONBカラムをドキュメントストアとして使う講座リポジトリ。
type PostgresCourseRepo struct {
	db *sql.DB
}

// NewPostgresCourseRepo はPostgresCourseRepoを生成する。
func NewPostgresCourseRepo(db *sql.DB) *PostgresCourseRepo {
	return &PostgresCourseRepo{db: db}
}

// Create は講座を作成する。
func (r *PostgresCourseRepo) Create(ctx context.Context, course *model.Course) error {
	doc, err := json.Marshal(courseDocument{
		Title:       course.Title,
		Description: course.Description,
		Instructor:  course.Instructor,
		Duration:    course.Duration,
	})
	if err != nil {
		return fmt.Errorf("failed to encode course document: %w", err)
	}

	id := uuid.NewString()

	err = r.db.QueryRowContext(ctx,
		`INSERT INTO courses (id, document) VALUES ($1, $2) RETURNING created_at`,
		id, doc,
	).Scan(&course.CreatedAt)
	if err != nil {
		return storeError("failed to create course", err)
	}

	course.ID = id
	course.CreatedAt = course.CreatedAt.UTC()
	return nil
}

// List は全講座を挿入順に取得する。
func (r *PostgresCourseRepo) List(ctx context.Context) ([]*model.Course, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, document, created_at FROM courses ORDER BY seq`,
	)
	if err != nil {
		return nil, storeError("failed to list courses", err)
	}
	defer rows.Close()

	courses := make([]*model.Course, 0)
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("failed to list courses", err)
	}

	return courses, nil
}

// FindByID は指定IDの講座を取得する。見つからない場合はnilを返す。
// UUIDとして解釈できないIDは存在しないものとして扱う。
func (r *PostgresCourseRepo) FindByID(ctx context.Context, id string) (*model.Course, error) {
	if !isValidID(id) {
		return nil, nil
	}

	c, err := scanCourse(r.db.QueryRowContext(ctx,
		`SELECT id, document, created_at FROM courses WHERE id = $1`,
		id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// FindByTitle はタイトルが完全一致する講座を取得する。見つからない場合はnilを返す。
// 複数存在する場合は最も古いものを返す。
func (r *PostgresCourseRepo) FindByTitle(ctx context.Context, title string) (*model.Course, error) {
	c, err := scanCourse(r.db.QueryRowContext(ctx,
		`SELECT id, document, created_at FROM courses
		 WHERE document->>'title' = $1
		 ORDER BY seq
		 LIMIT 1`,
		title,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Update は指定IDの講座ドキュメントにパッチをマージし、更新後の講座を返す。
// 見つからない場合はnilを返す。
func (r *PostgresCourseRepo) Update(ctx context.Context, id string, patch model.CoursePatch) (*model.Course, error) {
	if !isValidID(id) {
		return nil, nil
	}

	// omitemptyによりnilのフィールドはJSONに含まれず、既存の値が残る
	doc, err := json.Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("failed to encode course patch: %w", err)
	}

	c, err := scanCourse(r.db.QueryRowContext(ctx,
		`UPDATE courses SET document = document || $2::jsonb
		 WHERE id = $1
		 RETURNING id, document, created_at`,
		id, doc,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteByID は指定IDの講座を削除する。
// 削除対象が存在しなかった場合はfalseを返す。
func (r *PostgresCourseRepo) DeleteByID(ctx context.Context, id string) (bool, error) {
	if !isValidID(id) {
		return false, nil
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return false, storeError("failed to delete course", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, storeError("failed to delete course", err)
	}
	return n > 0, nil
}

// rowScanner は*sql.Rowと*sql.Rowsの共通インターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

// scanCourse は1行分の講座を読み取る。
// 行が存在しない場合はsql.ErrNoRowsをそのまま返す。
func scanCourse(row rowScanner) (*model.Course, error) {
	var (
		c   model.Course
		raw []byte
	)
	if err := row.Scan(&c.ID, &raw, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, storeError("failed to read course", err)
	}

	var doc courseDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode course document %s: %w", c.ID, err)
	}

	c.Title = doc.Title
	c.Description = doc.Description
	c.Instructor = doc.Instructor
	c.Duration = doc.Duration
	c.CreatedAt = c.CreatedAt.UTC()
	return &c, nil
}

// isValidID はIDがハイフン区切りのUUID形式かどうかを返す。
func isValidID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

// storeError はドライバのエラーに操作名を付けてラップする。
// PostgreSQLのエラーの場合はSQLSTATEを含める。
func storeError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return fmt.Errorf("%s (SQLSTATE %s): %w", op, pqErr.Code, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
