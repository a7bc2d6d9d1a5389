// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/courseapi/internal/model"
)

// CourseRepository は講座データの永続化インターフェース。
type CourseRepository interface {
	// Create は講座を作成する。
	// IDと作成日時はストア側で設定し、引数のcourseに書き戻す。
	Create(ctx context.Context, course *model.Course) error

	// List は全講座を挿入順に取得する。
	List(ctx context.Context) ([]*model.Course, error)

	// FindByID は指定IDの講座を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Course, error)

	// FindByTitle はタイトルが完全一致する講座を取得する。見つからない場合はnilを返す。
	FindByTitle(ctx context.Context, title string) (*model.Course, error)

	// Update は指定IDの講座にパッチを適用し、更新後の講座を返す。
	// 見つからない場合はnilを返す。
	Update(ctx context.Context, id string, patch model.CoursePatch) (*model.Course, error)

	// DeleteByID は指定IDの講座を削除する。
	// 削除対象が存在しなかった場合はfalseを返す。
	DeleteByID(ctx context.Context, id string) (bool, error)
}
