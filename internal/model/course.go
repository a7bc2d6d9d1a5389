// Package model はドメインモデルを定義する。
package model

import "time"

// Course は講座を表す。
// ID と CreatedAt はストア側で採番・設定され、作成後は変更されない。
type Course struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Instructor  string    `json:"instructor"`
	Duration    string    `json:"duration"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CourseInput は講座作成時にクライアントから受け取る値。
// id と createdAt は受け付けない。
type CourseInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Instructor  string `json:"instructor"`
	Duration    string `json:"duration"`
}

// CoursePatch は講座の部分更新を表す。
// nil のフィールドは更新対象外。
type CoursePatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Instructor  *string `json:"instructor,omitempty"`
	Duration    *string `json:"duration,omitempty"`
}

// IsEmpty は更新対象のフィールドが1つもない場合にtrueを返す。
func (p CoursePatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Instructor == nil && p.Duration == nil
}

// Apply はパッチの値を講座に反映したコピーを返す。
func (p CoursePatch) Apply(c Course) Course {
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Instructor != nil {
		c.Instructor = *p.Instructor
	}
	if p.Duration != nil {
		c.Duration = *p.Duration
	}
	return c
}
