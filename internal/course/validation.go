package course

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/hitoshi/courseapi/internal/model"
)

// validate はスレッドセーフなため、パッケージ全体で共有する。
var validate = validator.New(validator.WithRequiredStructEnabled())

// fieldRule は1フィールド分の検証ルール。
type fieldRule struct {
	name string
	tag  string
}

var (
	titleRule       = fieldRule{name: "title", tag: "required,max=200"}
	descriptionRule = fieldRule{name: "description", tag: "required,max=5000"}
	instructorRule  = fieldRule{name: "instructor", tag: "required,max=200"}
	durationRule    = fieldRule{name: "duration", tag: "required,max=100"}
)

// ValidationResult は入力検証の結果。
type ValidationResult struct {
	Errors []model.FieldError
}

// Valid は検証エラーがない場合にtrueを返す。
func (r ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// Err は検証エラーがあればValidationFailedのAPIErrorを返す。なければnil。
func (r ValidationResult) Err() error {
	if r.Valid() {
		return nil
	}
	return model.NewValidationFailedError(r.Errors)
}

func (r *ValidationResult) check(rule fieldRule, value string) {
	err := validate.Var(value, rule.tag)
	if err == nil {
		return
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		r.Errors = append(r.Errors, model.FieldError{Field: rule.name, Message: err.Error()})
		return
	}

	r.Errors = append(r.Errors, model.FieldError{
		Field:   rule.name,
		Message: describe(verrs[0]),
	})
}

// describe は検証エラーをクライアント向けの短い文言にする。
func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return fmt.Sprintf("failed on %q", fe.Tag())
	}
}

// ValidateInput は講座作成の入力を検証する。
// すべての項目が空でなく、長さの上限内であることを要求する。
func ValidateInput(in model.CourseInput) ValidationResult {
	var r ValidationResult
	r.check(titleRule, in.Title)
	r.check(descriptionRule, in.Description)
	r.check(instructorRule, in.Instructor)
	r.check(durationRule, in.Duration)
	return r
}

// ValidatePatch は部分更新の入力を検証する。
// 指定された項目のみを検証し、指定された項目は空であってはならない。
func ValidatePatch(p model.CoursePatch) ValidationResult {
	var r ValidationResult
	if p.Title != nil {
		r.check(titleRule, *p.Title)
	}
	if p.Description != nil {
		r.check(descriptionRule, *p.Description)
	}
	if p.Instructor != nil {
		r.check(instructorRule, *p.Instructor)
	}
	if p.Duration != nil {
		r.check(durationRule, *p.Duration)
	}
	return r
}
