// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizer は講座のテキスト項目からHTMLマークアップを取り除き、
// 保存される値をプレーンテキストに限定する。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizer はテキスト項目のサニタイズ機能のインターフェースを定義する。
type TextSanitizer interface {
	// Sanitize はすべてのHTMLタグを除去し、前後の空白を取り除いたプレーンテキストを返す。
	// script, style 要素は中身ごと除去する。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// textSanitizer はTextSanitizerの実装。
// bluemondayのStrictPolicyを保持し、スレッドセーフにサニタイズ処理を行う。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerの新しいインスタンスを生成する。
func NewTextSanitizer() TextSanitizer {
	return &textSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// maxSanitizePasses はエンティティの多重エンコードを展開する最大回数。
const maxSanitizePasses = 8

// Sanitize はすべてのHTMLタグを除去したプレーンテキストを返す。
// StrictPolicyは "&" などをエスケープするため、JSONで返す値としては元に戻す。
// 元に戻した結果にエンコードされていたタグが現れることがあるため、
// 値が変化しなくなるまで繰り返す。収束しない入力は空文字列とする。
func (s *textSanitizer) Sanitize(raw string) string {
	out := raw
	for i := 0; i < maxSanitizePasses; i++ {
		next := s.pass(out)
		if next == out {
			return out
		}
		out = next
	}
	return ""
}

func (s *textSanitizer) pass(v string) string {
	if v == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(v)))
}
