package usecase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"dietguide_backend/internal/feature/dietplan/domain/entity"
)

// fencePattern は全体を囲むMarkdownのコードフェンス（```jsonタグは任意）に一致します。
var fencePattern = regexp.MustCompile("(?s)^```(?:json)?\\s*\\n?(.*?)\\n?\\s*```$")

var (
	requiredPlanFields = []string{"goal", "meals", "keyNutrients", "foodsToLimit", "generalTips"}
	requiredMealFields = []string{"breakfast", "lunch", "dinner", "snacks"}
)

// StripCodeFence は前後の空白を取り除き、コードフェンスで囲まれていれば中身を返します。
func StripCodeFence(raw string) string {
	text := strings.TrimSpace(raw)
	if m := fencePattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return text
}

// ParseDietPlan は生成サービスの生テキストを検証してDietPlanに変換します。
//
//   - JSONとして解釈できない、または型が一致しない: ErrInvalidResponseFormat
//   - 必須フィールド・食事区分が欠けている: ErrIncompleteResponse
//
// 語数の上限はプロンプト上の指示にすぎず、ここでは検証しません。
func ParseDietPlan(raw string) (*entity.DietPlan, error) {
	text := StripCodeFence(raw)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponseFormat, err)
	}

	for _, name := range requiredPlanFields {
		if !present(fields, name) {
			return nil, fmt.Errorf("%w: key fields are missing (%s)", ErrIncompleteResponse, name)
		}
	}
	var goal string
	if err := json.Unmarshal(fields["goal"], &goal); err != nil {
		return nil, fmt.Errorf("%w: goal is not a string", ErrInvalidResponseFormat)
	}
	if goal == "" {
		return nil, fmt.Errorf("%w: key fields are missing (goal)", ErrIncompleteResponse)
	}

	var meals map[string]json.RawMessage
	if err := json.Unmarshal(fields["meals"], &meals); err != nil {
		return nil, fmt.Errorf("%w: meals is not an object", ErrInvalidResponseFormat)
	}
	for _, name := range requiredMealFields {
		if !present(meals, name) {
			return nil, fmt.Errorf("%w: meal categories are missing (%s)", ErrIncompleteResponse, name)
		}
	}

	var plan entity.DietPlan
	if err := json.Unmarshal([]byte(text), &plan); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponseFormat, err)
	}
	return &plan, nil
}

// present はキーが存在し、値がnullでないことを確認します。
func present(fields map[string]json.RawMessage, name string) bool {
	v, ok := fields[name]
	return ok && !bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}
