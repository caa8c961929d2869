// Package entity はdietplanフィーチャーのドメインモデルを定義します。
package entity

import (
	"fmt"
	"strings"
)

// WellnessGoal はユーザーが選択する健康目標です。値は表示ラベルそのものです。
type WellnessGoal string

const (
	GoalBuildMuscle     WellnessGoal = "Build Muscle"
	GoalGlowingSkin     WellnessGoal = "Glowing Skin"
	GoalHealthyAging    WellnessGoal = "Healthy Aging"
	GoalManageCondition WellnessGoal = "Manage a Specific Health Condition"
)

// WellnessGoals は選択肢の表示順です。
var WellnessGoals = []WellnessGoal{
	GoalBuildMuscle,
	GoalGlowingSkin,
	GoalHealthyAging,
	GoalManageCondition,
}

var goalSlugs = map[WellnessGoal]string{
	GoalBuildMuscle:     "build-muscle",
	GoalGlowingSkin:     "glowing-skin",
	GoalHealthyAging:    "healthy-aging",
	GoalManageCondition: "manage-condition",
}

// Slug はCLIやAPIで使うケバブケースの識別子を返します。
func (g WellnessGoal) Slug() string {
	return goalSlugs[g]
}

// Valid は定義済みの目標かどうかを返します。
func (g WellnessGoal) Valid() bool {
	_, ok := goalSlugs[g]
	return ok
}

// RequiresCondition は具体的な疾患の入力が必要な目標かどうかを返します。
func (g WellnessGoal) RequiresCondition() bool {
	return g == GoalManageCondition
}

// Describe はプロンプトに渡す目標の説明文を返します。
// ManageConditionの場合は「ラベル: 疾患」の形式になり、それ以外では疾患は無視されます。
func (g WellnessGoal) Describe(conditionDetails string) string {
	if g.RequiresCondition() {
		return fmt.Sprintf("%s: %s", g, strings.TrimSpace(conditionDetails))
	}
	return string(g)
}

// ParseWellnessGoal は表示ラベル・スラッグ・定数名（BUILD_MUSCLEなど）から目標を解決します。
// 空文字の場合は空のWellnessGoalを返し、エラーにはしません（未選択として扱う）。
func ParseWellnessGoal(s string) (WellnessGoal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	norm := strings.ToLower(strings.ReplaceAll(s, "_", "-"))
	for _, g := range WellnessGoals {
		if strings.EqualFold(s, string(g)) || norm == g.Slug() {
			return g, nil
		}
	}
	if norm == "manage-a-specific-health-condition" {
		return GoalManageCondition, nil
	}
	return "", fmt.Errorf("unknown wellness goal %q", s)
}
