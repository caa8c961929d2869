// Package render はDietPlanを端末表示用のMarkdownに変換します。
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"dietguide_backend/internal/feature/dietplan/domain/entity"
)

// Markdown はプランをMarkdown文書に変換します。空のセクションは省略します。
func Markdown(plan *entity.DietPlan) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Your Diet Plan: %s\n\n", plan.Goal)
	if plan.Overview != "" {
		sb.WriteString(plan.Overview)
		sb.WriteString("\n\n")
	}

	meals := []struct {
		title string
		items []entity.FoodSuggestion
	}{
		{"Breakfast", plan.Meals.Breakfast},
		{"Lunch", plan.Meals.Lunch},
		{"Dinner", plan.Meals.Dinner},
		{"Snacks", plan.Meals.Snacks},
	}
	sb.WriteString("## Meal Suggestions\n\n")
	for _, m := range meals {
		if len(m.items) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "### %s\n\n", m.title)
		for _, f := range m.items {
			fmt.Fprintf(&sb, "- **%s**: %s\n", f.Food, f.Benefit)
		}
		sb.WriteString("\n")
	}

	if len(plan.KeyNutrients) > 0 {
		sb.WriteString("## Key Nutrients\n\n")
		for _, n := range plan.KeyNutrients {
			fmt.Fprintf(&sb, "- **%s**: %s\n", n.Nutrient, n.Explanation)
		}
		sb.WriteString("\n")
	}

	if len(plan.FoodsToLimit) > 0 {
		sb.WriteString("## Foods to Limit\n\n")
		for _, f := range plan.FoodsToLimit {
			fmt.Fprintf(&sb, "- **%s**: %s\n", f.FoodType, f.Reason)
		}
		sb.WriteString("\n")
	}

	if len(plan.GeneralTips) > 0 {
		sb.WriteString("## General Tips\n\n")
		for _, tip := range plan.GeneralTips {
			fmt.Fprintf(&sb, "- %s\n", tip)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("---\n\n*This plan is for general information only and is not medical advice.*\n")
	return sb.String()
}

// Terminal はglamourで整形したプランを返します。整形に失敗した場合はMarkdownをそのまま返します。
func Terminal(plan *entity.DietPlan, width int) string {
	md := Markdown(plan)
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}
