// Package dto はdietplanフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

// PlanReq は/plansエンドポイントのリクエストボディを表します。
// goalは表示ラベル・スラッグ・定数名のいずれでも受け付けます。
type PlanReq struct {
	Goal             string `json:"goal"`
	ConditionDetails string `json:"conditionDetails"`
}

// GoalRes は選択可能な目標の1件です。
type GoalRes struct {
	Label             string `json:"label"`
	Slug              string `json:"slug"`
	RequiresCondition bool   `json:"requiresCondition"`
}
