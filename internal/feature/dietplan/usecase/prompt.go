package usecase

import (
	"fmt"
	"strings"
)

const (
	// ResponseMIMETypeJSON はレスポンスをJSONで返すよう生成サービスに指示するMIMEタイプです。
	ResponseMIMETypeJSON = "application/json"

	// SystemInstruction は生成サービスに渡すシステム指示です。
	SystemInstruction = "You are an expert AI nutritionist. Your goal is to provide personalized, actionable, and safe diet suggestions. " +
		"Respond ONLY in valid JSON format as specified in the user's prompt. Adhere strictly to all JSON formatting rules. " +
		"CRITICALLY IMPORTANT: Ensure NO extraneous characters, symbols, or text (e.g., non-ASCII, non-punctuation) appear between JSON elements " +
		"(like after a string value's closing quote and before a comma, or after a comma and before the next key). " +
		"The JSON structure itself must be pure. Do not include any markdown formatting like ```json or ``` around the JSON output. " +
		"The entire response must be a single, well-formed JSON object."
)

// planInstructions は出力すべきセクションと件数を列挙します。
const planInstructions = `Please provide a customized diet plan. The plan should include:
1. An overview of the dietary approach for this goal (1-2 sentences).
2. Meal suggestions (Breakfast, Lunch, Dinner, and Snacks). For each meal/snack, provide 3-5 food item examples. For each food item, provide a brief (1 concise sentence, max 20 words) explanation of why it's beneficial for the goal.
3. A "KeyNutrients" section listing 3-5 important nutrients to focus on for this goal. For each nutrient, provide a brief (1 concise sentence, max 25 words) explanation.
4. A "FoodsToLimit" section listing 3-5 types of foods or ingredients to limit or avoid. For each, provide a brief (1 concise sentence, max 20 words) reason.
5. A "GeneralTips" section with 2-3 general dietary or lifestyle tips (each tip as a concise string).`

// planSchema はDietPlanの形に一致するJSONスキーマの説明です。
const planSchema = `The JSON response MUST strictly follow this schema:
{
  "goal": "string (echo the provided goal description, including condition if any)",
  "overview": "string",
  "meals": {
    "breakfast": [{ "food": "string", "benefit": "string (concise, max 20 words)" }, /* ... up to 5 items */],
    "lunch": [{ "food": "string", "benefit": "string (concise, max 20 words)" }, /* ... up to 5 items */],
    "dinner": [{ "food": "string", "benefit": "string (concise, max 20 words)" }, /* ... up to 5 items */],
    "snacks": [{ "food": "string", "benefit": "string (concise, max 20 words)" }, /* ... up to 5 items */]
  },
  "keyNutrients": [{ "nutrient": "string", "explanation": "string (concise, max 25 words)" }, /* ... up to 5 items */],
  "foodsToLimit": [{ "foodType": "string", "reason": "string (concise, max 20 words)" }, /* ... up to 5 items */],
  "generalTips": ["string (concise tip)", /* ... up to 3 tips */]
}`

// formattingRules はJSON整形ルールです。
const formattingRules = "IMPORTANT JSON FORMATTING RULES:\n" +
	"- The entire response MUST be a single, valid JSON object.\n" +
	"- Do NOT include any markdown formatting (like ```json or ```) or any other text outside the JSON structure.\n" +
	"- Ensure all strings are properly quoted (e.g., \"string value\").\n" +
	"- Ensure all object properties are correctly separated by commas.\n" +
	"- Ensure all array elements are correctly separated by commas.\n" +
	"- Do NOT insert any extraneous text or partial sentences within string values or between JSON elements. String values must be complete and self-contained.\n" +
	"- CRITICAL: NO characters, symbols, or text of ANY kind (including spaces, newlines, or any non-JSON punctuation) should exist BETWEEN valid JSON elements. " +
	"For example, after a string value's closing quote and before a comma or closing brace/bracket, OR between a comma and the next property key, " +
	"there should be ONLY the required JSON punctuation (comma, colon, quote, brace, bracket).\n" +
	"- The JSON structure (keys, braces, brackets, colons, commas) must use ONLY standard English ASCII characters. " +
	"Content within string values can be in the appropriate language but must be properly escaped if they contain special characters that conflict with JSON syntax.\n"

// BuildPrompt は目標の説明と（あれば）疾患の詳細からプロンプトを組み立てます。
// conditionDetailsが空の場合、疾患の行は含めません。
func BuildPrompt(goalDescription, conditionDetails string) string {
	var sb strings.Builder
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Based on the wellness goal: \"%s\"", goalDescription)
	if c := strings.TrimSpace(conditionDetails); c != "" {
		fmt.Fprintf(&sb, "\nSpecifically for the condition: \"%s\"", c)
	}
	sb.WriteString("\n\n")
	sb.WriteString(planInstructions)
	sb.WriteString("\n\n")
	sb.WriteString(planSchema)
	sb.WriteString("\n\n")
	sb.WriteString(formattingRules)
	return sb.String()
}
