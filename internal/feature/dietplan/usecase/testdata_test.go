package usecase_test

// validPlanJSON is a complete plan document as the generation service would return it.
const validPlanJSON = `{
  "goal": "Build Muscle",
  "overview": "Prioritize protein at every meal and fuel training with complex carbohydrates.",
  "meals": {
    "breakfast": [{"food": "Greek yogurt with oats", "benefit": "Casein and carbs support overnight recovery."}],
    "lunch": [{"food": "Grilled chicken quinoa bowl", "benefit": "Lean protein with complete amino acids."}],
    "dinner": [{"food": "Salmon with sweet potato", "benefit": "Omega-3s reduce inflammation after training."}],
    "snacks": [{"food": "Cottage cheese", "benefit": "Slow-digesting protein between meals."}]
  },
  "keyNutrients": [{"nutrient": "Protein", "explanation": "Provides amino acids for muscle protein synthesis."}],
  "foodsToLimit": [{"foodType": "Sugary drinks", "reason": "Empty calories without recovery nutrients."}],
  "generalTips": ["Spread protein across four meals.", "Sleep at least seven hours."]
}`
