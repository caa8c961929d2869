package entity

// FoodSuggestion は食事ごとのおすすめ食品とその効果です。
type FoodSuggestion struct {
	Food    string `json:"food"`
	Benefit string `json:"benefit"`
}

// Meals は4つの食事区分ごとのおすすめです。
type Meals struct {
	Breakfast []FoodSuggestion `json:"breakfast"`
	Lunch     []FoodSuggestion `json:"lunch"`
	Dinner    []FoodSuggestion `json:"dinner"`
	Snacks    []FoodSuggestion `json:"snacks"`
}

// KeyNutrient は重点的に摂るべき栄養素です。
type KeyNutrient struct {
	Nutrient    string `json:"nutrient"`
	Explanation string `json:"explanation"`
}

// FoodToLimit は控えるべき食品の種類とその理由です。
type FoodToLimit struct {
	FoodType string `json:"foodType"`
	Reason   string `json:"reason"`
}

// DietPlan はAIが生成した食事プランです。リクエストごとに生成され、永続化はしません。
type DietPlan struct {
	Goal         string        `json:"goal"`
	Overview     string        `json:"overview"`
	Meals        Meals         `json:"meals"`
	KeyNutrients []KeyNutrient `json:"keyNutrients"`
	FoodsToLimit []FoodToLimit `json:"foodsToLimit"`
	GeneralTips  []string      `json:"generalTips"`
}
