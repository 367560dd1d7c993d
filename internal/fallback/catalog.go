package fallback

// Recipe is a static catalog entry.
type Recipe struct {
	Title        string   `json:"title"`
	Ingredients  []string `json:"ingredients"`
	Instructions string   `json:"instructions"`
}

var catalog = []Recipe{
	{
		Title:       "Simple Pasta Dish",
		Ingredients: []string{"pasta", "tomato", "garlic", "onion", "olive oil", "cheese"},
		Instructions: "1. Cook pasta according to package directions.\n" +
			"2. Sauté minced garlic and diced onion in olive oil.\n" +
			"3. Add diced tomatoes and cook for 5-7 minutes.\n" +
			"4. Mix with pasta and top with cheese.",
	},
	{
		Title:       "Basic Stir Fry",
		Ingredients: []string{"rice", "vegetables", "oil", "soy sauce", "garlic", "ginger"},
		Instructions: "1. Cook rice according to package directions.\n" +
			"2. Heat oil in a pan and add minced garlic and ginger.\n" +
			"3. Add chopped vegetables and stir-fry until tender-crisp.\n" +
			"4. Season with soy sauce and serve over rice.",
	},
	{
		Title:       "Simple Salad",
		Ingredients: []string{"lettuce", "tomato", "cucumber", "oil", "vinegar", "salt", "pepper"},
		Instructions: "1. Wash and chop lettuce, tomato, and cucumber.\n" +
			"2. Mix in a bowl.\n" +
			"3. Dress with oil, vinegar, salt and pepper to taste.",
	},
	{
		Title:       "Easy Soup",
		Ingredients: []string{"potato", "onion", "carrot", "stock", "salt", "pepper"},
		Instructions: "1. Dice potato, onion, and carrot.\n" +
			"2. Simmer in stock for 20-25 minutes until vegetables are tender.\n" +
			"3. Season with salt and pepper.",
	},
	{
		Title:       "Quick Sandwich",
		Ingredients: []string{"bread", "cheese", "ham", "lettuce", "tomato", "mayo", "mustard"},
		Instructions: "1. Spread mayo and mustard on bread slices.\n" +
			"2. Layer ham, cheese, lettuce, and tomato.\n" +
			"3. Top with second bread slice and enjoy.",
	},
}

// Catalog returns a copy of the built-in recipes in catalog order.
func Catalog() []Recipe {
	out := make([]Recipe, len(catalog))
	for i, r := range catalog {
		out[i] = r
		out[i].Ingredients = append([]string(nil), r.Ingredients...)
	}
	return out
}
