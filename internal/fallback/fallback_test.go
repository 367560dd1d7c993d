package fallback

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func titles(matches []Match) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Title
	}
	return out
}

func TestFindMatchingRecipes_PastaScenario(t *testing.T) {
	matches := FindMatchingRecipes([]string{"pasta", "tomato", "garlic"})
	require.NotEmpty(t, matches)

	top := matches[0]
	assert.Equal(t, "Simple Pasta Dish", top.Title)
	assert.Equal(t, []string{"pasta", "tomato", "garlic"}, top.MatchedIngredients)
	assert.InDelta(t, 0.5, top.Score, 1e-9)

	assert.Equal(t, []string{"Simple Pasta Dish", "Basic Stir Fry", "Simple Salad", "Quick Sandwich"}, titles(matches))
}

func TestFindMatchingRecipes_EmptyInput(t *testing.T) {
	for _, input := range [][]string{nil, {}, {"", "   "}} {
		matches := FindMatchingRecipes(input)
		require.Len(t, matches, EmptyInputLimit)
		assert.Equal(t, []string{"Simple Pasta Dish", "Basic Stir Fry", "Simple Salad"}, titles(matches))
		for _, m := range matches {
			assert.NotNil(t, m.MatchedIngredients)
			assert.Empty(t, m.MatchedIngredients)
		}
	}
}

func TestFindMatchingRecipes_Deterministic(t *testing.T) {
	input := []string{"Onion", " SALT ", "pepper", "cheese", "tomatoes"}
	first := FindMatchingRecipes(input)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, FindMatchingRecipes(input))
	}
	for _, m := range first {
		assert.Greater(t, m.Score, 0.0)
	}
	for i := 1; i < len(first); i++ {
		assert.GreaterOrEqual(t, first[i-1].Score, first[i].Score)
	}
}

func TestFindMatchingRecipes_NormalizesAndMatchesBothDirections(t *testing.T) {
	matches := FindMatchingRecipes([]string{"  Fresh GARLIC  "})
	require.Len(t, matches, 2)
	assert.Equal(t, []string{"garlic"}, matches[0].MatchedIngredients)

	matches = FindMatchingRecipes([]string{"olive oil"})
	assert.Equal(t, []string{"Simple Pasta Dish", "Basic Stir Fry", "Simple Salad"}, titles(matches))
}

func TestFindMatchingRecipes_OverBroadSubstring(t *testing.T) {
	matches := FindMatchingRecipes([]string{"chamomile"})
	require.Len(t, matches, 1)
	assert.Equal(t, "Quick Sandwich", matches[0].Title)
	assert.Equal(t, []string{"ham"}, matches[0].MatchedIngredients)
}

func TestFindMatchingRecipes_DoesNotMutateCatalog(t *testing.T) {
	matches := FindMatchingRecipes([]string{"pasta"})
	require.NotEmpty(t, matches)
	matches[0].Ingredients[0] = "changed"
	assert.Equal(t, "pasta", Catalog()[0].Ingredients[0])
}

func TestGenerateRecipeSuggestion(t *testing.T) {
	t.Run("empty input asks for ingredients", func(t *testing.T) {
		assert.Equal(t, NeedIngredientsMessage, GenerateRecipeSuggestion(nil))
		assert.Equal(t, NeedIngredientsMessage, GenerateRecipeSuggestion([]string{" "}))
	})

	t.Run("no match lists the ingredients", func(t *testing.T) {
		got := GenerateRecipeSuggestion([]string{"chocolate", "sprinkles"})
		assert.Equal(t, "I don't have any specific recipes that match your ingredients: chocolate, sprinkles. Try adding more common ingredients to your list.", got)
	})

	t.Run("formats the best match", func(t *testing.T) {
		got := GenerateRecipeSuggestion([]string{"pasta", "tomato", "garlic"})
		assert.True(t, strings.HasPrefix(got, "# Simple Pasta Dish\n"))
		assert.Contains(t, got, "## Matched Ingredients:\npasta, tomato, garlic\n")
		assert.Contains(t, got, "## All Ingredients Needed:\npasta, tomato, garlic, onion, olive oil, cheese\n")
		assert.Contains(t, got, "## Instructions:\n1. Cook pasta")
		assert.True(t, strings.HasSuffix(got, "Would you like me to suggest another recipe with your ingredients?"))
	})
}

func TestGenerateFollowupResponse(t *testing.T) {
	ingredients := []string{"pasta", "tomato", "garlic"}

	tests := []struct {
		name     string
		query    string
		contains string
	}{
		{"another recipe returns second match", "Can you suggest ANOTHER one?", "# Basic Stir Fry"},
		{"something else", "something else please", "# Basic Stir Fry"},
		{"substitution", "What can I use instead of cheese?", "For substitutions"},
		{"time", "How long will it take?", "20-30 minutes"},
		{"healthy", "Is it healthy?", "healthier"},
		{"vegan", "make it vegan", "vegan version"},
		{"spicy", "I like spicy food", "chili flakes"},
		{"unrecognized", "tell me a joke", DefaultFollowupMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, GenerateFollowupResponse(tt.query, ingredients), tt.contains)
		})
	}
}

func TestGenerateFollowupResponse_FirstRuleWins(t *testing.T) {
	got := GenerateFollowupResponse("another healthy recipe", []string{"pasta", "tomato"})
	assert.Contains(t, got, "# ")
	assert.NotContains(t, got, "healthier")
}

func TestGenerateFollowupResponse_NoAlternative(t *testing.T) {
	assert.Equal(t, NoAlternativeMessage, GenerateFollowupResponse("a different recipe", []string{"bread"}))
}
