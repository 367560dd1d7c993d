// Package fallback is the deterministic recipe responder used when the
// language model provider is not configured or fails.
package fallback

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// EmptyInputLimit is how many catalog entries are returned when no
	// ingredients are supplied.
	EmptyInputLimit = 3

	NeedIngredientsMessage = "I need some ingredients to suggest recipes. Please add some items to your purchased list."
	NoAlternativeMessage   = "I'm sorry, I don't have any other recipes that match your ingredients well. Try adding more ingredients to your list."
	DefaultFollowupMessage = "I'm a simple fallback recipe assistant. I can suggest basic recipes based on ingredients or give general cooking advice. What would you like to know?"
)

var lower = cases.Lower(language.Und)

// Match is a catalog recipe scored against the caller's ingredients.
type Match struct {
	Recipe
	MatchedIngredients []string `json:"matched_ingredients"`
	Score              float64  `json:"score"`
}

// normalizeIngredients lower-cases and trims each name. Blank names are
// dropped; an empty string would otherwise match every recipe ingredient.
func normalizeIngredients(ingredients []string) []string {
	out := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		if n := strings.TrimSpace(lower.String(ing)); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// ingredientMatches is a bidirectional substring test. It tolerates plurals
// and adjectives ("tomatoes", "fresh garlic") but also pairs unrelated names
// sharing a substring, e.g. "ham" and "chamomile".
func ingredientMatches(available, required string) bool {
	return strings.Contains(available, required) || strings.Contains(required, available)
}

// FindMatchingRecipes ranks the catalog by the share of each recipe's
// ingredients covered by the supplied ones. Zero-score recipes are omitted
// and ties keep catalog order. With no usable ingredients the first
// EmptyInputLimit catalog entries are returned unscored.
func FindMatchingRecipes(ingredients []string) []Match {
	available := normalizeIngredients(ingredients)

	if len(available) == 0 {
		recipes := Catalog()
		if len(recipes) > EmptyInputLimit {
			recipes = recipes[:EmptyInputLimit]
		}
		out := make([]Match, len(recipes))
		for i, r := range recipes {
			out[i] = Match{Recipe: r, MatchedIngredients: []string{}}
		}
		return out
	}

	var matches []Match
	for _, recipe := range Catalog() {
		matched := []string{}
		for _, required := range recipe.Ingredients {
			for _, have := range available {
				if ingredientMatches(have, required) {
					matched = append(matched, required)
					break
				}
			}
		}
		if len(matched) == 0 {
			continue
		}
		matches = append(matches, Match{
			Recipe:             recipe,
			MatchedIngredients: matched,
			Score:              float64(len(matched)) / float64(len(recipe.Ingredients)),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}

func formatRecipe(m Match) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", m.Title)
	fmt.Fprintf(&b, "## Matched Ingredients:\n%s\n\n", strings.Join(m.MatchedIngredients, ", "))
	fmt.Fprintf(&b, "## All Ingredients Needed:\n%s\n\n", strings.Join(m.Ingredients, ", "))
	fmt.Fprintf(&b, "## Instructions:\n%s", m.Instructions)
	return b.String()
}

func trimmedNames(ingredients []string) []string {
	out := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		if t := strings.TrimSpace(ing); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// GenerateRecipeSuggestion renders the best-ranked recipe for ingredients.
func GenerateRecipeSuggestion(ingredients []string) string {
	names := trimmedNames(ingredients)
	if len(names) == 0 {
		return NeedIngredientsMessage
	}

	matches := FindMatchingRecipes(names)
	if len(matches) == 0 {
		return fmt.Sprintf("I don't have any specific recipes that match your ingredients: %s. Try adding more common ingredients to your list.",
			strings.Join(names, ", "))
	}

	return formatRecipe(matches[0]) + "\n\nWould you like me to suggest another recipe with your ingredients?"
}

type followupRule struct {
	keywords []string
	respond  func(ingredients []string) string
}

func (r followupRule) applies(query string) bool {
	for _, kw := range r.keywords {
		if strings.Contains(query, kw) {
			return true
		}
	}
	return false
}

func cannedResponse(text string) func([]string) string {
	return func([]string) string { return text }
}

func alternativeRecipe(ingredients []string) string {
	matches := FindMatchingRecipes(ingredients)
	if len(matches) < 2 {
		return NoAlternativeMessage
	}
	return formatRecipe(matches[1])
}

// Evaluated in order; the first rule whose keyword appears in the query wins.
var followupRules = []followupRule{
	{
		keywords: []string{"another", "different", "else"},
		respond:  alternativeRecipe,
	},
	{
		keywords: []string{"substitute", "replace", "instead of"},
		respond: cannedResponse("For substitutions, you can usually replace similar ingredients. " +
			"For example, you can substitute any leafy green for another, or different types of cheese or proteins."),
	},
	{
		keywords: []string{"how long", "time"},
		respond: cannedResponse("Most simple recipes take about 20-30 minutes to prepare. " +
			"Follow the specific timing instructions in the recipe for best results."),
	},
	{
		keywords: []string{"healthy", "nutrition"},
		respond: cannedResponse("To make a recipe healthier, use less oil and salt, add extra vegetables, " +
			"and choose whole-grain pasta, rice or bread where you can."),
	},
	{
		keywords: []string{"vegan", "vegetarian"},
		respond: cannedResponse("For a vegetarian version, leave out the meat and add beans, tofu or extra vegetables. " +
			"For a vegan version, also replace cheese and mayo with plant-based alternatives."),
	},
	{
		keywords: []string{"spicy", "flavor"},
		respond: cannedResponse("For more flavor, add chili flakes, fresh herbs, garlic or a squeeze of lemon. " +
			"Taste as you go and season gradually."),
	},
}

// GenerateFollowupResponse answers a follow-up question with a canned
// response chosen by keyword.
func GenerateFollowupResponse(query string, ingredients []string) string {
	q := lower.String(query)
	for _, rule := range followupRules {
		if rule.applies(q) {
			return rule.respond(ingredients)
		}
	}
	return DefaultFollowupMessage
}
