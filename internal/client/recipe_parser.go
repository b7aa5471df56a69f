package client

import (
	"strings"

	"factorio/wiki/internal/domain"

	"github.com/PuerkitoBio/goquery"
)

const (
	recipeContainerSelector = ".tabbertab"
	recipeValueSelector     = ".infobox-vrow-value"
	iconSelector            = ".factorio-icon"
	iconTextSelector        = ".factorio-icon-text"
	iconAnchorSelector      = ".factorio-icon a"
)

// ExtractIndex builds the catalog from the Items index page. Anchors missing a
// title or href are skipped, and a name seen twice keeps its first entry.
func ExtractIndex(doc *goquery.Document) domain.Catalog {
	catalog := make(domain.Catalog, 0)
	seen := make(map[string]struct{})

	doc.Find(iconAnchorSelector).Each(func(i int, link *goquery.Selection) {
		name := strings.TrimSpace(link.AttrOr("title", ""))
		href, hasHref := link.Attr("href")
		if name == "" || !hasHref || href == "" {
			return
		}
		if _, dup := seen[name]; dup {
			return
		}
		seen[name] = struct{}{}

		src, _ := link.Find("img").First().Attr("src")
		catalog = append(catalog, &domain.Item{
			Name: name,
			Ref:  href,
			Img:  domain.Image{PagePath: src},
		})
	})

	catalog.SortByName()
	return catalog
}

// ExtractRecipe returns the recipe of an item detail page. Only pages with one
// or two recipe containers have a usable recipe, and the first one wins.
func ExtractRecipe(doc *goquery.Document) (*domain.Recipe, bool) {
	tabs := doc.Find(recipeContainerSelector)
	if tabs.Length() < 1 || tabs.Length() > 2 {
		return nil, false
	}
	return ParseRecipe(tabs.First())
}

// ParseRecipe reads one recipe container. Icon parts are positional: the
// first is the crafting time, the last is the product, and everything in
// between is an ingredient.
func ParseRecipe(container *goquery.Selection) (*domain.Recipe, bool) {
	parts := container.Find(recipeValueSelector).First().Find(iconSelector)
	n := parts.Length()
	if n == 0 {
		return nil, false
	}

	recipe := &domain.Recipe{
		Time:        iconText(parts.Eq(0)),
		Ingredients: make([]domain.Ingredient, 0, max(n-2, 0)),
	}

	for i := 1; i < n-1; i++ {
		part := parts.Eq(i)
		recipe.Ingredients = append(recipe.Ingredients, domain.Ingredient{
			Count: iconText(part),
			Title: strings.TrimSpace(part.Find("a").First().AttrOr("title", "")),
		})
	}

	return recipe, true
}

// iconText reads an icon label. Surrounding whitespace from the wiki markup
// is dropped; inner text is kept verbatim.
func iconText(part *goquery.Selection) string {
	return strings.TrimSpace(part.Find(iconTextSelector).First().Text())
}
