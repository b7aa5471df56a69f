package domain

import (
	"slices"
	"strings"
)

// Catalog is the full ordered item list persisted as one JSON document.
type Catalog []*Item

// SortByName orders the catalog by name ascending. Equal names keep their
// relative order.
func (c Catalog) SortByName() {
	slices.SortStableFunc(c, func(a, b *Item) int {
		return strings.Compare(a.Name, b.Name)
	})
}

func (c Catalog) IsSorted() bool {
	return slices.IsSortedFunc(c, func(a, b *Item) int {
		return strings.Compare(a.Name, b.Name)
	})
}

func (c Catalog) Find(name string) *Item {
	for _, item := range c {
		if item.Name == name {
			return item
		}
	}
	return nil
}

// MissingRecipes counts items still waiting for a recipe.
func (c Catalog) MissingRecipes() int {
	count := 0
	for _, item := range c {
		if !item.HasRecipe() {
			count++
		}
	}
	return count
}
