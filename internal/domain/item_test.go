package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestImageLocalName(t *testing.T) {
	tests := []struct {
		name     string
		pagePath string
		expected string
	}{
		{name: "nested path", pagePath: "/images/foo/Bar.png", expected: "Bar.png"},
		{name: "flat path", pagePath: "/images/Wood.png", expected: "Wood.png"},
		{name: "query string", pagePath: "/images/Wood.png?2b1f3", expected: "Wood.png"},
		{name: "absolute url", pagePath: "https://wiki.example/images/Iron_plate.png", expected: "Iron_plate.png"},
		{name: "empty", pagePath: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, Image{PagePath: tt.pagePath}.LocalName())
		})
	}
}

func TestCatalogSortByName(t *testing.T) {
	catalog := Catalog{
		{Name: "Wood"},
		{Name: "Iron plate"},
		{Name: "Accumulator"},
		{Name: "Iron gear wheel"},
	}
	require.False(t, catalog.IsSorted())

	catalog.SortByName()

	require.True(t, catalog.IsSorted())
	for i := 1; i < len(catalog); i++ {
		require.LessOrEqual(t, catalog[i-1].Name, catalog[i].Name)
	}
	require.Equal(t, "Accumulator", catalog[0].Name)
	require.Equal(t, "Wood", catalog[3].Name)
}

func TestItemJSONShape(t *testing.T) {
	item := &Item{
		Name: "Iron plate",
		Ref:  "/Iron_plate",
		Img:  Image{PagePath: "/images/Iron_plate.png"},
	}

	data, err := json.Marshal(item)
	require.NoError(t, err)
	require.JSONEq(t, `{"name":"Iron plate","ref":"/Iron_plate","img":{"pagePath":"/images/Iron_plate.png"}}`, string(data))

	item.Img.LocalPath = "Iron_plate.png"
	item.Recipe = &Recipe{Time: "3.2", Ingredients: []Ingredient{{Count: "1", Title: "Iron ore"}}}
	data, err = json.Marshal(item)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"name":"Iron plate","ref":"/Iron_plate",
		"img":{"pagePath":"/images/Iron_plate.png","localPath":"Iron_plate.png"},
		"recipe":{"time":"3.2","ingredients":[{"count":"1","title":"Iron ore"}]}
	}`, string(data))
}

func TestCatalogMissingRecipes(t *testing.T) {
	catalog := Catalog{
		{Name: "A", Recipe: &Recipe{Time: "1"}},
		{Name: "B"},
		{Name: "C"},
	}
	require.Equal(t, 2, catalog.MissingRecipes())
	require.Same(t, catalog[1], catalog.Find("B"))
	require.Nil(t, catalog.Find("D"))
}
