package view

import (
	"errors"
	"fmt"
	"strings"

	"factorio/wiki/internal/domain"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

var ErrMissingRecipe = errors.New("item has no recipe")

// RenderRecipe formats an item's recipe as the crafting time followed by one
// "title(count)" line per ingredient.
func RenderRecipe(item *domain.Item) (string, error) {
	if item == nil || item.Recipe == nil {
		name := ""
		if item != nil {
			name = item.Name
		}
		return "", fmt.Errorf("%w: %q", ErrMissingRecipe, name)
	}

	lines := make([]string, 0, len(item.Recipe.Ingredients)+1)
	lines = append(lines, item.Recipe.Time)
	for _, ingredient := range item.Recipe.Ingredients {
		lines = append(lines, fmt.Sprintf("%s(%s)", ingredient.Title, ingredient.Count))
	}
	return strings.Join(lines, "\n"), nil
}

// RenderTable lists the catalog with image and recipe status.
func RenderTable(catalog domain.Catalog) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Name", "Image", "Time", "Ingredients"})

	for _, item := range catalog {
		timeLabel, ingredients := "-", "-"
		if item.Recipe != nil {
			timeLabel = item.Recipe.Time
			ingredients = fmt.Sprint(len(item.Recipe.Ingredients))
		}
		image := item.Img.LocalPath
		if image == "" {
			image = "-"
		}
		tw.AppendRow(table.Row{item.Name, image, timeLabel, ingredients})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	tw.AppendFooter(table.Row{fmt.Sprintf("%d items", len(catalog)), "", "", fmt.Sprintf("%d missing", catalog.MissingRecipes())})

	return tw.Render()
}
