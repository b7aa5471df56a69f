package domain

import (
	"net/url"
	"path"
)

type Ingredient struct {
	Count string `json:"count"` // Amount as shown on the wiki, e.g. "2"
	Title string `json:"title"` // Ingredient item name
}

// Recipe is the crafting cost of an item. Once stored it is never refetched.
type Recipe struct {
	Time        string       `json:"time"` // Crafting time label, e.g. "0.5"
	Ingredients []Ingredient `json:"ingredients"`
}

type Image struct {
	PagePath  string `json:"pagePath"`            // Remote image path from the index page
	LocalPath string `json:"localPath,omitempty"` // File name inside the image directory
}

// LocalName returns the file name an image is stored under: the basename of
// the remote path, ignoring any query string.
func (i Image) LocalName() string {
	p := i.PagePath
	if u, err := url.Parse(p); err == nil && u.Path != "" {
		p = u.Path
	}
	name := path.Base(p)
	if name == "." || name == "/" {
		return ""
	}
	return name
}

type Item struct {
	Name   string  `json:"name"`
	Ref    string  `json:"ref"`
	Img    Image   `json:"img"`
	Recipe *Recipe `json:"recipe,omitempty"`
}

func (i *Item) HasRecipe() bool {
	return i.Recipe != nil
}
