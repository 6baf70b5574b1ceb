// Package nav builds the site menu and breadcrumbs from the navigation state.
package nav

import (
	"twinelephant.com/fireworks-web/internal/catalog"
	"twinelephant.com/fireworks-web/internal/navigation"
)

// Item represents a top-level navigation item.
type Item struct {
	Page  navigation.Page
	Label string
}

// RenderedItem is a view model for templates. Action is the endpoint the
// item posts to; Hash is the fragment pushed to the address bar.
type RenderedItem struct {
	Label  string
	Action string
	Hash   string
	Active bool
}

// CategoryItem is one entry of the categories menu.
type CategoryItem struct {
	ID     string
	Label  string
	Icon   string
	Action string
	Active bool
}

// Crumb represents a breadcrumb entry. The last crumb has no Action.
type Crumb struct {
	Label  string
	Action string
	Active bool
}

// Main is the primary navigation definition.
var Main = []Item{
	{Page: navigation.PageHome, Label: "Home"},
	{Page: navigation.PageGallery, Label: "Gallery"},
	{Page: navigation.PageProduct, Label: "Products"},
	{Page: navigation.PageAbout, Label: "About"},
	{Page: navigation.PageContact, Label: "Contact"},
}

// ActionFor returns the endpoint that navigates to page.
func ActionFor(page navigation.Page) string {
	if page == navigation.PageHome {
		return "/nav/home"
	}
	return "/nav/page/" + string(page)
}

// CategoryAction returns the endpoint that selects a category.
func CategoryAction(id string) string {
	return "/nav/category/" + id
}

// Build renders navigation items with the current page marked active.
func Build(st navigation.State) []RenderedItem {
	items := make([]RenderedItem, 0, len(Main))
	for _, it := range Main {
		items = append(items, RenderedItem{
			Label:  it.Label,
			Action: ActionFor(it.Page),
			Hash:   navigation.HashFor(navigation.State{Page: it.Page}),
			Active: st.Page == it.Page,
		})
	}
	return items
}

// Categories renders the categories menu with the active category marked.
func Categories(c *catalog.Catalog, st navigation.State) []CategoryItem {
	active := st.ActiveCategory()
	cats := c.Categories()
	items := make([]CategoryItem, 0, len(cats))
	for _, cat := range cats {
		items = append(items, CategoryItem{
			ID:     cat.ID,
			Label:  cat.Name,
			Icon:   cat.Icon.String(),
			Action: CategoryAction(cat.ID),
			Active: cat.ID == active,
		})
	}
	return items
}

// Breadcrumbs builds the trail for a resolved view. Home is always first.
func Breadcrumbs(v navigation.View) []Crumb {
	home := Crumb{Label: "Home", Action: ActionFor(navigation.PageHome)}
	if v.Kind == navigation.ViewHome {
		home.Action = ""
		home.Active = true
		return []Crumb{home}
	}
	var label string
	switch v.Kind {
	case navigation.ViewCategory:
		label = v.Category.Name
	case navigation.ViewCategoryNotFound:
		label = "Category not found"
	default:
		for _, it := range Main {
			if it.Page == v.State.Page {
				label = it.Label
			}
		}
	}
	return []Crumb{home, {Label: label, Active: true}}
}
