// Package search narrows catalog listings by name substring and group filter.
package search

import (
	"strings"

	"twinelephant.com/fireworks-web/internal/catalog"
)

// All is the filter sentinel that selects every group.
const All = "all"

// View is the listing layout. It never changes the result set.
type View string

const (
	ViewGrid View = "grid"
	ViewList View = "list"
)

// ParseView accepts "grid" and "list"; anything else falls back to grid.
func ParseView(s string) View {
	if View(strings.ToLower(strings.TrimSpace(s))) == ViewList {
		return ViewList
	}
	return ViewGrid
}

// Group is one filterable section of a listing: a subcategory on the category
// page, a category in the gallery.
type Group struct {
	ID          string
	Name        string
	Description string
	Products    []catalog.Product
}

// GroupsForCategory builds one group per subcategory of cat.
func GroupsForCategory(cat catalog.Category) []Group {
	groups := make([]Group, 0, len(cat.SubCategories))
	for _, sub := range cat.SubCategories {
		groups = append(groups, Group{
			ID:          sub.ID,
			Name:        sub.Name,
			Description: sub.Description,
			Products:    sub.Products,
		})
	}
	return groups
}

// GroupsForCatalog builds one group per category, products flattened across
// its subcategories in declaration order.
func GroupsForCatalog(c *catalog.Catalog) []Group {
	cats := c.Categories()
	groups := make([]Group, 0, len(cats))
	for _, cat := range cats {
		products := make([]catalog.Product, 0, cat.ProductCount())
		for _, sub := range cat.SubCategories {
			products = append(products, sub.Products...)
		}
		groups = append(groups, Group{
			ID:          cat.ID,
			Name:        cat.Name,
			Description: cat.Description,
			Products:    products,
		})
	}
	return groups
}

// State is the per-page search input.
type State struct {
	Term   string
	Filter string
	View   View
}

// DefaultState is the state a page starts with when it is entered.
func DefaultState() State {
	return State{Filter: All, View: ViewGrid}
}

// Normalize replaces an empty or unknown filter with All and an unknown view with grid.
func (s State) Normalize(groups []Group) State {
	s.View = ParseView(string(s.View))
	if s.Filter == "" || s.Filter == All {
		s.Filter = All
		return s
	}
	for _, g := range groups {
		if g.ID == s.Filter {
			return s
		}
	}
	s.Filter = All
	return s
}

// Searching reports whether the term triggers a name search.
func (s State) Searching() bool {
	return strings.TrimSpace(s.Term) != ""
}

// Result is what a listing renders. When Searching is set Products holds the
// flat match list; otherwise Groups holds the visible sections.
type Result struct {
	Searching bool
	Term      string
	View      View
	Products  []catalog.Product
	Groups    []Group
	Count     int
}

// Empty reports a zero-product result, rendered as "0 results".
func (r Result) Empty() bool { return r.Count == 0 }

// Run applies state to groups. Groups are not modified. The term is matched
// trimmed and reported as typed.
func Run(groups []Group, st State) Result {
	res := Result{Term: st.Term, View: ParseView(string(st.View))}
	if st.Searching() {
		res.Searching = true
		res.Products = Match(groups, strings.TrimSpace(st.Term))
		res.Count = len(res.Products)
		return res
	}
	res.Groups = Filter(groups, st.Filter)
	for _, g := range res.Groups {
		res.Count += len(g.Products)
	}
	return res
}

// Match flattens groups in order and keeps products whose name contains term,
// ignoring case.
func Match(groups []Group, term string) []catalog.Product {
	needle := strings.ToLower(term)
	out := []catalog.Product{}
	for _, g := range groups {
		for _, p := range g.Products {
			if strings.Contains(strings.ToLower(p.Name), needle) {
				out = append(out, p)
			}
		}
	}
	return out
}

// Filter returns every group for All, otherwise only the group with the given
// id. An id that names no group yields no groups.
func Filter(groups []Group, filter string) []Group {
	if filter == "" || filter == All {
		out := make([]Group, len(groups))
		copy(out, groups)
		return out
	}
	for _, g := range groups {
		if g.ID == filter {
			return []Group{g}
		}
	}
	return []Group{}
}
