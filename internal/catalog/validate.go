package catalog

import (
	"fmt"
	"strings"

	"twinelephant.com/fireworks-web/internal/format"
)

// ValidationError lists every data-entry problem found in a catalog document.
type ValidationError struct {
	problems []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("catalog validation failed: %s", strings.Join(e.problems, "; "))
}

// Problems returns a copy of the reported problems.
func (e *ValidationError) Problems() []string {
	out := make([]string, len(e.problems))
	copy(out, e.problems)
	return out
}

// Validate checks identifier uniqueness, rating/discount ranges, price
// consistency and home page references.
func (c *Catalog) Validate() error {
	var problems []string
	addf := func(msg string, args ...any) {
		problems = append(problems, fmt.Sprintf(msg, args...))
	}

	seenCategory := map[string]bool{}
	seenProduct := map[string]string{}
	for _, cat := range c.categories {
		if cat.ID == "" {
			addf("category %q has no id", cat.Name)
		}
		if seenCategory[cat.ID] {
			addf("duplicate category id %q", cat.ID)
		}
		seenCategory[cat.ID] = true

		seenSub := map[string]bool{}
		for _, sub := range cat.SubCategories {
			if sub.ID == "" {
				addf("subcategory %q in %s has no id", sub.Name, cat.ID)
			}
			if seenSub[sub.ID] {
				addf("duplicate subcategory id %q in %s", sub.ID, cat.ID)
			}
			seenSub[sub.ID] = true

			for _, p := range sub.Products {
				where := cat.ID + "/" + sub.ID
				if p.ID == "" {
					addf("product %q in %s has no id", p.Name, where)
					continue
				}
				if prev, dup := seenProduct[p.ID]; dup {
					addf("duplicate product id %q in %s (first seen in %s)", p.ID, where, prev)
				}
				seenProduct[p.ID] = where
				validateProduct(p, addf)
			}
		}
	}

	for _, o := range c.offers {
		if o.CategoryID != "" && !seenCategory[o.CategoryID] {
			addf("offer %q references unknown category %q", o.ID, o.CategoryID)
		}
	}
	refs := map[string][]string{"featured": c.featured, "swiper": c.swiper}
	if c.spotlight != "" {
		refs["spotlight"] = []string{c.spotlight}
	}
	for _, list := range []string{"featured", "swiper", "spotlight"} {
		for _, id := range refs[list] {
			if _, ok := seenProduct[id]; !ok {
				addf("%s references unknown product %q", list, id)
			}
		}
	}

	if len(problems) > 0 {
		return &ValidationError{problems: problems}
	}
	return nil
}

func validateProduct(p Product, addf func(string, ...any)) {
	if p.Rating < 0 || p.Rating > 5 {
		addf("product %s rating %.1f outside [0,5]", p.ID, p.Rating)
	}
	if p.Reviews < 0 {
		addf("product %s has negative reviews", p.ID)
	}
	if p.Discount < 0 || p.Discount > 100 {
		addf("product %s discount %d outside [0,100]", p.ID, p.Discount)
	}
	price, err := format.ParseRupees(p.Price)
	if err != nil {
		addf("product %s: %v", p.ID, err)
		return
	}
	if p.OriginalPrice == "" {
		return
	}
	original, err := format.ParseRupees(p.OriginalPrice)
	if err != nil {
		addf("product %s: %v", p.ID, err)
		return
	}
	if original <= price {
		addf("product %s original price %s not above price %s", p.ID, p.OriginalPrice, p.Price)
	}
}
