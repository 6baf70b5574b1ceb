package seo

import (
	"encoding/json"
	"strconv"

	"twinelephant.com/fireworks-web/internal/catalog"
	"twinelephant.com/fireworks-web/internal/format"
)

// JSON marshals v to a compact JSON string. It returns an empty string on error.
func JSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// Organization returns a minimal Organization schema.
func Organization(name, url, logoURL string) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "Organization",
		"name":     name,
	}
	if url != "" {
		m["url"] = url
	}
	if logoURL != "" {
		m["logo"] = logoURL
	}
	return m
}

// Store describes the shop as a local business selling fireworks.
func Store(name, url, phone string) map[string]any {
	m := Organization(name, url, "")
	m["@type"] = "Store"
	if phone != "" {
		m["telephone"] = phone
	}
	return m
}

// BreadcrumbItem maps name and absolute item URL.
type BreadcrumbItem struct {
	Name string
	Item string
}

// BreadcrumbList builds schema.org BreadcrumbList.
func BreadcrumbList(items []BreadcrumbItem) map[string]any {
	el := make([]map[string]any, 0, len(items))
	for i, it := range items {
		el = append(el, map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     it.Name,
			"item":     it.Item,
		})
	}
	return map[string]any{
		"@context":        "https://schema.org",
		"@type":           "BreadcrumbList",
		"itemListElement": el,
	}
}

// Product returns a Product schema with an INR offer and, when the product has
// reviews, an aggregate rating.
func Product(p catalog.Product, url string) map[string]any {
	m := map[string]any{
		"@context":    "https://schema.org",
		"@type":       "Product",
		"name":        p.Name,
		"sku":         p.ID,
		"category":    p.Category,
		"description": p.Description,
	}
	if url != "" {
		m["url"] = url
	}
	if p.Image != "" {
		m["image"] = p.Image
	}
	if price, err := format.ParseRupees(p.Price); err == nil {
		availability := "https://schema.org/OutOfStock"
		if p.InStock {
			availability = "https://schema.org/InStock"
		}
		m["offers"] = map[string]any{
			"@type":         "Offer",
			"priceCurrency": "INR",
			"price":         strconv.FormatInt(price, 10),
			"availability":  availability,
		}
	}
	if p.Reviews > 0 {
		m["aggregateRating"] = map[string]any{
			"@type":       "AggregateRating",
			"ratingValue": format.FmtRating(p.Rating),
			"reviewCount": p.Reviews,
			"bestRating":  format.MaxStars,
		}
	}
	return m
}

// ItemList lists products, as on the home page's featured row.
func ItemList(name string, products []catalog.Product) map[string]any {
	el := make([]map[string]any, 0, len(products))
	for i, p := range products {
		el = append(el, map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     p.Name,
		})
	}
	return map[string]any{
		"@context":        "https://schema.org",
		"@type":           "ItemList",
		"name":            name,
		"itemListElement": el,
	}
}
