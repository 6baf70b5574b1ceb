package catalog

import "errors"

// ErrNotFound indicates a category or product id that the catalog does not contain.
var ErrNotFound = errors.New("catalog: not found")

// Spec is one row of a product's specification table.
type Spec struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

// Product is a sellable item. Price fields hold display strings such as "₹125".
type Product struct {
	ID             string   `yaml:"id"`
	Name           string   `yaml:"name"`
	Price          string   `yaml:"price"`
	OriginalPrice  string   `yaml:"original_price"`
	Discount       int      `yaml:"discount"`
	Rating         float64  `yaml:"rating"`
	Reviews        int      `yaml:"reviews"`
	Image          string   `yaml:"image"`
	Images         []string `yaml:"images"`
	VideoURL       string   `yaml:"video_url"`
	Popular        bool     `yaml:"popular"`
	New            bool     `yaml:"new"`
	InStock        bool     `yaml:"in_stock"`
	Category       string   `yaml:"category"`
	CategoryID     string   `yaml:"-"`
	SubCategoryID  string   `yaml:"-"`
	Description    string   `yaml:"description"`
	Features       []string `yaml:"features"`
	Specifications []Spec   `yaml:"specifications"`
}

// SubCategory groups products inside a Category.
type SubCategory struct {
	ID          string    `yaml:"id"`
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Products    []Product `yaml:"products"`
}

// Category is a top-level grouping such as Sparklers or Fountains.
type Category struct {
	ID            string        `yaml:"id"`
	Name          string        `yaml:"name"`
	Description   string        `yaml:"description"`
	Icon          Icon          `yaml:"icon"`
	Color         string        `yaml:"color"`
	Image         string        `yaml:"image"`
	SubCategories []SubCategory `yaml:"subcategories"`
}

// ProductCount totals the products across every subcategory.
func (c Category) ProductCount() int {
	n := 0
	for _, sub := range c.SubCategories {
		n += len(sub.Products)
	}
	return n
}

// Offer is a promotional banner shown on the home page.
type Offer struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Subtitle    string `yaml:"subtitle"`
	Discount    string `yaml:"discount"`
	Description string `yaml:"description"`
	Image       string `yaml:"image"`
	Button      string `yaml:"button"`
	CategoryID  string `yaml:"category"`
	ValidUntil  string `yaml:"valid_until"`
	Popular     bool   `yaml:"popular"`
	LimitedTime bool   `yaml:"limited_time"`
}

// Catalog is the read-only product data set. It is built once and shared by
// reference; accessors hand out copies so callers cannot mutate entries.
type Catalog struct {
	brand      string
	categories []Category
	offers     []Offer
	featured   []string
	swiper     []string
	spotlight  string

	products     []Product
	productIndex map[string]int
	categoryIdx  map[string]int
}

func newCatalog(doc document) *Catalog {
	c := &Catalog{
		brand:        doc.Brand,
		categories:   doc.Categories,
		offers:       doc.Offers,
		featured:     doc.Featured,
		swiper:       doc.Swiper,
		spotlight:    doc.Spotlight,
		productIndex: map[string]int{},
		categoryIdx:  map[string]int{},
	}
	for ci := range c.categories {
		cat := &c.categories[ci]
		c.categoryIdx[cat.ID] = ci
		for si := range cat.SubCategories {
			sub := &cat.SubCategories[si]
			for pi := range sub.Products {
				p := &sub.Products[pi]
				if p.Category == "" {
					p.Category = cat.Name
				}
				p.CategoryID = cat.ID
				p.SubCategoryID = sub.ID
				if _, dup := c.productIndex[p.ID]; !dup {
					c.productIndex[p.ID] = len(c.products)
				}
				c.products = append(c.products, *p)
			}
		}
	}
	return c
}

// Brand returns the display name of the shop.
func (c *Catalog) Brand() string { return c.brand }

// Categories returns every category in declaration order.
func (c *Catalog) Categories() []Category {
	out := make([]Category, len(c.categories))
	for i, cat := range c.categories {
		out[i] = cloneCategory(cat)
	}
	return out
}

// Category looks up a category by id.
func (c *Catalog) Category(id string) (Category, bool) {
	idx, ok := c.categoryIdx[id]
	if !ok {
		return Category{}, false
	}
	return cloneCategory(c.categories[idx]), true
}

// Products returns the flat product list in declaration order.
func (c *Catalog) Products() []Product {
	out := make([]Product, len(c.products))
	for i, p := range c.products {
		out[i] = cloneProduct(p)
	}
	return out
}

// Product looks up a product by id.
func (c *Catalog) Product(id string) (Product, bool) {
	idx, ok := c.productIndex[id]
	if !ok {
		return Product{}, false
	}
	return cloneProduct(c.products[idx]), true
}

// Offers returns the home page promotions.
func (c *Catalog) Offers() []Offer {
	out := make([]Offer, len(c.offers))
	copy(out, c.offers)
	return out
}

// Featured returns the products highlighted on the home page.
func (c *Catalog) Featured() []Product { return c.resolve(c.featured) }

// Swiper returns the products shown in the home page slider.
func (c *Catalog) Swiper() []Product { return c.resolve(c.swiper) }

// Gallery returns the product's media images, the main image alone when none
// are listed.
func (p Product) Gallery() []string {
	if len(p.Images) > 0 {
		return p.Images
	}
	if p.Image == "" {
		return nil
	}
	return []string{p.Image}
}

// Spotlight returns the product rendered on the product page.
func (c *Catalog) Spotlight() (Product, bool) { return c.Product(c.spotlight) }

func (c *Catalog) resolve(ids []string) []Product {
	out := make([]Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := c.Product(id); ok {
			out = append(out, p)
		}
	}
	return out
}

func cloneCategory(src Category) Category {
	cp := src
	cp.SubCategories = make([]SubCategory, len(src.SubCategories))
	for i, sub := range src.SubCategories {
		s := sub
		s.Products = make([]Product, len(sub.Products))
		for j, p := range sub.Products {
			s.Products[j] = cloneProduct(p)
		}
		cp.SubCategories[i] = s
	}
	return cp
}

func cloneProduct(src Product) Product {
	cp := src
	if src.Images != nil {
		cp.Images = append([]string(nil), src.Images...)
	}
	if src.Features != nil {
		cp.Features = append([]string(nil), src.Features...)
	}
	if src.Specifications != nil {
		cp.Specifications = append([]Spec(nil), src.Specifications...)
	}
	return cp
}
