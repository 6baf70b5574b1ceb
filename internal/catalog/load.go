package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed data/catalog.yaml
var defaultDocument []byte

type document struct {
	Brand      string     `yaml:"brand"`
	Spotlight  string     `yaml:"spotlight"`
	Featured   []string   `yaml:"featured"`
	Swiper     []string   `yaml:"swiper"`
	Offers     []Offer    `yaml:"offers"`
	Categories []Category `yaml:"categories"`
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the embedded catalog, decoding it on first use.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Parse(bytes.NewReader(defaultDocument))
	})
	return defaultCatalog, defaultErr
}

// Load reads a catalog document from path, or the embedded one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes and validates a catalog document.
func Parse(r io.Reader) (*Catalog, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}
	if doc.Brand == "" {
		doc.Brand = "Twin Elephant Fireworks"
	}
	c := newCatalog(doc)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
