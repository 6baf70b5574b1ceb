// Package cms loads static page copy written as markdown with YAML front matter.
package cms

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when no markdown exists for a slug.
var ErrNotFound = errors.New("cms: page not found")

//go:embed content/*.md
var embedded embed.FS

// Stat is a headline number shown on a page.
type Stat struct {
	Label string `yaml:"label"`
	Value string `yaml:"value"`
}

// Milestone is one entry of a timeline.
type Milestone struct {
	Year        string `yaml:"year"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// SEO holds optional metadata overrides.
type SEO struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// Page is a rendered content page. Body is sanitised HTML.
type Page struct {
	Slug       string
	Title      string
	Summary    string
	Body       template.HTML
	UpdatedAt  time.Time
	SEO        SEO
	Stats      []Stat
	Milestones []Milestone
}

type frontMatter struct {
	Title      string      `yaml:"title"`
	Summary    string      `yaml:"summary"`
	UpdatedAt  string      `yaml:"updated_at"`
	SEO        SEO         `yaml:"seo"`
	Stats      []Stat      `yaml:"stats"`
	Milestones []Milestone `yaml:"milestones"`
}

// Client reads pages from a content directory, falling back to the copies
// compiled into the binary. Rendered pages are cached for ttl; a zero ttl
// re-reads on every call, which dev mode relies on.
type Client struct {
	dir    fs.FS
	ttl    time.Duration
	now    func() time.Time
	md     goldmark.Markdown
	policy *bluemonday.Policy

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

type cacheEntry struct {
	page    Page
	expires time.Time
}

// NewClient builds a Client over dir. An empty dir uses only embedded content.
func NewClient(dir string, ttl time.Duration) *Client {
	c := &Client{
		ttl:    ttl,
		now:    time.Now,
		md:     goldmark.New(goldmark.WithExtensions(extension.Typographer)),
		policy: bluemonday.UGCPolicy(),
		cache:  map[string]cacheEntry{},
	}
	if dir = strings.TrimSpace(dir); dir != "" {
		c.dir = os.DirFS(dir)
	}
	return c
}

// Page returns the page for slug.
func (c *Client) Page(slug string) (Page, error) {
	slug = sanitizeSlug(slug)
	if slug == "" {
		return Page{}, ErrNotFound
	}
	if page, ok := c.cached(slug); ok {
		return page, nil
	}
	data, err := c.read(slug + ".md")
	if err != nil {
		return Page{}, err
	}
	page, err := c.parse(slug, data)
	if err != nil {
		return Page{}, err
	}
	c.store(slug, page)
	return clonePage(page), nil
}

func (c *Client) read(name string) ([]byte, error) {
	if c.dir != nil {
		data, err := fs.ReadFile(c.dir, name)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("cms: read %s: %w", name, err)
		}
	}
	data, err := fs.ReadFile(embedded, path.Join("content", name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

func (c *Client) parse(slug string, data []byte) (Page, error) {
	fm, body := splitFrontMatter(string(data))
	var front frontMatter
	if strings.TrimSpace(fm) != "" {
		if err := yaml.Unmarshal([]byte(fm), &front); err != nil {
			return Page{}, fmt.Errorf("cms: parse front matter %s: %w", slug, err)
		}
	}
	var buf bytes.Buffer
	if err := c.md.Convert([]byte(body), &buf); err != nil {
		return Page{}, fmt.Errorf("cms: render %s: %w", slug, err)
	}
	page := Page{
		Slug:       slug,
		Title:      strings.TrimSpace(front.Title),
		Summary:    strings.TrimSpace(front.Summary),
		Body:       template.HTML(c.policy.SanitizeBytes(buf.Bytes())),
		UpdatedAt:  parseDate(front.UpdatedAt),
		SEO:        front.SEO,
		Stats:      front.Stats,
		Milestones: front.Milestones,
	}
	if page.Title == "" {
		page.Title = prettifySlug(slug)
	}
	return page, nil
}

func (c *Client) cached(slug string) (Page, bool) {
	if c.ttl <= 0 {
		return Page{}, false
	}
	c.mu.RLock()
	entry, ok := c.cache[slug]
	c.mu.RUnlock()
	if !ok || c.now().After(entry.expires) {
		return Page{}, false
	}
	return clonePage(entry.page), true
}

func (c *Client) store(slug string, page Page) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[slug] = cacheEntry{page: clonePage(page), expires: c.now().Add(c.ttl)}
}

func clonePage(src Page) Page {
	cp := src
	cp.Stats = append([]Stat(nil), src.Stats...)
	cp.Milestones = append([]Milestone(nil), src.Milestones...)
	return cp
}

func splitFrontMatter(input string) (string, string) {
	input = strings.TrimLeft(input, "\ufeff")
	lines := strings.Split(input, "\n")
	if strings.TrimSpace(lines[0]) != "---" {
		return "", input
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			fm := strings.Join(lines[1:i], "\n")
			body := strings.Join(lines[i+1:], "\n")
			return fm, strings.TrimLeft(body, "\n\r")
		}
	}
	return "", input
}

func parseDate(v string) time.Time {
	v = strings.TrimSpace(v)
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func prettifySlug(slug string) string {
	parts := strings.Split(slug, "-")
	for i, part := range parts {
		if part == "" {
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, " ")
}

func sanitizeSlug(slug string) string {
	slug = strings.Trim(strings.TrimSpace(strings.ToLower(slug)), "/")
	if slug == "" || strings.Contains(slug, "..") || strings.ContainsAny(slug, `/\`) {
		return ""
	}
	return slug
}
