package cms

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"

	domain "github.com/floorhouse/site/internal/domain"
)

//go:embed content
var embeddedContent embed.FS

// ErrNotFound is returned when no page exists for the slug in any locale.
var ErrNotFound = errors.New("cms: page not found")

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Page is a rendered static content page.
type Page struct {
	Slug      string
	Locale    domain.Locale
	Title     string
	Summary   string
	HTML      template.HTML
	UpdatedAt time.Time
	SEO       SEO
}

// SEO holds optional metadata overrides for a page.
type SEO struct {
	Title       string
	Description string
}

type frontMatter struct {
	Title     string `yaml:"title"`
	Summary   string `yaml:"summary"`
	UpdatedAt string `yaml:"updated_at"`
	SEO       struct {
		Title       string `yaml:"title"`
		Description string `yaml:"description"`
	} `yaml:"seo"`
}

// Store renders markdown pages laid out as {root}/{locale}/{slug}.md.
// Rendered pages are cached for the lifetime of the store.
type Store struct {
	fsys     fs.FS
	root     string
	fallback domain.Locale
	markdown goldmark.Markdown
	policy   *bluemonday.Policy

	mu    sync.RWMutex
	cache map[string]Page
}

// Default returns a store over the embedded pages.
func Default() *Store {
	return NewStore(embeddedContent, "content")
}

// NewStore constructs a store reading from fsys under root.
func NewStore(fsys fs.FS, root string) *Store {
	return &Store{
		fsys:     fsys,
		root:     root,
		fallback: domain.DefaultLocale,
		markdown: goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy:   newContentPolicy(),
		cache:    map[string]Page{},
	}
}

// Page returns the page for slug in locale, falling back to the default locale.
func (s *Store) Page(slug string, locale domain.Locale) (Page, error) {
	slug = strings.TrimSpace(slug)
	if !slugPattern.MatchString(slug) {
		return Page{}, ErrNotFound
	}
	priority := []domain.Locale{locale}
	if locale != s.fallback {
		priority = append(priority, s.fallback)
	}
	for _, candidate := range priority {
		page, err := s.load(slug, candidate)
		if err == nil {
			return page, nil
		}
		if errors.Is(err, ErrNotFound) {
			continue
		}
		return Page{}, err
	}
	return Page{}, ErrNotFound
}

// Slugs lists page slugs available in the default locale, sorted.
func (s *Store) Slugs() ([]string, error) {
	entries, err := fs.ReadDir(s.fsys, path.Join(s.root, string(s.fallback)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("cms: list pages: %w", err)
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".md") {
			continue
		}
		out = append(out, strings.TrimSuffix(name, ".md"))
	}
	return out, nil
}

func (s *Store) load(slug string, locale domain.Locale) (Page, error) {
	key := string(locale) + "|" + slug
	s.mu.RLock()
	page, ok := s.cache[key]
	s.mu.RUnlock()
	if ok {
		return page, nil
	}

	file := path.Join(s.root, string(locale), slug+".md")
	data, err := fs.ReadFile(s.fsys, file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Page{}, ErrNotFound
		}
		return Page{}, fmt.Errorf("cms: read %s: %w", file, err)
	}

	fm, body := splitFrontMatter(string(data))
	front := frontMatter{}
	if strings.TrimSpace(fm) != "" {
		if err := yaml.Unmarshal([]byte(fm), &front); err != nil {
			return Page{}, fmt.Errorf("cms: parse front matter %s: %w", file, err)
		}
	}

	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(body), &buf); err != nil {
		return Page{}, fmt.Errorf("cms: render %s: %w", file, err)
	}

	page = Page{
		Slug:      slug,
		Locale:    locale,
		Title:     strings.TrimSpace(front.Title),
		Summary:   strings.TrimSpace(front.Summary),
		HTML:      template.HTML(s.policy.SanitizeBytes(buf.Bytes())),
		UpdatedAt: parseDate(front.UpdatedAt),
		SEO: SEO{
			Title:       strings.TrimSpace(front.SEO.Title),
			Description: strings.TrimSpace(front.SEO.Description),
		},
	}
	if page.Title == "" {
		page.Title = prettifySlug(slug)
	}

	s.mu.Lock()
	s.cache[key] = page
	s.mu.Unlock()
	return page, nil
}

func newContentPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("figure", "figcaption")
	policy.AllowAttrs("loading").OnElements("img")
	policy.RequireNoFollowOnLinks(true)
	return policy
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
	if v == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func prettifySlug(slug string) string {
	parts := strings.Split(slug, "-")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}
