package classifier

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
)

var ErrUnknownCategory = errors.New("unknown category")

// DefaultFolders maps the display labels of the bundled model to the
// directory names used for browsing.
var DefaultFolders = map[string]string{
	"Accounting & Finance": "finance",
	"Engineering":          "engineering",
	"Healthcare & Nursing": "healthcare",
	"Sales":                "sales",
}

type Category struct {
	Label string `json:"label"`
	Slug  string `json:"slug"`
}

// CategorySet is the ordered label list indexed by the classifier output.
type CategorySet struct {
	categories []Category
	bySlug     map[string]int
	byLabel    map[string]int
}

func NewCategorySet(categories []Category) (*CategorySet, error) {
	if len(categories) == 0 {
		return nil, errors.New("category set is empty")
	}
	s := &CategorySet{
		categories: make([]Category, len(categories)),
		bySlug:     make(map[string]int, len(categories)),
		byLabel:    make(map[string]int, len(categories)),
	}
	for i, c := range categories {
		if c.Label == "" {
			return nil, fmt.Errorf("category %d has an empty label", i)
		}
		if c.Slug == "" {
			c.Slug = folderFor(c.Label)
		}
		if c.Slug == "" || Slugify(c.Slug) != c.Slug {
			return nil, fmt.Errorf("category %q has invalid slug %q", c.Label, c.Slug)
		}
		if _, dup := s.bySlug[c.Slug]; dup {
			return nil, fmt.Errorf("duplicate category slug %q", c.Slug)
		}
		if _, dup := s.byLabel[c.Label]; dup {
			return nil, fmt.Errorf("duplicate category label %q", c.Label)
		}
		s.categories[i] = c
		s.bySlug[c.Slug] = i
		s.byLabel[c.Label] = i
	}
	return s, nil
}

func (s *CategorySet) Len() int {
	return len(s.categories)
}

// At returns the category for a classifier output index.
func (s *CategorySet) At(i int) (Category, bool) {
	if i < 0 || i >= len(s.categories) {
		return Category{}, false
	}
	return s.categories[i], true
}

// All returns a copy of the categories in index order.
func (s *CategorySet) All() []Category {
	out := make([]Category, len(s.categories))
	copy(out, s.categories)
	return out
}

func (s *CategorySet) BySlug(slug string) (Category, bool) {
	i, ok := s.bySlug[slug]
	if !ok {
		return Category{}, false
	}
	return s.categories[i], true
}

// Resolve accepts either a display label or a slug, the two forms a
// confirmation form may carry.
func (s *CategorySet) Resolve(value string) (Category, error) {
	if i, ok := s.byLabel[value]; ok {
		return s.categories[i], nil
	}
	if i, ok := s.bySlug[value]; ok {
		return s.categories[i], nil
	}
	return Category{}, fmt.Errorf("%w: %q", ErrUnknownCategory, value)
}

// LoadCategorySet reads a label list. JSON files hold an array of labels or
// {"label","slug"} objects; any other extension is read as one label per line.
func LoadCategorySet(path string) (*CategorySet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read labels: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ParseCategorySet(data)
	}

	var categories []Category
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		label := strings.TrimSpace(scanner.Text())
		if label != "" {
			categories = append(categories, Category{Label: label})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read labels: %w", err)
	}
	return NewCategorySet(categories)
}

func ParseCategorySet(data []byte) (*CategorySet, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("labels file is not valid JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, errors.New("labels file must contain a JSON array")
	}

	var categories []Category
	var parseErr error
	root.ForEach(func(_, item gjson.Result) bool {
		switch {
		case item.Type == gjson.String:
			categories = append(categories, Category{Label: item.String()})
		case item.IsObject():
			categories = append(categories, Category{
				Label: item.Get("label").String(),
				Slug:  item.Get("slug").String(),
			})
		default:
			parseErr = fmt.Errorf("unsupported label entry %s", item.Raw)
			return false
		}
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return NewCategorySet(categories)
}

func folderFor(label string) string {
	if folder, ok := DefaultFolders[label]; ok {
		return folder
	}
	return Slugify(label)
}

// Slugify lowercases value and collapses every run of characters outside
// [a-z0-9] into a single underscore.
func Slugify(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return ""
	}
	var b strings.Builder
	lastUnderscore := false
	for _, r := range value {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			b.WriteRune('_')
			lastUnderscore = true
		}
	}
	return strings.Trim(b.String(), "_")
}
