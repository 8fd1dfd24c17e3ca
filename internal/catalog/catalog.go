// Package catalog loads the immutable item catalog and message templates
// the shop handlers are built with.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/fairyhunter13/stars-shop-bot/internal/model"
)

// ErrInvalidCatalog wraps every validation failure from New, NewMessages
// and Parse.
var ErrInvalidCatalog = errors.New("catalog: invalid")

// Message keys.
const (
	KeyWelcome        = "welcome"
	KeyHelp           = "help"
	KeyItemLabel      = "item_label"
	KeyInvalidItem    = "invalid_item"
	KeyPaymentSuccess = "payment_success"
	KeyRefundUsage    = "refund_usage"
	KeyRefundSuccess  = "refund_success"
	KeyRefundFailed   = "refund_failed"
	KeyRefundError    = "refund_error"
)

var requiredKeys = []string{
	KeyWelcome, KeyHelp, KeyItemLabel, KeyInvalidItem, KeyPaymentSuccess,
	KeyRefundUsage, KeyRefundSuccess, KeyRefundFailed, KeyRefundError,
}

//go:embed catalog.yaml
var defaultYAML []byte

// Catalog is an ordered, read-only set of items.
type Catalog struct {
	items []model.Item
	byID  map[string]int
}

// New validates items and builds a Catalog preserving their order.
func New(items []model.Item) (*Catalog, error) {
	c := &Catalog{
		items: make([]model.Item, 0, len(items)),
		byID:  make(map[string]int, len(items)),
	}
	for i, it := range items {
		switch {
		case strings.TrimSpace(it.ID) == "":
			return nil, fmt.Errorf("%w: item %d has no id", ErrInvalidCatalog, i)
		case it.Name == "":
			return nil, fmt.Errorf("%w: item %q has no name", ErrInvalidCatalog, it.ID)
		case it.Price <= 0:
			return nil, fmt.Errorf("%w: item %q price must be positive", ErrInvalidCatalog, it.ID)
		case it.Secret == "":
			return nil, fmt.Errorf("%w: item %q has no secret", ErrInvalidCatalog, it.ID)
		}
		if _, dup := c.byID[it.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate item id %q", ErrInvalidCatalog, it.ID)
		}
		c.byID[it.ID] = len(c.items)
		c.items = append(c.items, it)
	}
	if len(c.items) == 0 {
		return nil, fmt.Errorf("%w: no items", ErrInvalidCatalog)
	}
	return c, nil
}

// Lookup returns the item with the given id.
func (c *Catalog) Lookup(id string) (model.Item, bool) {
	i, ok := c.byID[id]
	if !ok {
		return model.Item{}, false
	}
	return c.items[i], true
}

// Items returns a copy of the items in catalog order.
func (c *Catalog) Items() []model.Item {
	out := make([]model.Item, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of items.
func (c *Catalog) Len() int { return len(c.items) }

// Messages holds user-facing texts. Every text is parsed as a template so
// placeholders are checked once at startup.
type Messages struct {
	tmpl map[string]*template.Template
}

// NewMessages parses texts and checks that every required key is present.
func NewMessages(texts map[string]string) (*Messages, error) {
	for _, k := range requiredKeys {
		if _, ok := texts[k]; !ok {
			return nil, fmt.Errorf("%w: missing message %q", ErrInvalidCatalog, k)
		}
	}
	m := &Messages{tmpl: make(map[string]*template.Template, len(texts))}
	for k, text := range texts {
		t, err := template.New(k).Option("missingkey=error").Parse(text)
		if err != nil {
			return nil, fmt.Errorf("%w: message %q: %v", ErrInvalidCatalog, k, err)
		}
		m.tmpl[k] = t
	}
	return m, nil
}

// Render executes the template stored under key.
func (m *Messages) Render(key string, data any) (string, error) {
	t, ok := m.tmpl[key]
	if !ok {
		return "", fmt.Errorf("catalog: unknown message %q", key)
	}
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", fmt.Errorf("catalog: render %q: %w", key, err)
	}
	return b.String(), nil
}

// Text renders a message that takes no placeholders. Unknown keys and
// render failures yield the key itself.
func (m *Messages) Text(key string) string {
	s, err := m.Render(key, nil)
	if err != nil {
		return key
	}
	return s
}

// Bundle is everything loaded from one catalog file.
type Bundle struct {
	Catalog  *Catalog
	Messages *Messages
}

type file struct {
	Items    []model.Item      `yaml:"items"`
	Messages map[string]string `yaml:"messages"`
}

// Parse decodes a YAML catalog document.
func Parse(data []byte) (*Bundle, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	c, err := New(f.Items)
	if err != nil {
		return nil, err
	}
	msgs, err := NewMessages(f.Messages)
	if err != nil {
		return nil, err
	}
	return &Bundle{Catalog: c, Messages: msgs}, nil
}

// Load reads the catalog at path, or the embedded default when path is
// empty.
func Load(path string) (*Bundle, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return Parse(data)
}

// Default returns the embedded catalog.
func Default() (*Bundle, error) {
	return Parse(defaultYAML)
}
