package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fairyhunter13/stars-shop-bot/internal/model"
)

func TestDefaultCatalog(t *testing.T) {
	b, err := Default()
	if err != nil {
		t.Fatalf("default catalog: %v", err)
	}
	items := b.Catalog.Items()
	if len(items) != 2 || items[0].ID != "ebook" || items[1].ID != "stickers" {
		t.Fatalf("unexpected items: %+v", items)
	}
	it, ok := b.Catalog.Lookup("stickers")
	if !ok || it.Price != 50 || it.Secret != "STICKME-VIP" {
		t.Fatalf("lookup stickers: %+v %v", it, ok)
	}
	if _, ok := b.Catalog.Lookup("nope"); ok {
		t.Fatalf("expected unknown id to miss")
	}
	if got := b.Messages.Text(KeyInvalidItem); got != "Invalid item." {
		t.Fatalf("invalid_item text: %q", got)
	}
}

func TestItemsReturnsCopy(t *testing.T) {
	b, err := Default()
	if err != nil {
		t.Fatalf("default catalog: %v", err)
	}
	items := b.Catalog.Items()
	items[0].Secret = "tampered"
	it, _ := b.Catalog.Lookup(items[0].ID)
	if it.Secret == "tampered" {
		t.Fatalf("catalog mutated through Items()")
	}
}

func TestNewRejectsBadItems(t *testing.T) {
	ok := model.Item{ID: "a", Name: "A", Price: 1, Secret: "s"}
	cases := map[string][]model.Item{
		"empty":     nil,
		"no id":     {{Name: "A", Price: 1, Secret: "s"}},
		"no name":   {{ID: "a", Price: 1, Secret: "s"}},
		"zero":      {{ID: "a", Name: "A", Secret: "s"}},
		"negative":  {{ID: "a", Name: "A", Price: -5, Secret: "s"}},
		"no secret": {{ID: "a", Name: "A", Price: 1}},
		"duplicate": {ok, ok},
	}
	for name, items := range cases {
		if _, err := New(items); !errors.Is(err, ErrInvalidCatalog) {
			t.Fatalf("%s: expected ErrInvalidCatalog, got %v", name, err)
		}
	}
}

func TestRenderTemplates(t *testing.T) {
	b, err := Default()
	if err != nil {
		t.Fatalf("default catalog: %v", err)
	}
	it, _ := b.Catalog.Lookup("ebook")
	label, err := b.Messages.Render(KeyItemLabel, it)
	if err != nil || label != "Learn Python E-Book - 100 ⭐" {
		t.Fatalf("label: %q %v", label, err)
	}
	msg, err := b.Messages.Render(KeyPaymentSuccess, struct {
		Secret, Name, ChargeID string
	}{"PYBOOK-2025", "Learn Python E-Book", "ch_1"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(msg, "`PYBOOK-2025`") || !strings.Contains(msg, "/refund ch_1") {
		t.Fatalf("unexpected payment text: %q", msg)
	}
	if _, err := b.Messages.Render("missing", nil); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}

func TestParseMissingMessage(t *testing.T) {
	doc := `
items:
  - {id: a, name: A, price: 1, secret: s}
messages:
  welcome: hi
`
	if _, err := Parse([]byte(doc)); !errors.Is(err, ErrInvalidCatalog) {
		t.Fatalf("expected ErrInvalidCatalog, got %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, defaultYAML, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if b.Catalog.Len() != 2 {
		t.Fatalf("expected 2 items, got %d", b.Catalog.Len())
	}
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
