package varieties

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	pkgerrors "github.com/figpreorders/figorders/pkg/errors"
)

// StubName is the placeholder name given to a freshly added variety.
const StubName = "new"

// Variety is a sellable item and its default unit price.
type Variety struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// UnmarshalJSON also accepts the legacy bare-string form. Anything but an
// object or a string is rejected.
func (v *Variety) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || (data[0] != '"' && data[0] != '{') {
		return fmt.Errorf("variety must be an object or a name, got %s", data)
	}
	if data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*v = Variety{Name: name}
		return nil
	}
	type plain Variety
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*v = Variety(p)
	return nil
}

// Seed is the built-in catalog used when neither the bundle nor the store has one.
func Seed() []Variety {
	return []Variety{
		{Name: "Black Mission", Price: 0},
		{Name: "Brown Turkey", Price: 0},
		{Name: "Kadota", Price: 0},
	}
}

// Decode parses a catalog document. The top level must be an array.
func Decode(data []byte) ([]Variety, error) {
	var out []Variety
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeMalformedInput, err, "varieties document is not a JSON array of varieties")
	}
	if out == nil {
		return nil, pkgerrors.New(pkgerrors.CodeMalformedInput, "varieties document is not a JSON array of varieties")
	}
	return Normalize(out), nil
}

// Normalize trims names and drops nothing.
func Normalize(items []Variety) []Variety {
	out := make([]Variety, len(items))
	for i, v := range items {
		out[i] = Variety{Name: strings.TrimSpace(v.Name), Price: v.Price}
	}
	return out
}

// Catalog is the in-memory variety list. It is not safe for concurrent use.
type Catalog struct {
	items []Variety
}

func NewCatalog(items []Variety) *Catalog {
	return &Catalog{items: Normalize(items)}
}

// Snapshot returns a copy of the catalog.
func (c *Catalog) Snapshot() []Variety {
	out := make([]Variety, len(c.items))
	copy(out, c.items)
	return out
}

// Len reports the number of varieties.
func (c *Catalog) Len() int { return len(c.items) }

// Replace swaps the catalog without validation.
func (c *Catalog) Replace(items []Variety) {
	c.items = Normalize(items)
}

// Lookup returns the price of the first variety called name.
func (c *Catalog) Lookup(name string) (float64, bool) {
	name = strings.TrimSpace(name)
	for _, v := range c.items {
		if v.Name == name {
			return v.Price, true
		}
	}
	return 0, false
}

// Add appends a stub entry.
func (c *Catalog) Add() Variety {
	stub := Variety{Name: StubName, Price: 0}
	c.items = append(c.items, stub)
	return stub
}

// Save replaces the catalog with edits. Rows with a blank name are dropped;
// a negative price or a repeated name rejects the whole edit.
func (c *Catalog) Save(edits []Variety) ([]Variety, error) {
	kept := make([]Variety, 0, len(edits))
	details := map[string]string{}
	seen := map[string]int{}
	for i, v := range Normalize(edits) {
		if v.Name == "" {
			continue
		}
		if v.Price < 0 {
			details[fmt.Sprintf("[%d].price", i)] = "must not be less than 0"
		}
		if first, dup := seen[v.Name]; dup {
			details[fmt.Sprintf("[%d].name", i)] = fmt.Sprintf("duplicates row %d", first)
		} else {
			seen[v.Name] = i
		}
		kept = append(kept, v)
	}
	if len(details) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid varieties").WithDetails(details)
	}
	c.items = kept
	return c.Snapshot(), nil
}

// Delete removes the entry at index. Orders that reference it are untouched.
func (c *Catalog) Delete(index int) (Variety, error) {
	if index < 0 || index >= len(c.items) {
		return Variety{}, pkgerrors.New(pkgerrors.CodeNotFound, "variety not found").
			WithDetails(map[string]int{"index": index})
	}
	removed := c.items[index]
	c.items = append(c.items[:index:index], c.items[index+1:]...)
	return removed, nil
}
