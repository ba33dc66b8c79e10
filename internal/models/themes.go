package models

import (
	"bytes"
	"encoding/json"
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Themes maps a theme label to its items. Labels keep insertion order,
// both in memory and when serialised as a JSON object.
type Themes struct {
	m *orderedmap.OrderedMap[string, []string]
}

func NewThemes() *Themes {
	return &Themes{m: orderedmap.New[string, []string]()}
}

// SingleTheme puts every item under "Theme 1".
func SingleTheme(items []string) *Themes {
	t := NewThemes()
	t.m.Set(ThemeLabel(0), append([]string{}, items...))
	return t
}

// Add appends item to the bucket for label, creating the bucket on first use.
func (t *Themes) Add(label, item string) {
	t.init()
	items, _ := t.m.Get(label)
	t.m.Set(label, append(items, item))
}

func (t *Themes) Labels() []string {
	if t == nil || t.m == nil {
		return nil
	}
	labels := make([]string, 0, t.m.Len())
	for pair := t.m.Oldest(); pair != nil; pair = pair.Next() {
		labels = append(labels, pair.Key)
	}
	return labels
}

func (t *Themes) Items(label string) []string {
	if t == nil || t.m == nil {
		return nil
	}
	items, _ := t.m.Get(label)
	return items
}

func (t *Themes) Len() int {
	if t == nil || t.m == nil {
		return 0
	}
	return t.m.Len()
}

func (t *Themes) Clone() *Themes {
	out := NewThemes()
	if t == nil || t.m == nil {
		return out
	}
	for pair := t.m.Oldest(); pair != nil; pair = pair.Next() {
		out.m.Set(pair.Key, append([]string{}, pair.Value...))
	}
	return out
}

func (t *Themes) MarshalJSON() ([]byte, error) {
	if t == nil || t.m == nil || t.m.Len() == 0 {
		return []byte("{}"), nil
	}
	return t.m.MarshalJSON()
}

func (t *Themes) UnmarshalJSON(data []byte) error {
	t.m = orderedmap.New[string, []string]()
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	return json.Unmarshal(data, t.m)
}

func (t *Themes) init() {
	if t.m == nil {
		t.m = orderedmap.New[string, []string]()
	}
}

// ThemeLabel returns the display label for a zero-based cluster index.
func ThemeLabel(index int) string {
	return "Theme " + strconv.Itoa(index+1)
}
