// Package palette resolves detection class labels to display colors.
package palette

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// DefaultClass is the label used for points that carry no class.
const DefaultClass = "unknown"

var defaultColors = map[string]string{
	"helicopter": "#FF7F0E",
	"tank":       "#D62728",
	"vehicle":    "#1F77B4",
	"human":      "#2CA02C",
	"ble":        "#00FFAA",
	DefaultClass: "#00FF41",
}

// Unknown classes are spread over this palette by label hash.
var fallbackColors = []string{
	"#8C564B", "#E377C2", "#7F7F7F", "#BCBD22", "#17BECF",
	"#AEC7E8", "#FFBB78", "#98DF8A", "#FF9896", "#C5B0D5",
}

// Resolver maps class labels to colors. It is a pure lookup with a
// guaranteed default and never fails after construction.
type Resolver struct {
	table    map[string]colorful.Color
	fallback []colorful.Color
}

// New builds a Resolver from the built-in table plus overrides
// (label -> "#RRGGBB").
func New(overrides map[string]string) (*Resolver, error) {
	r := &Resolver{table: make(map[string]colorful.Color, len(defaultColors)+len(overrides))}
	for label, hex := range defaultColors {
		c, _ := colorful.Hex(hex)
		r.table[label] = c
	}
	for label, hex := range overrides {
		c, err := colorful.Hex(hex)
		if err != nil {
			return nil, fmt.Errorf("class %q: invalid color %q: %w", label, hex, err)
		}
		r.table[Normalize(label)] = c
	}
	for _, hex := range fallbackColors {
		c, _ := colorful.Hex(hex)
		r.fallback = append(r.fallback, c)
	}
	return r, nil
}

// MustDefault returns a Resolver with only the built-in table.
func MustDefault() *Resolver {
	r, err := New(nil)
	if err != nil {
		panic(err)
	}
	return r
}

// Normalize canonicalizes a label; empty labels become DefaultClass.
func Normalize(label string) string {
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" {
		return DefaultClass
	}
	return label
}

// ColorOf returns the color for label.
func (r *Resolver) ColorOf(label string) colorful.Color {
	label = Normalize(label)
	if c, ok := r.table[label]; ok {
		return c
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(label))
	return r.fallback[h.Sum32()%uint32(len(r.fallback))]
}

// Hex returns the color for label as "#RRGGBB".
func (r *Resolver) Hex(label string) string {
	return strings.ToUpper(r.ColorOf(label).Clamped().Hex())
}
