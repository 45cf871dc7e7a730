// Package browser turns the raw listfile into the selectable-name set:
// per-extension visibility toggles plus substring search, consumed
// read-only by the shell for cycling and by the drop handler for
// accepted extensions.
package browser

import (
	"path"
	"sort"
	"strings"

	"github.com/cascbox/cascview/pkg/casc"
)

// Names supplies the full asset name universe.
type Names interface {
	Names() []string
}

// Filter narrows a name universe by extension toggles and a search
// term. The zero value shows everything.
type Filter struct {
	extensions map[string]bool // nil: all extensions visible
	search     string
}

// NewFilter builds a Filter from per-extension visibility toggles,
// keyed by extension including the dot (".mdx"). Extensions absent from
// the map are hidden.
func NewFilter(extensions map[string]bool) *Filter {
	f := &Filter{}
	if len(extensions) > 0 {
		f.extensions = make(map[string]bool, len(extensions))
		for ext, on := range extensions {
			f.extensions[strings.ToLower(ext)] = on
		}
	}
	return f
}

// SetSearch sets the substring search term. Empty clears it.
func (f *Filter) SetSearch(term string) {
	f.search = strings.ToLower(strings.TrimSpace(term))
}

// Toggle flips one extension's visibility.
func (f *Filter) Toggle(ext string) {
	if f.extensions == nil {
		f.extensions = make(map[string]bool)
	}
	ext = strings.ToLower(ext)
	f.extensions[ext] = !f.extensions[ext]
}

// Visible reports whether a single name passes the filter.
func (f *Filter) Visible(name string) bool {
	name = casc.NormalizeName(name)
	if f.extensions != nil && !f.extensions[path.Ext(name)] {
		return false
	}
	if f.search != "" && !strings.Contains(name, f.search) {
		return false
	}
	return true
}

// Apply returns the sorted subset of the universe passing the filter.
func (f *Filter) Apply(universe Names) []string {
	var out []string
	for _, name := range universe.Names() {
		if f.Visible(name) {
			out = append(out, casc.NormalizeName(name))
		}
	}
	sort.Strings(out)
	return out
}

// Extensions returns the extensions currently toggled on, sorted, for
// drop-handler registration.
func (f *Filter) Extensions() []string {
	var out []string
	for ext, on := range f.extensions {
		if on {
			out = append(out, ext)
		}
	}
	sort.Strings(out)
	return out
}
