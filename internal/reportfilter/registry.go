package reportfilter

import (
	"fmt"
	"sync"
)

// Config is the filter configuration owned by one report.
type Config struct {
	Name    string
	Filters []Descriptor
}

func (c Config) clone() Config {
	out := Config{Name: c.Name, Filters: make([]Descriptor, 0, len(c.Filters))}
	for _, f := range c.Filters {
		out.Filters = append(out.Filters, f.clone())
	}
	return out
}

func (c *Config) index(fieldname string) int {
	for i, f := range c.Filters {
		if f.Fieldname == fieldname {
			return i
		}
	}
	return -1
}

// Dimension is an accounting dimension exposed as a report filter.
type Dimension struct {
	Fieldname    string
	Label        string
	DocumentType string
	IsTree       bool
}

// Registry maps report names to their filter configuration.
// It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	reports map[string]*Config
	hooks   map[string][]RowHook
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		reports: make(map[string]*Config),
		hooks:   make(map[string][]RowHook),
	}
}

// Extend installs a copy of base under name. An existing slot is kept as is,
// so calling Extend again never discards filters registered afterwards.
func (r *Registry) Extend(name string, base Config) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reports[name]; ok {
		return
	}
	cfg := base.clone()
	cfg.Name = name
	r.reports[name] = &cfg
}

// Has reports whether the report is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.reports[name]
	return ok
}

// Names lists registered reports.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.reports))
	for name := range r.reports {
		names = append(names, name)
	}
	return names
}

// Upsert replaces the filter with the same fieldname in place, or appends it.
func (r *Registry) Upsert(name string, d Descriptor) error {
	return r.Insert(name, -1, d)
}

// Insert upserts d; new filters land at pos (clamped, negative means append).
// Existing filters keep their position.
func (r *Registry) Insert(name string, pos int, d Descriptor) error {
	if err := d.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cfg, ok := r.reports[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownReport, name)
	}
	d = d.clone().normalise()
	if idx := cfg.index(d.Fieldname); idx >= 0 {
		cfg.Filters[idx] = d
		return nil
	}
	cfg.Filters = insertAt(cfg.Filters, pos, d)
	return nil
}

// Append adds d and refuses fieldnames that are already registered.
func (r *Registry) Append(name string, d Descriptor) error {
	if err := d.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cfg, ok := r.reports[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownReport, name)
	}
	if cfg.index(d.Fieldname) >= 0 {
		return fmt.Errorf("%w: %s on %s", ErrDuplicateFilter, d.Fieldname, name)
	}
	cfg.Filters = append(cfg.Filters, d.clone().normalise())
	return nil
}

// AddDimensions inserts one MultiSelectList filter per dimension starting at pos.
func (r *Registry) AddDimensions(name string, pos int, dims []Dimension) error {
	inserted := 0
	for _, dim := range dims {
		label := dim.Label
		if label == "" {
			label = dim.DocumentType
		}
		d := Descriptor{
			Fieldname: dim.Fieldname,
			Label:     label,
			FieldType: FieldTypeMultiSelectList,
			LinkTo:    dim.DocumentType,
		}
		_, exists := r.Filter(name, d.Fieldname)
		at := pos
		if pos >= 0 {
			at = pos + inserted
		}
		if err := r.Insert(name, at, d); err != nil {
			return err
		}
		if !exists {
			inserted++
		}
	}
	return nil
}

// Filters returns a copy of the report's filters in display order.
func (r *Registry) Filters(name string) ([]Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.reports[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownReport, name)
	}
	return cfg.clone().Filters, nil
}

// Filter looks up a single descriptor by fieldname.
func (r *Registry) Filter(name, fieldname string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.reports[name]
	if !ok {
		return Descriptor{}, false
	}
	if idx := cfg.index(fieldname); idx >= 0 {
		return cfg.Filters[idx].clone(), true
	}
	return Descriptor{}, false
}

// Duplicates lists fieldnames that occur more than once on the report.
func (r *Registry) Duplicates(name string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.reports[name]
	if !ok {
		return nil
	}
	return DuplicateFieldnames(cfg.Filters)
}

// DuplicateFieldnames reports repeated fieldnames in first-seen order.
func DuplicateFieldnames(filters []Descriptor) []string {
	seen := make(map[string]int, len(filters))
	var dups []string
	for _, f := range filters {
		seen[f.Fieldname]++
		if seen[f.Fieldname] == 2 {
			dups = append(dups, f.Fieldname)
		}
	}
	return dups
}

func insertAt(filters []Descriptor, pos int, d Descriptor) []Descriptor {
	if pos < 0 || pos >= len(filters) {
		return append(filters, d)
	}
	filters = append(filters, Descriptor{})
	copy(filters[pos+1:], filters[pos:])
	filters[pos] = d
	return filters
}
