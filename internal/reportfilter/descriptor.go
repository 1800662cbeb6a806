package reportfilter

import (
	"errors"
	"fmt"
	"strings"
)

// FieldType enumerates the filter controls understood by report pages.
type FieldType string

const (
	FieldTypeSelect          FieldType = "Select"
	FieldTypeCheck           FieldType = "Check"
	FieldTypeLink            FieldType = "Link"
	FieldTypeDate            FieldType = "Date"
	FieldTypeData            FieldType = "Data"
	FieldTypeMultiSelectList FieldType = "MultiSelectList"
)

var knownFieldTypes = map[FieldType]struct{}{
	FieldTypeSelect:          {},
	FieldTypeCheck:           {},
	FieldTypeLink:            {},
	FieldTypeDate:            {},
	FieldTypeData:            {},
	FieldTypeMultiSelectList: {},
}

var (
	// ErrUnknownReport indicates the report has not been registered.
	ErrUnknownReport = errors.New("reportfilter: unknown report")
	// ErrDuplicateFilter indicates a fieldname is already present on the report.
	ErrDuplicateFilter = errors.New("reportfilter: duplicate filter fieldname")
	// ErrInvalidDescriptor indicates a malformed filter descriptor.
	ErrInvalidDescriptor = errors.New("reportfilter: invalid descriptor")
)

// Option is a selectable value of a Select filter.
type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// Descriptor describes one filter control rendered above a report.
type Descriptor struct {
	Fieldname string    `json:"fieldname" yaml:"fieldname"`
	Label     string    `json:"label" yaml:"label"`
	FieldType FieldType `json:"fieldtype" yaml:"fieldtype"`
	Options   []Option  `json:"options,omitempty" yaml:"options,omitempty"`
	// LinkTo names the record type a Link or MultiSelectList filter points at.
	LinkTo    string `json:"link_to,omitempty" yaml:"link_to,omitempty"`
	Default   any    `json:"default,omitempty" yaml:"default,omitempty"`
	Required  bool   `json:"reqd,omitempty" yaml:"reqd,omitempty"`
	Hidden    bool   `json:"hidden,omitempty" yaml:"hidden,omitempty"`
	DependsOn string `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`
}

// Validate checks the descriptor for structural problems.
func (d Descriptor) Validate() error {
	if strings.TrimSpace(d.Fieldname) == "" {
		return fmt.Errorf("%w: fieldname required", ErrInvalidDescriptor)
	}
	if _, ok := knownFieldTypes[d.FieldType]; !ok {
		return fmt.Errorf("%w: %s has unknown fieldtype %q", ErrInvalidDescriptor, d.Fieldname, d.FieldType)
	}
	switch d.FieldType {
	case FieldTypeSelect:
		if len(d.Options) == 0 {
			return fmt.Errorf("%w: %s select requires options", ErrInvalidDescriptor, d.Fieldname)
		}
		if d.Default == nil {
			return nil
		}
		def, ok := d.Default.(string)
		if !ok {
			return fmt.Errorf("%w: %s select default must be a string", ErrInvalidDescriptor, d.Fieldname)
		}
		if !d.HasOption(def) {
			return fmt.Errorf("%w: %s default %q is not an option", ErrInvalidDescriptor, d.Fieldname, def)
		}
	case FieldTypeCheck:
		if d.Default == nil {
			return nil
		}
		if _, ok := checkValue(d.Default); !ok {
			return fmt.Errorf("%w: %s check default must be 0 or 1", ErrInvalidDescriptor, d.Fieldname)
		}
	}
	return nil
}

// HasOption reports whether value is one of the descriptor's options.
func (d Descriptor) HasOption(value string) bool {
	for _, opt := range d.Options {
		if opt.Value == value {
			return true
		}
	}
	return false
}

// CheckDefault returns the default of a Check filter as a boolean.
func (d Descriptor) CheckDefault() bool {
	v, _ := checkValue(d.Default)
	return v == 1
}

func (d Descriptor) clone() Descriptor {
	out := d
	if d.Options != nil {
		out.Options = append([]Option(nil), d.Options...)
	}
	return out
}

// normalise stores Check defaults as 0/1 integers regardless of the source encoding.
func (d Descriptor) normalise() Descriptor {
	if d.FieldType == FieldTypeCheck && d.Default != nil {
		if v, ok := checkValue(d.Default); ok {
			d.Default = v
		}
	}
	return d
}

func checkValue(v any) (int, bool) {
	switch val := v.(type) {
	case bool:
		if val {
			return 1, true
		}
		return 0, true
	case int:
		if val == 0 || val == 1 {
			return val, true
		}
	case int64:
		if val == 0 || val == 1 {
			return int(val), true
		}
	case float64:
		if val == 0 || val == 1 {
			return int(val), true
		}
	}
	return 0, false
}
