// Package notetype holds the note-variant configuration: which field
// prefixes exist, which fields each variant has, and how a parsed field
// set is mapped back to a variant name.
package notetype

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ChoiceMax is the highest numbered choice field a Choice variant can carry.
const ChoiceMax = 7

// Field is one named piece of note content and the markdown prefix that
// introduces it.
type Field struct {
	Name      string `yaml:"name"`
	Prefix    string `yaml:"prefix"`
	Mandatory bool   `yaml:"mandatory"`
}

// Structural validation rules a variant can opt into.
const (
	RuleCloze  = "cloze"  // primary text field must contain {{cN:: syntax
	RuleChoice = "choice" // Answer holds comma-separated choice numbers
)

// Variant is a named schema of fields a note block can be classified into.
//
// CatchAll marks the generic fallback variant; strategies evaluate it last.
// Markers lists the field names that uniquely identify the variant for the
// UniqueMarker strategy; when empty, the mandatory field names are used.
// Rule names the structural validation rule applied to notes of this
// variant ("" for none).
type Variant struct {
	Name     string   `yaml:"name"`
	CatchAll bool     `yaml:"catch_all"`
	Markers  []string `yaml:"markers"`
	Rule     string   `yaml:"rule"`
	Fields   []Field  `yaml:"fields"`
}

// Validate checks the structural completeness of a variant definition.
func (v Variant) Validate() error {
	return validation.ValidateStruct(&v,
		validation.Field(&v.Name, validation.Required),
		validation.Field(&v.Rule, validation.In(RuleCloze, RuleChoice)),
		validation.Field(&v.Fields, validation.Required),
	)
}

// MandatoryFields returns the names of the variant's mandatory fields in
// declared order.
func (v Variant) MandatoryFields() []string {
	var out []string
	for _, f := range v.Fields {
		if f.Mandatory {
			out = append(out, f.Name)
		}
	}
	return out
}

// markerFields returns the distinguishing fields for UniqueMarker matching.
func (v Variant) markerFields() []string {
	if len(v.Markers) > 0 {
		return v.Markers
	}
	return v.MandatoryFields()
}

type prefixEntry struct {
	prefix string
	field  string
}

// Table is the immutable prefix-table configuration. It is built once at
// startup and passed explicitly into parsing, validation, and formatting.
type Table struct {
	variants []Variant
	prefixes []prefixEntry // flat prefix→field mapping, declaration order
}

// New builds a Table from variant definitions, in the given order.
//
// It enforces the matching invariants: a prefix always resolves to the same
// field name, no prefix can match a line that another prefix also matches,
// and exactly one variant is marked catch-all.
func New(variants ...Variant) (*Table, error) {
	if len(variants) == 0 {
		return nil, fmt.Errorf("notetype: no variants defined")
	}

	t := &Table{variants: variants}
	byPrefix := make(map[string]string)
	catchAll := 0

	for _, v := range variants {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("notetype: variant %q: %w", v.Name, err)
		}
		if v.CatchAll {
			catchAll++
		}
		for _, f := range v.Fields {
			if err := validation.Validate(f.Prefix, validation.Required); err != nil {
				return nil, fmt.Errorf("notetype: variant %q field %q: prefix is required", v.Name, f.Name)
			}
			if existing, ok := byPrefix[f.Prefix]; ok {
				if existing != f.Name {
					return nil, fmt.Errorf("notetype: prefix %q maps to both %q and %q", f.Prefix, existing, f.Name)
				}
				continue
			}
			byPrefix[f.Prefix] = f.Name
			t.prefixes = append(t.prefixes, prefixEntry{prefix: f.Prefix, field: f.Name})
		}
	}

	if catchAll != 1 {
		return nil, fmt.Errorf("notetype: exactly one catch-all variant required, got %d", catchAll)
	}

	// No prefix may be extendable into another: if "Q:" and "Q: extra" were
	// both prefixes, the line "Q: extra text" would match both.
	for _, a := range t.prefixes {
		for _, b := range t.prefixes {
			if a.prefix != b.prefix && strings.HasPrefix(b.prefix, a.prefix+" ") {
				return nil, fmt.Errorf("notetype: ambiguous prefixes %q and %q", a.prefix, b.prefix)
			}
		}
	}

	return t, nil
}

// Variants returns the variant definitions in declaration order.
func (t *Table) Variants() []Variant {
	return t.variants
}

// Variant looks up a variant by name.
func (t *Table) Variant(name string) (Variant, bool) {
	for _, v := range t.variants {
		if v.Name == name {
			return v, true
		}
	}
	return Variant{}, false
}

// Prefix returns the markdown prefix of the named field within a variant,
// or "" when the variant or field is unknown.
func (t *Table) Prefix(variant, field string) string {
	v, ok := t.Variant(variant)
	if !ok {
		return ""
	}
	for _, f := range v.Fields {
		if f.Name == field {
			return f.Prefix
		}
	}
	return ""
}

// Match tests a line against every configured prefix in declaration order.
// A line matches prefix P when it equals P exactly or starts with P plus a
// single space. The first match wins.
func (t *Table) Match(line string) (field, prefix string, ok bool) {
	for _, e := range t.prefixes {
		if line == e.prefix || strings.HasPrefix(line, e.prefix+" ") {
			return e.field, e.prefix, true
		}
	}
	return "", "", false
}

// Default returns the built-in variant table.
func Default() *Table {
	choice := Variant{
		Name:    "Choice",
		Markers: []string{"Choice 1"},
		Rule:    RuleChoice,
		Fields: []Field{
			{Name: "Question", Prefix: "Q:", Mandatory: true},
		},
	}
	for i := 1; i <= ChoiceMax; i++ {
		choice.Fields = append(choice.Fields, Field{
			Name:      ChoiceField(i),
			Prefix:    fmt.Sprintf("C%d:", i),
			Mandatory: i == 1,
		})
	}
	choice.Fields = append(choice.Fields, Field{Name: "Answer", Prefix: "A:", Mandatory: true})

	t, err := New(
		choice,
		Variant{
			Name:    "Cloze",
			Markers: []string{"Text"},
			Rule:    RuleCloze,
			Fields: []Field{
				{Name: "Text", Prefix: "T:", Mandatory: true},
				{Name: "Extra", Prefix: "X:"},
			},
		},
		Variant{
			Name:    "Input",
			Markers: []string{"Input"},
			Fields: []Field{
				{Name: "Question", Prefix: "Q:", Mandatory: true},
				{Name: "Input", Prefix: "I:", Mandatory: true},
			},
		},
		Variant{
			Name: "Reversed",
			Fields: []Field{
				{Name: "Front", Prefix: "F:", Mandatory: true},
				{Name: "Back", Prefix: "B:", Mandatory: true},
			},
		},
		Variant{
			Name:     "QA",
			CatchAll: true,
			Fields: []Field{
				{Name: "Question", Prefix: "Q:", Mandatory: true},
				{Name: "Answer", Prefix: "A:", Mandatory: true},
				{Name: "Extra", Prefix: "X:"},
			},
		},
	)
	if err != nil {
		panic(err) // built-in table must be consistent
	}
	return t
}

// ChoiceField returns the field name of the i-th choice ("Choice 1" ...).
func ChoiceField(i int) string {
	return fmt.Sprintf("Choice %d", i)
}
