package notetype

import (
	"fmt"
	"sort"
	"strings"
)

// UnknownNoteTypeError is returned when no variant's requirements are
// satisfiable from the populated fields of a block.
type UnknownNoteTypeError struct {
	Fields []string // populated field names, sorted
}

func (e *UnknownNoteTypeError) Error() string {
	return fmt.Sprintf("cannot determine note type from fields: %s", strings.Join(e.Fields, ", "))
}

// Strategy maps the set of populated field names to a variant name.
// Implementations must be pure functions of the field-name set.
type Strategy func(t *Table, fields map[string]string) (string, error)

// RequiredSubset matches the first variant, in declaration order with the
// catch-all evaluated last, whose full set of mandatory field names is a
// subset of the populated field names.
func RequiredSubset(t *Table, fields map[string]string) (string, error) {
	var catchAll *Variant
	for i, v := range t.variants {
		if v.CatchAll {
			catchAll = &t.variants[i]
			continue
		}
		if hasAll(fields, v.MandatoryFields()) {
			return v.Name, nil
		}
	}
	if catchAll != nil && hasAll(fields, catchAll.MandatoryFields()) {
		return catchAll.Name, nil
	}
	return "", unknownType(fields)
}

// UniqueMarker matches variants by their distinguishing marker fields,
// most specific first (declaration order, catch-all last). A variant
// matches as soon as any of its marker fields is populated.
func UniqueMarker(t *Table, fields map[string]string) (string, error) {
	var catchAll *Variant
	for i, v := range t.variants {
		if v.CatchAll {
			catchAll = &t.variants[i]
			continue
		}
		if hasAny(fields, v.markerFields()) {
			return v.Name, nil
		}
	}
	if catchAll != nil && hasAny(fields, catchAll.markerFields()) {
		return catchAll.Name, nil
	}
	return "", unknownType(fields)
}

// Strategy names accepted in configuration and note type files.
const (
	StrategyRequiredSubset = "required-subset"
	StrategyUniqueMarker   = "unique-marker"
)

// StrategyByName resolves a configured strategy name. Defaults to
// RequiredSubset for an empty name.
func StrategyByName(name string) (Strategy, error) {
	switch name {
	case "", StrategyRequiredSubset:
		return RequiredSubset, nil
	case StrategyUniqueMarker:
		return UniqueMarker, nil
	}
	return nil, fmt.Errorf("notetype: unknown inference strategy %q", name)
}

func hasAll(fields map[string]string, names []string) bool {
	for _, n := range names {
		if _, ok := fields[n]; !ok {
			return false
		}
	}
	return true
}

func hasAny(fields map[string]string, names []string) bool {
	for _, n := range names {
		if _, ok := fields[n]; ok {
			return true
		}
	}
	return false
}

func unknownType(fields map[string]string) error {
	names := make([]string, 0, len(fields))
	for n := range fields {
		names = append(names, n)
	}
	sort.Strings(names)
	return &UnknownNoteTypeError{Fields: names}
}
