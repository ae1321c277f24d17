// Package format reconstructs canonical markdown blocks from structured
// note data, the inverse of the parser.
package format

import (
	"fmt"
	"strings"

	"github.com/starford/ansuz/internal/notetype"
)

// Converter turns remote field content into markdown (or markdown into the
// remote representation). The conversion algorithm itself is an external
// capability; this package only threads it through.
type Converter interface {
	Convert(raw string) string
}

// Identity is a Converter that returns content unchanged.
type Identity struct{}

// Convert implements Converter.
func (Identity) Convert(raw string) string { return raw }

// Note formats a remote note's raw field values into a markdown block: a
// note_id comment followed by one prefixed line per populated field, in the
// variant's configured order.
//
// A field absent from fields is omitted entirely. A present field whose
// converted text is empty is emitted only when it is mandatory; the
// reverse direction (HTMLFields) has a different emptiness policy.
func Note(table *notetype.Table, noteID int64, fields map[string]string, conv Converter, noteType string) (string, error) {
	variant, ok := table.Variant(noteType)
	if !ok {
		return "", fmt.Errorf("format: unknown note type %q", noteType)
	}

	lines := []string{fmt.Sprintf("<!-- note_id: %d -->", noteID)}
	for _, f := range variant.Fields {
		raw, present := fields[f.Name]
		if !present || raw == "" {
			continue
		}
		md := conv.Convert(raw)
		if md != "" || f.Mandatory {
			lines = append(lines, f.Prefix+" "+md)
		}
	}
	return strings.Join(lines, "\n"), nil
}

// HTMLFields converts every present field independently. When noteType is
// given, the result additionally contains an empty entry for every field
// the variant defines, so the remote store clears fields the user deleted
// from markdown.
func HTMLFields(table *notetype.Table, fields map[string]string, conv Converter, noteType string) map[string]string {
	out := make(map[string]string, len(fields))
	for name, content := range fields {
		out[name] = conv.Convert(content)
	}

	if noteType != "" {
		if variant, ok := table.Variant(noteType); ok {
			for _, f := range variant.Fields {
				if _, present := out[f.Name]; !present {
					out[f.Name] = ""
				}
			}
		}
	}
	return out
}
