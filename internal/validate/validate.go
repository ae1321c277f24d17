// Package validate checks parsed notes against their variant's field rules
// and cross-checks markdown ids against the remote store.
package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/notetype"
)

var clozeRe = regexp.MustCompile(`\{\{c\d+::`)

// Validator applies per-variant field rules from an immutable table.
type Validator struct {
	table *notetype.Table
}

// New creates a Validator for the given table.
func New(table *notetype.Table) *Validator {
	return &Validator{table: table}
}

// Note returns all rule violations for a parsed note as human-readable
// strings. An empty slice means the note is valid. Ordinary violations are
// collected, not short-circuited; only an unknown note type returns early.
func (v *Validator) Note(note *models.ParsedNote) []string {
	var errs []string

	variant, ok := v.table.Variant(note.NoteType)
	if !ok {
		return append(errs, fmt.Sprintf("unknown note type '%s'", note.NoteType))
	}

	for _, f := range variant.Fields {
		if f.Mandatory && strings.TrimSpace(note.Get(f.Name)) == "" {
			errs = append(errs, fmt.Sprintf("missing mandatory field '%s' (%s)", f.Name, f.Prefix))
		}
	}

	switch variant.Rule {
	case notetype.RuleCloze:
		errs = append(errs, v.checkCloze(note, variant)...)
	case notetype.RuleChoice:
		errs = append(errs, v.checkChoiceAnswers(note)...)
	}

	return errs
}

// checkCloze requires at least one {{cN:: deletion marker in the variant's
// primary text field (its first mandatory field). An empty field is left to
// the mandatory-presence check.
func (v *Validator) checkCloze(note *models.ParsedNote, variant notetype.Variant) []string {
	mandatory := variant.MandatoryFields()
	if len(mandatory) == 0 {
		return nil
	}
	fieldName := mandatory[0]
	text := note.Get(fieldName)
	if text == "" || clozeRe.MatchString(text) {
		return nil
	}
	return []string{fmt.Sprintf(
		"%s note must contain cloze syntax (e.g. {{c1::answer}}) in the %s field",
		note.NoteType, v.table.Prefix(note.NoteType, fieldName))}
}

// checkChoiceAnswers validates the Answer field of a choice note: a
// comma-separated list of integers, each within 1..maxChoice where
// maxChoice is the highest populated "Choice N" field. Only the first
// out-of-range value is reported.
func (v *Validator) checkChoiceAnswers(note *models.ParsedNote) []string {
	answer := note.Get("Answer")
	if answer == "" {
		return nil
	}

	var answerInts []int
	for _, part := range strings.Split(answer, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return []string{fmt.Sprintf(
				"%s answer (%s) must contain integers "+
					"(e.g. '1' for single choice or '1, 2, 3' for multiple choice)",
				note.NoteType, v.table.Prefix(note.NoteType, "Answer"))}
		}
		answerInts = append(answerInts, n)
	}

	maxChoice := 0
	for i := 1; i <= notetype.ChoiceMax; i++ {
		if note.Get(notetype.ChoiceField(i)) != "" {
			maxChoice = i
		}
	}

	for _, n := range answerInts {
		if n < 1 || n > maxChoice {
			return []string{fmt.Sprintf(
				"%s answer contains '%d' but only %d choice(s) are provided",
				note.NoteType, n, maxChoice)}
		}
	}
	return nil
}
