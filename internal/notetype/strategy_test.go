package notetype

import (
	"errors"
	"testing"
)

func fieldSet(names ...string) map[string]string {
	m := make(map[string]string, len(names))
	for _, n := range names {
		m[n] = "x"
	}
	return m
}

func TestRequiredSubset_CatchAllLast(t *testing.T) {
	tab := Default()

	cases := []struct {
		fields map[string]string
		want   string
	}{
		{fieldSet("Question", "Answer"), "QA"},
		{fieldSet("Question", "Answer", "Extra"), "QA"},
		{fieldSet("Text"), "Cloze"},
		// Cloze declared before QA, so Text wins even with Q/A present.
		{fieldSet("Question", "Answer", "Text"), "Cloze"},
		{fieldSet("Question", "Input"), "Input"},
		{fieldSet("Front", "Back"), "Reversed"},
		{fieldSet("Question", "Choice 1", "Answer"), "Choice"},
	}
	for _, tc := range cases {
		got, err := RequiredSubset(tab, tc.fields)
		if err != nil {
			t.Errorf("fields %v: unexpected error: %v", tc.fields, err)
			continue
		}
		if got != tc.want {
			t.Errorf("fields %v: got %q, want %q", tc.fields, got, tc.want)
		}
	}
}

func TestRequiredSubset_NoMatch(t *testing.T) {
	tab := Default()
	_, err := RequiredSubset(tab, fieldSet("Question"))
	var ute *UnknownNoteTypeError
	if !errors.As(err, &ute) {
		t.Fatalf("err = %v, want UnknownNoteTypeError", err)
	}
	if len(ute.Fields) != 1 || ute.Fields[0] != "Question" {
		t.Errorf("Fields = %v", ute.Fields)
	}
}

func TestUniqueMarker_MostSpecificFirst(t *testing.T) {
	tab := Default()

	cases := []struct {
		fields map[string]string
		want   string
	}{
		// Choice 1 is the most specific marker and wins over everything.
		{fieldSet("Question", "Choice 1", "Answer", "Text"), "Choice"},
		{fieldSet("Text", "Question", "Answer"), "Cloze"},
		{fieldSet("Input", "Question"), "Input"},
		{fieldSet("Front"), "Reversed"},
		// Either generic marker is enough for the catch-all.
		{fieldSet("Question"), "QA"},
		{fieldSet("Answer"), "QA"},
	}
	for _, tc := range cases {
		got, err := UniqueMarker(tab, tc.fields)
		if err != nil {
			t.Errorf("fields %v: unexpected error: %v", tc.fields, err)
			continue
		}
		if got != tc.want {
			t.Errorf("fields %v: got %q, want %q", tc.fields, got, tc.want)
		}
	}
}

func TestUniqueMarker_NoMarkerFound(t *testing.T) {
	tab := Default()
	_, err := UniqueMarker(tab, fieldSet("Extra"))
	var ute *UnknownNoteTypeError
	if !errors.As(err, &ute) {
		t.Fatalf("err = %v, want UnknownNoteTypeError", err)
	}
}

func TestUnknownNoteTypeError_SortedFields(t *testing.T) {
	tab := Default()
	_, err := RequiredSubset(tab, fieldSet("Extra", "Choice 2"))
	var ute *UnknownNoteTypeError
	if !errors.As(err, &ute) {
		t.Fatal("expected UnknownNoteTypeError")
	}
	// Deterministic message regardless of map iteration order.
	if ute.Error() != "cannot determine note type from fields: Choice 2, Extra" {
		t.Errorf("message = %q", ute.Error())
	}
}

func TestStrategyByName(t *testing.T) {
	if _, err := StrategyByName(""); err != nil {
		t.Errorf("empty name: %v", err)
	}
	if _, err := StrategyByName("required-subset"); err != nil {
		t.Errorf("required-subset: %v", err)
	}
	if _, err := StrategyByName("unique-marker"); err != nil {
		t.Errorf("unique-marker: %v", err)
	}
	if _, err := StrategyByName("wat"); err == nil {
		t.Error("unknown strategy should fail")
	}
}
