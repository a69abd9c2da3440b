package question

import "testing"

func newTestNormalizer() *Normalizer {
	return NewNormalizer([]string{"policy", "label", "protocol"}, "")
}

func TestNormalize_Idempotent(t *testing.T) {
	n := newTestNormalizer()

	inputs := []string{
		"what's the dosage for drug X?",
		"heart attack, symptoms.",
		"[already clean]",
		"   spaced    out   ",
		"",
		"???",
		"U.S. guidelines",
		// A period replacement exposes a possessive boundary.
		"drug's.x",
		"drug's.x, again's.",
		// A possessive replacement exposes another possessive.
		"x's's y",
	}
	for _, in := range inputs {
		once := n.Normalize(in)
		twice := n.Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestNormalize(t *testing.T) {
	n := newTestNormalizer()

	tests := []struct {
		in   string
		want string
	}{
		{"what's the dosage for drug X?", "what the dosage for drug X"},
		{"heart attack, symptoms", "heart attack symptoms"},
		{"one.two.three", "one two three"},
		{"drug's.x", "drug x"},
		{"x's's y", "x y"},
		{"  [bracketed?]  ", "bracketed"},
		{"a    b     c", "a b c"},
		{"???", ""},
		{"", ""},
	}
	for _, tc := range tests {
		if got := n.Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParse_DocTypePrefix(t *testing.T) {
	n := newTestNormalizer()

	q := n.Parse("policy:what is the dosage")
	if q.DocType() != "policy" {
		t.Errorf("DocType = %q, want policy", q.DocType())
	}
	if q.Text() != "what is the dosage" {
		t.Errorf("Text = %q, want %q", q.Text(), "what is the dosage")
	}
}

func TestParse_DocTypePrefixCaseInsensitive(t *testing.T) {
	n := newTestNormalizer()

	q := n.Parse("Policy:dosage limits")
	if q.DocType() != "policy" {
		t.Errorf("DocType = %q, want policy", q.DocType())
	}
}

func TestParse_UnsupportedPrefixIsOrdinaryText(t *testing.T) {
	n := newTestNormalizer()

	q := n.Parse("notasupportedtag:foo")
	if q.DocType() != "" {
		t.Errorf("DocType = %q, want empty", q.DocType())
	}
	if q.Text() != "notasupportedtag:foo" {
		t.Errorf("Text = %q, want colon preserved", q.Text())
	}
}

func TestParse_PunctuationOnlyIsEmpty(t *testing.T) {
	n := newTestNormalizer()

	q := n.Parse("???")
	if !q.IsEmpty() {
		t.Errorf("expected empty question, got %q", q.Text())
	}
}

func TestParse_KeepsRaw(t *testing.T) {
	n := newTestNormalizer()

	raw := "label: storage, conditions?"
	q := n.Parse(raw)
	if q.Raw() != raw {
		t.Errorf("Raw = %q, want %q", q.Raw(), raw)
	}
}
