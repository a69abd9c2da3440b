package translate

import (
	"testing"

	"github.com/kailas-cloud/kbsearch/internal/domain/policy"
	"github.com/kailas-cloud/kbsearch/internal/domain/question"
	"github.com/kailas-cloud/kbsearch/internal/domain/termindex"
)

func testIndex() *termindex.Index {
	ix := termindex.New()
	ix.Insert("drug x", termindex.EntityRef{ID: "ent-dx", Category: "drug", Canonical: "drug x"})
	ix.Insert("dosage", termindex.EntityRef{ID: "ent-dose", Category: "topic", Canonical: "dosage"})
	ix.Insert("heart attack",
		termindex.EntityRef{ID: "ent-mi", Category: "condition", Canonical: "myocardial infarction"})
	ix.Insert("aspirin",
		termindex.EntityRef{ID: "ent-asa", Category: "drug"},
		termindex.EntityRef{ID: "ent-brand", Category: "brand"},
	)
	return ix
}

func newNormalizer() *question.Normalizer {
	return question.NewNormalizer([]string{"policy", "label"}, "")
}

func parse(raw string) question.Question {
	return newNormalizer().Parse(raw)
}

func TestForm_GroupsByCategory(t *testing.T) {
	svc := New(testIndex())

	q := parse("what's the dosage for drug x")
	formed, err := svc.Form(&q, policy.New(nil, nil))
	if err != nil {
		t.Fatalf("Form: %v", err)
	}

	if len(formed) != 2 {
		t.Fatalf("formed %d queries, want 2", len(formed))
	}
	// Order follows first occurrence in the question: dosage before drug x.
	if formed[0].Category() != "topic" || formed[1].Category() != "drug" {
		t.Errorf("categories = %q, %q", formed[0].Category(), formed[1].Category())
	}
	if formed[1].EntityIDs()[0] != "ent-dx" {
		t.Errorf("drug query entities = %v", formed[1].EntityIDs())
	}
}

func TestForm_PolicyExcludesCategory(t *testing.T) {
	svc := New(testIndex())

	q := parse("what's the dosage for drug x")
	// Policy allows topic only; drug matches are dropped at entity level.
	formed, err := svc.Form(&q, policy.New([]string{"topic"}, nil))
	if err != nil {
		t.Fatalf("Form: %v", err)
	}

	if len(formed) != 1 {
		t.Fatalf("formed %d queries, want 1", len(formed))
	}
	if formed[0].Category() != "topic" {
		t.Errorf("category = %q, want topic", formed[0].Category())
	}
}

func TestForm_AllExcludedIsEmptyTranslation(t *testing.T) {
	svc := New(testIndex())

	q := parse("drug x")
	formed, err := svc.Form(&q, policy.New([]string{"condition"}, nil))
	if err != nil {
		t.Fatalf("Form: %v", err)
	}
	if len(formed) != 0 {
		t.Errorf("expected empty translation, got %d queries", len(formed))
	}
}

func TestForm_EmptyQuestion(t *testing.T) {
	svc := New(testIndex())

	q := parse("???")
	formed, err := svc.Form(&q, policy.New(nil, nil))
	if err != nil {
		t.Fatalf("Form: %v", err)
	}
	if len(formed) != 0 {
		t.Errorf("expected zero queries for punctuation-only question, got %d", len(formed))
	}
}

func TestForm_NoMeaningfulWord(t *testing.T) {
	svc := New(testIndex())

	q := parse("completely unrelated words")
	formed, err := svc.Form(&q, policy.New(nil, nil))
	if err != nil {
		t.Fatalf("Form: %v", err)
	}
	if len(formed) != 0 {
		t.Errorf("expected zero queries, got %d", len(formed))
	}
}

func TestForm_SynonymySplitsAcrossCategories(t *testing.T) {
	svc := New(testIndex())

	q := parse("aspirin")
	formed, err := svc.Form(&q, policy.New(nil, nil))
	if err != nil {
		t.Fatalf("Form: %v", err)
	}

	// One span, two entities in different categories: two queries.
	if len(formed) != 2 {
		t.Fatalf("formed %d queries, want 2", len(formed))
	}
}

func TestForm_DocTypeScopesQueries(t *testing.T) {
	svc := New(testIndex())

	q := parse("label:drug x storage")
	if q.DocType() != "label" {
		t.Fatalf("DocType = %q, want label", q.DocType())
	}

	formed, err := svc.Form(&q, policy.New(nil, nil))
	if err != nil {
		t.Fatalf("Form: %v", err)
	}
	if len(formed) != 1 {
		t.Fatalf("formed %d queries, want 1", len(formed))
	}
	if formed[0].DocType() != "label" {
		t.Errorf("query doc type = %q, want label", formed[0].DocType())
	}
}

func TestForm_CarriesPolicyAttributes(t *testing.T) {
	svc := New(testIndex())

	q := parse("dosage")
	formed, err := svc.Form(&q, policy.New(nil, map[string]string{"region": "eu"}))
	if err != nil {
		t.Fatalf("Form: %v", err)
	}
	if len(formed) != 1 {
		t.Fatalf("formed %d queries, want 1", len(formed))
	}
	if formed[0].Attributes()["region"] != "eu" {
		t.Errorf("attributes = %v", formed[0].Attributes())
	}
}

func TestForm_DedupesRepeatedTerms(t *testing.T) {
	svc := New(testIndex())

	q := parse("drug x and drug x again")
	formed, err := svc.Form(&q, policy.New(nil, nil))
	if err != nil {
		t.Fatalf("Form: %v", err)
	}
	if len(formed) != 1 {
		t.Fatalf("formed %d queries, want 1", len(formed))
	}
	if len(formed[0].EntityIDs()) != 1 {
		t.Errorf("entity ids = %v, want deduped", formed[0].EntityIDs())
	}
	if len(formed[0].Terms()) != 1 {
		t.Errorf("terms = %v, want deduped", formed[0].Terms())
	}
}
