// Package query models the structured, executable queries formed from
// matched terms.
package query

import "fmt"

// Formed is a structured query ready for execution against the backend
// knowledge store: one per (entity category, doc-type scope) pair with
// at least one surviving term match.
type Formed struct {
	category   string
	docType    string
	entityIDs  []string
	terms      []string
	attributes map[string]string
}

// New validates and creates a formed query.
func New(
	category, docType string,
	entityIDs, terms []string,
	attributes map[string]string,
) (Formed, error) {
	if category == "" {
		return Formed{}, fmt.Errorf("category is required")
	}
	if len(entityIDs) == 0 {
		return Formed{}, fmt.Errorf("at least one entity is required")
	}
	return Formed{
		category:   category,
		docType:    docType,
		entityIDs:  entityIDs,
		terms:      terms,
		attributes: attributes,
	}, nil
}

// Category returns the entity category this query targets.
func (f *Formed) Category() string { return f.category }

// DocType returns the document-type scope, or "" for unscoped.
func (f *Formed) DocType() string { return f.docType }

// EntityIDs returns the knowledge-base entity identifiers.
func (f *Formed) EntityIDs() []string { return f.entityIDs }

// Terms returns the matched surface terms that produced this query.
func (f *Formed) Terms() []string { return f.terms }

// Attributes returns the disambiguating attributes carried from policy.
func (f *Formed) Attributes() map[string]string { return f.attributes }
