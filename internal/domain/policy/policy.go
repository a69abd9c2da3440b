// Package policy models the resolved access constraints for one request.
package policy

// Policy is the set of category constraints and disambiguating
// attributes governing which matched entities may be searched.
// Immutable for the lifetime of a request.
type Policy struct {
	categories map[string]struct{}
	attributes map[string]string
}

// New creates a policy from an allowed-category list and attributes.
// An empty category list means the policy allows every category.
func New(categories []string, attributes map[string]string) Policy {
	var set map[string]struct{}
	if len(categories) > 0 {
		set = make(map[string]struct{}, len(categories))
		for _, c := range categories {
			set[c] = struct{}{}
		}
	}

	attrs := make(map[string]string, len(attributes))
	for k, v := range attributes {
		attrs[k] = v
	}

	return Policy{categories: set, attributes: attrs}
}

// AllowsCategory reports whether entities of the given category may be
// searched under this policy.
func (p Policy) AllowsCategory(category string) bool {
	if p.categories == nil {
		return true
	}
	_, ok := p.categories[category]
	return ok
}

// Attributes returns a copy of the policy's disambiguating attributes.
func (p Policy) Attributes() map[string]string {
	out := make(map[string]string, len(p.attributes))
	for k, v := range p.attributes {
		out[k] = v
	}
	return out
}

// Categories returns the allowed categories, nil meaning unrestricted.
func (p Policy) Categories() []string {
	if p.categories == nil {
		return nil
	}
	out := make([]string, 0, len(p.categories))
	for c := range p.categories {
		out = append(out, c)
	}
	return out
}
