package safety

// TermSource supplies the term set used for a single check. Implementations
// must return a complete, immutable snapshot.
type TermSource interface {
	TermSet() *TermSet
}

// Result is the outcome of a content check: either clean or a violation
// carrying the first matching term in configuration order.
type Result struct {
	// Violation is true when a prohibited term was found.
	Violation bool `json:"violation"`

	// Term is the matched canonical term (empty when clean).
	Term string `json:"term,omitempty"`

	// Category is the matched term's category (empty when clean).
	Category string `json:"category,omitempty"`
}

// Clean reports whether no prohibited term was found.
func (r Result) Clean() bool {
	return !r.Violation
}

// ValidationResult is the outcome of validating a listing's title and
// description together.
type ValidationResult struct {
	Valid         bool   `json:"valid"`
	ViolatingTerm string `json:"violating_term,omitempty"`
	Category      string `json:"category,omitempty"`
}

// Filter checks user text against prohibited terms.
//
// Matching is by substring on the normalized text, not by whole word. This
// catches terms embedded in longer words and, by the same rule, flags
// innocent words that happen to contain a term. Keep that in mind when
// adding short terms to a dictionary.
//
// A Filter is safe for concurrent use. Each call reads one snapshot from its
// TermSource, so a concurrent reload is observed either entirely or not at
// all.
type Filter struct {
	source TermSource
}

// NewFilter creates a filter reading terms from source (a *TermSet or a
// *Store).
func NewFilter(source TermSource) *Filter {
	return &Filter{source: source}
}

// TermSet returns the snapshot the next check would use.
func (f *Filter) TermSet() *TermSet {
	if f == nil || f.source == nil {
		return nil
	}
	return f.source.TermSet()
}

// Check normalizes text and returns the first prohibited term it contains,
// in configuration order. It never fails; empty text is clean.
func (f *Filter) Check(text string) Result {
	term, ok := f.TermSet().firstMatch(Normalize(text))
	if !ok {
		return Result{}
	}
	return Result{Violation: true, Term: term.Text, Category: term.Category}
}

// CheckAll returns every prohibited term contained in text, in
// configuration order.
func (f *Filter) CheckAll(text string) []Term {
	return f.TermSet().allMatches(Normalize(text))
}

// Validate checks a listing's title and description joined by a single
// space. A term split across the two fields ("fu" + "ck") is not detected.
func (f *Filter) Validate(title, description string) ValidationResult {
	res := f.Check(title + " " + description)
	if res.Clean() {
		return ValidationResult{Valid: true}
	}
	return ValidationResult{ViolatingTerm: res.Term, Category: res.Category}
}
