package safety

// Categories of prohibited terms shipped with the default dictionary.
// Dictionaries may define their own.
const (
	CategoryProfanity  = "profanity"
	CategorySlur       = "slur"
	CategoryHateSpeech = "hate_speech"
	CategorySexual     = "sexual"
	CategoryCustom     = "custom"
)

// Term is a prohibited term with its provenance.
type Term struct {
	// Text is the canonical (normalized) form matched against user text.
	Text string `json:"text" yaml:"text"`

	// Category groups terms for reporting (profanity, slur, ...).
	Category string `json:"category,omitempty" yaml:"category,omitempty"`

	// Language is the ISO 639-1 code of the term's source language.
	Language string `json:"language,omitempty" yaml:"language,omitempty"`
}

// TermSet is an immutable, ordered set of prohibited terms.
//
// Terms are canonicalized with Normalize on construction so that they share
// the alphabet of normalized user text. Terms that normalize to the empty
// string are dropped, and duplicates keep their first position. A TermSet is
// safe for concurrent use; a nil *TermSet matches nothing.
type TermSet struct {
	terms   []Term
	kind    MatcherKind
	matcher matcher
}

// NewTermSet builds a TermSet. Configuration order is the order of terms.
// An empty kind selects MatcherAhoCorasick.
func NewTermSet(terms []Term, kind MatcherKind) (*TermSet, error) {
	kind, err := ParseMatcherKind(string(kind))
	if err != nil {
		return nil, err
	}

	canonical := make([]Term, 0, len(terms))
	texts := make([]string, 0, len(terms))
	seen := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		text := Normalize(t.Text)
		if text == "" {
			continue
		}
		if _, dup := seen[text]; dup {
			continue
		}
		seen[text] = struct{}{}
		t.Text = text
		canonical = append(canonical, t)
		texts = append(texts, text)
	}

	ts := &TermSet{terms: canonical, kind: kind}
	switch kind {
	case MatcherSubstring:
		ts.matcher = &substringMatcher{terms: texts}
	default:
		ts.matcher = newAhoCorasick(texts)
	}
	return ts, nil
}

// MustTermSet is like NewTermSet but panics on error. Intended for tests
// and package-level defaults.
func MustTermSet(terms []Term, kind MatcherKind) *TermSet {
	ts, err := NewTermSet(terms, kind)
	if err != nil {
		panic(err)
	}
	return ts
}

// TermsFromStrings wraps plain strings as terms of one category.
func TermsFromStrings(category string, texts ...string) []Term {
	out := make([]Term, len(texts))
	for i, text := range texts {
		out[i] = Term{Text: text, Category: category}
	}
	return out
}

// Len returns the number of distinct terms.
func (ts *TermSet) Len() int {
	if ts == nil {
		return 0
	}
	return len(ts.terms)
}

// Terms returns a copy of the canonical terms in configuration order.
func (ts *TermSet) Terms() []Term {
	if ts == nil {
		return nil
	}
	out := make([]Term, len(ts.terms))
	copy(out, ts.terms)
	return out
}

// Matcher returns the search strategy in use.
func (ts *TermSet) Matcher() MatcherKind {
	if ts == nil {
		return ""
	}
	return ts.kind
}

// TermSet lets a *TermSet serve as its own TermSource.
func (ts *TermSet) TermSet() *TermSet {
	return ts
}

// firstMatch returns the first term, in configuration order, contained in
// normalized text.
func (ts *TermSet) firstMatch(normalized string) (Term, bool) {
	if ts == nil || normalized == "" || len(ts.terms) == 0 {
		return Term{}, false
	}
	idx, ok := ts.matcher.first(normalized)
	if !ok {
		return Term{}, false
	}
	return ts.terms[idx], true
}

func (ts *TermSet) allMatches(normalized string) []Term {
	if ts == nil || normalized == "" || len(ts.terms) == 0 {
		return nil
	}
	indices := ts.matcher.all(normalized)
	if len(indices) == 0 {
		return nil
	}
	out := make([]Term, len(indices))
	for i, idx := range indices {
		out[i] = ts.terms[idx]
	}
	return out
}
