package safety

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DictionaryVersion is the only dictionary format version understood.
const DictionaryVersion = 1

//go:embed dictionaries/default.yaml
var defaultDictionaryYAML []byte

// Dictionary is the on-disk form of a prohibited-term list.
type Dictionary struct {
	Version    int             `yaml:"version"`
	Categories []CategoryEntry `yaml:"categories"`
}

// CategoryEntry is a list of terms sharing a category and language.
type CategoryEntry struct {
	Name     string   `yaml:"name"`
	Language string   `yaml:"language"`
	Terms    []string `yaml:"terms"`
}

// DictionaryError reports a dictionary that could not be read or parsed.
type DictionaryError struct {
	// Path is the dictionary file, or empty for in-memory data.
	Path string

	// Message describes the problem.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *DictionaryError) Error() string {
	where := "dictionary"
	if e.Path != "" {
		where = fmt.Sprintf("dictionary %q", e.Path)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", where, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", where, e.Message)
}

// Unwrap returns the underlying error.
func (e *DictionaryError) Unwrap() error {
	return e.Cause
}

// ParseDictionary decodes a YAML dictionary. Unknown fields are rejected.
func ParseDictionary(data []byte) (*Dictionary, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var d Dictionary
	if err := dec.Decode(&d); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &DictionaryError{Message: "empty document"}
		}
		return nil, &DictionaryError{Message: "invalid YAML", Cause: err}
	}

	if d.Version != DictionaryVersion {
		return nil, &DictionaryError{Message: fmt.Sprintf("unsupported version %d (expected %d)", d.Version, DictionaryVersion)}
	}
	for i, c := range d.Categories {
		if strings.TrimSpace(c.Name) == "" {
			return nil, &DictionaryError{Message: fmt.Sprintf("categories[%d]: name is required", i)}
		}
	}
	return &d, nil
}

// LoadDictionary reads and parses the dictionary at path.
func LoadDictionary(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &DictionaryError{Path: path, Message: "read failed", Cause: err}
	}
	d, err := ParseDictionary(data)
	if err != nil {
		var de *DictionaryError
		if errors.As(err, &de) {
			de.Path = path
		}
		return nil, err
	}
	return d, nil
}

// DefaultDictionary returns the built-in English and German dictionary.
func DefaultDictionary() *Dictionary {
	d, err := ParseDictionary(defaultDictionaryYAML)
	if err != nil {
		panic(fmt.Sprintf("safety: embedded dictionary is invalid: %v", err))
	}
	return d
}

// Terms flattens the dictionary in configuration order: categories in file
// order, terms in list order.
func (d *Dictionary) Terms() []Term {
	if d == nil {
		return nil
	}
	var out []Term
	for _, c := range d.Categories {
		for _, text := range c.Terms {
			out = append(out, Term{Text: text, Category: c.Name, Language: c.Language})
		}
	}
	return out
}

// LintIssue is a problem found in a dictionary entry. Issues do not prevent
// loading; the term set silently canonicalizes or drops such entries.
type LintIssue struct {
	Category string `json:"category"`
	Term     string `json:"term"`
	Message  string `json:"message"`
}

func (i LintIssue) String() string {
	return fmt.Sprintf("%s: %q: %s", i.Category, i.Term, i.Message)
}

// Lint reports entries that would be dropped or rewritten by NewTermSet.
func (d *Dictionary) Lint() []LintIssue {
	var issues []LintIssue
	seen := make(map[string]string)

	for _, t := range d.Terms() {
		canonical := Normalize(t.Text)
		switch {
		case canonical == "":
			issues = append(issues, LintIssue{Category: t.Category, Term: t.Text, Message: "normalizes to the empty string and is ignored"})
			continue
		case canonical != t.Text:
			issues = append(issues, LintIssue{Category: t.Category, Term: t.Text, Message: fmt.Sprintf("is matched as %q", canonical)})
		}
		if first, dup := seen[canonical]; dup {
			issues = append(issues, LintIssue{Category: t.Category, Term: t.Text, Message: fmt.Sprintf("duplicates %q and is ignored", first)})
			continue
		}
		seen[canonical] = t.Text
		if len([]rune(canonical)) < 3 {
			issues = append(issues, LintIssue{Category: t.Category, Term: t.Text, Message: "is very short and will match inside many innocent words"})
		}
	}
	return issues
}
