package safety

import (
	"fmt"
	"sort"
	"strings"
)

// MatcherKind selects the search structure used by a TermSet.
type MatcherKind string

const (
	// MatcherAhoCorasick scans the text once regardless of the number of
	// terms.
	MatcherAhoCorasick MatcherKind = "aho-corasick"

	// MatcherSubstring tests each term with strings.Contains in
	// configuration order.
	MatcherSubstring MatcherKind = "substring"
)

// ParseMatcherKind parses a matcher name. The empty string selects
// MatcherAhoCorasick.
func ParseMatcherKind(s string) (MatcherKind, error) {
	switch MatcherKind(strings.ToLower(strings.TrimSpace(s))) {
	case "", MatcherAhoCorasick:
		return MatcherAhoCorasick, nil
	case MatcherSubstring:
		return MatcherSubstring, nil
	default:
		return "", fmt.Errorf("unknown matcher %q (expected %q or %q)", s, MatcherAhoCorasick, MatcherSubstring)
	}
}

// matcher finds configured terms in normalized text. Term indices are
// positions in configuration order.
type matcher interface {
	// first returns the smallest index of a term contained in text.
	first(text string) (int, bool)

	// all returns the indices of every term contained in text, ascending.
	all(text string) []int
}

type substringMatcher struct {
	terms []string
}

func (m *substringMatcher) first(text string) (int, bool) {
	for i, term := range m.terms {
		if strings.Contains(text, term) {
			return i, true
		}
	}
	return -1, false
}

func (m *substringMatcher) all(text string) []int {
	var out []int
	for i, term := range m.terms {
		if strings.Contains(text, term) {
			out = append(out, i)
		}
	}
	return out
}

// acNode is a state of the Aho-Corasick automaton.
type acNode struct {
	next map[byte]int32
	fail int32

	// minOut is the smallest term index recognized in this state, following
	// failure links, or -1.
	minOut int32

	// out lists every term index recognized in this state, following
	// failure links.
	out []int32
}

// ahoCorasick is a byte-level automaton. UTF-8 is self-synchronizing, so a
// byte match of a valid UTF-8 term inside valid UTF-8 text always starts on
// a rune boundary.
type ahoCorasick struct {
	nodes []acNode
}

func newAhoCorasick(terms []string) *ahoCorasick {
	ac := &ahoCorasick{nodes: []acNode{{minOut: -1}}}

	for i, term := range terms {
		state := int32(0)
		for j := 0; j < len(term); j++ {
			b := term[j]
			nx, ok := ac.nodes[state].next[b]
			if !ok {
				ac.nodes = append(ac.nodes, acNode{minOut: -1})
				nx = int32(len(ac.nodes) - 1)
				if ac.nodes[state].next == nil {
					ac.nodes[state].next = make(map[byte]int32)
				}
				ac.nodes[state].next[b] = nx
			}
			state = nx
		}
		node := &ac.nodes[state]
		node.out = append(node.out, int32(i))
		if node.minOut < 0 || int32(i) < node.minOut {
			node.minOut = int32(i)
		}
	}

	ac.link()
	return ac
}

// link computes failure links breadth first and folds the outputs of each
// failure target into its source.
func (ac *ahoCorasick) link() {
	queue := make([]int32, 0, len(ac.nodes))
	for _, child := range sortedChildren(ac.nodes[0].next) {
		ac.nodes[child].fail = 0
		queue = append(queue, child)
	}

	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]

		for _, b := range sortedKeys(ac.nodes[u].next) {
			v := ac.nodes[u].next[b]

			f := ac.nodes[u].fail
			for f != 0 {
				if _, ok := ac.nodes[f].next[b]; ok {
					break
				}
				f = ac.nodes[f].fail
			}
			if nx, ok := ac.nodes[f].next[b]; ok && nx != v {
				ac.nodes[v].fail = nx
			} else {
				ac.nodes[v].fail = 0
			}

			target := &ac.nodes[ac.nodes[v].fail]
			node := &ac.nodes[v]
			if len(target.out) > 0 {
				node.out = mergeSorted(node.out, target.out)
			}
			if target.minOut >= 0 && (node.minOut < 0 || target.minOut < node.minOut) {
				node.minOut = target.minOut
			}

			queue = append(queue, v)
		}
	}
}

func (ac *ahoCorasick) step(state int32, b byte) int32 {
	for {
		if nx, ok := ac.nodes[state].next[b]; ok {
			return nx
		}
		if state == 0 {
			return 0
		}
		state = ac.nodes[state].fail
	}
}

func (ac *ahoCorasick) first(text string) (int, bool) {
	best := int32(-1)
	state := int32(0)
	for i := 0; i < len(text); i++ {
		state = ac.step(state, text[i])
		if m := ac.nodes[state].minOut; m >= 0 && (best < 0 || m < best) {
			best = m
			if best == 0 {
				break
			}
		}
	}
	if best < 0 {
		return -1, false
	}
	return int(best), true
}

func (ac *ahoCorasick) all(text string) []int {
	seen := make(map[int32]struct{})
	state := int32(0)
	for i := 0; i < len(text); i++ {
		state = ac.step(state, text[i])
		for _, idx := range ac.nodes[state].out {
			seen[idx] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return nil
	}

	out := make([]int, 0, len(seen))
	for idx := range seen {
		out = append(out, int(idx))
	}
	sort.Ints(out)
	return out
}

func sortedKeys(m map[byte]int32) []byte {
	keys := make([]byte, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func sortedChildren(m map[byte]int32) []int32 {
	out := make([]int32, 0, len(m))
	for _, k := range sortedKeys(m) {
		out = append(out, m[k])
	}
	return out
}

// mergeSorted merges two ascending index lists without duplicates.
func mergeSorted(a, b []int32) []int32 {
	out := make([]int32, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		switch {
		case j >= len(b) || (i < len(a) && a[i] < b[j]):
			out = append(out, a[i])
			i++
		case i >= len(a) || b[j] < a[i]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}
