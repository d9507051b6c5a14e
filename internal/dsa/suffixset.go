// Package dsa provides data structures used by the tool layer.
// Uses go-radix for a compressed prefix tree (radix tree).
package dsa

import (
	"strings"

	"github.com/armon/go-radix"
)

// SuffixSet matches dot-separated names against a set of suffixes on label
// boundaries. Names are stored with their labels reversed and a trailing
// separator, so "example.com" is kept as "com.example." and a lookup for
// "api.example.com" walks "com.example.api." from the root.
//
// Time Complexity: O(k) per lookup where k is name length.
type SuffixSet struct {
	tree *radix.Tree
}

// NewSuffixSet builds a set from names. Names are used as given.
func NewSuffixSet(names []string) *SuffixSet {
	tree := radix.New()
	for _, n := range names {
		if n == "" {
			continue
		}
		tree.Insert(reverseLabels(n), struct{}{})
	}
	return &SuffixSet{tree: tree}
}

// Match reports whether name equals a member or ends with "."+member.
func (s *SuffixSet) Match(name string) bool {
	if s == nil || name == "" {
		return false
	}
	found := false
	s.tree.WalkPath(reverseLabels(name), func(string, interface{}) bool {
		found = true
		return true
	})
	return found
}

// Len returns the number of distinct members.
func (s *SuffixSet) Len() int {
	if s == nil {
		return 0
	}
	return s.tree.Len()
}

func reverseLabels(name string) string {
	labels := strings.Split(name, ".")
	var b strings.Builder
	b.Grow(len(name) + 1)
	for i := len(labels) - 1; i >= 0; i-- {
		b.WriteString(labels[i])
		b.WriteByte('.')
	}
	return b.String()
}
