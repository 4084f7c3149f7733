// Package literal provides types and operations for representing literal
// byte sequences extracted from compiled patterns.
//
// The primary use case is prefilter optimization for unanchored search: if
// every match of a pattern must begin with one of a small set of literals
// (e.g. "matchthis" from /matchthis(\s+|\S+)!/), candidate start positions
// can be located with fast substring search before the backtracking engine
// is invoked at all.
package literal

import (
	"bytes"
	"sort"
)

// Literal is a concrete byte sequence that some match path of a pattern
// begins with. Complete marks a literal that covers its match path in full,
// as opposed to a prefix cut short by a class, wildcard or repetition.
type Literal struct {
	Bytes    []byte
	Complete bool
}

// NewLiteral creates a Literal from the given bytes and completeness flag.
func NewLiteral(b []byte, complete bool) Literal {
	return Literal{Bytes: b, Complete: complete}
}

// Len returns the length of the literal in bytes.
func (l Literal) Len() int {
	return len(l.Bytes)
}

// String returns a debug representation of the literal.
func (l Literal) String() string {
	if l.Complete {
		return "literal{" + string(l.Bytes) + ", complete=true}"
	}
	return "literal{" + string(l.Bytes) + ", complete=false}"
}

// Seq is a set of alternative literals, one per distinct match-path prefix.
// A non-empty Seq produced by the extractor is exhaustive: every match of
// the originating pattern starts with one of its members, which is what
// makes prefiltering on it sound.
type Seq struct {
	literals []Literal
}

// NewSeq creates a sequence from the given literals.
func NewSeq(lits ...Literal) *Seq {
	return &Seq{literals: lits}
}

// Len returns the number of literals in the sequence.
func (s *Seq) Len() int {
	if s == nil {
		return 0
	}
	return len(s.literals)
}

// Get returns the i-th literal.
func (s *Seq) Get(i int) Literal {
	return s.literals[i]
}

// IsEmpty reports whether the sequence contains no literals.
func (s *Seq) IsEmpty() bool {
	return s.Len() == 0
}

// Minimize removes duplicates and any literal that has another, shorter
// member of the sequence as a prefix. For candidate-position filtering the
// shorter literal subsumes the longer one: wherever the longer occurs, the
// shorter occurs at the same offset.
func (s *Seq) Minimize() {
	if s == nil || len(s.literals) < 2 {
		return
	}
	sort.Slice(s.literals, func(i, j int) bool {
		return bytes.Compare(s.literals[i].Bytes, s.literals[j].Bytes) < 0
	})
	kept := s.literals[:0]
	for _, lit := range s.literals {
		redundant := false
		for _, k := range kept {
			if bytes.HasPrefix(lit.Bytes, k.Bytes) {
				redundant = true
				break
			}
		}
		if !redundant {
			kept = append(kept, lit)
		}
	}
	s.literals = kept
}

// LongestCommonPrefix returns the longest prefix shared by every literal in
// the sequence, or nil for an empty sequence.
func (s *Seq) LongestCommonPrefix() []byte {
	if s.IsEmpty() {
		return nil
	}
	prefix := s.literals[0].Bytes
	for _, lit := range s.literals[1:] {
		prefix = commonPrefix(prefix, lit.Bytes)
		if len(prefix) == 0 {
			break
		}
	}
	return prefix
}

func commonPrefix(a, b []byte) []byte {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[:i]
		}
	}
	return a[:n]
}
