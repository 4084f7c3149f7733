// Package prefilter provides fast candidate filtering for unanchored
// pattern search using extracted literal sequences.
//
// A prefilter scans the subject for the literal prefixes every match must
// begin with and yields candidate start positions. The backtracking engine
// then verifies each candidate; positions between candidates are skipped
// entirely, which is the dominant cost of unanchored search for literal-
// bearing patterns.
//
// Strategy selection mirrors the shape of the extracted sequence:
//   - single one-byte literal  → byte search (bytes.IndexByte)
//   - single literal           → substring search (bytes.Index)
//   - several literals         → Aho-Corasick automaton, or a shared-
//     prefix scan when one literal occurs inside another
package prefilter

import (
	"bytes"

	"github.com/coregx/ahocorasick"

	"github.com/coregx/bytematch/literal"
)

// Prefilter locates candidate match positions before the full engine runs.
type Prefilter interface {
	// Find returns the index of the first candidate at or after start,
	// or -1 if none exists. A candidate is a position where one of the
	// prefilter's literals occurs; the caller must verify it with the
	// full engine.
	Find(haystack []byte, start int) int
}

// FromSeq builds a prefilter for the given literal sequence, or nil when
// the sequence cannot support one (nil, empty, or containing an empty
// literal). The sequence is minimized in place first.
func FromSeq(seq *literal.Seq) Prefilter {
	if seq == nil || seq.IsEmpty() {
		return nil
	}
	seq.Minimize()
	for i := 0; i < seq.Len(); i++ {
		if seq.Get(i).Len() == 0 {
			return nil
		}
	}

	if seq.Len() == 1 {
		needle := seq.Get(0).Bytes
		if len(needle) == 1 {
			return &bytePrefilter{needle: needle[0]}
		}
		return &substringPrefilter{needle: needle}
	}

	// The automaton reports the occurrence that ends first. That is the
	// earliest-starting one only when no literal occurs inside another at
	// a nonzero offset; otherwise an inner occurrence can be reported
	// ahead of an outer one that starts earlier, and the verification
	// loop would advance past the real match start.
	if overlapping(seq) {
		return prefixFallback(seq)
	}

	builder := ahocorasick.NewBuilder()
	for i := 0; i < seq.Len(); i++ {
		builder.AddPattern(seq.Get(i).Bytes)
	}
	auto, err := builder.Build()
	if err != nil {
		return prefixFallback(seq)
	}
	return &multiPrefilter{auto: auto}
}

// overlapping reports whether any literal in the sequence contains another
// at a nonzero offset. Prefix containment is harmless (both occurrences
// share a start, and Minimize removes it anyway).
func overlapping(seq *literal.Seq) bool {
	for i := 0; i < seq.Len(); i++ {
		for j := 0; j < seq.Len(); j++ {
			if i == j {
				continue
			}
			if bytes.Index(seq.Get(i).Bytes, seq.Get(j).Bytes) > 0 {
				return true
			}
		}
	}
	return false
}

// prefixFallback scans for the sequence's shared prefix when it has one,
// otherwise lets the engine scan every offset.
func prefixFallback(seq *literal.Seq) Prefilter {
	if lcp := seq.LongestCommonPrefix(); len(lcp) > 0 {
		return &substringPrefilter{needle: lcp}
	}
	return nil
}

// bytePrefilter finds occurrences of a single byte.
type bytePrefilter struct {
	needle byte
}

func (p *bytePrefilter) Find(haystack []byte, start int) int {
	if start < 0 || start > len(haystack) {
		return -1
	}
	i := bytes.IndexByte(haystack[start:], p.needle)
	if i < 0 {
		return -1
	}
	return start + i
}

// substringPrefilter finds occurrences of a single literal.
type substringPrefilter struct {
	needle []byte
}

func (p *substringPrefilter) Find(haystack []byte, start int) int {
	if start < 0 || start > len(haystack) {
		return -1
	}
	i := bytes.Index(haystack[start:], p.needle)
	if i < 0 {
		return -1
	}
	return start + i
}

// multiPrefilter finds occurrences of any of several literals with an
// Aho-Corasick automaton.
type multiPrefilter struct {
	auto *ahocorasick.Automaton
}

func (p *multiPrefilter) Find(haystack []byte, start int) int {
	if start < 0 || start > len(haystack) {
		return -1
	}
	m := p.auto.Find(haystack, start)
	if m == nil {
		return -1
	}
	return m.Start
}
