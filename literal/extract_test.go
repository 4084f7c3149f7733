package literal

import (
	"sort"
	"testing"

	"github.com/coregx/bytematch/vm"
)

func extract(t *testing.T, pattern string) *Seq {
	t.Helper()
	prog, err := vm.Compile([]byte(pattern))
	if err != nil {
		t.Fatalf("Compile(%q) failed: %v", pattern, err)
	}
	return ExtractPrefixes(prog, DefaultConfig())
}

func sortedPrefixes(s *Seq) []string {
	out := seqBytes(s)
	sort.Strings(out)
	return out
}

func TestExtractPrefixes(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		want    []string // nil means extraction must fail
	}{
		{"literal", "matchthis!", []string{"matchthis!"}},
		{"group alternation", "foo(bar|baz)", []string{"foobar", "foobaz"}},
		{"top alternation", "cat|dog", []string{"cat", "dog"}},
		{"star cuts", "foo.*", []string{"foo", "foo"}},
		{"plus keeps one", "ab+", []string{"ab", "ab"}},
		{"small class expands", "[ab]c", []string{"ac", "bc"}},
		{"digit class expands", `\dx`, []string{"0x", "1x", "2x", "3x", "4x", "5x", "6x", "7x", "8x", "9x"}},
		{"group is transparent", "(foo)bar", []string{"foobar"}},
		{"anchors are transparent", "^foo$", []string{"foo"}},
		{"escaped literal", `\6datch`, []string{"match"}},

		{"leading wildcard", ".*foo", nil},
		{"leading any", ".foo", nil},
		{"empty matchable", "a*", nil},
		{"leading large class", `\Sfoo`, nil},
		{"empty program", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq := extract(t, tt.pattern)
			if tt.want == nil {
				if seq != nil {
					t.Fatalf("ExtractPrefixes(%q) = %v, want nil", tt.pattern, seqBytes(seq))
				}
				return
			}
			if seq == nil {
				t.Fatalf("ExtractPrefixes(%q) = nil, want %v", tt.pattern, tt.want)
			}
			got := sortedPrefixes(seq)
			if len(got) != len(tt.want) {
				t.Fatalf("ExtractPrefixes(%q) = %v, want %v", tt.pattern, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("ExtractPrefixes(%q) = %v, want %v", tt.pattern, got, tt.want)
				}
			}
		})
	}
}

func TestExtractCompleteness(t *testing.T) {
	seq := extract(t, "foo(bar|baz)")
	for i := 0; i < seq.Len(); i++ {
		if !seq.Get(i).Complete {
			t.Errorf("literal %v should be complete", seq.Get(i))
		}
	}

	seq = extract(t, "foo.+")
	for i := 0; i < seq.Len(); i++ {
		if seq.Get(i).Complete {
			t.Errorf("literal %v should be incomplete", seq.Get(i))
		}
	}
}

func TestExtractLiteralLimit(t *testing.T) {
	// Three chained small classes would expand combinatorially past the
	// literal budget; extraction must give up rather than explode.
	config := DefaultConfig()
	config.MaxLiterals = 8
	prog, err := vm.Compile([]byte("[ab][cd][ef][gh]"))
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if seq := ExtractPrefixes(prog, config); seq != nil {
		t.Fatalf("expected extraction failure, got %v", seqBytes(seq))
	}
}

func TestExtractLengthLimit(t *testing.T) {
	config := DefaultConfig()
	config.MaxLiteralLen = 4
	prog, err := vm.Compile([]byte("abcdefgh"))
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	seq := ExtractPrefixes(prog, config)
	if seq == nil || seq.Len() != 1 {
		t.Fatalf("unexpected extraction result: %v", seqBytes(seq))
	}
	lit := seq.Get(0)
	if string(lit.Bytes) != "abcd" || lit.Complete {
		t.Errorf("length-limited literal = %v, want incomplete \"abcd\"", lit)
	}
}

func TestExtractNilProgram(t *testing.T) {
	if seq := ExtractPrefixes(nil, DefaultConfig()); seq != nil {
		t.Error("nil program must yield no prefixes")
	}
}
