package vm

import (
	"errors"
	"testing"
)

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		want    error
	}{
		{"leading star", "*a", ErrDanglingQuantifier},
		{"leading plus", "++??.+*?", ErrDanglingQuantifier},
		{"doubled quantifier", "a**", ErrDanglingQuantifier},
		{"quantified anchor", "^*a", ErrDanglingQuantifier},
		{"unbalanced open", "(a", ErrUnbalancedGroup},
		{"unbalanced close", "a)", ErrUnbalancedGroup},
		{"empty group", "()", ErrEmptyGroup},
		{"empty group nested", "(())()(", ErrEmptyGroup},
		{"unterminated class", "[abc", ErrUnterminatedClass},
		{"second class unterminated", `[\s][`, ErrUnterminatedClass},
		{"trailing escape", `ab\`, ErrTrailingEscape},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, err := Compile([]byte(tt.pattern))
			if prog != nil {
				t.Fatalf("Compile(%q) returned a program alongside an error", tt.pattern)
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("Compile(%q) error = %v, want %v", tt.pattern, err, tt.want)
			}
			var ce *CompileError
			if !errors.As(err, &ce) {
				t.Fatalf("Compile(%q) error is not a *CompileError: %v", tt.pattern, err)
			}
			if ce.Pattern != tt.pattern {
				t.Errorf("CompileError.Pattern = %q, want %q", ce.Pattern, tt.pattern)
			}
		})
	}
}

func TestCompileAnchoredFlag(t *testing.T) {
	tests := []struct {
		pattern  string
		anchored bool
	}{
		{"^abc", true},
		{"abc", false},
		{"", false},
		{"a^bc", false},
		{"^(a|b)$", true},
	}
	for _, tt := range tests {
		prog, err := Compile([]byte(tt.pattern))
		if err != nil {
			t.Fatalf("Compile(%q) failed: %v", tt.pattern, err)
		}
		if prog.Anchored != tt.anchored {
			t.Errorf("Compile(%q).Anchored = %v, want %v", tt.pattern, prog.Anchored, tt.anchored)
		}
	}
}

func TestCompileGroupCount(t *testing.T) {
	tests := []struct {
		pattern string
		groups  int
	}{
		{"abc", 0},
		{"(a)", 1},
		{"(a)(b)", 2},
		{"(a(b)c)", 2},
		{"(a|b)(c)*", 2},
	}
	for _, tt := range tests {
		prog, err := Compile([]byte(tt.pattern))
		if err != nil {
			t.Fatalf("Compile(%q) failed: %v", tt.pattern, err)
		}
		if prog.Groups != tt.groups {
			t.Errorf("Compile(%q).Groups = %d, want %d", tt.pattern, prog.Groups, tt.groups)
		}
	}
}

func TestCompileLiteralProgram(t *testing.T) {
	prog, err := Compile([]byte("ab"))
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	want := []Inst{
		{Op: OpByte, Arg: 'a'},
		{Op: OpByte, Arg: 'b'},
		{Op: OpMatch},
	}
	if len(prog.Insts) != len(want) {
		t.Fatalf("program has %d instructions, want %d", len(prog.Insts), len(want))
	}
	for i, w := range want {
		got := prog.Insts[i]
		if got.Op != w.Op || got.Arg != w.Arg {
			t.Errorf("inst %d = %v, want %v", i, got, w)
		}
	}
}

// The hex escape is decoded before shorthand letters: \dd is the single
// byte 0xdd while \d\64 is the digit class followed by a literal 'd'.
func TestCompileHexEscapePrecedence(t *testing.T) {
	prog, err := Compile([]byte(`\dd`))
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if len(prog.Insts) != 2 || prog.Insts[0].Op != OpByte || prog.Insts[0].Arg != 0xdd {
		t.Fatalf(`\dd did not compile to the single byte 0xdd: %v`, prog.Insts)
	}

	prog, err = Compile([]byte(`\d\64`))
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if len(prog.Insts) != 3 {
		t.Fatalf(`\d\64 compiled to %d instructions, want 3`, len(prog.Insts))
	}
	if prog.Insts[0].Op != OpClass {
		t.Errorf(`\d\64 inst 0 = %v, want digit class`, prog.Insts[0])
	}
	if prog.Insts[1].Op != OpByte || prog.Insts[1].Arg != 'd' {
		t.Errorf(`\d\64 inst 1 = %v, want Byte 'd'`, prog.Insts[1])
	}
}

func TestCompileEscapes(t *testing.T) {
	tests := []struct {
		pattern string
		arg     byte
	}{
		{`\20`, 0x20},
		{`\6d`, 'm'},
		{`\0`, 0},
		{`\n`, '\n'},
		{`\r`, '\r'},
		{`\t`, '\t'},
		{`\v`, '\v'},
		{`\f`, '\f'},
		{`\\`, '\\'},
		{`\.`, '.'},
		{`\$`, '$'},
		{`\(`, '('},
	}
	for _, tt := range tests {
		prog, err := Compile([]byte(tt.pattern))
		if err != nil {
			t.Fatalf("Compile(%q) failed: %v", tt.pattern, err)
		}
		if len(prog.Insts) != 2 || prog.Insts[0].Op != OpByte || prog.Insts[0].Arg != tt.arg {
			t.Errorf("Compile(%q) inst 0 = %v, want Byte %#x", tt.pattern, prog.Insts[0], tt.arg)
		}
	}
}

func TestCompileClassMembership(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		in      []byte
		out     []byte
	}{
		{"plain", "[abc]", []byte("abc"), []byte("dxyz \x00")},
		{"negated", "[^abc]", []byte("dxyz \x00"), []byte("abc")},
		{"dash is a member", "[a-c]", []byte("a-c"), []byte("b")},
		{"digit shorthand", `[\d]`, []byte("059"), []byte("a /")},
		{"mixed escapes", `[\s\0x]`, []byte(" \t\n\x00x"), []byte("ay")},
		{"escaped bracket", `[\]a]`, []byte("]a"), []byte("[b")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, err := Compile([]byte(tt.pattern))
			if err != nil {
				t.Fatalf("Compile(%q) failed: %v", tt.pattern, err)
			}
			if prog.Insts[0].Op != OpClass {
				t.Fatalf("Compile(%q) inst 0 = %v, want class", tt.pattern, prog.Insts[0])
			}
			set := prog.Insts[0].Set
			for _, b := range tt.in {
				if !set.Contains(b) {
					t.Errorf("class %q should contain %q", tt.pattern, b)
				}
			}
			for _, b := range tt.out {
				if set.Contains(b) {
					t.Errorf("class %q should not contain %q", tt.pattern, b)
				}
			}
		})
	}
}

func TestCompileNestingDepthLimit(t *testing.T) {
	deep := make([]byte, 0, 2*(maxNestingDepth+1)+1)
	for i := 0; i <= maxNestingDepth; i++ {
		deep = append(deep, '(')
	}
	deep = append(deep, 'a')
	for i := 0; i <= maxNestingDepth; i++ {
		deep = append(deep, ')')
	}
	if _, err := Compile(deep); !errors.Is(err, ErrNestingTooDeep) {
		t.Fatalf("deeply nested pattern error = %v, want %v", err, ErrNestingTooDeep)
	}
}
