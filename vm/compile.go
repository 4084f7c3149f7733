package vm

import (
	"github.com/coregx/bytematch/internal/conv"
)

// maxPatternLen bounds the accepted pattern size so that instruction indices
// always fit in int32. Each pattern byte expands to at most a handful of
// instructions.
const maxPatternLen = 1 << 28

// maxNestingDepth bounds group nesting during the recursive descent so a
// hostile pattern cannot exhaust the call stack.
const maxNestingDepth = 250

// Predefined shorthand class bitmaps. The whitespace set covers space, tab,
// LF, VT, FF and CR.
var (
	digitSet    ByteSet
	nonDigitSet ByteSet
	spaceSet    ByteSet
	nonSpaceSet ByteSet
)

func init() {
	for b := '0'; b <= '9'; b++ {
		digitSet.Add(byte(b))
	}
	nonDigitSet = digitSet
	nonDigitSet.Negate()

	for _, b := range []byte{' ', '\t', '\n', '\v', '\f', '\r'} {
		spaceSet.Add(b)
	}
	nonSpaceSet = spaceSet
	nonSpaceSet.Negate()
}

// Compile parses a pattern and produces an executable Program, or a
// *CompileError describing the structural violation. It is a pure function
// of the pattern bytes: no I/O, no global state.
//
// Compilation and instruction emission happen in a single left-to-right
// recursive-descent scan; branch targets for quantifiers and alternation are
// patched as fragment extents become known. Either a fully valid program is
// returned or none at all.
func Compile(pattern []byte) (*Program, error) {
	if len(pattern) > maxPatternLen {
		return nil, &CompileError{Pos: 0, Err: ErrProgramTooLarge}
	}
	c := &compiler{pattern: pattern}
	f, err := c.alternate(false)
	if err != nil {
		return nil, err
	}
	insts := append(f, Inst{Op: OpMatch})
	return &Program{
		Insts:    insts,
		Groups:   c.groups,
		Anchored: len(pattern) > 0 && pattern[0] == '^',
	}, nil
}

type compiler struct {
	pattern []byte
	pos     int
	groups  int
	depth   int
}

func (c *compiler) fail(err error) error {
	return &CompileError{Pattern: string(c.pattern), Pos: c.pos, Err: err}
}

func (c *compiler) eof() bool {
	return c.pos >= len(c.pattern)
}

// alternate parses branch '|' branch '|' ... at the current grouping level.
// The left branch of every alternation is preferred by the match engine.
func (c *compiler) alternate(inGroup bool) (frag, error) {
	c.depth++
	defer func() { c.depth-- }()
	if c.depth > maxNestingDepth {
		return nil, c.fail(ErrNestingTooDeep)
	}

	f, err := c.concat(inGroup)
	if err != nil {
		return nil, err
	}
	for !c.eof() && c.pattern[c.pos] == '|' {
		c.pos++
		g, err := c.concat(inGroup)
		if err != nil {
			return nil, err
		}
		f = alternateFrag(f, g)
	}
	return f, nil
}

// concat parses a run of quantified atoms. The most recent atom is kept
// apart from the accumulated prefix so a trailing quantifier can wrap it.
func (c *compiler) concat(inGroup bool) (frag, error) {
	var prefix, last frag
	quantifiable := false

	for !c.eof() {
		switch ch := c.pattern[c.pos]; ch {
		case '|':
			return catFrag(prefix, last), nil

		case ')':
			if !inGroup {
				return nil, c.fail(ErrUnbalancedGroup)
			}
			return catFrag(prefix, last), nil

		case '*', '+', '?':
			if !quantifiable {
				return nil, c.fail(ErrDanglingQuantifier)
			}
			c.pos++
			lazy := false
			if !c.eof() && c.pattern[c.pos] == '?' {
				lazy = true
				c.pos++
			}
			last = quantifyFrag(last, ch, lazy)
			quantifiable = false

		default:
			atom, q, err := c.atom()
			if err != nil {
				return nil, err
			}
			prefix = catFrag(prefix, last)
			last = atom
			quantifiable = q
		}
	}
	return catFrag(prefix, last), nil
}

// atom parses one grammar atom and reports whether a quantifier may follow.
func (c *compiler) atom() (frag, bool, error) {
	switch ch := c.pattern[c.pos]; ch {
	case '(':
		c.pos++
		group := c.groups
		c.groups++
		inner, err := c.alternate(true)
		if err != nil {
			return nil, false, err
		}
		if c.eof() || c.pattern[c.pos] != ')' {
			return nil, false, c.fail(ErrUnbalancedGroup)
		}
		c.pos++
		if len(inner) == 0 {
			return nil, false, c.fail(ErrEmptyGroup)
		}
		return groupFrag(inner, group), true, nil

	case '[':
		set, err := c.class()
		if err != nil {
			return nil, false, err
		}
		return frag{{Op: OpClass, Set: set}}, true, nil

	case '.':
		c.pos++
		return frag{{Op: OpAny}}, true, nil

	case '^':
		c.pos++
		return frag{{Op: OpAssertBegin}}, false, nil

	case '$':
		c.pos++
		return frag{{Op: OpAssertEnd}}, false, nil

	case '\\':
		b, set, err := c.escape()
		if err != nil {
			return nil, false, err
		}
		if set != nil {
			return frag{{Op: OpClass, Set: set}}, true, nil
		}
		return frag{{Op: OpByte, Arg: b}}, true, nil

	default:
		c.pos++
		return frag{{Op: OpByte, Arg: ch}}, true, nil
	}
}

// class parses a bracket expression. The cursor is on '['. Membership is
// assembled into an explicit bitmap at compile time; an initial '^' negates
// the finished set. Byte ranges ('a-z') are not part of the grammar: '-' is
// an ordinary member.
func (c *compiler) class() (*ByteSet, error) {
	c.pos++
	negate := false
	if !c.eof() && c.pattern[c.pos] == '^' {
		negate = true
		c.pos++
	}
	set := new(ByteSet)
	for {
		if c.eof() {
			return nil, c.fail(ErrUnterminatedClass)
		}
		switch ch := c.pattern[c.pos]; ch {
		case ']':
			c.pos++
			if negate {
				set.Negate()
			}
			return set, nil
		case '\\':
			b, sub, err := c.escape()
			if err != nil {
				return nil, err
			}
			if sub != nil {
				set.AddSet(sub)
			} else {
				set.Add(b)
			}
		default:
			set.Add(ch)
			c.pos++
		}
	}
}

// escape decodes a backslash escape. The cursor is on the backslash. It
// yields either a literal byte or, for the shorthand classes, a fresh
// membership bitmap.
//
// Two hex digits are checked before anything else, so a literal byte can
// always be spelled numerically when it would otherwise fuse with a
// following shorthand letter ("\d\64" is the digit class followed by the
// byte 0x64, while "\dd" is the single byte 0xdd).
func (c *compiler) escape() (byte, *ByteSet, error) {
	if c.pos+1 >= len(c.pattern) {
		return 0, nil, c.fail(ErrTrailingEscape)
	}
	if c.pos+2 < len(c.pattern) {
		hi, okHi := hexDigit(c.pattern[c.pos+1])
		lo, okLo := hexDigit(c.pattern[c.pos+2])
		if okHi && okLo {
			c.pos += 3
			return hi<<4 | lo, nil, nil
		}
	}

	e := c.pattern[c.pos+1]
	c.pos += 2
	switch e {
	case 'd':
		s := digitSet
		return 0, &s, nil
	case 'D':
		s := nonDigitSet
		return 0, &s, nil
	case 's':
		s := spaceSet
		return 0, &s, nil
	case 'S':
		s := nonSpaceSet
		return 0, &s, nil
	case 'n':
		return '\n', nil, nil
	case 'r':
		return '\r', nil, nil
	case 't':
		return '\t', nil, nil
	case 'v':
		return '\v', nil, nil
	case 'f':
		return '\f', nil, nil
	case '0':
		return 0, nil, nil
	default:
		// Any other escaped byte is itself, covering \\ and escaped
		// metacharacters.
		return e, nil, nil
	}
}

func hexDigit(b byte) (byte, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	}
	return 0, false
}

// frag is a compiled sub-program whose branch targets are relative to its
// own first instruction. Combinators shift targets as fragments are
// embedded into larger ones.
type frag []Inst

// shiftFrag rebases all branch targets in f by delta. OpSave carries a
// capture slot in X, not a target, and is left alone.
func shiftFrag(f frag, delta int32) {
	for i := range f {
		switch f[i].Op {
		case OpSplit:
			f[i].X += delta
			f[i].Y += delta
		case OpJmp:
			f[i].X += delta
		}
	}
}

// catFrag concatenates two fragments.
func catFrag(a, b frag) frag {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}
	shiftFrag(b, conv.IntToInt32(len(a)))
	return append(a, b...)
}

// alternateFrag compiles a|b. The split prefers the left branch; the right
// branch is reached only by backtracking.
//
//	0:          Split 1, len(a)+2
//	1..:        a
//	len(a)+1:   Jmp end
//	len(a)+2..: b
func alternateFrag(a, b frag) frag {
	na, nb := len(a), len(b)
	out := make(frag, 0, na+nb+2)
	out = append(out, Inst{Op: OpSplit, X: 1, Y: conv.IntToInt32(na + 2)})
	shiftFrag(a, 1)
	out = append(out, a...)
	out = append(out, Inst{Op: OpJmp, X: conv.IntToInt32(na + nb + 2)})
	shiftFrag(b, conv.IntToInt32(na+2))
	out = append(out, b...)
	return out
}

// quantifyFrag wraps the preceding atom or group in a repetition construct.
// Greediness is encoded by split target order alone: the preferred branch
// goes in X.
func quantifyFrag(f frag, op byte, lazy bool) frag {
	n := len(f)
	switch op {
	case '*':
		// 0: Split body/exit   1..n: body   n+1: Jmp 0
		out := make(frag, 0, n+2)
		body, exit := int32(1), conv.IntToInt32(n+2)
		if lazy {
			body, exit = exit, body
		}
		out = append(out, Inst{Op: OpSplit, X: body, Y: exit})
		shiftFrag(f, 1)
		out = append(out, f...)
		out = append(out, Inst{Op: OpJmp, X: 0})
		return out

	case '+':
		// 0..n-1: body   n: Split body/exit
		loop, exit := int32(0), conv.IntToInt32(n+1)
		if lazy {
			loop, exit = exit, loop
		}
		return append(f, Inst{Op: OpSplit, X: loop, Y: exit})

	default: // '?'
		// 0: Split body/exit   1..n: body
		out := make(frag, 0, n+1)
		body, exit := int32(1), conv.IntToInt32(n+1)
		if lazy {
			body, exit = exit, body
		}
		out = append(out, Inst{Op: OpSplit, X: body, Y: exit})
		shiftFrag(f, 1)
		out = append(out, f...)
		return out
	}
}

// groupFrag brackets a fragment with capture slot writes for group g.
func groupFrag(f frag, g int) frag {
	out := make(frag, 0, len(f)+2)
	out = append(out, Inst{Op: OpSave, X: conv.IntToInt32(2 * g)})
	shiftFrag(f, 1)
	out = append(out, f...)
	out = append(out, Inst{Op: OpSave, X: conv.IntToInt32(2*g + 1)})
	return out
}
