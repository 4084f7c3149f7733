package literal

import (
	"github.com/coregx/bytematch/vm"
)

// ExtractorConfig bounds prefix extraction so complex patterns cannot blow
// up time or memory during compilation.
type ExtractorConfig struct {
	// MaxLiterals limits how many distinct prefixes may be collected
	// before extraction gives up. Default: 64.
	MaxLiterals int

	// MaxLiteralLen limits the length of each collected prefix. Longer
	// prefixes are cut and marked incomplete. Default: 64.
	MaxLiteralLen int

	// MaxClassSize limits character-class expansion: a class with at most
	// this many members is enumerated into alternative prefixes, a larger
	// one cuts the prefix. Default: 10.
	MaxClassSize int
}

// DefaultConfig returns the default extraction limits.
func DefaultConfig() ExtractorConfig {
	return ExtractorConfig{
		MaxLiterals:   64,
		MaxLiteralLen: 64,
		MaxClassSize:  10,
	}
}

// ExtractPrefixes walks a compiled program from its entry point and collects
// the set of literal prefixes that every match must begin with. Branches
// fork at splits, zero-width instructions are skipped, and repetition
// back-edges cut the prefix at the point of the cycle.
//
// The result is nil whenever no usable set exists: if any match path has an
// empty required prefix (the pattern can match starting with an arbitrary
// byte, or can match the empty string), a prefilter built from partial
// knowledge would be unsound.
func ExtractPrefixes(prog *vm.Program, config ExtractorConfig) *Seq {
	if prog == nil || len(prog.Insts) == 0 {
		return nil
	}
	e := &extractor{insts: prog.Insts, config: config}
	e.walk(0, nil, make([]bool, len(prog.Insts)))
	if e.failed || len(e.out) == 0 {
		return nil
	}
	return NewSeq(e.out...)
}

type extractor struct {
	insts  []vm.Inst
	config ExtractorConfig
	out    []Literal
	failed bool
}

// emit terminates one match path with the prefix accumulated so far.
func (e *extractor) emit(cur []byte, complete bool) {
	// An empty prefix means matches can begin with anything (or the
	// pattern matches the empty string): no prefilter can be built.
	if len(cur) == 0 {
		e.failed = true
		return
	}
	if len(e.out) >= e.config.MaxLiterals {
		e.failed = true
		return
	}
	e.out = append(e.out, NewLiteral(cur, complete))
}

// walk follows the instruction stream from pc, extending cur. seen is
// path-local: revisiting an instruction on the same path means a repetition
// back-edge, which ends the literal prefix.
func (e *extractor) walk(pc int, cur []byte, seen []bool) {
	for !e.failed {
		if pc < 0 || pc >= len(e.insts) || seen[pc] {
			e.emit(cur, false)
			return
		}
		seen[pc] = true

		inst := e.insts[pc]
		switch inst.Op {
		case vm.OpMatch:
			e.emit(cur, true)
			return

		case vm.OpByte:
			if len(cur) >= e.config.MaxLiteralLen {
				e.emit(cur, false)
				return
			}
			cur = append(cur, inst.Arg)
			pc++

		case vm.OpClass:
			if inst.Set == nil || inst.Set.Len() > e.config.MaxClassSize ||
				len(cur) >= e.config.MaxLiteralLen {
				e.emit(cur, false)
				return
			}
			for b := 0; b < 256; b++ {
				if inst.Set.Contains(byte(b)) {
					e.walk(pc+1, appendCopy(cur, byte(b)), copySeen(seen))
				}
			}
			return

		case vm.OpSplit:
			e.walk(int(inst.X), cloneBytes(cur), copySeen(seen))
			e.walk(int(inst.Y), cloneBytes(cur), copySeen(seen))
			return

		case vm.OpJmp:
			pc = int(inst.X)

		case vm.OpSave, vm.OpAssertBegin, vm.OpAssertEnd:
			pc++

		default:
			// OpAny, or anything unrecognized: the prefix ends here.
			e.emit(cur, false)
			return
		}
	}
}

func appendCopy(cur []byte, b byte) []byte {
	out := make([]byte, len(cur)+1)
	copy(out, cur)
	out[len(cur)] = b
	return out
}

func cloneBytes(cur []byte) []byte {
	if cur == nil {
		return nil
	}
	out := make([]byte, len(cur))
	copy(out, cur)
	return out
}

func copySeen(seen []bool) []bool {
	out := make([]bool, len(seen))
	copy(out, seen)
	return out
}
