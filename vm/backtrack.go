package vm

// The match engine is a backtracking interpreter over the flat instruction
// stream. Instead of recursion-as-control-flow it keeps an explicit stack of
// jobs: a resume job records an alternative branch and the cursor to retry
// it at, a restore job undoes a capture slot write. Popping the stack on
// failure therefore rewinds both control and capture state transactionally
// per choice point.
//
// A visited bit vector over (instruction, position) pairs prunes
// re-exploration. Matchability at a given pair does not depend on capture
// contents, so pruning is sound, and it guarantees termination even for
// quantified empty-width bodies and for corrupted programs with branch
// cycles.

type jobKind uint8

const (
	jobResume jobKind = iota
	jobRestore
)

type job struct {
	kind jobKind
	pc   int32
	pos  int
	slot int32
	old  int
}

// Match reports whether the program matches the subject, honoring the
// unanchored-search contract: without a leading start anchor, start offsets
// 0 through len(subject) inclusive are attempted in order and the first
// success wins; with one, only offset 0 is attempted.
//
// A nil program is the documented "no compiled pattern" sentinel and
// matches unconditionally, including the empty subject.
//
// On success, capture spans are written to the supplied buffer, one per
// capturing group in group order, up to the buffer's capacity; excess groups
// are still evaluated internally. On failure the buffer is left untouched.
// The program itself is never mutated, so concurrent Match calls against a
// shared program are safe; each call allocates its own scratch state.
func Match(prog *Program, subject []byte, captures []Capture) bool {
	if prog == nil {
		return true
	}
	r := newRun(prog, subject)
	if prog.Anchored {
		return r.attempt(0, captures)
	}
	for start := 0; start <= len(subject); start++ {
		if r.attempt(start, captures) {
			return true
		}
	}
	return false
}

// MatchAt performs a single match attempt with the scan start pinned to the
// given offset. It is the verification step behind prefiltered search: a
// candidate position is only a real match if the program succeeds starting
// exactly there. Offsets outside [0, len(subject)] fail.
func MatchAt(prog *Program, subject []byte, start int, captures []Capture) bool {
	if prog == nil {
		return true
	}
	if start < 0 || start > len(subject) {
		return false
	}
	return newRun(prog, subject).attempt(start, captures)
}

// run is the mutable scratch state for match attempts against one subject:
// cursor and program counter live in the interpreter loop, the job stack
// holds backtrack choice points, and slots holds in-progress capture
// offsets (-1 meaning unset). A run is created fresh per Match call and
// never shared.
type run struct {
	prog    *Program
	subject []byte
	slots   []int
	jobs    []job
	visited []uint64
}

func newRun(prog *Program, subject []byte) *run {
	bits := len(prog.Insts) * (len(subject) + 1)
	return &run{
		prog:    prog,
		subject: subject,
		slots:   make([]int, 2*prog.Groups),
		visited: make([]uint64, (bits+63)/64),
	}
}

// attempt runs one full backtracking search from the given start offset.
// Scratch state is reset so attempts at successive offsets are independent.
func (r *run) attempt(start int, captures []Capture) bool {
	for i := range r.slots {
		r.slots[i] = -1
	}
	for i := range r.visited {
		r.visited[i] = 0
	}
	r.jobs = r.jobs[:0]

	if !r.search(start) {
		return false
	}
	ng := r.prog.Groups
	if len(captures) < ng {
		ng = len(captures)
	}
	for g := 0; g < ng; g++ {
		s, e := r.slots[2*g], r.slots[2*g+1]
		if s >= 0 && e >= s {
			captures[g] = Capture{Start: s, Length: e - s}
		} else {
			captures[g] = Capture{Start: -1}
		}
	}
	return true
}

// search is the interpreter loop. Any inconsistency in the program (an
// out-of-range counter, an unrecognized opcode tag, a capture slot beyond
// the group table) fails closed as an ordinary mismatch, so a program
// corrupted after compilation degrades to "no match" rather than undefined
// behavior.
func (r *run) search(start int) bool {
	insts := r.prog.Insts
	n := len(r.subject)
	pc, pos := 0, start

	for {
		if pc >= 0 && pc < len(insts) && r.visit(pc, pos) {
			inst := &insts[pc]
			switch inst.Op {
			case OpMatch:
				return true

			case OpByte:
				if pos < n && r.subject[pos] == inst.Arg {
					pc++
					pos++
					continue
				}

			case OpAny:
				if pos < n {
					pc++
					pos++
					continue
				}

			case OpClass:
				if pos < n && inst.Set != nil && inst.Set.Contains(r.subject[pos]) {
					pc++
					pos++
					continue
				}

			case OpAssertBegin:
				if pos == 0 {
					pc++
					continue
				}

			case OpAssertEnd:
				if pos == n {
					pc++
					continue
				}

			case OpJmp:
				pc = int(inst.X)
				continue

			case OpSplit:
				r.jobs = append(r.jobs, job{kind: jobResume, pc: inst.Y, pos: pos})
				pc = int(inst.X)
				continue

			case OpSave:
				slot := int(inst.X)
				if slot >= 0 && slot < len(r.slots) {
					r.jobs = append(r.jobs, job{kind: jobRestore, slot: inst.X, old: r.slots[slot]})
					r.slots[slot] = pos
					pc++
					continue
				}
			}
		}

		// Dead end: unwind restore jobs and resume at the most recent
		// untried branch, or report failure when none remain.
		resumed := false
		for len(r.jobs) > 0 {
			j := r.jobs[len(r.jobs)-1]
			r.jobs = r.jobs[:len(r.jobs)-1]
			if j.kind == jobRestore {
				r.slots[j.slot] = j.old
				continue
			}
			pc, pos = int(j.pc), j.pos
			resumed = true
			break
		}
		if !resumed {
			return false
		}
	}
}

// visit marks (pc, pos) and reports whether it was unseen in this attempt.
func (r *run) visit(pc, pos int) bool {
	idx := pc*(len(r.subject)+1) + pos
	w, bit := idx>>6, uint64(1)<<(idx&63)
	if r.visited[w]&bit != 0 {
		return false
	}
	r.visited[w] |= bit
	return true
}
