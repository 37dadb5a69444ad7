// Package splice computes minimal single-splice edits between two text
// values. A splice is the universal edit shape consumed by the replicated
// document: a position, a delete count, and an insert string. Every
// component that mutates the document funnels through Compute so that an
// arbitrary old→new transformation reaches the wire as exactly one
// contiguous edit.
//
// All positions and counts are code point (rune) offsets, never byte
// offsets, so multi-byte characters are never split.
package splice

// Op is a single edit against a text sequence: delete Del runes at Pos,
// then insert Insert at Pos. A no-op edit has Del == 0 and Insert == "".
type Op struct {
	Pos    int
	Del    int
	Insert string
}

// IsNoop reports whether applying the op leaves the text unchanged.
func (op Op) IsNoop() bool {
	return op.Del == 0 && op.Insert == ""
}

// Compute returns the minimal Op transforming old into new.
//
// The prefix and suffix scans are maximal: no larger common affix exists.
// The suffix scan only walks the portion of each string beyond the common
// prefix, so a character is never counted twice. When old == new the result
// is (len(old), 0, "") — a no-op positioned at the end of the text.
//
// Compute is total over all input pairs, including empty strings, and runs
// in O(min(len(old), len(new))) plus the size of the inserted slice.
func Compute(old, new string) Op {
	or, nr := []rune(old), []rune(new)

	minLen := len(or)
	if len(nr) < minLen {
		minLen = len(nr)
	}

	prefix := 0
	for prefix < minLen && or[prefix] == nr[prefix] {
		prefix++
	}

	oldRemaining := len(or) - prefix
	newRemaining := len(nr) - prefix
	minRemaining := oldRemaining
	if newRemaining < minRemaining {
		minRemaining = newRemaining
	}

	suffix := 0
	for suffix < minRemaining && or[len(or)-1-suffix] == nr[len(nr)-1-suffix] {
		suffix++
	}

	return Op{
		Pos:    prefix,
		Del:    oldRemaining - suffix,
		Insert: string(nr[prefix : len(nr)-suffix]),
	}
}

// Apply applies op to text and returns the result. Used by the in-memory
// document backend and by tests verifying the round-trip property; the
// replicated backend applies splices on its own side.
//
// Apply panics if op is out of bounds for text; ops produced by Compute
// against the same text are always in bounds.
func Apply(text string, op Op) string {
	r := []rune(text)
	out := make([]rune, 0, len(r)-op.Del+len([]rune(op.Insert)))
	out = append(out, r[:op.Pos]...)
	out = append(out, []rune(op.Insert)...)
	out = append(out, r[op.Pos+op.Del:]...)
	return string(out)
}
