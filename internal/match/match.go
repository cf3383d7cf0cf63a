// Package match holds the matcher-agnostic driver shared by both the
// suffix-array (strong) and block-hash (fast) matchers (spec §9: "the two
// matcher variants share a single interface"). The driver walks N left to
// right, emitting Copy instructions for matches at or above minMatch and
// merging everything else into Add runs, with one-step lazy lookahead.
package match

import "github.com/woozymasta/xdelta/internal/instr"

// Matcher answers "what's the longest match for n[j:] found in the base
// sequence this matcher was built over?" offset/length; length 0 means no
// match at or above minMatch was found. Both suffixarray.Index and
// fastmatch.Index satisfy this.
type Matcher interface {
	LongestMatch(n []byte, j int, minMatch int) (offset, length int)
}

// Run performs the greedy walk over n described in spec §4.3: at each
// position, query the matcher; if the match is long enough, probe one
// position ahead and prefer that one if it is more than one byte longer
// (lazy lookahead), then emit a Copy and merge any pending literal bytes into a
// preceding Add; otherwise accumulate the byte into the current literal
// run. It does not perform global (shortest-path) optimization — greedy
// with one-step lookahead is a correctness-preserving, implementation-
// quality heuristic, not a spec requirement.
func Run(m Matcher, n []byte, minMatch int) []instr.Instruction {
	var out []instr.Instruction
	var literal []byte

	flushLiteral := func() {
		if len(literal) > 0 {
			out = append(out, instr.Add(literal))
			literal = nil
		}
	}

	j := 0
	for j < len(n) {
		offset, length := m.LongestMatch(n, j, minMatch)
		if length == 0 {
			literal = append(literal, n[j])
			j++
			continue
		}

		// Lazy lookahead: if the match at j+1 is strictly longer than
		// length+1, it dominates even after paying for one extra literal
		// byte at j, so prefer it (spec §4.3 point 3).
		if j+1 < len(n) {
			if nextOffset, nextLength := m.LongestMatch(n, j+1, minMatch); nextLength > length+1 {
				literal = append(literal, n[j])
				j++
				_ = nextOffset // re-queried on the next loop iteration
				continue
			}
		}

		flushLiteral()
		out = append(out, instr.Copy(uint64(offset), uint64(length)))
		j += length
	}

	flushLiteral()
	return out
}
