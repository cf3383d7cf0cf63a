// Package suffixarray implements the strong-path matcher (spec §4.3): a
// suffix array built once over the base sequence, answering "longest prefix
// of N[j..] that occurs in B" queries via binary search over the array.
package suffixarray

import "sort"

// Index is a suffix array over a fixed base byte sequence, with an
// auxiliary LCP array (Kasai's algorithm). Longest-match queries find the
// match length by direct byte comparison against the binary-search
// neighborhood rather than through the LCP array; the LCP array is used
// only afterwards, to walk the run of suffixes sharing that match and pick
// the smallest base offset among them.
type Index struct {
	base []byte
	sa   []int32 // sa[i] = starting offset in base of the i-th suffix in lexicographic order
	rank []int32 // rank[pos] = index of that suffix within sa
	lcp  []int32 // lcp[i] = length of common prefix between sa[i-1] and sa[i]; lcp[0] unused
}

// Build constructs a suffix array and LCP array over base using the
// prefix-doubling algorithm (O(n log^2 n) comparisons via sort.Slice).
func Build(base []byte) *Index {
	n := len(base)
	idx := &Index{base: base}
	if n == 0 {
		return idx
	}

	sa := make([]int32, n)
	rank := make([]int32, n)
	tmp := make([]int32, n)

	for i := range sa {
		sa[i] = int32(i)
		rank[i] = int32(base[i])
	}

	for k := 1; k < n; k *= 2 {
		rk := rank
		cmp := func(a, b int32) bool {
			if rk[a] != rk[b] {
				return rk[a] < rk[b]
			}
			ra, rb := int32(-1), int32(-1)
			if int(a)+k < n {
				ra = rk[a+int32(k)]
			}
			if int(b)+k < n {
				rb = rk[b+int32(k)]
			}
			return ra < rb
		}

		sort.Slice(sa, func(i, j int) bool { return cmp(sa[i], sa[j]) })

		tmp[sa[0]] = 0
		for i := 1; i < n; i++ {
			tmp[sa[i]] = tmp[sa[i-1]]
			if cmp(sa[i-1], sa[i]) {
				tmp[sa[i]]++
			}
		}
		copy(rank, tmp)

		if int(rank[sa[n-1]]) == n-1 {
			break
		}
	}
	if n == 1 {
		rank[0] = 0 // the doubling loop never ran, so rank still holds the byte value
	}

	idx.sa = sa
	idx.rank = rank
	idx.lcp = kasaiLCP(base, sa, rank)
	return idx
}

// kasaiLCP computes the LCP array in O(n) given the suffix array and its
// rank (inverse) array.
func kasaiLCP(base []byte, sa, rank []int32) []int32 {
	n := len(base)
	lcp := make([]int32, n)
	h := 0
	for i := 0; i < n; i++ {
		r := rank[i]
		if r == 0 {
			h = 0
			continue
		}
		j := sa[r-1]
		for int(i)+h < n && int(j)+h < n && base[int(i)+h] == base[int(j)+h] {
			h++
		}
		lcp[r] = int32(h)
		if h > 0 {
			h--
		}
	}
	return lcp
}

// commonPrefixLen returns the length of the common prefix of base[pos:] and n.
func commonPrefixLen(base []byte, pos int, n []byte) int {
	limit := len(base) - pos
	if len(n) < limit {
		limit = len(n)
	}
	i := 0
	for i < limit && base[pos+i] == n[i] {
		i++
	}
	return i
}

// LongestMatch returns the longest match for n[j:] found anywhere in the
// base sequence, plus its offset. minMatch rejects matches shorter than
// that floor (length is returned as 0 in that case). Ties between equally
// long matches are broken toward the smallest base offset (spec §4.3).
func (idx *Index) LongestMatch(n []byte, j int, minMatch int) (offset, length int) {
	if len(idx.sa) == 0 || j >= len(n) {
		return 0, 0
	}

	target := n[j:]

	// Binary search for the lexicographic insertion point of target among
	// the suffixes of base.
	lo, hi := 0, len(idx.sa)
	for lo < hi {
		mid := (lo + hi) / 2
		if lessSuffixTarget(idx.base, idx.sa[mid], target) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}

	// The classic suffix-array pattern-matching lemma: the maximum LCP
	// between target and any suffix of base is attained by the immediate
	// predecessor or successor of target's insertion point.
	bestLen, bestIdx := 0, -1
	for _, cand := range [2]int{lo - 1, lo} {
		if cand < 0 || cand >= len(idx.sa) {
			continue
		}
		l := commonPrefixLen(idx.base, int(idx.sa[cand]), target)
		if l > bestLen {
			bestLen = l
			bestIdx = cand
		}
	}

	if bestLen < minMatch || bestIdx < 0 {
		return 0, 0
	}

	// Multiple base positions can share this same longest match; the spec
	// breaks ties toward the smallest base_offset. All suffixes sharing a
	// common prefix of length bestLen with target occupy one contiguous
	// run in the suffix array (adjacent lcp[i] >= bestLen), so walk that
	// run outward from bestIdx and keep the smallest offset.
	bestOff := int(idx.sa[bestIdx])
	for i := bestIdx; i > 0 && int(idx.lcp[i]) >= bestLen; i-- {
		if pos := int(idx.sa[i-1]); pos < bestOff {
			bestOff = pos
		}
	}
	for i := bestIdx + 1; i < len(idx.sa) && int(idx.lcp[i]) >= bestLen; i++ {
		if pos := int(idx.sa[i]); pos < bestOff {
			bestOff = pos
		}
	}

	return bestOff, bestLen
}

// lessSuffixTarget reports whether base[pos:] sorts strictly before target.
func lessSuffixTarget(base []byte, pos int32, target []byte) bool {
	suffix := base[pos:]
	n := len(suffix)
	if len(target) < n {
		n = len(target)
	}
	for i := 0; i < n; i++ {
		if suffix[i] != target[i] {
			return suffix[i] < target[i]
		}
	}
	return len(suffix) < len(target)
}

// Len returns the length of the indexed base sequence.
func (idx *Index) Len() int { return len(idx.base) }
