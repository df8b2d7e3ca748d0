package peptide

// Twiddle implements Chase's algorithm (Comm. ACM 13:368, 1970) for
// incrementally generating all C(N, M) binary patterns over N
// positions by single-element flips, exactly as spec.md §4.4
// specifies.
//
// Construct with NewTwiddle(n, m), call Next repeatedly: the first
// call returns the initial M-of-N pattern (all zeros except the last M
// positions) without consuming a flip, and subsequent calls return the
// (x, y, z) flip describing the transition to the next pattern -- set
// b[x]=1, b[y]=0. Next returns done=true once all C(n, m) patterns
// have been produced.
type Twiddle struct {
	p       []int
	n, m    int
	started bool
	finished bool
}

// NewTwiddle prepares a twiddle generator for choosing m of n
// positions. Panics if m < 0, n < 0 or m > n -- callers must clip
// per-slot counts to the available eligible positions before
// constructing, per spec.md §4.4.
func NewTwiddle(n, m int) *Twiddle {
	if m < 0 || n < 0 || m > n {
		panic("peptide: invalid twiddle(n, m)")
	}
	p := make([]int, n+2)
	p[0] = n + 1
	i := 1
	for ; i != n-m+1; i++ {
		p[i] = 0
	}
	for ; i != n+1; i++ {
		p[i] = i + m - n
	}
	p[n+1] = -2
	if m == 0 {
		p[1] = 1
	}
	return &Twiddle{p: p, n: n, m: m}
}

// Next yields the next combination's flip. The very first call instead
// reports the initial pattern via done=false, x=y=z=-1 (no flip to apply);
// the caller is expected to read the initial pattern directly (it is
// simply: positions [n-m, n) set).
func (t *Twiddle) Next() (x, y, z int, done bool) {
	if t.finished {
		return 0, 0, 0, true
	}
	if !t.started {
		t.started = true
		return -1, -1, -1, false
	}
	if t.n == 0 || t.m == 0 || t.m == t.n {
		t.finished = true
		return 0, 0, 0, true
	}

	p := t.p
	j := 1
	for p[j] <= 0 {
		j++
	}
	if p[j-1] == 0 {
		for i := j - 1; i != 1; i-- {
			p[i] = -1
		}
		p[j] = 0
		x, z = 0, 0
		p[1] = 1
		y = j - 1
	} else {
		if j > 1 {
			p[j-1] = 0
		}
		for {
			j++
			if p[j] <= 0 {
				break
			}
		}
		k := j - 1
		i := j
		for p[i] == 0 {
			p[i] = -1
			i++
		}
		if p[i] == -1 {
			p[i] = p[k]
			z = p[k] - 1
			x = i - 1
			y = k - 1
			p[k] = -1
		} else {
			if i == p[0] {
				t.finished = true
				return 0, 0, 0, true
			}
			p[j] = p[i]
			p[i] = 0
			x = j - 1
			y = i - 1
			z = p[j] - 1
		}
	}
	return x, y, z, false
}

// AllCombinations eagerly enumerates every C(n, m) binary pattern over
// n positions (n is small -- at most the number of eligible residues
// for a single variable-mod slot in one peptide, bounded well under
// MaxPeptideLen). Index i of each returned []bool is true iff position
// i is selected.
func AllCombinations(n, m int) [][]bool {
	if m == 0 {
		return [][]bool{make([]bool, n)}
	}
	t := NewTwiddle(n, m)
	b := make([]bool, n)
	for i := n - m; i < n; i++ {
		b[i] = true
	}
	var out [][]bool
	for {
		x, y, z, done := t.Next()
		if done {
			break
		}
		if x >= 0 {
			b[x] = true
			b[y] = false
			_ = z
		}
		cp := make([]bool, n)
		copy(cp, b)
		out = append(out, cp)
	}
	return out
}
