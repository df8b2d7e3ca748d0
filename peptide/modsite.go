package peptide

// ModSites is a per-residue modification placement: index i in
// [0, len) holds 0 or the 1-based variable-mod slot id on residue i;
// index len holds the N-term mod flag (0/1); index len+1 holds the
// C-term mod flag (0/1). (spec.md §3, "Mod placement".)
type ModSites []byte

// NewModSites allocates a zeroed placement for a peptide of the given
// length.
func NewModSites(length int) ModSites {
	return make(ModSites, length+2)
}

// Nterm and Cterm read/write the two terminus flags.
func (m ModSites) Nterm() bool      { return m[len(m)-2] != 0 }
func (m ModSites) Cterm() bool      { return m[len(m)-1] != 0 }
func (m ModSites) SetNterm(v bool)  { m[len(m)-2] = boolByte(v) }
func (m ModSites) SetCterm(v bool)  { m[len(m)-1] = boolByte(v) }

func boolByte(v bool) byte {
	if v {
		return 1
	}
	return 0
}

// Reversed returns a copy of m with all residue slots reversed (no
// pivot residue is held in place) and the terminus flags swapped. The
// pivot-preserving decoy permutation is decoy.ReverseSites.
func (m ModSites) Reversed() ModSites {
	n := len(m) - 2
	out := make(ModSites, len(m))
	for i := 0; i < n; i++ {
		out[n-1-i] = m[i]
	}
	out.SetNterm(m.Cterm())
	out.SetCterm(m.Nterm())
	return out
}
