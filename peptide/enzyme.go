package peptide

import "github.com/grailbio/xcorr/config"

// terminalSentinel marks a hard terminus no cleavage site may span
// (spec.md §3).
const terminalSentinel = '*'

func inSet(b byte, set string) bool {
	for i := 0; i < len(set); i++ {
		if set[i] == b {
			return true
		}
	}
	return false
}

// beginCleavage reports whether a peptide may legally begin at
// residues[start], for the given enzyme and protein context
// (spec.md §4.3 step 2).
func beginCleavage(enz *config.Enzyme, residues []byte, start int) bool {
	if start == 0 {
		return true
	}
	if residues[start-1] == terminalSentinel {
		return true
	}
	oneMinus := 1 - enz.Offset
	twoMinus := 2 - enz.Offset
	return inSet(residueAt(residues, start-1+oneMinus), enz.BreakAA) &&
		!inSet(residueAt(residues, start-1+twoMinus), enz.NoBreakAA)
}

// endCleavage reports whether a peptide may legally end at
// residues[end].
func endCleavage(enz *config.Enzyme, residues []byte, end int) bool {
	n := len(residues)
	if end == n-1 {
		return true
	}
	if residues[end+1] == terminalSentinel {
		return true
	}
	oneMinus := 1 - enz.Offset
	twoMinus := 2 - enz.Offset
	return inSet(residueAt(residues, end+oneMinus), enz.BreakAA) &&
		!inSet(residueAt(residues, end+twoMinus), enz.NoBreakAA)
}

// residueAt returns residues[i], or the null byte for i out of range --
// the same semantics as reading past the end of Comet's
// null-terminated, over-allocated protein-sequence buffers: a
// break/no-break set never contains '\0', so an out-of-range read
// never matches either set.
func residueAt(residues []byte, i int) byte {
	if i < 0 || i >= len(residues) {
		return 0
	}
	return residues[i]
}

// missedCleavages counts internal enzymatic cut sites within
// [start, end], excluding the residue that defines the window's own
// terminal cut (the last residue for a C-side cutter, the first for
// an N-side cutter), per CometSearch::CheckEnzymeTermini.
func missedCleavages(enz *config.Enzyme, residues []byte, start, end int) int {
	oneMinus := 1 - enz.Offset
	twoMinus := 2 - enz.Offset
	count := 0
	for i := start; i <= end; i++ {
		breakPoint := inSet(residueAt(residues, i+oneMinus), enz.BreakAA) &&
			!inSet(residueAt(residues, i+twoMinus), enz.NoBreakAA)
		if !breakPoint {
			continue
		}
		if (oneMinus == 0 && i != end) || (oneMinus == 1 && i != start) {
			count++
		}
	}
	return count
}

// EnzymeOK applies the configured num_enzyme_termini mode to a
// candidate window (spec.md §4.3 step 2).
func EnzymeOK(cfg *config.Search, residues []byte, start, end int) bool {
	enz := &cfg.SearchEnzyme
	begin := beginCleavage(enz, residues, start)
	endOK := endCleavage(enz, residues, end)

	var termOK bool
	switch cfg.NumEnzymeTermini {
	case config.TerminiBoth:
		termOK = begin && endOK
	case config.TerminiEither:
		termOK = begin || endOK
	case config.TerminiNOnly:
		termOK = begin
	case config.TerminiCOnly:
		termOK = endOK
	default:
		return false
	}
	if !termOK {
		return false
	}
	return missedCleavages(enz, residues, start, end) <= cfg.AllowedMissedCleave
}
