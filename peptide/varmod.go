// Package peptide implements the candidate enumerator (sliding window
// over a protein) and the variable-modification combinatorial engine.
package peptide

import (
	"github.com/grailbio/xcorr/config"
	"github.com/grailbio/xcorr/masstable"
	"github.com/grailbio/xcorr/query"
)

// Window is a candidate peptide window over a protein.
type Window struct {
	Residues []byte // the full protein (or translated/clipped) sequence
	Start    int
	End      int // inclusive
}

// Len returns end-start+1.
func (w Window) Len() int { return w.End - w.Start + 1 }

// Candidate is one fully-specified (window, placement) pair handed to
// the ion builder and scorer by the caller of SearchVariableMods /
// the fixed-window (unmodified) path.
type Candidate struct {
	Start, End int
	Mass       float64
	Sites      ModSites // nil for an unmodified candidate
}

// eligibleCount returns the number of residues in [start,end] eligible
// for variable-mod slot k (0-based slot index into cfg.VarMods),
// clipped to the slot's MaxPerMod cap, per spec.md §4.4.
func eligibleCount(cfg *config.Search, residues []byte, start, end, slot int) int {
	n := 0
	set := cfg.VarMods[slot].Residues
	for i := start; i <= end; i++ {
		if inSet(residues[i], set) {
			n++
		}
	}
	if n > cfg.VarMods[slot].MaxPerMod {
		n = cfg.VarMods[slot].MaxPerMod
	}
	return n
}

// AvailableCounts computes avail[0..5] for the maximal window starting
// at start and extending to maxEnd (inclusive), the per-slot caps
// SearchVariableMods nests its count-vector enumeration within.
func AvailableCounts(cfg *config.Search, residues []byte, start, maxEnd int) [config.VMods]int {
	var avail [config.VMods]int
	for k := 0; k < config.VMods; k++ {
		avail[k] = eligibleCount(cfg, residues, start, maxEnd, k)
	}
	return avail
}

// termDistanceOK applies the *_distance gating for a terminus variable
// mod: -1 = anywhere, 0 = protein terminus only, n = within n residues
// of the terminus (spec.md §6).
func termDistanceOK(distance int, atProteinTerminus bool, residuesFromTerminus int) bool {
	switch {
	case distance < 0:
		return true
	case distance == 0:
		return atProteinTerminus
	default:
		return residuesFromTerminus < distance
	}
}

// countVector holds one candidate (i1..i6) assignment.
type countVector [config.VMods]int

// enumerateCountVectors calls fn for every count vector with
// 0 <= ik <= avail[k] and running sum <= globalCap, nested six deep,
// outer slot 6 first (spec.md §4.4).
func enumerateCountVectors(avail [config.VMods]int, globalCap int, fn func(cv countVector)) {
	var cv countVector
	var rec func(slot, sum int)
	rec = func(slot, sum int) {
		if slot < 0 {
			fn(cv)
			return
		}
		for i := 0; i <= avail[slot] && sum+i <= globalCap; i++ {
			cv[slot] = i
			rec(slot-1, sum+i)
		}
		cv[slot] = 0
	}
	rec(config.VMods-1, 0)
}

// SearchVariableMods enumerates every valid variable-mod placement
// reachable from window start, across every peptide length the
// variable-mod engine is permitted to grow to (maxEnd inclusive), and
// invokes onCandidate for each placement whose mass falls within at
// least one query's global tolerance envelope.
//
// baseMassAtStart is the residue-independent mass fixed at `start`
// (water + proton + static peptide N-term mod, plus the static protein
// N-term mod when start is the protein's first residue). isProteinStart
// reports whether residues begins at the protein's true N-terminus
// (false for the clip-methionine pass); the N-term distance gate
// counts a window as at the protein terminus only when isProteinStart
// is set and start == 0. Whether a window ends at the protein's
// C-terminus is derived from its end position within residues.
//
// The all-zero count vector without terminus mods is not reported
// here: unmodified windows are reported by Enumerate itself.
func SearchVariableMods(
	cfg *config.Search,
	table *masstable.Table,
	qs *query.Set,
	residues []byte,
	start, maxEnd int,
	baseMassAtStart float64,
	isProteinStart bool,
	onCandidate func(c Candidate),
) {
	if maxEnd >= len(residues) {
		maxEnd = len(residues) - 1
	}
	avail := AvailableCounts(cfg, residues, start, maxEnd)

	ntermActive := cfg.VarModNterm.Active
	ctermActive := cfg.VarModCterm.Active

	enumerateCountVectors(avail, cfg.MaxVarModsInPeptide, func(cv countVector) {
		for iN := 0; iN <= boolToInt(ntermActive); iN++ {
			if iN == 1 && !termDistanceOK(cfg.VarModNterm.Distance, isProteinStart && start == 0, start) {
				continue
			}
			for iC := 0; iC <= boolToInt(ctermActive); iC++ {
				if iN == 0 && iC == 0 && cv == (countVector{}) {
					continue
				}
				sweepLengths(cfg, table, qs, residues, start, maxEnd, baseMassAtStart,
					isProteinStart, cv, iN, iC, onCandidate)
			}
		}
	})
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// sweepLengths implements spec.md §4.4's "sweep end_tmp from start
// upward residue by residue" for one fixed count vector / terminus
// flag pair.
func sweepLengths(
	cfg *config.Search,
	table *masstable.Table,
	qs *query.Set,
	residues []byte,
	start, maxEnd int,
	baseMassAtStart float64,
	isProteinStart bool,
	cv countVector,
	iN, iC int,
	onCandidate func(c Candidate),
) {
	mass := baseMassAtStart
	if iN == 1 {
		mass += cfg.VarModNterm.DeltaMass
	}
	var tot [config.VMods]int

	for end := start; end <= maxEnd; end++ {
		mass += table.ResidueParent(residues[end])
		isProteinEnd := end == len(residues)-1
		if isProteinEnd {
			mass += table.StaticCtermProtein
		}

		for k := 0; k < config.VMods; k++ {
			if inSet(residues[end], cfg.VarMods[k].Residues) {
				tot[k]++
			}
		}

		valid := true
		for k := 0; k < config.VMods; k++ {
			if cfg.VarMods[k].Binary {
				if cv[k] != tot[k] && cv[k] != 0 {
					valid = false
					break
				}
			} else if cv[k] > tot[k] {
				valid = false
				break
			}
		}
		if !valid {
			continue
		}

		trial := mass
		for k := 0; k < config.VMods; k++ {
			trial += float64(cv[k]) * cfg.VarMods[k].DeltaMass
		}
		if iC == 1 {
			if !termDistanceOK(cfg.VarModCterm.Distance, isProteinEnd, len(residues)-1-end) {
				continue
			}
			trial += cfg.VarModCterm.DeltaMass
		}

		if qs.BinarySearchMass(trial) < 0 {
			continue
		}

		length := end - start + 1
		enumeratePlacements(cfg, residues, start, end, cv, iN, iC, func(sites ModSites) {
			onCandidate(Candidate{Start: start, End: end, Mass: trial, Sites: sites})
		})
		_ = length
	}
}

// enumeratePlacements collapses six (possibly empty) twiddle
// combinations -- one per variable-mod slot -- into a single per-
// residue ModSites array, skipping any placement where a residue would
// carry two non-zero slot assignments (spec.md §4.4: "A residue
// carrying two non-zero slot assignments is a conflict and that
// placement is skipped").
func enumeratePlacements(
	cfg *config.Search,
	residues []byte,
	start, end int,
	cv countVector,
	iN, iC int,
	onPlacement func(sites ModSites),
) {
	length := end - start + 1

	// Eligible position lists per slot, relative to start.
	var eligiblePositions [config.VMods][]int
	for k := 0; k < config.VMods; k++ {
		if cv[k] == 0 {
			continue
		}
		for i := 0; i < length; i++ {
			if inSet(residues[start+i], cfg.VarMods[k].Residues) {
				eligiblePositions[k] = append(eligiblePositions[k], i)
			}
		}
	}

	// Combos per active slot: combos[k][p] is a []bool of length
	// len(eligiblePositions[k]) selecting cv[k] of them.
	var combos [config.VMods][][]bool
	activeSlots := make([]int, 0, config.VMods)
	for k := 0; k < config.VMods; k++ {
		if cv[k] == 0 {
			continue
		}
		combos[k] = AllCombinations(len(eligiblePositions[k]), cv[k])
		activeSlots = append(activeSlots, k)
	}

	sites := NewModSites(length)
	sites.SetNterm(iN == 1)
	sites.SetCterm(iC == 1)

	var rec func(idx int)
	rec = func(idx int) {
		if idx == len(activeSlots) {
			out := make(ModSites, len(sites))
			copy(out, sites)
			onPlacement(out)
			return
		}
		k := activeSlots[idx]
		for _, pattern := range combos[k] {
			conflict := false
			placed := make([]int, 0, len(pattern))
			for pos, on := range pattern {
				if !on {
					continue
				}
				residuePos := eligiblePositions[k][pos]
				if sites[residuePos] != 0 {
					conflict = true
					break
				}
				sites[residuePos] = byte(k + 1)
				placed = append(placed, residuePos)
			}
			if !conflict {
				rec(idx + 1)
			}
			for _, p := range placed {
				sites[p] = 0
			}
		}
	}
	rec(0)
}
