package peptide

import (
	"github.com/grailbio/xcorr/config"
	"github.com/grailbio/xcorr/masstable"
	"github.com/grailbio/xcorr/query"
)

// Enumerate performs the sliding-window candidate scan over one
// protein sequence (spec.md §4.3), invoking onCandidate once per
// matching (window, placement) pair -- Sites is nil for an unmodified
// match. isProteinStart indicates residues begins at the true protein
// N-terminus (false for the clip-methionine second pass, which starts
// at offset 1).
func Enumerate(
	cfg *config.Search,
	table *masstable.Table,
	qs *query.Set,
	residues []byte,
	isProteinStart bool,
	onCandidate func(c Candidate),
) {
	n := len(residues)
	if n == 0 {
		return
	}
	envMin, envMax := qs.MassEnvelope()

	start, end := 0, 0
	calcMass := table.StaticNtermPeptide + masstable.ProtonMass + masstable.H2O
	if isProteinStart {
		calcMass += table.StaticNtermProtein
	}
	calcMass += table.ResidueParent(residues[0])
	if n == 1 {
		calcMass += table.StaticCtermProtein
	}

	var varCounts [config.VMods]int
	updateVarCounts(cfg, residues[0], &varCounts, 1)

	for start < n {
		length := end - start + 1
		if length <= config.MaxPeptideLen &&
			calcMass >= envMin && calcMass <= envMax &&
			EnzymeOK(cfg, residues, start, end) {

			tryMatch(cfg, qs, residues, start, end, calcMass, onCandidate)
		}

		grew := false
		if calcMass <= envMax && end < n-1 && length < config.MaxPeptideLen {
			end++
			calcMass += table.ResidueParent(residues[end])
			if end == n-1 {
				calcMass += table.StaticCtermProtein
			}
			updateVarCounts(cfg, residues[end], &varCounts, 1)
			grew = true
		}

		if !grew {
			if anyPositive(varCounts) {
				baseMass := calcMass - sumResidueRange(table, residues, start, end) -
					boolFloat(end == n-1, table.StaticCtermProtein)
				SearchVariableMods(cfg, table, qs, residues, start, end, baseMass, isProteinStart, onCandidate)
			}

			// Shrink the leaving residue at `start`.
			if end == n-1 {
				calcMass -= table.StaticCtermProtein
			}
			calcMass -= table.ResidueParent(residues[start])
			updateVarCounts(cfg, residues[start], &varCounts, -1)
			if start == 0 {
				calcMass -= table.StaticNtermProtein
			}
			start++
			if start >= n {
				break
			}
			for calcMass >= envMin && end > start {
				if end == n-1 {
					calcMass -= table.StaticCtermProtein
				}
				calcMass -= table.ResidueParent(residues[end])
				updateVarCounts(cfg, residues[end], &varCounts, -1)
				end--
			}
		}
	}
}

func boolFloat(b bool, v float64) float64 {
	if b {
		return v
	}
	return 0
}

func sumResidueRange(table *masstable.Table, residues []byte, start, end int) float64 {
	var sum float64
	for i := start; i <= end; i++ {
		sum += table.ResidueParent(residues[i])
	}
	return sum
}

func anyPositive(cv [config.VMods]int) bool {
	for _, c := range cv {
		if c > 0 {
			return true
		}
	}
	return false
}

func updateVarCounts(cfg *config.Search, aa byte, cv *[config.VMods]int, delta int) {
	for k := 0; k < config.VMods; k++ {
		if inSet(aa, cfg.VarMods[k].Residues) {
			cv[k] += delta
		}
	}
}

// tryMatch runs the per-query mass-match scan for one accepted,
// unmodified window (spec.md §4.3 step 3).
func tryMatch(
	cfg *config.Search,
	qs *query.Set,
	residues []byte,
	start, end int,
	calcMass float64,
	onCandidate func(c Candidate),
) {
	i := qs.FirstCandidate(calcMass)
	emitted := false
	for j := i; j < len(qs.Queries); j++ {
		q := qs.Queries[j]
		if calcMass < q.TolMinus {
			break
		}
		if query.CheckMassMatch(cfg, q, calcMass) {
			if !emitted {
				emitted = true
				onCandidate(Candidate{Start: start, End: end, Mass: calcMass})
			}
		}
	}
}
