// Package ion builds the forward/reverse fragment-ion prefix sums for
// one candidate peptide and bins them into the per-charge, per-series
// index arrays the scorer consumes (spec.md §4.6), mirroring
// CometSearch::GetFragmentIonMass and the _pdAAforward/_pdAAreverse
// construction in the original implementation.
package ion

import (
	"github.com/grailbio/xcorr/config"
	"github.com/grailbio/xcorr/masstable"
	"github.com/grailbio/xcorr/peptide"
)

// Series identifies one of the six fragment-ion series.
type Series int

const (
	SeriesA Series = iota
	SeriesB
	SeriesC
	SeriesX
	SeriesY
	SeriesZ
)

// Scratch holds the per-worker reusable buffers the ion builder fills
// in, sized once per worker and reused across every candidate peptide
// it processes (the same thread-local-arena shape as
// markduplicates' per-worker scratch state in the teacher corpus).
type Scratch struct {
	forward []float64
	reverse []float64
	// dup is reused as the in-peptide duplicate-bin scratch vector,
	// sized to the query's ArraySize and reset (not reallocated) for
	// every candidate (spec.md §4.6: "a peptide-scoped bin dedup
	// buffer, sized to the query's ArraySize").
	dup []bool
}

// NewScratch allocates a Scratch sized for peptides up to
// config.MaxPeptideLen residues.
func NewScratch() *Scratch {
	return &Scratch{
		forward: make([]float64, config.MaxPeptideLen),
		reverse: make([]float64, config.MaxPeptideLen),
	}
}

// Binned is one built peptide's binned fragment masses, indexed
// [charge-1][seriesIndex][len]. A zero entry means "duplicate of an
// earlier (charge, series) bin for this peptide" and must be skipped
// by the scorer, exactly as CometSearch leaves
// _uiBinnedIonMasses[...] == 0 for a repeated bin.
type Binned struct {
	series  []Series
	charges int
	lenM1   int
	bins    [][][]int
}

// Series returns the selected ion series in the fixed iteration order
// used to index Bins.
func (b *Binned) Series() []Series { return b.series }

// Bins returns the bin index for 1-based charge, series index (into
// Series()), and fragment position (0-based, 0..LenMinus1()-1), or 0
// if that fragment duplicates an earlier bin for this peptide.
func (b *Binned) Bins(charge, seriesIdx, pos int) int { return b.bins[charge-1][seriesIdx][pos] }

// LenMinus1 is the number of internal fragmentation positions, i.e.
// peptide length minus one.
func (b *Binned) LenMinus1() int { return b.lenM1 }

func selectedSeries(cfg *config.Search) []Series {
	var out []Series
	if cfg.UseAIons {
		out = append(out, SeriesA)
	}
	if cfg.UseBIons {
		out = append(out, SeriesB)
	}
	if cfg.UseCIons {
		out = append(out, SeriesC)
	}
	if cfg.UseXIons {
		out = append(out, SeriesX)
	}
	if cfg.UseYIons {
		out = append(out, SeriesY)
	}
	if cfg.UseZIons {
		out = append(out, SeriesZ)
	}
	return out
}

// fragmentMass applies the per-series mass offset to the raw b/y
// prefix sum at position i, then converts to an m/z for the given
// charge (spec.md §4.6; CometSearch::GetFragmentIonMass).
func fragmentMass(s Series, charge int, forward, reverse []float64, i int) float64 {
	var m float64
	switch s {
	case SeriesB:
		m = forward[i]
	case SeriesY:
		m = reverse[i]
	case SeriesA:
		m = forward[i] - masstable.CO
	case SeriesC:
		m = forward[i] + masstable.NH3
	case SeriesX:
		m = reverse[i] + masstable.CO - masstable.H2
	case SeriesZ:
		m = reverse[i] - masstable.NH2
	}
	return (m + float64(charge-1)*masstable.ProtonMass) / float64(charge)
}

// Bin converts a fragment m/z into its scoring-vector bin index
// (spec.md §4.6): floor(mass * inverse_bin_width + one_minus_bin_offset).
func Bin(cfg *config.Search, mass float64) int {
	return int(mass*cfg.InverseBinWidth() + cfg.OneMinusBinOffset())
}

// Build computes the forward/reverse prefix sums for the residues in
// [start, end] (inclusive) with the given modification placement
// (sites may be nil for an unmodified candidate), then bins every
// selected series at every charge from 1 to maxFragCharge, suppressing
// within-peptide duplicate bins via dup (sized to arraySize and reset
// on every call).
func Build(
	cfg *config.Search,
	table *masstable.Table,
	residues []byte,
	start, end int,
	sites peptide.ModSites,
	isProteinStart, isProteinEnd bool,
	maxFragCharge int,
	arraySize int,
	sc *Scratch,
) *Binned {
	lenM1 := end - start
	if cap(sc.forward) < lenM1 {
		sc.forward = make([]float64, lenM1)
		sc.reverse = make([]float64, lenM1)
	}
	forward := sc.forward[:lenM1]
	reverse := sc.reverse[:lenM1]

	bIon := table.StaticNtermPeptide + masstable.ProtonMass
	yIon := table.StaticCtermPeptide + masstable.ProtonMass + masstable.H2O
	if isProteinStart {
		bIon += table.StaticNtermProtein
	}
	if isProteinEnd {
		yIon += table.StaticCtermProtein
	}
	if sites != nil {
		if sites.Nterm() {
			bIon += cfg.VarModNterm.DeltaMass
		}
		if sites.Cterm() {
			yIon += cfg.VarModCterm.DeltaMass
		}
	}

	for i := start; i < end; i++ {
		pos := i - start
		bIon += residueFragmentMass(cfg, table, residues[i], sites, pos)
		forward[pos] = bIon

		j := end - pos
		jPos := j - start
		yIon += residueFragmentMass(cfg, table, residues[j], sites, jPos)
		reverse[pos] = yIon
	}

	series := selectedSeries(cfg)
	if cap(sc.dup) < arraySize {
		sc.dup = make([]bool, arraySize)
	}
	dup := sc.dup[:arraySize]
	for i := range dup {
		dup[i] = false
	}

	out := &Binned{series: series, charges: maxFragCharge, lenM1: lenM1}
	out.bins = make([][][]int, maxFragCharge)
	for c := 1; c <= maxFragCharge; c++ {
		row := make([][]int, len(series))
		for si, s := range series {
			cells := make([]int, lenM1)
			for pos := 0; pos < lenM1; pos++ {
				bin := Bin(cfg, fragmentMass(s, c, forward, reverse, pos))
				if bin < 0 || bin >= arraySize {
					cells[pos] = 0
					continue
				}
				if dup[bin] {
					cells[pos] = 0
				} else {
					dup[bin] = true
					cells[pos] = bin
				}
			}
			row[si] = cells
		}
		out.bins[c-1] = row
	}
	return out
}

// residueFragmentMass returns the fragment-table mass of residue aa at
// 0-based peptide position pos, plus any variable-mod delta placed on
// that position by sites.
func residueFragmentMass(cfg *config.Search, table *masstable.Table, aa byte, sites peptide.ModSites, pos int) float64 {
	m := table.ResidueFragment(aa)
	if sites == nil || pos >= len(sites)-2 {
		return m
	}
	slot := sites[pos]
	if slot == 0 {
		return m
	}
	return m + cfg.VarMods[slot-1].DeltaMass
}
