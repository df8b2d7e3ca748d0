// Package config defines the immutable search configuration shared by
// every worker goroutine of the search driver. It is built once, after
// (externally owned) parameter-file loading, and never mutated again --
// the same "build it once, pass by pointer" shape as
// markduplicates.Opts / bampair.Opts in the teacher corpus.
package config

import (
	"github.com/pkg/errors"

	"github.com/grailbio/xcorr/masstable"
)

// Size-budget constants (spec.md §6).
const (
	MaxPeptideLen     = 50
	MaxPeptideLenP2   = MaxPeptideLen + 2
	WidthReference    = 512
	NumStored         = 50
	HistoSize         = 152
	FloatZero         = 0.00001
	VMods             = 6
	VModsAll          = VMods + 2 // + N-term + C-term slots
	MaxFragmentCharge = 9
	MaxPrecursorCharge = 9
	MinimumPeaks      = 10
)

// MassUnits enumerates peptide_mass_units.
type MassUnits int

const (
	UnitsAMU MassUnits = iota
	UnitsMMU
	UnitsPPM
)

// PrecursorToleranceType enumerates precursor_tolerance_type.
type PrecursorToleranceType int

const (
	ToleranceMHPlus PrecursorToleranceType = iota
	ToleranceMZ
)

// IsotopeErrorMode enumerates isotope_error.
type IsotopeErrorMode int

const (
	IsotopeNone IsotopeErrorMode = iota
	IsotopeAdjacent
	IsotopeWide
)

// NumEnzymeTermini enumerates num_enzyme_termini modes.
type NumEnzymeTermini int

const (
	TerminiEither NumEnzymeTermini = 1
	TerminiBoth   NumEnzymeTermini = 2
	TerminiNOnly  NumEnzymeTermini = 8
	TerminiCOnly  NumEnzymeTermini = 9
)

// DecoySearch enumerates decoy_search.
type DecoySearch int

const (
	DecoyOff       DecoySearch = 0
	DecoyInline    DecoySearch = 1
	DecoySeparate  DecoySearch = 2
)

// Enzyme describes a single enzyme's cleavage rule.
//
// Offset is 0 for an N-side cutter (cleaves before BreakAA, e.g.
// Lys-N) and 1 for a C-side cutter (cleaves after BreakAA, e.g.
// trypsin).
type Enzyme struct {
	Name      string
	Offset    int
	BreakAA   string
	NoBreakAA string
}

// VarMod describes one of the six residue-specific variable mod slots.
type VarMod struct {
	DeltaMass float64
	Residues  string // eligible residue letters
	Binary    bool
	MaxPerMod int // per-slot cap on instances per peptide
}

// TermMod describes a variable N- or C-terminus mod slot.
type TermMod struct {
	DeltaMass float64
	Active    bool
	// Distance: -1 = anywhere, 0 = protein terminus only, n = within n
	// residues of the terminus.
	Distance int
}

// Search is the immutable configuration shared by every search worker.
type Search struct {
	MassTypeParent   masstable.MassType
	MassTypeFragment masstable.MassType
	Masses           *masstable.Table

	PeptideMassTolerance   float64
	PeptideMassUnits       MassUnits
	PrecursorToleranceType PrecursorToleranceType
	IsotopeError           IsotopeErrorMode

	FragmentBinTol    float64
	FragmentBinOffset float64

	SearchEnzyme        Enzyme
	SampleEnzyme        Enzyme
	NumEnzymeTermini    NumEnzymeTermini
	AllowedMissedCleave int

	UseAIons  bool
	UseBIons  bool
	UseCIons  bool
	UseXIons  bool
	UseYIons  bool
	UseZIons  bool
	UseNLIons bool

	VarMods     [VMods]VarMod
	MaxVarModsInPeptide int
	VarModNterm TermMod
	VarModCterm TermMod

	ClipNtermMethionine bool

	MaxFragmentCharge  int
	MaxPrecursorCharge int
	DigestMassRangeMin float64
	DigestMassRangeMax float64

	DecoySearch  DecoySearch
	NumResults   int
	NumThreads   int
}

// NumIonSeries counts how many of the six series are selected.
func (s *Search) NumIonSeries() int {
	n := 0
	for _, on := range []bool{s.UseAIons, s.UseBIons, s.UseCIons, s.UseXIons, s.UseYIons, s.UseZIons} {
		if on {
			n++
		}
	}
	return n
}

// InverseBinWidth and OneMinusBinOffset are the two derived constants
// used by the binning formula in ion.Bin.
func (s *Search) InverseBinWidth() float64   { return 1.0 / s.FragmentBinTol }
func (s *Search) OneMinusBinOffset() float64 { return 1.0 - s.FragmentBinOffset }

// Validate checks the cross-field invariants a loaded config must
// satisfy before any worker is launched. Failures here are Config
// errors (spec.md §7) and must abort the search before work begins.
func (s *Search) Validate() error {
	if s.FragmentBinTol < 0.01 {
		return errors.Errorf("config: fragment_bin_tol must be >= 0.01, got %v", s.FragmentBinTol)
	}
	if s.FragmentBinOffset < 0 || s.FragmentBinOffset > 1 {
		return errors.Errorf("config: fragment_bin_offset must be in [0,1], got %v", s.FragmentBinOffset)
	}
	switch s.NumEnzymeTermini {
	case TerminiEither, TerminiBoth, TerminiNOnly, TerminiCOnly:
	default:
		return errors.Errorf("config: invalid num_enzyme_termini %v", s.NumEnzymeTermini)
	}
	if s.AllowedMissedCleave < 0 {
		return errors.Errorf("config: allowed_missed_cleavage must be >= 0")
	}
	if s.MaxFragmentCharge <= 0 || s.MaxFragmentCharge > MaxFragmentCharge {
		return errors.Errorf("config: max_fragment_charge out of range: %d", s.MaxFragmentCharge)
	}
	if s.MaxPrecursorCharge <= 0 || s.MaxPrecursorCharge > MaxPrecursorCharge {
		return errors.Errorf("config: max_precursor_charge out of range: %d", s.MaxPrecursorCharge)
	}
	if s.NumResults <= 0 || s.NumResults > NumStored {
		return errors.Errorf("config: num_results must be in (0, %d], got %d", NumStored, s.NumResults)
	}
	total := 0
	for i, vm := range s.VarMods {
		if vm.MaxPerMod < 0 {
			return errors.Errorf("config: var mod %d has negative max_per_mod", i+1)
		}
		total += vm.MaxPerMod
	}
	if s.MaxVarModsInPeptide < 0 {
		return errors.Errorf("config: max_variable_mods_in_peptide must be >= 0")
	}
	return nil
}
