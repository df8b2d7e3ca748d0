// Package masstable holds residue and terminus mass tables used by the
// fragment-ion and scoring engine.
//
// Masses are stored in fixed arrays indexed by ASCII letter offset
// ('A'-'A' .. 'Z'-'A'), the same layout idiom used for amino acid mass
// tables throughout the bioinformatics ecosystem: a residue's mass is
// a single array lookup, never a map probe.
package masstable

// SentinelMass is assigned to ambiguous residues (B, J, U, X, Z) that
// carry no static modification of their own.
const SentinelMass = 999999.0

// Physical constants (monoisotopic, Da).
const (
	ProtonMass = 1.00727646688
	H2O        = 18.0105646863
	NH3        = 17.0265491015
	NH2        = 16.0187241015
	CO         = 27.9949146221
	H2         = 2.0156500642
)

// IsotopeSpacing is the mass difference between adjacent carbon-13
// isotope peaks, used by CheckMassMatch under isotope-error mode 1.
const IsotopeSpacing = 1.00335483

// Mode-2 isotope offsets (spec.md §4.5): ±4.0070995 and ±8.014199 Da,
// approximating the Mono-di-carbon-13 spacing seen at +2/+4.
var IsotopeOffsetsMode2 = [5]float64{-8.014199, -4.0070995, 0, 4.0070995, 8.014199}

const numLetters = 26

// MassType selects which parent/fragment mass convention a Table uses.
type MassType int

const (
	// Average uses averagine (natural isotopic abundance) masses.
	Average MassType = 0
	// Monoisotopic uses the most abundant isotope of each element.
	Monoisotopic MassType = 1
)

// monoisotopicResidue and averageResidue hold the unmodified residue
// masses, indexed by letter-'A'. Unused/ambiguous letters default to
// SentinelMass via Table.reset.
var monoisotopicResidue = [numLetters]float64{
	'A' - 'A': 71.03711,
	'C' - 'A': 103.00919,
	'D' - 'A': 115.02694,
	'E' - 'A': 129.04259,
	'F' - 'A': 147.06841,
	'G' - 'A': 57.02146,
	'H' - 'A': 137.05891,
	'I' - 'A': 113.08406,
	'K' - 'A': 128.09496,
	'L' - 'A': 113.08406,
	'M' - 'A': 131.04049,
	'N' - 'A': 114.04293,
	'P' - 'A': 97.05276,
	'Q' - 'A': 128.05858,
	'R' - 'A': 156.10111,
	'S' - 'A': 87.03203,
	'T' - 'A': 101.04768,
	'V' - 'A': 99.06841,
	'W' - 'A': 186.07931,
	'Y' - 'A': 163.06333,
}

var averageResidue = [numLetters]float64{
	'A' - 'A': 71.0788,
	'C' - 'A': 103.1388,
	'D' - 'A': 115.0886,
	'E' - 'A': 129.1155,
	'F' - 'A': 147.1766,
	'G' - 'A': 57.0519,
	'H' - 'A': 137.1411,
	'I' - 'A': 113.1594,
	'K' - 'A': 128.1741,
	'L' - 'A': 113.1594,
	'M' - 'A': 131.1926,
	'N' - 'A': 114.1038,
	'P' - 'A': 97.1167,
	'Q' - 'A': 128.1307,
	'R' - 'A': 156.1875,
	'S' - 'A': 87.0782,
	'T' - 'A': 101.1051,
	'V' - 'A': 99.1326,
	'W' - 'A': 186.2132,
	'Y' - 'A': 163.1760,
}

// ambiguous letters that default to SentinelMass absent a static mod.
var ambiguous = [...]byte{'B', 'J', 'U', 'X', 'Z'}

// Table is a mutable, per-search residue mass table: the base table for
// the chosen MassType, with static (fixed) residue and terminus
// modifications folded in once at construction time.
//
// Building static mods into the table up front (rather than adding them
// ad hoc wherever a mass is consulted) avoids any dependence on
// evaluation order when later code formats a modification summary
// string -- see spec.md §9.
type Table struct {
	Parent   [numLetters]float64 // precursor-mass residue table
	Fragment [numLetters]float64 // fragment-mass residue table

	StaticNtermPeptide float64
	StaticCtermPeptide float64
	StaticNtermProtein float64
	StaticCtermProtein float64
}

// New builds a Table for the given parent/fragment mass conventions,
// with sentinel masses for ambiguous residues and zeroed static mods.
func New(parentType, fragmentType MassType) *Table {
	t := &Table{}
	reset(&t.Parent, parentType)
	reset(&t.Fragment, fragmentType)
	return t
}

func reset(arr *[numLetters]float64, mt MassType) {
	base := &monoisotopicResidue
	if mt == Average {
		base = &averageResidue
	}
	*arr = *base
	for _, a := range ambiguous {
		arr[a-'A'] = SentinelMass
	}
}

// AddStaticResidue adds a static per-residue modification delta to both
// the parent and fragment tables for the given uppercase letter.
func (t *Table) AddStaticResidue(aa byte, delta float64) {
	if aa < 'A' || aa > 'Z' {
		return
	}
	t.Parent[aa-'A'] += delta
	t.Fragment[aa-'A'] += delta
}

// ResidueParent returns the parent-mass contribution of a single residue.
func (t *Table) ResidueParent(aa byte) float64 {
	if aa < 'A' || aa > 'Z' {
		return SentinelMass
	}
	return t.Parent[aa-'A']
}

// ResidueFragment returns the fragment-mass contribution of a single residue.
func (t *Table) ResidueFragment(aa byte) float64 {
	if aa < 'A' || aa > 'Z' {
		return SentinelMass
	}
	return t.Fragment[aa-'A']
}
