// Package query defines the Query type and the globally sorted query
// set the candidate enumerator binary-searches against.
package query

import (
	"math"
	"sort"
	"sync"

	"github.com/dgryski/go-farm"
	"github.com/grailbio/base/log"
	"github.com/minio/highwayhash"

	"github.com/grailbio/xcorr/config"
	"github.com/grailbio/xcorr/masstable"
)

// ScoreEntry is one (bin, intensity) pair of a sparse scoring vector,
// sorted by Bin ascending.
type ScoreEntry struct {
	Bin       int
	Intensity float32
}

// Query is one preprocessed experimental spectrum.
type Query struct {
	ExpMass       float64
	TolPlus       float64
	TolMinus      float64
	Tolerance     float64
	Charge        int
	MaxFragCharge int

	// Dense scoring vector, indexed by fragment-mass bin. Nil if Sparse
	// is used instead.
	Dense []float32
	// Sparse scoring vector, sorted by Bin ascending. Nil if Dense is
	// used instead.
	Sparse []ScoreEntry
	// NeutralLossDense is the neutral-loss scoring vector (dense), used for
	// singly-charged a/b/y ions when the config enables NL scoring.
	NeutralLossDense []float32

	ArraySize int

	mu                sync.Mutex
	LowestScore       float64
	LowestDecoyScore  float64
	LowestScoreIndex  int
	Results           [config.NumStored]Result
	Decoys            [config.NumStored]Result
	CorrHistogram     [config.HistoSize]int
	DecoyHistogram    [config.HistoSize]int
	MatchedCount      int
	MatchedDecoyCount int
}

// Result is one stored peptide-spectrum match.
type Result struct {
	Occupied       bool
	Peptide        []byte
	FlankPrev      byte
	FlankNext      byte
	ProteinName    string
	PepMass        float64
	Xcorr          float64
	TotalIons      int
	DuplicateCount int
	ModSites       []byte // length len(Peptide)+2, zero-valued when unmodified
	Key            [highwayhash.Size]byte
	// FarmKey is a cheap 64-bit fingerprint of the same identity bytes
	// as Key, checked first so a mismatching candidate short-circuits
	// before the wider highwayhash compare.
	FarmKey uint64
}

// HashIdentity returns the highwayhash key and farm fingerprint for a
// peptide's stored identity (residues plus modification placement).
func HashIdentity(peptide, modSites []byte) ([highwayhash.Size]byte, uint64) {
	buf := make([]byte, 0, len(peptide)+len(modSites))
	buf = append(buf, peptide...)
	buf = append(buf, modSites...)
	var zeroSeed [highwayhash.Size]byte
	return highwayhash.Sum(buf, zeroSeed[:]), farm.Hash64(buf)
}

// New returns a zeroed Query with its lowest-score watermarks
// initialized below zero, so the first (always non-negative) Xcorr
// for either the results or the decoy store is never rejected as
// failing to beat the current lowest.
func New() *Query {
	return &Query{LowestScore: -1, LowestDecoyScore: -1}
}

// Lock/Unlock expose the per-query access lock covering Results,
// Decoys, LowestScore{,Index}, MatchedCount and the histograms, the
// same scope the source code's per-query lock covers (spec.md §5):
// ion building and scoring reads take no lock, only the store/dedup/
// histogram update block does.
func (q *Query) Lock()   { q.mu.Lock() }
func (q *Query) Unlock() { q.mu.Unlock() }

// Set is the globally ordered collection of queries, sorted ascending
// by TolMinus, as required for the candidate enumerator's binary
// search (spec.md §3).
type Set struct {
	Queries []*Query
}

// NewSet sorts queries by TolMinus ascending and returns a Set.
func NewSet(queries []*Query) *Set {
	sort.Slice(queries, func(i, j int) bool { return queries[i].TolMinus < queries[j].TolMinus })
	for _, q := range queries {
		q.LowestScoreIndex = 0
	}
	return &Set{Queries: queries}
}

// BinarySearchMass returns the index of some query whose
// [TolMinus, TolPlus] window brackets calc, or -1 if none does.
func (s *Set) BinarySearchMass(calc float64) int {
	i := s.FirstCandidate(calc)
	if i < len(s.Queries) && calc >= s.Queries[i].TolMinus && calc <= s.Queries[i].TolPlus {
		return i
	}
	return -1
}

// FirstCandidate locates the first query (ascending by TolMinus) that
// could contain calc, then backs up while the preceding query's
// TolPlus still brackets calc -- spec.md §4.3 step 3: "binary-search
// queries by tol_minus ... back up while queries[i].tol_plus >=
// calc_mass". Callers then scan forward from the returned index,
// breaking out once queries[j].TolMinus > calc.
func (s *Set) FirstCandidate(calc float64) int {
	n := len(s.Queries)
	i := sort.Search(n, func(i int) bool { return s.Queries[i].TolMinus > calc })
	if i > 0 {
		i--
	}
	for i > 0 && s.Queries[i-1].TolPlus >= calc {
		i--
	}
	return i
}

// MassEnvelope returns the global [min,max] mass envelope across every
// query's tolerance window, used by the candidate enumerator to prune
// windows before any per-query check (spec.md §4.3 step 1).
func (s *Set) MassEnvelope() (min, max float64) {
	if len(s.Queries) == 0 {
		return 0, 0
	}
	min = math.Inf(1)
	max = math.Inf(-1)
	for _, q := range s.Queries {
		if q.TolMinus < min {
			min = q.TolMinus
		}
		if q.TolPlus > max {
			max = q.TolPlus
		}
	}
	return min, max
}

// CheckMassMatch applies the configured isotope-error mode to decide
// whether calc is an acceptable match for q's expected mass, given that
// calc already falls within [q.TolMinus, q.TolPlus] (spec.md §4.5).
func CheckMassMatch(cfg *config.Search, q *Query, calc float64) bool {
	if calc < q.TolMinus || calc > q.TolPlus {
		return false
	}
	switch cfg.IsotopeError {
	case config.IsotopeNone:
		return true
	case config.IsotopeAdjacent:
		for k := -1; k <= 3; k++ {
			if math.Abs(q.ExpMass-calc-float64(k)*masstable.IsotopeSpacing) <= q.Tolerance {
				return true
			}
		}
		return false
	case config.IsotopeWide:
		off := q.ExpMass - calc
		for _, want := range masstable.IsotopeOffsetsMode2 {
			if math.Abs(off-want) <= q.Tolerance {
				return true
			}
		}
		return false
	default:
		log.Error.Printf("query: unknown isotope error mode %v, treating as no match", cfg.IsotopeError)
		return false
	}
}
