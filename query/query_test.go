package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grailbio/xcorr/config"
	"github.com/grailbio/xcorr/masstable"
)

func newQ(tolMinus, tolPlus float64) *Query {
	q := New()
	q.TolMinus = tolMinus
	q.TolPlus = tolPlus
	return q
}

func TestNewInitializesWatermarksBelowZero(t *testing.T) {
	q := New()
	assert.Equal(t, -1.0, q.LowestScore)
	assert.Equal(t, -1.0, q.LowestDecoyScore)
}

func TestNewSetSortsByTolMinus(t *testing.T) {
	q1 := newQ(300, 310)
	q2 := newQ(100, 110)
	q3 := newQ(200, 210)
	s := NewSet([]*Query{q1, q2, q3})
	require.Len(t, s.Queries, 3)
	assert.Equal(t, 100.0, s.Queries[0].TolMinus)
	assert.Equal(t, 200.0, s.Queries[1].TolMinus)
	assert.Equal(t, 300.0, s.Queries[2].TolMinus)
}

func TestBinarySearchMassFindsBracketingQuery(t *testing.T) {
	s := NewSet([]*Query{newQ(100, 110), newQ(200, 210), newQ(300, 310)})
	idx := s.BinarySearchMass(205)
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, 200.0, s.Queries[idx].TolMinus)
}

func TestBinarySearchMassReturnsMinusOneWhenNoWindowBrackets(t *testing.T) {
	s := NewSet([]*Query{newQ(100, 110), newQ(200, 210)})
	assert.Equal(t, -1, s.BinarySearchMass(150))
}

func TestFirstCandidateBacksUpOverOverlappingWindows(t *testing.T) {
	// Two overlapping windows: [100,210] and [200,310]. A mass of 205
	// falls in both; FirstCandidate must back up to the earlier one so
	// the caller's forward scan doesn't miss it.
	s := NewSet([]*Query{newQ(100, 210), newQ(200, 310)})
	idx := s.FirstCandidate(205)
	assert.Equal(t, 0, idx)
}

func TestMassEnvelopeSpansAllQueries(t *testing.T) {
	s := NewSet([]*Query{newQ(100, 150), newQ(400, 450)})
	min, max := s.MassEnvelope()
	assert.Equal(t, 100.0, min)
	assert.Equal(t, 450.0, max)
}

func TestMassEnvelopeEmptySet(t *testing.T) {
	s := NewSet(nil)
	min, max := s.MassEnvelope()
	assert.Equal(t, 0.0, min)
	assert.Equal(t, 0.0, max)
}

func TestCheckMassMatchOutsideToleranceWindowFails(t *testing.T) {
	cfg := &config.Search{IsotopeError: config.IsotopeNone}
	q := newQ(100, 110)
	q.ExpMass = 105
	assert.False(t, CheckMassMatch(cfg, q, 95))
	assert.False(t, CheckMassMatch(cfg, q, 115))
}

func TestCheckMassMatchIsotopeNoneAcceptsAnyInWindow(t *testing.T) {
	cfg := &config.Search{IsotopeError: config.IsotopeNone}
	q := newQ(100, 110)
	q.ExpMass = 105
	assert.True(t, CheckMassMatch(cfg, q, 100.5))
}

func TestCheckMassMatchIsotopeAdjacentRequiresIsotopeSpacing(t *testing.T) {
	cfg := &config.Search{IsotopeError: config.IsotopeAdjacent}
	q := newQ(90, 115)
	q.ExpMass = 105
	q.Tolerance = 0.01
	// calc one isotope spacing below ExpMass: should match (k=1 term).
	calc := 105 - masstable.IsotopeSpacing
	assert.True(t, CheckMassMatch(cfg, q, calc))
	// calc with no integer multiple of the spacing nearby: should fail.
	assert.False(t, CheckMassMatch(cfg, q, 105-0.5))
}

func TestCheckMassMatchIsotopeWideUsesMode2Offsets(t *testing.T) {
	cfg := &config.Search{IsotopeError: config.IsotopeWide}
	q := newQ(90, 115)
	q.ExpMass = 105
	q.Tolerance = 0.01
	calc := 105 - 4.0070995
	assert.True(t, CheckMassMatch(cfg, q, calc))
	assert.False(t, CheckMassMatch(cfg, q, 105-1.0))
}
