package score

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grailbio/xcorr/config"
	"github.com/grailbio/xcorr/ion"
	"github.com/grailbio/xcorr/masstable"
	"github.com/grailbio/xcorr/query"
)

func buildTestIons(t *testing.T) (*config.Search, *ion.Binned) {
	t.Helper()
	cfg := &config.Search{
		FragmentBinTol:    1.0005,
		FragmentBinOffset: 0.4,
		UseBIons:          true,
		UseYIons:          true,
	}
	table := masstable.New(masstable.Monoisotopic, masstable.Monoisotopic)
	sc := ion.NewScratch()
	built := ion.Build(cfg, table, []byte("AAAK"), 0, 3, nil, true, true, 1, 2000, sc)
	require.Equal(t, 3, built.LenMinus1())
	return cfg, built
}

func collectBins(built *ion.Binned) []int {
	var bins []int
	for si := range built.Series() {
		for pos := 0; pos < built.LenMinus1(); pos++ {
			b := built.Bins(1, si, pos)
			if b != 0 {
				bins = append(bins, b)
			}
		}
	}
	return bins
}

func TestXcorrDenseSumsIntensitiesAtFragmentBins(t *testing.T) {
	cfg, built := buildTestIons(t)
	bins := collectBins(built)
	require.NotEmpty(t, bins)

	dense := make([]float32, 4000)
	var want float64
	for i, b := range bins {
		v := float32(i + 1)
		dense[b] = v
		want += float64(v)
	}

	q := &query.Query{MaxFragCharge: 1, Dense: dense}
	got := Xcorr(cfg, q, built)
	assert.InDelta(t, want*0.005, got, 1e-9)
}

func TestXcorrClampsNonPositiveSumToZero(t *testing.T) {
	cfg, built := buildTestIons(t)
	dense := make([]float32, 4000) // all zero intensities
	q := &query.Query{MaxFragCharge: 1, Dense: dense}
	assert.Equal(t, 0.0, Xcorr(cfg, q, built))
}

func TestXcorrSparseRatchetMatchesDenseSum(t *testing.T) {
	cfg, built := buildTestIons(t)
	bins := collectBins(built)
	require.NotEmpty(t, bins)

	dense := make([]float32, 4000)
	var entries []query.ScoreEntry
	var want float64
	for i, b := range bins {
		v := float32(i + 1)
		dense[b] = v
		entries = append(entries, query.ScoreEntry{Bin: b, Intensity: v})
		want += float64(v)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Bin < entries[j].Bin })

	qDense := &query.Query{MaxFragCharge: 1, Dense: dense}
	qSparse := &query.Query{MaxFragCharge: 1, Sparse: entries}

	gotDense := Xcorr(cfg, qDense, built)
	gotSparse := Xcorr(cfg, qSparse, built)
	assert.InDelta(t, want*0.005, gotDense, 1e-9)
	assert.InDelta(t, gotDense, gotSparse, 1e-9)
}

func TestXcorrUsesNeutralLossDenseForSinglyChargedSelectedSeries(t *testing.T) {
	cfg := &config.Search{
		FragmentBinTol:    1.0005,
		FragmentBinOffset: 0.4,
		UseBIons:          true,
		UseNLIons:         true,
	}
	table := masstable.New(masstable.Monoisotopic, masstable.Monoisotopic)
	sc := ion.NewScratch()
	built := ion.Build(cfg, table, []byte("AAAK"), 0, 3, nil, true, true, 1, 2000, sc)

	regular := make([]float32, 4000)
	nl := make([]float32, 4000)
	for pos := 0; pos < built.LenMinus1(); pos++ {
		b := built.Bins(1, 0, pos)
		if b == 0 {
			continue
		}
		regular[b] = 100
		nl[b] = 7
	}

	q := &query.Query{MaxFragCharge: 1, Dense: regular, NeutralLossDense: nl}
	got := Xcorr(cfg, q, built)
	// Every selected (charge=1, b-series) contribution must come from the
	// NL vector (7), not the regular one (100).
	var want float64
	for pos := 0; pos < built.LenMinus1(); pos++ {
		if built.Bins(1, 0, pos) != 0 {
			want += 7
		}
	}
	assert.InDelta(t, want*0.005, got, 1e-9)
}
