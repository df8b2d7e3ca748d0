// Package score computes the Xcorr cross-correlation score of a built
// ion set against a query's preprocessed spectrum (spec.md §4.7),
// mirroring CometSearch::XcorrScore's dense/sparse dual path.
package score

import (
	"github.com/grailbio/xcorr/config"
	"github.com/grailbio/xcorr/ion"
	"github.com/grailbio/xcorr/query"
)

// Xcorr computes the raw cross-correlation score for one built peptide
// against one query, selecting the neutral-loss dense vector in place
// of the regular one for singly-charged a/b/y ions when the config
// enables it (spec.md §4.7 / §4.6).
//
// A negative or zero raw dot product is clamped to zero; otherwise the
// result is scaled by 0.005, matching the original's "scale
// intensities to 50 and divide score by 1E5".
func Xcorr(cfg *config.Search, q *query.Query, built *ion.Binned) float64 {
	var sum float64
	series := built.Series()
	lenM1 := built.LenMinus1()

	for charge := 1; charge <= q.MaxFragCharge; charge++ {
		for si, s := range series {
			useNL := cfg.UseNLIons && charge == 1 && (s == ion.SeriesA || s == ion.SeriesB || s == ion.SeriesY)

			if q.Sparse != nil {
				sum += sparseSum(q, useNL, built, charge, si, lenM1)
			} else {
				dense := q.Dense
				if useNL {
					dense = q.NeutralLossDense
				}
				for pos := 0; pos < lenM1; pos++ {
					bin := built.Bins(charge, si, pos)
					if bin == 0 {
						continue
					}
					sum += float64(dense[bin])
				}
			}
		}
	}

	if sum <= 0 {
		return 0
	}
	return sum * 0.005
}

// sparseSum implements the sparse-matrix ratchet from the original for
// one (charge, series) row: the row's fragment bins are produced in
// increasing position order, so the cursor into the query's sorted
// sparse vector only moves forward within the row. The cursor starts
// again at the beginning of the vector for every row.
func sparseSum(q *query.Query, useNL bool, built *ion.Binned, charge, seriesIdx, lenM1 int) float64 {
	vec := q.Sparse
	if useNL {
		// The original keeps a separate sparse NL matrix; this corpus
		// stores NL intensities densely since MINIMUM_PEAKS-bounded
		// spectra make a sparse NL vector not worth the extra type.
		var sum float64
		for pos := 0; pos < lenM1; pos++ {
			bin := built.Bins(charge, seriesIdx, pos)
			if bin == 0 || bin >= len(q.NeutralLossDense) {
				continue
			}
			sum += float64(q.NeutralLossDense[bin])
		}
		return sum
	}

	var sum float64
	xx := 0
	for pos := 0; pos < lenM1; pos++ {
		bin := built.Bins(charge, seriesIdx, pos)
		if bin == 0 {
			continue
		}
		for xx < len(vec) && vec[xx].Bin <= bin {
			xx++
		}
		if xx == 0 {
			continue
		}
		sum += float64(vec[xx-1].Intensity)
	}
	return sum
}
