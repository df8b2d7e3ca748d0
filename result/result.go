// Package result implements the bounded top-N match store: duplicate
// suppression against the currently stored hits, lowest-score
// eviction, and the correlation histogram bump, mirroring
// CometSearch::CheckDuplicate / StorePeptide (spec.md §4.8/§4.9).
package result

import (
	"math"

	"github.com/grailbio/xcorr/config"
	"github.com/grailbio/xcorr/query"
)

// Store attempts to record one scored candidate into q's top-N
// results (or decoys, if isDecoy), suppressing it as a duplicate count
// bump against an already-stored identical peptide (same length, same
// mass within config.FloatZero, same residues, and -- for a variable-
// mod search -- same modification placement).
//
// xcorr must already be clamped to >= 0 by the caller (spec.md §4.7).
// Store takes q's lock for its entire body.
func Store(
	cfg *config.Search,
	q *query.Query,
	isDecoy bool,
	peptide []byte,
	prev, next byte,
	proteinName string,
	pepMass, xcorr float64,
	totalIons int,
	modSites []byte,
	varModSearch bool,
) {
	q.Lock()
	defer q.Unlock()

	bumpHistogram(cfg, q, isDecoy, xcorr)

	var stored *[config.NumStored]query.Result
	var lowest *float64
	var matched *int
	if isDecoy {
		stored, lowest, matched = &q.Decoys, &q.LowestDecoyScore, &q.MatchedDecoyCount
	} else {
		stored, lowest, matched = &q.Results, &q.LowestScore, &q.MatchedCount
	}
	*matched++

	if xcorr <= *lowest {
		return
	}

	foundVariableMod := varModSearch && anyNonZero(modSites)
	key, farmKey := query.HashIdentity(peptide, modSites)
	for i := range stored {
		r := &stored[i]
		if !r.Occupied || len(r.Peptide) != len(peptide) || math.Abs(r.PepMass-pepMass) > config.FloatZero {
			continue
		}
		if r.Peptide[0] != peptide[0] {
			continue
		}
		if r.FarmKey != farmKey {
			continue
		}
		isDup := r.Key == key
		if isDup && foundVariableMod {
			isDup = bytesEqual(r.ModSites, modSites)
		}
		if isDup {
			r.DuplicateCount++
			return
		}
	}

	idx := lowestScoreIndex(stored)
	r := &stored[idx]
	r.Occupied = true
	r.Peptide = append(r.Peptide[:0], peptide...)
	r.FlankPrev = prev
	r.FlankNext = next
	r.ProteinName = proteinName
	r.PepMass = pepMass
	r.Xcorr = xcorr
	r.TotalIons = totalIons
	r.DuplicateCount = 0
	r.Key = key
	r.FarmKey = farmKey
	if varModSearch {
		r.ModSites = append(r.ModSites[:0], modSites...)
	} else {
		r.ModSites = nil
	}

	newIdx := lowestScoreIndex(stored)
	*lowest = stored[newIdx].Xcorr
}

func lowestScoreIndex(stored *[config.NumStored]query.Result) int {
	idx := 0
	low := stored[0].Xcorr
	for i := 1; i < len(stored); i++ {
		if !stored[i].Occupied {
			return i
		}
		if stored[i].Xcorr < low {
			low = stored[i].Xcorr
			idx = i
		}
	}
	return idx
}

func anyNonZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return true
		}
	}
	return false
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// bumpHistogram increments the correlation histogram bucket for xcorr,
// clamping to the last bucket for an overflow score (spec.md §4.9;
// CometSearch::XcorrScore's HISTO_SIZE clamp).
func bumpHistogram(cfg *config.Search, q *query.Query, isDecoy bool, xcorr float64) {
	bucket := int(xcorr*10.0 + 0.5)
	if bucket >= config.HistoSize {
		bucket = config.HistoSize - 1
	}
	if bucket < 0 {
		bucket = 0
	}
	if isDecoy {
		q.DecoyHistogram[bucket]++
	} else {
		q.CorrHistogram[bucket]++
	}
}
