// Package search drives the full protein-database scan: it reads
// protein records off an io.Reader, fans them out to a worker pool,
// and for every candidate peptide a worker's enumerator proposes,
// builds ion series, scores against every bracketing query, and
// stores the result -- the library-level equivalent of Comet's
// per-thread CometSearch::Search loop, wired the way
// markduplicates.generateBAM/generatePAM drive their shard workers
// (channel of work items, errors.Once for the first fatal error,
// sync.WaitGroup to join).
package search

import (
	"io"
	"sync"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"

	"github.com/grailbio/xcorr/config"
	"github.com/grailbio/xcorr/decoy"
	"github.com/grailbio/xcorr/ion"
	"github.com/grailbio/xcorr/peptide"
	"github.com/grailbio/xcorr/protein"
	"github.com/grailbio/xcorr/query"
	"github.com/grailbio/xcorr/result"
	"github.com/grailbio/xcorr/score"
)

// Stats accumulates run-wide counters a caller may want for logging.
// Workers add to it under a mutex as each protein finishes; Run
// returns it after every worker has joined.
type Stats struct {
	ProteinsSearched int
	PeptidesScored   int
}

// Run reads FASTA-equivalent protein records from proteins, searches
// every one against qs under cfg, and returns the first fatal error
// raised while reading the records (io errors from the protein
// iterator, malformed records); proteins already handed to workers are
// still searched. minThreads/maxThreads bound the worker pool size;
// Run clamps to at least 1 and at most cfg.NumThreads if maxThreads
// exceeds it.
func Run(cfg *config.Search, qs *query.Set, proteins io.Reader, minThreads, maxThreads int) (Stats, error) {
	if minThreads < 1 {
		minThreads = 1
	}
	if maxThreads < minThreads {
		maxThreads = minThreads
	}
	if cfg.NumThreads > 0 && maxThreads > cfg.NumThreads {
		maxThreads = cfg.NumThreads
	}

	// Bound the queue to 1 job ahead per idle worker (spec.md §4.1), so
	// the producer can't run unboundedly far ahead of the pool.
	recordCh := make(chan *protein.Record, maxThreads)
	e := errors.Once{}
	var wg sync.WaitGroup
	var mu sync.Mutex
	var stats Stats

	for w := 0; w < maxThreads; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			sc := ion.NewScratch()
			for rec := range recordCh {
				n := searchProtein(cfg, qs, rec, sc)
				mu.Lock()
				stats.ProteinsSearched++
				stats.PeptidesScored += n
				mu.Unlock()
			}
		}(w)
	}

	it := protein.NewIterator(proteins)
	for {
		rec, err := it.Next()
		if err != nil {
			if err != io.EOF {
				e.Set(err)
			}
			break
		}
		recordCh <- rec
	}
	close(recordCh)
	wg.Wait()

	log.Debug.Printf("search: %d proteins, %d peptide-query matches scored", stats.ProteinsSearched, stats.PeptidesScored)
	return stats, e.Err()
}

// searchProtein runs the forward scan over rec, plus the clip-
// methionine second pass when enabled (spec.md §4.2), and returns the
// number of peptide-query matches scored.
func searchProtein(cfg *config.Search, qs *query.Set, rec *protein.Record, sc *ion.Scratch) int {
	n := 0
	n += searchSequence(cfg, qs, rec.Name, rec.Residues, true, sc)

	if cfg.ClipNtermMethionine {
		if clipped, ok := protein.ClipMethionine(rec); ok {
			n += searchSequence(cfg, qs, rec.Name, clipped, false, sc)
		}
	}
	return n
}

func searchSequence(cfg *config.Search, qs *query.Set, proteinName string, residues []byte, isProteinStart bool, sc *ion.Scratch) int {
	n := 0
	peptide.Enumerate(cfg, cfg.Masses, qs, residues, isProteinStart, func(c peptide.Candidate) {
		n += scoreAndStore(cfg, qs, proteinName, residues, c, isProteinStart, sc)
	})
	return n
}

// scoreAndStore scores one accepted candidate against every query
// whose tolerance window brackets its mass (spec.md §4.3 step 3 /
// §4.6-4.9), and -- whenever decoy search is enabled -- repeats the
// same work for the enzyme-pivoted reversed decoy peptide. The
// fragment-ion set is rebuilt per query rather than cached across the
// loop: MaxFragCharge/ArraySize are per-query fields (spec.md §3) that
// can differ between two overlapping-tolerance-window queries, and a
// set built for one query's bounds is not safe to index with another's.
func scoreAndStore(cfg *config.Search, qs *query.Set, proteinName string, residues []byte, c peptide.Candidate, isProteinStart bool, sc *ion.Scratch) int {
	isProteinEnd := c.End == len(residues)-1
	prev, next := decoy.Flanks(residues, c.Start, c.End)
	varModSearch := cfg.MaxVarModsInPeptide > 0

	scored := 0

	i := qs.FirstCandidate(c.Mass)
	for ; i < len(qs.Queries); i++ {
		q := qs.Queries[i]
		if c.Mass < q.TolMinus {
			break
		}
		if !query.CheckMassMatch(cfg, q, c.Mass) {
			continue
		}
		built := ion.Build(cfg, cfg.Masses, residues, c.Start, c.End, c.Sites, isProteinStart, isProteinEnd, q.MaxFragCharge, q.ArraySize, sc)
		storeMatch(cfg, q, false, residues, c, prev, next, proteinName, built, varModSearch)
		scored++

		if cfg.DecoySearch != config.DecoyOff {
			scoreDecoy(cfg, q, residues, c, prev, next, proteinName, isProteinStart, isProteinEnd, sc)
		}
	}
	return scored
}

// scoreDecoy scores the enzyme-pivoted reversed decoy peptide and
// stores it. Per spec.md §6, decoy_search==1 ("concatenated") makes the
// decoy compete for the same top-N slots as target hits, while only
// decoy_search==2 ("separate") routes it into q.Decoys -- mirroring
// CometSearch.cpp's StorePeptide, where only iDecoySearch==2 branches
// to the decoy store and iDecoySearch==1 falls through to the regular
// results/histogram/match-count path.
func scoreDecoy(cfg *config.Search, q *query.Query, residues []byte, c peptide.Candidate, prev, next byte, proteinName string, isProteinStart, isProteinEnd bool, sc *ion.Scratch) {
	decoyResidues := decoy.Reverse(&cfg.SearchEnzyme, residues, c.Start, c.End)
	decoySites := decoy.ReverseSites(&cfg.SearchEnzyme, c.Sites)
	decoyName := decoy.ProteinName(proteinName)

	built := ion.Build(cfg, cfg.Masses, decoyResidues, 0, len(decoyResidues)-1, decoySites, isProteinStart, isProteinEnd, q.MaxFragCharge, q.ArraySize, sc)
	isDecoy := cfg.DecoySearch == config.DecoySeparate
	storeMatch(cfg, q, isDecoy, decoyResidues, peptide.Candidate{Start: 0, End: len(decoyResidues) - 1, Mass: c.Mass, Sites: decoySites}, prev, next, decoyName, built, cfg.MaxVarModsInPeptide > 0)
}

func storeMatch(cfg *config.Search, q *query.Query, isDecoy bool, residues []byte, c peptide.Candidate, prev, next byte, proteinName string, built *ion.Binned, varModSearch bool) {
	xc := score.Xcorr(cfg, q, built)
	totalIons := totalIonsFor(cfg, q, c.End-c.Start+1)

	var modSites []byte
	if c.Sites != nil {
		modSites = []byte(c.Sites)
	}

	result.Store(cfg, q, isDecoy, residues[c.Start:c.End+1], prev, next, proteinName, c.Mass, xc, totalIons, modSites, varModSearch)
}

func totalIonsFor(cfg *config.Search, q *query.Query, lenPeptide int) int {
	n := cfg.NumIonSeries()
	if q.Charge > 2 {
		return (lenPeptide - 1) * (q.Charge - 1) * n
	}
	return (lenPeptide - 1) * n
}

