// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

/*
xcorr-search is a thin wiring binary around the xcorr search engine.
Parameter-file loading, command-line spectrum parsing, and result
serialization are the job of an external collaborator; this binary
only demonstrates end-to-end wiring by reading a gob-encoded query set
produced by such a collaborator and a FASTA/FASTA.gz/S3 protein
database, running the search, and printing a plain-text summary.
*/

import (
	"encoding/gob"
	"flag"
	"fmt"
	"io/ioutil"
	"os"
	"runtime"

	"github.com/gogo/protobuf/proto"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/pkg/errors"

	"github.com/grailbio/xcorr/biopb"
	"github.com/grailbio/xcorr/config"
	"github.com/grailbio/xcorr/masstable"
	"github.com/grailbio/xcorr/protein"
	"github.com/grailbio/xcorr/query"
	"github.com/grailbio/xcorr/search"
)

var (
	dbPath        = flag.String("database", "", "Protein FASTA database path or s3:// URI; required")
	queriesPath   = flag.String("queries", "", "Path to a gob-encoded []*query.Query produced by an external spectrum-preprocessing step; required")
	fragmentTol   = flag.Float64("fragment-bin-tol", 1.0005079, "Fragment bin width in Da")
	fragmentOff   = flag.Float64("fragment-bin-offset", 0.4, "Fragment bin offset in [0,1]")
	allowedMissed = flag.Int("allowed-missed-cleavage", 2, "Maximum allowed missed cleavages")
	numResults    = flag.Int("num-results", 5, "Number of top results to retain per query")
	decoySearch   = flag.Int("decoy-search", 0, "0=off, 1=inline (concatenated with targets), 2=separate store")
	minThreads    = flag.Int("min-threads", 1, "Minimum worker goroutines")
	maxThreads    = flag.Int("max-threads", 0, "Maximum worker goroutines; 0 = runtime.NumCPU()")
	summaryOut    = flag.String("summary-out", "", "Optional path to write a gogo/protobuf-encoded biopb.SearchSummary")
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s -database=... -queries=... [options]\n", os.Args[0])
	flag.PrintDefaults()
}

func loadQueries(path string) ([]*query.Query, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening queries file %s", path)
	}
	defer f.Close()
	var qs []*query.Query
	if err := gob.NewDecoder(f).Decode(&qs); err != nil {
		return nil, errors.Wrapf(err, "decoding queries file %s", path)
	}
	return qs, nil
}

func defaultConfig() *config.Search {
	return &config.Search{
		MassTypeParent:   masstable.Monoisotopic,
		MassTypeFragment: masstable.Monoisotopic,
		Masses:           masstable.New(masstable.Monoisotopic, masstable.Monoisotopic),

		PeptideMassTolerance:   *fragmentTol,
		PeptideMassUnits:       config.UnitsAMU,
		PrecursorToleranceType: config.ToleranceMHPlus,
		IsotopeError:           config.IsotopeNone,

		FragmentBinTol:    *fragmentTol,
		FragmentBinOffset: *fragmentOff,

		SearchEnzyme:        config.Enzyme{Name: "Trypsin", Offset: 1, BreakAA: "KR", NoBreakAA: "P"},
		SampleEnzyme:        config.Enzyme{Name: "Trypsin", Offset: 1, BreakAA: "KR", NoBreakAA: "P"},
		NumEnzymeTermini:    config.TerminiBoth,
		AllowedMissedCleave: *allowedMissed,

		UseBIons: true,
		UseYIons: true,

		MaxFragmentCharge:  2,
		MaxPrecursorCharge: 5,
		DigestMassRangeMin: 600,
		DigestMassRangeMax: 5000,

		DecoySearch: config.DecoySearch(*decoySearch),
		NumResults:  *numResults,
		NumThreads:  *maxThreads,
	}
}

func main() {
	flag.Usage = usage
	shutdown := grail.Init()
	defer shutdown()

	if *dbPath == "" || *queriesPath == "" {
		log.Fatalf("-database and -queries are both required")
	}
	if *maxThreads == 0 {
		*maxThreads = runtime.NumCPU()
	}

	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	queries, err := loadQueries(*queriesPath)
	if err != nil {
		log.Fatalf("%v", err)
	}
	qs := query.NewSet(queries)

	db, err := protein.OpenDatabase(*dbPath)
	if err != nil {
		log.Fatalf("opening database %s: %v", *dbPath, err)
	}
	defer db.Close()

	stats, err := search.Run(cfg, qs, db, *minThreads, *maxThreads)
	if err != nil {
		log.Fatalf("search failed: %v", err)
	}

	fmt.Printf("proteins searched: %d\n", stats.ProteinsSearched)
	fmt.Printf("peptide-query matches scored: %d\n", stats.PeptidesScored)

	summary := &biopb.SearchSummary{
		ProteinsSearched: int64(stats.ProteinsSearched),
		PeptidesScored:   int64(stats.PeptidesScored),
		QueriesSearched:  int64(len(qs.Queries)),
	}
	for i, q := range qs.Queries {
		fmt.Printf("query %d: matched=%d matched_decoy=%d top_xcorr=%.4f\n",
			i, q.MatchedCount, q.MatchedDecoyCount, topXcorr(q))
		summary.TotalMatches += int64(q.MatchedCount)
		summary.TotalDecoyMatches += int64(q.MatchedDecoyCount)
	}

	if *summaryOut != "" {
		if err := writeSummary(*summaryOut, summary); err != nil {
			log.Error.Printf("writing summary to %s: %v", *summaryOut, err)
		}
	}
}

func writeSummary(path string, summary *biopb.SearchSummary) error {
	b, err := proto.Marshal(summary)
	if err != nil {
		return errors.Wrap(err, "marshaling search summary")
	}
	return ioutil.WriteFile(path, b, 0644)
}

func topXcorr(q *query.Query) float64 {
	best := 0.0
	for _, r := range q.Results {
		if r.Occupied && r.Xcorr > best {
			best = r.Xcorr
		}
	}
	return best
}
