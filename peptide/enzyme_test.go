package peptide

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/grailbio/xcorr/config"
)

func trypsinConfig(termini config.NumEnzymeTermini, missed int) *config.Search {
	return &config.Search{
		SearchEnzyme:        config.Enzyme{Name: "Trypsin", Offset: 1, BreakAA: "KR", NoBreakAA: "P"},
		NumEnzymeTermini:    termini,
		AllowedMissedCleave: missed,
	}
}

// "MKAGERPLK": M K A G E R P L K (indices 0..8).
// Tryptic cut sites: after K@1 (followed by A, ok); NOT after R@5
// (followed by P, blocked); protein boundary at K@8.
func TestEnzymeOKFullTrypticPeptide(t *testing.T) {
	residues := []byte("MKAGERPLK")
	cfg := trypsinConfig(config.TerminiBoth, 0)
	assert.True(t, EnzymeOK(cfg, residues, 2, 8))
}

func TestBeginCleavageBlockedByProline(t *testing.T) {
	enz := &config.Enzyme{Name: "Trypsin", Offset: 1, BreakAA: "KR", NoBreakAA: "P"}
	// "AKPDEFGK": K@1 followed by P@2 -- not a legal tryptic N-terminus.
	residues := []byte("AKPDEFGK")
	assert.False(t, beginCleavage(enz, residues, 2))
}

func TestEnzymeOKProteinTermini(t *testing.T) {
	residues := []byte("ACDEFGK")
	cfg := trypsinConfig(config.TerminiBoth, 0)
	assert.True(t, EnzymeOK(cfg, residues, 0, len(residues)-1))
}

func TestMissedCleavageCount(t *testing.T) {
	enz := &config.Enzyme{Name: "Trypsin", Offset: 1, BreakAA: "KR", NoBreakAA: "P"}
	// "AKBRCK": internal cut sites after K@1 and R@3 (both followed by
	// non-proline residues), within window [0,5]; the cut defining the
	// window's own C-terminus (i==end) is excluded from the count.
	residues := []byte("AKBRCK")
	n := missedCleavages(enz, residues, 0, 5)
	assert.Equal(t, 2, n)
}

func TestEnzymeOKTerminiEither(t *testing.T) {
	residues := []byte("MKAGERPLK")
	cfg := trypsinConfig(config.TerminiEither, 0)
	// Begins right after the K@1 cut (legal N-term); ends at G@3, not a
	// cut site, but "either" mode only requires one legal terminus.
	assert.True(t, EnzymeOK(cfg, residues, 2, 3))
}

func TestEnzymeOKRejectsTooManyMissedCleavages(t *testing.T) {
	cfg := trypsinConfig(config.TerminiBoth, 0)
	residues := []byte("AKBRCK")
	assert.False(t, EnzymeOK(cfg, residues, 0, 5))
	cfg2 := trypsinConfig(config.TerminiBoth, 2)
	assert.True(t, EnzymeOK(cfg2, residues, 0, 5))
}
