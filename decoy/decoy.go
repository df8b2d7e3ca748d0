// Package decoy builds the reversed-peptide decoy sequence for one
// matched window, preserving the residue the search enzyme's cut rule
// pins in place (spec.md §4.8 / §8 scenario 5), mirroring the
// szDecoyPeptide construction in CometSearch::Search.
package decoy

import (
	"github.com/grailbio/xcorr/config"
	"github.com/grailbio/xcorr/peptide"
)

// ProteinNamePrefix is prepended to every decoy protein name.
const ProteinNamePrefix = "DECOY_"

// ProteinName returns the decoy protein name, truncated to
// config.WidthReference bytes (minus the trailing NUL the original's
// fixed-size buffer reserves).
func ProteinName(name string) string {
	full := ProteinNamePrefix + name
	if len(full) > config.WidthReference-1 {
		full = full[:config.WidthReference-1]
	}
	return full
}

// Reverse builds the decoy peptide's residues (length end-start+1,
// excluding flanks) by reversing residues[start:end+1] around the
// pivot the search enzyme's offset pins in place: an offset-1 (C-side
// cutter, e.g. trypsin) enzyme keeps the last residue fixed, an
// offset-0 (N-side cutter) enzyme keeps the first residue fixed.
func Reverse(enz *config.Enzyme, residues []byte, start, end int) []byte {
	n := end - start + 1
	out := make([]byte, n)
	if enz.Offset == 1 {
		// Last residue stays the same: ABCDEK -> EDCBAK.
		for i := 0; i < n-1; i++ {
			out[i] = residues[end-1-i]
		}
		out[n-1] = residues[end]
	} else {
		// First residue stays the same: ABCDEK -> AKEDCB.
		out[0] = residues[start]
		for i := 1; i < n; i++ {
			out[i] = residues[end-i+1]
		}
	}
	return out
}

// ReverseSites permutes a modification placement to match Reverse's
// residue permutation, keeping terminus flags attached to the
// physical peptide terminus (not the pivot residue).
func ReverseSites(enz *config.Enzyme, sites peptide.ModSites) peptide.ModSites {
	if sites == nil {
		return nil
	}
	n := len(sites) - 2
	out := peptide.NewModSites(n)
	if enz.Offset == 1 {
		for i := 0; i < n-1; i++ {
			out[i] = sites[n-2-i]
		}
		out[n-1] = sites[n-1]
	} else {
		out[0] = sites[0]
		for i := 1; i < n; i++ {
			out[i] = sites[n-i]
		}
	}
	out.SetNterm(sites.Nterm())
	out.SetCterm(sites.Cterm())
	return out
}

// Flanks returns the previous/next flanking residues for a window,
// using '-' for a window that sits at the protein's physical boundary
// (spec.md §4.8).
func Flanks(residues []byte, start, end int) (prev, next byte) {
	if start == 0 {
		prev = '-'
	} else {
		prev = residues[start-1]
	}
	if end == len(residues)-1 {
		next = '-'
	} else {
		next = residues[end+1]
	}
	return prev, next
}
