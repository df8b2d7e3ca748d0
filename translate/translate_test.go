package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComplement(t *testing.T) {
	assert.Equal(t, byte('T'), Complement('A'))
	assert.Equal(t, byte('A'), Complement('T'))
	assert.Equal(t, byte('C'), Complement('G'))
	assert.Equal(t, byte('G'), Complement('C'))
	assert.Equal(t, byte('N'), Complement('N'))
}

func TestCodonTable(t *testing.T) {
	assert.Equal(t, byte('M'), codon('A', 'T', 'G'))
	assert.Equal(t, byte('F'), codon('T', 'T', 'T'))
	assert.Equal(t, byte(stop), codon('T', 'A', 'A'))
	assert.Equal(t, byte(stop), codon('T', 'A', 'G'))
	assert.Equal(t, byte(stop), codon('T', 'G', 'A'))
	assert.Equal(t, byte('W'), codon('T', 'G', 'G'))
	// Lowercase input normalizes the same as uppercase.
	assert.Equal(t, codon('A', 'T', 'G'), codon('a', 't', 'g'))
}

func TestOneForward(t *testing.T) {
	// ATG GAT TAA -> M D @ (stop)
	seq := []byte("ATGGATTAA")
	got := One(seq, 0, 1)
	assert.Equal(t, []byte{'M', 'D', stop}, got)
}

func TestOneReverseMatchesComplementReadFromEnd(t *testing.T) {
	// Reverse frame 1 (offset 2, dir -1) reads triplets from the 3' end
	// of the complement strand: starting at index 9-2-1=6 leaves room for
	// two whole triplets (6,5,4) and (3,2,1).
	seq := []byte("ATGGATTAA")
	got := One(seq, 2, -1)
	assert.Len(t, got, 2)
}

func TestTranslateProteinPassthrough(t *testing.T) {
	seq := []byte("ACDEFG")
	out := Translate(seq, FrameProtein)
	assert.Equal(t, [][]byte{seq}, out)
}

func TestTranslateAllYieldsSixFrames(t *testing.T) {
	seq := []byte("ATGGATTAAGGCCATTAGCATGGCA")
	out := Translate(seq, FrameAll)
	assert.Len(t, out, 6)
}

func TestTranslateAllForwardYieldsThreeFrames(t *testing.T) {
	seq := []byte("ATGGATTAAGGCCATTAGCATGGCA")
	out := Translate(seq, FrameAllForward)
	assert.Len(t, out, 3)
}

func TestFrameOffsetRemap(t *testing.T) {
	// spec.md §9: reverse frames remap 4->2, 5->1, 6->0.
	off, dir, ok := frameOffset(FrameReverse1)
	assert.True(t, ok)
	assert.Equal(t, 2, off)
	assert.Equal(t, -1, dir)

	off, dir, ok = frameOffset(FrameReverse3)
	assert.True(t, ok)
	assert.Equal(t, 0, off)
	assert.Equal(t, -1, dir)
}
