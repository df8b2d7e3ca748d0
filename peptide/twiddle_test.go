package peptide

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func binomial(n, k int) int {
	if k < 0 || k > n {
		return 0
	}
	num, den := 1, 1
	for i := 0; i < k; i++ {
		num *= n - i
		den *= i + 1
	}
	return num / den
}

func TestAllCombinationsCount(t *testing.T) {
	for n := 1; n <= 8; n++ {
		for m := 0; m <= n; m++ {
			combos := AllCombinations(n, m)
			assert.Equal(t, binomial(n, m), len(combos), "n=%d m=%d", n, m)
			seen := map[string]bool{}
			for _, c := range combos {
				assert.Len(t, c, n)
				count := 0
				key := make([]byte, n)
				for i, b := range c {
					if b {
						count++
						key[i] = '1'
					} else {
						key[i] = '0'
					}
				}
				assert.Equal(t, m, count)
				assert.False(t, seen[string(key)], "duplicate pattern %s", key)
				seen[string(key)] = true
			}
		}
	}
}

func TestAllCombinationsZero(t *testing.T) {
	combos := AllCombinations(5, 0)
	assert.Len(t, combos, 1)
	for _, b := range combos[0] {
		assert.False(t, b)
	}
}

func TestAllCombinationsFull(t *testing.T) {
	combos := AllCombinations(4, 4)
	assert.Len(t, combos, 1)
	for _, b := range combos[0] {
		assert.True(t, b)
	}
}

func TestNewTwiddlePanicsOnInvalidArgs(t *testing.T) {
	assert.Panics(t, func() { NewTwiddle(3, 5) })
	assert.Panics(t, func() { NewTwiddle(-1, 0) })
}
