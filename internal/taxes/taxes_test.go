package taxes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompute_StandardRates(t *testing.T) {
	// 2 × 500 000 @ TVA 18% + CSS 1%
	ht := LineAmount(2, 500000)
	assert.Equal(t, 1000000.0, ht)

	b := Compute(ht, 18, 1)
	assert.Equal(t, 1000000.0, b.MontantHT)
	assert.Equal(t, 180000.0, b.MontantTVA)
	assert.Equal(t, 10000.0, b.MontantCSS)
	assert.Equal(t, 1190000.0, b.MontantTTC)
}

func TestCompute_ZeroRates(t *testing.T) {
	b := Compute(250000, 0, 0)
	assert.Equal(t, 0.0, b.MontantTVA)
	assert.Equal(t, 0.0, b.MontantCSS)
	assert.Equal(t, 250000.0, b.MontantTTC)
}

func TestCompute_ZeroAmount(t *testing.T) {
	b := Compute(0, 18, 1)
	assert.Equal(t, 0.0, b.MontantHT)
	assert.Equal(t, 0.0, b.MontantTTC)
}

func TestCompute_RoundingHalfUp(t *testing.T) {
	// 333.33 × 18% = 59.9994 → 60.00 ; × 1% = 3.3333 → 3.33
	b := Compute(333.33, 18, 1)
	assert.Equal(t, 60.0, b.MontantTVA)
	assert.Equal(t, 3.33, b.MontantCSS)
	assert.Equal(t, 396.66, b.MontantTTC)

	// half-up: 0.125 → 0.13
	assert.Equal(t, 0.13, Round2(0.125))
}

func TestLineAmount_Fractional(t *testing.T) {
	// 1.5 × 333.335 = 500.0025 → 500.00
	assert.Equal(t, 500.0, LineAmount(1.5, 333.335))
}

func TestComputeSnapshot(t *testing.T) {
	snap := Snapshot{TauxTVA: 18, TauxCSS: 1}
	b := ComputeSnapshot(1000000, snap)
	assert.Equal(t, 1190000.0, b.MontantTTC)
}
