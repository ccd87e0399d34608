// Package taxes computes HT/TVA/CSS/TTC breakdowns. All arithmetic goes
// through shopspring/decimal so that the 2-decimal half-up rounding is exact;
// float64 is only the storage representation.
package taxes

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Snapshot freezes the tax rates applied to a document. It is read from the
// configuration once at document creation and copied onto the document row;
// later rate changes never alter existing documents.
type Snapshot struct {
	TauxTVA float64 `json:"taux_tva"`
	TauxCSS float64 `json:"taux_css"`
}

// Breakdown is the result of a tax computation.
type Breakdown struct {
	MontantHT  float64 `json:"montant_ht"`
	MontantTVA float64 `json:"montant_tva"`
	MontantCSS float64 `json:"montant_css"`
	MontantTTC float64 `json:"montant_ttc"`
}

// Compute derives TVA, CSS and TTC from a pre-tax total. Each tax is rounded
// to 2 decimal places (half-up) independently; TTC is the sum of the three
// rounded amounts.
func Compute(montantHT, tauxTVA, tauxCSS float64) Breakdown {
	ht := decimal.NewFromFloat(montantHT).Round(2)
	tva := ht.Mul(decimal.NewFromFloat(tauxTVA)).Div(hundred).Round(2)
	css := ht.Mul(decimal.NewFromFloat(tauxCSS)).Div(hundred).Round(2)
	ttc := ht.Add(tva).Add(css)

	return Breakdown{
		MontantHT:  ht.InexactFloat64(),
		MontantTVA: tva.InexactFloat64(),
		MontantCSS: css.InexactFloat64(),
		MontantTTC: ttc.InexactFloat64(),
	}
}

// ComputeSnapshot applies a rate snapshot to a pre-tax total.
func ComputeSnapshot(montantHT float64, snap Snapshot) Breakdown {
	return Compute(montantHT, snap.TauxTVA, snap.TauxCSS)
}

// LineAmount computes a line item's montant_ht = quantité × prix unitaire,
// rounded to 2 decimal places.
func LineAmount(quantite, prixUnitaire float64) float64 {
	return decimal.NewFromFloat(quantite).
		Mul(decimal.NewFromFloat(prixUnitaire)).
		Round(2).
		InexactFloat64()
}

// Round2 rounds a monetary amount to 2 decimal places, half-up.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
