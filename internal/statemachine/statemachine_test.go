package statemachine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkoumba/translog-api/internal/models"
)

func TestDevisFSM_HappyPath(t *testing.T) {
	ctx := context.Background()
	devis := &models.Devis{Statut: models.DevisStatutBrouillon}

	f := NewDevisFSM(devis)
	require.NoError(t, f.Envoyer(ctx))
	assert.Equal(t, models.DevisStatutEnvoye, devis.Statut)

	require.NoError(t, f.Accepter(ctx))
	require.NoError(t, f.Convertir(ctx))
	assert.Equal(t, models.DevisStatutConverti, devis.Statut)
}

func TestDevisFSM_IllegalTransitionNamesStates(t *testing.T) {
	ctx := context.Background()
	devis := &models.Devis{Statut: models.DevisStatutBrouillon}

	err := NewDevisFSM(devis).Accepter(ctx)
	require.Error(t, err)

	var te *TransitionError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, models.DevisStatutBrouillon, te.Current)
	assert.Equal(t, models.DevisStatutAccepte, te.Requested)
	// status unchanged on failure
	assert.Equal(t, models.DevisStatutBrouillon, devis.Statut)
}

func TestDevisFSM_TerminalStates(t *testing.T) {
	ctx := context.Background()

	converti := &models.Devis{Statut: models.DevisStatutConverti}
	assert.Error(t, NewDevisFSM(converti).Envoyer(ctx))
	assert.Error(t, NewDevisFSM(converti).Annuler(ctx))

	annule := &models.Devis{Statut: models.DevisStatutAnnule}
	assert.Error(t, NewDevisFSM(annule).Envoyer(ctx))
	assert.Error(t, NewDevisFSM(annule).Convertir(ctx))
}

func TestOrdreFSM_HappyPath(t *testing.T) {
	ctx := context.Background()
	ordre := &models.OrdreTravail{Statut: models.OrdreStatutEnAttente}

	f := NewOrdreFSM(ordre)
	require.NoError(t, f.Demarrer(ctx))
	require.NoError(t, f.Terminer(ctx))
	require.NoError(t, f.Facturer(ctx))
	assert.Equal(t, models.OrdreStatutFacture, ordre.Statut)
}

func TestOrdreFSM_AnnulerFromNonTerminal(t *testing.T) {
	ctx := context.Background()

	for _, statut := range []string{models.OrdreStatutEnAttente, models.OrdreStatutEnCours, models.OrdreStatutTermine} {
		ordre := &models.OrdreTravail{Statut: statut}
		assert.NoError(t, NewOrdreFSM(ordre).Annuler(ctx), "annuler depuis %s", statut)
	}

	facture := &models.OrdreTravail{Statut: models.OrdreStatutFacture}
	assert.Error(t, NewOrdreFSM(facture).Annuler(ctx))
}

func TestOrdreFSM_FacturerRequiresTermine(t *testing.T) {
	ctx := context.Background()
	ordre := &models.OrdreTravail{Statut: models.OrdreStatutEnCours}
	assert.Error(t, NewOrdreFSM(ordre).Facturer(ctx))
}

func TestFactureFSM_PaymentCycle(t *testing.T) {
	ctx := context.Background()
	facture := &models.Facture{Statut: models.FactureStatutBrouillon}

	f := NewFactureFSM(facture)
	require.NoError(t, f.Envoyer(ctx))
	require.NoError(t, f.PaiementPartiel(ctx))
	assert.Equal(t, models.FactureStatutPartiellementPayee, facture.Statut)

	// deleting the payment goes back to envoyee
	require.NoError(t, f.Reinitialiser(ctx))
	assert.Equal(t, models.FactureStatutEnvoyee, facture.Statut)

	require.NoError(t, f.Solder(ctx))
	assert.Equal(t, models.FactureStatutPayee, facture.Statut)
}

func TestFactureFSM_AnnulerBlockedOncePayee(t *testing.T) {
	ctx := context.Background()

	payee := &models.Facture{Statut: models.FactureStatutPayee}
	assert.Error(t, NewFactureFSM(payee).Annuler(ctx))

	partielle := &models.Facture{Statut: models.FactureStatutPartiellementPayee}
	assert.NoError(t, NewFactureFSM(partielle).Annuler(ctx))
}
