package statemachine

import (
	"context"

	"github.com/looplab/fsm"
	"github.com/mkoumba/translog-api/internal/models"
)

// FactureFSM wraps a facture with its state machine.
//
// brouillon → envoyee ⇄ partiellement_payee → payee
// annulee reachable from any non-terminal, non-payee state.
type FactureFSM struct {
	facture *models.Facture
	fsm     *fsm.FSM
}

// NewFactureFSM creates a new facture state machine
func NewFactureFSM(facture *models.Facture) *FactureFSM {
	f := &FactureFSM{facture: facture}

	f.fsm = fsm.NewFSM(
		facture.Statut,
		fsm.Events{
			{Name: "envoyer", Src: []string{models.FactureStatutBrouillon}, Dst: models.FactureStatutEnvoyee},
			{Name: "paiement_partiel", Src: []string{models.FactureStatutEnvoyee}, Dst: models.FactureStatutPartiellementPayee},
			// a deleted payment can bring a partially paid facture back to envoyee
			{Name: "reinitialiser", Src: []string{models.FactureStatutPartiellementPayee}, Dst: models.FactureStatutEnvoyee},
			{Name: "solder", Src: []string{models.FactureStatutEnvoyee, models.FactureStatutPartiellementPayee}, Dst: models.FactureStatutPayee},
			{Name: "annuler", Src: []string{models.FactureStatutBrouillon, models.FactureStatutEnvoyee, models.FactureStatutPartiellementPayee}, Dst: models.FactureStatutAnnulee},
		},
		fsm.Callbacks{},
	)

	return f
}

func (f *FactureFSM) apply(ctx context.Context, event, target string) error {
	if !f.fsm.Can(event) {
		return newTransitionError("facture", f.facture.Statut, target)
	}
	if err := f.fsm.Event(ctx, event); err != nil {
		return newTransitionError("facture", f.facture.Statut, target)
	}
	f.facture.Statut = f.fsm.Current()
	return nil
}

// Envoyer transitions the facture to envoyee
func (f *FactureFSM) Envoyer(ctx context.Context) error {
	return f.apply(ctx, "envoyer", models.FactureStatutEnvoyee)
}

// PaiementPartiel transitions the facture to partiellement_payee
func (f *FactureFSM) PaiementPartiel(ctx context.Context) error {
	return f.apply(ctx, "paiement_partiel", models.FactureStatutPartiellementPayee)
}

// Reinitialiser brings a partially paid facture back to envoyee
func (f *FactureFSM) Reinitialiser(ctx context.Context) error {
	return f.apply(ctx, "reinitialiser", models.FactureStatutEnvoyee)
}

// Solder transitions the facture to payee
func (f *FactureFSM) Solder(ctx context.Context) error {
	return f.apply(ctx, "solder", models.FactureStatutPayee)
}

// Annuler transitions the facture to annulee
func (f *FactureFSM) Annuler(ctx context.Context) error {
	return f.apply(ctx, "annuler", models.FactureStatutAnnulee)
}

// Current returns the current state
func (f *FactureFSM) Current() string {
	return f.fsm.Current()
}
