package statemachine

import (
	"context"

	"github.com/looplab/fsm"
	"github.com/mkoumba/translog-api/internal/models"
)

// DevisFSM wraps a devis with its state machine.
//
// brouillon → {envoye, annule}
// envoye    → {accepte, refuse, expire}
// {accepte, refuse, expire} → converti
// converti and annule are terminal.
type DevisFSM struct {
	devis *models.Devis
	fsm   *fsm.FSM
}

// NewDevisFSM creates a new devis state machine
func NewDevisFSM(devis *models.Devis) *DevisFSM {
	d := &DevisFSM{devis: devis}

	d.fsm = fsm.NewFSM(
		devis.Statut,
		fsm.Events{
			{Name: "envoyer", Src: []string{models.DevisStatutBrouillon}, Dst: models.DevisStatutEnvoye},
			{Name: "annuler", Src: []string{models.DevisStatutBrouillon}, Dst: models.DevisStatutAnnule},
			{Name: "accepter", Src: []string{models.DevisStatutEnvoye}, Dst: models.DevisStatutAccepte},
			{Name: "refuser", Src: []string{models.DevisStatutEnvoye}, Dst: models.DevisStatutRefuse},
			{Name: "expirer", Src: []string{models.DevisStatutEnvoye}, Dst: models.DevisStatutExpire},
			{Name: "convertir", Src: []string{models.DevisStatutAccepte, models.DevisStatutRefuse, models.DevisStatutExpire}, Dst: models.DevisStatutConverti},
		},
		fsm.Callbacks{},
	)

	return d
}

func (d *DevisFSM) apply(ctx context.Context, event, target string) error {
	if !d.fsm.Can(event) {
		return newTransitionError("devis", d.devis.Statut, target)
	}
	if err := d.fsm.Event(ctx, event); err != nil {
		return newTransitionError("devis", d.devis.Statut, target)
	}
	d.devis.Statut = d.fsm.Current()
	return nil
}

// Envoyer transitions the devis to envoye
func (d *DevisFSM) Envoyer(ctx context.Context) error {
	return d.apply(ctx, "envoyer", models.DevisStatutEnvoye)
}

// Accepter transitions the devis to accepte
func (d *DevisFSM) Accepter(ctx context.Context) error {
	return d.apply(ctx, "accepter", models.DevisStatutAccepte)
}

// Refuser transitions the devis to refuse
func (d *DevisFSM) Refuser(ctx context.Context) error {
	return d.apply(ctx, "refuser", models.DevisStatutRefuse)
}

// Expirer transitions the devis to expire
func (d *DevisFSM) Expirer(ctx context.Context) error {
	return d.apply(ctx, "expirer", models.DevisStatutExpire)
}

// Annuler transitions the devis to annule
func (d *DevisFSM) Annuler(ctx context.Context) error {
	return d.apply(ctx, "annuler", models.DevisStatutAnnule)
}

// Convertir marks the devis converted into an ordre de travail
func (d *DevisFSM) Convertir(ctx context.Context) error {
	return d.apply(ctx, "convertir", models.DevisStatutConverti)
}

// Current returns the current state
func (d *DevisFSM) Current() string {
	return d.fsm.Current()
}
