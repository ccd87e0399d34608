package statemachine

import (
	"context"

	"github.com/looplab/fsm"
	"github.com/mkoumba/translog-api/internal/models"
)

// OrdreFSM wraps an ordre de travail with its state machine.
//
// en_attente → en_cours → termine → facture
// annule reachable from any non-terminal state.
type OrdreFSM struct {
	ordre *models.OrdreTravail
	fsm   *fsm.FSM
}

// NewOrdreFSM creates a new ordre de travail state machine
func NewOrdreFSM(ordre *models.OrdreTravail) *OrdreFSM {
	o := &OrdreFSM{ordre: ordre}

	o.fsm = fsm.NewFSM(
		ordre.Statut,
		fsm.Events{
			{Name: "demarrer", Src: []string{models.OrdreStatutEnAttente}, Dst: models.OrdreStatutEnCours},
			{Name: "terminer", Src: []string{models.OrdreStatutEnCours}, Dst: models.OrdreStatutTermine},
			{Name: "facturer", Src: []string{models.OrdreStatutTermine}, Dst: models.OrdreStatutFacture},
			{Name: "annuler", Src: []string{models.OrdreStatutEnAttente, models.OrdreStatutEnCours, models.OrdreStatutTermine}, Dst: models.OrdreStatutAnnule},
		},
		fsm.Callbacks{},
	)

	return o
}

func (o *OrdreFSM) apply(ctx context.Context, event, target string) error {
	if !o.fsm.Can(event) {
		return newTransitionError("ordre de travail", o.ordre.Statut, target)
	}
	if err := o.fsm.Event(ctx, event); err != nil {
		return newTransitionError("ordre de travail", o.ordre.Statut, target)
	}
	o.ordre.Statut = o.fsm.Current()
	return nil
}

// Demarrer transitions the ordre to en_cours
func (o *OrdreFSM) Demarrer(ctx context.Context) error {
	return o.apply(ctx, "demarrer", models.OrdreStatutEnCours)
}

// Terminer transitions the ordre to termine
func (o *OrdreFSM) Terminer(ctx context.Context) error {
	return o.apply(ctx, "terminer", models.OrdreStatutTermine)
}

// Facturer marks the ordre converted into a facture
func (o *OrdreFSM) Facturer(ctx context.Context) error {
	return o.apply(ctx, "facturer", models.OrdreStatutFacture)
}

// Annuler transitions the ordre to annule
func (o *OrdreFSM) Annuler(ctx context.Context) error {
	return o.apply(ctx, "annuler", models.OrdreStatutAnnule)
}

// Current returns the current state
func (o *OrdreFSM) Current() string {
	return o.fsm.Current()
}
