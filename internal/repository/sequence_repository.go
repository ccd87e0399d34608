package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mkoumba/translog-api/internal/models"
)

// SequenceRepository allocates document numbers from a per-(prefix, year)
// monotonic counter. Allocation must run inside the transaction that creates
// the document so that a rollback releases the number's row lock without
// leaving a gap observable to concurrent writers.
type SequenceRepository interface {
	// Next returns the next number formatted "{PREFIX}-{YEAR}-{0001}".
	Next(tx *gorm.DB, prefix string, year int) (string, error)
}

type sequenceRepository struct{}

// NewSequenceRepository creates a new sequence repository
func NewSequenceRepository() SequenceRepository {
	return &sequenceRepository{}
}

// Next increments the counter row under SELECT ... FOR UPDATE. The read-max
// then-increment approach is racy under concurrent writers; the locked
// counter serializes them instead. A first-use insert can race another
// writer, in which case the unique (prefix, annee) constraint fires and we
// fall back to locking the row the winner created.
func (r *sequenceRepository) Next(tx *gorm.DB, prefix string, year int) (string, error) {
	var seq models.DocumentSequence

	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("prefix = ? AND annee = ?", prefix, year).
		First(&seq).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		seq = models.DocumentSequence{Prefix: prefix, Annee: year}
		if createErr := tx.Create(&seq).Error; createErr != nil {
			if !errors.Is(createErr, gorm.ErrDuplicatedKey) {
				return "", fmt.Errorf("création du compteur %s-%d: %w", prefix, year, createErr)
			}
			// lost the first-insert race, lock the winner's row
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("prefix = ? AND annee = ?", prefix, year).
				First(&seq).Error; err != nil {
				return "", fmt.Errorf("relecture du compteur %s-%d: %w", prefix, year, err)
			}
		}
	} else if err != nil {
		return "", fmt.Errorf("lecture du compteur %s-%d: %w", prefix, year, err)
	}

	seq.DernierNumero++
	if err := tx.Model(&models.DocumentSequence{}).
		Where("id = ?", seq.ID).
		Update("dernier_numero", seq.DernierNumero).Error; err != nil {
		return "", fmt.Errorf("incrément du compteur %s-%d: %w", prefix, year, err)
	}

	return fmt.Sprintf("%s-%d-%04d", prefix, year, seq.DernierNumero), nil
}
