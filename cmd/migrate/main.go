package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/mkoumba/translog-api/internal/config"
	"github.com/mkoumba/translog-api/internal/database"
	"github.com/mkoumba/translog-api/internal/models"
	"github.com/mkoumba/translog-api/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Setup(cfg.Environment)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Prime tables live in the external OPS and CNV databases and are never
	// migrated from here.
	err = db.AutoMigrate(
		&models.Client{},
		&models.Transitaire{},
		&models.Armateur{},
		&models.Banque{},
		&models.Devis{},
		&models.OrdreTravail{},
		&models.Facture{},
		&models.LigneOperation{},
		&models.Conteneur{},
		&models.OperationItem{},
		&models.LotItem{},
		&models.Paiement{},
		&models.Annulation{},
		&models.MouvementCaisse{},
		&models.CreditBancaire{},
		&models.EcheanceCredit{},
		&models.RemboursementCredit{},
		&models.TaxeMensuelle{},
		&models.DocumentSequence{},
		&models.AuditLog{},
	)
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	logger.Info("Migration completed")
}
