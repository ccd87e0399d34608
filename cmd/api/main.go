package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"

	"github.com/mkoumba/translog-api/internal/cache"
	"github.com/mkoumba/translog-api/internal/config"
	"github.com/mkoumba/translog-api/internal/database"
	"github.com/mkoumba/translog-api/internal/handlers"
	"github.com/mkoumba/translog-api/internal/jobs"
	"github.com/mkoumba/translog-api/internal/middleware"
	"github.com/mkoumba/translog-api/internal/repository"
	"github.com/mkoumba/translog-api/internal/services"
	"github.com/mkoumba/translog-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Setup(cfg.Environment)

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	// External prime databases. A nil handle means the system is not
	// configured and its endpoints answer 503.
	opsDB, err := database.ConnectExternal(cfg.OPSDatabaseURL)
	if err != nil {
		logger.Warn("OPS database unavailable", "error", err)
	}
	cnvDB, err := database.ConnectExternal(cfg.CNVDatabaseURL)
	if err != nil {
		logger.Warn("CNV database unavailable", "error", err)
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		logger.Info("Redis snapshot cache enabled", "addr", cfg.RedisAddr)
	} else {
		logger.Warn("REDIS_ADDR not set, prime reads will not degrade to snapshots")
	}
	primeCache := cache.NewPrimeCache(rdb, cfg.PrimeCacheTTL)

	repos := repository.NewRepositories(db, opsDB, cnvDB)

	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	svcs := services.NewServices(repos, primeCache, cfg, db, worker)

	scheduleJobs(worker, svcs, cfg)

	h := handlers.NewHandlers(svcs)

	router := setupRouter(h, cfg)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	worker.Shutdown()
	logger.Info("Background worker stopped")

	if rdb != nil {
		rdb.Close()
	}

	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

func setupRouter(h *handlers.Handlers, cfg *config.Config) *gin.Engine {
	router := gin.New()

	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	v1 := router.Group("/api/v1")
	{
		// Health checks (public)
		v1.GET("/health", h.Health.Index)
		v1.GET("/health/externes", h.Health.Externes)

		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTSecret))
		{
			// Devis
			devis := protected.Group("/devis")
			{
				devis.GET("", h.Devis.Index)
				devis.POST("", h.Devis.Create)
				devis.GET("/:id", h.Devis.Show)
				devis.PUT("/:id", h.Devis.Update)
				devis.PUT("/:id/lignes", h.Devis.ReplaceLignes)
				devis.POST("/:id/statut", h.Devis.ChangerStatut)
				devis.POST("/:id/convertir", h.Devis.Convertir)
			}

			// Ordres de travail
			ordres := protected.Group("/ordres-travail")
			{
				ordres.GET("", h.Ordre.Index)
				ordres.POST("", h.Ordre.Create)
				ordres.GET("/:id", h.Ordre.Show)
				ordres.PUT("/:id", h.Ordre.Update)
				ordres.PUT("/:id/lignes", h.Ordre.ReplaceLignes)
				ordres.POST("/:id/statut", h.Ordre.ChangerStatut)
				ordres.POST("/:id/convertir", h.Ordre.Convertir)
			}

			// Factures
			factures := protected.Group("/factures")
			{
				factures.GET("", h.Facture.Index)
				factures.POST("", h.Facture.Create)
				factures.GET("/:id", h.Facture.Show)
				factures.PUT("/:id", h.Facture.Update)
				factures.PUT("/:id/lignes", h.Facture.ReplaceLignes)
				factures.POST("/:id/envoyer", h.Facture.Envoyer)
				factures.GET("/:id/paiements", h.Facture.Paiements)
				factures.POST("/:id/paiements", h.Facture.CreatePaiement)
				factures.POST("/:id/annuler", h.Facture.Annuler)
				factures.POST("/:id/rembourser", h.Facture.Rembourser)
			}

			// Paiements
			protected.POST("/paiements/global", h.Paiement.Global)
			protected.DELETE("/paiements/:id", h.Paiement.Delete)

			// Caisse
			caisse := protected.Group("/caisse")
			{
				caisse.GET("/mouvements", h.Caisse.Index)
				caisse.POST("/mouvements", h.Caisse.Create)
				caisse.DELETE("/mouvements/:id", h.Caisse.Delete)
				caisse.GET("/balance", h.Caisse.Balance)
				caisse.GET("/categories", h.Caisse.Categories)
			}

			// Crédits bancaires
			credits := protected.Group("/credits")
			{
				credits.GET("", h.Credit.Index)
				credits.POST("", h.Credit.Create)
				credits.GET("/:id", h.Credit.Show)
				credits.POST("/:id/rembourser", h.Credit.Rembourser)
				credits.POST("/:id/defaut", h.Credit.EnDefaut)
			}

			// Taxes mensuelles
			taxes := protected.Group("/taxes")
			{
				taxes.GET("", h.Taxe.Index)
				taxes.POST("/:annee/:mois/recalculer", h.Taxe.Recalculer)
				taxes.POST("/:annee/:mois/cloturer", middleware.RequireAdmin(), h.Taxe.Cloturer)
				taxes.POST("/:annee/:mois/rouvrir", middleware.RequireAdmin(), h.Taxe.Rouvrir)
			}

			// Primes externes (OPS / CNV)
			primes := protected.Group("/primes/:system")
			{
				primes.GET("", h.Prime.Index)
				primes.GET("/stats", h.Prime.Stats)
				primes.POST("/:id/decaisser", h.Prime.Decaisser)
			}

			// Référentiels
			clients := protected.Group("/clients")
			{
				clients.GET("", h.Reference.ListClients)
				clients.POST("", h.Reference.CreateClient)
				clients.GET("/:id", h.Reference.ShowClient)
				clients.PUT("/:id", h.Reference.UpdateClient)
				clients.POST("/:id/desactiver", h.Reference.DesactiverClient)
			}
			protected.GET("/transitaires", h.Reference.ListTransitaires)
			protected.POST("/transitaires", h.Reference.CreateTransitaire)
			protected.GET("/armateurs", h.Reference.ListArmateurs)
			protected.POST("/armateurs", h.Reference.CreateArmateur)
			protected.GET("/banques", h.Reference.ListBanques)
			protected.POST("/banques", h.Reference.CreateBanque)

			// Audits (admin only)
			protected.GET("/audits", middleware.RequireAdmin(), h.Audit.Index)
		}
	}

	return router
}

func scheduleJobs(worker *jobs.Worker, svcs *services.Services, cfg *config.Config) {
	// Warm the prime snapshot cache at startup, then keep it fresh so the
	// listing endpoints degrade to recent data when OPS or CNV goes down.
	worker.ScheduleEveryImmediate(cfg.PrimeCacheRefresh, func(ctx context.Context) error {
		svcs.Prime.RefreshSnapshots(ctx)
		return nil
	})

	logger.Info("Scheduled recurring jobs")
}
