package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkoumba/translog-api/internal/models"
	"github.com/mkoumba/translog-api/internal/repository"
	"github.com/mkoumba/translog-api/internal/services"
)

type HealthHandler struct {
	primeService *services.PrimeService
}

func NewHealthHandler(primeService *services.PrimeService) *HealthHandler {
	return &HealthHandler{primeService: primeService}
}

func (h *HealthHandler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "translog-api",
		"version": "1.0.0",
	})
}

// Externes reports the reachability of the external prime databases.
// An unreachable system does not fail the endpoint, it is reported as such.
func (h *HealthHandler) Externes(c *gin.Context) {
	statuses := gin.H{}
	for _, system := range []string{models.SystemOPS, models.SystemCNV} {
		err := h.primeService.Sante(c.Request.Context(), system)
		switch {
		case err == nil:
			statuses[system] = "ok"
		case errors.Is(err, repository.ErrExternalNotConfigured):
			statuses[system] = "non configurée"
		default:
			statuses[system] = "indisponible"
		}
	}
	c.JSON(http.StatusOK, gin.H{"externes": statuses})
}
