package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mkoumba/translog-api/internal/repository"
	"github.com/mkoumba/translog-api/internal/services"
	"github.com/mkoumba/translog-api/internal/statemachine"
	"github.com/mkoumba/translog-api/pkg/logger"
)

// respondError translates service errors into HTTP responses: validation
// problems are 422, state conflicts 409, unknown records 404 and unreachable
// external systems 503. Anything else is a logged 500.
func respondError(c *gin.Context, err error) {
	var ve *services.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "validation échouée",
			"fields": ve.Fields,
		})
		return
	}

	var ce *services.ConflictError
	if errors.As(err, &ce) {
		body := gin.H{"error": ce.Reason}
		if ce.StatutActuel != "" {
			body["statut_actuel"] = ce.StatutActuel
		}
		if ce.StatutDemande != "" {
			body["statut_demande"] = ce.StatutDemande
		}
		if ce.ResteAPayer != nil {
			body["reste_a_payer"] = *ce.ResteAPayer
		}
		c.JSON(http.StatusConflict, body)
		return
	}

	var te *statemachine.TransitionError
	if errors.As(err, &te) {
		c.JSON(http.StatusConflict, gin.H{
			"error":          te.Error(),
			"statut_actuel":  te.Current,
			"statut_demande": te.Requested,
		})
		return
	}

	if errors.Is(err, services.ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "enregistrement introuvable"})
		return
	}

	if errors.Is(err, services.ErrExternalUnavailable) || errors.Is(err, repository.ErrExternalNotConfigured) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "base externe indisponible"})
		return
	}

	logger.Error("erreur interne", "error", err, "path", c.FullPath())
	c.JSON(http.StatusInternalServerError, gin.H{"error": "erreur interne"})
}
