package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkoumba/translog-api/internal/middleware"
	"github.com/mkoumba/translog-api/internal/services"
)

type PaiementHandler struct {
	paiementService *services.PaiementService
}

func NewPaiementHandler(paiementService *services.PaiementService) *PaiementHandler {
	return &PaiementHandler{paiementService: paiementService}
}

// Global applies one payment against several factures of a client
func (h *PaiementHandler) Global(c *gin.Context) {
	var input services.PaiementGlobalInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "corps de requête invalide"})
		return
	}

	paiements, err := h.paiementService.ApplyGlobal(c.Request.Context(), &input, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"paiements": paiements})
}

// Delete removes a payment from a still-open facture
func (h *PaiementHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identifiant invalide"})
		return
	}

	if err := h.paiementService.Delete(c.Request.Context(), id, middleware.GetUserID(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "paiement supprimé"})
}
