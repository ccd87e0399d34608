package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mkoumba/translog-api/internal/middleware"
	"github.com/mkoumba/translog-api/internal/services"
)

type TaxeHandler struct {
	taxeService *services.TaxeService
}

func NewTaxeHandler(taxeService *services.TaxeService) *TaxeHandler {
	return &TaxeHandler{taxeService: taxeService}
}

func parsePeriode(c *gin.Context) (int, int, bool) {
	annee, err := strconv.Atoi(c.Param("annee"))
	if err != nil {
		return 0, 0, false
	}
	mois, err := strconv.Atoi(c.Param("mois"))
	if err != nil {
		return 0, 0, false
	}
	return annee, mois, true
}

// Index lists the accrual rows of one year (current year by default)
func (h *TaxeHandler) Index(c *gin.Context) {
	annee, err := strconv.Atoi(c.DefaultQuery("annee", strconv.Itoa(time.Now().Year())))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "année invalide"})
		return
	}

	taxes, err := h.taxeService.ListAnnee(c.Request.Context(), annee)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"taxes": taxes})
}

// Recalculer rebuilds both tax rows of the period from its factures
func (h *TaxeHandler) Recalculer(c *gin.Context) {
	annee, mois, ok := parsePeriode(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "période invalide"})
		return
	}

	taxes, err := h.taxeService.RecalculerMois(c.Request.Context(), annee, mois, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"taxes": taxes})
}

// Cloturer recomputes then freezes the period
func (h *TaxeHandler) Cloturer(c *gin.Context) {
	annee, mois, ok := parsePeriode(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "période invalide"})
		return
	}

	taxes, err := h.taxeService.CloturerMois(c.Request.Context(), annee, mois, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"taxes": taxes})
}

// Rouvrir unfreezes a closed period
func (h *TaxeHandler) Rouvrir(c *gin.Context) {
	annee, mois, ok := parsePeriode(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "période invalide"})
		return
	}

	taxes, err := h.taxeService.RouvrirMois(c.Request.Context(), annee, mois, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"taxes": taxes})
}
